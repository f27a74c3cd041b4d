// File: database/repository/appointment/crud.go
package appointmentRepo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bookify/models"
)

func (r *mongoAppointmentRepo) Insert(ctx context.Context, rec models.AppointmentRecord) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := r.coll.InsertOne(ctx, rec)
	return err
}

func (r *mongoAppointmentRepo) GetByAppointmentID(ctx context.Context, appointmentID string) (*models.AppointmentRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"appointmentId": appointmentID}
	var rec models.AppointmentRecord
	err := r.coll.FindOne(ctx, filter).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *mongoAppointmentRepo) FindByBookingFingerprint(ctx context.Context, email, date, timeOfDay string) (*models.AppointmentRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"email": email, "date": date, "time": timeOfDay}
	opts := options.FindOne().SetSort(bson.M{"createdAt": -1})
	var rec models.AppointmentRecord
	err := r.coll.FindOne(ctx, filter, opts).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *mongoAppointmentRepo) ListByEmail(ctx context.Context, email string) ([]models.AppointmentRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"email": email})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var recs []models.AppointmentRecord
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}
