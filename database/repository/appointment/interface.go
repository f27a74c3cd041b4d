// File: database/repository/appointment/interface.go
package appointmentRepo

import (
	"context"

	"bookify/database"
	"bookify/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// AppointmentRepository stores the local trace of confirmed bookings.
// FindByBookingFingerprint is the retry-safety lookup: with no idempotency key
// on the provider side, a caller whose schedule call timed out must check here
// before submitting again.
type AppointmentRepository interface {
	Insert(ctx context.Context, rec models.AppointmentRecord) error
	GetByAppointmentID(ctx context.Context, appointmentID string) (*models.AppointmentRecord, error)
	FindByBookingFingerprint(ctx context.Context, email, date, timeOfDay string) (*models.AppointmentRecord, error)
	ListByEmail(ctx context.Context, email string) ([]models.AppointmentRecord, error)
}

type mongoAppointmentRepo struct {
	coll *mongo.Collection
}

// NewMongoAppointmentRepo constructs a new MongoDB AppointmentRepository.
func NewMongoAppointmentRepo() AppointmentRepository {
	db := database.MongoClient.Database("bookify")
	return &mongoAppointmentRepo{
		coll: db.Collection("appointments"),
	}
}
