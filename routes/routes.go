package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"bookify/handlers"
)

// RegisterSchedulingRoutes registers availability and appointment endpoints.
func RegisterSchedulingRoutes(r *gin.Engine, sh *handlers.SchedulingHandler) {
	api := r.Group("/api/scheduling")
	{
		api.GET("/slots", sh.GetDaySlots)
		api.GET("/horizon", sh.BookingHorizon)
		api.POST("/availability", sh.ResolveAvailability)
		api.POST("/appointments", sh.ScheduleAppointment)
		api.GET("/appointments", sh.ListAppointments)
		api.GET("/appointments/lookup", sh.LookupAppointment)
	}
}

// RegisterBookingRoutes registers the booking session flow.
func RegisterBookingRoutes(r *gin.Engine, bh *handlers.SessionHandler) {
	booking := r.Group("/api/booking")
	{
		booking.POST("/session", bh.InitiateSession)
		booking.PUT("/session/:sessionID", bh.UpdateSession)
		booking.POST("/session/:sessionID/confirm", bh.ConfirmSession)
		booking.DELETE("/session/:sessionID", bh.CancelSession)
	}
}

// RegisterHealthRoute registers the health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.HealthHandler)
}

// RegisterRoutes wires CORS and all endpoint groups.
func RegisterRoutes(r *gin.Engine, sh *handlers.SchedulingHandler, bh *handlers.SessionHandler) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterSchedulingRoutes(r, sh)
	RegisterBookingRoutes(r, bh)
}
