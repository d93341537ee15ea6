package routes

import (
	"time"

	"talkbid/handlers"
	"talkbid/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HandlerBundle aggregates the handlers the router needs.
type HandlerBundle struct {
	Webhook    *handlers.WebhookHandler
	Booking    *handlers.BookingHandler
	Settlement *handlers.SettlementHandler
	Call       *handlers.CallHandler
	Host       *handlers.HostHandler
}

// RegisterWebhookRoutes registers the video provider callback. No rate
// limiting here: provider bursts are legitimate and must always be acked.
func RegisterWebhookRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.POST("/api/webhooks/video", hb.Webhook.VideoWebhookHandler)
}

// RegisterBookingRoutes registers booking and settlement endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/bookings")
	api.Use(middleware.RateLimitMiddleware())
	{
		api.GET("/:id", hb.Booking.GetBookingHandler)
		api.GET("/:id/settlement", hb.Settlement.GetSettlementHandler)

		// Operator endpoints (require admin token).
		admin := api.Group("")
		admin.Use(middleware.AdminAuthMiddleware())
		admin.POST("", hb.Booking.CreateBookingHandler)
		admin.POST("/:id/settle", hb.Settlement.TriggerSettlementHandler)
	}
}

// RegisterCallRoutes registers client-reported call lifecycle callbacks.
func RegisterCallRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/calls")
	api.Use(middleware.RateLimitMiddleware())
	{
		api.POST("/:id/joined", hb.Call.CallJoinedHandler)
		api.POST("/:id/left", hb.Call.CallLeftHandler)
	}
}

// RegisterHostRoutes registers host profile management.
func RegisterHostRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/hosts")
	api.Use(middleware.AdminAuthMiddleware())
	{
		api.POST("", hb.Host.RegisterHostHandler)
	}
}

// RegisterHealthRoutes registers liveness and readiness probes.
func RegisterHealthRoutes(r *gin.Engine) {
	r.GET("/healthz", handlers.HealthzHandler)
	r.GET("/readyz", handlers.ReadyzHandler)
}

// RegisterRoutes wires all route groups onto the router.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterWebhookRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterCallRoutes(r, hb)
	RegisterHostRoutes(r, hb)
	RegisterHealthRoutes(r)
}
