package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"thermotrack/internal/config"
	"thermotrack/internal/middleware"
	"thermotrack/internal/service"
	"thermotrack/pkg/utils"
)

// Services are the collaborators the HTTP layer dispatches to
type Services struct {
	Auth          *service.AuthService
	Access        *service.AccessService
	Rooms         *service.RoomService
	Devices       *service.DeviceService
	APIKeys       *service.DeviceAPIKeyService
	Readings      *service.ReadingService
	Requests      *service.RequestService
	Notifications *service.NotificationService
	// Health reports whether the backing stores are reachable; nil means always healthy
	Health func(ctx context.Context) error
}

// NewRouter wires every route of the API
func NewRouter(cfg *config.Config, svc Services, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log), middleware.Metrics(), middleware.CORS(cfg.CORS))

	authHandler := NewAuthHandler(svc.Auth, cfg.Server.Environment != "dev")
	roomHandler := NewRoomHandler(svc.Rooms)
	deviceHandler := NewDeviceHandler(svc.Devices, svc.Readings)
	readingHandler := NewReadingHandler(svc.Readings)
	apiKeyHandler := NewAPIKeyHandler(svc.APIKeys)
	requestHandler := NewRequestHandler(svc.Requests, svc.Notifications)
	notificationHandler := NewNotificationHandler(svc.Notifications)
	accessControl := middleware.NewAccessControlMiddleware(svc.Access)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		if svc.Health != nil {
			if err := svc.Health(c.Request.Context()); err != nil {
				_ = c.Error(err)
				utils.ErrorResponse(c, http.StatusServiceUnavailable, "unhealthy")
				return
			}
		}
		utils.SuccessResponse(c, gin.H{
			"status":  "healthy",
			"service": "thermotrack",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth routes (public)
	auth := r.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
	}

	// Gateway ingestion (API key)
	r.POST("/api/v1/ingest/rooms/:room_id/readings", middleware.APIKeyAuthMiddleware(svc.APIKeys), readingHandler.Ingest)

	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware())
	{
		api.POST("/users", middleware.RequireAdmin(), authHandler.CreateUser)

		api.GET("/rooms", roomHandler.GetAllRooms)
		api.POST("/rooms", roomHandler.CreateRoom)

		room := api.Group("/rooms/:room_id")
		room.Use(accessControl.CheckRoomAccess())
		{
			room.GET("", roomHandler.GetRoom)
			room.PUT("", roomHandler.UpdateRoom)
			room.DELETE("", roomHandler.DeleteRoom)

			room.GET("/latest", readingHandler.RoomLatest)
			room.GET("/alerts", readingHandler.RoomAlerts)

			room.POST("/access", roomHandler.GrantAccess)
			room.DELETE("/access/:user_id", roomHandler.RevokeAccess)

			room.GET("/devices", deviceHandler.ListDevices)
			room.POST("/devices", deviceHandler.RegisterDevice)

			room.GET("/api-keys", apiKeyHandler.ListAPIKeys)
			room.POST("/api-keys", apiKeyHandler.GenerateAPIKey)
		}

		api.DELETE("/api-keys/:id", apiKeyHandler.RevokeAPIKey)

		devices := api.Group("/devices")
		{
			devices.PATCH("/:id/status", deviceHandler.UpdateStatus)
			devices.DELETE("/:id", deviceHandler.DeleteDevice)
			devices.GET("/:id/latest", deviceHandler.LatestReading)
			devices.GET("/:id/readings", deviceHandler.ReadingHistory)
		}

		requests := api.Group("/requests")
		{
			requests.POST("", requestHandler.CreateRequest)
			requests.GET("", requestHandler.ListRequests)
			requests.GET("/pending", middleware.RequireElevated(svc.Access), requestHandler.Pending)
			requests.PATCH("/:id/status", middleware.RequireElevated(svc.Access), requestHandler.UpdateStatus)
		}

		notifications := api.Group("/notifications")
		{
			notifications.GET("", notificationHandler.List)
			notifications.GET("/unread-count", notificationHandler.UnreadCount)
			notifications.PATCH("/read-all", notificationHandler.MarkAllRead)
			notifications.PATCH("/:id/read", notificationHandler.MarkRead)
			notifications.DELETE("/:id", notificationHandler.Delete)
		}
	}

	return r
}
