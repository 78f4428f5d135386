package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/daengle/petcare-backend/internal/config"
	"github.com/daengle/petcare-backend/internal/http/handlers"
	"github.com/daengle/petcare-backend/internal/http/middleware"
	"github.com/daengle/petcare-backend/internal/models"
	"github.com/daengle/petcare-backend/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	profileHandler *handlers.ProfileHandler,
	estimateHandler *handlers.EstimateHandler,
	reservationHandler *handlers.ReservationHandler,
	reviewHandler *handlers.ReviewHandler,
	notificationHandler *handlers.NotificationHandler,
	mediaHandler *handlers.MediaHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.StaticFS("/media", http.Dir(cfg.MediaStoragePath))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authRateLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)
	authGroup.Use(authRateLimit)
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	// Публичные маршруты
	api.GET("/ws", wsHandler.Handle)
	api.GET("/providers", profileHandler.ListProviders)
	api.GET("/providers/:id", middleware.UUIDValidator("id"), profileHandler.GetProvider)
	api.GET("/providers/:id/reviews", middleware.UUIDValidator("id"), reviewHandler.ListProviderReviews)
	api.GET("/providers/:id/rating", middleware.UUIDValidator("id"), reviewHandler.GetProviderRating)
	api.GET("/reviews/:id", middleware.UUIDValidator("id"), reviewHandler.GetReview)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/auth/me", authHandler.Me)

		protected.PUT("/providers/me", middleware.RequireProvider(), profileHandler.UpdateMyProvider)
		protected.POST("/pets", profileHandler.CreatePet)
		protected.GET("/pets", profileHandler.ListMyPets)

		// Заявки владельцев
		protected.POST("/estimates", estimateHandler.CreateEstimate)
		protected.GET("/estimates/my", estimateHandler.ListMyEstimates)
		protected.GET("/estimates/open", middleware.RequireProvider(), estimateHandler.ListOpen)
		protected.GET("/estimates/:id", middleware.UUIDValidator("id"), estimateHandler.GetEstimate)
		protected.POST("/estimates/:id/cancel", middleware.UUIDValidator("id"), estimateHandler.CancelEstimate)
		protected.POST("/estimates/:id/quotes", middleware.UUIDValidator("id"), middleware.RequireProvider(), estimateHandler.CreateQuote)

		// Предложения исполнителей
		protected.GET("/quotes/my", middleware.RequireProvider(), estimateHandler.ListMyQuotes)
		protected.POST("/quotes/:id/accept", middleware.UUIDValidator("id"), estimateHandler.AcceptQuote)
		protected.POST("/quotes/:id/reject", middleware.UUIDValidator("id"), estimateHandler.RejectQuote)
		protected.POST("/quotes/:id/cancel", middleware.UUIDValidator("id"), middleware.RequireProvider(), estimateHandler.CancelQuote)

		// Бронирования
		protected.GET("/reservations/my", reservationHandler.ListMyReservations)
		protected.GET("/reservations/:id", middleware.UUIDValidator("id"), reservationHandler.GetReservation)
		protected.POST("/reservations/:id/pay", middleware.UUIDValidator("id"), reservationHandler.Pay)
		protected.POST("/reservations/:id/complete", middleware.UUIDValidator("id"), middleware.RequireProvider(), reservationHandler.Complete)
		protected.POST("/reservations/:id/cancel", middleware.UUIDValidator("id"), reservationHandler.Cancel)

		// Отзывы
		protected.POST("/reservations/:id/reviews", middleware.UUIDValidator("id"), middleware.RequireRole(models.RoleUser), reviewHandler.CreateReview)
		protected.GET("/reviews/my", reviewHandler.ListMyReviews)
		protected.PUT("/reviews/:id", middleware.UUIDValidator("id"), reviewHandler.UpdateReview)
		protected.DELETE("/reviews/:id", middleware.UUIDValidator("id"), reviewHandler.DeleteReview)

		// Уведомления
		protected.GET("/notifications", notificationHandler.ListNotifications)
		protected.GET("/notifications/unread/count", notificationHandler.CountUnread)
		protected.PUT("/notifications/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.DELETE("/notifications/:id", middleware.UUIDValidator("id"), notificationHandler.DeleteNotification)

		// Медиа
		protected.POST("/media/photos", mediaHandler.UploadPhoto)
		protected.GET("/media/my", mediaHandler.ListMyMedia)
		protected.DELETE("/media/:id", middleware.UUIDValidator("id"), mediaHandler.DeleteMedia)
	}

	return r
}
