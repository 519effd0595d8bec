package router

import (
	"log"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/nayonf/inkline/backend/internal/auth"
	"github.com/nayonf/inkline/backend/internal/engagement"
	"github.com/nayonf/inkline/backend/internal/handlers"
	"github.com/nayonf/inkline/backend/internal/middleware"
	"github.com/nayonf/inkline/backend/internal/models"
	"github.com/nayonf/inkline/backend/internal/notifications"
	"github.com/nayonf/inkline/backend/internal/realtime"
	"github.com/nayonf/inkline/backend/internal/repositories"
	"github.com/nayonf/inkline/backend/pkg/config"
	"github.com/nayonf/inkline/backend/pkg/firebase"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes wires repositories, the engagement core and the realtime hub
// into their handlers and registers all routes. The hub and dispatcher are
// constructed exactly once here and shared by every workflow that needs them.
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, mgClient *mongo.Client, messenger *firebase.Messenger, cfg *config.Config) {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Like{},
		&models.Comment{},
		&models.Notification{},
		&models.DeviceToken{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	articleRepo := repositories.NewMongoArticleRepository(mgClient.Database("inkline"))
	likeRepo := repositories.NewPostgresLikeRepository(pgdb)
	commentRepo := repositories.NewPostgresCommentRepository(pgdb)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb)
	deviceTokenRepo := repositories.NewPostgresDeviceTokenRepository(pgdb)

	// --- Core services ---
	verifier := auth.NewVerifier(cfg.JWTSecret)
	hub := realtime.NewHub()
	viewCache := engagement.NewViewCache(cfg.ViewDedupWindow)
	engagementService := engagement.NewService(articleRepo, likeRepo, viewCache)
	dispatcher := notifications.NewDispatcher(notificationRepo, deviceTokenRepo, hub, messenger)

	// --- Websocket gateway (token verified at handshake, out-of-band) ---
	gateway := realtime.NewGateway(hub, verifier)
	e.GET("/ws", gateway.HandleConnection)
	log.Println("Websocket gateway configured.")

	// --- Public routes ---
	public := e.Group("/api/v1")
	engagementHandler := handlers.NewEngagementHandler(engagementService, dispatcher)
	engagementHandler.RegisterPublicRoutes(public)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(verifier))
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	engagementHandler.RegisterProtectedRoutes(api)
	log.Println("Engagement routes configured.")

	commentHandler := handlers.NewCommentHandler(commentRepo, articleRepo, dispatcher)
	commentHandler.RegisterCommentRoutes(api)
	log.Println("Comment routes configured.")

	notificationHandler := handlers.NewNotificationHandler(notificationRepo, userRepo, dispatcher)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	deviceHandler := handlers.NewDeviceHandler(deviceTokenRepo)
	deviceHandler.RegisterDeviceRoutes(api)
	log.Println("Device routes configured.")

	log.Println("All routes configured.")
}
