package router

import (
	"log"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/threadline/backend/internal/feed"
	"github.com/threadline/backend/internal/feedcache"
	"github.com/threadline/backend/internal/handlers"
	"github.com/threadline/backend/internal/middleware"
	"github.com/threadline/backend/internal/models"
	"github.com/threadline/backend/internal/notify"
	"github.com/threadline/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Logger())
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, mgClient *mongo.Client) {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Thread{},
		&models.Like{},
		&models.Follow{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	threadRepo := repositories.NewPostgresThreadRepository(pgdb)
	likeRepo := repositories.NewPostgresLikeRepository(pgdb)
	followRepo := repositories.NewPostgresFollowRepository(pgdb)
	notificationRepo := repositories.NewMongoNotificationRepository(mgClient.Database("threadline"))

	engine := feed.NewEngine(threadRepo)
	cache := feedcache.New()
	notifier := notify.NewNotifier(notificationRepo, userRepo)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Public routes (anonymous viewers allowed, claims picked up when present) ---
	public := e.Group("/api/v1")
	public.Use(middleware.OptionalJWTAuthMiddleware())

	feedHandler := handlers.NewFeedHandler(engine, cache)
	feedHandler.RegisterFeedRoutes(public)
	log.Println("Feed routes configured.")

	threadHandler := handlers.NewThreadHandler(threadRepo, userRepo, engine, notifier, cache)
	threadHandler.RegisterPublicThreadRoutes(public)

	profileHandler := handlers.NewProfileHandler(userRepo, followRepo, threadRepo)
	profileHandler.RegisterProfileRoutes(public)
	log.Println("Profile routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())

	threadHandler.RegisterThreadRoutes(api)
	log.Println("Thread routes configured.")

	likeHandler := handlers.NewLikeHandler(likeRepo, threadRepo, userRepo, notifier, cache)
	likeHandler.RegisterLikeRoutes(api)
	log.Println("Like routes configured.")

	followHandler := handlers.NewFollowHandler(followRepo, userRepo, notifier)
	followHandler.RegisterFollowRoutes(api)
	log.Println("Follow routes configured.")

	notificationHandler := handlers.NewNotificationHandler(notificationRepo, userRepo)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	log.Println("All routes configured.")
}
