package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"

	"github.com/adithyakesavan/taskdeck/internal/config"
	"github.com/adithyakesavan/taskdeck/internal/database"
	"github.com/adithyakesavan/taskdeck/internal/feedhub"
	"github.com/adithyakesavan/taskdeck/internal/handlers"
	"github.com/adithyakesavan/taskdeck/internal/repository"
	"github.com/adithyakesavan/taskdeck/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware; Redis-backed when configured, cookie otherwise
	store, err := sessionStore(cfg)
	if err != nil {
		log.Fatalf("Failed to create session store: %v", err)
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax
	})
	r.Use(sessions.Sessions("taskdeck_session", store))

	// Wire repositories, services, handlers
	db := database.GetDB()
	hub := feedhub.NewHub()

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	authService := services.NewAuthService(userRepo)
	taskService := services.NewTaskService(taskRepo, notifRepo, hub)
	notifService := services.NewNotificationService(notifRepo, hub)

	handlers.RegisterRoutes(r,
		handlers.NewAuthHandler(authService),
		handlers.NewTaskHandler(taskService),
		handlers.NewNotificationHandler(notifService),
		handlers.NewEventHandler(hub),
	)

	// Start server
	log.Printf("Server starting on %s", cfg.HTTPAddr)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func sessionStore(cfg *config.Config) (sessions.Store, error) {
	if cfg.RedisHost == "" {
		return cookie.NewStore([]byte(cfg.SessionSecret)), nil
	}

	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	return redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret),
	)
}
