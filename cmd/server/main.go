package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"hostel/docs"

	"github.com/labstack/echo/v4"

	"hostel/internal/auth"
	"hostel/internal/cache"
	"hostel/internal/config"
	"hostel/internal/db"
	"hostel/internal/events"
	"hostel/internal/handler"
	"hostel/internal/repository"
	"hostel/internal/router"
	"hostel/internal/service"
	"hostel/internal/storage"
)

// @title Hostel Management API
// @version 1.0
// @description Rooms, residents and monthly rent payments of a hostel.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	e := echo.New()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if cfg.ResetDB {
		log.Println("RESET_DB=true detected, dropping all tables...")
		if err := db.Reset(gormDB); err != nil {
			log.Printf("Warning: failed to drop tables: %v", err)
		}
	}

	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	uploader, err := storage.NewCloudinary(cfg.CloudinaryURL, "hostel/avatars")
	if err != nil {
		log.Fatalf("cloudinary init: %v", err)
	}
	if cfg.CloudinaryURL == "" {
		log.Println("CLOUDINARY_URL not set, avatar uploads are disabled")
	}

	publisher := events.New(cfg.RabbitMQURL)
	store := repository.NewStore(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(store.Users(), jwtService, tokenStore)
	userService := service.NewUserService(store, cacheClient, uploader, publisher)
	roomService := service.NewRoomService(store, cacheClient, publisher)
	paymentService := service.NewPaymentService(store, publisher, cfg.DefaultRent)
	defer paymentService.Close()

	// Initialize handlers
	cookies := handler.NewCookieHelper(cfg.CookieSecure, jwtService.AccessExpiry(), jwtService.RefreshExpiry())
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("database handle: %v", err)
	}
	handlers := router.Handlers{
		Auth:    handler.NewAuthHandler(authService, cookies),
		User:    handler.NewUserHandler(userService, cookies),
		Room:    handler.NewRoomHandler(roomService),
		Payment: handler.NewPaymentHandler(paymentService),
		Seed:    handler.NewSeedHandler(roomService, userService),
		Health: handler.NewHealthHandler(map[string]handler.Pinger{
			"mysql": handler.PingFunc(sqlDB.PingContext),
			"redis": cacheClient,
		}),
	}

	router.Register(e, cfg, jwtService, tokenStore, handlers)

	if cfg.SwaggerHost != "" {
		host := strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "http://"), "https://")
		docs.SwaggerInfo.Host = host
		if strings.HasPrefix(cfg.SwaggerHost, "https://") {
			docs.SwaggerInfo.Schemes = []string{"https"}
		}
	}
	log.Printf("Swagger documentation available at: http://%s/swagger/index.html", docs.SwaggerInfo.Host)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Printf("server shutdown: %v", err)
		}
	}()

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
	// Start returns as soon as Shutdown begins; in-flight requests still
	// record payment attempts until it completes.
	<-shutdownDone
}
