package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"popin/backend/internal/api/handler"
	"popin/backend/internal/chathub"
	"popin/backend/internal/config"
	"popin/backend/internal/models"
	"popin/backend/internal/notify"
	"popin/backend/internal/proximity"
	"popin/backend/internal/storage"
)

func setupDependencies(cfg config.Config, log *zap.Logger) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect PostgreSQL", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatal("failed to connect Redis", zap.Error(err))
	}

	err = db.AutoMigrate(
		&models.Place{},
		&models.ChatHistory{},
		&models.NotificationLog{},
		&models.CheckIn{},
	)
	if err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	log.Info("database and redis connections established, migrations complete")
	return db, rdb
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using environment")
	}
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	logger.Info("starting POP IN backend")

	db, rdb := setupDependencies(cfg, logger)
	store := storage.NewService(db, rdb)

	notifier := notify.NewService(store, logger)
	if cfg.TelegramBotToken != "" {
		if err := notifier.EnableTelegram(cfg.TelegramBotToken, cfg.TelegramAlertChatID); err != nil {
			logger.Warn("telegram alerts unavailable", zap.Error(err))
		}
	}

	policy, err := proximity.NewPolicy(proximity.Thresholds{
		HotMeters:   cfg.HotMeters,
		CloseMeters: cfg.CloseMeters,
		RangeMeters: cfg.RangeMeters,
	})
	if err != nil {
		logger.Fatal("invalid proximity thresholds", zap.Error(err))
	}
	watcher := proximity.NewWatcher(policy, time.Duration(cfg.CooldownMinutes)*time.Minute, notifier, logger)

	hub := chathub.NewHub(store, watcher, logger)
	go hub.Run()

	r := gin.Default()
	h := handler.NewHandler(hub, watcher, store, cfg.JWTSecret, logger)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/session", h.GetSession)
	r.GET("/places", h.ListPlaces)
	r.POST("/places", h.CreatePlace)
	r.DELETE("/places/:id", h.DeactivatePlace)
	r.PUT("/config/proximity", h.UpdateProximityConfig)

	authed := r.Group("/", h.RequireSession)
	authed.POST("/location", h.UpdateLocation)
	authed.DELETE("/session", h.EndSession)
	authed.GET("/ws", h.ServeWebSocket)
	authed.GET("/places/:id/history", h.PlaceHistory)

	server := &http.Server{
		Addr:           cfg.ServerAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	logger.Fatal("server exited", zap.Error(server.ListenAndServe()))
}
