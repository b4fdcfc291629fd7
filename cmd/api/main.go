package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/courierlab/messenger-backend/internal/config"
	"github.com/courierlab/messenger-backend/internal/handler"
	"github.com/courierlab/messenger-backend/internal/middleware"
	"github.com/courierlab/messenger-backend/internal/migration"
	"github.com/courierlab/messenger-backend/internal/repository"
	"github.com/courierlab/messenger-backend/internal/routes"
	"github.com/courierlab/messenger-backend/internal/service"
	pkgjwt "github.com/courierlab/messenger-backend/pkg/jwt"
	pkglogger "github.com/courierlab/messenger-backend/pkg/logger"
	"github.com/courierlab/messenger-backend/pkg/queue"
	pkgredis "github.com/courierlab/messenger-backend/pkg/redis"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.Init(env)
	pkglogger.GetLogger().Info().
		Str("env", env).
		Strs("dotenv_files", dotenvFiles).
		Msg("starting messenger-backend")

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := migration.Run(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis is the delivery-worker handoff; the engine runs without it
	// and the dispatcher degrades to record-only notifications.
	var deliveryQueue queue.DeliveryQueue
	if cfg.Redis.Host != "" {
		redisClient, err := pkgredis.NewClient(cfg.Redis.Host, cfg.Redis.Port,
			cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize)
		if err != nil {
			pkglogger.GetLogger().Warn().Err(err).Msg("Redis unavailable, notification delivery disabled")
		} else {
			deliveryQueue = queue.NewRedisQueue(redisClient)
		}
	}

	jwtManager := pkgjwt.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.TTLHours)*time.Hour)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	historyRepo := repository.NewMessageHistoryRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Services
	userService := service.NewUserService(db, userRepo, messageRepo, historyRepo, notificationRepo)
	messageService := service.NewMessageService(db, messageRepo, historyRepo, notificationRepo, userRepo, deliveryQueue)
	threadService := service.NewThreadService(messageRepo)
	notificationService := service.NewNotificationService(notificationRepo)

	// Router
	if env != "local" && env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())
	router.Use(middleware.BearerAuth(jwtManager))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	routes.Setup(router, &routes.Handlers{
		Users:         handler.NewUserHandler(userService, jwtManager),
		Messages:      handler.NewMessageHandler(messageService),
		Threads:       handler.NewThreadHandler(threadService),
		Notifications: handler.NewNotificationHandler(notificationService),
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	pkglogger.GetLogger().Info().Str("addr", addr).Msg("listening")
	if err := router.Run(addr); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func initDB(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}
	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), gormCfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}
