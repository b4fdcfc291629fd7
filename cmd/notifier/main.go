package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/courierlab/messenger-backend/internal/config"
	"github.com/courierlab/messenger-backend/internal/repository"
	pkglogger "github.com/courierlab/messenger-backend/pkg/logger"
	"github.com/courierlab/messenger-backend/pkg/queue"
	pkgredis "github.com/courierlab/messenger-backend/pkg/redis"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Delivery worker: drains the pending-notification queue and hands
// each notification to the delivery channel. Actual push/email
// transport hangs off deliver(); the default just logs.
func main() {
	config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.Init(env)

	cfg, err := config.Load(fmt.Sprintf("configs/config.%s.yaml", env))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	redisClient, err := pkgredis.NewClient(cfg.Redis.Host, cfg.Redis.Port,
		cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	notifications := repository.NewNotificationRepository(db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pkglogger.GetLogger().Info().Msg("notification worker started")

	for {
		id, err := queue.Dequeue(ctx, redisClient, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				pkglogger.GetLogger().Info().Msg("notification worker stopping")
				return
			}
			if errors.Is(err, redis.Nil) {
				// Timed out with an empty queue
				continue
			}
			pkglogger.GetLogger().Warn().Err(err).Msg("dequeue failed")
			time.Sleep(time.Second)
			continue
		}

		notification, err := notifications.FindByID(id)
		if err != nil {
			pkglogger.GetLogger().Error().Err(err).Uint64("notification_id", id).Msg("lookup failed")
			continue
		}
		if notification == nil {
			// Reaped between enqueue and delivery; nothing to do
			continue
		}

		deliver(notification.UserID, notification.MessageID)
	}
}

func deliver(userID, messageID uint64) {
	pkglogger.GetLogger().Info().
		Uint64("user_id", userID).
		Uint64("message_id", messageID).
		Msg("notification delivered")
}
