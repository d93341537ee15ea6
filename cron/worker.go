package cron

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"talkbid/config"
	bookingRepo "talkbid/database/repository/booking"
	"talkbid/services/settlement"
	"talkbid/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// InitSettlementWorker runs the async settlement worker in background.
func InitSettlementWorker(executor *settlement.Executor) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSettlementRun, handleSettlementTask(executor))

	// Start Redis health monitor
	go monitorRedisConnection()

	// Start async worker with retry logic
	go func() {
		log.Println("[SettlementWorker] 🚀 Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[SettlementWorker] ❌ Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[SettlementWorker] ❗ Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleSettlementTask(executor *settlement.Executor) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.SettlementPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[SettlementHandler] 🔴 Invalid payload: %v", err)
			return err
		}

		outcome, err := executor.Settle(ctx, p.BookingID)
		if errors.Is(err, bookingRepo.ErrNotFound) {
			// Data-integrity problem, not a transient fault; retrying
			// cannot make the booking appear.
			log.Printf("[SettlementHandler] 🔴 Booking %s not found, dropping task", p.BookingID)
			return nil
		}
		if err != nil {
			// Retryable: every settlement step is idempotent, so asynq can
			// safely re-run the task.
			log.Printf("[SettlementHandler] ❌ Settlement for booking %s failed, will retry: %v", p.BookingID, err)
			return err
		}

		if outcome.Status == settlement.OutcomeFailed {
			// Needs operator attention; retrying will not change the
			// gateway state, so the task completes without error.
			log.Printf("[SettlementHandler] ❗ Settlement for booking %s requires operator attention: %s", p.BookingID, outcome.Reason)
			return nil
		}

		log.Printf("[SettlementHandler] ✅ Settlement for booking %s resolved: %s (%s)", p.BookingID, outcome.Status, outcome.Reason)
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[SettlementWorker] ⚠️ Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
