package tasks

import (
	"context"
	"encoding/json"
	"time"

	"talkbid/config"

	"github.com/hibiken/asynq"
)

const TypeSettlementRun = "settlement:run"

// SettlementPayload identifies the booking a settlement run operates on.
type SettlementPayload struct {
	BookingID string `json:"bookingId"`
}

// NewSettlementTask builds the queued task for one settlement run.
func NewSettlementTask(bookingID string) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(SettlementPayload{BookingID: bookingID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSettlementRun, b)
	opts := []asynq.Option{
		asynq.MaxRetry(5),
		asynq.Timeout(2 * time.Minute),
	}
	return task, opts, nil
}

// Client enqueues settlement runs onto the Redis-backed queue.
type Client struct {
	inner *asynq.Client
}

// NewClient builds the enqueue client from app config.
func NewClient() *Client {
	return &Client{
		inner: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     config.AppConfig.RedisAddr,
			Password: config.AppConfig.RedisPassword,
			DB:       config.AppConfig.RedisTaskQueueDB,
		}),
	}
}

// EnqueueSettlement queues an asynchronous settlement run for the booking.
func (c *Client) EnqueueSettlement(ctx context.Context, bookingID string) error {
	task, opts, err := NewSettlementTask(bookingID)
	if err != nil {
		return err
	}
	_, err = c.inner.EnqueueContext(ctx, task, opts...)
	return err
}

// Close releases the underlying Redis connection.
func (c *Client) Close() error {
	return c.inner.Close()
}
