package queue

import (
	"fmt"

	"github.com/Changwoon-overview/Socialtalk/internal/domain/notification"

	"github.com/hibiken/asynq"
)

// QueueName is the asynq queue events are processed from.
const QueueName = "notifications"

// NewClient creates a new asynq client connected to Redis.
func NewClient(redisAddr, password string, db int) *asynq.Client {
	return asynq.NewClient(asynq.RedisClientOpt{
		Addr:     redisAddr,
		Password: password,
		DB:       db,
	})
}

// NewServer creates a new asynq server connected to Redis.
func NewServer(redisAddr, password string, db int, concurrency int) *asynq.Server {
	return asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     redisAddr,
			Password: password,
			DB:       db,
		},
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				QueueName: 10, // priority weight
				"default": 1,
			},
		},
	)
}

// Enqueuer adapts an asynq client to notification.Enqueuer.
// Tasks are enqueued with no retries: a failed send is logged, not retried.
type Enqueuer struct {
	client *asynq.Client
}

var _ notification.Enqueuer = (*Enqueuer)(nil)

// NewEnqueuer creates a new Enqueuer.
func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

// EnqueueDispatch enqueues a dispatch task for the event.
func (e *Enqueuer) EnqueueDispatch(payload *notification.EventPayload) error {
	task, err := notification.NewDispatchEventTask(payload)
	if err != nil {
		return fmt.Errorf("creating task: %w", err)
	}

	_, err = e.client.Enqueue(task,
		asynq.MaxRetry(0),
		asynq.Queue(QueueName),
	)
	if err != nil {
		return fmt.Errorf("enqueuing task: %w", err)
	}

	return nil
}
