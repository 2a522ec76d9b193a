package scheduler

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"lead_funnel_backend/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Client enqueues tasks on asynq for the scheduler worker to run.
type Client struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	queue     string
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	return &Client{
		client:    asynq.NewClient(opt),
		inspector: asynq.NewInspector(opt),
		queue:     queueName(cfg),
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	if c.inspector != nil {
		_ = c.inspector.Close()
	}
	return c.client.Close()
}

// Schedule enqueues task to be processed after delay.
func (c *Client) Schedule(ctx context.Context, task Task, delay time.Duration) (Handle, error) {
	if c == nil || c.client == nil {
		return nil, fmt.Errorf("scheduler client not configured")
	}
	if delay < 0 {
		delay = 0
	}

	info, err := c.client.EnqueueContext(ctx,
		asynq.NewTask(task.Type, task.Payload),
		asynq.ProcessIn(delay),
		asynq.Queue(c.queue),
	)
	if err != nil {
		return nil, fmt.Errorf("enqueue %s: %w", task.Type, err)
	}

	return asynqHandle{id: info.ID, queue: info.Queue, inspector: c.inspector}, nil
}

// Cancel deletes a task from the client's queue while it is still scheduled.
func (c *Client) Cancel(_ context.Context, id string) bool {
	if c == nil || c.inspector == nil {
		return false
	}
	return c.inspector.DeleteTask(c.queue, id) == nil
}

type asynqHandle struct {
	id        string
	queue     string
	inspector *asynq.Inspector
}

func (h asynqHandle) ID() string { return h.id }

// Cancel deletes the task while it is still scheduled. Tasks already picked up
// by the worker cannot be cancelled.
func (h asynqHandle) Cancel() bool {
	if h.inspector == nil {
		return false
	}
	return h.inspector.DeleteTask(h.queue, h.id) == nil
}

func queueName(cfg config.SchedulerConfig) string {
	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}
	return queue
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}

var _ Scheduler = (*Client)(nil)
