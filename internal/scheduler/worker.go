package scheduler

import (
	"context"
	"fmt"

	"lead_funnel_backend/platform/config"
	"lead_funnel_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Worker consumes tasks enqueued by Client and dispatches them through a Mux.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, tasks *Mux, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	mux := asynq.NewServeMux()
	for _, taskType := range tasks.Types() {
		mux.HandleFunc(taskType, bridge(tasks))
	}

	return &Worker{server: server, mux: mux, log: log}, nil
}

func bridge(tasks *Mux) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, t *asynq.Task) error {
		return tasks.Dispatch(ctx, Task{Type: t.Type(), Payload: t.Payload()})
	}
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
