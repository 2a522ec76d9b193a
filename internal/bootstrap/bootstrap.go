// Package bootstrap builds the service graph shared by the API server and the
// scheduler worker. Both processes must agree on store keys and task handlers,
// so the wiring lives in one place instead of in each main package.
package bootstrap

import (
	"fmt"
	"time"

	"lead_funnel_backend/internal/adapters"
	"lead_funnel_backend/internal/analytics"
	"lead_funnel_backend/internal/chat/session"
	"lead_funnel_backend/internal/consultation/booking"
	"lead_funnel_backend/internal/content/catalog"
	"lead_funnel_backend/internal/email"
	"lead_funnel_backend/internal/events"
	"lead_funnel_backend/internal/leads/repository"
	"lead_funnel_backend/internal/leads/scoring"
	leadservice "lead_funnel_backend/internal/leads/service"
	"lead_funnel_backend/internal/notification/alerts"
	"lead_funnel_backend/internal/observability"
	"lead_funnel_backend/internal/routing"
	"lead_funnel_backend/internal/scheduler"
	"lead_funnel_backend/platform/config"
	"lead_funnel_backend/platform/logger"
	"lead_funnel_backend/platform/store"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "funnel:"

// Options are the infrastructure pieces the caller has already set up.
type Options struct {
	Config *config.Config
	Log    *logger.Logger
	// Redis backs leads and shared state. Nil keeps everything in process memory.
	Redis     *redis.Client
	Scheduler scheduler.Scheduler
	Bus       events.Bus
	Metrics   *observability.Metrics
	Sink      analytics.Sink
	Clock     clockwork.Clock
}

// Components is the wired service graph.
type Components struct {
	Repo     repository.LeadRepository
	Scorer   *scoring.Scorer
	Email    *email.Service
	Sales    *alerts.SalesNotifier
	Prompts  *alerts.PromptQueue
	Content  *catalog.Service
	Bookings *booking.Service
	Engine   *routing.Engine

	opts Options
}

// Build wires every service that routing actions can reach.
func Build(opts Options) (*Components, error) {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	cfg, client := opts.Config, opts.Redis

	sequences, err := email.LoadCatalog()
	if err != nil {
		return nil, fmt.Errorf("load email sequences: %w", err)
	}

	var repo repository.LeadRepository = repository.NewMemory()
	if client != nil {
		repo = repository.NewRedisWithClient(client, cfg.GetLeadSessionTTL())
	}
	scorer := scoring.New(opts.Clock)

	emailSvc := email.NewService(email.Deps{
		Catalog:      sequences,
		Personalizer: email.NewPersonalizer(cfg.GetEmailSenderName()),
		Delivery:     email.NewDelivery(cfg, opts.Log),
		Scheduler:    opts.Scheduler,
		Leads:        repo,
		Clock:        opts.Clock,
		Bus:          opts.Bus,
		Sink:         opts.Sink,
		Metrics:      opts.Metrics,
		Log:          opts.Log,
		Enrollments:  newList[email.Enrollment](client, "email:enrollments:", 0, cfg.GetLeadSessionTTL()),
		Stats:        newHash(client, "email:stats:"),
		Claims:       newGate(client, "email:claim:"),
	})

	sales := alerts.NewSalesNotifier(alerts.SalesDeps{
		Alerts:   newList[alerts.SalesAlert](client, "sales:alerts:", alerts.MaxFeedLength, 0),
		Gate:     newGate(client, "sales:cooldown:"),
		Cooldown: cfg.GetSalesAlertCooldown(),
		Clock:    opts.Clock,
		Bus:      opts.Bus,
		Metrics:  opts.Metrics,
		Log:      opts.Log,
	})
	prompts := alerts.NewPromptQueue(
		newList[alerts.ChatPrompt](client, "prompts:", alerts.MaxFeedLength, cfg.GetLeadSessionTTL()),
		newGate(client, "prompts:dedupe:"),
		opts.Clock,
		opts.Log,
	)
	content := catalog.NewService(
		catalog.DefaultCatalog(),
		newList[catalog.RecommendationSet](client, "content:sets:", catalog.MaxSetsPerLead, cfg.GetLeadSessionTTL()),
		opts.Clock,
		opts.Log,
	)
	bookings := booking.NewService(booking.Deps{
		Bookings: newList[booking.Booking](client, "bookings:", booking.MaxBookingsPerLead, 0),
		Holds:    newGate(client, "bookings:hold:"),
		Clock:    opts.Clock,
		Bus:      opts.Bus,
		Log:      opts.Log,
	})

	engine := routing.NewEngine(routing.Deps{
		Scorer:    scorer,
		Scheduler: opts.Scheduler,
		Leads:     repo,
		Delegates: adapters.RoutingDelegates{
			Email:    emailSvc,
			Sales:    sales,
			Prompts:  prompts,
			Content:  content,
			Bookings: bookings,
		}.Build(),
		Sink:    opts.Sink,
		Bus:     opts.Bus,
		Metrics: opts.Metrics,
		Clock:   opts.Clock,
		Log:     opts.Log,
		Stats:   newHash(client, "routing:stats:"),
	})

	return &Components{
		Repo:     repo,
		Scorer:   scorer,
		Email:    emailSvc,
		Sales:    sales,
		Prompts:  prompts,
		Content:  content,
		Bookings: bookings,
		Engine:   engine,
		opts:     opts,
	}, nil
}

// RegisterTasks installs every delayed-task handler on mux.
func (c *Components) RegisterTasks(mux *scheduler.Mux) {
	c.Email.RegisterTasks(mux)
	c.Engine.RegisterTasks(mux)
}

// RegisterHandlers subscribes the services that react to lead events.
func (c *Components) RegisterHandlers(bus events.Bus) {
	c.Email.RegisterHandlers(bus)
	c.Engine.RegisterHandlers(bus)
}

// LeadDeps are the collaborators of the lead lifecycle service.
func (c *Components) LeadDeps() leadservice.Deps {
	return leadservice.Deps{
		Repo:    c.Repo,
		Scorer:  c.Scorer,
		Router:  adapters.NewLeadRouterAdapter(c.Engine),
		Bus:     c.opts.Bus,
		Metrics: c.opts.Metrics,
		Clock:   c.opts.Clock,
		Config:  c.opts.Config,
		Log:     c.opts.Log,
	}
}

// ChatDeps are the collaborators of the chat session service for leads.
func (c *Components) ChatDeps(leads *leadservice.Service) session.Deps {
	return session.Deps{
		Messages: newList[session.Message](c.opts.Redis, "chat:", session.MaxTranscript, c.opts.Config.GetLeadSessionTTL()),
		Leads:    adapters.NewChatLeadAdapter(leads),
		Config:   c.opts.Config,
		Clock:    c.opts.Clock,
		Log:      c.opts.Log,
	}
}

// newList returns a Redis list under the shared prefix, or nil so the caller
// falls back to process memory.
func newList[T any](client *redis.Client, name string, maxLen int, ttl time.Duration) store.List[T] {
	if client == nil {
		return nil
	}
	return store.NewRedisList[T](client, keyPrefix+name, maxLen, ttl)
}

func newHash(client *redis.Client, name string) store.Hash {
	if client == nil {
		return nil
	}
	return store.NewRedisHash(client, keyPrefix+name)
}

func newGate(client *redis.Client, name string) store.Gate {
	if client == nil {
		return nil
	}
	return store.NewRedisGate(client, keyPrefix+name)
}
