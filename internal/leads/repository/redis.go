package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"lead_funnel_backend/internal/leads/domain"
	"lead_funnel_backend/platform/config"
	"lead_funnel_backend/platform/store"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix        = "lead:"
	maxUpdateRetries = 5
)

// Redis stores leads as JSON documents with a sliding TTL that models the
// visitor session lifetime.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to the configured Redis URL.
func NewRedis(cfg config.StoreConfig) (*Redis, error) {
	client, err := store.NewRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	return NewRedisWithClient(client, cfg.GetLeadSessionTTL()), nil
}

// NewRedisWithClient wraps an existing client. A ttl of zero keeps leads forever.
func NewRedisWithClient(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) Create(ctx context.Context, lead domain.Lead) error {
	data, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("encode lead: %w", err)
	}
	created, err := r.client.SetNX(ctx, keyPrefix+lead.ID, data, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("create lead: %w", err)
	}
	if !created {
		return ErrAlreadyExists
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, id string) (domain.Lead, error) {
	data, err := r.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Lead{}, ErrNotFound
	}
	if err != nil {
		return domain.Lead{}, fmt.Errorf("get lead: %w", err)
	}
	return decodeLead(data)
}

func (r *Redis) List(ctx context.Context) ([]domain.Lead, error) {
	out := make([]domain.Lead, 0)
	iter := r.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := r.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue // expired between SCAN and GET
		}
		if err != nil {
			return nil, fmt.Errorf("list leads: %w", err)
		}
		lead, err := decodeLead(data)
		if err != nil {
			return nil, err
		}
		out = append(out, lead)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan leads: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Update runs fn inside an optimistic WATCH transaction and retries when another
// writer changed the lead in between.
func (r *Redis) Update(ctx context.Context, id string, fn MutateFunc) (domain.Lead, error) {
	key := keyPrefix + id
	var result domain.Lead

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		lead, err := decodeLead(data)
		if err != nil {
			return err
		}
		if err := fn(&lead); err != nil {
			return err
		}
		encoded, err := json.Marshal(lead)
		if err != nil {
			return fmt.Errorf("encode lead: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, r.ttl)
			return nil
		})
		if err == nil {
			result = lead
		}
		return err
	}

	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return domain.Lead{}, err
		}
		return result, nil
	}
	return domain.Lead{}, fmt.Errorf("update lead %s: too much contention", id)
}

func decodeLead(data []byte) (domain.Lead, error) {
	var lead domain.Lead
	if err := json.Unmarshal(data, &lead); err != nil {
		return domain.Lead{}, fmt.Errorf("decode lead: %w", err)
	}
	if lead.Interests == nil {
		lead.Interests = []string{}
	}
	if lead.Engagement.ContentViewed == nil {
		lead.Engagement.ContentViewed = []domain.ContentEngagement{}
	}
	if lead.Engagement.Actions == nil {
		lead.Engagement.Actions = []domain.UserAction{}
	}
	return lead, nil
}

var _ LeadRepository = (*Redis)(nil)
