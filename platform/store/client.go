package store

import (
	"crypto/tls"
	"fmt"

	"lead_funnel_backend/platform/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds a go-redis client from the configured URL.
func NewRedisClient(cfg config.StoreConfig) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if cfg.GetRedisTLSInsecure() {
		if opt.TLSConfig == nil {
			opt.TLSConfig = &tls.Config{}
		}
		opt.TLSConfig.InsecureSkipVerify = true
	}
	return redis.NewClient(opt), nil
}
