package db

import (
	"fmt"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds the shared counter-store client. The token, when
// set, overrides whatever password the URL carries (managed Redis
// providers hand the credential out separately from the endpoint).
func NewRedisClient(redisURL, token string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}

	if token != "" {
		opts.Password = token
	}

	return redis.NewClient(opts), nil
}
