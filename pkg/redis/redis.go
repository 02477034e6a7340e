package redis

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	logx "github.com/terra-tattva/storefront/pkg/logger"
)

const maxBackoff = 30 * time.Second

type Config struct {
	URL            string `split_words:"true"`
	ReadTimeout    int    `split_words:"true" default:"3"`
	WriteTimeout   int    `split_words:"true" default:"3"`
	DialTimeout    int    `split_words:"true" default:"5"`
	ConnectRetries int    `split_words:"true" default:"5"`
}

func (r *Config) Options() (*redis.Options, error) {
	if r.URL == "" {
		return nil, errors.New("redis: REDIS_URL is not set")
	}
	opts, err := redis.ParseURL(r.URL)
	if err != nil {
		return nil, errors.Wrap(err, "redis: parse url")
	}

	opts.ReadTimeout = time.Duration(r.ReadTimeout) * time.Second
	opts.WriteTimeout = time.Duration(r.WriteTimeout) * time.Second
	opts.DialTimeout = time.Duration(r.DialTimeout) * time.Second
	return opts, nil
}

// New builds a client and pings it, retrying with capped exponential backoff
// until ConnectRetries attempts have failed or ctx is done.
func (r *Config) New(ctx context.Context) (*redis.Client, error) {
	opts, err := r.Options()
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	attempts := r.ConnectRetries
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
		err = client.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			return client, nil
		}
		if i == attempts-1 {
			break
		}

		backoff := time.Duration(1<<i) * time.Second
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
		logx.Warn().Err(err).Int("attempt", i+1).Dur("backoff", backoff).Msg("redis not ready, retrying")
		select {
		case <-ctx.Done():
			client.Close()
			return nil, errors.Wrap(ctx.Err(), "redis: connect cancelled")
		case <-time.After(backoff):
		}
	}

	client.Close()
	return nil, errors.Wrapf(err, "redis: failed to connect after %d attempts", attempts)
}

func (r *Config) MustNew(ctx context.Context) *redis.Client {
	client, err := r.New(ctx)
	if err != nil {
		panic(err)
	}

	return client
}
