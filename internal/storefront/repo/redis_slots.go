package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	errx "github.com/terra-tattva/storefront/internal/core/error"
	"github.com/terra-tattva/storefront/internal/storefront/model"
	logx "github.com/terra-tattva/storefront/pkg/logger"
)

type RedisSlotRepository struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisSlotRepository(rdb redis.Cmdable, ttl time.Duration) *RedisSlotRepository {
	return &RedisSlotRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisSlotRepository) slotKey(session, slot string) string {
	return fmt.Sprintf("storefront:%s:%s", session, slot)
}

func (r *RedisSlotRepository) Load(ctx context.Context, session, slot string) ([]byte, bool, error) {
	key := r.slotKey(session, slot)

	b, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load slot from redis")
		return nil, false, errx.WrapRedis(err)
	}
	return b, true, nil
}

func (r *RedisSlotRepository) Save(ctx context.Context, session, slot string, data []byte) error {
	key := r.slotKey(session, slot)

	// SET with an expiry extends the TTL on every write
	if err := r.rdb.Set(ctx, key, data, r.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to write slot to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisSlotRepository) Clear(ctx context.Context, session string) error {
	pattern := r.slotKey(session, "*")

	var keys []string
	iter := r.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logx.Error().Err(err).Str("pattern", pattern).Msg("failed to scan session slots")
		return errx.WrapRedis(err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
		logx.Error().Err(err).Str("session", session).Msg("failed to delete session slots from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.SlotRepository = (*RedisSlotRepository)(nil)
