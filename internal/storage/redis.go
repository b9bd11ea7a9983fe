package storage

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	config "github.com/tokengraph/indexer/configs"
)

// RedisConnector implements ICursorStore only. Entity storage stays in the
// main backend; redis just keeps the small per-source resume cursors.
type RedisConnector struct {
	client *redis.Client
	cfg    *config.RedisConfig
}

var DEFAULT_REDIS_POOL_SIZE = 20

func NewRedisConnector(cfg *config.RedisConfig) (*RedisConnector, error) {
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = DEFAULT_REDIS_POOL_SIZE
	}

	options := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: poolSize,
	}

	client := redis.NewClient(options)

	ctx := context.Background()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Debug().Msg("Connected to Redis")
	return &RedisConnector{
		client: client,
		cfg:    cfg,
	}, nil
}

func (r *RedisConnector) GetLastAppliedSequence(source string) (uint64, error) {
	ctx := context.Background()
	value, err := r.client.Get(ctx, cursorKey(source)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	sequence, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse cursor for source %s: %w", source, err)
	}
	return sequence, nil
}

func (r *RedisConnector) SetLastAppliedSequence(source string, sequence uint64) error {
	ctx := context.Background()
	return r.client.Set(ctx, cursorKey(source), strconv.FormatUint(sequence, 10), 0).Err()
}

func (r *RedisConnector) Close() error {
	return r.client.Close()
}
