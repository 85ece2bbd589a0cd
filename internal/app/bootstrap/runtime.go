// Package bootstrap builds the runtime collaborators selected by config.
package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/konainfatima28/Turbothrill-Webhook-Test/internal/config"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/internal/kv"
	"github.com/konainfatima28/Turbothrill-Webhook-Test/pkg/logging"
)

const redisKeyPrefix = "turbothrill:"

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		return nil
	}
	return client
}

// BuildStore picks the state backend named by STATE_BACKEND. The returned
// closer releases backend connections and is never nil.
func BuildStore(ctx context.Context, cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) (kv.Store, func(), error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	noop := func() {}

	switch cfg.StateBackend {
	case "", "memory":
		logger.Info("state backend: memory")
		return kv.NewMemoryStore(), noop, nil
	case "redis":
		client := BuildRedisClient(ctx, cfg, logger, true)
		if client == nil {
			return nil, noop, fmt.Errorf("bootstrap: redis backend selected but %s is unreachable", cfg.RedisAddr)
		}
		logger.Info("state backend: redis", "addr", cfg.RedisAddr)
		return kv.NewRedisStore(client, redisKeyPrefix), func() { _ = client.Close() }, nil
	case "dynamodb":
		if strings.TrimSpace(cfg.DynamoDBTable) == "" {
			return nil, noop, fmt.Errorf("bootstrap: DYNAMODB_TABLE is required for the dynamodb backend")
		}
		logger.Info("state backend: dynamodb", "table", cfg.DynamoDBTable)
		return kv.NewDynamoStore(dynamodb.NewFromConfig(awsCfg), cfg.DynamoDBTable), noop, nil
	case "postgres":
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return nil, noop, fmt.Errorf("bootstrap: DATABASE_URL is required for the postgres backend")
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("bootstrap: connect postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, noop, fmt.Errorf("bootstrap: ping postgres: %w", err)
		}
		logger.Info("state backend: postgres")
		return kv.NewPostgresStore(pool), pool.Close, nil
	default:
		return nil, noop, fmt.Errorf("bootstrap: unknown STATE_BACKEND %q", cfg.StateBackend)
	}
}
