package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrNotFound indicates the report does not exist or has expired.
var ErrNotFound = errors.New("report not found")

// Config holds store configuration.
type Config struct {
	// TTL is how long a report is kept.
	TTL time.Duration

	// MaxRecent caps the recent report list.
	MaxRecent int64
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{
		TTL:       24 * time.Hour,
		MaxRecent: 100,
	}
}

// Store persists reports in Redis.
type Store struct {
	redis  *redis.Client
	config Config
	logger zerolog.Logger
}

// NewStore creates a new report store with Redis backend.
func NewStore(redisClient *redis.Client, cfg Config) *Store {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}

	defaults := DefaultConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = defaults.TTL
	}
	if cfg.MaxRecent <= 0 {
		cfg.MaxRecent = defaults.MaxRecent
	}

	return &Store{
		redis:  redisClient,
		config: cfg,
		logger: log.With().Str("component", "report-store").Logger(),
	}
}

// Save stores the report with the configured TTL and records its ID in the
// recent list.
func (s *Store) Save(ctx context.Context, r *Report) error {
	StoreOperations.WithLabelValues("save").Inc()

	if err := r.Validate(); err != nil {
		StoreErrors.WithLabelValues("save").Inc()
		return err
	}

	data, err := json.Marshal(r)
	if err != nil {
		StoreErrors.WithLabelValues("save").Inc()
		return fmt.Errorf("marshal report: %w", err)
	}

	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, ReportKey{ID: r.ID}.String(), data, s.config.TTL)
	pipe.LPush(ctx, RecentKey, r.ID)
	pipe.LTrim(ctx, RecentKey, 0, s.config.MaxRecent-1)

	if _, err := pipe.Exec(ctx); err != nil {
		StoreErrors.WithLabelValues("save").Inc()
		return fmt.Errorf("store report in redis: %w", err)
	}

	s.logger.Info().
		Str("report_id", r.ID).
		Int("total", r.Total).
		Int("failed", r.Failed).
		Dur("ttl", s.config.TTL).
		Msg("Report stored")

	return nil
}

// Get retrieves a report by ID.
// Returns ErrNotFound if the report doesn't exist or has expired.
func (s *Store) Get(ctx context.Context, id string) (*Report, error) {
	StoreOperations.WithLabelValues("get").Inc()

	data, err := s.redis.Get(ctx, ReportKey{ID: id}.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		StoreErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		StoreErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidReport, err)
	}

	return &r, nil
}

// Delete removes a report and its recent list entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	StoreOperations.WithLabelValues("delete").Inc()

	pipe := s.redis.TxPipeline()
	pipe.Del(ctx, ReportKey{ID: id}.String())
	pipe.LRem(ctx, RecentKey, 0, id)

	if _, err := pipe.Exec(ctx); err != nil {
		StoreErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}

	return nil
}

// Recent returns up to n report IDs, newest first.
func (s *Store) Recent(ctx context.Context, n int64) ([]string, error) {
	StoreOperations.WithLabelValues("recent").Inc()

	if n <= 0 {
		return []string{}, nil
	}

	ids, err := s.redis.LRange(ctx, RecentKey, 0, n-1).Result()
	if err != nil {
		StoreErrors.WithLabelValues("recent").Inc()
		return nil, fmt.Errorf("redis lrange: %w", err)
	}

	return ids, nil
}

// Ping checks the Redis connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}
