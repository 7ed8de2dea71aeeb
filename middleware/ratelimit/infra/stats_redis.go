package infra

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"contact-gateway/middleware/ratelimit/domain"

	"github.com/redis/go-redis/v9"
)

// RedisStatsStore grava contadores de desfecho em hashes do Redis.
//
//	<prefix>:total                 outcome -> n (cumulativo, não expira)
//	<prefix>:minute:<YYYYMMDDhhmm> outcome -> n (expira em ttl)
//	<prefix>:key:<ip>              outcome -> n (só com trackKeys, expira em ttl)
type RedisStatsStore struct {
	rdb *redis.Client

	prefix string
	ttl    time.Duration

	bucket string // "minute" (padrão) ou "none"

	trackKeys bool
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

func WithStatsBucket(bucket string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.bucket = strings.ToLower(strings.TrimSpace(bucket)) }
}

func WithStatsTrackKeys(track bool) RedisStatsOption {
	return func(s *RedisStatsStore) { s.trackKeys = track }
}

func NewRedisStatsStore(rdb *redis.Client, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: "contact:stats",
		ttl:    24 * time.Hour,
		bucket: "minute",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	field := string(ev.Outcome)
	if field == "" {
		return nil
	}

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.prefix+":total", field, 1)

	if s.bucket == "minute" {
		bucketKey := fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
		pipe.HIncrBy(ctx, bucketKey, field, 1)
		if s.ttl > 0 {
			pipe.Expire(ctx, bucketKey, s.ttl)
		}
	}

	if s.trackKeys {
		if k := strings.TrimSpace(string(ev.Key)); k != "" {
			keyKey := s.prefix + ":key:" + k
			pipe.HIncrBy(ctx, keyKey, field, 1)
			if s.ttl > 0 {
				pipe.Expire(ctx, keyKey, s.ttl)
			}
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis stats record: %w", err)
	}
	return nil
}

// Totals implementa domain.StatsReader lendo o hash <prefix>:total.
// Campos que não são desfechos conhecidos são ignorados.
func (s *RedisStatsStore) Totals(ctx context.Context) (map[domain.Outcome]int64, error) {
	out := make(map[domain.Outcome]int64, len(domain.Outcomes))
	if s == nil || s.rdb == nil {
		return out, nil
	}

	raw, err := s.rdb.HGetAll(ctx, s.prefix+":total").Result()
	if err != nil {
		return nil, fmt.Errorf("redis stats totals: %w", err)
	}
	for _, o := range domain.Outcomes {
		v, ok := raw[string(o)]
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("redis stats totals %s=%q: %w", o, v, err)
		}
		out[o] = n
	}
	return out, nil
}
