package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"contact-gateway/middleware/ratelimit/domain"

	"github.com/redis/go-redis/v9"
)

// hitScript incrementa o contador e abre a janela no primeiro hit.
// Se a chave ficou sem TTL (ex.: criada por fora), a janela é reaberta.
var hitScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {n, ttl}
`)

// RedisWindowStore é um WindowStore de janela fixa no Redis (INCR + PEXPIRE).
//
// Diferente do MemoryWindowStore, as cotas sobrevivem a restart do processo e
// são compartilhadas entre réplicas.
type RedisWindowStore struct {
	rdb    *redis.Client
	prefix string
}

type RedisStoreOption func(*RedisWindowStore)

func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisWindowStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func NewRedisWindowStore(rdb *redis.Client, opts ...RedisStoreOption) *RedisWindowStore {
	s := &RedisWindowStore{
		rdb:    rdb,
		prefix: "ratelimit:window",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hit implementa domain.WindowStore.
func (s *RedisWindowStore) Hit(ctx context.Context, key domain.Key, window time.Duration) (domain.Window, error) {
	k := s.prefix + ":" + string(key)

	res, err := hitScript.Run(ctx, s.rdb, []string{k}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return domain.Window{}, fmt.Errorf("redis window hit: %w", err)
	}
	if len(res) != 2 {
		return domain.Window{}, fmt.Errorf("redis window hit: unexpected reply %v", res)
	}

	return domain.Window{
		Count:     res[0],
		Remaining: time.Duration(res[1]) * time.Millisecond,
	}, nil
}
