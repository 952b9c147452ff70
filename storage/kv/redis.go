package kv

import (
	"context"
	"time"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/ifcet/aula/core"
	"github.com/ifcet/aula/core/session"
)

type (
	// Redis keeps session values under `{prefix}:{namespace}:{key}`.
	Redis struct {
		rdb    goredis.Cmdable
		prefix string
		ttl    time.Duration
	}

	redisStore struct {
		r         *Redis
		namespace string
	}
)

var (
	_ session.Backend = (*Redis)(nil)
	_ session.Store   = (*redisStore)(nil)
)

// DialRedis connects to the configured server and checks it answers.
func DialRedis(conf *core.Config) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        conf.Redis.Addr,
		Password:    conf.Redis.Password,
		DB:          conf.Redis.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "redis ping")
	}
	return rdb, nil
}

func NewRedis(rdb goredis.Cmdable, prefix string, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *Redis) Scope(namespace string) session.Store {
	return &redisStore{r: r, namespace: namespace}
}

func (s *redisStore) key(k string) string {
	if s.r.prefix == "" {
		return s.namespace + ":" + k
	}
	return s.r.prefix + ":" + s.namespace + ":" + k
}

func (s *redisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.r.rdb.Get(ctx, s.key(key)).Result()
	if err == goredis.Nil {
		return "", session.ErrNotFound
	}
	if err != nil {
		return "", errors.Wrap(err, "redis get")
	}
	return val, nil
}

func (s *redisStore) Set(ctx context.Context, key, value string) error {
	if err := s.r.rdb.Set(ctx, s.key(key), value, s.r.ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set")
	}
	return nil
}

func (s *redisStore) Remove(ctx context.Context, key string) error {
	if err := s.r.rdb.Del(ctx, s.key(key)).Err(); err != nil {
		return errors.Wrap(err, "redis del")
	}
	return nil
}
