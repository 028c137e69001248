package storage

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	pong               = "PONG"
	redisScanBatchSize = 1000
	namespaceSep       = ":"
)

// RedisDB implements ServiceStorage on a redis instance, mapping
// namespace+key onto "<namespace>:<key>".
type RedisDB struct {
	db *redis.Client
}

func NewRedisDB(address, password string) (*RedisDB, error) {
	if address == "" {
		return nil, errors.New("redis address cannot be empty")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
	})
	if err := redisotel.InstrumentTracing(client); err != nil {
		logrus.WithError(err).Warn("could not instrument redis tracing")
	}
	return &RedisDB{db: client}, nil
}

func (r *RedisDB) Type() Type {
	return Redis
}

func (r *RedisDB) IsOpen() bool {
	res, err := r.db.Ping(context.Background()).Result()
	if err != nil {
		logrus.WithError(err).Error("pinging redis")
		return false
	}
	return res == pong
}

func (r *RedisDB) Close() error {
	return r.db.Close()
}

func (r *RedisDB) Write(ctx context.Context, namespace, key string, value []byte) error {
	return r.db.Set(ctx, redisKey(namespace, key), value, 0).Err()
}

func (r *RedisDB) Read(ctx context.Context, namespace, key string) ([]byte, error) {
	value, err := r.db.Get(ctx, redisKey(namespace, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return value, err
}

func (r *RedisDB) ReadAll(ctx context.Context, namespace string) (map[string][]byte, error) {
	keys, err := r.scanKeys(ctx, namespace)
	if err != nil {
		return nil, err
	}
	result := make(map[string][]byte, len(keys))
	for _, k := range keys {
		value, err := r.db.Get(ctx, k).Bytes()
		if err != nil {
			return nil, errors.Wrapf(err, "reading key<%s>", k)
		}
		result[k[len(namespace)+len(namespaceSep):]] = value
	}
	return result, nil
}

func (r *RedisDB) Delete(ctx context.Context, namespace, key string) error {
	return r.db.Del(ctx, redisKey(namespace, key)).Err()
}

func (r *RedisDB) DeleteNamespace(ctx context.Context, namespace string) error {
	keys, err := r.scanKeys(ctx, namespace)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.db.Del(ctx, keys...).Err()
}

func (r *RedisDB) scanKeys(ctx context.Context, namespace string) ([]string, error) {
	var keys []string
	iter := r.db.Scan(ctx, 0, namespace+namespaceSep+"*", redisScanBatchSize).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrapf(err, "scanning namespace<%s>", namespace)
	}
	return keys, nil
}

func redisKey(namespace, key string) string {
	return namespace + namespaceSep + key
}
