// Package storage provides the namespaced key-value storage used by the
// service, independent of DB providers.
package storage

import (
	"context"

	"github.com/pkg/errors"
)

type Type string

const (
	Bolt   Type = "bolt"
	Memory Type = "memory"
	Redis  Type = "redis"
)

// ServiceStorage describes the api for storage independent of DB providers
type ServiceStorage interface {
	Type() Type
	IsOpen() bool
	Close() error
	Write(ctx context.Context, namespace, key string, value []byte) error
	Read(ctx context.Context, namespace, key string) ([]byte, error)
	ReadAll(ctx context.Context, namespace string) (map[string][]byte, error)
	Delete(ctx context.Context, namespace, key string) error
	DeleteNamespace(ctx context.Context, namespace string) error
}

// Option carries provider-specific settings.
type Option struct {
	BoltFile      string
	RedisAddress  string
	RedisPassword string
}

// NewStorage returns the storage provider registered under the given type.
func NewStorage(storageType Type, option Option) (ServiceStorage, error) {
	switch storageType {
	case Bolt, "":
		return NewBoltDB(option.BoltFile)
	case Memory:
		return NewMemoryDB(), nil
	case Redis:
		return NewRedisDB(option.RedisAddress, option.RedisPassword)
	default:
		return nil, errors.Errorf("unsupported storage provider: %s", storageType)
	}
}
