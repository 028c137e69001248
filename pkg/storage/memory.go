package storage

import (
	"context"
	"sync"
)

// MemoryDB is an in memory implementation of ServiceStorage that is safe for
// concurrent use. Intended for tests.
type MemoryDB struct {
	maps sync.Map
}

func NewMemoryDB() *MemoryDB {
	return &MemoryDB{}
}

func (m *MemoryDB) Type() Type {
	return Memory
}

func (m *MemoryDB) IsOpen() bool {
	return true
}

func (m *MemoryDB) Close() error {
	return nil
}

func (m *MemoryDB) Write(_ context.Context, namespace, key string, value []byte) error {
	ns, _ := m.maps.LoadOrStore(namespace, &sync.Map{})
	stored := make([]byte, len(value))
	copy(stored, value)
	ns.(*sync.Map).Store(key, stored)
	return nil
}

func (m *MemoryDB) Read(_ context.Context, namespace, key string) ([]byte, error) {
	ns, ok := m.maps.Load(namespace)
	if !ok {
		return nil, nil
	}
	value, ok := ns.(*sync.Map).Load(key)
	if !ok {
		return nil, nil
	}
	return value.([]byte), nil
}

func (m *MemoryDB) ReadAll(_ context.Context, namespace string) (map[string][]byte, error) {
	result := make(map[string][]byte)
	ns, ok := m.maps.Load(namespace)
	if !ok {
		return result, nil
	}
	ns.(*sync.Map).Range(func(key, value any) bool {
		result[key.(string)] = value.([]byte)
		return true
	})
	return result, nil
}

func (m *MemoryDB) Delete(_ context.Context, namespace, key string) error {
	ns, ok := m.maps.Load(namespace)
	if !ok {
		return nil
	}
	ns.(*sync.Map).Delete(key)
	return nil
}

func (m *MemoryDB) DeleteNamespace(_ context.Context, namespace string) error {
	m.maps.Delete(namespace)
	return nil
}
