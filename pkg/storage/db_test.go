package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getTestStorages(t *testing.T) map[Type]ServiceStorage {
	boltPath := filepath.Join(t.TempDir(), "test.db")
	boltDB, err := NewBoltDB(boltPath)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = boltDB.Close()
		_ = os.Remove(boltPath)
	})

	server := miniredis.RunT(t)
	redisDB, err := NewRedisDB(server.Addr(), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = redisDB.Close() })

	return map[Type]ServiceStorage{
		Bolt:   boltDB,
		Memory: NewMemoryDB(),
		Redis:  redisDB,
	}
}

func TestStorageReadWrite(t *testing.T) {
	ctx := context.Background()
	for storageType, db := range getTestStorages(t) {
		t.Run(string(storageType), func(t *testing.T) {
			namespace := "clients"

			// missing key reads empty
			value, err := db.Read(ctx, namespace, "missing")
			assert.NoError(t, err)
			assert.Empty(t, value)

			err = db.Write(ctx, namespace, "app1", []byte(`{"scope":["s1"]}`))
			assert.NoError(t, err)

			value, err = db.Read(ctx, namespace, "app1")
			assert.NoError(t, err)
			assert.Equal(t, []byte(`{"scope":["s1"]}`), value)

			err = db.Write(ctx, namespace, "app2", []byte(`{"scope":["s2"]}`))
			assert.NoError(t, err)

			all, err := db.ReadAll(ctx, namespace)
			assert.NoError(t, err)
			assert.Len(t, all, 2)
			assert.Contains(t, all, "app1")
			assert.Contains(t, all, "app2")

			err = db.Delete(ctx, namespace, "app1")
			assert.NoError(t, err)

			value, err = db.Read(ctx, namespace, "app1")
			assert.NoError(t, err)
			assert.Empty(t, value)

			err = db.DeleteNamespace(ctx, namespace)
			assert.NoError(t, err)

			all, err = db.ReadAll(ctx, namespace)
			assert.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestNewStorage(t *testing.T) {
	db, err := NewStorage(Memory, Option{})
	assert.NoError(t, err)
	assert.Equal(t, Memory, db.Type())
	assert.True(t, db.IsOpen())

	_, err = NewStorage("mysql", Option{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported storage provider")
}
