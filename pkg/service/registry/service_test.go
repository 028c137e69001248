package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verusid/login-consent/pkg/storage"
)

func testRegistryService(t *testing.T) *Service {
	service, err := NewRegistryService(storage.NewMemoryDB())
	require.NoError(t, err)
	return service
}

func TestStoreAndGetClient(t *testing.T) {
	ctx := context.Background()
	service := testRegistryService(t)

	stored, err := service.StoreClient(ctx, StoreClientRequest{ClientID: "app", Scope: []string{"iScopeOne"}})
	require.NoError(t, err)
	assert.Equal(t, "app", stored.Client.ClientID)
	assert.Equal(t, []string{"iScopeOne"}, stored.Client.Scope)

	got, err := service.GetClient(ctx, GetClientRequest{ClientID: "app"})
	require.NoError(t, err)
	assert.Equal(t, stored.Client, got.Client)

	// storing again replaces the record
	_, err = service.StoreClient(ctx, StoreClientRequest{ClientID: "app", Scope: []string{"iScopeTwo"}})
	require.NoError(t, err)
	got, err = service.GetClient(ctx, GetClientRequest{ClientID: "app"})
	require.NoError(t, err)
	assert.Equal(t, []string{"iScopeTwo"}, got.Client.Scope)
}

func TestStoreClientRequiresScope(t *testing.T) {
	service := testRegistryService(t)

	_, err := service.StoreClient(context.Background(), StoreClientRequest{ClientID: "app"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "at least one scope entry")
}

func TestGetUnknownClient(t *testing.T) {
	service := testRegistryService(t)

	_, err := service.GetClient(context.Background(), GetClientRequest{ClientID: "ghost"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestListClients(t *testing.T) {
	ctx := context.Background()
	service := testRegistryService(t)

	listed, err := service.ListClients(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed.Clients)

	_, err = service.StoreClient(ctx, StoreClientRequest{ClientID: "bravo", Scope: []string{"iScope"}})
	require.NoError(t, err)
	_, err = service.StoreClient(ctx, StoreClientRequest{ClientID: "alpha", Scope: []string{"iScope"}})
	require.NoError(t, err)

	listed, err = service.ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, listed.Clients, 2)
	assert.Equal(t, "alpha", listed.Clients[0].ClientID)
	assert.Equal(t, "bravo", listed.Clients[1].ClientID)
}

func TestDeleteClient(t *testing.T) {
	ctx := context.Background()
	service := testRegistryService(t)

	_, err := service.StoreClient(ctx, StoreClientRequest{ClientID: "app", Scope: []string{"iScope"}})
	require.NoError(t, err)

	err = service.DeleteClient(ctx, DeleteClientRequest{ClientID: "app"})
	require.NoError(t, err)

	_, err = service.GetClient(ctx, GetClientRequest{ClientID: "app"})
	assert.Error(t, err)
}

func TestResolveScope(t *testing.T) {
	ctx := context.Background()
	service := testRegistryService(t)
	defaultScope := []string{"iDefaultScope"}

	// no record falls back to the default
	scope, err := service.ResolveScope(ctx, "unregistered", defaultScope)
	require.NoError(t, err)
	assert.Equal(t, defaultScope, scope)

	_, err = service.StoreClient(ctx, StoreClientRequest{ClientID: "app", Scope: []string{"iRegisteredScope"}})
	require.NoError(t, err)

	scope, err = service.ResolveScope(ctx, "app", defaultScope)
	require.NoError(t, err)
	assert.Equal(t, []string{"iRegisteredScope"}, scope)
}
