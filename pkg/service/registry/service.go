// Package registry keeps per-client configuration records: which scope a
// registered OAuth2 client may request login against. Challenge issuance
// resolves requested scope here instead of trusting literals in the login
// request.
package registry

import (
	"context"
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/verusid/login-consent/internal/util"
	"github.com/verusid/login-consent/pkg/service/framework"
	"github.com/verusid/login-consent/pkg/storage"
)

type Service struct {
	storage *Storage
}

func (s *Service) Type() framework.Type {
	return framework.Registry
}

func (s *Service) Status() framework.Status {
	if s.storage == nil {
		return framework.Status{
			Status:  framework.StatusNotReady,
			Message: "registry service is not ready: no storage configured",
		}
	}
	return framework.Status{Status: framework.StatusReady}
}

func NewRegistryService(db storage.ServiceStorage) (*Service, error) {
	registryStorage, err := NewRegistryStorage(db)
	if err != nil {
		return nil, util.LoggingErrorMsg(err, "could not instantiate storage for the registry service")
	}
	service := Service{storage: registryStorage}
	if !service.Status().IsReady() {
		return nil, errors.New(service.Status().Message)
	}
	return &service, nil
}

func (s *Service) StoreClient(ctx context.Context, request StoreClientRequest) (*StoreClientResponse, error) {
	logrus.Debugf("storing client record: %+v", request)

	if len(request.Scope) == 0 {
		return nil, util.LoggingNewErrorf("client<%s> record needs at least one scope entry", request.ClientID)
	}
	client := ClientRecord{ClientID: request.ClientID, Scope: request.Scope}
	if err := s.storage.StoreClient(ctx, client); err != nil {
		return nil, util.LoggingErrorMsg(err, "store client record")
	}
	return &StoreClientResponse{Client: client}, nil
}

func (s *Service) GetClient(ctx context.Context, request GetClientRequest) (*GetClientResponse, error) {
	logrus.Debugf("getting client record: %s", util.SanitizeLog(request.ClientID))

	client, err := s.storage.GetClient(ctx, request.ClientID)
	if err != nil {
		return nil, util.LoggingErrorMsg(err, "get client record")
	}
	if client == nil {
		return nil, util.LoggingNewError(fmt.Sprintf("client record<%s> does not exist", util.SanitizeLog(request.ClientID)))
	}
	return &GetClientResponse{Client: *client}, nil
}

func (s *Service) ListClients(ctx context.Context) (*ListClientsResponse, error) {
	logrus.Debug("listing all client records")

	clients, err := s.storage.GetClients(ctx)
	if err != nil {
		return nil, util.LoggingErrorMsg(err, "list client records")
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].ClientID < clients[j].ClientID })
	return &ListClientsResponse{Clients: clients}, nil
}

func (s *Service) DeleteClient(ctx context.Context, request DeleteClientRequest) error {
	logrus.Debugf("deleting client record: %s", util.SanitizeLog(request.ClientID))

	if err := s.storage.DeleteClient(ctx, request.ClientID); err != nil {
		return util.LoggingErrorMsg(err, "delete client record")
	}
	return nil
}

// ResolveScope returns the scope a client may request: its registry record
// when one exists, otherwise the supplied default.
func (s *Service) ResolveScope(ctx context.Context, clientID string, defaultScope []string) ([]string, error) {
	client, err := s.storage.GetClient(ctx, clientID)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving scope for client<%s>", clientID)
	}
	if client == nil {
		logrus.Debugf("client<%s> has no registry record, using default scope", util.SanitizeLog(clientID))
		return defaultScope, nil
	}
	return client.Scope, nil
}
