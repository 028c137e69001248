package registry

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/verusid/login-consent/pkg/storage"
)

const namespace = "client-registry"

type Storage struct {
	db storage.ServiceStorage
}

func NewRegistryStorage(db storage.ServiceStorage) (*Storage, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	return &Storage{db: db}, nil
}

func (s *Storage) StoreClient(ctx context.Context, client ClientRecord) error {
	data, err := json.Marshal(client)
	if err != nil {
		return errors.Wrap(err, "marshalling client record")
	}
	return s.db.Write(ctx, namespace, client.ClientID, data)
}

func (s *Storage) GetClient(ctx context.Context, clientID string) (*ClientRecord, error) {
	data, err := s.db.Read(ctx, namespace, clientID)
	if err != nil {
		return nil, errors.Wrapf(err, "reading client record<%s>", clientID)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var client ClientRecord
	if err = json.Unmarshal(data, &client); err != nil {
		return nil, errors.Wrapf(err, "unmarshalling client record<%s>", clientID)
	}
	return &client, nil
}

func (s *Storage) GetClients(ctx context.Context) ([]ClientRecord, error) {
	records, err := s.db.ReadAll(ctx, namespace)
	if err != nil {
		return nil, errors.Wrap(err, "reading client records")
	}
	clients := make([]ClientRecord, 0, len(records))
	for id, data := range records {
		var client ClientRecord
		if err = json.Unmarshal(data, &client); err != nil {
			return nil, errors.Wrapf(err, "unmarshalling client record<%s>", id)
		}
		clients = append(clients, client)
	}
	return clients, nil
}

func (s *Storage) DeleteClient(ctx context.Context, clientID string) error {
	return s.db.Delete(ctx, namespace, clientID)
}
