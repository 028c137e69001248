package registry

// ClientRecord is the per-client configuration resolved at challenge
// issuance time. Scope holds the i-addresses of the identities the client is
// entitled to request login against.
type ClientRecord struct {
	ClientID string   `json:"client_id" validate:"required"`
	Scope    []string `json:"scope" validate:"required"`
}

type StoreClientRequest struct {
	ClientID string   `json:"client_id" validate:"required"`
	Scope    []string `json:"scope" validate:"required"`
}

type StoreClientResponse struct {
	Client ClientRecord `json:"client"`
}

type GetClientRequest struct {
	ClientID string `json:"client_id" validate:"required"`
}

type GetClientResponse struct {
	Client ClientRecord `json:"client"`
}

type ListClientsResponse struct {
	Clients []ClientRecord `json:"clients,omitempty"`
}

type DeleteClientRequest struct {
	ClientID string `json:"client_id" validate:"required"`
}
