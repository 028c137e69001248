package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/verusid/login-consent/pkg/server/framework"
	svcframework "github.com/verusid/login-consent/pkg/service/framework"
	"github.com/verusid/login-consent/pkg/service/registry"
)

const IDParam = "id"

// ClientRouter exposes the per-client scope registry over HTTP.
type ClientRouter struct {
	service *registry.Service
}

// NewClientRouter creates an HTTP router for the registry service.
func NewClientRouter(s svcframework.Service) (*ClientRouter, error) {
	if s == nil {
		return nil, errors.New("service cannot be nil")
	}
	registryService, ok := s.(*registry.Service)
	if !ok {
		return nil, fmt.Errorf("could not create client router with service type: %s", s.Type())
	}
	return &ClientRouter{service: registryService}, nil
}

type StoreClientRequest struct {
	ClientID string   `json:"client_id" validate:"required"`
	Scope    []string `json:"scope" validate:"required"`
}

type StoreClientResponse struct {
	Client registry.ClientRecord `json:"client"`
}

// StoreClient godoc
//
// @Summary     Store Client Record
// @Description Registers (or replaces) the scope a client may request login
// @Description against.
// @Tags        ClientRegistryAPI
// @Accept      json
// @Produce     json
// @Param       request body     StoreClientRequest true "request body"
// @Success     201     {object} StoreClientResponse
// @Failure     400     {string} string "Bad request"
// @Failure     500     {string} string "Internal server error"
// @Router      /v1/clients [put]
func (cr ClientRouter) StoreClient(c *gin.Context) {
	invalidRequest := "invalid store client request"
	var request StoreClientRequest
	if err := framework.Decode(c.Request, &request); err != nil {
		framework.RespondLoggingError(c, framework.NewRequestErrorWithMsg(err, invalidRequest, http.StatusBadRequest))
		return
	}

	storeClientResponse, err := cr.service.StoreClient(c, registry.StoreClientRequest{ClientID: request.ClientID, Scope: request.Scope})
	if err != nil {
		errMsg := fmt.Sprintf("could not store client record<%s>", request.ClientID)
		framework.RespondLoggingError(c, framework.NewRequestErrorWithMsg(err, errMsg, http.StatusInternalServerError))
		return
	}

	framework.Respond(c, StoreClientResponse{Client: storeClientResponse.Client}, http.StatusCreated)
}

type GetClientResponse struct {
	Client registry.ClientRecord `json:"client"`
}

// GetClient godoc
//
// @Summary     Get Client Record
// @Description Get a client record by client id
// @Tags        ClientRegistryAPI
// @Accept      json
// @Produce     json
// @Param       id  path     string true "ID"
// @Success     200 {object} GetClientResponse
// @Failure     400 {string} string "Bad request"
// @Router      /v1/clients/{id} [get]
func (cr ClientRouter) GetClient(c *gin.Context) {
	id := framework.GetParam(c, IDParam)
	if id == nil {
		errMsg := "cannot get client record without id parameter"
		framework.RespondLoggingError(c, framework.NewRequestErrorMsg(errMsg, http.StatusBadRequest))
		return
	}

	getClientResponse, err := cr.service.GetClient(c, registry.GetClientRequest{ClientID: *id})
	if err != nil {
		errMsg := fmt.Sprintf("could not get client record<%s>", *id)
		framework.RespondLoggingError(c, framework.NewRequestErrorWithMsg(err, errMsg, http.StatusBadRequest))
		return
	}

	framework.Respond(c, GetClientResponse{Client: getClientResponse.Client}, http.StatusOK)
}

type ListClientsResponse struct {
	Clients []registry.ClientRecord `json:"clients,omitempty"`
}

// ListClients godoc
//
// @Summary     List Client Records
// @Description List all registered client records
// @Tags        ClientRegistryAPI
// @Accept      json
// @Produce     json
// @Success     200 {object} ListClientsResponse
// @Failure     500 {string} string "Internal server error"
// @Router      /v1/clients [get]
func (cr ClientRouter) ListClients(c *gin.Context) {
	listClientsResponse, err := cr.service.ListClients(c)
	if err != nil {
		framework.RespondLoggingError(c, framework.NewRequestErrorWithMsg(err, "could not list client records", http.StatusInternalServerError))
		return
	}

	framework.Respond(c, ListClientsResponse{Clients: listClientsResponse.Clients}, http.StatusOK)
}

// DeleteClient godoc
//
// @Summary     Delete Client Record
// @Description Delete a client record by client id
// @Tags        ClientRegistryAPI
// @Accept      json
// @Produce     json
// @Param       id path string true "ID"
// @Success     204
// @Failure     400 {string} string "Bad request"
// @Failure     500 {string} string "Internal server error"
// @Router      /v1/clients/{id} [delete]
func (cr ClientRouter) DeleteClient(c *gin.Context) {
	id := framework.GetParam(c, IDParam)
	if id == nil {
		errMsg := "cannot delete client record without id parameter"
		framework.RespondLoggingError(c, framework.NewRequestErrorMsg(errMsg, http.StatusBadRequest))
		return
	}

	if err := cr.service.DeleteClient(c, registry.DeleteClientRequest{ClientID: *id}); err != nil {
		errMsg := fmt.Sprintf("could not delete client record<%s>", *id)
		framework.RespondLoggingError(c, framework.NewRequestErrorWithMsg(err, errMsg, http.StatusInternalServerError))
		return
	}

	framework.Respond(c, nil, http.StatusNoContent)
}
