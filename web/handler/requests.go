package handler

import (
	"context"
	"net/http"

	"github.com/screwyprof/valreg/pkg/httpkit"
	"github.com/screwyprof/valreg/registrar"
	"github.com/screwyprof/valreg/web/api"
	"github.com/screwyprof/valreg/web/handler/bind"
)

// Request lifecycle routes
const (
	CreateRequestRoute     = http.MethodPost + " " + "/api/requests"
	ListRequestsRoute      = http.MethodGet + " " + "/api/requests"
	GetRequestRoute        = http.MethodGet + " " + "/api/requests/{id}"
	UpdateStatusRoute      = http.MethodPut + " " + "/api/requests/{id}/status"
	RecordTransactionRoute = http.MethodPost + " " + "/api/requests/{id}/transaction"
	DeleteRequestRoute     = http.MethodDelete + " " + "/api/requests/{id}"
)

// RequestService drives the delegation request lifecycle
type RequestService interface {
	CreateRequest(ctx context.Context, req registrar.NewRequest) (registrar.DelegationRequest, error)
	GetRequest(ctx context.Context, id string) (registrar.DelegationRequest, []registrar.TransactionRecord, error)
	ListRequests(ctx context.Context, filter registrar.Filter) ([]registrar.DelegationRequest, error)
	UpdateStatus(ctx context.Context, id string, upd registrar.StatusUpdate) (registrar.DelegationRequest, error)
	RecordTransaction(ctx context.Context, id string, ev registrar.Evidence) (registrar.DelegationRequest, error)
	DeleteRequest(ctx context.Context, id, origin string) (int64, error)
}

type Requests struct {
	svc RequestService
}

func NewRequests(svc RequestService) *Requests {
	return &Requests{
		svc: svc,
	}
}

func (h *Requests) AddRoutes(m *http.ServeMux) {
	m.Handle(CreateRequestRoute, httpkit.HandlerFunc(h.Create))
	m.Handle(ListRequestsRoute, httpkit.HandlerFunc(h.List))
	m.Handle(GetRequestRoute, httpkit.HandlerFunc(h.Get))
	m.Handle(UpdateStatusRoute, httpkit.HandlerFunc(h.UpdateStatus))
	m.Handle(RecordTransactionRoute, httpkit.HandlerFunc(h.RecordTransaction))
	m.Handle(DeleteRequestRoute, httpkit.HandlerFunc(h.Delete))
}

func (h *Requests) Create(w http.ResponseWriter, r *http.Request) http.HandlerFunc {
	req, err := bind.CreateRequest(r)
	if err != nil {
		return httpkit.JsonError(api.BadRequest(err))
	}

	created, err := h.svc.CreateRequest(r.Context(), req)
	if err != nil {
		return httpkit.JsonError(api.Wrap(err))
	}

	return httpkit.JSON(api.Data(api.CreateResult{
		ID:      created.ID,
		Message: "Request submitted successfully",
	}))
}

func (h *Requests) List(w http.ResponseWriter, r *http.Request) http.HandlerFunc {
	requests, err := h.svc.ListRequests(r.Context(), bind.ListFilter(r))
	if err != nil {
		return httpkit.JsonError(api.Wrap(err))
	}

	return httpkit.JSON(api.Data(requests))
}

func (h *Requests) Get(w http.ResponseWriter, r *http.Request) http.HandlerFunc {
	req, txs, err := h.svc.GetRequest(r.Context(), r.PathValue("id"))
	if err != nil {
		return httpkit.JsonError(api.Wrap(err))
	}

	return httpkit.JSON(api.Data(api.RequestDetail{
		Request:      req,
		Transactions: txs,
	}))
}

func (h *Requests) UpdateStatus(w http.ResponseWriter, r *http.Request) http.HandlerFunc {
	upd, err := bind.StatusUpdate(r)
	if err != nil {
		return httpkit.JsonError(api.BadRequest(err))
	}

	if _, err := h.svc.UpdateStatus(r.Context(), r.PathValue("id"), upd); err != nil {
		return httpkit.JsonError(api.Wrap(err))
	}

	return httpkit.JSON(api.Message("Status updated successfully"))
}

func (h *Requests) RecordTransaction(w http.ResponseWriter, r *http.Request) http.HandlerFunc {
	ev, err := bind.Evidence(r)
	if err != nil {
		return httpkit.JsonError(api.BadRequest(err))
	}

	if _, err := h.svc.RecordTransaction(r.Context(), r.PathValue("id"), ev); err != nil {
		return httpkit.JsonError(api.Wrap(err))
	}

	return httpkit.JSON(api.Message("Transaction details updated"))
}

func (h *Requests) Delete(w http.ResponseWriter, r *http.Request) http.HandlerFunc {
	id := r.PathValue("id")

	count, err := h.svc.DeleteRequest(r.Context(), id, bind.Origin(r))
	if err != nil {
		return httpkit.JsonError(api.Wrap(err))
	}
	if count == 0 {
		return httpkit.JsonError(api.NotFound(registrar.ErrNotFound))
	}

	return httpkit.JSON(api.Message("Request deleted successfully"))
}
