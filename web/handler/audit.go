package handler

import (
	"context"
	"net/http"

	"github.com/screwyprof/valreg/pkg/httpkit"
	"github.com/screwyprof/valreg/registrar"
	"github.com/screwyprof/valreg/web/api"
	"github.com/screwyprof/valreg/web/handler/bind"
)

const GetAuditRoute = http.MethodGet + " " + "/api/audit"

// AuditProvider lists the most recent audit trail entries
type AuditProvider interface {
	ListAudit(ctx context.Context, requestID string) ([]registrar.AuditEntry, error)
}

type Audit struct {
	svc AuditProvider
}

func NewAudit(svc AuditProvider) *Audit {
	return &Audit{
		svc: svc,
	}
}

func (h *Audit) AddRoutes(m *http.ServeMux) {
	m.Handle(GetAuditRoute, httpkit.HandlerFunc(h.Get))
}

func (h *Audit) Get(w http.ResponseWriter, r *http.Request) http.HandlerFunc {
	entries, err := h.svc.ListAudit(r.Context(), bind.AuditRequestID(r))
	if err != nil {
		return httpkit.JsonError(api.Wrap(err))
	}

	return httpkit.JSON(api.Data(entries))
}
