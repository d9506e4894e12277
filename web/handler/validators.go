package handler

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/screwyprof/valreg/pkg/httpkit"
	"github.com/screwyprof/valreg/registrar"
	"github.com/screwyprof/valreg/web/api"
	"github.com/screwyprof/valreg/web/handler/bind"
)

const GetProcessedValidatorsRoute = http.MethodGet + " " + "/api/validators/processed"

// Sentinel errors
var (
	ErrPasswordNotConfigured = errors.New("api access password not configured on server")
	ErrInvalidPassword       = errors.New("invalid or missing access password")
)

// CompletedRequestsProvider lists completed requests with their transaction
// history
type CompletedRequestsProvider interface {
	CompletedRequests(ctx context.Context) ([]registrar.RequestWithTransactions, error)
}

// ProcessedValidators exports every completed validator onboarding. The
// endpoint is gated by a shared access password supplied either in the
// X-Access-Password header or the access_password query parameter.
type ProcessedValidators struct {
	svc      CompletedRequestsProvider
	password string
}

func NewProcessedValidators(svc CompletedRequestsProvider, password string) *ProcessedValidators {
	return &ProcessedValidators{
		svc:      svc,
		password: password,
	}
}

func (h *ProcessedValidators) AddRoutes(m *http.ServeMux) {
	m.Handle(GetProcessedValidatorsRoute, httpkit.HandlerFunc(h.Get))
}

func (h *ProcessedValidators) Get(w http.ResponseWriter, r *http.Request) http.HandlerFunc {
	if h.password == "" {
		return httpkit.JsonError(api.InternalServerError(ErrPasswordNotConfigured))
	}

	supplied := r.URL.Query().Get("access_password")
	if supplied == "" {
		supplied = r.Header.Get("X-Access-Password")
	}
	if subtle.ConstantTimeCompare([]byte(supplied), []byte(h.password)) != 1 {
		return httpkit.JsonError(api.Unauthorized(ErrInvalidPassword))
	}

	completed, err := h.svc.CompletedRequests(r.Context())
	if err != nil {
		return httpkit.JsonError(api.Wrap(err))
	}

	validators := bind.ProcessedValidators(completed)

	return httpkit.JSON(api.Collection(len(validators), validators))
}
