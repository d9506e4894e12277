package handler

import (
	"context"
	"net/http"

	"github.com/screwyprof/valreg/pkg/httpkit"
	"github.com/screwyprof/valreg/registrar"
	"github.com/screwyprof/valreg/web/api"
)

const GetStatsRoute = http.MethodGet + " " + "/api/stats"

// StatsProvider aggregates the request set by status and network
type StatsProvider interface {
	Stats(ctx context.Context) (registrar.Stats, error)
}

type Stats struct {
	svc StatsProvider
}

func NewStats(svc StatsProvider) *Stats {
	return &Stats{
		svc: svc,
	}
}

func (h *Stats) AddRoutes(m *http.ServeMux) {
	m.Handle(GetStatsRoute, httpkit.HandlerFunc(h.Get))
}

func (h *Stats) Get(w http.ResponseWriter, r *http.Request) http.HandlerFunc {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		return httpkit.JsonError(api.Wrap(err))
	}

	return httpkit.JSON(api.Data(stats))
}
