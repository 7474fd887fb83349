package api

import (
	"net/http"

	"github.com/Sternrassler/property-listings/pkg/metrics"
	"github.com/rs/zerolog"
)

type metricsHandler struct {
	reporter *metrics.Reporter
}

func (h *metricsHandler) snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.reporter.Snapshot(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Cache metrics unavailable")
		writeError(w, r, http.StatusServiceUnavailable, "cache metrics unavailable")
		return
	}
	writeJSON(w, r, http.StatusOK, snap)
}
