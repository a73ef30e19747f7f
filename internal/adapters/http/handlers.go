package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/application"
	"github.com/heidi-the-red/timeEnabledMosaicDataset/internal/domain"
)

// handleHealth returns detailed health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	details := s.health.GetHealthDetails(r.Context())

	status := http.StatusOK
	if !details.Healthy {
		status = http.StatusServiceUnavailable
	}

	s.writeJSON(w, status, map[string]interface{}{
		"status":          boolToStatus(details.Healthy),
		"ready":           details.Ready,
		"mosaics_managed": details.MosaicsManaged,
		"mosaics_ready":   details.MosaicsReady,
		"components":      details.Components,
	})
}

// handleLiveness returns liveness status.
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	if s.health.IsHealthy(r.Context()) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	} else {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
	}
}

// handleReadiness returns readiness status.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if s.health.IsReady(r.Context()) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	} else {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
	}
}

// handleListWorkspace lists the datasets of the workspace container.
func (s *Server) handleListWorkspace(w http.ResponseWriter, r *http.Request) {
	infos, err := s.catalog.List(r.Context(), s.workspace)
	if err != nil {
		s.logger.Error("workspace listing failed", "container", s.workspace, "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to list workspace")
		return
	}

	datasets := make([]map[string]interface{}, len(infos))
	for i, info := range infos {
		datasets[i] = map[string]interface{}{
			"path":      info.Path,
			"kind":      info.Kind,
			"row_count": info.RowCount,
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"container": s.workspace,
		"datasets":  datasets,
		"count":     len(datasets),
	})
}

// handleListMosaics returns all registered mosaics.
func (s *Server) handleListMosaics(w http.ResponseWriter, r *http.Request) {
	mosaics, err := s.registry.ListMosaics(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to list mosaics")
		return
	}

	response := make([]map[string]interface{}, len(mosaics))
	for i := range mosaics {
		response[i] = formatMosaic(&mosaics[i])
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"mosaics": response,
		"count":   len(mosaics),
	})
}

// handleGetMosaic returns a specific mosaic.
func (s *Server) handleGetMosaic(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	mosaic, err := s.registry.GetMosaic(r.Context(), name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "Mosaic not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, "Failed to get mosaic")
		return
	}

	s.writeJSON(w, http.StatusOK, formatMosaic(mosaic))
}

// handleGetMosaicStatus returns the status of a specific mosaic.
func (s *Server) handleGetMosaicStatus(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	status, err := s.registry.GetMosaicStatus(r.Context(), name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "Mosaic not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, "Failed to get mosaic status")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"name":   name,
		"status": string(status),
	})
}

// handleBuild triggers a workflow build for a registered mosaic. The
// build runs in the background; the handler only reports acceptance.
func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if _, err := s.registry.GetMosaicStatus(r.Context(), name); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "Mosaic not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, "Failed to get mosaic status")
		return
	}

	// Claim the build slot atomically so concurrent triggers cannot
	// both launch a build.
	if !s.registry.BeginBuild(name) {
		s.writeError(w, http.StatusConflict, "Build already in progress")
		return
	}

	go func() {
		if err := s.builder.BuildByName(context.Background(), name); err != nil {
			s.logger.Error("background build failed", "mosaic", name, "error", err)
		}
	}()

	s.writeJSON(w, http.StatusAccepted, map[string]string{
		"name":   name,
		"status": string(domain.StatusBuilding),
	})
}

// handleSync handles the sync trigger endpoint.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if s.syncService == nil {
		s.writeError(w, http.StatusNotFound, "Sync service not available")
		return
	}

	result, err := s.syncService.TriggerSync(r.Context())
	if err != nil {
		if errors.Is(err, application.ErrRateLimited) {
			w.Header().Set("Retry-After", "30")
			s.writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Try again in 30 seconds.")
			return
		}
		s.logger.Error("sync failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Sync failed")
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

// formatMosaic formats a managed mosaic for JSON output.
func formatMosaic(m *domain.ManagedMosaic) map[string]interface{} {
	out := map[string]interface{}{
		"name":        m.Name,
		"path":        m.Path,
		"status":      m.Status,
		"items":       m.Items,
		"ready":       m.IsReady(),
		"build_count": m.BuildCount,
	}
	if !m.LastBuild.IsZero() {
		out["last_build"] = m.LastBuild
	}
	if !m.LastSync.IsZero() {
		out["last_sync"] = m.LastSync
	}
	if m.LastError != "" {
		out["last_error"] = m.LastError
	}
	return out
}

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func boolToStatus(b bool) string {
	if b {
		return "ok"
	}
	return "unhealthy"
}
