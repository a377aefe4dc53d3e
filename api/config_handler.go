package api

import (
	"net/http"

	"github.com/seenimoa/fxdash/internal/config"
)

// ConfigResponse is the JSON envelope returned by GET /api/v1/config.
type ConfigResponse struct {
	Config *config.Config   `json:"config"`
	APIKey config.KeyStatus `json:"api_key"`
}

// handleGetConfig returns the running configuration. The upstream API key
// is excluded via its json:"-" tag and reported only as masked status.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ConfigResponse{
			Config: s.cfg,
			APIKey: s.cfg.Source.KeyStatus(),
		},
	})
}

// handleGetConfigKeys returns the status of the upstream API key.
func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    s.cfg.Source.KeyStatus(),
	})
}
