// Package api: assumption and configuration endpoints.
package api

import (
	"net/http"

	"github.com/seenimoa/solarprop/internal/config"
	"github.com/seenimoa/solarprop/internal/proposal"
)

// AssumptionsResponse is returned by GET /api/v1/assumptions.
type AssumptionsResponse struct {
	proposal.Assumptions
	ProductionSource string `json:"production_source"`
}

// handleAssumptions returns the price book, finance terms and scenario
// settings the engine is running with.
func (s *Server) handleAssumptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: AssumptionsResponse{
			Assumptions:      s.svc.Assumptions(),
			ProductionSource: s.svc.EstimatorName(),
		},
	})
}

// handleConfigKeys returns the status of external-service API keys.
// Key values are masked.
func (s *Server) handleConfigKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    config.CheckAPIKeys(s.cfg),
	})
}
