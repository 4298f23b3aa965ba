package httpapi

import "net/http"

type refreshSchemaRequest struct {
	Tenant string `json:"tenant,omitempty"`
}

type refreshSchemaResponse struct {
	Status string `json:"status"`
	Tenant string `json:"tenant"`
}

// handleRefreshSchema evicts the cached schema for a tenant (the process
// default when none is given) so the next lookup rebuilds from the
// database.
func (s *server) handleRefreshSchema(w http.ResponseWriter, r *http.Request) {
	var req refreshSchemaRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	tenantID := req.Tenant
	if tenantID == "" {
		tenantID = s.defaultTenant
	}

	if err := s.schema.Invalidate(r.Context(), tenantID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, refreshSchemaResponse{Status: "invalidated", Tenant: tenantID})
}
