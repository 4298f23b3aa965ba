package httpapi

import (
	"net/http"

	"github.com/roamdigital/explainer/internal/tenant"
)

type resolveTenantRequest struct {
	Hostname string `json:"hostname"`
}

type resolveTenantResponse struct {
	Hostname string  `json:"hostname"`
	Tenant   *string `json:"tenant"`
}

// handleResolveTenant performs a bare origin lookup: a miss reports
// tenant:null rather than falling back to the process default, since the
// caller is asking what the platform knows, not what the pipeline would
// use to serve the request.
func (s *server) handleResolveTenant(w http.ResponseWriter, r *http.Request) {
	var req resolveTenantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	resp := resolveTenantResponse{Hostname: req.Hostname}
	if req.Hostname != "" {
		if id, ok, err := tenant.LookupByHostname(r.Context(), s.store, req.Hostname); err != nil {
			writeError(w, err)
			return
		} else if ok {
			resp.Tenant = &id
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
