package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/roamdigital/explainer/internal/errs"
)

// errorBody is the {error, detail?} shape every non-2xx response uses.
type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// writeError maps err through the taxonomy to a status code and writes
// the JSON body. Errors outside the taxonomy are programmer errors and
// always 500, matching errs.Kind's documented contract.
func writeError(w http.ResponseWriter, err error) {
	kind, ok := errs.Kind(err)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(kind, errs.BadRequest), errors.Is(kind, errs.BadTenant):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, errorBody{Error: kind.Error(), Detail: err.Error()})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errs.BadRequest
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errs.BadRequest
	}
	return nil
}
