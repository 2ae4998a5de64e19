package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	apperrors "travelapp/internal/errors"
	"travelapp/internal/logger"
)

var log = logger.New("api")

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("error encoding response")
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, detailResponse{Detail: detail})
}

// writeError maps service errors to responses. Anything that is not a client
// error is logged and reported as a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, verr.Fields)
		return
	}
	var httpErr *apperrors.HTTPError
	if errors.As(err, &httpErr) {
		writeDetail(w, httpErr.Code, httpErr.Message)
		return
	}

	log.WithError(err).WithField("method", r.Method).WithField("path", r.URL.Path).Error("request failed")
	writeDetail(w, http.StatusInternalServerError, "A server error occurred.")
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, apperrors.ErrNotFound)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeDetail(w, http.StatusMethodNotAllowed, fmt.Sprintf("Method %q not allowed.", r.Method))
}
