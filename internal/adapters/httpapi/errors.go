package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/nullable"
	"github.com/sirupsen/logrus"

	"github.com/giftflow/giftflow-api/internal/app/apperr"
)

// ErrorResponse is the JSON error envelope shared by every endpoint.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code      string                             `json:"code"`
	Message   string                             `json:"message"`
	Details   nullable.Nullable[map[string]any]  `json:"details,omitempty"`
	RequestID nullable.Nullable[string]          `json:"requestId,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, message string, details map[string]any) {
	var er ErrorResponse
	er.Error.Code = code
	er.Error.Message = message
	if details != nil {
		er.Error.Details = nullable.NewNullableWithValue(details)
	}
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		er.Error.RequestID = nullable.NewNullableWithValue(rid)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(er)
}

// writeAppError maps application errors onto the envelope. Anything that is
// not an *apperr.Error is an internal failure: logged, not leaked.
func writeAppError(w http.ResponseWriter, r *http.Request, log *logrus.Logger, err error) {
	ae := (*apperr.Error)(nil)
	if errors.As(err, &ae) {
		writeError(w, r, ae.Status, ae.Code, ae.Message, ae.Details)
		return
	}
	if log != nil {
		log.WithFields(logrus.Fields{
			"requestId": middleware.GetReqID(r.Context()),
			"path":      r.URL.Path,
		}).WithError(err).Error("request failed")
	}
	writeError(w, r, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
