package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/couchcryptid/disaster-record-service/internal/codec"
	"github.com/couchcryptid/disaster-record-service/internal/dictionary"
	"github.com/couchcryptid/disaster-record-service/internal/ingest"
	"github.com/couchcryptid/disaster-record-service/internal/store"
)

// apiError is the structured error body returned by every failing request.
type apiError struct {
	ErrorKind string `json:"error_kind"`
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response body
}

// writeError maps a component error onto the wire taxonomy. Unrecognized
// errors become opaque 500s so internal details never leak.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status, body := classifyError(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
		body.Message = "internal error"
	}
	writeJSON(w, status, body)
}

func classifyError(err error) (int, apiError) {
	var (
		unknownDomain *dictionary.UnknownDomainError
		unknownCode   *dictionary.UnknownCodeError
		invalidCoord  *codec.InvalidCoordinateError
		invalidSeg    *codec.InvalidSegmentError
		malformed     *codec.MalformedIdentifierError
	)

	switch {
	case errors.As(err, &invalidSeg):
		return http.StatusBadRequest, apiError{ErrorKind: "invalid_segment", Message: err.Error(), Field: invalidSeg.Field}
	case errors.As(err, &invalidCoord):
		return http.StatusBadRequest, apiError{ErrorKind: "invalid_coordinate", Message: err.Error(), Field: invalidCoord.Field}
	case errors.As(err, &malformed):
		return http.StatusBadRequest, apiError{ErrorKind: "malformed_identifier", Message: err.Error()}
	case errors.As(err, &unknownDomain):
		return http.StatusBadRequest, apiError{ErrorKind: "unknown_domain", Message: err.Error()}
	case errors.As(err, &unknownCode):
		return http.StatusBadRequest, apiError{ErrorKind: "unknown_code", Message: err.Error()}
	case errors.Is(err, ingest.ErrInvalidMode):
		return http.StatusBadRequest, apiError{ErrorKind: "invalid_mode", Message: err.Error()}
	case errors.Is(err, store.ErrDuplicateIdentifier):
		return http.StatusConflict, apiError{ErrorKind: "duplicate_identifier", Message: err.Error()}
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, apiError{ErrorKind: "not_found", Message: err.Error()}
	default:
		return http.StatusInternalServerError, apiError{ErrorKind: "internal", Message: err.Error()}
	}
}
