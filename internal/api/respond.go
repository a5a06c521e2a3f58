package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	apperrors "github.com/julianstephens/habitlog/internal/errors"
	"github.com/julianstephens/habitlog/internal/logger"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

type messageBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

// writeError renders err as {"message","error"}. Internal causes are logged
// and replaced by a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperrors.As(err)
	status := appErr.Status()

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed",
			"request_id", requestIDFrom(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", appErr.Err,
		)
		writeJSON(w, status, errorBody{Message: "internal server error", Error: string(apperrors.KindInternal)})
		return
	}

	writeJSON(w, status, errorBody{Message: appErr.Message, Error: string(appErr.Kind)})
}

// decodeJSON reads a single JSON object into dst, rejecting unknown fields
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperrors.Validation("request body is required")
		case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
			return apperrors.Validation("request body is not valid JSON")
		case errors.As(err, &typeErr):
			return apperrors.Validation("%s has the wrong type", typeErr.Field)
		case errors.As(err, &maxErr):
			return apperrors.Validation("request body is too large")
		default:
			// unknown fields surface as plain errors: json: unknown field "x"
			return &apperrors.AppError{Kind: apperrors.KindValidation, Message: trimJSONPrefix(err.Error()), Err: err}
		}
	}

	if dec.More() {
		return apperrors.Validation("request body must contain a single JSON object")
	}
	return nil
}

func trimJSONPrefix(msg string) string {
	const prefix = "json: "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}

// pathID parses a numeric route variable
func pathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, apperrors.Validation("%s must be a positive integer", name)
	}
	return id, nil
}
