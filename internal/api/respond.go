package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/service"
	"github.com/mmynk/settleup/internal/storage"
)

// Error codes returned in ErrorResponse.ErrorCode besides the calculator kinds.
const (
	CodeBadRequest       = "BAD_REQUEST"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeNotFound         = "NOT_FOUND"
	CodeInternal         = "INTERNAL"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Detail    string `json:"detail"`
	ErrorCode string `json:"error_code"`
	Field     string `json:"field,omitempty"`
	Value     string `json:"value,omitempty"`
}

// writeJSON sends data as JSON with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// requestError marks failures to read or validate a request body.
type requestError struct {
	code string
	err  error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

// decodeJSON reads a single JSON object from the request body into target and
// validates it.
func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("request body is empty")
		}
		return &requestError{code: CodeBadRequest, err: fmt.Errorf("invalid request body: %w", err)}
	}
	if dec.More() {
		return &requestError{code: CodeBadRequest, err: errors.New("invalid request body: trailing data")}
	}

	if err := h.validate.Struct(target); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag())
			}
			return &requestError{code: CodeValidationFailed, err: errors.New(strings.Join(msgs, "; "))}
		}
		return &requestError{code: CodeValidationFailed, err: err}
	}
	return nil
}

// writeError maps err to a status code and error body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, body)
}

func classify(err error) (int, ErrorResponse) {
	var (
		reqErr  *requestError
		calcErr *calculator.Error
	)

	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest, ErrorResponse{Detail: reqErr.Error(), ErrorCode: reqErr.code}
	case errors.Is(err, service.ErrCorruptRecord):
		return http.StatusInternalServerError, ErrorResponse{Detail: "stored data failed validation", ErrorCode: CodeInternal}
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Detail: err.Error(), ErrorCode: CodeNotFound}
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusUnprocessableEntity, ErrorResponse{Detail: err.Error(), ErrorCode: CodeInvalidInput}
	case errors.As(err, &calcErr):
		status := http.StatusUnprocessableEntity
		if calcErr.Kind.IsConsistency() {
			status = http.StatusInternalServerError
		}
		return status, ErrorResponse{
			Detail:    calcErr.Message,
			ErrorCode: string(calcErr.Kind),
			Field:     calcErr.Field,
			Value:     calcErr.Value,
		}
	default:
		return http.StatusInternalServerError, ErrorResponse{Detail: http.StatusText(http.StatusInternalServerError), ErrorCode: CodeInternal}
	}
}
