package server

import (
	"context"
	"log/slog"
	"net/http"
	"unicode"
	"unicode/utf8"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	apperrors "github.com/lepinkainen/shelfsearch/internal/errors"
)

// Responder writes JSON bodies and error envelopes.
type Responder struct {
	// DebugMode exposes internal error messages to clients.
	DebugMode bool
	Logger    *slog.Logger
}

func (rr *Responder) logger() *slog.Logger {
	if rr.Logger != nil {
		return rr.Logger
	}
	return slog.Default()
}

// RespondAndLogError responds 500 and logs err with a fresh error id.
func (rr *Responder) RespondAndLogError(ctx context.Context, w http.ResponseWriter, err error) {
	errID := uuid.NewString()
	rr.logger().ErrorContext(ctx, "Request failed", "error", err, "err_id", errID)

	message := "Unknown error occurred while processing your request. Error ID: " + errID
	if rr.DebugMode {
		message = capitalize(err.Error())
	}
	rr.writeJSON(ctx, w, http.StatusInternalServerError, errorBody{Error: message, ErrorID: errID})
}

// RespondValidation responds 400 with every invalid field.
func (rr *Responder) RespondValidation(ctx context.Context, w http.ResponseWriter, verr *apperrors.ValidationError) {
	rr.logger().DebugContext(ctx, "Rejected invalid query", "error", verr)
	rr.writeJSON(ctx, w, http.StatusBadRequest, errorBody{Error: verr.Error(), Fields: verr.Fields})
}

// SendJSON responds 200 with data.
func (rr *Responder) SendJSON(ctx context.Context, w http.ResponseWriter, data any) {
	rr.writeJSON(ctx, w, http.StatusOK, data)
}

type errorBody struct {
	Error   string                 `json:"error"`
	ErrorID string                 `json:"errorId,omitempty"`
	Fields  []apperrors.FieldError `json:"fields,omitempty"`
}

func (rr *Responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, data any) {
	bs, err := json.Marshal(data)
	if err != nil {
		rr.logger().ErrorContext(ctx, "Cannot marshal response body", "error", err)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("unknown error"))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(bs)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
