// Package errors holds the JSON error responses shared by the API features:
// the router's 404/405 handlers and an ErrorLogger that logs a failure and
// answers the client in one call.
package errors

import (
	"net/http"

	"github.com/glrs/lighthouse/internal/app/system/auth"
	"github.com/glrs/lighthouse/internal/app/system/jsonio"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Handler serves the router's fallback responses.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// NotFound answers unknown routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	jsonio.Error(w, http.StatusNotFound, "not found")
}

// MethodNotAllowed answers known routes hit with the wrong verb.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	jsonio.Error(w, http.StatusMethodNotAllowed, "method not allowed")
}

// ErrorLogger logs handler failures with request context before writing
// the JSON error. The logged message and error stay server side; the client
// only sees userMsg.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger wraps logger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

func (e *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if id := middleware.GetReqID(r.Context()); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if u, ok := auth.CurrentUser(r); ok {
		fields = append(fields, zap.String("user_id", u.ID), zap.String("role", u.Role))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	return fields
}

// LogServerError logs at error level and responds 500.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg string) {
	e.log.Error(logMsg, e.fields(r, err)...)
	if userMsg == "" {
		userMsg = "internal error"
	}
	jsonio.Error(w, http.StatusInternalServerError, userMsg)
}

// LogBadRequest logs at info level and responds 400.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg string) {
	e.log.Info(logMsg, e.fields(r, err)...)
	jsonio.Error(w, http.StatusBadRequest, userMsg)
}

// LogForbidden logs at warn level and responds 403.
func (e *ErrorLogger) LogForbidden(w http.ResponseWriter, r *http.Request, logMsg string) {
	e.log.Warn(logMsg, e.fields(r, nil)...)
	jsonio.Error(w, http.StatusForbidden, "forbidden")
}
