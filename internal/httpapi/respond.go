package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dwikikusuma/storefront/internal/apperr"
	"github.com/go-chi/chi/v5/middleware"
)

type envelope struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func respondData(w http.ResponseWriter, code int, data any) {
	writeJSON(w, code, envelope{Status: "success", Data: data})
}

func respondMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, envelope{Status: "success", Message: msg})
}

func httpStatusFromKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindInsufficientStock, apperr.KindConflict:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindAuth:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondError is the terminal error handler: it logs full context and emits
// a sanitized message. Internals only surface in dev.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := httpStatusFromKind(apperr.KindOf(err))

	msg := err.Error()
	if code >= http.StatusInternalServerError {
		s.log.Error("request failed",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("principal", principalFrom(r.Context()).Key()),
			slog.Any("err", err),
		)
		if !s.dev {
			msg = "internal server error"
		}
	}

	status := "fail"
	if code >= http.StatusInternalServerError {
		status = "error"
	}
	writeJSON(w, code, envelope{Status: status, Message: msg})
}
