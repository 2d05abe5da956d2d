package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oeduardop1/life-assistant-sub001/internal/core"
	"github.com/oeduardop1/life-assistant-sub001/internal/services"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func readJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return nil
}

// writeError maps domain sentinels to HTTP statuses. Everything unmapped is
// a 500 with a generic body so internals never leak to clients.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	case errors.Is(err, core.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, core.ErrInvalidState):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"error", err, "method", r.Method, "url", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}

// locationFrom resolves the user's timezone from the X-Timezone header,
// falling back to the server default when absent or unknown.
func (s *Server) locationFrom(r *http.Request) *time.Location {
	name := strings.TrimSpace(r.Header.Get("X-Timezone"))
	if name == "" {
		return s.defaultLoc
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return s.defaultLoc
	}
	return loc
}

// todayFrom computes "today" in the user's timezone.
func (s *Server) todayFrom(r *http.Request) core.TodayContext {
	return core.TodayIn(time.Now(), s.locationFrom(r))
}

// monthFromQuery reads ?month=YYYY-MM, defaulting to the current month in
// the user's timezone.
func (s *Server) monthFromQuery(r *http.Request) (core.MonthYear, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("month"))
	if raw == "" {
		return core.MonthYearOf(time.Now().In(s.locationFrom(r))), nil
	}
	return core.ParseMonthYear(raw)
}

func scopeFromQuery(r *http.Request) (services.Scope, error) {
	return services.ParseScope(r.URL.Query().Get("scope"))
}

func pathID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(r.PathValue("id"))
}
