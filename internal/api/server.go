// Package api exposes the sheet service over HTTP for the sheet UI.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/udisondev/wwsheet/internal/game/effect"
	"github.com/udisondev/wwsheet/internal/game/roll"
	"github.com/udisondev/wwsheet/internal/game/stats"
	"github.com/udisondev/wwsheet/internal/model"
	"github.com/udisondev/wwsheet/internal/sheet"
)

// Sheets is the service surface the routes call.
type Sheets interface {
	GetEffectiveModel(ctx context.Context, id string) (*sheet.View, error)
	GetDerivedStats(ctx context.Context, id string) (stats.Derived, error)

	PrepareRoll(ctx context.Context, in sheet.RollInput) (*roll.Session, error)
	SubmitRoll(ctx context.Context, rollID string) (*roll.Resolution, error)
	CancelRoll(ctx context.Context, rollID string) error
	Roll(ctx context.Context, in sheet.RollInput) (*roll.Resolution, error)

	ApplyDamage(ctx context.Context, id string, amount int) (*sheet.HealthResult, error)
	ApplyHealing(ctx context.Context, id string, amount int) (*sheet.HealthResult, error)
	ApplyHealthLoss(ctx context.Context, id string, amount int) (*sheet.HealthResult, error)
	ApplyHealthRegain(ctx context.Context, id string, amount int) (*sheet.HealthResult, error)

	SetLevel(ctx context.Context, id string, level int) (*sheet.View, error)
	AddItem(ctx context.Context, id string, item model.Item) (*model.Item, error)
	UpdateItem(ctx context.Context, id string, item model.Item) (*model.Item, error)
	DeleteItem(ctx context.Context, id, itemID string) error

	ExpireEffects(ctx context.Context, id, user string, now time.Time) ([]string, error)
	ApplyEffect(ctx context.Context, originID, targetID string, mods []model.Modifier) ([]model.Modifier, error)
	RemoveEffect(ctx context.Context, id, effectID string) (int, error)
}

// Server routes HTTP requests to the sheet service.
type Server struct {
	sheets Sheets
	feed   http.Handler
	router *mux.Router
	now    func() time.Time
}

// NewServer builds the router. feed serves the outcome message websocket;
// nil disables the route.
func NewServer(sheets Sheets, feed http.Handler) *Server {
	s := &Server{
		sheets: sheets,
		feed:   feed,
		router: mux.NewRouter(),
		now:    time.Now,
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := s.router.PathPrefix("/api").Subrouter()
	r.Use(logRequests)

	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)

	e := r.PathPrefix("/entities/{id}").Subrouter()
	e.HandleFunc("/effective", s.handleEffective).Methods(http.MethodGet)
	e.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	e.HandleFunc("/rolls", s.handleRoll).Methods(http.MethodPost)
	e.HandleFunc("/rolls/prepare", s.handlePrepareRoll).Methods(http.MethodPost)
	e.HandleFunc("/damage", s.handleHealth(s.sheets.ApplyDamage)).Methods(http.MethodPost)
	e.HandleFunc("/healing", s.handleHealth(s.sheets.ApplyHealing)).Methods(http.MethodPost)
	e.HandleFunc("/health-loss", s.handleHealth(s.sheets.ApplyHealthLoss)).Methods(http.MethodPost)
	e.HandleFunc("/health-regain", s.handleHealth(s.sheets.ApplyHealthRegain)).Methods(http.MethodPost)
	e.HandleFunc("/level", s.handleLevel).Methods(http.MethodPut)
	e.HandleFunc("/items", s.handleAddItem).Methods(http.MethodPost)
	e.HandleFunc("/items/{itemID}", s.handleUpdateItem).Methods(http.MethodPut)
	e.HandleFunc("/items/{itemID}", s.handleDeleteItem).Methods(http.MethodDelete)
	e.HandleFunc("/effects", s.handleApplyEffect).Methods(http.MethodPost)
	e.HandleFunc("/effects/expire", s.handleExpireEffects).Methods(http.MethodPost)
	e.HandleFunc("/effects/{effectID}", s.handleRemoveEffect).Methods(http.MethodDelete)

	r.HandleFunc("/rolls/{rollID}/submit", s.handleSubmitRoll).Methods(http.MethodPost)
	r.HandleFunc("/rolls/{rollID}/cancel", s.handleCancelRoll).Methods(http.MethodPost)

	if s.feed != nil {
		r.Handle("/outcomes/ws", s.feed).Methods(http.MethodGet)
	}
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encoding response", "err", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{
		"error":   http.StatusText(code),
		"message": msg,
		"status":  code,
	})
}

// errBadRequest marks request decoding failures.
var errBadRequest = errors.New("bad request")

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// statusOf maps service errors onto HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, roll.ErrRollCancelled), errors.Is(err, roll.ErrRollState):
		return http.StatusConflict
	case errors.Is(err, errBadRequest),
		errors.Is(err, sheet.ErrInvalidLevel),
		errors.Is(err, stats.ErrInvalidAmount),
		errors.Is(err, roll.ErrInvalidRequest),
		errors.Is(err, effect.ErrUnknownKind):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusOf(err)
	if code >= http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeError(w, code, err.Error())
}
