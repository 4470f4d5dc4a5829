package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"go-chi-calculator/internal/engine"
	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/keypad"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/tape"
)

// ErrTapeDisabled is reported when tape endpoints are hit without a store.
var ErrTapeDisabled = errors.New("tape is disabled")

// Tape persists resolved calculations.
type Tape interface {
	Append(ctx context.Context, e tape.Entry) (tape.Entry, error)
	Recent(ctx context.Context, limit int) ([]tape.Entry, error)
	BySession(ctx context.Context, sessionID string, limit int) ([]tape.Entry, error)
}

// SessionHandler serves the keypad session endpoints. Tape may be nil.
type SessionHandler struct {
	Sessions *SessionStore
	Tape     Tape
}

// NewSessionHandler wires a session store to an optional tape.
func NewSessionHandler(sessions *SessionStore, t Tape) *SessionHandler {
	return &SessionHandler{Sessions: sessions, Tape: t}
}

// Create handles POST /calculator/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	s := h.Sessions.Create()
	observability.LoggerWithTrace(r.Context()).Info("calculator session created",
		zap.String("session_id", s.ID),
		zap.String("request_id", observability.RequestIDFromContext(r.Context())),
	)
	handlers.WriteJSON(w, http.StatusCreated, s.Snapshot())
}

// Get handles GET /calculator/sessions/{sessionID}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	handlers.WriteJSON(w, http.StatusOK, s.Snapshot())
}

// Delete handles DELETE /calculator/sessions/{sessionID}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := h.Sessions.Delete(id); err != nil {
		handlers.WriteError(w, http.StatusNotFound, err.Error(), observability.RequestIDFromContext(r.Context()))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Keys handles POST /calculator/sessions/{sessionID}/keys. Every key is
// resolved before any is applied, so an unknown key leaves the session as it was.
func (h *SessionHandler) Keys(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx).With(zap.String("session_id", s.ID))
	ctx, span := tracer.Start(ctx, "calculator.session.keys",
		trace.WithAttributes(attribute.String("calculator.session.id", s.ID)),
	)
	defer span.End()

	var req KeysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "keys", "invalid request body", err, http.StatusBadRequest, w)
		return
	}
	if len(req.Keys) == 0 {
		observability.RecordError(ctx, span, logger, errorCounter, "keys", "no keys provided", errors.New("keys array is empty"), http.StatusBadRequest, w)
		return
	}

	actions := make([]keypad.Action, 0, len(req.Keys))
	for i, k := range req.Keys {
		a, err := keypad.Resolve(k)
		if err != nil {
			err = fmt.Errorf("key %d: %w", i, err)
			observability.RecordError(ctx, span, logger, errorCounter, "keys", err.Error(), err, http.StatusBadRequest, w)
			return
		}
		actions = append(actions, a)
	}
	span.SetAttributes(attribute.Int("calculator.keys.count", len(actions)))

	snap, calcs, err := s.Press(actions)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "keys", err.Error(), err, http.StatusBadRequest, w)
		return
	}
	keysCounter.Add(ctx, int64(len(actions)))

	for _, c := range calcs {
		h.record(ctx, logger, s.ID, c)
	}

	span.SetAttributes(
		attribute.String("calculator.display", snap.Display),
		attribute.String("calculator.phase", snap.Phase),
	)
	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, http.StatusOK, snap)
}

// record meters a resolved calculation and appends it to the tape. Tape
// failures are logged and do not fail the request.
func (h *SessionHandler) record(ctx context.Context, logger *zap.Logger, sessionID string, c engine.Calculation) {
	attrs := metric.WithAttributes(attribute.String("operation", c.Operator.String()))
	if c.Failed() {
		errorCounter.Add(ctx, 1, attrs)
		logger.Warn("calculation failed",
			zap.String("operation", c.Operator.String()),
			zap.String("left", c.Left),
			zap.String("right", c.Right),
			zap.Error(c.Err),
		)
	} else {
		opsCounter.Add(ctx, 1, attrs)
		if v, err := strconv.ParseFloat(c.Result, 64); err == nil {
			resultGauge.Record(ctx, v, attrs)
		}
	}

	if h.Tape == nil {
		return
	}
	if _, err := h.Tape.Append(ctx, tape.FromCalculation(sessionID, c)); err != nil {
		logger.Error("appending to tape", zap.Error(err))
	}
}

// SessionTape handles GET /calculator/sessions/{sessionID}/tape
func (h *SessionHandler) SessionTape(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.writeTape(w, r, func(ctx context.Context, limit int) ([]tape.Entry, error) {
		return h.Tape.BySession(ctx, s.ID, limit)
	})
}

// RecentTape handles GET /calculator/tape
func (h *SessionHandler) RecentTape(w http.ResponseWriter, r *http.Request) {
	h.writeTape(w, r, func(ctx context.Context, limit int) ([]tape.Entry, error) {
		return h.Tape.Recent(ctx, limit)
	})
}

func (h *SessionHandler) writeTape(w http.ResponseWriter, r *http.Request, list func(context.Context, int) ([]tape.Entry, error)) {
	ctx := r.Context()
	requestID := observability.RequestIDFromContext(ctx)
	if h.Tape == nil {
		handlers.WriteError(w, http.StatusServiceUnavailable, ErrTapeDisabled.Error(), requestID)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			handlers.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", raw), requestID)
			return
		}
		limit = n
	}

	entries, err := list(ctx, limit)
	if err != nil {
		observability.LoggerWithTrace(ctx).Error("reading tape", zap.Error(err), zap.String("request_id", requestID))
		handlers.WriteError(w, http.StatusInternalServerError, "reading tape failed", requestID)
		return
	}
	if entries == nil {
		entries = []tape.Entry{}
	}
	handlers.WriteJSON(w, http.StatusOK, TapeResponse{Entries: entries})
}

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	s, err := h.Sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		handlers.WriteError(w, http.StatusNotFound, err.Error(), observability.RequestIDFromContext(r.Context()))
		return nil, false
	}
	return s, true
}
