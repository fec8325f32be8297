// Package handler wires the reconciliation endpoints to the pipeline.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"veridex/internal/listing"
	"veridex/internal/pipeline"
	"veridex/internal/storage"
	dErrors "veridex/pkg/domain-errors"
	"veridex/pkg/platform/httputil"
	"veridex/pkg/requestcontext"
)

// Service defines the interface for reconciliation operations.
type Service interface {
	Run(ctx context.Context, rec listing.Record) (*pipeline.RunState, error)
	RunStream(ctx context.Context, rec listing.Record, events chan<- pipeline.StageEvent) (*pipeline.RunState, error)
}

// Handler wires reconciliation endpoints to the pipeline service.
type Handler struct {
	service Service
	store   storage.Store
	logger  *slog.Logger
}

// New constructs a reconcile handler with its dependencies. The store may be
// nil; run lookup endpoints then answer 503.
func New(service Service, store storage.Store, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		store:   store,
		logger:  logger,
	}
}

// Register mounts reconciliation endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/reconcile", h.HandleReconcile)
	r.Post("/reconcile/stream", h.HandleReconcileStream)
	r.Get("/runs/{runID}", h.HandleGetRun)
	r.Get("/records/{recordID}/runs", h.HandleListRuns)
}

// HandleReconcile handles POST /v1/reconcile requests.
func (h *Handler) HandleReconcile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[ReconcileRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	state, err := h.service.Run(ctx, req.ParsedRecord())
	if err != nil {
		h.logger.ErrorContext(ctx, "reconciliation failed",
			"request_id", requestID,
			"record_id", req.RecordID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "reconciliation routed",
		"request_id", requestID,
		"run_id", state.RunID,
		"record_id", state.Record.ID,
		"action", state.Decision.Action,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromRunState(state))
}

// HandleReconcileStream handles POST /v1/reconcile/stream requests. The run
// is streamed as server-sent events, one event per completed pipeline stage.
func (h *Handler) HandleReconcileStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ReconcileRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "streaming unsupported by client connection"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events := make(chan pipeline.StageEvent, 4)
	done := make(chan struct{})
	var runErr error
	go func() {
		defer close(done)
		_, runErr = h.service.RunStream(ctx, req.ParsedRecord(), events)
	}()

	for event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			h.logger.ErrorContext(ctx, "stage event marshal failed",
				"request_id", requestID,
				"stage", event.Stage,
				"error", err,
			)
			continue
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Stage, payload)
		flusher.Flush()
	}
	<-done

	if runErr != nil {
		// Headers are already sent; surface the failure as a terminal event.
		h.logger.ErrorContext(ctx, "streamed reconciliation failed",
			"request_id", requestID,
			"error", runErr,
		)
		fmt.Fprintf(w, "event: error\ndata: %q\n\n", runErr.Error())
		flusher.Flush()
	}
}

// HandleGetRun handles GET /v1/runs/{runID} requests.
func (h *Handler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.store == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "run storage is not configured"))
		return
	}

	runID, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "run ID must be a UUID"))
		return
	}

	state, err := h.store.FindRun(ctx, runID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRunState(state))
}

// HandleListRuns handles GET /v1/records/{recordID}/runs requests.
func (h *Handler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.store == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "run storage is not configured"))
		return
	}

	recordID, err := uuid.Parse(chi.URLParam(r, "recordID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "record ID must be a UUID"))
		return
	}

	states, err := h.store.ListByRecord(ctx, recordID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]*ReconcileResponse, 0, len(states))
	for i := range states {
		out = append(out, FromRunState(&states[i]))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"runs": out})
}
