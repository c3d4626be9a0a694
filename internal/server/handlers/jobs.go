package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/presleydc/slurmboard/internal/errors"
	"github.com/presleydc/slurmboard/pkg/lifecycle"
)

// Jobs serves the dashboard job API on top of the lifecycle poller.
//
// Launches are bound to baseCtx, not the triggering request's context, so a
// poll loop outlives the HTTP request that started it.
type Jobs struct {
	poller  *lifecycle.Poller
	baseCtx context.Context
}

func NewJobs(poller *lifecycle.Poller, baseCtx context.Context) *Jobs {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &Jobs{poller: poller, baseCtx: baseCtx}
}

type launchResponse struct {
	RunID string `json:"run_id"`
}

// Launch starts a run. A second trigger while one is in flight is refused
// with 409 rather than racing two poll loops over the shared record.
func (h *Jobs) Launch(w http.ResponseWriter, r *http.Request) {
	runID, err := h.poller.TryLaunch(h.baseCtx)
	if err != nil {
		if errors.Is(err, lifecycle.ErrRunInFlight) {
			apperrors.WriteHTTPError(w, http.StatusConflict, apperrors.CodeRunInFlight, err.Error())
			return
		}
		apperrors.WriteHTTPError(w, http.StatusInternalServerError, apperrors.CodeInternalError, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, launchResponse{RunID: runID})
}

// Cancel aborts the in-flight run.
func (h *Jobs) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.poller.CancelRun(r.Context()); err != nil {
		if errors.Is(err, lifecycle.ErrNoActiveRun) {
			apperrors.WriteHTTPError(w, http.StatusConflict, apperrors.CodeNoActiveRun, err.Error())
			return
		}
		apperrors.WriteHTTPError(w, http.StatusInternalServerError, apperrors.CodeInternalError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type jobResponse struct {
	lifecycle.Snapshot
	InFlight bool `json:"in_flight"`
}

// Get returns the current record snapshot, status line, and narrative.
func (h *Jobs) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, jobResponse{
		Snapshot: h.poller.Tracker().Snapshot(),
		InFlight: h.poller.InFlight(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
