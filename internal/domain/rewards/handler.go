package rewards

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/pawhaven/pawhaven-api/internal/pkg/errorhandler"
	"github.com/pawhaven/pawhaven-api/internal/pkg/response"
	"github.com/pawhaven/pawhaven-api/internal/pkg/validator"
)

// Handler exposes the operator trigger and status surface
type Handler struct {
	processor *Processor
	repo      Repository
}

// NewHandler creates new rewards handler
func NewHandler(processor *Processor, repo Repository) *Handler {
	return &Handler{processor: processor, repo: repo}
}

// Run triggers a daily reward batch manually
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	run, err := h.processor.RunDaily(r.Context(), TriggerManual)
	if err != nil {
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
			"REWARD_RUN_FAILED", "Daily reward run failed", err)
		return
	}

	response.OK(w, run)
}

// Backfill replays missed daily rewards over an explicit date range
func (h *Handler) Backfill(w http.ResponseWriter, r *http.Request) {
	var req BackfillRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := h.processor.Backfill(r.Context(), req.StartDate, req.EndDate)
	if err != nil {
		if errors.Is(err, ErrInvalidDateRange) || errors.Is(err, ErrRangeTooWide) {
			response.BadRequest(w, err.Error())
			return
		}
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
			"BACKFILL_FAILED", "Retroactive reward run failed", err)
		return
	}

	response.OK(w, BackfillResponse{
		Success: true,
		Message: fmt.Sprintf("Backfilled %d rewards over %d days", result.TotalRewardsGiven, result.DaysProcessed),
		Details: result,
	})
}

// Runs lists the most recent execution-log rows
func (h *Handler) Runs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	runs, err := h.repo.ListRuns(r.Context(), limit)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, runs)
}

// Pending returns the operational status view: how many accounts have not
// received today's reward yet, plus the recent runs
func (h *Handler) Pending(w http.ResponseWriter, r *http.Request) {
	today := time.Now().UTC().Format(dateLayout)

	pending, err := h.repo.CountPending(r.Context(), today)
	if err != nil {
		response.InternalError(w)
		return
	}

	runs, err := h.repo.ListRuns(r.Context(), 5)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, StatusResponse{
		PendingUsers: pending,
		RecentRuns:   runs,
	})
}
