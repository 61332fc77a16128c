package rewards

// BackfillRequest is the operator-supplied retroactive range.
type BackfillRequest struct {
	StartDate string `json:"start_date" validate:"required,iso_date"`
	EndDate   string `json:"end_date" validate:"required,iso_date"`
}

// BackfillResponse mirrors the trigger surface contract.
type BackfillResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Details *BackfillResult `json:"details"`
}

// StatusResponse is the operational status view.
type StatusResponse struct {
	PendingUsers int   `json:"pending_users"`
	RecentRuns   []Run `json:"recent_runs"`
}
