package account

import (
	"net/http"
	"strconv"

	"github.com/pawhaven/pawhaven-api/internal/domain/ledger"
	"github.com/pawhaven/pawhaven-api/internal/domain/xp"
	"github.com/pawhaven/pawhaven-api/internal/middleware"
	"github.com/pawhaven/pawhaven-api/internal/pkg/response"
)

// Handler handles account HTTP requests
type Handler struct {
	repo Repository
	logs ledger.Reader
}

// NewHandler creates new account handler
func NewHandler(repo Repository, logs ledger.Reader) *Handler {
	return &Handler{repo: repo, logs: logs}
}

// Me returns the authenticated player's profile and balances
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	acc, err := h.repo.GetByID(r.Context(), accountID)
	if err != nil {
		if err == ErrAccountNotFound {
			response.NotFound(w, "Account not found")
			return
		}
		response.InternalError(w)
		return
	}

	dailyEarned := acc.DailyXPEarned
	if acc.LastXPDate == nil || *acc.LastXPDate != Today() {
		// Lazy daily reset: a stale last_xp_date means nothing earned today.
		dailyEarned = 0
	}

	response.OK(w, ProfileResponse{
		ID:                  acc.ID.String(),
		Email:               acc.Email,
		Role:                acc.Role,
		Gems:                acc.Gems,
		Coins:               acc.Coins,
		XP:                  acc.XP,
		Level:               xp.LevelForXP(acc.XP),
		DailyXPEarned:       dailyEarned,
		DailyXPLimit:        xp.DailyLimitFor(acc.IsPremium),
		CareBadgeDays:       acc.CareBadgeDays,
		IsPremium:           acc.IsPremium,
		LastDailyRewardDate: acc.LastDailyRewardDate,
	})
}

// Transactions lists the authenticated player's transaction history for one log
func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	logName := ledger.Log(r.URL.Query().Get("log"))
	if logName == "" {
		logName = ledger.LogCoins
	}
	if logName != ledger.LogCoins && logName != ledger.LogGems && logName != ledger.LogXP {
		response.BadRequest(w, "Unknown log, expected coins, gems or xp")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	transactions, err := h.logs.List(r.Context(), logName, accountID, ledger.Pagination{Limit: limit, Offset: offset})
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, transactions)
}
