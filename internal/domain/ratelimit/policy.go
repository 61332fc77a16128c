package ratelimit

import "time"

// Action names a rate-limited operation. Windows are keyed by
// (account, action); there is no cross-key sharing.
type Action string

const (
	ActionMessageSend          Action = "message_send"
	ActionPetSale              Action = "pet_sale"
	ActionProfileUpdate        Action = "profile_update"
	ActionLoginAttempt         Action = "login_attempt"
	ActionFinancialTransaction Action = "financial_transaction"
)

// Policy caps attempts within a fixed window measured from the first attempt.
type Policy struct {
	MaxAttempts int
	Window      time.Duration
}

// Policies holds the predefined limits for sensitive actions.
var Policies = map[Action]Policy{
	ActionMessageSend:          {MaxAttempts: 10, Window: 1 * time.Minute},
	ActionPetSale:              {MaxAttempts: 5, Window: 5 * time.Minute},
	ActionProfileUpdate:        {MaxAttempts: 3, Window: 5 * time.Minute},
	ActionLoginAttempt:         {MaxAttempts: 5, Window: 15 * time.Minute},
	ActionFinancialTransaction: {MaxAttempts: 10, Window: 1 * time.Minute},
}

// PolicyFor returns the predefined policy for an action.
func PolicyFor(action Action) (Policy, bool) {
	p, ok := Policies[action]
	return p, ok
}
