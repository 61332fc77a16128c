package care

type ActionRequest struct {
	Action string `json:"action" validate:"required,care_action"`
}
