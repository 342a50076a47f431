package domain

type AdminAction string

const (
	AdminResetBlacklist AdminAction = "RESET_BLACKLIST"
	AdminChangePhone    AdminAction = "CHANGE_PHONE"
	AdminAdjustScore    AdminAction = "ADJUST_SCORE"
	AdminSetStatus      AdminAction = "SET_STATUS"
)

type AdminActionInput struct {
	Action   AdminAction
	Phone    string
	UserID   uint
	NewPhone string
	Points   int
	Status   ScoreStatus
	Reason   string
}

type AdminActionResult struct {
	Message       string         `json:"message"`
	CustomerScore *CustomerScore `json:"customerScore"`
}
