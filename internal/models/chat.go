package models

// Role identifies who authored a chat turn
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ChatMessage is a single turn of the tutor transcript
type ChatMessage struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// IsUser reports whether the learner wrote this turn
func (m ChatMessage) IsUser() bool {
	return m.Role == RoleUser
}
