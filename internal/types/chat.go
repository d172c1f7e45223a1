package types

// ChatRole identifies the author of a chat message
type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
)

// ChatMessage is one turn of the conversation about the selected job
type ChatMessage struct {
	Role ChatRole `json:"role"`
	Text string   `json:"text"`
}
