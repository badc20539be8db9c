// internal/models/chat.go
package models

type ChatRole string

const (
	RoleUser   ChatRole = "user"
	RoleSystem ChatRole = "system"
)

// ChatMessage is one turn of an assistant conversation.
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// ChatRequest is the /chat body. PreviousConvo holds prior user turns only,
// each wrapped in a single-element array.
type ChatRequest struct {
	Question      string     `json:"question"`
	PreviousConvo [][]string `json:"previous_convo"`
}

type ChatResponse struct {
	Answer string `json:"answer"`
}
