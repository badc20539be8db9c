// internal/workers/assistant/chat/transcript.go
package chat

import (
	"context"
	"sync"

	"claimcheck/internal/models"
)

const Greeting = "Hello! I'm your product verification assistant. How can I help you today?"

type Sender interface {
	SendChatMessage(ctx context.Context, message string, history []models.ChatMessage) (string, error)
}

// Transcript is an append-only conversation opened with a system greeting.
type Transcript struct {
	mu       sync.Mutex
	sender   Sender
	messages []models.ChatMessage
}

func NewTranscript(sender Sender) *Transcript {
	t := &Transcript{sender: sender}
	t.Reset()
	return t
}

// Reset clears the conversation back to the greeting.
func (t *Transcript) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = []models.ChatMessage{{Role: models.RoleSystem, Content: Greeting}}
}

// Messages returns a copy of the conversation so far.
func (t *Transcript) Messages() []models.ChatMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.ChatMessage(nil), t.messages...)
}

// Ask appends the question, sends it with the history that preceded it and
// appends the reply. On error FallbackReply is appended and returned along
// with the error.
func (t *Transcript) Ask(ctx context.Context, question string) (string, error) {
	t.mu.Lock()
	history := append([]models.ChatMessage(nil), t.messages...)
	t.messages = append(t.messages, models.ChatMessage{Role: models.RoleUser, Content: question})
	t.mu.Unlock()

	reply, err := t.sender.SendChatMessage(ctx, question, history)
	if err != nil {
		reply = FallbackReply
	}

	t.mu.Lock()
	t.messages = append(t.messages, models.ChatMessage{Role: models.RoleSystem, Content: reply})
	t.mu.Unlock()

	return reply, err
}
