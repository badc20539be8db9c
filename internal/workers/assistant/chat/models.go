// internal/workers/assistant/chat/models.go
package chat

import "claimcheck/internal/models"

type Input struct {
	Message string               `json:"message"`
	History []models.ChatMessage `json:"history"`
}

type Output struct {
	Reply string `json:"reply"`
}
