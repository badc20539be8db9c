// internal/workers/assistant/chat/handler.go
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	stderrors "claimcheck/internal/common/errors"
	backendhttp "claimcheck/internal/common/http"
	"claimcheck/internal/common/logger"
	"claimcheck/internal/common/metrics"
	"claimcheck/internal/models"
)

const (
	TaskType = "assistant-chat"

	// FallbackReply is shown whenever the assistant has nothing usable to say.
	FallbackReply = "Something went wrong"
)

var (
	ErrChatFailed = errors.New("CHAT_FAILED")
)

type Backend interface {
	PostJSON(ctx context.Context, endpoint string, payload interface{}) ([]byte, error)
}

type Handler struct {
	config     *Config
	backend    Backend
	logger     logger.Logger
	errHandler *stderrors.ErrorHandler
}

func NewHandler(config *Config, backend Backend, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		backend:    backend,
		logger:     scoped,
		errHandler: stderrors.NewErrorHandler(scoped),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, stderrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.Message) == "" {
		return nil, stderrors.NewInvalidInputError("message is required")
	}
	reply, err := h.SendChatMessage(ctx, input.Message, input.History)
	if err != nil {
		return nil, err
	}
	return &Output{Reply: reply}, nil
}

// SendChatMessage asks the assistant a question. Only user turns from
// history are replayed, each as a single-element list.
func (h *Handler) SendChatMessage(ctx context.Context, message string, history []models.ChatMessage) (string, error) {
	req := models.ChatRequest{
		Question:      message,
		PreviousConvo: PreviousUserTurns(history),
	}

	body, err := h.backend.PostJSON(ctx, h.config.Endpoint, req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrChatFailed, err)
	}

	var resp models.ChatResponse
	if err := backendhttp.DecodeJSON(h.config.Endpoint, body, &resp); err != nil {
		return "", fmt.Errorf("%w: %w", ErrChatFailed, err)
	}

	return ParseAnswer(resp.Answer), nil
}

// PreviousUserTurns converts a transcript into the backend's
// previous_convo shape. The result is never nil.
func PreviousUserTurns(history []models.ChatMessage) [][]string {
	turns := make([][]string, 0, len(history))
	for _, msg := range history {
		if msg.Role == models.RoleUser {
			turns = append(turns, []string{msg.Content})
		}
	}
	return turns
}

// ParseAnswer unwraps an assistant answer. A JSON object yields its
// "response" field when that is truthy: strings as-is, numbers and true in
// their JSON form, objects and arrays as JSON text. Text that is not JSON,
// and a bare null, is returned verbatim. Anything else, including an empty
// answer, yields FallbackReply.
func ParseAnswer(answer string) string {
	if answer == "" {
		return FallbackReply
	}

	var parsed interface{}
	if err := json.Unmarshal([]byte(answer), &parsed); err != nil {
		return answer
	}
	if parsed == nil {
		return answer
	}

	obj, ok := parsed.(map[string]interface{})
	if !ok {
		return FallbackReply
	}

	switch v := obj["response"].(type) {
	case nil:
		return FallbackReply
	case string:
		if v == "" {
			return FallbackReply
		}
		return v
	case bool:
		if !v {
			return FallbackReply
		}
		return "true"
	case float64:
		if v == 0 {
			return FallbackReply
		}
		if math.Abs(v) < 1e21 {
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return FallbackReply
		}
		return string(b)
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	stdErr := stderrors.Normalize(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errHandler.HandleJobError(context.Background(), client, job, err)
}
