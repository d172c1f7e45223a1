package agent

import (
	"context"
	"errors"
	"strings"

	"github.com/jonathan/career-pilot/internal/llm"
	"github.com/jonathan/career-pilot/internal/prompts"
	"github.com/jonathan/career-pilot/internal/types"
)

// SendMessage answers one chat turn about the job. The agent keeps no state:
// history must hold every prior turn and must not include message itself.
func (a *CareerAgent) SendMessage(ctx context.Context, history []types.ChatMessage, message string, job types.JobListing, analysis *types.JobAnalysis) (string, error) {
	system, err := prompts.Render(prompts.ChatSystem, map[string]string{
		"JobTitle": job.Title,
		"Company":  job.Company,
		"Analysis": mustJSON(analysis),
	})
	if err != nil {
		return "", &AgentError{Op: OpChat, Message: "failed to build prompt", Cause: err}
	}

	req := llm.ChatRequest{
		SystemInstruction: system,
		History:           make([]llm.Message, 0, len(history)),
		Message:           message,
	}
	for _, msg := range history {
		req.History = append(req.History, llm.Message{Role: llm.Role(msg.Role), Text: msg.Text})
	}

	resp, err := a.client.Chat(ctx, req, llm.TierStandard)
	if err != nil {
		if errors.Is(err, llm.ErrEmptyResponse) {
			return FallbackReply, nil
		}
		return "", &AgentError{Op: OpChat, Message: "request failed", Cause: err}
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return FallbackReply, nil
	}
	return resp.Text, nil
}
