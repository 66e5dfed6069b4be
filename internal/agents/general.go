// ABOUTME: General agent: terminal fallback for greetings and unclassified messages
// ABOUTME: Never issues tool calls and never hands off, so routing always terminates

package agents

import (
	"context"
	"log/slog"

	"github.com/helperhub/agent-gateway/internal/router"
)

// GeneralAgent answers greetings and points unclassified requests at what the
// assistant can actually do.
type GeneralAgent struct {
	logger *slog.Logger
}

func (a *GeneralAgent) Kind() Kind { return KindGeneral }

// CanHandle always reports true: General is the fallback for every intent.
func (a *GeneralAgent) CanHandle(intent router.Intent) bool {
	return true
}

// Execute produces a deterministic response without touching any tools.
func (a *GeneralAgent) Execute(ctx context.Context, req *TurnRequest) (*TurnResult, error) {
	var response string
	switch {
	case containsAny(req.Message, "hello", "hi ", "hey"), req.Message == "hi":
		response = "Hi! I can help you post and manage tasks, find helpers, or update your profile. What would you like to do?"
	case containsAny(req.Message, "thank"):
		response = "You're welcome! Let me know if there's anything else."
	case containsAny(req.Message, "help", "how do i", "what can you"):
		response = "I can help with three things: managing your tasks (post, list, complete), finding helpers near you, and keeping your profile up to date. Just tell me what you need."
	default:
		response = "I'm not sure what you'd like to do. I can manage your tasks, find helpers, or update your profile — could you tell me more?"
	}

	a.logger.Debug("general response", "message_len", len(req.Message))

	return &TurnResult{
		Response:  response,
		ToolCalls: req.Invoker.Calls(),
	}, nil
}
