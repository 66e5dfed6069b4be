// ABOUTME: Deterministic intent router mapping messages to agents
// ABOUTME: Keyword scoring with last-agent stickiness and a General fallback

package router

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/helperhub/agent-gateway/internal/store"
)

// Intent is the coarse category a message classifies into.
type Intent string

// Intents, one per specialized agent plus the general fallback.
const (
	IntentTask    Intent = "task"
	IntentSearch  Intent = "search"
	IntentProfile Intent = "profile"
	IntentGeneral Intent = "general"
)

// DefaultConfidenceThreshold is the minimum confidence required to commit to
// a specialized agent.
const DefaultConfidenceThreshold = 0.3

// Decision names the agent that should handle a turn. AgentID values match
// the agent kind strings registered in the agent set.
type Decision struct {
	AgentID    string
	Intent     Intent
	Rationale  string
	Confidence float64
}

// Router classifies messages into intents and selects an agent.
type Router struct {
	threshold float64
	logger    *slog.Logger
}

// Config contains configuration options for the Router.
type Config struct {
	ConfidenceThreshold float64
	Logger              *slog.Logger
}

// New creates a Router with the given configuration.
func New(cfg Config) *Router {
	threshold := cfg.ConfidenceThreshold
	if threshold == 0 {
		threshold = DefaultConfidenceThreshold
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		threshold: threshold,
		logger:    logger.With("component", "router"),
	}
}

// keyword carries a routing signal. Phrases score higher than single words.
type keyword struct {
	text   string
	weight float64
}

// intentSignals is the fixed signal table. Evaluation order and tie-breaks
// are fixed so routing stays deterministic.
var intentSignals = map[Intent][]keyword{
	IntentTask: {
		{"task", 1.0}, {"tasks", 1.0}, {"post", 0.5}, {"posted", 0.8},
		{"job", 0.8}, {"chore", 0.8}, {"errand", 0.8},
		{"create a task", 2.0}, {"new task", 2.0}, {"my tasks", 2.0},
		{"mark", 0.5}, {"complete", 0.6}, {"cancel", 0.6}, {"deadline", 0.6},
	},
	IntentSearch: {
		{"helper", 1.0}, {"helpers", 1.0}, {"find", 0.8}, {"search", 1.0},
		{"looking for", 1.5}, {"find someone", 2.0}, {"near me", 1.0},
		{"available", 0.5}, {"candidates", 1.0}, {"who can", 1.2},
	},
	IntentProfile: {
		{"profile", 1.5}, {"my name", 1.5}, {"my email", 1.5},
		{"my phone", 1.5}, {"my address", 1.5}, {"my zip", 1.5},
		{"about me", 1.5}, {"update my", 1.0}, {"account", 0.8},
	},
	IntentGeneral: {
		{"help", 0.4}, {"how do i", 0.6}, {"what is", 0.5}, {"hello", 0.5},
		{"hi", 0.3}, {"thanks", 0.5}, {"thank you", 0.5},
	},
}

// intentPriority breaks score ties deterministically.
var intentPriority = []Intent{IntentTask, IntentSearch, IntentProfile, IntentGeneral}

// intentToAgent maps intents to agent ids.
var intentToAgent = map[Intent]string{
	IntentTask:    "task",
	IntentSearch:  "search",
	IntentProfile: "profile",
	IntentGeneral: "general",
}

// Route selects an agent for the message given the thread's prior state.
// Identical (message, prior thread state) pairs always yield the same decision.
func (r *Router) Route(message string, thread *store.Thread) Decision {
	scores, total := score(message)

	top, topScore := best(scores)
	confidence := 0.0
	if total > 0 {
		confidence = topScore / total
	}

	// Weak or absent signal on a thread with history: stay with the last
	// agent for follow-up-shaped messages instead of bouncing to General.
	if thread != nil && thread.LastAgent != "" {
		if topScore == 0 || (confidence < r.threshold && isFollowUp(message)) {
			if agentID, ok := validAgent(thread.LastAgent); ok {
				decision := Decision{
					AgentID:    agentID,
					Intent:     intentFor(agentID),
					Rationale:  "follow-up on previous turn",
					Confidence: confidence,
				}
				r.logDecision(message, decision)
				return decision
			}
		}
	}

	if topScore == 0 || confidence < r.threshold {
		decision := Decision{
			AgentID:    intentToAgent[IntentGeneral],
			Intent:     IntentGeneral,
			Rationale:  "low classification confidence",
			Confidence: confidence,
		}
		r.logDecision(message, decision)
		return decision
	}

	decision := Decision{
		AgentID:    intentToAgent[top],
		Intent:     top,
		Rationale:  "keyword classification",
		Confidence: confidence,
	}
	r.logDecision(message, decision)
	return decision
}

func (r *Router) logDecision(message string, d Decision) {
	r.logger.Debug("routing decision",
		"agent", d.AgentID,
		"intent", d.Intent,
		"confidence", d.Confidence,
		"rationale", d.Rationale,
		"message_len", len(message))
}

// score computes per-intent signal scores and their total.
func score(message string) (map[Intent]float64, float64) {
	normalized := " " + normalize(message) + " "

	scores := make(map[Intent]float64, len(intentSignals))
	total := 0.0
	for intent, signals := range intentSignals {
		for _, kw := range signals {
			if strings.Contains(normalized, " "+kw.text+" ") {
				scores[intent] += kw.weight
				total += kw.weight
			}
		}
	}
	return scores, total
}

// best returns the highest-scoring intent, breaking ties by fixed priority.
func best(scores map[Intent]float64) (Intent, float64) {
	ordered := make([]Intent, len(intentPriority))
	copy(ordered, intentPriority)
	sort.SliceStable(ordered, func(i, j int) bool {
		return scores[ordered[i]] > scores[ordered[j]]
	})
	return ordered[0], scores[ordered[0]]
}

// normalize lowercases and strips punctuation so keyword matching is stable.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ', r == '$', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// followUpOpeners mark messages that refer back to the previous turn.
var followUpOpeners = []string{
	"and ", "also ", "what about", "how about", "how many", "why ",
	"can you", "what else", "it ", "that ", "those ", "them ", "more ",
}

// isFollowUp reports whether a message looks like it continues the previous
// topic rather than starting a new one.
func isFollowUp(message string) bool {
	normalized := normalize(message)
	if len(strings.Fields(normalized)) <= 3 {
		return true
	}
	for _, opener := range followUpOpeners {
		if strings.HasPrefix(normalized, opener) {
			return true
		}
	}
	return false
}

// validAgent reports whether a persisted last_agent value is still a known
// agent id, guarding against stale data.
func validAgent(agentID string) (string, bool) {
	for _, id := range intentToAgent {
		if id == agentID {
			return id, true
		}
	}
	return "", false
}

// intentFor maps an agent id back to its intent.
func intentFor(agentID string) Intent {
	for intent, id := range intentToAgent {
		if id == agentID {
			return intent
		}
	}
	return IntentGeneral
}
