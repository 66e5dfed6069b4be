// ABOUTME: Search agent: finds helper candidates matching criteria from the message
// ABOUTME: Extracts zip/rate constraints deterministically and renders the candidate list

package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/helperhub/agent-gateway/internal/collab"
	"github.com/helperhub/agent-gateway/internal/router"
)

// SearchAgent handles helper discovery requests.
type SearchAgent struct {
	logger *slog.Logger
}

func (a *SearchAgent) Kind() Kind { return KindSearch }

func (a *SearchAgent) CanHandle(intent router.Intent) bool {
	return intent == router.IntentSearch
}

// Execute extracts search criteria from the message and queries the directory.
func (a *SearchAgent) Execute(ctx context.Context, req *TurnRequest) (*TurnResult, error) {
	criteria := map[string]any{
		"query": searchQuery(req.Message),
		"limit": 10,
	}
	if zip := extractZip(req.Message); zip != "" {
		criteria["zip_code"] = zip
	}
	if rate := extractRate(req.Message); rate > 0 {
		criteria["max_rate"] = rate
	}

	args, err := json.Marshal(criteria)
	if err != nil {
		return nil, fmt.Errorf("encoding search criteria: %w", err)
	}

	result, err := req.Invoker.Invoke(ctx, "search_helpers", args)
	if err != nil {
		return nil, err
	}

	var out struct {
		Helpers []collab.Helper `json:"helpers"`
		Count   int             `json:"count"`
	}
	if err := json.Unmarshal(result, &out); err != nil {
		return nil, fmt.Errorf("decoding search_helpers result: %w", err)
	}

	return &TurnResult{
		Response:  renderHelpers(out.Helpers),
		ToolCalls: req.Invoker.Calls(),
	}, nil
}

// renderHelpers formats candidates into a short readable list.
func renderHelpers(helpers []collab.Helper) string {
	if len(helpers) == 0 {
		return "I couldn't find any helpers matching that. Try widening the criteria, for example a higher rate or a different zip code."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I found %d helper(s):\n", len(helpers))
	for _, h := range helpers {
		fmt.Fprintf(&b, "- %s", h.Name)
		if h.HourlyRate > 0 {
			fmt.Fprintf(&b, " ($%.0f/hr", h.HourlyRate)
			if h.Rating > 0 {
				fmt.Fprintf(&b, ", %.1f stars", h.Rating)
			}
			b.WriteString(")")
		} else if h.Rating > 0 {
			fmt.Fprintf(&b, " (%.1f stars)", h.Rating)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// searchStopWords are filler tokens stripped when deriving the free-text query.
var searchStopWords = map[string]bool{
	"find": true, "search": true, "looking": true, "for": true, "a": true,
	"an": true, "the": true, "me": true, "someone": true, "who": true,
	"can": true, "helper": true, "helpers": true, "near": true, "in": true,
	"with": true, "under": true, "i": true, "need": true, "want": true,
	"to": true, "please": true, "my": true,
}

// searchQuery derives the free-text part of the search from the message by
// dropping filler words and extracted constraints.
func searchQuery(message string) string {
	var kept []string
	for _, word := range strings.Fields(strings.ToLower(message)) {
		word = strings.Trim(word, ".,!?$")
		if word == "" || searchStopWords[word] {
			continue
		}
		if zipPattern.MatchString(word) || ratePattern.MatchString("$"+word) {
			continue
		}
		kept = append(kept, word)
	}
	return strings.Join(kept, " ")
}
