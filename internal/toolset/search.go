// ABOUTME: Helper search tool backed by the search/directory collaborator
// ABOUTME: Returns candidate helpers matching criteria extracted by the search agent

package toolset

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/helperhub/agent-gateway/internal/auth"
	"github.com/helperhub/agent-gateway/internal/collab"
	"github.com/helperhub/agent-gateway/internal/tools"
)

// SearchTools returns the search pack bound to the given client.
func SearchTools(client *collab.SearchClient) []tools.Tool {
	h := &searchHandlers{client: client}
	return []tools.Tool{
		{
			Name:         "search_helpers",
			Description:  "Search for helper candidates matching criteria",
			InputSchema:  `{"type":"object","properties":{"query":{"type":"string"},"zip_code":{"type":"string"},"max_rate":{"type":"number","minimum":0},"min_rating":{"type":"number","minimum":0,"maximum":5},"limit":{"type":"integer","minimum":1,"maximum":50}},"additionalProperties":false}`,
			OutputSchema: `{"type":"object","properties":{"helpers":{"type":"array"},"count":{"type":"integer"}}}`,
			Handler:      h.SearchHelpers,
		},
	}
}

type searchHandlers struct {
	client *collab.SearchClient
}

type searchHelpersInput struct {
	Query     string  `json:"query"`
	ZipCode   string  `json:"zip_code"`
	MaxRate   float64 `json:"max_rate"`
	MinRating float64 `json:"min_rating"`
	Limit     int     `json:"limit"`
}

func (h *searchHandlers) SearchHelpers(ctx context.Context, ac *auth.AuthContext, input json.RawMessage) (json.RawMessage, error) {
	var in searchHelpersInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	helpers, err := h.client.SearchHelpers(ctx, ac, &collab.SearchRequest{
		Query:     in.Query,
		ZipCode:   in.ZipCode,
		MaxRate:   in.MaxRate,
		MinRating: in.MinRating,
		Limit:     in.Limit,
	})
	if err != nil {
		return nil, err
	}

	return json.Marshal(map[string]any{"helpers": helpers, "count": len(helpers)})
}
