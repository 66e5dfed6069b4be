// ABOUTME: Client for the helper search/directory collaborator
// ABOUTME: Queries helper candidates matching criteria extracted from user messages

package collab

import (
	"context"
	"net/http"

	"github.com/helperhub/agent-gateway/internal/auth"
)

// Helper is a candidate returned by the search collaborator.
type Helper struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Skills     []string `json:"skills,omitempty"`
	ZipCode    string   `json:"zip_code,omitempty"`
	HourlyRate float64  `json:"hourly_rate,omitempty"`
	Rating     float64  `json:"rating,omitempty"`
}

// SearchRequest carries helper search criteria.
type SearchRequest struct {
	Query     string  `json:"query,omitempty"`
	ZipCode   string  `json:"zip_code,omitempty"`
	MaxRate   float64 `json:"max_rate,omitempty"`
	MinRating float64 `json:"min_rating,omitempty"`
	Limit     int     `json:"limit,omitempty"`
}

// SearchClient talks to the search/directory collaborator.
type SearchClient struct {
	*Client
}

// NewSearchClient creates a search client.
func NewSearchClient(baseURL string) *SearchClient {
	return &SearchClient{Client: NewClient("search", baseURL)}
}

// SearchHelpers returns helper candidates matching the criteria.
func (c *SearchClient) SearchHelpers(ctx context.Context, ac *auth.AuthContext, req *SearchRequest) ([]Helper, error) {
	var resp struct {
		Helpers []Helper `json:"helpers"`
	}
	if err := c.doJSON(ctx, ac, http.MethodPost, "/api/v1/helpers/search", req, &resp); err != nil {
		return nil, err
	}
	return resp.Helpers, nil
}
