// ABOUTME: Profile tools: read and update the caller's own profile
// ABOUTME: Wraps the profile collaborator client behind schema-validated handlers

package toolset

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/helperhub/agent-gateway/internal/auth"
	"github.com/helperhub/agent-gateway/internal/collab"
	"github.com/helperhub/agent-gateway/internal/tools"
)

// ProfileTools returns the profile pack bound to the given client.
func ProfileTools(client *collab.ProfileClient) []tools.Tool {
	h := &profileHandlers{client: client}
	return []tools.Tool{
		{
			Name:         "get_profile",
			Description:  "Read the caller's profile",
			InputSchema:  `{"type":"object","additionalProperties":false}`,
			OutputSchema: `{"type":"object","properties":{"profile":{"type":"object"}}}`,
			Handler:      h.GetProfile,
		},
		{
			Name:         "update_profile",
			Description:  "Update fields on the caller's profile",
			InputSchema:  `{"type":"object","properties":{"first_name":{"type":"string"},"last_name":{"type":"string"},"email":{"type":"string","format":"email"},"zip_code":{"type":"string"},"about":{"type":"string"}},"minProperties":1,"additionalProperties":false}`,
			OutputSchema: `{"type":"object","properties":{"profile":{"type":"object"},"status":{"type":"string"}}}`,
			Handler:      h.UpdateProfile,
		},
	}
}

type profileHandlers struct {
	client *collab.ProfileClient
}

func (h *profileHandlers) GetProfile(ctx context.Context, ac *auth.AuthContext, input json.RawMessage) (json.RawMessage, error) {
	profile, err := h.client.GetProfile(ctx, ac)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]any{"profile": profile})
}

type updateProfileInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	ZipCode   string `json:"zip_code"`
	About     string `json:"about"`
}

func (h *profileHandlers) UpdateProfile(ctx context.Context, ac *auth.AuthContext, input json.RawMessage) (json.RawMessage, error) {
	var in updateProfileInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	profile, err := h.client.UpdateProfile(ctx, ac, &collab.UpdateProfileRequest{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		ZipCode:   in.ZipCode,
		About:     in.About,
	})
	if err != nil {
		return nil, err
	}

	return json.Marshal(map[string]any{"profile": profile, "status": "updated"})
}
