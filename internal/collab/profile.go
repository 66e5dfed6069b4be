// ABOUTME: Client for the profile collaborator
// ABOUTME: Reads and updates the authenticated caller's own profile

package collab

import (
	"context"
	"net/http"

	"github.com/helperhub/agent-gateway/internal/auth"
)

// Profile mirrors the profile service's user profile resource.
type Profile struct {
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	ZipCode   string `json:"zip_code,omitempty"`
	About     string `json:"about,omitempty"`
}

// UpdateProfileRequest carries profile fields to change. Zero-valued fields
// are omitted so the collaborator leaves them untouched.
type UpdateProfileRequest struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	ZipCode   string `json:"zip_code,omitempty"`
	About     string `json:"about,omitempty"`
}

// ProfileClient talks to the profile collaborator.
type ProfileClient struct {
	*Client
}

// NewProfileClient creates a profile client.
func NewProfileClient(baseURL string) *ProfileClient {
	return &ProfileClient{Client: NewClient("profile", baseURL)}
}

// GetProfile returns the caller's profile. The collaborator resolves the user
// from the forwarded bearer token.
func (c *ProfileClient) GetProfile(ctx context.Context, ac *auth.AuthContext) (*Profile, error) {
	var profile Profile
	if err := c.doJSON(ctx, ac, http.MethodGet, "/api/v1/profile/me", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile updates the caller's profile.
func (c *ProfileClient) UpdateProfile(ctx context.Context, ac *auth.AuthContext, req *UpdateProfileRequest) (*Profile, error) {
	var profile Profile
	if err := c.doJSON(ctx, ac, http.MethodPatch, "/api/v1/profile/me", req, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
