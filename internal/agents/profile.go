// ABOUTME: Profile agent: reads and updates the caller's own profile
// ABOUTME: Parses field assignments out of the message for updates, renders the profile for reads

package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/helperhub/agent-gateway/internal/collab"
	"github.com/helperhub/agent-gateway/internal/router"
)

// ProfileAgent handles requests about the caller's profile.
type ProfileAgent struct {
	logger *slog.Logger
}

func (a *ProfileAgent) Kind() Kind { return KindProfile }

func (a *ProfileAgent) CanHandle(intent router.Intent) bool {
	return intent == router.IntentProfile
}

// Execute reads the profile, or updates it when the message assigns new values.
func (a *ProfileAgent) Execute(ctx context.Context, req *TurnRequest) (*TurnResult, error) {
	if containsAny(req.Message, "update", "change", "set", "edit") {
		return a.updateProfile(ctx, req)
	}
	return a.getProfile(ctx, req)
}

func (a *ProfileAgent) getProfile(ctx context.Context, req *TurnRequest) (*TurnResult, error) {
	result, err := req.Invoker.Invoke(ctx, "get_profile", json.RawMessage(`{}`))
	if err != nil {
		return nil, err
	}

	var out struct {
		Profile collab.Profile `json:"profile"`
	}
	if err := json.Unmarshal(result, &out); err != nil {
		return nil, fmt.Errorf("decoding get_profile result: %w", err)
	}

	return &TurnResult{
		Response:  renderProfile(&out.Profile),
		ToolCalls: req.Invoker.Calls(),
	}, nil
}

func (a *ProfileAgent) updateProfile(ctx context.Context, req *TurnRequest) (*TurnResult, error) {
	fields := profileFields(req.Message)
	if len(fields) == 0 {
		return &TurnResult{
			Response:  "What would you like to change? You can update your name, email, zip code, or the about section, for example: update my email to me@example.com.",
			ToolCalls: req.Invoker.Calls(),
		}, nil
	}

	args, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encoding profile update: %w", err)
	}

	result, err := req.Invoker.Invoke(ctx, "update_profile", args)
	if err != nil {
		return nil, err
	}

	var out struct {
		Profile collab.Profile `json:"profile"`
	}
	if err := json.Unmarshal(result, &out); err != nil {
		return nil, fmt.Errorf("decoding update_profile result: %w", err)
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, strings.ReplaceAll(name, "_", " "))
	}

	return &TurnResult{
		Response:  fmt.Sprintf("Your %s has been updated.", strings.Join(names, " and ")),
		ToolCalls: req.Invoker.Calls(),
	}, nil
}

// renderProfile formats a profile into a short readable summary.
func renderProfile(p *collab.Profile) string {
	var b strings.Builder
	b.WriteString("Here's your profile:\n")
	if name := strings.TrimSpace(p.FirstName + " " + p.LastName); name != "" {
		fmt.Fprintf(&b, "- Name: %s\n", name)
	}
	if p.Email != "" {
		fmt.Fprintf(&b, "- Email: %s\n", p.Email)
	}
	if p.Phone != "" {
		fmt.Fprintf(&b, "- Phone: %s\n", p.Phone)
	}
	if p.ZipCode != "" {
		fmt.Fprintf(&b, "- Zip code: %s\n", p.ZipCode)
	}
	if p.About != "" {
		fmt.Fprintf(&b, "- About: %s\n", p.About)
	}
	return strings.TrimRight(b.String(), "\n")
}

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// profileFields extracts field assignments from an update-shaped message.
func profileFields(message string) map[string]string {
	fields := make(map[string]string)

	if containsAny(message, "email") {
		if email := emailPattern.FindString(message); email != "" {
			fields["email"] = email
		}
	}
	if containsAny(message, "zip") {
		if zip := extractZip(message); zip != "" {
			fields["zip_code"] = zip
		}
	}
	if containsAny(message, "name") {
		if name := valueAfter(message, "name to "); name != "" {
			parts := strings.Fields(name)
			fields["first_name"] = parts[0]
			if len(parts) > 1 {
				fields["last_name"] = strings.Join(parts[1:], " ")
			}
		}
	}
	if containsAny(message, "about") {
		if about := valueAfter(message, "about to "); about != "" {
			fields["about"] = about
		} else if about := valueAfter(message, "about me to "); about != "" {
			fields["about"] = about
		}
	}

	return fields
}

// valueAfter returns the trimmed text following the first occurrence of marker.
func valueAfter(message, marker string) string {
	lower := strings.ToLower(message)
	idx := strings.Index(lower, marker)
	if idx < 0 {
		return ""
	}
	return strings.TrimRight(strings.TrimSpace(message[idx+len(marker):]), ".!?")
}
