// ABOUTME: Deterministic extraction helpers shared by the agents
// ABOUTME: Pulls rates, zip codes, ids, and statuses out of user messages

package agents

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	ratePattern = regexp.MustCompile(`\$\s*(\d+(?:\.\d+)?)`)
	zipPattern  = regexp.MustCompile(`\b(\d{5})\b`)
	uuidPattern = regexp.MustCompile(`\b[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\b`)
)

// extractRate returns the first dollar amount in the message, or 0.
func extractRate(message string) float64 {
	m := ratePattern.FindStringSubmatch(message)
	if m == nil {
		return 0
	}
	rate, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return rate
}

// extractZip returns the first five-digit zip code in the message, or "".
func extractZip(message string) string {
	m := zipPattern.FindStringSubmatch(message)
	if m == nil {
		return ""
	}
	return m[1]
}

// extractID returns the first UUID-shaped token in the message, or "".
func extractID(message string) string {
	return uuidPattern.FindString(message)
}

// containsAny reports whether the lowercased message contains any of the
// given substrings.
func containsAny(message string, subs ...string) bool {
	lower := strings.ToLower(message)
	for _, sub := range subs {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}

// statusFromMessage maps status words in the message to a task status filter.
func statusFromMessage(message string) string {
	switch {
	case containsAny(message, "open", "active", "outstanding"):
		return "open"
	case containsAny(message, "assigned", "in progress"):
		return "assigned"
	case containsAny(message, "completed", "done", "finished"):
		return "completed"
	case containsAny(message, "cancelled", "canceled"):
		return "cancelled"
	}
	return ""
}
