package polyglot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// UsageLimit is one consumed/ceiling pair for a quota category.
type UsageLimit struct {
	Count int64
	Limit int64
}

// LimitReached reports whether the category's quota is exhausted.
func (u *UsageLimit) LimitReached() bool {
	if u == nil {
		return false
	}
	return u.Count >= u.Limit
}

// Usage is a point-in-time quota snapshot. A nil category means the account
// has no such limit, not that the limit is zero. A free account, for
// example, carries no team-document limit.
type Usage struct {
	Character    *UsageLimit
	Document     *UsageLimit
	TeamDocument *UsageLimit
}

// AnyLimitReached reports whether any present category is exhausted.
func (u *Usage) AnyLimitReached() bool {
	if u == nil {
		return false
	}
	return u.Character.LimitReached() || u.Document.LimitReached() || u.TeamDocument.LimitReached()
}

func (u *Usage) String() string {
	if u == nil {
		return "Usage this billing period: unknown"
	}
	lines := []string{"Usage this billing period:"}
	describe := func(label string, limit *UsageLimit) {
		if limit == nil {
			return
		}
		lines = append(lines, fmt.Sprintf("%s: %d of %d", label, limit.Count, limit.Limit))
	}
	describe("Characters", u.Character)
	describe("Documents", u.Document)
	describe("Team documents", u.TeamDocument)
	return strings.Join(lines, "\n")
}

// usagePayload mirrors the /usage response. Pointer fields distinguish an
// absent category from a zero value.
type usagePayload struct {
	CharacterCount    *int64 `json:"character_count"`
	CharacterLimit    *int64 `json:"character_limit"`
	DocumentCount     *int64 `json:"document_count"`
	DocumentLimit     *int64 `json:"document_limit"`
	TeamDocumentCount *int64 `json:"team_document_count"`
	TeamDocumentLimit *int64 `json:"team_document_limit"`
}

// parseUsage builds a Usage snapshot from a response body. A category is
// present only when both its count and limit fields exist in the payload.
func parseUsage(body []byte) (*Usage, error) {
	var payload usagePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &DeserializationError{Err: err}
	}

	usage := &Usage{}
	if payload.CharacterCount != nil && payload.CharacterLimit != nil {
		usage.Character = &UsageLimit{Count: *payload.CharacterCount, Limit: *payload.CharacterLimit}
	}
	if payload.DocumentCount != nil && payload.DocumentLimit != nil {
		usage.Document = &UsageLimit{Count: *payload.DocumentCount, Limit: *payload.DocumentLimit}
	}
	if payload.TeamDocumentCount != nil && payload.TeamDocumentLimit != nil {
		usage.TeamDocument = &UsageLimit{Count: *payload.TeamDocumentCount, Limit: *payload.TeamDocumentLimit}
	}
	return usage, nil
}

// GetUsage fetches the account's current quota snapshot.
func (t *Translator) GetUsage(ctx context.Context) (*Usage, error) {
	resp, err := t.callAPI(ctx, http.MethodGet, "/usage", nil, nil)
	if err != nil {
		return nil, err
	}
	return parseUsage(resp.body)
}
