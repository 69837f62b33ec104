package polyglot

import (
	"context"
	"strings"
	"testing"

	"horse.fit/polyglot/internal/mockserver"
)

func TestParseUsageOmitsAbsentCategories(t *testing.T) {
	usage, err := parseUsage([]byte(`{"character_count":180118,"character_limit":1250000}`))
	if err != nil {
		t.Fatalf("parseUsage: %v", err)
	}
	if usage.Character == nil {
		t.Fatal("character category missing")
	}
	if usage.Character.Count != 180118 || usage.Character.Limit != 1250000 {
		t.Errorf("character = %+v", usage.Character)
	}
	if usage.Document != nil {
		t.Error("document category must be absent, not zero")
	}
	if usage.TeamDocument != nil {
		t.Error("team document category must be absent, not zero")
	}
	if usage.AnyLimitReached() {
		t.Error("no limit is reached")
	}
}

func TestParseUsageAllCategories(t *testing.T) {
	payload := `{
		"character_count": 20,
		"character_limit": 20,
		"document_count": 0,
		"document_limit": 10,
		"team_document_count": 1,
		"team_document_limit": 5
	}`
	usage, err := parseUsage([]byte(payload))
	if err != nil {
		t.Fatalf("parseUsage: %v", err)
	}
	if !usage.Character.LimitReached() {
		t.Error("character limit must be reached at count == limit")
	}
	if usage.Document.LimitReached() {
		t.Error("document limit must not be reached")
	}
	if !usage.AnyLimitReached() {
		t.Error("AnyLimitReached must reflect the character category")
	}
}

func TestParseUsageRejectsMalformedBody(t *testing.T) {
	_, err := parseUsage([]byte(`{not json`))
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := err.(*DeserializationError); !ok {
		t.Fatalf("expected DeserializationError, got %T", err)
	}
}

func TestUsageLimitNilIsNeverReached(t *testing.T) {
	var limit *UsageLimit
	if limit.LimitReached() {
		t.Error("nil UsageLimit must report not reached")
	}
}

func TestGetUsageSnapshot(t *testing.T) {
	translator := newTestTranslator(t, mockserver.Config{
		CharacterLimit: 1250000,
	}, "some-key", nil)

	usage, err := translator.GetUsage(context.Background())
	if err != nil {
		t.Fatalf("GetUsage: %v", err)
	}
	if usage.Character == nil || usage.Character.Limit != 1250000 {
		t.Fatalf("character = %+v", usage.Character)
	}
	if usage.Document != nil || usage.TeamDocument != nil {
		t.Error("unconfigured categories must be absent")
	}
	if !strings.Contains(usage.String(), "Characters: 0 of 1250000") {
		t.Errorf("String() = %q", usage.String())
	}
}
