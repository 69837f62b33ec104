package polyglot

import (
	"context"
	"errors"
	"testing"

	"horse.fit/polyglot/internal/mockserver"
)

func TestGlossaryLifecycle(t *testing.T) {
	translator := newTestTranslator(t, mockserver.Config{}, "some-key", nil)
	ctx := context.Background()

	entries := GlossaryEntries{
		"artist":  "Maler",
		"prize":   "Gewinn",
		"theatre": "Schauspielhaus",
	}

	created, err := translator.CreateGlossary(ctx, "Test Glossary", "en", "de", entries)
	if err != nil {
		t.Fatalf("CreateGlossary: %v", err)
	}
	if created.GlossaryID == "" {
		t.Fatal("missing glossary ID")
	}
	if created.SourceLang != "en" || created.TargetLang != "de" {
		t.Errorf("glossary languages = %s->%s", created.SourceLang, created.TargetLang)
	}
	if created.EntryCount != len(entries) {
		t.Errorf("entry count = %d, want %d", created.EntryCount, len(entries))
	}
	if !created.Ready {
		t.Error("glossary must be ready")
	}

	listed, err := translator.ListGlossaries(ctx)
	if err != nil {
		t.Fatalf("ListGlossaries: %v", err)
	}
	if len(listed) != 1 || listed[0].GlossaryID != created.GlossaryID {
		t.Fatalf("listed = %+v", listed)
	}

	fetched, err := translator.GetGlossary(ctx, created.GlossaryID)
	if err != nil {
		t.Fatalf("GetGlossary: %v", err)
	}
	if fetched.Name != "Test Glossary" {
		t.Errorf("name = %q", fetched.Name)
	}

	roundTripped, err := translator.GetGlossaryEntries(ctx, created.GlossaryID)
	if err != nil {
		t.Fatalf("GetGlossaryEntries: %v", err)
	}
	if len(roundTripped) != len(entries) {
		t.Fatalf("entries = %+v", roundTripped)
	}
	for term, translation := range entries {
		if roundTripped[term] != translation {
			t.Errorf("entry %q = %q, want %q", term, roundTripped[term], translation)
		}
	}

	if err := translator.DeleteGlossary(ctx, created.GlossaryID); err != nil {
		t.Fatalf("DeleteGlossary: %v", err)
	}
	if _, err := translator.GetGlossary(ctx, created.GlossaryID); err == nil {
		t.Error("deleted glossary must not be fetchable")
	}
}

func TestCreateGlossaryRejectsUnsupportedPair(t *testing.T) {
	translator := newTestTranslator(t, mockserver.Config{}, "some-key", &TranslatorOptions{MaxRetries: intPtr(0)})

	_, err := translator.CreateGlossary(context.Background(), "Nope", "ja", "de", GlossaryEntries{"a": "b"})
	if err == nil {
		t.Fatal("expected error for unsupported language pair")
	}
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("got %T: %v", err, err)
	}
}

func TestGlossaryEntriesTSV(t *testing.T) {
	entries := GlossaryEntries{"b": "2", "a": "1"}
	tsv, err := entries.ToTSV()
	if err != nil {
		t.Fatalf("ToTSV: %v", err)
	}
	if tsv != "a\t1\nb\t2" {
		t.Errorf("tsv = %q", tsv)
	}

	parsed, err := ParseGlossaryEntries("a\t1\r\nb\t2\n\n")
	if err != nil {
		t.Fatalf("ParseGlossaryEntries: %v", err)
	}
	if len(parsed) != 2 || parsed["a"] != "1" || parsed["b"] != "2" {
		t.Errorf("parsed = %+v", parsed)
	}

	if _, err := (GlossaryEntries{}).ToTSV(); err == nil {
		t.Error("empty entries must fail")
	}
	if _, err := (GlossaryEntries{"a\tb": "c"}).ToTSV(); err == nil {
		t.Error("tab in term must fail")
	}
	if _, err := ParseGlossaryEntries("no separator"); err == nil {
		t.Error("missing tab separator must fail")
	}
	if _, err := ParseGlossaryEntries("a\t1\na\t2"); err == nil {
		t.Error("duplicate term must fail")
	}
}
