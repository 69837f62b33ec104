package polyglot

import (
	"context"
	"testing"

	"horse.fit/polyglot/internal/mockserver"
)

func TestGetSourceLanguagesNeverCarryFormality(t *testing.T) {
	translator := newTestTranslator(t, mockserver.Config{}, "some-key", nil)

	languages, err := translator.GetSourceLanguages(context.Background())
	if err != nil {
		t.Fatalf("GetSourceLanguages: %v", err)
	}
	if len(languages) == 0 {
		t.Fatal("no source languages")
	}
	for _, lang := range languages {
		if lang.Code == "" || lang.Name == "" {
			t.Errorf("incomplete language entry: %+v", lang)
		}
		if lang.SupportsFormality != nil {
			t.Errorf("source language %s must not define formality support", lang.Code)
		}
	}
}

func TestGetTargetLanguagesAlwaysDefineFormality(t *testing.T) {
	translator := newTestTranslator(t, mockserver.Config{}, "some-key", nil)

	languages, err := translator.GetTargetLanguages(context.Background())
	if err != nil {
		t.Fatalf("GetTargetLanguages: %v", err)
	}
	if len(languages) == 0 {
		t.Fatal("no target languages")
	}
	formalitySupported := false
	for _, lang := range languages {
		if lang.SupportsFormality == nil {
			t.Errorf("target language %s must define formality support", lang.Code)
			continue
		}
		if *lang.SupportsFormality {
			formalitySupported = true
		}
	}
	if !formalitySupported {
		t.Error("expected at least one target language with formality support")
	}
}

func TestGetGlossaryLanguagePairs(t *testing.T) {
	translator := newTestTranslator(t, mockserver.Config{}, "some-key", nil)

	pairs, err := translator.GetGlossaryLanguagePairs(context.Background())
	if err != nil {
		t.Fatalf("GetGlossaryLanguagePairs: %v", err)
	}
	if len(pairs) == 0 {
		t.Fatal("glossary language pair list must be non-empty")
	}
	for _, pair := range pairs {
		if pair.SourceLang == "" || pair.TargetLang == "" {
			t.Errorf("pair with empty code: %+v", pair)
		}
	}
}
