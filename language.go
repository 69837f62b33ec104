package polyglot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Language describes one language supported by the service.
// SupportsFormality is always set for target languages and never set for
// source languages; the service defines formality only for the target
// direction.
type Language struct {
	Code              string `json:"language"`
	Name              string `json:"name"`
	SupportsFormality *bool  `json:"supports_formality,omitempty"`
}

// GlossaryLanguagePair is a source/target combination accepted for glossary
// creation. Both codes are non-empty.
type GlossaryLanguagePair struct {
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

// NormalizeLanguageTag normalizes a language tag to lowercase with "-"
// separators. Returns an empty string when the value is blank or contains
// invalid characters.
func NormalizeLanguageTag(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}

	trimmed = strings.ReplaceAll(trimmed, "_", "-")
	parts := strings.Split(trimmed, "-")
	normalized := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !isAlphaLower(part) {
			return ""
		}
		normalized = append(normalized, part)
	}

	if len(normalized) == 0 {
		return ""
	}
	return strings.Join(normalized, "-")
}

// NormalizeLanguageCode returns the primary language subtag (for example,
// "en" from "en-US").
func NormalizeLanguageCode(raw string) string {
	tag := NormalizeLanguageTag(raw)
	if tag == "" {
		return ""
	}
	if dash := strings.IndexByte(tag, '-'); dash >= 0 {
		return tag[:dash]
	}
	return tag
}

func isAlphaLower(value string) bool {
	for _, r := range value {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// GetSourceLanguages lists the languages the service can translate from.
// Entries never carry a formality flag.
func (t *Translator) GetSourceLanguages(ctx context.Context) ([]Language, error) {
	return t.getLanguages(ctx, "source")
}

// GetTargetLanguages lists the languages the service can translate into.
// Every entry carries a formality flag.
func (t *Translator) GetTargetLanguages(ctx context.Context) ([]Language, error) {
	languages, err := t.getLanguages(ctx, "target")
	if err != nil {
		return nil, err
	}
	for i := range languages {
		if languages[i].SupportsFormality == nil {
			supports := false
			languages[i].SupportsFormality = &supports
		}
	}
	return languages, nil
}

func (t *Translator) getLanguages(ctx context.Context, direction string) ([]Language, error) {
	query := url.Values{}
	query.Set("type", direction)

	resp, err := t.callAPI(ctx, http.MethodGet, "/languages", query, nil)
	if err != nil {
		return nil, err
	}

	var languages []Language
	if err := json.Unmarshal(resp.body, &languages); err != nil {
		return nil, &DeserializationError{Err: err}
	}
	if direction == "source" {
		for i := range languages {
			languages[i].SupportsFormality = nil
		}
	}
	return languages, nil
}

// GetGlossaryLanguagePairs lists the language pair combinations accepted for
// glossary creation. The result is non-empty for any valid account.
func (t *Translator) GetGlossaryLanguagePairs(ctx context.Context) ([]GlossaryLanguagePair, error) {
	resp, err := t.callAPI(ctx, http.MethodGet, "/glossary-language-pairs", nil, nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		SupportedLanguages []GlossaryLanguagePair `json:"supported_languages"`
	}
	if err := json.Unmarshal(resp.body, &payload); err != nil {
		return nil, &DeserializationError{Err: err}
	}
	if len(payload.SupportedLanguages) == 0 {
		return nil, &DeserializationError{Err: fmt.Errorf("glossary language pair list is empty")}
	}
	for _, pair := range payload.SupportedLanguages {
		if strings.TrimSpace(pair.SourceLang) == "" || strings.TrimSpace(pair.TargetLang) == "" {
			return nil, &DeserializationError{Err: fmt.Errorf("glossary language pair has empty code")}
		}
	}
	return payload.SupportedLanguages, nil
}
