package polyglot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Formality controls the register of the translated output. Supported only
// for specific target languages; the service rejects unsupported
// combinations unless a prefer-variant is used.
type Formality string

const (
	FormalityDefault    Formality = "default"
	FormalityMore       Formality = "more"
	FormalityLess       Formality = "less"
	FormalityPreferMore Formality = "prefer_more"
	FormalityPreferLess Formality = "prefer_less"
)

// TextTranslationOptions are the per-call translation options.
type TextTranslationOptions struct {
	// Formality selects a register for target languages that support it.
	Formality Formality
	// GlossaryID applies a previously created glossary. Requires a
	// non-empty source language on the request.
	GlossaryID string
	// SplitSentences controls sentence splitting: "0", "1", or
	// "nonewlines".
	SplitSentences string
	// PreserveFormatting stops the service from correcting formatting
	// aspects of the input.
	PreserveFormatting bool
	// TagHandling is "xml" or "html" for markup-aware translation.
	TagHandling string
}

// Translation is one translated text with the source language the service
// detected or was given. Immutable once produced.
type Translation struct {
	Text               string `json:"text"`
	DetectedSourceLang string `json:"detected_source_language"`
}

type textRequestPayload struct {
	Text               []string `json:"text"`
	SourceLang         string   `json:"source_lang,omitempty"`
	TargetLang         string   `json:"target_lang"`
	Formality          string   `json:"formality,omitempty"`
	GlossaryID         string   `json:"glossary_id,omitempty"`
	SplitSentences     string   `json:"split_sentences,omitempty"`
	PreserveFormatting bool     `json:"preserve_formatting,omitempty"`
	TagHandling        string   `json:"tag_handling,omitempty"`
}

type textResponsePayload struct {
	Translations []Translation `json:"translations"`
}

// TranslateText translates one or more texts into targetLang. An empty
// sourceLang asks the service to auto-detect the source language per text.
// The result holds one Translation per input, in input order.
func (t *Translator) TranslateText(ctx context.Context, texts []string, sourceLang, targetLang string, opts *TextTranslationOptions) ([]Translation, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("texts parameter must be a non-empty list")
	}
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("texts[%d] must be a non-empty string", i)
		}
	}
	target := NormalizeLanguageTag(targetLang)
	if target == "" {
		return nil, fmt.Errorf("target language is required")
	}
	source := ""
	if strings.TrimSpace(sourceLang) != "" {
		source = NormalizeLanguageTag(sourceLang)
		if source == "" {
			return nil, fmt.Errorf("source language %q is not a valid language code", sourceLang)
		}
	}

	payload := textRequestPayload{
		Text:       texts,
		SourceLang: source,
		TargetLang: target,
	}
	if opts != nil {
		if opts.Formality != "" && opts.Formality != FormalityDefault {
			payload.Formality = string(opts.Formality)
		}
		if opts.GlossaryID != "" {
			if source == "" {
				return nil, fmt.Errorf("source language is required when using a glossary")
			}
			payload.GlossaryID = opts.GlossaryID
		}
		payload.SplitSentences = opts.SplitSentences
		payload.PreserveFormatting = opts.PreserveFormatting
		payload.TagHandling = opts.TagHandling
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal translation request: %w", err)
	}

	resp, err := t.callAPI(ctx, http.MethodPost, "/translate", nil, jsonBody(body))
	if err != nil {
		return nil, err
	}

	var parsed textResponsePayload
	if err := json.Unmarshal(resp.body, &parsed); err != nil {
		return nil, &DeserializationError{Err: err}
	}
	if len(parsed.Translations) != len(texts) {
		return nil, &DeserializationError{Err: fmt.Errorf("expected %d translations, got %d", len(texts), len(parsed.Translations))}
	}
	return parsed.Translations, nil
}

// jsonBody wraps marshaled JSON as a re-creatable request body so retried
// attempts never reuse a consumed reader.
func jsonBody(body []byte) bodyFunc {
	return func() (io.Reader, string, error) {
		return bytes.NewReader(body), "application/json", nil
	}
}
