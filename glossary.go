package polyglot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

// GlossaryInfo describes a glossary stored by the service. Entries are not
// included; fetch them with GetGlossaryEntries.
type GlossaryInfo struct {
	GlossaryID   string    `json:"glossary_id"`
	Name         string    `json:"name"`
	SourceLang   string    `json:"source_lang"`
	TargetLang   string    `json:"target_lang"`
	Ready        bool      `json:"ready"`
	CreationTime time.Time `json:"creation_time"`
	EntryCount   int       `json:"entry_count"`
}

// GlossaryEntries is a set of term-translation overrides keyed by source
// term. The wire format is tab-separated values, one entry per line.
type GlossaryEntries map[string]string

// ToTSV encodes the entries in the service's TSV wire format with a stable
// line order.
func (e GlossaryEntries) ToTSV() (string, error) {
	if len(e) == 0 {
		return "", fmt.Errorf("glossary entries must not be empty")
	}

	terms := make([]string, 0, len(e))
	for term := range e {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	lines := make([]string, 0, len(terms))
	for _, term := range terms {
		translation := e[term]
		if err := validateGlossaryTerm(term); err != nil {
			return "", fmt.Errorf("glossary term %q: %w", term, err)
		}
		if err := validateGlossaryTerm(translation); err != nil {
			return "", fmt.Errorf("glossary translation %q: %w", translation, err)
		}
		lines = append(lines, term+"\t"+translation)
	}
	return strings.Join(lines, "\n"), nil
}

// ParseGlossaryEntries decodes the service's TSV wire format.
func ParseGlossaryEntries(tsv string) (GlossaryEntries, error) {
	entries := GlossaryEntries{}
	for i, line := range strings.Split(tsv, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		term, translation, found := strings.Cut(line, "\t")
		if !found {
			return nil, fmt.Errorf("glossary TSV line %d has no tab separator", i+1)
		}
		term = strings.TrimSpace(term)
		if term == "" {
			return nil, fmt.Errorf("glossary TSV line %d has an empty term", i+1)
		}
		if _, exists := entries[term]; exists {
			return nil, fmt.Errorf("glossary TSV line %d duplicates term %q", i+1, term)
		}
		entries[term] = strings.TrimSpace(translation)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("glossary TSV contains no entries")
	}
	return entries, nil
}

func validateGlossaryTerm(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("must not be empty")
	}
	if strings.ContainsAny(value, "\t\n\r") {
		return fmt.Errorf("must not contain tab or newline characters")
	}
	return nil
}

type createGlossaryPayload struct {
	Name          string `json:"name"`
	SourceLang    string `json:"source_lang"`
	TargetLang    string `json:"target_lang"`
	Entries       string `json:"entries"`
	EntriesFormat string `json:"entries_format"`
}

// CreateGlossary stores a new glossary for the given language pair and
// returns its stored form.
func (t *Translator) CreateGlossary(ctx context.Context, name, sourceLang, targetLang string, entries GlossaryEntries) (*GlossaryInfo, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("glossary name is required")
	}
	source := NormalizeLanguageCode(sourceLang)
	target := NormalizeLanguageCode(targetLang)
	if source == "" || target == "" {
		return nil, fmt.Errorf("glossary source and target languages are required")
	}
	tsv, err := entries.ToTSV()
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(createGlossaryPayload{
		Name:          name,
		SourceLang:    source,
		TargetLang:    target,
		Entries:       tsv,
		EntriesFormat: "tsv",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal glossary request: %w", err)
	}

	resp, err := t.callAPI(ctx, http.MethodPost, "/glossaries", nil, jsonBody(body))
	if err != nil {
		return nil, err
	}

	var info GlossaryInfo
	if err := json.Unmarshal(resp.body, &info); err != nil {
		return nil, &DeserializationError{Err: err}
	}
	return &info, nil
}

// ListGlossaries lists all glossaries stored for the account.
func (t *Translator) ListGlossaries(ctx context.Context) ([]GlossaryInfo, error) {
	resp, err := t.callAPI(ctx, http.MethodGet, "/glossaries", nil, nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Glossaries []GlossaryInfo `json:"glossaries"`
	}
	if err := json.Unmarshal(resp.body, &payload); err != nil {
		return nil, &DeserializationError{Err: err}
	}
	return payload.Glossaries, nil
}

// GetGlossary fetches one glossary's stored form by ID.
func (t *Translator) GetGlossary(ctx context.Context, glossaryID string) (*GlossaryInfo, error) {
	if strings.TrimSpace(glossaryID) == "" {
		return nil, fmt.Errorf("glossary ID is required")
	}

	resp, err := t.callAPI(ctx, http.MethodGet, "/glossaries/"+glossaryID, nil, nil)
	if err != nil {
		return nil, err
	}

	var info GlossaryInfo
	if err := json.Unmarshal(resp.body, &info); err != nil {
		return nil, &DeserializationError{Err: err}
	}
	return &info, nil
}

// GetGlossaryEntries fetches a glossary's term pairs.
func (t *Translator) GetGlossaryEntries(ctx context.Context, glossaryID string) (GlossaryEntries, error) {
	if strings.TrimSpace(glossaryID) == "" {
		return nil, fmt.Errorf("glossary ID is required")
	}

	resp, err := t.callAPI(ctx, http.MethodGet, "/glossaries/"+glossaryID+"/entries", nil, nil)
	if err != nil {
		return nil, err
	}

	entries, err := ParseGlossaryEntries(string(resp.body))
	if err != nil {
		return nil, &DeserializationError{Err: err}
	}
	return entries, nil
}

// DeleteGlossary removes a glossary by ID.
func (t *Translator) DeleteGlossary(ctx context.Context, glossaryID string) error {
	if strings.TrimSpace(glossaryID) == "" {
		return fmt.Errorf("glossary ID is required")
	}
	_, err := t.callAPI(ctx, http.MethodDelete, "/glossaries/"+glossaryID, nil, nil)
	return err
}
