package mockserver

import (
	"net/http"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	lingua "github.com/pemistahl/lingua-go"
)

type translateRequest struct {
	Text       []string `json:"text"`
	SourceLang string   `json:"source_lang"`
	TargetLang string   `json:"target_lang"`
	Formality  string   `json:"formality"`
	GlossaryID string   `json:"glossary_id"`
}

type translationItem struct {
	DetectedSourceLanguage string `json:"detected_source_language"`
	Text                   string `json:"text"`
}

func (s *Server) handleTranslate(c echo.Context) error {
	var req translateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Invalid request body"))
	}
	if len(req.Text) == 0 {
		return c.JSON(http.StatusBadRequest, errorBody("Parameter 'text' is required"))
	}
	target := strings.ToLower(strings.TrimSpace(req.TargetLang))
	if target == "" {
		return c.JSON(http.StatusBadRequest, errorBody("Parameter 'target_lang' is required"))
	}

	var characters int64
	for _, text := range req.Text {
		characters += int64(utf8.RuneCountInString(text))
	}
	if !s.reserveCharacters(characters) {
		return c.JSON(456, errorBody(quotaExceededMessage))
	}

	items := make([]translationItem, 0, len(req.Text))
	for _, text := range req.Text {
		source := strings.ToLower(strings.TrimSpace(req.SourceLang))
		if source == "" {
			source = detectLanguage(text)
		}
		items = append(items, translationItem{
			DetectedSourceLanguage: source,
			Text:                   mockTranslate(text, target),
		})
	}

	return c.JSON(http.StatusOK, map[string][]translationItem{"translations": items})
}

// phrasebook backs deterministic translations for test fixtures; anything
// else echoes the input.
var phrasebook = map[string]map[string]string{
	"proton beam": {
		"de": "Protonenstrahl",
		"fr": "faisceau de protons",
		"es": "haz de protones",
	},
}

func mockTranslate(text, targetLang string) string {
	target := targetLang
	if dash := strings.IndexByte(target, '-'); dash >= 0 {
		target = target[:dash]
	}
	if byTarget, ok := phrasebook[strings.ToLower(strings.TrimSpace(text))]; ok {
		if translated, ok := byTarget[target]; ok {
			return translated
		}
	}
	return text
}

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// detectLanguage guesses the source language of a text the way the real
// service would when source_lang is omitted. Short samples fall back to
// English.
func detectLanguage(text string) string {
	sample := strings.TrimSpace(text)

	letterCount := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letterCount++
		}
	}
	if letterCount < 6 {
		return "en"
	}

	language, exists := getDetector().DetectLanguageOf(sample)
	if !exists {
		return "en"
	}
	code := strings.ToLower(language.IsoCode639_1().String())
	if len(code) != 2 {
		return "en"
	}
	return code
}

func getDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(
				lingua.English,
				lingua.German,
				lingua.French,
				lingua.Spanish,
				lingua.Italian,
				lingua.Japanese,
			).
			Build()
	})
	return detector
}
