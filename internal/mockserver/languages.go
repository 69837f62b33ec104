package mockserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type languageEntry struct {
	Language          string `json:"language"`
	Name              string `json:"name"`
	SupportsFormality *bool  `json:"supports_formality,omitempty"`
}

var sourceLanguages = []languageEntry{
	{Language: "de", Name: "German"},
	{Language: "en", Name: "English"},
	{Language: "es", Name: "Spanish"},
	{Language: "fr", Name: "French"},
	{Language: "it", Name: "Italian"},
	{Language: "ja", Name: "Japanese"},
}

func boolPtr(v bool) *bool { return &v }

var targetLanguages = []languageEntry{
	{Language: "de", Name: "German", SupportsFormality: boolPtr(true)},
	{Language: "en-US", Name: "English (American)", SupportsFormality: boolPtr(false)},
	{Language: "es", Name: "Spanish", SupportsFormality: boolPtr(true)},
	{Language: "fr", Name: "French", SupportsFormality: boolPtr(true)},
	{Language: "it", Name: "Italian", SupportsFormality: boolPtr(true)},
	{Language: "ja", Name: "Japanese", SupportsFormality: boolPtr(false)},
}

func (s *Server) handleLanguages(c echo.Context) error {
	if c.QueryParam("type") == "target" {
		return c.JSON(http.StatusOK, targetLanguages)
	}
	return c.JSON(http.StatusOK, sourceLanguages)
}

type glossaryPair struct {
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

var glossaryLanguagePairs = []glossaryPair{
	{SourceLang: "de", TargetLang: "en"},
	{SourceLang: "en", TargetLang: "de"},
	{SourceLang: "en", TargetLang: "es"},
	{SourceLang: "en", TargetLang: "fr"},
	{SourceLang: "es", TargetLang: "en"},
	{SourceLang: "fr", TargetLang: "en"},
}

func (s *Server) handleGlossaryLanguagePairs(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]glossaryPair{
		"supported_languages": glossaryLanguagePairs,
	})
}
