package mockserver

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed glossary.schema.json
var glossaryCreateSchemaJSON string

var (
	glossarySchemaOnce sync.Once
	glossarySchema     *jsonschema.Schema
	glossarySchemaErr  error
)

type glossary struct {
	id           string
	name         string
	sourceLang   string
	targetLang   string
	entriesTSV   string
	entryCount   int
	creationTime time.Time
}

type glossaryCreateRequest struct {
	Name          string `json:"name"`
	SourceLang    string `json:"source_lang"`
	TargetLang    string `json:"target_lang"`
	Entries       string `json:"entries"`
	EntriesFormat string `json:"entries_format"`
}

func (s *Server) handleGlossaryCreate(c echo.Context) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Invalid request body"))
	}

	value, err := decodeStrictJSON(raw)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(fmt.Sprintf("Invalid request body: %v", err)))
	}
	schema, err := loadGlossarySchema()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorBody(err.Error()))
	}
	if err := schema.Validate(value); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(fmt.Sprintf("Invalid glossary request: %v", err)))
	}

	var req glossaryCreateRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Invalid request body"))
	}

	pairSupported := false
	for _, pair := range glossaryLanguagePairs {
		if pair.SourceLang == req.SourceLang && pair.TargetLang == req.TargetLang {
			pairSupported = true
			break
		}
	}
	if !pairSupported {
		return c.JSON(http.StatusBadRequest, errorBody("Unsupported glossary language pair"))
	}

	entryCount := 0
	for _, line := range strings.Split(req.Entries, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !strings.Contains(line, "\t") {
			return c.JSON(http.StatusBadRequest, errorBody("Invalid glossary entries format"))
		}
		entryCount++
	}

	g := &glossary{
		id:           randomToken(16),
		name:         req.Name,
		sourceLang:   req.SourceLang,
		targetLang:   req.TargetLang,
		entriesTSV:   req.Entries,
		entryCount:   entryCount,
		creationTime: time.Now().UTC(),
	}

	s.mu.Lock()
	s.glossaries[g.id] = g
	s.mu.Unlock()

	return c.JSON(http.StatusCreated, glossaryInfoPayload(g))
}

func glossaryInfoPayload(g *glossary) map[string]any {
	return map[string]any{
		"glossary_id":   g.id,
		"name":          g.name,
		"source_lang":   g.sourceLang,
		"target_lang":   g.targetLang,
		"ready":         true,
		"creation_time": g.creationTime.Format(time.RFC3339),
		"entry_count":   g.entryCount,
	}
}

func (s *Server) handleGlossaryList(c echo.Context) error {
	s.mu.Lock()
	payload := make([]map[string]any, 0, len(s.glossaries))
	for _, g := range s.glossaries {
		payload = append(payload, glossaryInfoPayload(g))
	}
	s.mu.Unlock()
	return c.JSON(http.StatusOK, map[string]any{"glossaries": payload})
}

func (s *Server) glossaryByID(id string) *glossary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.glossaries[id]
}

func (s *Server) handleGlossaryGet(c echo.Context) error {
	g := s.glossaryByID(c.Param("id"))
	if g == nil {
		return c.JSON(http.StatusNotFound, errorBody("Glossary not found"))
	}
	return c.JSON(http.StatusOK, glossaryInfoPayload(g))
}

func (s *Server) handleGlossaryEntries(c echo.Context) error {
	g := s.glossaryByID(c.Param("id"))
	if g == nil {
		return c.JSON(http.StatusNotFound, errorBody("Glossary not found"))
	}
	return c.Blob(http.StatusOK, "text/tab-separated-values; charset=utf-8", []byte(g.entriesTSV))
}

func (s *Server) handleGlossaryDelete(c echo.Context) error {
	s.mu.Lock()
	_, exists := s.glossaries[c.Param("id")]
	delete(s.glossaries, c.Param("id"))
	s.mu.Unlock()
	if !exists {
		return c.JSON(http.StatusNotFound, errorBody("Glossary not found"))
	}
	return c.NoContent(http.StatusNoContent)
}

func loadGlossarySchema() (*jsonschema.Schema, error) {
	glossarySchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		if err := compiler.AddResource("glossary_create.schema.json", strings.NewReader(glossaryCreateSchemaJSON)); err != nil {
			glossarySchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		schema, err := compiler.Compile("glossary_create.schema.json")
		if err != nil {
			glossarySchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}
		glossarySchema = schema
	})

	if glossarySchemaErr != nil {
		return nil, glossarySchemaErr
	}
	if glossarySchema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return glossarySchema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("request body is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("request body contains trailing content")
	}
	return value, nil
}
