package mockserver

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	readability "codeberg.org/readeck/go-readability/v2"
	"github.com/labstack/echo/v4"
)

// document is one submitted translation job. Its state is derived from the
// elapsed time since creation, so polling observes queued → translating →
// done/error without a background goroutine.
type document struct {
	id         string
	key        string
	filename   string
	sourceLang string
	targetLang string
	content    []byte

	createdAt  time.Time
	errMessage string
	billed     int64
	downloaded bool
}

func (s *Server) handleDocumentUpload(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Parameter 'file' is required"))
	}
	targetLang := strings.ToLower(strings.TrimSpace(c.FormValue("target_lang")))
	if targetLang == "" {
		return c.JSON(http.StatusBadRequest, errorBody("Parameter 'target_lang' is required"))
	}

	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Invalid file upload"))
	}
	defer src.Close()
	content, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Invalid file upload"))
	}

	if !s.reserveDocument() {
		return c.JSON(456, errorBody(quotaExceededMessage))
	}

	doc := &document{
		id:         randomToken(16),
		key:        randomToken(32),
		filename:   file.Filename,
		sourceLang: strings.ToLower(strings.TrimSpace(c.FormValue("source_lang"))),
		targetLang: targetLang,
		content:    content,
		createdAt:  time.Now(),
	}

	text := documentText(doc.filename, content)
	characters := int64(utf8.RuneCountInString(text))
	if s.reserveCharacters(characters) {
		doc.billed = characters
	} else {
		// Processing starts, then fails for quota server-side.
		doc.errMessage = quotaExceededMessage
	}

	s.mu.Lock()
	s.documents[doc.id] = doc
	s.mu.Unlock()

	s.logger.Debug().Str("document_id", doc.id).Str("filename", doc.filename).Msg("mock document submitted")
	return c.JSON(http.StatusOK, map[string]string{
		"document_id":  doc.id,
		"document_key": doc.key,
	})
}

// documentText extracts the translatable text of an upload. HTML documents
// are reduced to their readable content first.
func documentText(filename string, content []byte) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".html" && ext != ".htm" {
		return string(content)
	}

	base, _ := url.Parse("https://mock.invalid/" + filename)
	article, err := readability.FromReader(bytes.NewReader(content), base)
	if err != nil {
		return string(content)
	}
	var rendered bytes.Buffer
	if err := article.RenderText(&rendered); err != nil {
		return string(content)
	}
	if text := strings.TrimSpace(rendered.String()); text != "" {
		return text
	}
	return string(content)
}

type documentKeyPayload struct {
	DocumentKey string `json:"document_key"`
}

func (s *Server) lookupDocument(c echo.Context) (*document, error) {
	var payload documentKeyPayload
	if err := json.NewDecoder(c.Request().Body).Decode(&payload); err != nil {
		return nil, c.JSON(http.StatusBadRequest, errorBody("Parameter 'document_key' is required"))
	}

	s.mu.Lock()
	doc := s.documents[c.Param("id")]
	s.mu.Unlock()
	if doc == nil || doc.downloaded || doc.key != payload.DocumentKey {
		return nil, c.JSON(http.StatusNotFound, errorBody("Document not found"))
	}
	return doc, nil
}

// state derives the document's current lifecycle phase from elapsed time.
func (s *Server) state(doc *document) (status string, secondsRemaining int) {
	if doc.errMessage != "" {
		return "error", 0
	}
	elapsed := time.Since(doc.createdAt)
	if elapsed < s.cfg.DocumentQueueTime {
		return "queued", 0
	}
	translating := s.cfg.DocumentQueueTime + s.cfg.DocumentTranslateTime
	if elapsed < translating {
		remaining := translating - elapsed
		return "translating", int(remaining/time.Second) + 1
	}
	return "done", 0
}

func (s *Server) handleDocumentStatus(c echo.Context) error {
	doc, errResp := s.lookupDocument(c)
	if doc == nil {
		return errResp
	}

	status, secondsRemaining := s.state(doc)
	payload := map[string]any{
		"document_id": doc.id,
		"status":      status,
	}
	switch status {
	case "translating":
		payload["seconds_remaining"] = secondsRemaining
	case "done":
		payload["billed_characters"] = doc.billed
	case "error":
		payload["error_message"] = doc.errMessage
	}
	return c.JSON(http.StatusOK, payload)
}

func (s *Server) handleDocumentDownload(c echo.Context) error {
	doc, errResp := s.lookupDocument(c)
	if doc == nil {
		return errResp
	}

	status, _ := s.state(doc)
	if status != "done" {
		return c.JSON(http.StatusServiceUnavailable, errorBody("Document translation is not done"))
	}

	text := documentText(doc.filename, doc.content)
	translated := mockTranslate(text, doc.targetLang)

	s.mu.Lock()
	doc.downloaded = true
	s.mu.Unlock()

	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", []byte(translated))
}

func randomToken(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}
