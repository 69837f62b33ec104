// Package mockserver is an in-process simulation of the Polyglot translation
// API for the test suite. It implements the text translation, document
// translation, usage, language listing, and glossary endpoints with
// configurable per-key quota limits and induced failure modes.
package mockserver

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"horse.fit/polyglot/internal/logging"
)

const authHeaderPrefix = "Polyglot-Auth-Key "

// Config controls the simulated account and failure behavior. A limit of
// zero or below means the account has no such quota category; the category
// is then omitted from usage responses entirely.
type Config struct {
	// AuthKeys are the accepted credentials. Empty accepts any non-empty
	// key.
	AuthKeys []string

	CharacterLimit    int64
	DocumentLimit     int64
	TeamDocumentLimit int64

	// RespondWith429 makes the first N requests fail with 429.
	RespondWith429 int
	// RetryAfterSeconds sets a Retry-After header on induced 429s.
	RetryAfterSeconds int
	// NoResponse makes every handler block until the client gives up.
	NoResponse bool

	// DocumentQueueTime and DocumentTranslateTime shape the document state
	// machine: a document is queued for the first duration, translating
	// for the second, then terminal.
	DocumentQueueTime     time.Duration
	DocumentTranslateTime time.Duration

	Logger *zerolog.Logger
}

// Server simulates the translation service. Create one per test with New
// and mount it with httptest.NewServer(srv.Handler()).
type Server struct {
	cfg    Config
	logger zerolog.Logger
	echo   *echo.Echo

	mu         sync.Mutex
	remain429  int
	usage      accountUsage
	documents  map[string]*document
	glossaries map[string]*glossary
}

// accountUsage tracks consumed quota across the server's lifetime.
type accountUsage struct {
	characters    int64
	documents     int64
	teamDocuments int64
}

func New(cfg Config) *Server {
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	} else if built, err := logging.New("mockserver", "disabled", false); err == nil {
		logger = built
	}

	s := &Server{
		cfg:        cfg,
		logger:     logger,
		remain429:  cfg.RespondWith429,
		documents:  map[string]*document{},
		glossaries: map[string]*glossary{},
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(s.authMiddleware)

	e.POST("/v2/translate", s.handleTranslate)
	e.GET("/v2/usage", s.handleUsage)
	e.GET("/v2/languages", s.handleLanguages)
	e.GET("/v2/glossary-language-pairs", s.handleGlossaryLanguagePairs)

	e.POST("/v2/document", s.handleDocumentUpload)
	e.POST("/v2/document/:id", s.handleDocumentStatus)
	e.POST("/v2/document/:id/result", s.handleDocumentDownload)

	e.POST("/v2/glossaries", s.handleGlossaryCreate)
	e.GET("/v2/glossaries", s.handleGlossaryList)
	e.GET("/v2/glossaries/:id", s.handleGlossaryGet)
	e.GET("/v2/glossaries/:id/entries", s.handleGlossaryEntries)
	e.DELETE("/v2/glossaries/:id", s.handleGlossaryDelete)

	s.echo = e
	return s
}

// Handler exposes the mock service as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.cfg.NoResponse {
			<-c.Request().Context().Done()
			return nil
		}

		header := c.Request().Header.Get("Authorization")
		key, found := strings.CutPrefix(header, authHeaderPrefix)
		if !found || strings.TrimSpace(key) == "" || !s.keyAccepted(key) {
			return c.JSON(http.StatusForbidden, errorBody("Wrong endpoint or invalid auth key"))
		}

		s.mu.Lock()
		induce429 := s.remain429 > 0
		if induce429 {
			s.remain429--
		}
		s.mu.Unlock()
		if induce429 {
			if s.cfg.RetryAfterSeconds > 0 {
				c.Response().Header().Set("Retry-After", strconv.Itoa(s.cfg.RetryAfterSeconds))
			}
			return c.JSON(http.StatusTooManyRequests, errorBody("Too many requests, reduce request rate"))
		}

		s.logger.Debug().Str("path", c.Path()).Msg("mock request accepted")
		return next(c)
	}
}

func (s *Server) keyAccepted(key string) bool {
	if len(s.cfg.AuthKeys) == 0 {
		return true
	}
	for _, accepted := range s.cfg.AuthKeys {
		if key == accepted {
			return true
		}
	}
	return false
}

func errorBody(message string) map[string]string {
	return map[string]string{"message": message}
}

const quotaExceededMessage = "Quota for this billing period has been exceeded"

// reserveCharacters charges character quota, failing when the account would
// exceed its ceiling. Consuming exactly up to the limit succeeds.
func (s *Server) reserveCharacters(n int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg.CharacterLimit > 0 && s.usage.characters+n > s.cfg.CharacterLimit {
		return false
	}
	s.usage.characters += n
	return true
}

// reserveDocument charges one document against every present document
// category.
func (s *Server) reserveDocument() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg.DocumentLimit > 0 && s.usage.documents+1 > s.cfg.DocumentLimit {
		return false
	}
	if s.cfg.TeamDocumentLimit > 0 && s.usage.teamDocuments+1 > s.cfg.TeamDocumentLimit {
		return false
	}
	if s.cfg.DocumentLimit > 0 {
		s.usage.documents++
	}
	if s.cfg.TeamDocumentLimit > 0 {
		s.usage.teamDocuments++
	}
	return true
}

func (s *Server) handleUsage(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload := map[string]int64{}
	if s.cfg.CharacterLimit > 0 {
		payload["character_count"] = s.usage.characters
		payload["character_limit"] = s.cfg.CharacterLimit
	}
	if s.cfg.DocumentLimit > 0 {
		payload["document_count"] = s.usage.documents
		payload["document_limit"] = s.cfg.DocumentLimit
	}
	if s.cfg.TeamDocumentLimit > 0 {
		payload["team_document_count"] = s.usage.teamDocuments
		payload["team_document_limit"] = s.cfg.TeamDocumentLimit
	}
	return c.JSON(http.StatusOK, payload)
}
