package polyglot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DocumentState is the server-side processing state of a submitted document.
// States progress queued → translating → done/error; once terminal, the
// state never changes.
type DocumentState string

const (
	DocumentStateQueued      DocumentState = "queued"
	DocumentStateTranslating DocumentState = "translating"
	DocumentStateDone        DocumentState = "done"
	DocumentStateError       DocumentState = "error"
)

// DocumentHandle identifies a submitted document. Both fields are required
// for every status and download call. The handle becomes invalid once the
// terminal result has been fetched.
type DocumentHandle struct {
	ID  string `json:"document_id"`
	Key string `json:"document_key"`
}

// DocumentStatus is one observation of a document's processing state.
type DocumentStatus struct {
	Status           DocumentState `json:"status"`
	SecondsRemaining int           `json:"seconds_remaining,omitempty"`
	BilledCharacters int64         `json:"billed_characters,omitempty"`
	ErrorMessage     string        `json:"error_message,omitempty"`
}

// Done reports whether the document translated successfully.
func (s *DocumentStatus) Done() bool {
	return s != nil && s.Status == DocumentStateDone
}

// Terminal reports whether the state machine has finished, successfully or
// not.
func (s *DocumentStatus) Terminal() bool {
	return s != nil && (s.Status == DocumentStateDone || s.Status == DocumentStateError)
}

// DocumentTranslationOptions are the per-call options for document
// translation.
type DocumentTranslationOptions struct {
	Formality  Formality
	GlossaryID string
	// PollInterval overrides the delay between status polls. Zero uses the
	// server's remaining-time hint, clamped to [1s, 60s], defaulting to 5s.
	PollInterval time.Duration
}

const (
	minPollInterval     = 1 * time.Second
	maxPollInterval     = 60 * time.Second
	defaultPollInterval = 5 * time.Second
)

// TranslateDocument runs the full document workflow: upload inputPath, poll
// until the document reaches a terminal state, then download the result to
// outputPath. The output file is written only after a terminal done status;
// a partially written file is never left behind. A terminal error status
// surfaces as a DocumentTranslationError carrying the remote reason, and no
// output is written.
func (t *Translator) TranslateDocument(ctx context.Context, inputPath, outputPath, sourceLang, targetLang string, opts *DocumentTranslationOptions) error {
	content, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read input document: %w", err)
	}

	handle, err := t.UploadDocument(ctx, bytes.NewReader(content), filepath.Base(inputPath), sourceLang, targetLang, opts)
	if err != nil {
		return err
	}

	status, err := t.WaitForDocumentCompletion(ctx, handle, opts)
	if err != nil {
		return err
	}
	if !status.Done() {
		msg := strings.TrimSpace(status.ErrorMessage)
		if msg == "" {
			msg = "document translation failed"
		}
		return &DocumentTranslationError{Message: msg, Handle: handle}
	}

	return t.downloadDocumentToFile(ctx, handle, outputPath)
}

// UploadDocument submits a document for translation and returns the handle
// required for all subsequent status and download calls. Failures here
// (invalid file, auth failure, quota already exhausted) surface immediately
// without entering the polling phase.
func (t *Translator) UploadDocument(ctx context.Context, document io.Reader, filename, sourceLang, targetLang string, opts *DocumentTranslationOptions) (*DocumentHandle, error) {
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
	if strings.TrimSpace(filename) == "" {
		return nil, fmt.Errorf("document filename is required")
	}

	content, err := io.ReadAll(document)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	fields := map[string]string{"target_lang": target}
	if source != "" {
		fields["source_lang"] = source
	}
	if opts != nil {
		if opts.Formality != "" && opts.Formality != FormalityDefault {
			fields["formality"] = string(opts.Formality)
		}
		if opts.GlossaryID != "" {
			fields["glossary_id"] = opts.GlossaryID
		}
	}

	resp, err := t.callAPI(ctx, http.MethodPost, "/document", nil, multipartBody(fields, filename, content))
	if err != nil {
		return nil, err
	}

	var handle DocumentHandle
	if err := json.Unmarshal(resp.body, &handle); err != nil {
		return nil, &DeserializationError{Err: err}
	}
	if handle.ID == "" || handle.Key == "" {
		return nil, &DeserializationError{Err: fmt.Errorf("document upload response missing id or key")}
	}

	t.logger.Debug().Str("document_id", handle.ID).Str("filename", filename).Msg("document submitted")
	return &handle, nil
}

// GetDocumentStatus fetches the current processing state for a handle.
// Querying a handle after it reached a terminal state returns the same
// terminal state.
func (t *Translator) GetDocumentStatus(ctx context.Context, handle *DocumentHandle) (*DocumentStatus, error) {
	if handle == nil || handle.ID == "" || handle.Key == "" {
		return nil, fmt.Errorf("document handle with id and key is required")
	}

	body, err := json.Marshal(map[string]string{"document_key": handle.Key})
	if err != nil {
		return nil, fmt.Errorf("marshal status request: %w", err)
	}

	resp, err := t.callAPI(ctx, http.MethodPost, "/document/"+handle.ID, nil, jsonBody(body))
	if err != nil {
		return nil, err
	}

	var status DocumentStatus
	if err := json.Unmarshal(resp.body, &status); err != nil {
		return nil, &DeserializationError{Err: err}
	}
	switch status.Status {
	case DocumentStateQueued, DocumentStateTranslating, DocumentStateDone, DocumentStateError:
	default:
		return nil, &DeserializationError{Err: fmt.Errorf("unknown document status %q", status.Status)}
	}
	return &status, nil
}

// WaitForDocumentCompletion polls the document's status sequentially until
// it reaches a terminal state or ctx expires. Each poll is individually
// retried for transient failures; the polling interval is independent of the
// retry backoff.
func (t *Translator) WaitForDocumentCompletion(ctx context.Context, handle *DocumentHandle, opts *DocumentTranslationOptions) (*DocumentStatus, error) {
	for {
		status, err := t.GetDocumentStatus(ctx, handle)
		if err != nil {
			return nil, err
		}
		if status.Terminal() {
			return status, nil
		}

		interval := pollInterval(status, opts)
		t.logger.Debug().
			Str("document_id", handle.ID).
			Str("status", string(status.Status)).
			Dur("interval", interval).
			Msg("document not ready, polling")

		if err := t.sleep(ctx, interval); err != nil {
			return nil, &ConnectionError{
				Message: "document translation timed out before completion",
				Timeout: true,
				Err:     err,
			}
		}
	}
}

func pollInterval(status *DocumentStatus, opts *DocumentTranslationOptions) time.Duration {
	if opts != nil && opts.PollInterval > 0 {
		return opts.PollInterval
	}
	if status == nil || status.SecondsRemaining <= 0 {
		return defaultPollInterval
	}
	// Poll at half the server's remaining-time estimate.
	hint := time.Duration(status.SecondsRemaining) * time.Second / 2
	if hint < minPollInterval {
		return minPollInterval
	}
	if hint > maxPollInterval {
		return maxPollInterval
	}
	return hint
}

// DownloadDocument streams the translated result for a completed document
// into w. Valid only after the document reached the done state; fetching the
// result invalidates the handle server-side.
func (t *Translator) DownloadDocument(ctx context.Context, handle *DocumentHandle, w io.Writer) error {
	if handle == nil || handle.ID == "" || handle.Key == "" {
		return fmt.Errorf("document handle with id and key is required")
	}

	body, err := json.Marshal(map[string]string{"document_key": handle.Key})
	if err != nil {
		return fmt.Errorf("marshal download request: %w", err)
	}

	resp, err := t.callAPI(ctx, http.MethodPost, "/document/"+handle.ID+"/result", nil, jsonBody(body))
	if err != nil {
		return err
	}
	if _, err := w.Write(resp.body); err != nil {
		return fmt.Errorf("write translated document: %w", err)
	}
	return nil
}

// downloadDocumentToFile writes the result atomically: download to a temp
// file in the destination directory, then rename, so a failed download never
// leaves a partial output file.
func (t *Translator) downloadDocumentToFile(ctx context.Context, handle *DocumentHandle, outputPath string) error {
	dir := filepath.Dir(outputPath)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(outputPath)+".*")
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := t.DownloadDocument(ctx, handle, tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close output file: %w", err)
	}
	if err := os.Rename(tmpPath, outputPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("move output file into place: %w", err)
	}
	return nil
}

// multipartBody builds a re-creatable multipart form body for document
// upload; each retry attempt gets a freshly encoded form.
func multipartBody(fields map[string]string, filename string, content []byte) bodyFunc {
	return func() (io.Reader, string, error) {
		var buf bytes.Buffer
		form := multipart.NewWriter(&buf)
		for key, value := range fields {
			if err := form.WriteField(key, value); err != nil {
				return nil, "", fmt.Errorf("write form field %s: %w", key, err)
			}
		}
		part, err := form.CreateFormFile("file", filename)
		if err != nil {
			return nil, "", fmt.Errorf("create form file: %w", err)
		}
		if _, err := part.Write(content); err != nil {
			return nil, "", fmt.Errorf("write form file: %w", err)
		}
		if err := form.Close(); err != nil {
			return nil, "", fmt.Errorf("finalize form: %w", err)
		}
		return &buf, form.FormDataContentType(), nil
	}
}
