package polyglot

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AuthorizationError reports an invalid or revoked auth key (HTTP 401/403).
// It is never retried.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return "authorization failure"
	}
	return e.Message
}

// QuotaExceededError reports that a character, document, or team-document
// quota has been exhausted. It is terminal until the quota resets.
type QuotaExceededError struct {
	Message string
}

func (e *QuotaExceededError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return "quota for this billing period has been exceeded"
	}
	return e.Message
}

// TooManyRequestsError reports a rate limit that persisted after all retry
// attempts were exhausted.
type TooManyRequestsError struct {
	Message string
}

func (e *TooManyRequestsError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return "too many requests, reduce request rate"
	}
	return e.Message
}

// ConnectionError reports a network-level or server-side (5xx) failure that
// persisted after all retry attempts were exhausted. Timeout is true when the
// failure was caused by a deadline or cancellation.
type ConnectionError struct {
	Message string
	Timeout bool
	Err     error
}

func (e *ConnectionError) Error() string {
	if strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("connection failure: %v", e.Err)
	}
	return "connection failure"
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// DocumentTranslationError reports a remote-side failure while a document was
// being processed. Handle identifies the failed document when known, so a
// caller can still query its terminal status.
type DocumentTranslationError struct {
	Message string
	Handle  *DocumentHandle
}

func (e *DocumentTranslationError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return "document translation failed"
	}
	return e.Message
}

// DeserializationError reports a 2xx response whose body could not be decoded.
type DeserializationError struct {
	Err error
}

func (e *DeserializationError) Error() string {
	if e.Err == nil {
		return "malformed response body"
	}
	return fmt.Sprintf("malformed response body: %v", e.Err)
}

func (e *DeserializationError) Unwrap() error { return e.Err }

// errorPayload is the JSON error envelope returned by the service.
type errorPayload struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

// remoteMessage extracts the human-readable reason from an error response
// body. Falls back to the raw body when it is not the JSON envelope.
func remoteMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}

	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err == nil {
		msg := strings.TrimSpace(payload.Message)
		if detail := strings.TrimSpace(payload.Detail); detail != "" {
			if msg == "" {
				msg = detail
			} else {
				msg = msg + ", " + detail
			}
		}
		if msg != "" {
			return msg
		}
	}
	return trimmed
}

// quotaMessage reports whether a remote error message is a quota-limit
// marker. Both 400-status quota messages and the dedicated 456 status are
// treated as quota triggers.
func quotaMessage(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "quota") && strings.Contains(lower, "exceeded")
}

// classifyStatusError maps a non-2xx response to exactly one member of the
// error taxonomy. It is pure: no retries, no side effects.
func classifyStatusError(status int, body []byte) error {
	msg := remoteMessage(body)

	switch {
	case status == 401 || status == 403:
		if msg == "" {
			msg = "authorization failure, check auth key"
		}
		return &AuthorizationError{Message: msg}
	case status == 456:
		if msg == "" {
			msg = "quota for this billing period has been exceeded"
		}
		return &QuotaExceededError{Message: msg}
	case status == 429:
		if quotaMessage(msg) {
			return &QuotaExceededError{Message: msg}
		}
		if msg == "" {
			msg = "too many requests, reduce request rate"
		}
		return &TooManyRequestsError{Message: msg}
	case status >= 400 && status < 500:
		if quotaMessage(msg) {
			return &QuotaExceededError{Message: msg}
		}
		if msg == "" {
			msg = fmt.Sprintf("request failed with status %d", status)
		} else {
			msg = fmt.Sprintf("bad request, status %d: %s", status, msg)
		}
		return &ConnectionError{Message: msg}
	default:
		if msg == "" {
			msg = fmt.Sprintf("service unavailable, status %d", status)
		}
		return &ConnectionError{Message: msg}
	}
}

// retryableStatus reports whether a status code indicates a transient
// condition worth another attempt.
func retryableStatus(status int) bool {
	return status == 429 || status >= 500
}
