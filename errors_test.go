package polyglot

import (
	"errors"
	"testing"
)

func TestClassifyStatusError(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   any
	}{
		{"unauthorized", 401, `{"message":"Wrong endpoint or invalid auth key"}`, &AuthorizationError{}},
		{"forbidden", 403, ``, &AuthorizationError{}},
		{"quota status", 456, `{"message":"Quota for this billing period has been exceeded"}`, &QuotaExceededError{}},
		{"quota marker in 400", 400, `{"message":"Character quota has been exceeded"}`, &QuotaExceededError{}},
		{"quota marker in 429", 429, `{"message":"Quota for this billing period has been exceeded"}`, &QuotaExceededError{}},
		{"rate limited", 429, `{"message":"Too many requests"}`, &TooManyRequestsError{}},
		{"server error", 500, `{"message":"Internal error"}`, &ConnectionError{}},
		{"bad gateway", 502, ``, &ConnectionError{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := classifyStatusError(tc.status, []byte(tc.body))
			if err == nil {
				t.Fatal("expected error")
			}
			switch want := tc.want.(type) {
			case *AuthorizationError:
				if !errors.As(err, &want) {
					t.Fatalf("got %T: %v", err, err)
				}
			case *QuotaExceededError:
				if !errors.As(err, &want) {
					t.Fatalf("got %T: %v", err, err)
				}
			case *TooManyRequestsError:
				if !errors.As(err, &want) {
					t.Fatalf("got %T: %v", err, err)
				}
			case *ConnectionError:
				if !errors.As(err, &want) {
					t.Fatalf("got %T: %v", err, err)
				}
			}
		})
	}
}

func TestClassificationKeepsRemoteMessage(t *testing.T) {
	err := classifyStatusError(456, []byte(`{"message":"Quota for this billing period has been exceeded, consider upgrading"}`))
	var quotaErr *QuotaExceededError
	if !errors.As(err, &quotaErr) {
		t.Fatalf("got %T: %v", err, err)
	}
	if quotaErr.Message != "Quota for this billing period has been exceeded, consider upgrading" {
		t.Errorf("message = %q", quotaErr.Message)
	}
}

func TestRemoteMessage(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{`{"message":"nope"}`, "nope"},
		{`{"message":"nope","detail":"more"}`, "nope, more"},
		{`{"detail":"only detail"}`, "only detail"},
		{`plain text failure`, "plain text failure"},
		{``, ""},
		{`{"unrelated":true}`, `{"unrelated":true}`},
	}
	for _, tc := range cases {
		if got := remoteMessage([]byte(tc.body)); got != tc.want {
			t.Errorf("remoteMessage(%q) = %q, want %q", tc.body, got, tc.want)
		}
	}
}

func TestQuotaMessage(t *testing.T) {
	if !quotaMessage("Quota for this billing period has been exceeded") {
		t.Error("canonical quota message not recognized")
	}
	if !quotaMessage("character quota exceeded") {
		t.Error("lowercase quota message not recognized")
	}
	if quotaMessage("too many requests") {
		t.Error("rate-limit message wrongly treated as quota")
	}
	if quotaMessage("quota information unavailable") {
		t.Error("non-exhaustion quota mention wrongly treated as quota")
	}
}
