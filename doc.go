// Package polyglot is a client for the Polyglot translation API. It
// translates text and documents, reports usage quotas, and manages
// glossaries, shielding callers from the transient failure modes of the
// network API.
//
// Every operation goes through a resilient request layer: exponential
// backoff with jitter, honoring server-supplied Retry-After hints, with HTTP
// failures classified into a typed error taxonomy (AuthorizationError,
// QuotaExceededError, TooManyRequestsError, ConnectionError,
// DocumentTranslationError, DeserializationError).
//
// A Translator is immutable after construction and safe for concurrent use:
//
//	translator, err := polyglot.New(authKey, nil)
//	if err != nil {
//		return err
//	}
//	results, err := translator.TranslateText(ctx, []string{"proton beam"}, "", "de", nil)
//
// Document translation is an asynchronous submit/poll/fetch workflow driven
// end-to-end by TranslateDocument, or step-by-step with UploadDocument,
// WaitForDocumentCompletion, and DownloadDocument.
package polyglot
