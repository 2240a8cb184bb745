package browser

import (
	"context"
	stderrors "errors"
	"io"

	"pricepulse/helpers"
	"pricepulse/pkg/errors"
)

// HTTPFallback is a Navigator that fetches pages over plain HTTP with
// browser-like headers. It cannot execute scripts, so the wait selector is
// only verified against the static document, but it keeps the pipeline
// serviceable when headless Chrome is disabled or unavailable.
type HTTPFallback struct{}

var _ Navigator = (*HTTPFallback)(nil)

// NewHTTPFallback creates the plain-HTTP navigator
func NewHTTPFallback() *HTTPFallback {
	return &HTTPFallback{}
}

// Open fetches url and returns the parsed document
func (f *HTTPFallback) Open(ctx context.Context, url, waitSelector string) (*Document, error) {
	reader, err := helpers.FetchWithRandomHeaders(ctx, url)
	if err != nil {
		if stderrors.Is(err, helpers.ErrRateLimited) {
			return nil, errors.New(errors.ErrorTypeUpstreamBlocked, "", "upstream refused the request", err)
		}
		if stderrors.Is(err, context.DeadlineExceeded) {
			return nil, errors.NewTimeout("", "fetch of "+url, err)
		}
		return nil, err
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	doc, err := NewDocument(url, string(body))
	if err != nil {
		return nil, err
	}

	if waitSelector != "" && !doc.Has(waitSelector) {
		return nil, errors.NewTimeout("", "wait for "+waitSelector, nil)
	}

	return doc, nil
}

// Close is a no-op for the plain-HTTP navigator
func (f *HTTPFallback) Close(ctx context.Context) error {
	return nil
}
