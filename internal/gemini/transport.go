package gemini

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
)

// maxErrorBody bounds how much of a failed response is kept.
const maxErrorBody = 1 << 20

type errorBodyKey struct{}

// errorBody holds the raw body of the last failed upstream response made
// with the context it is attached to.
type errorBody struct {
	mu   sync.Mutex
	data []byte
}

func (b *errorBody) set(p []byte) {
	b.mu.Lock()
	b.data = p
	b.mu.Unlock()
}

func (b *errorBody) get() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.data
}

// withErrorBody attaches a fresh slot to ctx for one upstream call.
func withErrorBody(ctx context.Context) (context.Context, *errorBody) {
	slot := &errorBody{}
	return context.WithValue(ctx, errorBodyKey{}, slot), slot
}

// captureTransport copies non-2xx response bodies into the request's
// errorBody slot and hands an identical body on to the caller.
type captureTransport struct {
	base http.RoundTripper
}

func (t *captureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	res, err := t.base.RoundTrip(req)
	if err != nil || (res.StatusCode >= 200 && res.StatusCode <= 299) {
		return res, err
	}
	slot, ok := req.Context().Value(errorBodyKey{}).(*errorBody)
	if !ok || res.Body == nil {
		return res, nil
	}

	raw, readErr := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
	res.Body.Close()
	slot.set(raw)
	res.Body = io.NopCloser(bytes.NewReader(raw))
	if readErr != nil {
		return nil, readErr
	}
	return res, nil
}

// capturingClient returns a copy of hc whose transport records failed
// response bodies.
func capturingClient(hc *http.Client) *http.Client {
	out := *hc
	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	out.Transport = &captureTransport{base: base}
	return &out
}
