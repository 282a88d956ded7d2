package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/cristianadrielbraun/avatarstudio/internal/apperr"
	"github.com/cristianadrielbraun/avatarstudio/internal/config"
	"github.com/cristianadrielbraun/avatarstudio/internal/imagedata"
)

var portrait = []byte("\x89PNG\r\n\x1a\nportrait")

// fakeGemini stands in for the Gemini API. Every request is recorded.
type fakeGemini struct {
	*httptest.Server
	hits     atomic.Int32
	mu       sync.Mutex
	lastPath string
	lastKey  string
	lastBody map[string]any
}

func newFakeGemini(t *testing.T, status int, body string) *fakeGemini {
	t.Helper()
	f := &fakeGemini{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		f.mu.Lock()
		defer f.mu.Unlock()
		f.lastPath = r.URL.Path
		f.lastKey = r.Header.Get("x-goog-api-key")
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			_ = json.Unmarshal(raw, &f.lastBody)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(f.Close)
	return f
}

// seen returns the last request's path, API key and decoded body.
func (f *fakeGemini) seen() (string, string, map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastPath, f.lastKey, f.lastBody
}

func newClient(t *testing.T, key, baseURL string) *Client {
	t.Helper()
	c, err := New(context.Background(), config.GeminiConfig{
		APIKey:     key,
		Model:      "gemini-test-image",
		BaseURL:    baseURL,
		APIVersion: "v1beta",
		Timeout:    5 * time.Second,
	})
	require.NoError(t, err)
	return c
}

func imageResponse(mime string, data []byte) string {
	return `{"candidates":[{"content":{"role":"model","parts":[` +
		`{"text":"Here you go"},` +
		`{"inlineData":{"mimeType":"` + mime + `","data":"` + imagedata.Encode(data) + `"}}` +
		`]},"finishReason":"STOP"}]}`
}

func validRequest() GenerateRequest {
	return GenerateRequest{ImageBase64: imagedata.Encode(portrait), MimeType: "image/png"}
}

func TestRestyleReturnsFirstInlineImage(t *testing.T) {
	styled := []byte("styled-bytes")
	srv := newFakeGemini(t, http.StatusOK, imageResponse("image/png", styled))
	c := newClient(t, "test-key", srv.URL)

	res, err := c.Restyle(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, "image/png", res.MimeType)
	assert.Equal(t, imagedata.Encode(styled), res.ImageBase64)

	path, _, _ := srv.seen()
	assert.Contains(t, path, "gemini-test-image")
	assert.True(t, strings.HasSuffix(path, ":generateContent"), path)
}

func TestRestyleSendsPromptThenImage(t *testing.T) {
	srv := newFakeGemini(t, http.StatusOK, imageResponse("image/png", []byte("x")))
	c := newClient(t, "test-key", srv.URL)

	_, err := c.Restyle(context.Background(), validRequest())
	require.NoError(t, err)

	_, _, body := srv.seen()
	contents := body["contents"].([]any)
	require.Len(t, contents, 1)
	content := contents[0].(map[string]any)
	assert.Equal(t, "user", content["role"])

	parts := content["parts"].([]any)
	require.Len(t, parts, 2)
	assert.Equal(t, config.DefaultPrompt, parts[0].(map[string]any)["text"])
	inline := parts[1].(map[string]any)["inlineData"].(map[string]any)
	assert.Equal(t, "image/png", inline["mimeType"])
	assert.Equal(t, imagedata.Encode(portrait), inline["data"])
}

func TestRestyleSniffsGenericMime(t *testing.T) {
	srv := newFakeGemini(t, http.StatusOK, imageResponse("image/png", []byte("x")))
	c := newClient(t, "test-key", srv.URL)

	req := validRequest()
	req.MimeType = "application/octet-stream"
	_, err := c.Restyle(context.Background(), req)
	require.NoError(t, err)

	_, _, body := srv.seen()
	parts := body["contents"].([]any)[0].(map[string]any)["parts"].([]any)
	inline := parts[1].(map[string]any)["inlineData"].(map[string]any)
	assert.Equal(t, "image/png", inline["mimeType"])
}

func TestResolveMIME(t *testing.T) {
	assert.Equal(t, "image/png", resolveMIME("application/octet-stream", portrait))
	assert.Equal(t, "image/heic", resolveMIME("image/heic", portrait), "declared type wins")
	assert.Equal(t, "application/octet-stream", resolveMIME("application/octet-stream", []byte("plain words")))
}

func TestRestyleUsesCallerPrompt(t *testing.T) {
	srv := newFakeGemini(t, http.StatusOK, imageResponse("image/png", []byte("x")))
	c := newClient(t, "test-key", srv.URL)

	req := validRequest()
	req.Prompt = "Make it yellow"
	_, err := c.Restyle(context.Background(), req)
	require.NoError(t, err)

	_, _, body := srv.seen()
	parts := body["contents"].([]any)[0].(map[string]any)["parts"].([]any)
	assert.Equal(t, "Make it yellow", parts[0].(map[string]any)["text"])
}

func TestRestyleWithoutKeyMakesNoCall(t *testing.T) {
	srv := newFakeGemini(t, http.StatusOK, imageResponse("image/png", []byte("x")))
	c := newClient(t, "", srv.URL)

	_, err := c.Restyle(context.Background(), validRequest())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Configuration))
	assert.Equal(t, http.StatusInternalServerError, apperr.StatusOf(err))

	_, err = c.ListModels(context.Background())
	assert.True(t, apperr.Is(err, apperr.Configuration))

	assert.Zero(t, srv.hits.Load())
}

func TestRestyleRequiresImageAndMime(t *testing.T) {
	srv := newFakeGemini(t, http.StatusOK, imageResponse("image/png", []byte("x")))
	c := newClient(t, "test-key", srv.URL)

	for _, req := range []GenerateRequest{
		{MimeType: "image/png"},
		{ImageBase64: imagedata.Encode(portrait)},
		{Prompt: "only a prompt"},
	} {
		_, err := c.Restyle(context.Background(), req)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(err))
		assert.Equal(t, MsgMissingFields, apperr.Message(err))
	}

	_, err := c.Restyle(context.Background(), GenerateRequest{ImageBase64: "!!!not base64!!!", MimeType: "image/png"})
	assert.True(t, apperr.Is(err, apperr.InvalidRequest))

	assert.Zero(t, srv.hits.Load())
}

func TestRestyleNoInlinePartIs502(t *testing.T) {
	body := `{"candidates":[{"content":{"role":"model","parts":[{"text":"I can only describe it"}]},"finishReason":"STOP"}]}`
	srv := newFakeGemini(t, http.StatusOK, body)
	c := newClient(t, "test-key", srv.URL)

	_, err := c.Restyle(context.Background(), validRequest())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.NoImageReturned))
	assert.Equal(t, http.StatusBadGateway, apperr.StatusOf(err))
	assert.Equal(t, MsgNoImage, apperr.Message(err))
}

func TestRestyleSafetyBlockIs400(t *testing.T) {
	for _, reason := range []string{"SAFETY", "IMAGE_SAFETY", "PROHIBITED_CONTENT"} {
		body := `{"candidates":[{"content":{"role":"model","parts":[]},"finishReason":"` + reason + `"}]}`
		srv := newFakeGemini(t, http.StatusOK, body)
		c := newClient(t, "test-key", srv.URL)

		_, err := c.Restyle(context.Background(), validRequest())
		require.Error(t, err, reason)
		assert.True(t, apperr.Is(err, apperr.PolicyBlocked), reason)
		assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(err))
		assert.Equal(t, MsgSafetyBlocked, apperr.Message(err))
	}
}

func TestRestylePromptFeedbackBlock(t *testing.T) {
	srv := newFakeGemini(t, http.StatusOK, `{"promptFeedback":{"blockReason":"SAFETY"}}`)
	c := newClient(t, "test-key", srv.URL)

	_, err := c.Restyle(context.Background(), validRequest())
	assert.True(t, apperr.Is(err, apperr.PolicyBlocked))
}

func TestRestyleNoCandidatesFailsClosed(t *testing.T) {
	srv := newFakeGemini(t, http.StatusOK, `{"candidates":[]}`)
	c := newClient(t, "test-key", srv.URL)

	_, err := c.Restyle(context.Background(), validRequest())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Upstream))
	assert.Equal(t, http.StatusBadGateway, apperr.StatusOf(err))
}

func TestRestylePropagatesUpstreamStatus(t *testing.T) {
	body := `{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`
	srv := newFakeGemini(t, http.StatusTooManyRequests, body)
	c := newClient(t, "test-key", srv.URL)

	_, err := c.Restyle(context.Background(), validRequest())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Upstream))
	assert.Equal(t, http.StatusTooManyRequests, apperr.StatusOf(err))
	assert.Contains(t, apperr.Message(err), "Resource has been exhausted")
	assert.Equal(t, int32(1), srv.hits.Load(), "no retry")
}

func TestRestyleUpstreamBodyIsVerbatim(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"json with details", http.StatusBadRequest, `{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT","details":[{"@type":"type.googleapis.com/google.rpc.ErrorInfo","reason":"API_KEY_INVALID","domain":"googleapis.com"}]}}`},
		{"plain text", http.StatusServiceUnavailable, "upstream exploded"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newFakeGemini(t, tc.status, tc.body)
			c := newClient(t, "test-key", srv.URL)

			_, err := c.Restyle(context.Background(), validRequest())
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.Upstream), "%v", err)
			assert.Equal(t, tc.status, apperr.StatusOf(err))
			assert.Equal(t, tc.body, apperr.Message(err))
		})
	}
}

func TestCaptureTransportOnlyKeepsFailures(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(status.Load()))
		_, _ = io.WriteString(w, "payload")
	}))
	t.Cleanup(srv.Close)
	hc := capturingClient(srv.Client())

	get := func() ([]byte, string) {
		ctx, slot := withErrorBody(context.Background())
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
		require.NoError(t, err)
		res, err := hc.Do(req)
		require.NoError(t, err)
		defer res.Body.Close()
		body, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		return slot.get(), string(body)
	}

	kept, body := get()
	assert.Nil(t, kept)
	assert.Equal(t, "payload", body)

	status.Store(http.StatusInternalServerError)
	kept, body = get()
	assert.Equal(t, "payload", string(kept))
	assert.Equal(t, "payload", body, "caller still reads the body")
}

func TestRestyleTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c, err := New(context.Background(), config.GeminiConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Timeout: 50 * time.Millisecond,
	})
	require.NoError(t, err)

	_, err = c.Restyle(context.Background(), validRequest())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Upstream), "%v", err)
	assert.Equal(t, http.StatusGatewayTimeout, apperr.StatusOf(err))
}

func TestListModelsPassesThrough(t *testing.T) {
	body := `{"models":[{"name":"models/gemini-3-pro-image-preview"}]}`
	srv := newFakeGemini(t, http.StatusOK, body)
	c := newClient(t, "test-key", srv.URL)

	list, err := c.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, list.Status)
	assert.JSONEq(t, body, string(list.Body))
	path, key, _ := srv.seen()
	assert.Equal(t, "/v1beta/models", path)
	assert.Equal(t, "test-key", key)
}

func TestListModelsUpstreamErrorIsVerbatim(t *testing.T) {
	srv := newFakeGemini(t, http.StatusForbidden, "API key not valid")
	c := newClient(t, "bad-key", srv.URL)

	_, err := c.ListModels(context.Background())
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, apperr.StatusOf(err))
	assert.Equal(t, "API key not valid", apperr.Message(err))
}

func TestDecodePartsFailsClosedOnMalformedInline(t *testing.T) {
	_, err := decodeParts(&genai.Content{Parts: []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: "image/png"}},
	}})
	assert.Error(t, err)

	_, err = decodeParts(&genai.Content{Parts: []*genai.Part{
		{InlineData: &genai.Blob{Data: []byte("x")}},
	}})
	assert.Error(t, err)

	parts, err := decodeParts(&genai.Content{Parts: []*genai.Part{
		genai.NewPartFromText("caption"),
		{InlineData: &genai.Blob{MIMEType: "image/webp", Data: []byte("w")}},
		nil,
	}})
	require.NoError(t, err)
	assert.Equal(t, []Part{
		TextPart{Text: "caption"},
		InlineBinaryPart{MimeType: "image/webp", Data: []byte("w")},
		OtherPart{},
	}, parts)
}
