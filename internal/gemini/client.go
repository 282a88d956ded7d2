// Package gemini forwards restyle requests to the Gemini image API and
// extracts the generated image from its response.
package gemini

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"google.golang.org/genai"

	"github.com/cristianadrielbraun/avatarstudio/internal/apperr"
	"github.com/cristianadrielbraun/avatarstudio/internal/config"
	"github.com/cristianadrielbraun/avatarstudio/internal/imagedata"
)

// User-facing messages.
const (
	MsgMissingKey     = "GEMINI_API_KEY is not configured. Please set it up in your environment variables."
	MsgMissingFields  = "imageBase64 and mimeType are required"
	MsgInvalidBase64  = "imageBase64 is not valid base64"
	MsgSafetyBlocked  = "Image generation blocked due to safety settings."
	MsgNoImage        = "No image returned from Gemini"
	MsgNoCandidates   = "Gemini returned no candidates"
	MsgMalformedReply = "Gemini returned a malformed image part"
	MsgTimeout        = "Gemini request timed out"
)

// Client talks to the Gemini API. It is safe for concurrent use.
type Client struct {
	cfg        config.GeminiConfig
	httpClient *http.Client
	genai      *genai.Client
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for every upstream call.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New builds a client. A missing API key is not an error here; every call
// fails with a ConfigurationError instead.
func New(ctx context.Context, cfg config.GeminiConfig, opts ...Option) (*Client, error) {
	c := &Client{cfg: cfg, httpClient: http.DefaultClient, log: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	if c.cfg.Model == "" {
		c.cfg.Model = config.DefaultModel
	}
	if c.cfg.BaseURL == "" {
		c.cfg.BaseURL = config.DefaultBaseURL
	}
	if c.cfg.APIVersion == "" {
		c.cfg.APIVersion = config.DefaultAPIVersion
	}
	if c.cfg.Prompt == "" {
		c.cfg.Prompt = config.DefaultPrompt
	}
	if !c.Configured() {
		return c, nil
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     c.cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: capturingClient(c.httpClient),
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    strings.TrimRight(c.cfg.BaseURL, "/") + "/",
			APIVersion: c.cfg.APIVersion,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "create genai client")
	}
	c.genai = gc
	return c, nil
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return strings.TrimSpace(c.cfg.APIKey) != ""
}

// Model is the upstream model identifier.
func (c *Client) Model() string { return c.cfg.Model }

// CheckConfigured returns a ConfigurationError when no API key is set.
func (c *Client) CheckConfigured() error {
	if !c.Configured() {
		return apperr.New(apperr.Configuration, MsgMissingKey)
	}
	return nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, c.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}

// Restyle sends the portrait with the styling prompt and returns the first
// inline image of the first candidate.
func (c *Client) Restyle(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if err := c.CheckConfigured(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ImageBase64) == "" || strings.TrimSpace(req.MimeType) == "" {
		return nil, apperr.New(apperr.InvalidRequest, MsgMissingFields)
	}
	data, err := imagedata.Decode(req.ImageBase64)
	if err != nil {
		return nil, apperr.Wrap(apperr.InvalidRequest, err, MsgInvalidBase64)
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		prompt = c.cfg.Prompt
	}
	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		{InlineData: &genai.Blob{MIMEType: resolveMIME(req.MimeType, data), Data: data}},
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	ctx, failed := withErrorBody(ctx)
	start := time.Now()
	resp, err := c.genai.Models.GenerateContent(ctx, c.cfg.Model, contents, nil)
	if err != nil {
		c.log.WarnContext(ctx, "gemini generate failed", "model", c.cfg.Model, "error", err)
		return nil, classify(err, failed.get())
	}
	c.log.DebugContext(ctx, "gemini generate finished", "model", c.cfg.Model, "duration", time.Since(start))

	return extract(resp)
}

// resolveMIME replaces a generic declared type with the sniffed image type.
// A specific declared type is trusted as given.
func resolveMIME(declared string, data []byte) string {
	switch strings.ToLower(strings.TrimSpace(declared)) {
	case "application/octet-stream", "binary/octet-stream", "image/*":
		if sniffed := imagedata.SniffMIME(data); imagedata.IsImageMIME(sniffed) {
			return sniffed
		}
	}
	return declared
}

// extract turns a generateContent response into a result or a classified
// error.
func extract(resp *genai.GenerateContentResponse) (*GenerateResult, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		if resp != nil && promptBlocked(resp) {
			return nil, apperr.New(apperr.PolicyBlocked, MsgSafetyBlocked)
		}
		return nil, apperr.UpstreamStatus(http.StatusBadGateway, MsgNoCandidates)
	}

	cand := resp.Candidates[0]
	parts, err := decodeParts(cand.Content)
	if err != nil {
		return nil, &apperr.Error{Kind: apperr.Upstream, Status: http.StatusBadGateway, Message: MsgMalformedReply, Err: err}
	}
	if img, ok := firstInline(parts); ok {
		return &GenerateResult{MimeType: img.MimeType, ImageBase64: imagedata.Encode(img.Data)}, nil
	}
	if safetyFinishReasons[cand.FinishReason] || promptBlocked(resp) {
		return nil, apperr.New(apperr.PolicyBlocked, MsgSafetyBlocked)
	}
	return nil, apperr.New(apperr.NoImageReturned, MsgNoImage)
}

// classify maps a genai call error onto the error taxonomy. raw is the
// upstream error body as received, when the transport captured one.
func classify(err error, raw []byte) error {
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		return upstreamFromAPIError(apiErr, raw)
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		return upstreamFromAPIError(*apiErrPtr, raw)
	case errors.Is(err, context.DeadlineExceeded):
		return &apperr.Error{Kind: apperr.Upstream, Status: http.StatusGatewayTimeout, Message: MsgTimeout, Err: err}
	default:
		return apperr.Wrap(apperr.Internal, err, "")
	}
}

// upstreamFromAPIError passes the upstream status and body through. The
// decoded message stands in only when no body was captured.
func upstreamFromAPIError(e genai.APIError, raw []byte) error {
	body := string(raw)
	if len(raw) == 0 {
		body = e.Message
	}
	ae := apperr.UpstreamStatus(e.Code, body)
	ae.Err = e
	return ae
}

// ModelList is the verbatim upstream model listing.
type ModelList struct {
	Status int
	Body   []byte
}

// ListModels forwards to the upstream model listing and returns its status
// and JSON body unchanged.
func (c *Client) ListModels(ctx context.Context) (*ModelList, error) {
	if err := c.CheckConfigured(); err != nil {
		return nil, err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/" + c.cfg.APIVersion + "/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "")
	}
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classify(err, nil)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, errors.Wrap(err, "read model list"), "")
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, apperr.UpstreamStatus(res.StatusCode, string(body))
	}
	return &ModelList{Status: res.StatusCode, Body: body}, nil
}
