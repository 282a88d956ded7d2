package gemini

import (
	"github.com/pkg/errors"
	"google.golang.org/genai"
)

// GenerateRequest is the body of POST /generate.
type GenerateRequest struct {
	ImageBase64 string `json:"imageBase64"`
	MimeType    string `json:"mimeType"`
	Prompt      string `json:"prompt,omitempty"`
}

// GenerateResult is the restyled image.
type GenerateResult struct {
	MimeType    string `json:"mimeType"`
	ImageBase64 string `json:"imageBase64"`
}

// Part is one decoded content part of a candidate.
type Part interface {
	isPart()
}

// TextPart carries model commentary.
type TextPart struct {
	Text string
}

// InlineBinaryPart carries an inline image.
type InlineBinaryPart struct {
	MimeType string
	Data     []byte
}

// OtherPart is any part kind the studio does not use.
type OtherPart struct{}

func (TextPart) isPart()         {}
func (InlineBinaryPart) isPart() {}
func (OtherPart) isPart()        {}

var errMalformedInline = errors.New("inline data part without data or mime type")

// decodeParts converts a candidate's content into tagged parts. An inline
// part missing its payload or MIME type fails the whole decode.
func decodeParts(content *genai.Content) ([]Part, error) {
	if content == nil {
		return nil, nil
	}
	parts := make([]Part, 0, len(content.Parts))
	for i, p := range content.Parts {
		switch {
		case p == nil:
			parts = append(parts, OtherPart{})
		case p.InlineData != nil:
			if len(p.InlineData.Data) == 0 || p.InlineData.MIMEType == "" {
				return nil, errors.Wrapf(errMalformedInline, "part %d", i)
			}
			parts = append(parts, InlineBinaryPart{MimeType: p.InlineData.MIMEType, Data: p.InlineData.Data})
		case p.Text != "":
			parts = append(parts, TextPart{Text: p.Text})
		default:
			parts = append(parts, OtherPart{})
		}
	}
	return parts, nil
}

// firstInline returns the first inline image among parts.
func firstInline(parts []Part) (InlineBinaryPart, bool) {
	for _, p := range parts {
		if ib, ok := p.(InlineBinaryPart); ok {
			return ib, true
		}
	}
	return InlineBinaryPart{}, false
}

// safetyFinishReasons are the finish reasons that mean the model refused.
var safetyFinishReasons = map[genai.FinishReason]bool{
	genai.FinishReasonSafety:            true,
	genai.FinishReasonProhibitedContent: true,
	genai.FinishReasonImageSafety:       true,
	genai.FinishReasonBlocklist:         true,
	genai.FinishReasonSPII:              true,
}

func promptBlocked(resp *genai.GenerateContentResponse) bool {
	if resp.PromptFeedback == nil {
		return false
	}
	r := resp.PromptFeedback.BlockReason
	return r != "" && r != genai.BlockedReasonUnspecified
}
