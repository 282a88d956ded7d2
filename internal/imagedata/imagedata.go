// Package imagedata converts raw image bytes to and from the base64 text
// carried in JSON bodies and data URLs.
package imagedata

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

const dataURLMarker = ";base64,"

// Encode returns the standard, padded base64 encoding of b.
func Encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// Decode reverses Encode. A "data:<mime>;base64," prefix is stripped, and
// unpadded input is accepted. An empty payload decodes to an empty slice.
func Decode(s string) ([]byte, error) {
	_, payload := SplitDataURL(s)
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return []byte{}, nil
	}
	enc := base64.StdEncoding
	if len(payload)%4 != 0 {
		enc = base64.RawStdEncoding
		payload = strings.TrimRight(payload, "=")
	}
	b, err := enc.DecodeString(payload)
	if err != nil {
		return nil, errors.Wrap(err, "decode base64 image")
	}
	return b, nil
}

// DataURL returns b as a base64 data URL of the given MIME type.
func DataURL(mimeType string, b []byte) string {
	return "data:" + mimeType + dataURLMarker + Encode(b)
}

// SplitDataURL separates a data URL into its MIME type and payload. Input
// without a data URL prefix is returned as the payload with an empty type.
func SplitDataURL(s string) (mimeType, payload string) {
	if !strings.HasPrefix(s, "data:") {
		return "", s
	}
	i := strings.Index(s, dataURLMarker)
	if i < 0 {
		return "", s
	}
	return s[len("data:"):i], s[i+len(dataURLMarker):]
}

// SniffMIME guesses the MIME type of image bytes.
func SniffMIME(b []byte) string {
	return http.DetectContentType(b)
}

// IsImageMIME reports whether mimeType names an image type.
func IsImageMIME(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "image/")
}
