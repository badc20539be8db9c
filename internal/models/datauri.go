// internal/models/datauri.go
package models

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var ErrNotDataURI = errors.New("not a data URI")

// DataURI is a decoded RFC 2397 data: URL.
type DataURI struct {
	MediaType string
	Data      []byte
}

// ParseDataURI decodes both base64 and percent-encoded data: URLs. A missing
// media type defaults to text/plain.
func ParseDataURI(raw string) (*DataURI, error) {
	if !strings.HasPrefix(raw, "data:") {
		return nil, ErrNotDataURI
	}
	meta, payload, ok := strings.Cut(raw[len("data:"):], ",")
	if !ok {
		return nil, fmt.Errorf("%w: missing comma", ErrNotDataURI)
	}

	isBase64 := false
	if strings.HasSuffix(meta, ";base64") {
		isBase64 = true
		meta = strings.TrimSuffix(meta, ";base64")
	}
	mediaType := meta
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = mediaType[:i]
	}
	if mediaType == "" {
		mediaType = "text/plain"
	}

	var data []byte
	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// Some producers strip padding.
			decoded, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
			if err != nil {
				return nil, fmt.Errorf("decode base64 payload: %w", err)
			}
		}
		data = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("unescape payload: %w", err)
		}
		data = []byte(unescaped)
	}

	return &DataURI{MediaType: mediaType, Data: data}, nil
}

// String renders the URI in base64 form.
func (d DataURI) String() string {
	return EncodeDataURI(d.MediaType, d.Data)
}

func EncodeDataURI(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// IsDataURI reports whether raw uses the data: scheme.
func IsDataURI(raw string) bool {
	return strings.HasPrefix(raw, "data:")
}

// IsBlobURI reports whether raw uses the blob: scheme.
func IsBlobURI(raw string) bool {
	return strings.HasPrefix(raw, "blob:")
}
