package utils

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DecodeDataURI parses "data:<mediatype>;base64,<payload>" strings used
// for inline image uploads.
func DecodeDataURI(uri string) ([]byte, string, error) {
	if !strings.HasPrefix(uri, "data:") {
		return nil, "", fmt.Errorf("not a data URI")
	}

	rest := strings.TrimPrefix(uri, "data:")
	sep := strings.Index(rest, ",")
	if sep < 0 {
		return nil, "", fmt.Errorf("malformed data URI")
	}

	meta := rest[:sep]
	payload := rest[sep+1:]

	contentType := "application/octet-stream"
	if parts := strings.Split(meta, ";"); len(parts) > 0 && parts[0] != "" {
		contentType = parts[0]
	}
	if !strings.HasSuffix(meta, ";base64") {
		return nil, "", fmt.Errorf("only base64 data URIs are supported")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("invalid base64 payload: %w", err)
	}

	return data, contentType, nil
}

// IsDataURI reports whether the string looks like an inline data URI.
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:")
}
