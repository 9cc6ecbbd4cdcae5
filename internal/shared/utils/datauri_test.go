package utils

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDataURI(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("hello"))

	data, contentType, err := DecodeDataURI("data:image/png;base64," + payload)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
	assert.Equal(t, "image/png", contentType)
}

func TestDecodeDataURIDefaultsContentType(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("x"))

	_, contentType, err := DecodeDataURI("data:;base64," + payload)
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", contentType)
}

func TestDecodeDataURIRejectsBadInput(t *testing.T) {
	cases := []string{
		"http://example.org/image.png",
		"data:image/png;base64",
		"data:image/png,plain-not-base64",
		"data:image/png;base64,%%%not-base64%%%",
	}

	for _, uri := range cases {
		_, _, err := DecodeDataURI(uri)
		assert.Error(t, err, "uri %q", uri)
	}
}

func TestIsDataURI(t *testing.T) {
	assert.True(t, IsDataURI("data:image/png;base64,abc"))
	assert.False(t, IsDataURI("https://example.org/a.png"))
	assert.False(t, IsDataURI(""))
}
