package storage

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func makeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	buf := new(bytes.Buffer)
	require.NoError(t, jpeg.Encode(buf, img, nil))
	return buf.Bytes()
}

func TestValidateBadgeImage(t *testing.T) {
	p := NewImageProcessor()

	assert.NoError(t, p.ValidateBadgeImage(makePNG(t, 64, 64)))
	assert.NoError(t, p.ValidateBadgeImage(makeJPEG(t, 64, 64)))

	err := p.ValidateBadgeImage(makePNG(t, 64, 32))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "square")

	assert.Error(t, p.ValidateBadgeImage([]byte("not an image")))
}

func TestValidateBadgeImageRejectsOversized(t *testing.T) {
	p := NewImageProcessor()
	p.MaxSize = 10

	err := p.ValidateBadgeImage(makePNG(t, 8, 8))
	assert.Error(t, err)
}

func TestNormalizeProducesPNG(t *testing.T) {
	p := NewImageProcessor()

	out, err := p.Normalize(makeJPEG(t, 800, 800))
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.LessOrEqual(t, cfg.Width, 400)
	assert.LessOrEqual(t, cfg.Height, 400)
}

func TestBakeEmbedsAssertionData(t *testing.T) {
	p := NewImageProcessor()
	classImage := makePNG(t, 64, 64)
	assertionJSON := []byte(`{"id":"abc123"}`)

	baked, err := p.Bake(classImage, assertionJSON)
	require.NoError(t, err)

	// Still a decodable PNG after chunk insertion.
	_, format, err := image.DecodeConfig(bytes.NewReader(baked))
	require.NoError(t, err)
	assert.Equal(t, "png", format)

	found, err := hasBakedData(baked)
	require.NoError(t, err)
	assert.True(t, found)

	// A baked image cannot be reused as a badge class image.
	err = p.ValidateBadgeImage(baked)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already contains baked")
}

func TestBakeConvertsJPEGInput(t *testing.T) {
	p := NewImageProcessor()

	baked, err := p.Bake(makeJPEG(t, 64, 64), []byte(`{}`))
	require.NoError(t, err)

	found, err := hasBakedData(baked)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestHasBakedDataOnPlainPNG(t *testing.T) {
	found, err := hasBakedData(makePNG(t, 16, 16))
	require.NoError(t, err)
	assert.False(t, found)

	_, err = hasBakedData([]byte("not a png"))
	assert.Error(t, err)
}
