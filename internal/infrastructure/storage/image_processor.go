package storage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/disintegration/imaging"
)

// bakeKeyword is the PNG tEXt keyword carrying embedded assertion data,
// per the Open Badges baking specification.
const bakeKeyword = "openbadges"

var pngSignature = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

// ImageProcessor validates and bakes badge images.
type ImageProcessor struct {
	MaxSize int64 // bytes
}

func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{MaxSize: 2 * 1024 * 1024} // 2MB
}

// ValidateBadgeImage enforces the badge class image constraints:
// PNG or JPEG, square, within size limit, and free of previously
// baked assertion data.
func (p *ImageProcessor) ValidateBadgeImage(data []byte) error {
	if int64(len(data)) > p.MaxSize {
		return fmt.Errorf("image exceeds %dMB", p.MaxSize/(1024*1024))
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("not an image: %w", err)
	}

	switch format {
	case "png", "jpeg":
	default:
		return fmt.Errorf("image format %s not allowed (only png/jpeg)", format)
	}

	if cfg.Width != cfg.Height {
		return fmt.Errorf("badge image must be square, got %dx%d", cfg.Width, cfg.Height)
	}

	if format == "png" {
		baked, err := hasBakedData(data)
		if err != nil {
			return fmt.Errorf("cannot inspect png chunks: %w", err)
		}
		if baked {
			return fmt.Errorf("image already contains baked assertion data")
		}
	}

	return nil
}

// Normalize re-encodes the class image as a 400x400 PNG so every
// badge renders at a consistent size.
func (p *ImageProcessor) Normalize(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("cannot decode image: %w", err)
	}

	resized := imaging.Fit(img, 400, 400, imaging.Lanczos)
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, resized); err != nil {
		return nil, fmt.Errorf("cannot encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Bake embeds the assertion JSON into the class PNG as an
// "openbadges" tEXt chunk, inserted directly after IHDR.
func (p *ImageProcessor) Bake(classImage []byte, assertionJSON []byte) ([]byte, error) {
	data := classImage
	if !bytes.HasPrefix(data, pngSignature) {
		// JPEG class images get converted to PNG before baking.
		normalized, err := p.Normalize(data)
		if err != nil {
			return nil, err
		}
		data = normalized
	}

	chunk := buildTextChunk(bakeKeyword, assertionJSON)

	// Skip signature (8 bytes) + IHDR chunk (length 13 + 12 bytes framing).
	ihdrEnd := 8 + 12 + 13
	if len(data) < ihdrEnd {
		return nil, fmt.Errorf("png too short")
	}

	baked := make([]byte, 0, len(data)+len(chunk))
	baked = append(baked, data[:ihdrEnd]...)
	baked = append(baked, chunk...)
	baked = append(baked, data[ihdrEnd:]...)
	return baked, nil
}

// buildTextChunk assembles a PNG tEXt chunk: length, type, keyword,
// null separator, text, CRC over type+data.
func buildTextChunk(keyword string, text []byte) []byte {
	payload := make([]byte, 0, len(keyword)+1+len(text))
	payload = append(payload, keyword...)
	payload = append(payload, 0)
	payload = append(payload, text...)

	chunk := make([]byte, 8, 8+len(payload)+4)
	binary.BigEndian.PutUint32(chunk[0:4], uint32(len(payload)))
	copy(chunk[4:8], "tEXt")
	chunk = append(chunk, payload...)

	crc := crc32.NewIEEE()
	crc.Write(chunk[4:])
	chunk = binary.BigEndian.AppendUint32(chunk, crc.Sum32())
	return chunk
}

// hasBakedData walks the PNG chunk list looking for an existing
// "openbadges" tEXt or iTXt chunk.
func hasBakedData(data []byte) (bool, error) {
	if !bytes.HasPrefix(data, pngSignature) {
		return false, fmt.Errorf("not a png")
	}

	pos := len(pngSignature)
	for pos+8 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		ctype := string(data[pos+4 : pos+8])

		if pos+8+length > len(data) {
			return false, fmt.Errorf("truncated chunk %s", ctype)
		}

		if ctype == "tEXt" || ctype == "iTXt" {
			body := data[pos+8 : pos+8+length]
			if idx := bytes.IndexByte(body, 0); idx >= 0 && string(body[:idx]) == bakeKeyword {
				return true, nil
			}
		}

		if ctype == "IEND" {
			break
		}
		pos += 8 + length + 4 // data + type/length framing + crc
	}

	return false, nil
}
