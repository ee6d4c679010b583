package photos

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// maxSourcePixels rejects decompression bombs before a full decode
const maxSourcePixels = 40_000_000

// ErrImageTooLarge the source dimensions exceed maxSourcePixels
var ErrImageTooLarge = errors.New("image dimensions too large")

// scaledSize fits w x h inside max x max, keeping the aspect ratio
func scaledSize(w, h, max int) (int, int) {
	if max <= 0 || (w <= max && h <= max) {
		return w, h
	}
	if w >= h {
		return max, maxInt(1, h*max/w)
	}
	return maxInt(1, w*max/h), max
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// transform downscales data so neither side exceeds maxDimension.
// Photos already within bounds keep their original bytes unless their
// format has to change; webp is always re-encoded as jpeg.
func transform(data []byte, mimeType string, maxDimension, quality int) ([]byte, string, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image header: %w", err)
	}
	if cfg.Width*cfg.Height > maxSourcePixels {
		return nil, "", ErrImageTooLarge
	}

	w, h := scaledSize(cfg.Width, cfg.Height, maxDimension)
	if w == cfg.Width && h == cfg.Height && mimeType != "image/webp" {
		return data, mimeType, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == cfg.Width && h == cfg.Height {
		draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	}

	var buf bytes.Buffer
	switch mimeType {
	case "image/png", "image/gif":
		// keep transparency
		if err := png.Encode(&buf, dst); err != nil {
			return nil, "", fmt.Errorf("failed to encode png: %w", err)
		}
		return buf.Bytes(), "image/png", nil
	default:
		if quality <= 0 || quality > 100 {
			quality = jpeg.DefaultQuality
		}
		if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
			return nil, "", fmt.Errorf("failed to encode jpeg: %w", err)
		}
		return buf.Bytes(), "image/jpeg", nil
	}
}
