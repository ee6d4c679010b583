// Package photo prepares evidence photos on the client before upload:
// downscale to a maximum width, re-encode as JPEG and wrap as a data URL.
package photo

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/greencampus/facility-reports/internal/submission"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Defaults applied to a zero Options
const (
	DefaultMaxWidth    = 1200
	DefaultQuality     = 70
	DefaultMaxFileSize = 5 << 20
)

// ErrFileTooLarge the source file exceeds Options.MaxFileSize
var ErrFileTooLarge = errors.New("photo exceeds the maximum file size")

// Options compression settings
type Options struct {
	MaxWidth    int
	Quality     int
	MaxFileSize int64
}

func (o Options) withDefaults() Options {
	if o.MaxWidth <= 0 {
		o.MaxWidth = DefaultMaxWidth
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = DefaultQuality
	}
	if o.MaxFileSize <= 0 {
		o.MaxFileSize = DefaultMaxFileSize
	}
	return o
}

// Compress decodes r, scales it down to MaxWidth and returns JPEG bytes
func Compress(r io.Reader, opts Options) ([]byte, error) {
	opts = opts.withDefaults()

	data, err := io.ReadAll(io.LimitReader(r, opts.MaxFileSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > opts.MaxFileSize {
		return nil, ErrFileTooLarge
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > opts.MaxWidth {
		h = max(1, h*opts.MaxWidth/w)
		w = opts.MaxWidth
	}

	// JPEG has no alpha; flatten onto white like a canvas export
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURL wraps JPEG bytes as a data URL
func DataURL(jpegData []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpegData)
}

// FromReader compresses r into a submission photo
func FromReader(r io.Reader, name string, opts Options) (submission.PhotoInput, error) {
	data, err := Compress(r, opts)
	if err != nil {
		return submission.PhotoInput{}, err
	}
	now := time.Now().UTC()
	return submission.PhotoInput{
		Data:         DataURL(data),
		MimeType:     "image/jpeg",
		OriginalName: name,
		Size:         int64(len(data)),
		UploadedAt:   &now,
	}, nil
}

// FromFile compresses the file at path
func FromFile(path string, opts Options) (submission.PhotoInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return submission.PhotoInput{}, err
	}
	defer func() { _ = f.Close() }()
	return FromReader(f, filepath.Base(path), opts)
}
