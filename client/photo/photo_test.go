package photo

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/greencampus/facility-reports/internal/photos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 80, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCompress_ScalesToMaxWidth(t *testing.T) {
	out, err := Compress(bytes.NewReader(pngOf(t, 300, 150)), Options{MaxWidth: 100})
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 50, cfg.Height)
}

func TestCompress_KeepsSmallImageSize(t *testing.T) {
	out, err := Compress(bytes.NewReader(pngOf(t, 40, 60)), Options{})
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Width)
	assert.Equal(t, 60, cfg.Height)
}

func TestCompress_RejectsLargeFile(t *testing.T) {
	_, err := Compress(bytes.NewReader(pngOf(t, 64, 64)), Options{MaxFileSize: 100})
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestCompress_RejectsNonImage(t *testing.T) {
	_, err := Compress(strings.NewReader("not an image"), Options{})
	assert.Error(t, err)
}

func TestFromReader_ServerDecodesDataURL(t *testing.T) {
	p, err := FromReader(bytes.NewReader(pngOf(t, 20, 20)), "bin.png", Options{})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(p.Data, "data:image/jpeg;base64,"))
	assert.Equal(t, "bin.png", p.OriginalName)

	raw, mime, err := photos.DecodeData(p.Data)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime)
	assert.Equal(t, p.Size, int64(len(raw)))
}
