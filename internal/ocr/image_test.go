package ocr

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billscan/internal/domain"
	"billscan/internal/port"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNormalizePagesSingleImage(t *testing.T) {
	pages, err := normalizePages(port.AcquireInput{
		Bytes:       pngBytes(t),
		ContentType: "image/png",
		Filename:    "scan.png",
	})
	require.NoError(t, err)
	require.Len(t, pages, 1)

	// The output page must itself be a decodable PNG.
	_, err = png.Decode(bytes.NewReader(pages[0]))
	assert.NoError(t, err)
}

func TestNormalizePagesEmptyInput(t *testing.T) {
	_, err := normalizePages(port.AcquireInput{ContentType: "image/png"})
	assert.ErrorIs(t, err, domain.ErrEmptyDocument)
}

func TestNormalizePagesUndecodableImage(t *testing.T) {
	_, err := normalizePages(port.AcquireInput{
		Bytes:       []byte("not an image"),
		ContentType: "image/jpeg",
	})
	assert.Error(t, err)
}

func TestIsHEIC(t *testing.T) {
	ftyp := func(brand string) []byte {
		return append(append([]byte{0, 0, 0, 24}, []byte("ftyp")...), []byte(brand)...)
	}

	assert.True(t, isHEIC(nil, "image/heic"))
	assert.True(t, isHEIC(nil, "image/heif"))
	assert.True(t, isHEIC(ftyp("heic"), "application/octet-stream"))
	assert.True(t, isHEIC(ftyp("mif1"), ""))
	assert.False(t, isHEIC(ftyp("isom"), "image/jpeg"))
	assert.False(t, isHEIC(pngBytes(t), "image/png"))
	assert.False(t, isHEIC([]byte("tiny"), ""))
}
