package imgproc

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noisyImage builds an image that does not compress to nothing, so encoded
// sizes in tests stay realistic.
func noisyImage(w, h int) *image.NRGBA {
	rng := rand.New(rand.NewSource(42))
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.Set(x, y, color.NRGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}
	return m
}

func encodeJPEG(t *testing.T, m image.Image, quality int) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, jpeg.Encode(buf, m, &jpeg.Options{Quality: quality}))
	return buf.Bytes()
}

func encodePNG(t *testing.T, m image.Image) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, m))
	return buf.Bytes()
}

func TestNormalizeJPEG(t *testing.T) {
	data := encodeJPEG(t, noisyImage(80, 60), 90)

	src, err := Normalize(data)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", src.SourceFormat)
	assert.Equal(t, FormatJPEG, src.Output)
	assert.Equal(t, 80, src.Width)
	assert.Equal(t, 60, src.Height)
	assert.Equal(t, "image/jpeg", src.MIME)
}

func TestNormalizePNGKeepsPNG(t *testing.T) {
	data := encodePNG(t, noisyImage(40, 40))

	src, err := Normalize(data)
	require.NoError(t, err)
	assert.Equal(t, "png", src.SourceFormat)
	assert.Equal(t, FormatPNG, src.Output)
}

func TestNormalizeGIFBecomesJPEG(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, gif.Encode(buf, noisyImage(30, 30), nil))

	src, err := Normalize(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "gif", src.SourceFormat)
	assert.Equal(t, FormatJPEG, src.Output)
}

func TestNormalizeCorruptInput(t *testing.T) {
	_, err := Normalize([]byte("definitely not an image"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestNormalizeTIFFRejected(t *testing.T) {
	// Little-endian TIFF magic followed by junk; no TIFF decoder is
	// registered, so detection must fail with a decode error.
	tiff := append([]byte("II*\x00"), bytes.Repeat([]byte{0x01}, 64)...)

	_, err := Normalize(tiff)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestFormatExtAndContentType(t *testing.T) {
	assert.Equal(t, "jpg", FormatJPEG.Ext())
	assert.Equal(t, "image/jpeg", FormatJPEG.ContentType())
	assert.Equal(t, "png", FormatPNG.Ext())
	assert.Equal(t, "image/png", FormatPNG.ContentType())
}

func TestAllowedUploadMIME(t *testing.T) {
	jpegData := encodeJPEG(t, noisyImage(20, 20), 80)
	mime, ok := AllowedUploadMIME(jpegData)
	assert.True(t, ok)
	assert.Equal(t, "image/jpeg", mime)

	pngData := encodePNG(t, noisyImage(20, 20))
	_, ok = AllowedUploadMIME(pngData)
	assert.True(t, ok)

	_, ok = AllowedUploadMIME([]byte("plain text payload"))
	assert.False(t, ok)

	tiff := append([]byte("II*\x00"), bytes.Repeat([]byte{0x01}, 64)...)
	mime, ok = AllowedUploadMIME(tiff)
	assert.False(t, ok)
	assert.Equal(t, "image/tiff", mime)
}
