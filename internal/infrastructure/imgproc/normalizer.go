package imgproc

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"
)

// ErrDecode marks input that is not a decodable image. Not retried; the user
// has to re-upload a valid file.
var ErrDecode = errors.New("image cannot be decoded")

// Format is an output codec the pipeline can actually encode.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
)

// Ext returns the file extension for storage keys and local filenames.
func (f Format) Ext() string {
	if f == FormatPNG {
		return "png"
	}
	return "jpg"
}

// ContentType returns the MIME type for the encoded output.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/jpeg"
}

// SourceInfo describes a decoded upload before compression.
type SourceInfo struct {
	SourceFormat string // as detected from the bytes: jpeg, png, webp, gif...
	Output       Format // canonical output codec
	Width        int
	Height       int
	MIME         string // sniffed content type of the raw bytes
}

// Normalize inspects the buffer's embedded metadata to determine the source
// encoding and picks the canonical output codec. Mobile clients frequently
// mislabel or omit the declared type, so the declared MIME is never trusted.
//
// PNG sources keep PNG so logo transparency survives; webp and gif re-encode
// to JPEG (Go has no native webp encoder); everything else decodable also
// normalizes to JPEG.
func Normalize(data []byte) (*SourceInfo, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	out := FormatJPEG
	if format == "png" {
		out = FormatPNG
	}

	return &SourceInfo{
		SourceFormat: format,
		Output:       out,
		Width:        cfg.Width,
		Height:       cfg.Height,
		MIME:         mimetype.Detect(data).String(),
	}, nil
}

// AllowedUploadMIME reports whether the sniffed content type of raw upload
// bytes is on the gateway allow-list. Checked before any decode work happens.
func AllowedUploadMIME(data []byte) (string, bool) {
	mime := mimetype.Detect(data)
	for _, allowed := range []string{"image/jpeg", "image/png", "image/webp", "image/gif"} {
		if mime.Is(allowed) {
			return mime.String(), true
		}
	}
	return mime.String(), false
}
