package imgproc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
)

// ErrEncode marks a codec failure that survived the internal retry.
var ErrEncode = errors.New("image encode failed")

const (
	// Quality floor before the search switches to dimension shrinking.
	minQuality = 20
	// Quality ceiling when stepping up for undersized output.
	maxQuality = 95
	// Step used when raising quality toward the band.
	qualityRaiseStep = 5

	// Dimension floor so the search never produces degenerate images.
	minWidth  = 300
	minHeight = 200
)

// Result is the outcome of one compression run. Immutable once produced.
type Result struct {
	Data       []byte
	Format     Format
	Quality    int
	Width      int
	Height     int
	Iterations int
	// BestEffort is set when the iteration budget ran out before the output
	// landed inside the profile's size band. Callers accept the buffer anyway;
	// "somewhat outside the band" beats "no image at all".
	BestEffort bool
}

type encodeFunc func(m image.Image, f Format, quality int) ([]byte, error)

// Compressor searches quality and dimensions until the encoded size falls
// inside a profile's target band. Pure buffer-in/buffer-out: no filesystem
// writes happen here.
type Compressor struct {
	encode encodeFunc
}

func NewCompressor() *Compressor {
	return &Compressor{encode: encodeImage}
}

// Compress re-encodes data to src.Output until the result lands inside
// [p.MinSizeKB, p.MaxSizeKB] or the iteration budget runs out. Sizes are
// measured from actual encoded bytes, never estimated.
//
// Search stepping mirrors the sizing behavior the CMS has always had:
// over budget → proportional quality cuts (25% when more than 2x over, 10%
// otherwise) down to a floor, then dimension shrinking scaled by
// sqrt(target/current); under budget → fixed quality raises while headroom
// remains. Exhausting the budget returns the best buffer seen rather than
// failing.
func (c *Compressor) Compress(ctx context.Context, data []byte, src *SourceInfo, p Profile) (*Result, error) {
	m, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	frame := initialFrame(m, p)
	quality := p.InitialQuality

	minBytes := p.MinSizeKB * 1024
	maxBytes := p.MaxSizeKB * 1024

	var last, smallest *attempt
	encodeFailures := 0
	iterations := 0

	for iterations < p.MaxIterations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		iterations++

		buf, err := c.encode(frame, src.Output, quality)
		if err != nil {
			encodeFailures++
			if encodeFailures >= 2 {
				return nil, fmt.Errorf("%w after %d attempts: %v", ErrEncode, encodeFailures, err)
			}
			// Retry once with slightly reduced parameters before giving up.
			quality = maxInt(minQuality, quality-10)
			continue
		}
		encodeFailures = 0

		cur := &attempt{data: buf, quality: quality, width: frame.Bounds().Dx(), height: frame.Bounds().Dy()}
		last = cur
		if smallest == nil || len(buf) < len(smallest.data) {
			smallest = cur
		}

		log.Debug().
			Str("category", p.Category).
			Int("iteration", iterations).
			Int("quality", quality).
			Int("size_kb", len(buf)/1024).
			Int("width", cur.width).
			Int("height", cur.height).
			Msg("Compression attempt")

		size := len(buf)
		switch {
		case size >= minBytes && size <= maxBytes:
			return cur.result(src.Output, iterations, false), nil

		case size > maxBytes:
			if quality > minQuality {
				quality = reduceQuality(quality, size, maxBytes)
				continue
			}
			shrunk, ok := shrinkFrame(frame, size, maxBytes)
			if !ok {
				// Already at the dimension floor; nothing left to try.
				return smallest.result(src.Output, iterations, true), nil
			}
			frame = shrunk

		default: // size < minBytes
			if quality >= maxQuality {
				return last.result(src.Output, iterations, true), nil
			}
			quality = minInt(maxQuality, quality+qualityRaiseStep)
		}
	}

	if last == nil {
		return nil, fmt.Errorf("%w: no attempt produced output within %d iterations", ErrEncode, p.MaxIterations)
	}

	// Budget exhausted. Still over the cap → smallest seen; otherwise the
	// last encode carries the highest quality reached.
	best := last
	if smallest != nil && len(last.data) > maxBytes {
		best = smallest
	}
	return best.result(src.Output, iterations, true), nil
}

type attempt struct {
	data    []byte
	quality int
	width   int
	height  int
}

func (a *attempt) result(f Format, iterations int, bestEffort bool) *Result {
	return &Result{
		Data:       a.data,
		Format:     f,
		Quality:    a.quality,
		Width:      a.width,
		Height:     a.height,
		Iterations: iterations,
		BestEffort: bestEffort,
	}
}

// initialFrame caps the source to the profile's target box using its fit
// mode. Neither mode ever enlarges the source.
func initialFrame(m image.Image, p Profile) image.Image {
	if p.Fit == FitCover {
		return coverFrame(m, p.TargetWidth, p.TargetHeight)
	}
	return imaging.Fit(m, p.TargetWidth, p.TargetHeight, imaging.Lanczos)
}

// coverFrame crops symmetrically to fill the target box. Sources smaller
// than the box are center-cropped to the target aspect instead of upscaled.
func coverFrame(m image.Image, tw, th int) image.Image {
	b := m.Bounds()
	if b.Dx() >= tw && b.Dy() >= th {
		return imaging.Fill(m, tw, th, imaging.Center, imaging.Lanczos)
	}
	cw := b.Dx()
	ch := cw * th / tw
	if ch > b.Dy() {
		ch = b.Dy()
		cw = ch * tw / th
	}
	return imaging.CropCenter(m, cw, ch)
}

// reduceQuality applies the proportional step: 25% when more than 2x over
// the cap, 10% otherwise, floored at minQuality.
func reduceQuality(quality, size, maxBytes int) int {
	pct := 10
	if size > 2*maxBytes {
		pct = 25
	}
	step := quality * pct / 100
	if step < 1 {
		step = 1
	}
	return maxInt(minQuality, quality-step)
}

// shrinkFrame scales both dimensions by sqrt(target/current), preserving the
// aspect ratio, floored at minWidth x minHeight. Returns false when the frame
// cannot get any smaller.
func shrinkFrame(frame image.Image, size, maxBytes int) (image.Image, bool) {
	b := frame.Bounds()
	w, h := b.Dx(), b.Dy()

	scale := math.Sqrt(float64(maxBytes) / float64(size))
	if fw := float64(minWidth) / float64(w); scale < fw {
		scale = fw
	}
	if fh := float64(minHeight) / float64(h); scale < fh {
		scale = fh
	}
	if scale >= 1 {
		return frame, false
	}

	nw := int(math.Round(float64(w) * scale))
	nh := int(math.Round(float64(h) * scale))
	if nw >= w && nh >= h {
		return frame, false
	}
	return imaging.Resize(frame, nw, nh, imaging.Lanczos), true
}

func encodeImage(m image.Image, f Format, quality int) ([]byte, error) {
	buf := new(bytes.Buffer)
	switch f {
	case FormatPNG:
		enc := png.Encoder{CompressionLevel: pngLevel(quality)}
		if err := enc.Encode(buf, m); err != nil {
			return nil, err
		}
	default:
		if err := jpeg.Encode(buf, m, &jpeg.Options{Quality: quality}); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// pngLevel maps the 1-100 quality scale onto PNG compression levels: higher
// quality spends fewer cycles compressing, so the file grows.
func pngLevel(quality int) png.CompressionLevel {
	switch {
	case quality < 40:
		return png.BestCompression
	case quality < 85:
		return png.DefaultCompression
	default:
		return png.BestSpeed
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
