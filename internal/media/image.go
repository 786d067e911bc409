// Package media prepares image attachments for webhook upload.
package media

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Defaults used when Processor fields are unset.
const (
	DefaultMaxEdge = 1024
	DefaultQuality = 80
	// MaxInputBytes rejects absurdly large uploads before decoding.
	MaxInputBytes = 25 << 20
	// DefaultMaxPixels bounds the declared width×height checked before decoding.
	DefaultMaxPixels = 50_000_000
)

const jpegDataURLPrefix = "data:image/jpeg;base64,"

var (
	// ErrEmptyImage is returned for blank input.
	ErrEmptyImage = errors.New("media: empty image")
	// ErrTooManyPixels is returned when the declared dimensions exceed MaxPixels.
	ErrTooManyPixels = errors.New("media: image dimensions too large")
)

// Image is a processed JPEG attachment.
type Image struct {
	Width  int
	Height int
	JPEG   []byte
}

// Base64 returns the raw base64 payload.
func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.JPEG)
}

// DataURL returns the payload as a data URL.
func (i Image) DataURL() string {
	return jpegDataURLPrefix + i.Base64()
}

// Processor downscales images so the long edge is at most MaxEdge pixels and
// re-encodes them as JPEG.
type Processor struct {
	MaxEdge   int
	Quality   int
	MaxPixels int
	Logger    *zap.Logger
}

// NewProcessor returns a Processor with defaults applied.
func NewProcessor(maxEdge, quality int, logger *zap.Logger) *Processor {
	if maxEdge <= 0 {
		maxEdge = DefaultMaxEdge
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{MaxEdge: maxEdge, Quality: quality, MaxPixels: DefaultMaxPixels, Logger: logger}
}

// ProcessEncoded accepts a data URL or bare base64 string.
func (p *Processor) ProcessEncoded(encoded string) (Image, error) {
	raw, err := DecodeBase64(encoded)
	if err != nil {
		return Image{}, err
	}
	return p.Process(raw)
}

// ProcessAll processes every encoded image, failing on the first bad one.
func (p *Processor) ProcessAll(encoded []string) ([]Image, error) {
	out := make([]Image, 0, len(encoded))
	for i, e := range encoded {
		img, err := p.ProcessEncoded(e)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i+1, err)
		}
		out = append(out, img)
	}
	return out, nil
}

// Process decodes JPEG, PNG or WebP bytes and returns the bounded JPEG.
func (p *Processor) Process(raw []byte) (Image, error) {
	if len(raw) == 0 {
		return Image{}, ErrEmptyImage
	}
	if len(raw) > MaxInputBytes {
		return Image{}, fmt.Errorf("media: image of %s exceeds %s", humanize.Bytes(uint64(len(raw))), humanize.Bytes(MaxInputBytes))
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return Image{}, fmt.Errorf("media: decode image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > p.maxPixels()/cfg.Height {
		return Image{}, fmt.Errorf("%w: %dx%d exceeds %s pixels", ErrTooManyPixels, cfg.Width, cfg.Height, humanize.Comma(int64(p.maxPixels())))
	}

	src, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return Image{}, fmt.Errorf("media: decode image: %w", err)
	}

	bounds := src.Bounds()
	w, h := Fit(bounds.Dx(), bounds.Dy(), p.maxEdge())
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == bounds.Dx() && h == bounds.Dy() {
		draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: p.quality()}); err != nil {
		return Image{}, fmt.Errorf("media: encode jpeg: %w", err)
	}

	p.logger().Debug("image processed",
		zap.String("format", format),
		zap.Int("src_width", bounds.Dx()),
		zap.Int("src_height", bounds.Dy()),
		zap.Int("width", w),
		zap.Int("height", h),
		zap.String("in", humanize.Bytes(uint64(len(raw)))),
		zap.String("out", humanize.Bytes(uint64(buf.Len()))),
	)
	return Image{Width: w, Height: h, JPEG: buf.Bytes()}, nil
}

func (p *Processor) maxEdge() int {
	if p.MaxEdge <= 0 {
		return DefaultMaxEdge
	}
	return p.MaxEdge
}

func (p *Processor) maxPixels() int {
	if p.MaxPixels <= 0 {
		return DefaultMaxPixels
	}
	return p.MaxPixels
}

func (p *Processor) quality() int {
	if p.Quality <= 0 || p.Quality > 100 {
		return DefaultQuality
	}
	return p.Quality
}

func (p *Processor) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

// Fit scales w×h so the longer edge is at most maxEdge, keeping aspect ratio.
// Images already within bounds are unchanged.
func Fit(w, h, maxEdge int) (int, int) {
	if w <= maxEdge && h <= maxEdge {
		return w, h
	}
	if w >= h {
		nh := int(float64(h)*float64(maxEdge)/float64(w) + 0.5)
		return maxEdge, max(nh, 1)
	}
	nw := int(float64(w)*float64(maxEdge)/float64(h) + 0.5)
	return max(nw, 1), maxEdge
}

// DecodeBase64 decodes a data URL or bare base64 string.
func DecodeBase64(encoded string) ([]byte, error) {
	s := strings.TrimSpace(encoded)
	if s == "" {
		return nil, ErrEmptyImage
	}
	s = StripDataURL(s)
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
		if err != nil {
			return nil, fmt.Errorf("media: invalid base64: %w", err)
		}
	}
	return raw, nil
}

// StripDataURL removes a "data:<mime>;base64," prefix if present.
func StripDataURL(s string) string {
	if strings.HasPrefix(s, "data:") {
		if idx := strings.Index(s, ","); idx >= 0 {
			return s[idx+1:]
		}
	}
	return s
}
