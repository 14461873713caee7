package blobx

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var (
	// ErrUndecodable means the bytes sniffed as an image but did not decode.
	ErrUndecodable = errors.New("blobx: image could not be decoded")

	// ErrTooManyPixels means the header declares more pixels than the
	// policy will decode.
	ErrTooManyPixels = errors.New("blobx: image has too many pixels")
)

// DefaultMaxPixels caps decoding when a policy sets no MaxPixels. Decoding
// allocates in proportion to the declared width*height, not the file size.
const DefaultMaxPixels = 24_000_000

// ImagePolicy bounds stored images. Larger images are scaled down to fit
// the box keeping their aspect ratio; smaller ones are never scaled up.
// Images declaring more than MaxPixels are rejected before decoding.
type ImagePolicy struct {
	MaxWidth  int
	MaxHeight int
	MaxPixels int64
}

// DefaultImagePolicy is the product image bound.
var DefaultImagePolicy = ImagePolicy{MaxWidth: 500, MaxHeight: 500, MaxPixels: DefaultMaxPixels}

func (p ImagePolicy) maxPixels() int64 {
	if p.MaxPixels > 0 {
		return p.MaxPixels
	}
	return DefaultMaxPixels
}

// Transformed is the output of Apply.
type Transformed struct {
	Data        []byte
	ContentType string
	Ext         string
	Width       int
	Height      int
	Resized     bool
}

// Fit returns the size w×h is scaled to.
func (p ImagePolicy) Fit(w, h int) (int, int) {
	if w <= 0 || h <= 0 {
		return w, h
	}
	if (p.MaxWidth <= 0 || w <= p.MaxWidth) && (p.MaxHeight <= 0 || h <= p.MaxHeight) {
		return w, h
	}

	scale := 1.0
	if p.MaxWidth > 0 {
		scale = min(scale, float64(p.MaxWidth)/float64(w))
	}
	if p.MaxHeight > 0 {
		scale = min(scale, float64(p.MaxHeight)/float64(h))
	}

	nw := max(int(float64(w)*scale+0.5), 1)
	nh := max(int(float64(h)*scale+0.5), 1)
	return nw, nh
}

// Apply enforces the policy on an encoded image whose extension is ext
// (jpg, jpeg, png or webp). Images already inside the box come back
// byte-for-byte. WebP has no encoder here, so a resized WebP becomes PNG.
func (p ImagePolicy) Apply(data []byte, ext, contentType string) (Transformed, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Transformed{}, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	if px := int64(cfg.Width) * int64(cfg.Height); px > p.maxPixels() {
		return Transformed{}, fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
	}

	nw, nh := p.Fit(cfg.Width, cfg.Height)
	if nw == cfg.Width && nh == cfg.Height {
		return Transformed{
			Data:        data,
			ContentType: contentType,
			Ext:         ext,
			Width:       cfg.Width,
			Height:      cfg.Height,
		}, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Transformed{}, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	out := Transformed{Width: nw, Height: nh, Resized: true}
	switch ext {
	case "jpg", "jpeg":
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90})
		out.ContentType, out.Ext = "image/jpeg", ext
	default:
		err = png.Encode(&buf, dst)
		out.ContentType, out.Ext = "image/png", "png"
	}
	if err != nil {
		return Transformed{}, fmt.Errorf("blobx: encode: %w", err)
	}

	out.Data = buf.Bytes()
	return out, nil
}
