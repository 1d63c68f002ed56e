package upload

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/SergeyParamoshkin/blog/internal/apperr"
	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

type Format int

const (
	JPEG Format = iota
	WebP
)

func (f Format) String() string {
	switch f {
	case JPEG:
		return "jpeg"
	case WebP:
		return "webp"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Codec is the imaging capability the pipeline needs.
type Codec interface {
	// Decode returns the image and its source format name. Unsupported or
	// corrupt data yields an error wrapping apperr.ErrImageDecode.
	Decode(data []byte) (image.Image, string, error)
	// Resize scales img down to at most maxWidth pixels wide, keeping the
	// aspect ratio. Narrower images are returned unchanged.
	Resize(img image.Image, maxWidth int) image.Image
	Encode(w io.Writer, img image.Image, f Format, quality int) error
}

// SourceFormats are the formats accepted for upload, as reported by
// image.DecodeConfig.
var SourceFormats = map[string]bool{"jpeg": true, "png": true, "gif": true}

// DefaultMaxPixels bounds width*height of an accepted source image.
const DefaultMaxPixels = 40_000_000

// ImagingCodec implements Codec on disintegration/imaging, with WebP output
// through chai2010/webp. MaxPixels of zero means DefaultMaxPixels.
type ImagingCodec struct {
	MaxPixels int64
}

func (c ImagingCodec) Decode(data []byte) (image.Image, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", apperr.ErrImageDecode, err)
	}
	if !SourceFormats[format] {
		return nil, format, fmt.Errorf("%w: format %q not accepted", apperr.ErrImageDecode, format)
	}

	// A small compressed file can still describe a huge canvas; check the
	// header before any pixel buffer is allocated.
	limit := c.MaxPixels
	if limit <= 0 {
		limit = DefaultMaxPixels
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > limit {
		return nil, format, fmt.Errorf("%w: %dx%d exceeds %d pixels", apperr.ErrImageDecode, cfg.Width, cfg.Height, limit)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, format, fmt.Errorf("%w: %v", apperr.ErrImageDecode, err)
	}

	return img, format, nil
}

func (ImagingCodec) Resize(img image.Image, maxWidth int) image.Image {
	if img.Bounds().Dx() <= maxWidth {
		return img
	}

	return imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
}

func (ImagingCodec) Encode(w io.Writer, img image.Image, f Format, quality int) error {
	switch f {
	case JPEG:
		return imaging.Encode(w, flatten(img), imaging.JPEG, imaging.JPEGQuality(quality))
	case WebP:
		return webp.Encode(w, img, &webp.Options{Quality: float32(quality)})
	default:
		return fmt.Errorf("encode: unknown format %s", f)
	}
}

// flatten composites translucent images onto white; JPEG has no alpha and
// would otherwise render transparent pixels black.
func flatten(img image.Image) image.Image {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return img
	}

	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)

	return imaging.Overlay(bg, img, image.Point{}, 1)
}
