package upload

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// VariantSpec describes one derived file.
type VariantSpec struct {
	Name     string
	Suffix   string
	Format   Format
	MaxWidth int
}

// DefaultVariants are written in this order for every upload.
var DefaultVariants = []VariantSpec{
	{Name: "large", Suffix: ".jpg", Format: JPEG, MaxWidth: 1200},
	{Name: "webp", Suffix: ".webp", Format: WebP, MaxWidth: 1200},
	{Name: "medium", Suffix: "-medium.jpg", Format: JPEG, MaxWidth: 600},
	{Name: "thumbnail", Suffix: "-thumb.jpg", Format: JPEG, MaxWidth: 300},
}

// Variant is one file written for an upload. Only JPEG variants report
// their dimensions.
type Variant struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// Result describes a processed upload.
type Result struct {
	Base     string
	Format   string
	Variants map[string]Variant
}

// TotalSize sums the bytes written across variants.
func (r *Result) TotalSize() int64 {
	var n int64
	for _, v := range r.Variants {
		n += v.Size
	}

	return n
}

// Processor turns one uploaded image into its variant set inside Dir.
type Processor struct {
	Dir      string
	Codec    Codec
	Quality  int
	Variants []VariantSpec

	newBase func() string
}

func NewProcessor(dir string, codec Codec, quality int) *Processor {
	return &Processor{
		Dir:      dir,
		Codec:    codec,
		Quality:  quality,
		Variants: DefaultVariants,
		newBase:  randomBase,
	}
}

func randomBase() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Process decodes data once and writes every variant. On any failure the
// variants already written are removed, so either the whole set exists or
// none of it does.
func (p *Processor) Process(ctx context.Context, data []byte) (res *Result, err error) {
	img, format, err := p.Codec.Decode(data)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating image dir: %w", err)
	}

	res = &Result{Base: p.newBase(), Format: format, Variants: make(map[string]Variant, len(p.Variants))}

	var written []string
	defer func() {
		if err == nil {
			return
		}
		for _, path := range written {
			if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
				err = multierr.Append(err, fmt.Errorf("cleanup %s: %w", path, rmErr))
			}
		}
		res = nil
	}()

	resized := map[int]image.Image{}
	for _, spec := range p.Variants {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		scaled, ok := resized[spec.MaxWidth]
		if !ok {
			scaled = p.Codec.Resize(img, spec.MaxWidth)
			resized[spec.MaxWidth] = scaled
		}

		var buf bytes.Buffer
		if err := p.Codec.Encode(&buf, scaled, spec.Format, p.Quality); err != nil {
			return nil, fmt.Errorf("encoding %s variant: %w", spec.Name, err)
		}

		name := res.Base + spec.Suffix
		path := filepath.Join(p.Dir, name)
		written = append(written, path)
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return nil, fmt.Errorf("writing %s variant: %w", spec.Name, err)
		}

		v := Variant{Filename: name, Size: int64(buf.Len())}
		if spec.Format == JPEG {
			b := scaled.Bounds()
			v.Width, v.Height = b.Dx(), b.Dy()
		}
		res.Variants[spec.Name] = v
	}

	return res, nil
}
