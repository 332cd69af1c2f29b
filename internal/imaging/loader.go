package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "github.com/xfmoulet/qoi"  // Register QOI format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// DefaultJPEGQuality is used by Save when no quality is given.
const DefaultJPEGQuality = 95

// ErrUnsupportedFormat is returned by Save for extensions no encoder handles.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the decoder name reported by the image registry:
	// "png", "jpeg", "tiff", "gif", "bmp", "webp" or "qoi".
	Format string `json:"format"`

	// ColorModel describes the source layout before normalization,
	// e.g. "rgba", "rgb", "gray", "palette".
	ColorModel string `json:"color_model"`

	// ColorDepth indicates the source bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// HasAlpha indicates whether the source carried an alpha channel.
	// Images without one are given an opaque alpha plane on load.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// Load decodes the image at path and normalizes it to a non-premultiplied
// RGBA layout with its origin at (0,0).
//
// Palette and grayscale sources are converted, and an opaque alpha plane is
// synthesized when the source has none. JPEG EXIF orientation is applied.
// On error nothing is returned, so callers can keep their current image.
func Load(path string) (*image.NRGBA, *ImageInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if stat.IsDir() {
		return nil, nil, fmt.Errorf("failed to open image: %s is a directory", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode image header: %w", err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		return nil, nil, fmt.Errorf("failed to rewind image: %w", err)
	}

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode image: %w", err)
	}

	model, depth, hasAlpha := describeModel(cfg.ColorModel)
	nrgba := Normalize(img)

	return nrgba, &ImageInfo{
		Width:         nrgba.Rect.Dx(),
		Height:        nrgba.Rect.Dy(),
		Format:        format,
		ColorModel:    model,
		ColorDepth:    depth,
		HasAlpha:      hasAlpha,
		FileSizeBytes: stat.Size(),
	}, nil
}

// Normalize returns an independent NRGBA copy of img with its origin at (0,0).
func Normalize(img image.Image) *image.NRGBA {
	return imaging.Clone(img)
}

func describeModel(m color.Model) (model, depth string, hasAlpha bool) {
	depth = "8-bit"
	switch m {
	case color.NRGBAModel:
		return "rgba", depth, true
	case color.NRGBA64Model:
		return "rgba", "16-bit", true
	case color.RGBAModel:
		return "rgb", depth, false
	case color.RGBA64Model:
		return "rgb", "16-bit", false
	case color.GrayModel:
		return "gray", depth, false
	case color.Gray16Model:
		return "gray", "16-bit", false
	case color.YCbCrModel:
		return "rgb", depth, false
	case color.CMYKModel:
		return "cmyk", depth, false
	}
	if p, ok := m.(color.Palette); ok {
		for _, c := range p {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return "palette", depth, true
			}
		}
		return "palette", depth, false
	}
	return "unknown", depth, true
}

// SaveOptions tunes encoding in Save.
type SaveOptions struct {
	// JPEGQuality is the JPEG quality (1-100). Zero means DefaultJPEGQuality.
	JPEGQuality int
}

// Save encodes img to path, choosing the format from the file extension.
//
// JPEG cannot store alpha, and TIFF output is kept opaque for consistency with
// it, so both are flattened to RGB first by dropping the alpha plane.
func Save(img *image.NRGBA, path string, opts SaveOptions) error {
	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	quality := opts.JPEGQuality
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}

	var out image.Image = img
	if !keepsAlpha(format) {
		out = FlattenRGB(img)
	}

	if err := imaging.Save(out, path, imaging.JPEGQuality(quality)); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}

// SupportedSaveExtension reports whether Save can encode a file with this name.
func SupportedSaveExtension(path string) bool {
	_, err := imaging.FormatFromFilename(path)
	return err == nil
}

func keepsAlpha(f imaging.Format) bool {
	return f != imaging.JPEG && f != imaging.TIFF
}

// FlattenRGB returns a copy of img with every alpha sample set to 255 and the
// colour samples left untouched.
func FlattenRGB(img *image.NRGBA) *image.NRGBA {
	out := imaging.Clone(img)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}

// FormatLabel returns a short uppercase label such as "PNG" for status lines.
func (i *ImageInfo) FormatLabel() string {
	if i == nil || i.Format == "" {
		return "?"
	}
	return strings.ToUpper(i.Format)
}
