package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/disintegration/imaging"
)

// Enhancement selects one of the global enhancement curves.
type Enhancement int

// Enhancement identifiers.
const (
	ColorBalance Enhancement = iota
	Contrast
	Brightness
	Sharpness
)

// ErrInvalidFactor is returned for negative, NaN or infinite factors.
var ErrInvalidFactor = errors.New("invalid enhancement factor")

// EnhanceFunc adjusts img by factor and returns a new image. A factor of 1.0
// returns an image identical to img; 0.0 returns the degenerate image
// (grayscale, flat gray, black or smoothed); values above 1.0 extrapolate.
type EnhanceFunc func(img *image.NRGBA, factor float64) *image.NRGBA

var enhancers = map[Enhancement]EnhanceFunc{
	ColorBalance: EnhanceColor,
	Contrast:     EnhanceContrast,
	Brightness:   EnhanceBrightness,
	Sharpness:    EnhanceSharpness,
}

func (e Enhancement) String() string {
	switch e {
	case ColorBalance:
		return "color-balance"
	case Contrast:
		return "contrast"
	case Brightness:
		return "brightness"
	case Sharpness:
		return "sharpness"
	default:
		return fmt.Sprintf("enhancement(%d)", int(e))
	}
}

// Enhance applies the enhancement e to img.
func Enhance(img *image.NRGBA, e Enhancement, factor float64) (*image.NRGBA, error) {
	fn, ok := enhancers[e]
	if !ok {
		return nil, fmt.Errorf("unknown enhancement: %v", e)
	}
	if err := ValidateFactor(factor); err != nil {
		return nil, err
	}
	return fn(img, factor), nil
}

// ValidateFactor rejects factors Enhance would refuse.
func ValidateFactor(factor float64) error {
	if factor < 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidFactor, factor)
	}
	return nil
}

// EnhanceColor blends img with its grayscale version.
func EnhanceColor(img *image.NRGBA, factor float64) *image.NRGBA {
	return blend(imaging.Grayscale(img), img, factor)
}

// EnhanceContrast blends img with a flat gray image at its mean luminance.
func EnhanceContrast(img *image.NRGBA, factor float64) *image.NRGBA {
	lum := Split(imaging.Grayscale(img))[Red]
	mean := uint8(math.Floor(planeStats(lum).Mean + 0.5))
	size := img.Rect.Size()
	gray := imaging.New(size.X, size.Y, color.NRGBA{R: mean, G: mean, B: mean, A: 0xff})
	return blend(gray, img, factor)
}

// EnhanceBrightness blends img with black, which scales every colour sample.
func EnhanceBrightness(img *image.NRGBA, factor float64) *image.NRGBA {
	size := img.Rect.Size()
	black := imaging.New(size.X, size.Y, color.NRGBA{A: 0xff})
	return blend(black, img, factor)
}

// EnhanceSharpness blends img with its smoothed version.
func EnhanceSharpness(img *image.NRGBA, factor float64) *image.NRGBA {
	return blend(convolve(img, kernels[FilterSmooth]), img, factor)
}

// blend computes degenerate + factor*(img - degenerate) per colour sample,
// truncating toward zero and clamping to [0, 255]. Alpha is copied from img.
func blend(degenerate, img *image.NRGBA, factor float64) *image.NRGBA {
	size := img.Rect.Size()
	dst := image.NewNRGBA(image.Rect(0, 0, size.X, size.Y))
	w := size.X

	parallel.Line(size.Y, func(start, end int) {
		for y := start; y < end; y++ {
			i := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
			j := degenerate.PixOffset(degenerate.Rect.Min.X, degenerate.Rect.Min.Y+y)
			src := img.Pix[i : i+w*4]
			deg := degenerate.Pix[j : j+w*4]
			out := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
			for x := 0; x < w*4; x += 4 {
				for c := 0; c < 3; c++ {
					d := float64(deg[x+c])
					v := d + factor*(float64(src[x+c])-d)
					out[x+c] = truncByte(v)
				}
				out[x+3] = src[x+3]
			}
		}
	})
	return dst
}

func truncByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
