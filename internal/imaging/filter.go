package imaging

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/anthonynsimon/bild/channel"
	"github.com/disintegration/imaging"
)

// Filter names one of the fixed convolution filters offered by the editor.
type Filter int

// The zero Filter means "no filter".
const (
	FilterNone Filter = iota
	FilterBlur
	FilterContour
	FilterDetail
	FilterEdgeEnhance
	FilterEdgeEnhanceMore
	FilterEmboss
	FilterFindEdges
	FilterSharpen
	FilterSmooth
	FilterSmoothMore
)

// ErrUnknownFilter is returned for filter names outside the fixed set.
var ErrUnknownFilter = errors.New("unknown filter")

// Filters lists every selectable filter in display order.
var Filters = []Filter{
	FilterBlur,
	FilterContour,
	FilterDetail,
	FilterEdgeEnhance,
	FilterEdgeEnhanceMore,
	FilterEmboss,
	FilterFindEdges,
	FilterSharpen,
	FilterSmooth,
	FilterSmoothMore,
}

// kernel is a square convolution matrix applied as sum(k*p)/divisor + offset.
type kernel struct {
	name    string
	label   string
	weights []float64
	divisor float64
	offset  int
}

var kernels = map[Filter]kernel{
	FilterBlur: {"blur", "Blur", []float64{
		1, 1, 1, 1, 1,
		1, 0, 0, 0, 1,
		1, 0, 0, 0, 1,
		1, 0, 0, 0, 1,
		1, 1, 1, 1, 1,
	}, 16, 0},
	FilterContour: {"contour", "Contour", []float64{
		-1, -1, -1,
		-1, 8, -1,
		-1, -1, -1,
	}, 1, 255},
	FilterDetail: {"detail", "Detail", []float64{
		0, -1, 0,
		-1, 10, -1,
		0, -1, 0,
	}, 6, 0},
	FilterEdgeEnhance: {"edge_enhance", "Edge enhance", []float64{
		-1, -1, -1,
		-1, 10, -1,
		-1, -1, -1,
	}, 2, 0},
	FilterEdgeEnhanceMore: {"edge_enhance_more", "More edge enhance", []float64{
		-1, -1, -1,
		-1, 9, -1,
		-1, -1, -1,
	}, 1, 0},
	FilterEmboss: {"emboss", "Emboss", []float64{
		-1, 0, 0,
		0, 1, 0,
		0, 0, 0,
	}, 1, 128},
	FilterFindEdges: {"find_edges", "Find edges", []float64{
		-1, -1, -1,
		-1, 8, -1,
		-1, -1, -1,
	}, 1, 0},
	FilterSharpen: {"sharpen", "Sharpen", []float64{
		-2, -2, -2,
		-2, 32, -2,
		-2, -2, -2,
	}, 16, 0},
	FilterSmooth: {"smooth", "Smooth", []float64{
		1, 1, 1,
		1, 5, 1,
		1, 1, 1,
	}, 13, 0},
	FilterSmoothMore: {"smooth_more", "More smooth", []float64{
		1, 1, 1, 1, 1,
		1, 5, 5, 5, 1,
		1, 5, 44, 5, 1,
		1, 5, 5, 5, 1,
		1, 1, 1, 1, 1,
	}, 100, 0},
}

// String returns the snake_case filter name used by tools and logs.
func (f Filter) String() string {
	if k, ok := kernels[f]; ok {
		return k.name
	}
	if f == FilterNone {
		return "none"
	}
	return fmt.Sprintf("filter(%d)", int(f))
}

// Label returns the human readable filter name.
func (f Filter) Label() string {
	if k, ok := kernels[f]; ok {
		return k.label
	}
	return "None"
}

// Valid reports whether f is one of the selectable filters.
func (f Filter) Valid() bool {
	_, ok := kernels[f]
	return ok
}

// ParseFilter resolves a filter name. Matching ignores case, spaces,
// hyphens and underscores, so "EdgeEnhance", "edge-enhance" and
// "EDGE_ENHANCE" are equivalent.
func ParseFilter(s string) (Filter, error) {
	want := normalizeName(s)
	for _, f := range Filters {
		if normalizeName(kernels[f].name) == want {
			return f, nil
		}
	}
	return FilterNone, fmt.Errorf("%w: %q", ErrUnknownFilter, s)
}

func normalizeName(s string) string {
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(s))
}

// ApplyFilter convolves the colour planes of img with the named filter and
// returns a new image. The alpha plane is extracted before filtering and
// reattached unchanged afterwards.
func ApplyFilter(img *image.NRGBA, f Filter) (*image.NRGBA, error) {
	k, ok := kernels[f]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownFilter, f)
	}

	alpha := AlphaPlane(img)
	filtered := convolve(img, k)

	planes := Split(filtered)
	planes[Alpha] = alpha
	out, err := Merge(planes)
	if err != nil {
		return nil, fmt.Errorf("failed to reattach alpha: %w", err)
	}
	return out, nil
}

// AlphaPlane returns a copy of the alpha plane of img.
func AlphaPlane(img *image.NRGBA) *image.Gray {
	return channel.Extract(img, channel.Alpha)
}

func convolve(img image.Image, k kernel) *image.NRGBA {
	opts := &imaging.ConvolveOptions{Bias: k.offset}
	switch len(k.weights) {
	case 9:
		var m [9]float64
		for i, w := range k.weights {
			m[i] = w / k.divisor
		}
		return imaging.Convolve3x3(img, m, opts)
	default:
		var m [25]float64
		for i, w := range k.weights {
			m[i] = w / k.divisor
		}
		return imaging.Convolve5x5(img, m, opts)
	}
}
