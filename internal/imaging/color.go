package imaging

import (
	"fmt"
	"image"
	"strings"

	"github.com/anthonynsimon/bild/histogram"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGBAColor represents an RGBA color with 8-bit, non-premultiplied components.
//
// The alpha component represents opacity:
//   - 0 = fully transparent
//   - 255 = fully opaque
type RGBAColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
	A uint8 `json:"a"` // Alpha/opacity component (0-255)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ColorResult contains a sampled pixel in several representations.
type ColorResult struct {
	X    int       `json:"x"`
	Y    int       `json:"y"`
	Hex  string    `json:"hex"`  // Hex format "#RRGGBB" (no alpha)
	RGBA RGBAColor `json:"rgba"` // RGBA components with alpha
	HSL  HSLColor  `json:"hsl"`  // HSL representation
}

// SampleColor reads the pixel at (x, y) of img.
//
// Colour components are reported without premultiplication, so a fully
// transparent pixel still reports the RGB it carries.
func SampleColor(img *image.NRGBA, x, y int) (*ColorResult, error) {
	b := img.Bounds()
	if x < 0 || y < 0 || x >= b.Dx() || y >= b.Dy() {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}

	p := img.NRGBAAt(b.Min.X+x, b.Min.Y+y)
	c := colorful.Color{R: float64(p.R) / 255, G: float64(p.G) / 255, B: float64(p.B) / 255}
	h, s, l := c.Hsl()

	return &ColorResult{
		X:    x,
		Y:    y,
		Hex:  strings.ToUpper(c.Hex()),
		RGBA: RGBAColor{R: p.R, G: p.G, B: p.B, A: p.A},
		HSL:  HSLColor{H: int(h), S: int(s * 100), L: int(l * 100)},
	}, nil
}

// PlaneStats summarizes the sample distribution of one channel plane.
type PlaneStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
}

// ChannelStatsResult holds per-channel statistics of an image.
type ChannelStatsResult struct {
	Red   PlaneStats `json:"red"`
	Green PlaneStats `json:"green"`
	Blue  PlaneStats `json:"blue"`
	Alpha PlaneStats `json:"alpha"`
}

// ChannelStats computes min, max and mean for each channel of img, on the
// raw non-premultiplied samples.
func ChannelStats(img *image.NRGBA) *ChannelStatsResult {
	planes := Split(img)
	return &ChannelStatsResult{
		Red:   planeStats(planes[Red]),
		Green: planeStats(planes[Green]),
		Blue:  planeStats(planes[Blue]),
		Alpha: planeStats(planes[Alpha]),
	}
}

func planeStats(p *image.Gray) PlaneStats {
	// A gray plane converts to RGBA with R=G=B=sample, so the red histogram
	// is the plane's histogram.
	bins := histogram.NewRGBAHistogram(p).R.Bins

	stats := PlaneStats{Min: -1}
	var total, sum int
	for v, n := range bins {
		if n == 0 {
			continue
		}
		if stats.Min < 0 {
			stats.Min = v
		}
		stats.Max = v
		total += n
		sum += v * n
	}
	if total == 0 {
		return PlaneStats{}
	}
	stats.Mean = float64(sum) / float64(total)
	return stats
}
