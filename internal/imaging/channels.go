package imaging

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/anthonynsimon/bild/parallel"
)

// Channel identifies one component plane of an NRGBA image.
type Channel int

// Channel identifiers, in NRGBA byte order.
const (
	Red Channel = iota
	Green
	Blue
	Alpha
)

// ColorChannels lists the three colour planes in order.
var ColorChannels = []Channel{Red, Green, Blue}

var (
	// ErrInvalidChannelCount is returned by Merge when given anything other
	// than three (RGB) or four (RGBA) planes.
	ErrInvalidChannelCount = errors.New("invalid channel count")

	// ErrPlaneBoundsMismatch is returned by Merge when planes differ in size.
	ErrPlaneBoundsMismatch = errors.New("channel planes have different bounds")

	// ErrUnknownChannel is returned when a channel name cannot be parsed.
	ErrUnknownChannel = errors.New("unknown channel")
)

// String returns the lowercase channel name.
func (c Channel) String() string {
	switch c {
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	case Alpha:
		return "alpha"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

// IsColor reports whether c is one of the red, green or blue planes.
func (c Channel) IsColor() bool {
	return c >= Red && c <= Blue
}

// ParseChannel accepts a full channel name or its first letter, case-insensitive.
func ParseChannel(s string) (Channel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "red", "r":
		return Red, nil
	case "green", "g":
		return Green, nil
	case "blue", "b":
		return Blue, nil
	case "alpha", "a":
		return Alpha, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownChannel, s)
}

// Split decomposes img into four independent planes: red, green, blue, alpha.
//
// The returned planes share no memory with img or with each other.
func Split(img *image.NRGBA) []*image.Gray {
	rect := image.Rect(0, 0, img.Rect.Dx(), img.Rect.Dy())
	planes := []*image.Gray{
		image.NewGray(rect),
		image.NewGray(rect),
		image.NewGray(rect),
		image.NewGray(rect),
	}
	w, h := rect.Dx(), rect.Dy()

	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			i := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
			src := img.Pix[i : i+w*4]
			for c, p := range planes {
				dst := p.Pix[y*p.Stride : y*p.Stride+w]
				for x := range dst {
					dst[x] = src[x*4+c]
				}
			}
		}
	})
	return planes
}

// Merge recomposes planes into a new NRGBA image.
//
// Three planes are read as red, green and blue and produce an opaque image.
// Four planes add an alpha plane. Any other count fails with
// ErrInvalidChannelCount.
func Merge(planes []*image.Gray) (*image.NRGBA, error) {
	if len(planes) != 3 && len(planes) != 4 {
		return nil, fmt.Errorf("%w: got %d, want 3 or 4", ErrInvalidChannelCount, len(planes))
	}
	size := planes[0].Rect.Size()
	for _, p := range planes[1:] {
		if p.Rect.Size() != size {
			return nil, ErrPlaneBoundsMismatch
		}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, size.X, size.Y))
	w, h := size.X, size.Y

	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			row := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
			for c, p := range planes {
				src := planeRow(p, y, w)
				for x, v := range src {
					row[x*4+c] = v
				}
			}
			if len(planes) == 3 {
				for x := 0; x < w; x++ {
					row[x*4+3] = 0xff
				}
			}
		}
	})
	return dst, nil
}

// PlanesEqual reports whether two planes have the same size and identical samples.
func PlanesEqual(a, b *image.Gray) bool {
	if a.Rect.Size() != b.Rect.Size() {
		return false
	}
	w, h := a.Rect.Dx(), a.Rect.Dy()
	for y := 0; y < h; y++ {
		if string(planeRow(a, y, w)) != string(planeRow(b, y, w)) {
			return false
		}
	}
	return true
}

// OffsetPlane returns a copy of p with delta added to every sample,
// clamped to [0, 255].
func OffsetPlane(p *image.Gray, delta int) *image.Gray {
	var lut [256]uint8
	for i := range lut {
		lut[i] = clampByte(i + delta)
	}

	dst := image.NewGray(image.Rect(0, 0, p.Rect.Dx(), p.Rect.Dy()))
	w, h := p.Rect.Dx(), p.Rect.Dy()

	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			out := dst.Pix[y*dst.Stride : y*dst.Stride+w]
			for x, v := range planeRow(p, y, w) {
				out[x] = lut[v]
			}
		}
	})
	return dst
}

// planeRow returns the w samples of row y, relative to the plane's origin.
func planeRow(p *image.Gray, y, w int) []uint8 {
	i := p.PixOffset(p.Rect.Min.X, p.Rect.Min.Y+y)
	return p.Pix[i : i+w]
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
