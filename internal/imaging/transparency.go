package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// MatteWhite returns a copy of img in which every pure white pixel
// (255, 255, 255) has alpha 0, together with the matted pixel positions as
// row-major indices (y*width + x). img is not modified.
func MatteWhite(img *image.NRGBA) (*image.NRGBA, []int) {
	out := imaging.Clone(img)
	w := out.Rect.Dx()

	var positions []int
	for y := 0; y < out.Rect.Dy(); y++ {
		row := out.Pix[y*out.Stride : y*out.Stride+w*4]
		for x := 0; x < w; x++ {
			p := row[x*4 : x*4+4 : x*4+4]
			if p[0] == 0xff && p[1] == 0xff && p[2] == 0xff {
				p[3] = 0
				positions = append(positions, y*w+x)
			}
		}
	}
	return out, positions
}

// RestoreAlpha returns a copy of img whose alpha at each position is taken
// from the matching sample of alpha. Positions outside either image are skipped.
func RestoreAlpha(img *image.NRGBA, positions []int, alpha *image.Gray) *image.NRGBA {
	out := imaging.Clone(img)
	w := out.Rect.Dx()
	if alpha.Rect.Size() != out.Rect.Size() {
		return out
	}
	for _, i := range positions {
		off, ok := alphaOffset(out, i, w)
		if !ok {
			continue
		}
		out.Pix[off] = alpha.Pix[alpha.PixOffset(alpha.Rect.Min.X+i%w, alpha.Rect.Min.Y+i/w)]
	}
	return out
}

func alphaOffset(img *image.NRGBA, i, w int) (int, bool) {
	if w == 0 || i < 0 || i >= w*img.Rect.Dy() {
		return 0, false
	}
	return (i/w)*img.Stride + (i%w)*4 + 3, true
}
