package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// PreviewResult contains a rendered image encoded as base64 PNG.
type PreviewResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Fit scales img down to fit within maxWidth x maxHeight keeping its aspect
// ratio. Images already inside the box come back as a full-size copy.
// A non-positive limit leaves that dimension unbounded.
func Fit(img image.Image, maxWidth, maxHeight int) *image.NRGBA {
	b := img.Bounds()
	if maxWidth <= 0 {
		maxWidth = b.Dx()
	}
	if maxHeight <= 0 {
		maxHeight = b.Dy()
	}
	return imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)
}

// Preview renders the part of img inside rect as a PNG no larger than
// maxWidth x maxHeight. An empty rect means the whole image.
func Preview(img *image.NRGBA, rect image.Rectangle, maxWidth, maxHeight int) (*PreviewResult, error) {
	bounds := img.Bounds()
	if rect.Empty() {
		rect = bounds
	}
	if !rect.In(bounds) {
		return nil, fmt.Errorf("preview region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			rect.Min.X, rect.Min.Y, rect.Max.X, rect.Max.Y,
			bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}

	var src image.Image = img
	if rect != bounds {
		src = imaging.Crop(img, rect)
	}
	scaled := Fit(src, maxWidth, maxHeight)

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}

	return &PreviewResult{
		Width:       scaled.Bounds().Dx(),
		Height:      scaled.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// NamedRegion resolves a region name against bounds. Recognized names are
// "full", "top-left", "top-right", "bottom-left", "bottom-right",
// "top-half", "bottom-half", "left-half", "right-half" and "center"
// (the middle half in each direction).
func NamedRegion(bounds image.Rectangle, name string) (image.Rectangle, error) {
	w, h := bounds.Dx(), bounds.Dy()
	midX, midY := w/2, h/2

	var r image.Rectangle
	switch name {
	case "", "full":
		r = image.Rect(0, 0, w, h)
	case "top-left":
		r = image.Rect(0, 0, midX, midY)
	case "top-right":
		r = image.Rect(midX, 0, w, midY)
	case "bottom-left":
		r = image.Rect(0, midY, midX, h)
	case "bottom-right":
		r = image.Rect(midX, midY, w, h)
	case "top-half":
		r = image.Rect(0, 0, w, midY)
	case "bottom-half":
		r = image.Rect(0, midY, w, h)
	case "left-half":
		r = image.Rect(0, 0, midX, h)
	case "right-half":
		r = image.Rect(midX, 0, w, h)
	case "center":
		r = image.Rect(w/4, h/4, w-w/4, h-h/4)
	default:
		return image.Rectangle{}, fmt.Errorf("unknown region: %s", name)
	}
	return r.Add(bounds.Min), nil
}
