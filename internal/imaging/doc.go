// Package imaging provides the pixel operations behind the editor.
//
// Images are handled as *image.NRGBA with their origin at (0,0): colour
// samples are never premultiplied, so a fully transparent pixel keeps the
// RGB it had and white matting can be undone exactly. Every function returns
// a new image and leaves its inputs untouched.
//
// # Channels
//
// Split decomposes an image into red, green, blue and alpha planes
// (*image.Gray). Merge recomposes three planes into an opaque image or four
// planes into an image with the given alpha. OffsetPlane adds a signed delta
// to a plane, clamping to [0, 255].
//
// # Enhancements
//
// The four enhancement curves interpolate between the image and a degenerate
// version of it:
//
//	out = degenerate + factor*(img - degenerate)
//
// where the degenerate image is the grayscale image (color balance), a flat
// gray at the mean luminance (contrast), black (brightness) or the smoothed
// image (sharpness). A factor of 1.0 reproduces the input, 0.0 yields the
// degenerate image and larger factors extrapolate. Alpha is copied through.
//
// # Filters
//
// ApplyFilter convolves the colour planes with one of a fixed set of 3x3 and
// 5x5 kernels. The alpha plane is extracted first and reattached afterwards.
//
// # Files
//
// Load decodes PNG, JPEG, TIFF, GIF, BMP, WebP and QOI and normalizes the
// result.
// Save picks the encoder from the file extension; JPEG and TIFF output is
// flattened to opaque RGB.
//
// # Inspection
//
// SampleColor reports one pixel as RGBA, hex and HSL. ChannelStats gives the
// range and mean of each plane. Preview renders an image or a region of it
// as a scaled PNG for clients that cannot read files.
//
// # Coordinates
//
// Pixel coordinates are 0-based with (0,0) at the top-left. Regions are
// half-open: Min is inclusive and Max is exclusive.
package imaging
