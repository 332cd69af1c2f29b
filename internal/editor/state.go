package editor

import (
	"fmt"
	"image"

	"github.com/ironsheep/image-editor-mcp/internal/imaging"
)

// Signal tells a controller which of its sliders and toggles an edit has
// implicitly reset. The zero Signal asks for nothing.
type Signal struct {
	// NeutralEnhancements lists the enhancement families whose sliders should
	// return to their neutral factor.
	NeutralEnhancements []Family

	// FiltersOff asks the controller to clear every filter toggle.
	FiltersOff bool
}

// IsZero reports whether s asks for no controller changes.
func (s Signal) IsZero() bool {
	return len(s.NeutralEnhancements) == 0 && !s.FiltersOff
}

// State is the edit state cache of one loaded image.
//
// original is captured on Load and never modified. display is the image the
// user sees. cacheColors holds the planes of the last state before a global
// enhancement was applied, so moving one enhancement slider back and forth
// always starts from the same baseline. dirty records which families have
// touched display without being folded into cacheColors.
//
// Every image the State hands out or stores is its own buffer; no operation
// writes into a buffer that another field references. A State is not safe for
// concurrent use.
type State struct {
	original    *image.NRGBA
	display     *image.NRGBA
	cacheColors []*image.Gray
	dirty       familySet

	beforeFilter *image.NRGBA
	activeFilter imaging.Filter

	// matted and originalAlpha describe the matting of display. While a
	// filter is active, filterMatted and filterAlpha describe the matting of
	// beforeFilter, whose white pixels can differ from the filtered ones.
	transparent   bool
	originalAlpha *image.Gray
	matted        []int
	filterAlpha   *image.Gray
	filterMatted  []int
}

// NewState returns a State with no image loaded.
func NewState() *State {
	return &State{}
}

// Load captures a copy of img as the original and display image, discarding
// any previous edits.
func (s *State) Load(img *image.NRGBA) {
	original := imaging.Normalize(img)
	*s = State{
		original:    original,
		display:     imaging.Normalize(original),
		cacheColors: imaging.Split(original),
	}
	Logger().Debug("state loaded",
		"width", original.Rect.Dx(),
		"height", original.Rect.Dy())
}

// Loaded reports whether an image is loaded.
func (s *State) Loaded() bool {
	return s.original != nil
}

// Display returns the current rendered image, or nil when nothing is loaded.
// The returned image must not be modified.
func (s *State) Display() *image.NRGBA {
	return s.display
}

// Original returns the image captured on Load. It must not be modified.
func (s *State) Original() *image.NRGBA {
	return s.original
}

// Dirty returns the families applied to display but not baked into the
// enhancement baseline, in declaration order.
func (s *State) Dirty() []Family {
	return s.dirty.families()
}

// ActiveFilter returns the filter currently applied, or FilterNone.
func (s *State) ActiveFilter() imaging.Filter {
	return s.activeFilter
}

// Transparent reports whether white matting is on.
func (s *State) Transparent() bool {
	return s.transparent
}

// MattedPixels returns how many pixels the current matting made transparent.
func (s *State) MattedPixels() int {
	return len(s.matted)
}

// ApplyChannelOffset adds delta to every sample of channel c, clamping to
// [0, 255].
//
// The baseline is chosen per channel: when the other two colour planes of
// display still equal the original's, all three planes start from the
// original; otherwise they keep their displayed values and only c restarts
// from the original. Alpha is taken from display. The result becomes the new
// enhancement baseline and the dirty set is cleared.
func (s *State) ApplyChannelOffset(c imaging.Channel, delta int) (Signal, error) {
	if !s.Loaded() {
		return Signal{}, nil
	}
	if !c.IsColor() {
		return Signal{}, fmt.Errorf("%w: %v cannot be offset", imaging.ErrUnknownChannel, c)
	}

	s.dropFilter()

	orig := imaging.Split(s.original)
	disp := imaging.Split(s.display)

	base, mixed := orig, false
	for _, other := range imaging.ColorChannels {
		if other != c && !imaging.PlanesEqual(orig[other], disp[other]) {
			base, mixed = disp, true
			break
		}
	}

	planes := []*image.Gray{base[imaging.Red], base[imaging.Green], base[imaging.Blue], disp[imaging.Alpha]}
	planes[c] = imaging.OffsetPlane(orig[c], delta)

	out, err := imaging.Merge(planes)
	if err != nil {
		return Signal{}, fmt.Errorf("failed to merge channels: %w", err)
	}

	s.display = out
	s.cacheColors = imaging.Split(out)
	s.dirty = 0

	Logger().Debug("channel offset applied",
		"channel", c.String(),
		"delta", delta,
		"mixed_baseline", mixed)

	return Signal{NeutralEnhancements: append([]Family(nil), Enhancements...), FiltersOff: true}, nil
}

// ApplyEnhancement applies the enhancement family f with the given factor to
// the cached baseline. A factor of 1.0 reproduces the baseline.
//
// When a different enhancement family has touched display, the baseline is
// first re-taken from display and the other families are forgotten, so the
// new curve stacks on top of the old one instead of replacing it.
func (s *State) ApplyEnhancement(f Family, factor float64) (Signal, error) {
	if !s.Loaded() {
		return Signal{}, nil
	}
	e, err := f.enhancement()
	if err != nil {
		return Signal{}, err
	}
	if err := imaging.ValidateFactor(factor); err != nil {
		return Signal{}, err
	}

	var sig Signal
	sig.FiltersOff = s.dropFilter()

	if s.dirty.enhancementsExcept(f) {
		s.rebaseline()
		for _, sibling := range Enhancements {
			if sibling != f {
				sig.NeutralEnhancements = append(sig.NeutralEnhancements, sibling)
			}
		}
	}

	base, err := imaging.Merge(s.cacheColors)
	if err != nil {
		return Signal{}, fmt.Errorf("failed to merge cached channels: %w", err)
	}
	out, err := imaging.Enhance(base, e, factor)
	if err != nil {
		return Signal{}, err
	}

	s.display = out
	s.dirty = s.dirty.with(f)

	Logger().Debug("enhancement applied",
		"family", f.String(),
		"factor", factor,
		"dirty", s.dirty.String())

	return sig, nil
}

// SetFilter turns filter f on or off. Only one filter is active at a time:
// enabling a filter while another is on first restores the unfiltered image.
// Disabling restores exactly the image captured before the filter was
// enabled. Disabling a filter that is not active does nothing.
func (s *State) SetFilter(f imaging.Filter, enabled bool) error {
	if !s.Loaded() {
		return nil
	}
	if !f.Valid() {
		return fmt.Errorf("%w: %v", imaging.ErrUnknownFilter, f)
	}

	if !enabled {
		if s.activeFilter == f {
			s.dropFilter()
			Logger().Debug("filter removed", "filter", f.String())
		}
		return nil
	}

	s.dropFilter()

	out, err := imaging.ApplyFilter(s.display, f)
	if err != nil {
		return fmt.Errorf("failed to apply filter %s: %w", f, err)
	}

	s.beforeFilter = s.display
	s.display = out
	s.activeFilter = f
	if s.transparent {
		// The filter keeps alpha, so both images share the existing matte.
		s.filterMatted, s.filterAlpha = s.matted, s.originalAlpha
	}
	s.dirty = s.dirty.with(FilterFamily)

	Logger().Debug("filter applied", "filter", f.String())
	return nil
}

// SetTransparency turns white matting on or off.
//
// Enabling gives every pure white pixel of display alpha 0 and records those
// positions along with the alpha plane they had. An active filter's
// unfiltered snapshot is matted by its own white pixels. Disabling puts that alpha
// back at exactly the recorded positions. Only alpha changes, so the
// enhancement baseline keeps its colour planes. Setting the current value
// again does nothing.
func (s *State) SetTransparency(enabled bool) error {
	if !s.Loaded() || enabled == s.transparent {
		return nil
	}

	if enabled {
		alpha := imaging.AlphaPlane(s.display)
		out, positions := imaging.MatteWhite(s.display)
		s.display = out
		if s.beforeFilter != nil {
			s.filterAlpha = imaging.AlphaPlane(s.beforeFilter)
			s.beforeFilter, s.filterMatted = imaging.MatteWhite(s.beforeFilter)
		}
		s.originalAlpha = alpha
		s.matted = positions
		s.transparent = true
		s.dirty = s.dirty.with(Transparency)
	} else {
		s.display = imaging.RestoreAlpha(s.display, s.matted, s.originalAlpha)
		if s.beforeFilter != nil {
			s.beforeFilter = imaging.RestoreAlpha(s.beforeFilter, s.filterMatted, s.filterAlpha)
		}
		s.originalAlpha = nil
		s.matted = nil
		s.filterAlpha = nil
		s.filterMatted = nil
		s.transparent = false
		s.dirty = s.dirty.without(Transparency)
	}

	// The baseline is unfiltered, so its alpha follows the unfiltered image.
	base := s.display
	if s.beforeFilter != nil {
		base = s.beforeFilter
	}
	s.cacheColors[imaging.Alpha] = imaging.AlphaPlane(base)

	Logger().Debug("transparency changed",
		"enabled", enabled,
		"pixels", len(s.matted))
	return nil
}

// ResetToOriginal discards every edit and shows a fresh copy of the original.
func (s *State) ResetToOriginal() {
	if !s.Loaded() {
		return
	}
	s.Load(s.original)
}

// Clear releases all image state.
func (s *State) Clear() {
	*s = State{}
}

// rebaseline takes the enhancement baseline from display and forgets every
// enhancement family.
func (s *State) rebaseline() {
	s.cacheColors = imaging.Split(s.display)
	s.dirty = s.dirty.only(ChannelOffset, FilterFamily, Transparency)
	Logger().Debug("enhancement baseline re-taken from display")
}

// dropFilter restores the unfiltered image if a filter is active and reports
// whether it did.
func (s *State) dropFilter() bool {
	if s.activeFilter == imaging.FilterNone {
		return false
	}
	s.display = s.beforeFilter
	s.beforeFilter = nil
	s.activeFilter = imaging.FilterNone
	if s.transparent {
		s.matted, s.originalAlpha = s.filterMatted, s.filterAlpha
	}
	s.filterMatted, s.filterAlpha = nil, nil
	s.dirty = s.dirty.without(FilterFamily)
	return true
}
