package editor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ironsheep/image-editor-mcp/internal/imaging"
)

// Family tags one kind of edit.
type Family int

// Edit families.
const (
	ChannelOffset Family = iota
	ColorBalance
	Contrast
	Brightness
	Sharpness
	FilterFamily
	Transparency

	familyCount
)

// ErrUnknownFamily is returned when a family name or value is not recognized.
var ErrUnknownFamily = errors.New("unknown edit family")

var familyNames = [familyCount]string{
	ChannelOffset: "channel-offset",
	ColorBalance:  "color-balance",
	Contrast:      "contrast",
	Brightness:    "brightness",
	Sharpness:     "sharpness",
	FilterFamily:  "filter",
	Transparency:  "transparency",
}

// Enhancements lists the global enhancement families in display order.
var Enhancements = []Family{ColorBalance, Contrast, Brightness, Sharpness}

func (f Family) String() string {
	if f < 0 || f >= familyCount {
		return fmt.Sprintf("family(%d)", int(f))
	}
	return familyNames[f]
}

// IsEnhancement reports whether f is one of the global enhancement families.
func (f Family) IsEnhancement() bool {
	return f >= ColorBalance && f <= Sharpness
}

// enhancement maps an enhancement family onto its pixel curve.
func (f Family) enhancement() (imaging.Enhancement, error) {
	switch f {
	case ColorBalance:
		return imaging.ColorBalance, nil
	case Contrast:
		return imaging.Contrast, nil
	case Brightness:
		return imaging.Brightness, nil
	case Sharpness:
		return imaging.Sharpness, nil
	}
	return 0, fmt.Errorf("%w: %v is not an enhancement", ErrUnknownFamily, f)
}

// ParseFamily resolves a family name. "color", "color_balance" and
// "colour-balance" are accepted for color balance.
func ParseFamily(s string) (Family, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "_", "-")
	key = strings.ReplaceAll(key, " ", "-")
	switch key {
	case "color", "colour", "colour-balance", "balance":
		return ColorBalance, nil
	case "offset", "rgb":
		return ChannelOffset, nil
	}
	for f, name := range familyNames {
		if key == name {
			return Family(f), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFamily, s)
}

// familySet is a bit set over Family.
type familySet uint8

func (s familySet) has(f Family) bool { return s&(1<<f) != 0 }

func (s familySet) with(f Family) familySet { return s | 1<<f }

func (s familySet) without(f Family) familySet { return s &^ (1 << f) }

// only returns the subset of s that is in keep.
func (s familySet) only(keep ...Family) familySet {
	var out familySet
	for _, f := range keep {
		if s.has(f) {
			out = out.with(f)
		}
	}
	return out
}

// enhancementsExcept reports whether an enhancement family other than f is set.
func (s familySet) enhancementsExcept(f Family) bool {
	for _, e := range Enhancements {
		if e != f && s.has(e) {
			return true
		}
	}
	return false
}

// families lists the members of s in declaration order.
func (s familySet) families() []Family {
	var out []Family
	for f := Family(0); f < familyCount; f++ {
		if s.has(f) {
			out = append(out, f)
		}
	}
	return out
}

func (s familySet) String() string {
	fams := s.families()
	names := make([]string, len(fams))
	for i, f := range fams {
		names[i] = f.String()
	}
	return "{" + strings.Join(names, ",") + "}"
}
