package editor

import (
	"fmt"

	"github.com/ironsheep/image-editor-mcp/internal/imaging"
)

// Slider ranges.
const (
	OffsetMin = -255
	OffsetMax = 255

	FactorMin     = 0.0
	FactorMax     = 3.0
	FactorNeutral = 1.0
)

// Controls mirrors the sliders and toggles a front end presents.
type Controls struct {
	// Offsets holds the red, green and blue slider positions.
	Offsets [3]int

	// Factors holds the enhancement slider positions keyed by family.
	Factors map[Family]float64

	// Filter is the checked filter toggle, FilterNone when all are clear.
	Filter imaging.Filter

	// Transparent is the transparency toggle.
	Transparent bool
}

// NewControls returns every control at its neutral position.
func NewControls() *Controls {
	c := &Controls{}
	c.Reset()
	return c
}

// Reset returns every slider and toggle to neutral.
func (c *Controls) Reset() {
	c.Offsets = [3]int{}
	c.Factors = make(map[Family]float64, len(Enhancements))
	for _, f := range Enhancements {
		c.Factors[f] = FactorNeutral
	}
	c.Filter = imaging.FilterNone
	c.Transparent = false
}

// Offset returns the slider position for colour channel ch.
func (c *Controls) Offset(ch imaging.Channel) int {
	if !ch.IsColor() {
		return 0
	}
	return c.Offsets[ch]
}

// Factor returns the slider position of enhancement family f.
func (c *Controls) Factor(f Family) float64 {
	if v, ok := c.Factors[f]; ok {
		return v
	}
	return FactorNeutral
}

// Apply updates the controls to reflect a Signal from the State.
func (c *Controls) Apply(sig Signal) {
	for _, f := range sig.NeutralEnhancements {
		c.Factors[f] = FactorNeutral
	}
	if sig.FiltersOff {
		c.Filter = imaging.FilterNone
	}
}

// ClampOffset limits v to the offset slider range.
func ClampOffset(v int) int {
	return max(OffsetMin, min(OffsetMax, v))
}

// ClampFactor limits v to the enhancement slider range.
func ClampFactor(v float64) float64 {
	return max(FactorMin, min(FactorMax, v))
}

// ControlsView is a JSON-friendly snapshot of Controls.
type ControlsView struct {
	Red          int     `json:"red"`
	Green        int     `json:"green"`
	Blue         int     `json:"blue"`
	ColorBalance float64 `json:"color_balance"`
	Contrast     float64 `json:"contrast"`
	Brightness   float64 `json:"brightness"`
	Sharpness    float64 `json:"sharpness"`
	Filter       string  `json:"filter"`
	Transparent  bool    `json:"transparent"`
}

// View returns a snapshot of the controls.
func (c *Controls) View() ControlsView {
	filter := "none"
	if c.Filter != imaging.FilterNone {
		filter = c.Filter.String()
	}
	return ControlsView{
		Red:          c.Offsets[imaging.Red],
		Green:        c.Offsets[imaging.Green],
		Blue:         c.Offsets[imaging.Blue],
		ColorBalance: c.Factor(ColorBalance),
		Contrast:     c.Factor(Contrast),
		Brightness:   c.Factor(Brightness),
		Sharpness:    c.Factor(Sharpness),
		Filter:       filter,
		Transparent:  c.Transparent,
	}
}

func (v ControlsView) String() string {
	return fmt.Sprintf("R%+d G%+d B%+d color=%.2f contrast=%.2f brightness=%.2f sharpness=%.2f filter=%s transparent=%t",
		v.Red, v.Green, v.Blue, v.ColorBalance, v.Contrast, v.Brightness, v.Sharpness, v.Filter, v.Transparent)
}
