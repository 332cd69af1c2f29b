package editor

import (
	"errors"
	"testing"
)

func TestParseFamily(t *testing.T) {
	tests := []struct {
		in   string
		want Family
	}{
		{"color-balance", ColorBalance},
		{"color_balance", ColorBalance},
		{"Color Balance", ColorBalance},
		{"color", ColorBalance},
		{"contrast", Contrast},
		{"BRIGHTNESS", Brightness},
		{"sharpness", Sharpness},
		{"filter", FilterFamily},
		{"transparency", Transparency},
		{"channel-offset", ChannelOffset},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFamily(tt.in)
			if err != nil {
				t.Fatalf("ParseFamily failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := ParseFamily("saturation"); !errors.Is(err, ErrUnknownFamily) {
		t.Errorf("ParseFamily(saturation): got %v, want ErrUnknownFamily", err)
	}
}

func TestFamily_IsEnhancement(t *testing.T) {
	for f := Family(0); f < familyCount; f++ {
		want := f == ColorBalance || f == Contrast || f == Brightness || f == Sharpness
		if got := f.IsEnhancement(); got != want {
			t.Errorf("%v.IsEnhancement(): got %t, want %t", f, got, want)
		}
		if _, err := f.enhancement(); (err == nil) != want {
			t.Errorf("%v.enhancement(): got err %v", f, err)
		}
	}
}

func TestFamilySet(t *testing.T) {
	var s familySet
	s = s.with(Contrast).with(FilterFamily).with(Contrast)

	if !s.has(Contrast) || !s.has(FilterFamily) || s.has(Brightness) {
		t.Errorf("membership wrong: %v", s)
	}
	if s.String() != "{contrast,filter}" {
		t.Errorf("String: got %s", s)
	}
	if !s.enhancementsExcept(Brightness) {
		t.Error("contrast should count as another enhancement")
	}
	if s.enhancementsExcept(Contrast) {
		t.Error("contrast alone should not count as another enhancement")
	}

	s = s.without(Contrast)
	if s.has(Contrast) || !s.has(FilterFamily) {
		t.Errorf("after without: %v", s)
	}
	if got := s.only(Contrast, Transparency); got != 0 {
		t.Errorf("only: got %v, want {}", got)
	}
}
