package editor

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"

	"github.com/ironsheep/image-editor-mcp/internal/imaging"
)

var (
	// ErrNoSaveTarget is returned by Save when no destination has been chosen
	// yet. Controllers respond by asking the user for a path.
	ErrNoSaveTarget = errors.New("no save target chosen")

	// ErrNoImage is returned by read-only queries that need a loaded image.
	ErrNoImage = errors.New("no image loaded")
)

// Options configures a Session.
type Options struct {
	// JPEGQuality is passed to the encoder when saving JPEG files.
	JPEGQuality int

	// DefaultDir seeds the remembered open and save folders.
	DefaultDir string
}

// Session is one editing session: the edit state, the controls mirroring it,
// and the file bookkeeping around them. A Session is not safe for concurrent
// use; it belongs to the goroutine running the controller's event loop.
type Session struct {
	opts     Options
	state    *State
	controls *Controls

	path       string
	info       *imaging.ImageInfo
	saveTarget string
	openDir    string
	saveDir    string
}

// NewSession returns a session with no image loaded.
func NewSession(opts Options) *Session {
	return &Session{
		opts:     opts,
		state:    NewState(),
		controls: NewControls(),
		openDir:  opts.DefaultDir,
		saveDir:  opts.DefaultDir,
	}
}

// State returns the session's edit state.
func (s *Session) State() *State { return s.state }

// Controls returns the session's controls.
func (s *Session) Controls() *Controls { return s.controls }

// Info returns the metadata of the loaded file, or nil.
func (s *Session) Info() *imaging.ImageInfo { return s.info }

// Path returns the path the current image was opened from.
func (s *Session) Path() string { return s.path }

// SaveTarget returns the path Save writes to, or "" before one is chosen.
func (s *Session) SaveTarget() string { return s.saveTarget }

// OpenDir returns the folder of the last opened file.
func (s *Session) OpenDir() string { return s.openDir }

// SaveDir returns the folder of the last save-as destination.
func (s *Session) SaveDir() string { return s.saveDir }

// Loaded reports whether an image is loaded.
func (s *Session) Loaded() bool { return s.state.Loaded() }

// Open loads the image at path. Relative paths resolve against the last open
// folder. On failure the current image and controls are left as they were.
//
// A successful open resets every control, including transparency, and
// forgets the previous save target.
func (s *Session) Open(path string) error {
	path = resolve(path, s.openDir)

	img, info, err := imaging.Load(path)
	if err != nil {
		Logger().Warn("open failed", "path", path, "error", err)
		return fmt.Errorf("failed to open %s: %w", path, err)
	}

	s.state.Load(img)
	s.controls.Reset()
	s.path = path
	s.info = info
	s.saveTarget = ""
	s.openDir = filepath.Dir(path)

	Logger().Info("image opened",
		"path", path,
		"width", info.Width,
		"height", info.Height,
		"format", info.Format)
	return nil
}

// SetChannel moves the offset slider of colour channel ch to value, clamped
// to the slider range, and recomputes the image.
func (s *Session) SetChannel(ch imaging.Channel, value int) error {
	if !s.Loaded() {
		return nil
	}
	if !ch.IsColor() {
		return fmt.Errorf("%w: %v", imaging.ErrUnknownChannel, ch)
	}

	value = ClampOffset(value)
	sig, err := s.state.ApplyChannelOffset(ch, value)
	if err != nil {
		return err
	}
	s.controls.Offsets[ch] = value
	s.controls.Apply(sig)
	return nil
}

// SetEnhancement moves the slider of enhancement family f to factor.
// Factors outside the slider range are rejected.
func (s *Session) SetEnhancement(f Family, factor float64) error {
	if !s.Loaded() {
		return nil
	}
	if !f.IsEnhancement() {
		return fmt.Errorf("%w: %v is not an enhancement", ErrUnknownFamily, f)
	}
	if err := imaging.ValidateFactor(factor); err != nil {
		return err
	}
	if factor > FactorMax {
		return fmt.Errorf("%w: %v exceeds %v", imaging.ErrInvalidFactor, factor, FactorMax)
	}

	sig, err := s.state.ApplyEnhancement(f, factor)
	if err != nil {
		return err
	}
	s.controls.Apply(sig)
	s.controls.Factors[f] = factor
	return nil
}

// ResetEnhancement returns the slider of f to neutral. If it was elsewhere
// the enhancement is re-applied at the neutral factor, which restores the
// cached baseline.
func (s *Session) ResetEnhancement(f Family) error {
	if !s.Loaded() {
		return nil
	}
	if !f.IsEnhancement() {
		return fmt.Errorf("%w: %v is not an enhancement", ErrUnknownFamily, f)
	}
	if s.controls.Factor(f) == FactorNeutral {
		return nil
	}
	return s.SetEnhancement(f, FactorNeutral)
}

// ResetColors returns the red, green and blue sliders to zero and clears
// the filter toggles.
func (s *Session) ResetColors() error {
	if !s.Loaded() {
		return nil
	}
	if f := s.state.ActiveFilter(); f != imaging.FilterNone {
		if err := s.SetFilter(f, false); err != nil {
			return err
		}
	}
	for _, ch := range imaging.ColorChannels {
		if s.controls.Offsets[ch] == 0 {
			continue
		}
		if err := s.SetChannel(ch, 0); err != nil {
			return err
		}
	}
	Logger().Info("colors reset")
	return nil
}

// SetFilter checks or clears the toggle for filter f.
func (s *Session) SetFilter(f imaging.Filter, enabled bool) error {
	if !s.Loaded() {
		return nil
	}
	if err := s.state.SetFilter(f, enabled); err != nil {
		return err
	}
	s.controls.Filter = s.state.ActiveFilter()
	return nil
}

// SetTransparency checks or clears the transparency toggle.
func (s *Session) SetTransparency(enabled bool) error {
	if !s.Loaded() {
		return nil
	}
	if err := s.state.SetTransparency(enabled); err != nil {
		return err
	}
	s.controls.Transparent = s.state.Transparent()
	return nil
}

// ResetImage discards every edit and returns the controls to neutral.
func (s *Session) ResetImage() {
	if !s.Loaded() {
		return
	}
	s.state.ResetToOriginal()
	s.controls.Reset()
	Logger().Info("image reset", "path", s.path)
}

// Clear unloads the image. The remembered folders are kept.
func (s *Session) Clear() {
	s.state.Clear()
	s.controls.Reset()
	s.path = ""
	s.info = nil
	s.saveTarget = ""
	Logger().Info("session cleared")
}

// Save writes the displayed image to the save target chosen by an earlier
// SaveAs and returns that path. Without a target it returns ErrNoSaveTarget.
// With no image loaded it does nothing.
func (s *Session) Save() (string, error) {
	if !s.Loaded() {
		return "", nil
	}
	if s.saveTarget == "" {
		return "", ErrNoSaveTarget
	}
	if err := s.write(s.saveTarget); err != nil {
		return "", err
	}
	return s.saveTarget, nil
}

// SaveAs writes the displayed image to path and makes it the save target.
// Relative paths resolve against the last save folder. The file format
// follows the extension.
func (s *Session) SaveAs(path string) (string, error) {
	if !s.Loaded() {
		return "", nil
	}
	path = resolve(path, s.saveDir)
	if !imaging.SupportedSaveExtension(path) {
		return "", fmt.Errorf("%w: %q", imaging.ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err := s.write(path); err != nil {
		return "", err
	}
	s.saveTarget = path
	s.saveDir = filepath.Dir(path)
	return path, nil
}

func (s *Session) write(path string) error {
	err := imaging.Save(s.state.Display(), path, imaging.SaveOptions{JPEGQuality: s.opts.JPEGQuality})
	if err != nil {
		Logger().Warn("save failed", "path", path, "error", err)
		return err
	}
	Logger().Info("image saved", "path", path)
	return nil
}

// Display returns the current image, or ErrNoImage when nothing is loaded.
func (s *Session) Display() (*image.NRGBA, error) {
	if !s.Loaded() {
		return nil, ErrNoImage
	}
	return s.state.Display(), nil
}

// Status summarizes the session for controllers.
type Status struct {
	Loaded       bool               `json:"loaded"`
	Path         string             `json:"path,omitempty"`
	Image        *imaging.ImageInfo `json:"image,omitempty"`
	Controls     ControlsView       `json:"controls"`
	Dirty        []string           `json:"dirty"`
	MattedPixels int                `json:"matted_pixels"`
	SaveTarget   string             `json:"save_target,omitempty"`
	OpenDir      string             `json:"open_dir,omitempty"`
	SaveDir      string             `json:"save_dir,omitempty"`
}

// Status returns a snapshot of the session.
func (s *Session) Status() Status {
	dirty := []string{}
	for _, f := range s.state.Dirty() {
		dirty = append(dirty, f.String())
	}
	return Status{
		Loaded:       s.Loaded(),
		Path:         s.path,
		Image:        s.info,
		Controls:     s.controls.View(),
		Dirty:        dirty,
		MattedPixels: s.state.MattedPixels(),
		SaveTarget:   s.saveTarget,
		OpenDir:      s.openDir,
		SaveDir:      s.saveDir,
	}
}

func resolve(path, dir string) string {
	if path == "" || filepath.IsAbs(path) || dir == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(dir, path)
}
