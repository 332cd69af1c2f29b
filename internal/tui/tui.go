// Package tui is a terminal front end for an editor.Session built on tcell.
//
// The screen is split into a half-block preview of the displayed image, a
// panel of controls on the right and a status line at the bottom. Keys:
//
//	Up/Down      move focus between controls
//	Left/Right   adjust the focused slider (Shift for bigger steps)
//	Space        toggle the focused filter or transparency
//	0            reset the focused control
//	c            reset colors
//	r            reset image
//	x            clear
//	s            save (asks for a path the first time)
//	S            save as
//	o            open
//	q, Esc       quit
package tui

import (
	"errors"
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/ironsheep/image-editor-mcp/internal/editor"
	"github.com/ironsheep/image-editor-mcp/internal/imaging"
)

// Slider steps per key press. Shift multiplies them by shiftMultiplier.
const (
	offsetStep      = 5
	factorStep      = 0.05
	shiftMultiplier = 5
)

type rowKind int

const (
	rowOffset rowKind = iota
	rowEnhancement
	rowFilter
	rowTransparency
)

// row is one line of the controls panel.
type row struct {
	kind    rowKind
	label   string
	channel imaging.Channel
	family  editor.Family
	filter  imaging.Filter
}

var enhancementLabels = map[editor.Family]string{
	editor.ColorBalance: "Color balance",
	editor.Contrast:     "Contrast",
	editor.Brightness:   "Brightness",
	editor.Sharpness:    "Sharpness",
}

func buildRows() []row {
	rows := []row{
		{kind: rowOffset, label: "Red", channel: imaging.Red},
		{kind: rowOffset, label: "Green", channel: imaging.Green},
		{kind: rowOffset, label: "Blue", channel: imaging.Blue},
	}
	for _, f := range editor.Enhancements {
		rows = append(rows, row{kind: rowEnhancement, label: enhancementLabels[f], family: f})
	}
	for _, f := range imaging.Filters {
		rows = append(rows, row{kind: rowFilter, label: f.Label(), filter: f})
	}
	return append(rows, row{kind: rowTransparency, label: "Transparency"})
}

// prompt is a one-line text input shown in the status line.
type prompt struct {
	label  string
	input  []rune
	submit func(string) error
}

// App drives a Session from keyboard events on a tcell screen.
type App struct {
	screen  tcell.Screen
	session *editor.Session

	rows    []row
	focus   int
	prompt  *prompt
	message string

	preview previewCache
}

// New returns an App drawing on screen. The screen must already be
// initialized; the caller owns its lifecycle.
func New(screen tcell.Screen, session *editor.Session) *App {
	return &App{
		screen:  screen,
		session: session,
		rows:    buildRows(),
	}
}

// Run draws the screen and processes events until the user quits or the
// screen is finalized.
func (a *App) Run() error {
	for {
		a.draw()
		ev := a.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if !a.handleEvent(ev) {
			return nil
		}
	}
}

// handleEvent applies one event and reports whether the app keeps running.
func (a *App) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
	case *tcell.EventKey:
		if a.prompt != nil {
			a.handlePromptKey(ev)
			return true
		}
		return a.handleKey(ev)
	}
	return true
}

func (a *App) handleKey(ev *tcell.EventKey) bool {
	a.message = ""
	big := ev.Modifiers()&tcell.ModShift != 0

	var err error
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		a.moveFocus(-1)
	case tcell.KeyDown:
		a.moveFocus(1)
	case tcell.KeyLeft:
		err = a.adjust(-1, big)
	case tcell.KeyRight:
		err = a.adjust(1, big)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case ' ':
			err = a.toggle()
		case '0':
			err = a.resetFocused()
		case 'c':
			err = a.session.ResetColors()
		case 'r':
			a.session.ResetImage()
		case 'x':
			a.session.Clear()
		case 's':
			err = a.save()
		case 'S':
			a.askSaveAs()
		case 'o':
			a.askOpen()
		}
	}

	if err != nil {
		a.fail(err)
	}
	return true
}

func (a *App) handlePromptKey(ev *tcell.EventKey) {
	p := a.prompt
	switch ev.Key() {
	case tcell.KeyEscape:
		a.prompt = nil
	case tcell.KeyEnter:
		a.prompt = nil
		if err := p.submit(string(p.input)); err != nil {
			a.fail(err)
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(p.input) > 0 {
			p.input = p.input[:len(p.input)-1]
		}
	case tcell.KeyRune:
		p.input = append(p.input, ev.Rune())
	}
}

func (a *App) fail(err error) {
	editor.Logger().Warn("tui action failed", "error", err)
	a.message = err.Error()
}

func (a *App) moveFocus(delta int) {
	a.focus = min(max(a.focus+delta, 0), len(a.rows)-1)
}

// adjust moves the focused slider one step in direction dir.
func (a *App) adjust(dir int, big bool) error {
	mult := 1
	if big {
		mult = shiftMultiplier
	}

	r := a.rows[a.focus]
	c := a.session.Controls()
	switch r.kind {
	case rowOffset:
		return a.session.SetChannel(r.channel, c.Offset(r.channel)+dir*offsetStep*mult)
	case rowEnhancement:
		v := c.Factor(r.family) + float64(dir*mult)*factorStep
		v = editor.ClampFactor(math.Round(v*100) / 100)
		if v == c.Factor(r.family) {
			return nil
		}
		return a.session.SetEnhancement(r.family, v)
	}
	return nil
}

func (a *App) toggle() error {
	r := a.rows[a.focus]
	c := a.session.Controls()
	switch r.kind {
	case rowFilter:
		return a.session.SetFilter(r.filter, c.Filter != r.filter)
	case rowTransparency:
		return a.session.SetTransparency(!c.Transparent)
	}
	return nil
}

func (a *App) resetFocused() error {
	r := a.rows[a.focus]
	switch r.kind {
	case rowOffset:
		return a.session.SetChannel(r.channel, 0)
	case rowEnhancement:
		return a.session.ResetEnhancement(r.family)
	case rowFilter:
		return a.session.SetFilter(r.filter, false)
	case rowTransparency:
		return a.session.SetTransparency(false)
	}
	return nil
}

func (a *App) save() error {
	path, err := a.session.Save()
	if errors.Is(err, editor.ErrNoSaveTarget) {
		a.askSaveAs()
		return nil
	}
	if err != nil {
		return err
	}
	if path != "" {
		a.message = "Saved " + path
	}
	return nil
}

func (a *App) askSaveAs() {
	if !a.session.Loaded() {
		return
	}
	a.prompt = &prompt{
		label: "Save as",
		input: []rune(a.session.SaveTarget()),
		submit: func(path string) error {
			if path == "" {
				return nil
			}
			saved, err := a.session.SaveAs(path)
			if err != nil {
				return err
			}
			a.message = "Saved " + saved
			return nil
		},
	}
}

func (a *App) askOpen() {
	a.prompt = &prompt{
		label: "Open",
		submit: func(path string) error {
			if path == "" {
				return nil
			}
			if err := a.session.Open(path); err != nil {
				return err
			}
			a.focus = 0
			info := a.session.Info()
			a.message = fmt.Sprintf("Opened %s (%dx%d %s)", a.session.Path(), info.Width, info.Height, info.FormatLabel())
			return nil
		},
	}
}
