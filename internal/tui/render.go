package tui

import (
	"fmt"
	"image"
	"strings"

	"github.com/gdamore/tcell/v2"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/image-editor-mcp/internal/editor"
	"github.com/ironsheep/image-editor-mcp/internal/imaging"
)

const (
	panelWidth = 30

	// checkerSize is the checkerboard square edge in image pixels.
	checkerSize = 4
)

var (
	checkerLight = colorful.Color{R: 0.8, G: 0.8, B: 0.8}
	checkerDark  = colorful.Color{R: 0.6, G: 0.6, B: 0.6}

	styleText    = tcell.StyleDefault
	styleFocus   = tcell.StyleDefault.Reverse(true)
	styleTitle   = tcell.StyleDefault.Bold(true)
	styleMessage = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleHint    = tcell.StyleDefault.Dim(true)
)

// previewCache keeps the last scaled preview. The session replaces its
// display image on every edit, so pointer identity tells when to rescale.
type previewCache struct {
	src    *image.NRGBA
	w, h   int
	scaled *image.NRGBA
}

func (c *previewCache) get(src *image.NRGBA, w, h int) *image.NRGBA {
	if c.src != src || c.w != w || c.h != h {
		c.src, c.w, c.h = src, w, h
		c.scaled = imaging.Fit(src, w, h)
	}
	return c.scaled
}

func (a *App) draw() {
	a.screen.Clear()
	w, h := a.screen.Size()

	previewW := max(w-panelWidth-1, 0)
	a.drawPreview(0, 0, previewW, h-1)
	a.drawPanel(w-panelWidth, 0, panelWidth, h-1)
	a.drawStatus(0, h-1, w)

	a.screen.Show()
}

// drawPreview renders the displayed image into the cell box using upper
// half blocks: each cell shows two vertically stacked pixels.
func (a *App) drawPreview(x0, y0, cols, rows int) {
	if cols <= 0 || rows <= 0 {
		return
	}
	img, err := a.session.Display()
	if err != nil {
		drawText(a.screen, x0+1, y0+1, cols-1, styleHint, "No image. Press o to open one.")
		return
	}

	scaled := a.preview.get(img, cols, rows*2)
	b := scaled.Bounds()
	for cy := 0; cy*2 < b.Dy() && cy < rows; cy++ {
		for cx := 0; cx < b.Dx() && cx < cols; cx++ {
			top := pixelColor(scaled, cx, cy*2)
			style := tcell.StyleDefault.Foreground(top)
			if cy*2+1 < b.Dy() {
				style = style.Background(pixelColor(scaled, cx, cy*2+1))
			}
			a.screen.SetContent(x0+cx, y0+cy, '▀', nil, style)
		}
	}
}

// pixelColor composites the pixel at (x, y) over the checkerboard.
func pixelColor(img *image.NRGBA, x, y int) tcell.Color {
	p := img.NRGBAAt(img.Bounds().Min.X+x, img.Bounds().Min.Y+y)
	c := colorful.Color{R: float64(p.R) / 255, G: float64(p.G) / 255, B: float64(p.B) / 255}
	if p.A < 0xff {
		c = c.BlendRgb(checker(x, y), 1-float64(p.A)/255)
	}
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func checker(x, y int) colorful.Color {
	if (x/checkerSize+y/checkerSize)%2 == 0 {
		return checkerLight
	}
	return checkerDark
}

func (a *App) drawPanel(x0, y0, width, height int) {
	if x0 < 0 {
		return
	}
	for y := y0; y < y0+height; y++ {
		a.screen.SetContent(x0-1, y, '│', nil, styleHint)
	}

	drawText(a.screen, x0+1, y0, width-1, styleTitle, "Controls")
	c := a.session.Controls()
	for i, r := range a.rows {
		y := y0 + 2 + i
		if y >= y0+height {
			break
		}
		style := styleText
		if i == a.focus {
			style = styleFocus
		}
		line := fmt.Sprintf(" %-16s %10s ", r.label, rowValue(r, c))
		drawText(a.screen, x0, y, width, style, line)
	}

	hints := []string{
		"←→ adjust  ␣ toggle  0 reset",
		"c colors  r image  x clear",
		"o open  s save  S save as",
	}
	for i, hint := range hints {
		y := y0 + height - len(hints) + i
		if y >= y0+2+len(a.rows) {
			drawText(a.screen, x0+1, y, width-1, styleHint, hint)
		}
	}
}

func rowValue(r row, c *editor.Controls) string {
	switch r.kind {
	case rowOffset:
		return fmt.Sprintf("%+d", c.Offset(r.channel))
	case rowEnhancement:
		return fmt.Sprintf("%.2f", c.Factor(r.family))
	case rowFilter:
		return checkbox(c.Filter == r.filter)
	case rowTransparency:
		return checkbox(c.Transparent)
	}
	return ""
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (a *App) drawStatus(x0, y, width int) {
	if y < 0 {
		return
	}
	if a.prompt != nil {
		text := a.prompt.label + ": " + string(a.prompt.input)
		drawText(a.screen, x0, y, width, styleText, text)
		a.screen.ShowCursor(x0+len([]rune(text)), y)
		return
	}
	a.screen.HideCursor()

	if a.message != "" {
		drawText(a.screen, x0, y, width, styleMessage, a.message)
		return
	}
	drawText(a.screen, x0, y, width, styleText, a.statusLine())
}

func (a *App) statusLine() string {
	st := a.session.Status()
	if !st.Loaded {
		return "No image"
	}
	parts := []string{
		fmt.Sprintf("%dx%d %s", st.Image.Width, st.Image.Height, a.session.Info().FormatLabel()),
	}
	if len(st.Dirty) > 0 {
		parts = append(parts, "edited: "+strings.Join(st.Dirty, ","))
	}
	parts = append(parts, st.Path)
	if st.SaveTarget != "" {
		parts = append(parts, "→ "+st.SaveTarget)
	}
	return strings.Join(parts, "  ")
}

// drawText writes s starting at (x, y), clipped to width cells.
func drawText(s tcell.Screen, x, y, width int, style tcell.Style, text string) {
	i := 0
	for _, r := range text {
		if i >= width {
			return
		}
		s.SetContent(x+i, y, r, nil, style)
		i++
	}
}
