package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/flappy-arena/internal/core"
	"github.com/vovakirdan/flappy-arena/internal/sim"
)

// Glyphs used to draw a frame.
const (
	PipeChar   = '█'
	PipeCap    = '▀'
	AgentChar  = '@'
	GroundChar = '▔'
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault:     lipgloss.NewStyle(),
	core.ColorGreen:       lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	core.ColorYellow:      lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	core.ColorRed:         lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	core.ColorCyan:        lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	core.ColorGray:        lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	core.ColorBrightWhite: lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			startColor := s.GetCell(x, y).Color

			var run strings.Builder
			for x < s.Width() {
				cell := s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// viewport maps world coordinates onto screen rows [top, top+h) and columns [0, w).
type viewport struct {
	top    int
	w, h   int
	sx, sy float64
}

func newViewport(f sim.Frame, dst *core.Screen, top int) viewport {
	vp := viewport{top: top, w: dst.Width(), h: dst.Height() - top}
	if vp.h < 0 {
		vp.h = 0
	}
	if f.FieldW > 0 {
		vp.sx = float64(vp.w) / f.FieldW
	}
	if f.FieldH > 0 {
		vp.sy = float64(vp.h) / f.FieldH
	}
	return vp
}

func (vp viewport) col(x float64) int { return int(math.Floor(x * vp.sx)) }
func (vp viewport) row(y float64) int { return vp.top + int(math.Floor(y*vp.sy)) }

// RenderFrame draws the play field of a frame below the top rows of dst.
// Rows above top are left for the HUD. Live agents are drawn last so they
// stay visible inside a pipe column.
func RenderFrame(f sim.Frame, dst *core.Screen, top int) {
	vp := newViewport(f, dst, top)
	if vp.w == 0 || vp.h == 0 {
		return
	}
	bottom := vp.top + vp.h

	dst.DrawHLine(0, bottom-1, vp.w, GroundChar)

	for _, p := range f.Pairs {
		left := vp.col(p.X - f.PairWidth/2)
		right := int(math.Ceil((p.X + f.PairWidth/2) * vp.sx))
		if right <= left {
			right = left + 1
		}
		topEnd := vp.row(p.TopEdge())
		bottomStart := vp.row(p.BottomEdge())

		for x := core.Clamp(left, 0, vp.w); x < core.Clamp(right, 0, vp.w); x++ {
			for y := vp.top; y < topEnd; y++ {
				dst.SetColor(x, y, PipeChar, core.ColorGreen)
			}
			if topEnd-1 >= vp.top {
				dst.SetColor(x, topEnd-1, PipeCap, core.ColorGreen)
			}
			for y := bottomStart; y < bottom-1; y++ {
				dst.SetColor(x, y, PipeChar, core.ColorGreen)
			}
		}
	}

	for _, a := range f.Agents {
		x := core.Clamp(vp.col(a.X), 0, vp.w-1)
		y := core.Clamp(vp.row(a.Y), vp.top, bottom-1)
		dst.SetColor(x, y, AgentChar, core.ColorYellow)
	}
}

// drawCenteredMessage draws a boxed two-line message in the middle of the screen.
func drawCenteredMessage(dst *core.Screen, title, subtitle string) {
	boxW := max(len([]rune(title)), len([]rune(subtitle))) + 4
	boxH := 4
	x := (dst.Width() - boxW) / 2
	y := (dst.Height() - boxH) / 2

	dst.DrawRect(x, y, boxW, boxH, ' ', core.ColorDefault)
	dst.DrawBox(x, y, boxW, boxH)
	dst.DrawTextColor(x+(boxW-len([]rune(title)))/2, y+1, title, core.ColorBrightWhite)
	dst.DrawTextColor(x+(boxW-len([]rune(subtitle)))/2, y+2, subtitle, core.ColorGray)
}
