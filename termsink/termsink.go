// Package termsink presents rasterized frames on a terminal. Every cell
// shows two vertically stacked pixels through the upper half block.
package termsink

import (
	"image"
	"image/color"

	"github.com/gdamore/tcell/v2"
)

const halfBlock = '▀'

// Sink draws frames on a tcell screen.
type Sink struct {
	screen tcell.Screen
	status string
	style  tcell.Style
}

// New creates a sink over an initialized screen.
func New(screen tcell.Screen) *Sink {
	return &Sink{
		screen: screen,
		style:  tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack),
	}
}

// SetStatus sets the text shown on the bottom row. An empty status gives
// the row back to the frame.
func (s *Sink) SetStatus(status string) { s.status = status }

// Size returns the pixel grid the sink samples frames into.
func (s *Sink) Size() (int, int) {
	cols, rows := s.rows()
	return cols, rows * 2
}

func (s *Sink) rows() (int, int) {
	cols, rows := s.screen.Size()
	if s.status != "" {
		rows--
	}
	return cols, max(rows, 0)
}

// Draw scales img onto the screen and shows it.
func (s *Sink) Draw(img *image.RGBA) {
	cols, rows := s.rows()
	if img != nil && cols > 0 && rows > 0 {
		for cy := 0; cy < rows; cy++ {
			for cx := 0; cx < cols; cx++ {
				top, bottom := Cell(img, cols, rows, cx, cy)
				style := tcell.StyleDefault.
					Foreground(rgb(top)).
					Background(rgb(bottom))
				s.screen.SetContent(cx, cy, halfBlock, nil, style)
			}
		}
	}
	if s.status != "" {
		s.drawStatus(rows)
	}
	s.screen.Show()
}

func (s *Sink) drawStatus(y int) {
	cols, _ := s.screen.Size()
	runes := []rune(s.status)
	for x := 0; x < cols; x++ {
		r := ' '
		if x < len(runes) {
			r = runes[x]
		}
		s.screen.SetContent(x, y, r, nil, s.style)
	}
}

// Cell samples the two pixels of img shown by cell (cx, cy) of a cols x
// rows grid.
func Cell(img *image.RGBA, cols, rows, cx, cy int) (top, bottom color.RGBA) {
	b := img.Bounds()
	x := b.Min.X + cx*b.Dx()/cols
	y0 := b.Min.Y + (2*cy)*b.Dy()/(2*rows)
	y1 := b.Min.Y + (2*cy+1)*b.Dy()/(2*rows)
	return img.RGBAAt(x, y0), img.RGBAAt(x, y1)
}

func rgb(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
