package term

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/schematic/pkg/schematic/viewport"
)

// Default cell size in screen pixels. Terminal cells are roughly twice as
// tall as they are wide.
const (
	DefaultCellWidth  = 8.0
	DefaultCellHeight = 16.0
)

type class uint8

const (
	classNone class = iota
	classBorder
	classTitle
	classText
	classMuted
	classEdge
	classCycle
	classHead
	classLabel
	classRef
	classRequired
	classOverlay
)

var (
	colorCyan   = lipgloss.Color("36")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var styles = map[class]lipgloss.Style{
	classBorder:   lipgloss.NewStyle().Foreground(colorGray),
	classTitle:    lipgloss.NewStyle().Bold(true).Foreground(colorCyan),
	classText:     lipgloss.NewStyle().Foreground(colorWhite),
	classMuted:    lipgloss.NewStyle().Foreground(colorDim),
	classEdge:     lipgloss.NewStyle().Foreground(colorBlue),
	classCycle:    lipgloss.NewStyle().Foreground(colorYellow),
	classHead:     lipgloss.NewStyle().Bold(true).Foreground(colorBlue),
	classLabel:    lipgloss.NewStyle().Foreground(colorWhite).Background(colorDim),
	classRef:      lipgloss.NewStyle().Foreground(colorCyan),
	classRequired: lipgloss.NewStyle().Foreground(colorRed),
	classOverlay:  lipgloss.NewStyle().Foreground(colorGray),
}

// Grid is a character raster of the canvas.
type Grid struct {
	Cols, Rows int
	CellW      float64
	CellH      float64
	cells      [][]rune
	classes    [][]class
}

// NewGrid returns a blank grid of cols x rows cells.
func NewGrid(cols, rows int, cellW, cellH float64) *Grid {
	if cellW <= 0 {
		cellW = DefaultCellWidth
	}
	if cellH <= 0 {
		cellH = DefaultCellHeight
	}
	g := &Grid{Cols: max(cols, 0), Rows: max(rows, 0), CellW: cellW, CellH: cellH}
	g.cells = make([][]rune, g.Rows)
	g.classes = make([][]class, g.Rows)
	for r := range g.cells {
		g.cells[r] = []rune(strings.Repeat(" ", g.Cols))
		g.classes[r] = make([]class, g.Cols)
	}
	return g
}

// ScreenSize returns the canvas size in screen pixels covered by the grid.
func (g *Grid) ScreenSize() viewport.Size {
	return viewport.Size{W: float64(g.Cols) * g.CellW, H: float64(g.Rows) * g.CellH}
}

// ToScreen returns the screen pixel at the center of a cell.
func (g *Grid) ToScreen(col, row int) viewport.Point {
	return viewport.Point{X: (float64(col) + 0.5) * g.CellW, Y: (float64(row) + 0.5) * g.CellH}
}

func (g *Grid) cell(p viewport.Point) (int, int) {
	return int(math.Floor(p.X / g.CellW)), int(math.Floor(p.Y / g.CellH))
}

// cells is an inclusive rectangle of grid cells.
type cells struct{ c0, r0, c1, r1 int }

func (c cells) has(col, row int) bool {
	return col >= c.c0 && col <= c.c1 && row >= c.r0 && row <= c.r1
}

// cellRect returns the cells covered by a screen rectangle. An empty
// rectangle covers no cells.
func (g *Grid) cellRect(r viewport.Rect) cells {
	if r.W <= 0 || r.H <= 0 {
		return cells{0, 0, -1, -1}
	}
	c0, r0 := g.cell(viewport.Point{X: r.X, Y: r.Y})
	c1, r1 := g.cell(viewport.Point{X: r.Right() - 0.01, Y: r.Bottom() - 0.01})
	return cells{c0, r0, c1, r1}
}

func (g *Grid) set(col, row int, ch rune, cl class) {
	if row < 0 || row >= g.Rows || col < 0 || col >= g.Cols {
		return
	}
	g.cells[row][col] = ch
	g.classes[row][col] = cl
}

func (g *Grid) at(col, row int) rune {
	if row < 0 || row >= g.Rows || col < 0 || col >= g.Cols {
		return 0
	}
	return g.cells[row][col]
}

func (g *Grid) write(col, row int, s string, cl class) {
	for i, ch := range []rune(s) {
		g.set(col+i, row, ch, cl)
	}
}

// writeClipped writes s starting at col, truncated so it never passes limit.
func (g *Grid) writeClipped(col, row, limit int, s string, cl class) {
	rs := []rune(s)
	if n := limit - col; len(rs) > n {
		if n <= 0 {
			return
		}
		if n > 1 {
			rs = append(rs[:n-1], '…')
		} else {
			rs = rs[:n]
		}
	}
	g.write(col, row, string(rs), cl)
}

func (g *Grid) fill(c0, r0, c1, r1 int, ch rune) {
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			g.set(c, r, ch, classNone)
		}
	}
}

// String renders the grid, styled unless plain is set.
func (g *Grid) String(plain bool) string {
	var b strings.Builder
	for r := range g.Rows {
		if plain {
			b.WriteString(strings.TrimRight(string(g.cells[r]), " "))
		} else {
			g.styledRow(&b, r)
		}
		if r < g.Rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (g *Grid) styledRow(b *strings.Builder, r int) {
	row, cls := g.cells[r], g.classes[r]
	start := 0
	for c := 1; c <= len(row); c++ {
		if c < len(row) && cls[c] == cls[start] {
			continue
		}
		run := string(row[start:c])
		if st, ok := styles[cls[start]]; ok {
			run = st.Render(run)
		}
		b.WriteString(run)
		start = c
	}
}
