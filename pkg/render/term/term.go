package term

import (
	"math"

	"github.com/matzehuels/schematic/pkg/schematic/scene"
	"github.com/matzehuels/schematic/pkg/schematic/viewport"
)

// Option configures rendering.
type Option func(*canvas)

// WithCellSize sets the screen pixels covered by one character cell.
func WithCellSize(w, h float64) Option {
	return func(c *canvas) { c.cellW, c.cellH = w, h }
}

// WithPlain disables ANSI styling.
func WithPlain() Option { return func(c *canvas) { c.plain = true } }

type canvas struct {
	grid  *Grid
	rects map[string]viewport.Rect
	cellW float64
	cellH float64
	plain bool
}

// Render rasterizes s and returns the frame as text.
func Render(s scene.Scene, opts ...Option) string {
	return Rasterize(s, opts...).String(plainOf(opts))
}

func plainOf(opts []Option) bool {
	var c canvas
	for _, opt := range opts {
		opt(&c)
	}
	return c.plain
}

// Rasterize draws s onto a new grid sized to cover the scene's canvas.
func Rasterize(s scene.Scene, opts ...Option) *Grid {
	c := &canvas{cellW: DefaultCellWidth, cellH: DefaultCellHeight}
	for _, opt := range opts {
		opt(c)
	}
	cols := int(math.Ceil(s.Size.W / c.cellW))
	rows := int(math.Ceil(s.Size.H / c.cellH))
	c.grid = NewGrid(cols, rows, c.cellW, c.cellH)

	c.rects = make(map[string]viewport.Rect, len(s.Boxes))
	for _, b := range s.Boxes {
		c.rects[b.ID] = b.Rect
	}

	scene.Draw(c, s)
	return c.grid
}

// Arrow implements scene.Canvas.
func (c *canvas) Arrow(a scene.Arrow) {
	g := c.grid
	from, to := c.rects[a.From], c.rects[a.To]
	c0, r0 := g.cell(a.Start)
	c1, r1 := g.cell(a.End)

	lineClass := classEdge
	if a.Cycle {
		lineClass = classCycle
	}

	var (
		prev     = [2]int{c0, r0}
		last     [2]int
		dir      [2]int
		haveLast bool
	)
	fromCells, toCells := g.cellRect(from), g.cellRect(to)
	line(c0, r0, c1, r1, func(col, row int) bool {
		if toCells.has(col, row) {
			return false
		}
		if !fromCells.has(col, row) {
			g.set(col, row, '·', lineClass)
			dir = [2]int{col - prev[0], row - prev[1]}
			last, haveLast = [2]int{col, row}, true
		}
		prev = [2]int{col, row}
		return true
	})
	if haveLast {
		g.set(last[0], last[1], head(dir[0], dir[1]), classHead)
	}

	if a.Label != "" {
		mc, mr := g.cell(a.Mid)
		label := " " + a.Label + " "
		g.write(mc-len([]rune(label))/2, mr, label, classLabel)
	}
}

func head(dcol, drow int) rune {
	if abs(drow) > abs(dcol) {
		if drow > 0 {
			return '▼'
		}
		return '▲'
	}
	if dcol < 0 {
		return '◀'
	}
	return '▶'
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// line walks the cells from (c0, r0) to (c1, r1) with Bresenham's algorithm
// until visit returns false.
func line(c0, r0, c1, r1 int, visit func(col, row int) bool) {
	dc, dr := abs(c1-c0), -abs(r1-r0)
	sc, sr := 1, 1
	if c0 > c1 {
		sc = -1
	}
	if r0 > r1 {
		sr = -1
	}
	err := dc + dr
	for {
		if !visit(c0, r0) || (c0 == c1 && r0 == r1) {
			return
		}
		e2 := 2 * err
		if e2 >= dr {
			err += dr
			c0 += sc
		}
		if e2 <= dc {
			err += dc
			r0 += sr
		}
	}
}

// Box implements scene.Canvas.
func (c *canvas) Box(b scene.Box) {
	g := c.grid
	cr := g.cellRect(b.Rect)
	c0, r0, c1, r1 := cr.c0, cr.r0, cr.c1, cr.r1

	if c1-c0 < 2 || r1-r0 < 2 {
		g.writeClipped(c0, r0, c1+1, b.Title, classTitle)
		if g.at(c0, r0) == ' ' || c1 < c0 {
			g.set(c0, r0, '■', classTitle)
		}
		return
	}

	g.fill(c0, r0, c1, r1, ' ')
	for col := c0 + 1; col < c1; col++ {
		g.set(col, r0, '─', classBorder)
		g.set(col, r1, '─', classBorder)
	}
	for row := r0 + 1; row < r1; row++ {
		g.set(c0, row, '│', classBorder)
		g.set(c1, row, '│', classBorder)
	}
	g.set(c0, r0, '╭', classBorder)
	g.set(c1, r0, '╮', classBorder)
	g.set(c0, r1, '╰', classBorder)
	g.set(c1, r1, '╯', classBorder)

	left, right := c0+2, c1-1
	row := r0 + 1
	bottom := r1 - 1
	emit := func(fn func(row int)) bool {
		if row > bottom {
			return false
		}
		fn(row)
		row++
		return true
	}

	emit(func(row int) { g.writeClipped(left, row, right, b.Title, classTitle) })
	emit(func(row int) { g.writeClipped(left, row, right, b.Subtitle, classMuted) })

	if b.Rules != "" && bottom > row {
		g.writeClipped(left, bottom, right, b.Rules, classMuted)
		bottom--
	}
	if !emit(func(row int) { g.writeClipped(left, row, right, b.FieldHeading(), classMuted) }) {
		return
	}
	for i, f := range b.Fields {
		if row == bottom && i < len(b.Fields)-1 {
			g.writeClipped(left, row, right, "…", classMuted)
			return
		}
		if !emit(func(row int) { c.field(left, right, row, f) }) {
			return
		}
	}
}

func (c *canvas) field(left, right, row int, f scene.FieldRow) {
	g := c.grid
	name := f.Name
	if f.System {
		name += " sys"
	}
	g.writeClipped(left, row, right, name, classText)
	col := left + len([]rune(name))
	if f.Required && col < right {
		g.set(col, row, '*', classRequired)
	}

	suffix := f.Type
	end := right
	if f.Reference {
		end -= 4
		g.writeClipped(end+1, row, right, "ref", classRef)
	}
	start := end - len([]rune(suffix))
	if start > col+2 {
		g.write(start, row, suffix, classMuted)
	}
}

// Overlay implements scene.Canvas.
func (c *canvas) Overlay(o scene.Overlay) {
	g := c.grid
	for i, line := range o.Empty {
		cl := classText
		if i > 0 {
			cl = classMuted
		}
		n := len([]rune(line))
		g.write((g.Cols-n)/2, g.Rows/2+i*2-1, line, cl)
	}

	for _, ctl := range o.Controls {
		col, row := g.cell(viewport.Point{X: ctl.Rect.X, Y: ctl.Rect.Y})
		g.write(col, row, "["+ctl.Icon+"]", classOverlay)
	}

	zc, zr := g.cell(viewport.Point{X: o.ZoomRect.X, Y: o.ZoomRect.Y})
	g.write(zc, zr, o.ZoomLabel, classOverlay)

	if len(o.Legend) > 0 {
		right, top := g.cell(viewport.Point{X: o.LegendRect.Right(), Y: o.LegendRect.Y})
		for i, line := range o.Legend {
			g.write(right-len([]rune(line)), top+i, line, classMuted)
		}
	}
}
