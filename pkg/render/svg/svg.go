package svg

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/schematic/pkg/schematic/scene"
	"github.com/matzehuels/schematic/pkg/schematic/viewport"
)

// Theme holds the colors used by the SVG canvas.
type Theme struct {
	Background string
	Grid       string
	Card       string
	CardStroke string
	Text       string
	Muted      string
	Primary    string
	EdgeDash   string
	RefBadge   string
	Required   string
	Surface    string
	Cycle      string
}

// DefaultTheme is a light theme close to the console's.
var DefaultTheme = Theme{
	Background: "#fdfbff",
	Grid:       "#c4c6d0",
	Card:       "#eef0f8",
	CardStroke: "#74777f",
	Text:       "#1a1b1f",
	Muted:      "#44474e",
	Primary:    "#3a5ba9",
	EdgeDash:   "#dae2ff",
	RefBadge:   "#dae2ff",
	Required:   "#ba1a1a",
	Surface:    "#ffffff",
	Cycle:      "#b25b00",
}

// Option configures rendering.
type Option func(*canvas)

// WithTheme overrides the color theme.
func WithTheme(t Theme) Option { return func(c *canvas) { c.theme = t } }

// WithLinks wraps each card in a link to prefix+routeKey.
func WithLinks(prefix string) Option { return func(c *canvas) { c.linkPrefix = prefix } }

// WithoutOverlay omits the controls, zoom indicator and legend. The
// empty-state message is still drawn.
func WithoutOverlay() Option { return func(c *canvas) { c.noOverlay = true } }

// WithGrid draws the dotted background grid.
func WithGrid() Option { return func(c *canvas) { c.grid = true } }

// Card typography in screen pixels at zoom 1.
const (
	titleSize    = 16.0
	subtitleSize = 13.0
	fieldSize    = 12.0
	rowHeight    = 18.0
	padding      = 16.0
	labelWidth   = 60.0
	labelHeight  = 20.0
	fieldRows    = 6
)

type canvas struct {
	buf        bytes.Buffer
	theme      Theme
	zoom       float64
	size       viewport.Size
	linkPrefix string
	noOverlay  bool
	grid       bool
}

// Render draws s and returns the SVG document.
func Render(s scene.Scene, opts ...Option) []byte {
	c := &canvas{theme: DefaultTheme, zoom: s.Zoom, size: s.Size}
	for _, opt := range opts {
		opt(c)
	}
	if c.zoom <= 0 {
		c.zoom = 1
	}

	fmt.Fprintf(&c.buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f" font-family="Roboto, Helvetica, Arial, sans-serif">`+"\n",
		s.Size.W, s.Size.H, s.Size.W, s.Size.H)
	c.defs()
	fmt.Fprintf(&c.buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", c.theme.Background)
	if c.grid {
		c.buf.WriteString(`  <rect width="100%" height="100%" fill="url(#grid)"/>` + "\n")
	}

	scene.Draw(c, s)

	c.buf.WriteString("</svg>\n")
	return c.buf.Bytes()
}

func (c *canvas) defs() {
	fmt.Fprintf(&c.buf, `  <defs>
    <marker id="arrowhead" markerWidth="10" markerHeight="7" refX="9" refY="3.5" orient="auto">
      <polygon points="0 0, 10 3.5, 0 7" fill="%s"/>
    </marker>
    <pattern id="grid" width="20" height="20" patternUnits="userSpaceOnUse">
      <circle cx="1" cy="1" r="1" fill="%s" opacity="0.4"/>
    </pattern>
  </defs>
`, c.theme.Primary, c.theme.Grid)
}

// Arrow implements scene.Canvas.
func (c *canvas) Arrow(a scene.Arrow) {
	stroke := c.theme.Primary
	if a.Cycle {
		stroke = c.theme.Cycle
	}
	fmt.Fprintf(&c.buf, `  <g class="edge" data-from="%s" data-to="%s">`+"\n", esc(a.From), esc(a.To))
	fmt.Fprintf(&c.buf, `    <path d="M %.2f %.2f L %.2f %.2f" stroke="%s" stroke-width="%.2f" fill="none" opacity="0.8"/>`+"\n",
		a.Start.X, a.Start.Y, a.End.X, a.End.Y, stroke, 6*c.zoom)
	fmt.Fprintf(&c.buf, `    <path d="M %.2f %.2f L %.2f %.2f" stroke="%s" stroke-width="%.2f" fill="none" stroke-dasharray="%.1f,%.1f" marker-end="url(#arrowhead)"/>`+"\n",
		a.Start.X, a.Start.Y, a.End.X, a.End.Y, c.theme.EdgeDash, 3*c.zoom, 8*c.zoom, 4*c.zoom)

	w, h := labelWidth*c.zoom, labelHeight*c.zoom
	fmt.Fprintf(&c.buf, `    <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="%.2f" fill="%s" stroke="%s" stroke-width="1"/>`+"\n",
		a.Mid.X-w/2, a.Mid.Y-h/2, w, h, 4*c.zoom, c.theme.Surface, c.theme.CardStroke)
	fmt.Fprintf(&c.buf, `    <text x="%.2f" y="%.2f" font-size="%.2f" font-weight="500" text-anchor="middle" dominant-baseline="central" fill="%s">%s</text>`+"\n",
		a.Mid.X, a.Mid.Y, 11*c.zoom, c.theme.Text, esc(a.Label))
	c.buf.WriteString("  </g>\n")
}

// Box implements scene.Canvas.
func (c *canvas) Box(b scene.Box) {
	if c.linkPrefix != "" {
		fmt.Fprintf(&c.buf, `  <a href="%s">`+"\n", esc(c.linkPrefix+b.RouteKey))
	}
	r := b.Rect
	z := c.zoom
	fmt.Fprintf(&c.buf, `  <g class="card" id="card-%s" data-route="%s">`+"\n", esc(b.ID), esc(b.RouteKey))
	fmt.Fprintf(&c.buf, `    <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="%.2f" fill="%s" stroke="%s"/>`+"\n",
		r.X, r.Y, r.W, r.H, 12*z, c.theme.Card, c.theme.CardStroke)

	x := r.X + padding*z
	y := r.Y + (padding+titleSize)*z
	c.text(x, y, titleSize, "600", c.theme.Text, b.Title)
	c.text(r.Right()-padding*z, y, fieldSize, "400", c.theme.Muted, b.Tag, `text-anchor="end"`)
	y += (subtitleSize + 8) * z
	c.text(x, y, subtitleSize, "400", c.theme.Muted, b.Subtitle, `font-family="monospace"`)
	y += (fieldSize + 10) * z
	c.text(x, y, fieldSize, "500", c.theme.Muted, b.FieldHeading())

	for i, f := range b.Fields {
		if i == fieldRows {
			y += rowHeight * z
			c.text(x, y, fieldSize, "400", c.theme.Muted, fmt.Sprintf("+%d more", len(b.Fields)-fieldRows))
			break
		}
		y += rowHeight * z
		c.field(x, r.Right()-padding*z, y, f)
	}

	if b.Rules != "" {
		c.text(x, r.Bottom()-padding*z/2, fieldSize, "400", c.theme.Muted, b.Rules)
	}
	c.buf.WriteString("  </g>\n")
	if c.linkPrefix != "" {
		c.buf.WriteString("  </a>\n")
	}
}

func (c *canvas) field(left, right, y float64, f scene.FieldRow) {
	name := f.Name
	if f.System {
		name += " (sys)"
	}
	c.text(left, y, fieldSize, "400", c.theme.Text, name, `font-family="monospace"`)
	if f.Required {
		fmt.Fprintf(&c.buf, `    <text x="%.2f" y="%.2f" font-size="%.2f" fill="%s">*</text>`+"\n",
			left+float64(len(name)+1)*fieldSize*0.6*c.zoom, y, fieldSize*c.zoom, c.theme.Required)
	}
	typeRight := right
	if f.Reference {
		w := 24 * c.zoom
		fmt.Fprintf(&c.buf, `    <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="%.2f" fill="%s"/>`+"\n",
			right-w, y-fieldSize*c.zoom, w, (fieldSize+3)*c.zoom, 3*c.zoom, c.theme.RefBadge)
		c.text(right-w/2, y, fieldSize-1, "400", c.theme.Primary, "ref", `text-anchor="middle"`)
		typeRight = right - w - 6*c.zoom
	}
	c.text(typeRight, y, fieldSize, "400", c.theme.Muted, f.Type, `text-anchor="end"`)
}

func (c *canvas) text(x, y, size float64, weight, fill, s string, extra ...string) {
	attrs := ""
	for _, e := range extra {
		attrs += " " + e
	}
	fmt.Fprintf(&c.buf, `    <text x="%.2f" y="%.2f" font-size="%.2f" font-weight="%s" fill="%s"%s>%s</text>`+"\n",
		x, y, size*c.zoom, weight, fill, attrs, esc(s))
}

// Overlay implements scene.Canvas.
func (c *canvas) Overlay(o scene.Overlay) {
	if len(o.Empty) > 0 {
		cx, cy := c.size.W/2, c.size.H/2
		for i, line := range o.Empty {
			size := 18.0
			if i > 0 {
				size = 14
			}
			fmt.Fprintf(&c.buf, `  <text x="%.2f" y="%.2f" font-size="%.0f" text-anchor="middle" fill="%s">%s</text>`+"\n",
				cx, cy+float64(i)*28, size, c.theme.Muted, esc(line))
		}
	}
	if c.noOverlay {
		return
	}

	c.buf.WriteString(`  <g class="overlay">` + "\n")
	for _, ctl := range o.Controls {
		r := ctl.Rect
		fmt.Fprintf(&c.buf, `    <g class="control" data-command="%s"><title>%s</title>`, ctl.Kind, esc(ctl.Title))
		fmt.Fprintf(&c.buf, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.1f" fill="%s" stroke="%s"/>`,
			r.X, r.Y, r.W, r.H, r.W/2, c.theme.Surface, c.theme.CardStroke)
		fmt.Fprintf(&c.buf, `<text x="%.1f" y="%.1f" font-size="14" text-anchor="middle" dominant-baseline="central" fill="%s">%s</text></g>`+"\n",
			r.Center().X, r.Center().Y, c.theme.Text, esc(ctl.Icon))
	}

	z := o.ZoomRect
	fmt.Fprintf(&c.buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="8" fill="%s" stroke="%s"/>`+"\n",
		z.X, z.Y, z.W, z.H, c.theme.Surface, c.theme.CardStroke)
	fmt.Fprintf(&c.buf, `    <text x="%.1f" y="%.1f" font-size="12" text-anchor="middle" dominant-baseline="central" fill="%s">%s</text>`+"\n",
		z.Center().X, z.Center().Y, c.theme.Text, esc(o.ZoomLabel))

	if len(o.Legend) > 0 {
		l := o.LegendRect
		fmt.Fprintf(&c.buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="8" fill="%s" stroke="%s"/>`+"\n",
			l.X, l.Y, l.W, l.H, c.theme.Surface, c.theme.CardStroke)
		fmt.Fprintf(&c.buf, `    <text x="%.1f" y="%.1f" font-size="14" font-weight="600" fill="%s">Legend</text>`+"\n",
			l.X+padding, l.Y+scene.LegendLine+4, c.theme.Text)
		for i, line := range o.Legend {
			fmt.Fprintf(&c.buf, `    <text x="%.1f" y="%.1f" font-size="12" fill="%s">%s</text>`+"\n",
				l.X+padding, l.Y+float64(i+2)*scene.LegendLine+4, c.theme.Muted, esc(line))
		}
	}
	c.buf.WriteString("  </g>\n")
}

func esc(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
