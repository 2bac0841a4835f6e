package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/schematic/pkg/collection"
	"github.com/matzehuels/schematic/pkg/graph"
	"github.com/matzehuels/schematic/pkg/pipeline"
	"github.com/matzehuels/schematic/pkg/render/term"
	"github.com/matzehuels/schematic/pkg/schematic"
	"github.com/matzehuels/schematic/pkg/schematic/interact"
	"github.com/matzehuels/schematic/pkg/schematic/scene"
	"github.com/matzehuels/schematic/pkg/schematic/viewport"
)

// Status bar styles
var (
	viewBarStyle  = lipgloss.NewStyle().Foreground(colorGray)
	viewKeyStyle  = lipgloss.NewStyle().Foreground(colorCyan)
	viewNavStyle  = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	viewErrStyle  = lipgloss.NewStyle().Foreground(colorRed)
	viewHelpLines = []string{
		"drag  pan", "wheel  zoom", "click  open collection",
		"+/-  zoom", "0  reset", "f  fit", "l  relayout", "r  reload", "arrows  pan", "q  quit",
	}
)

const (
	wheelStep = 100.0 // DeltaY of one wheel notch
	panCells  = 4     // arrow key pan distance in cells
)

// =============================================================================
// viewModel - Interactive terminal canvas
// =============================================================================

// reloadFunc refetches the collection list, bypassing the cache.
type reloadFunc func(context.Context) ([]collection.Collection, error)

// reloadedMsg carries the result of a reload.
type reloadedMsg struct {
	collections []collection.Collection
	err         error
}

// viewModel is the bubbletea model behind `schematic view`. The terminal is
// the canvas: each cell covers cellW x cellH screen pixels, so mouse cells
// map to the same screen coordinates the SVG canvas uses.
type viewModel struct {
	ctx     context.Context
	d       *schematic.Diagram
	reload  reloadFunc // nil when viewing a layout document
	console string
	pick    bool
	fitted  bool // keep the view from flags instead of fitting on first resize

	cellW, cellH  float64
	cols, rows    int
	sized         bool
	pressedButton bool // left press landed on an overlay control
	pressedCanvas bool // left press landed on the canvas
	help          bool
	loading       bool

	status string
	nav    *interact.Navigate
	err    error
}

func newViewModel(ctx context.Context, d *schematic.Diagram, reload reloadFunc) *viewModel {
	return &viewModel{
		ctx:    ctx,
		d:      d,
		reload: reload,
		cellW:  term.DefaultCellWidth,
		cellH:  term.DefaultCellHeight,
	}
}

func (m *viewModel) Init() tea.Cmd {
	return nil
}

func (m *viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		return m, m.key(msg)
	case tea.MouseMsg:
		return m, m.mouse(msg)
	case reloadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			break
		}
		m.err = nil
		m.d.Rebuild(msg.collections)
		m.status = fmt.Sprintf("reloaded %s", plural(len(msg.collections), "collection"))
	}
	return m, nil
}

// resize maps the terminal to the canvas. The last row holds the status bar.
func (m *viewModel) resize(width, height int) {
	m.cols, m.rows = width, max(height-1, 1)
	m.d.Resize(viewport.Size{W: float64(m.cols) * m.cellW, H: float64(m.rows) * m.cellH})
	if !m.sized && !m.fitted {
		m.d.Fit()
	}
	m.sized = true
}

func (m *viewModel) key(msg tea.KeyMsg) tea.Cmd {
	step := viewport.Point{}
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return tea.Quit
	case "+", "=":
		m.command(interact.KindZoomIn)
	case "-", "_":
		m.command(interact.KindZoomOut)
	case "0":
		m.command(interact.KindReset)
	case "f":
		m.command(interact.KindFit)
	case "l":
		m.command(interact.KindRelayout)
	case "r":
		return m.startReload()
	case "?":
		m.help = !m.help
	case "left", "h":
		step.X = panCells * m.cellW
	case "right":
		step.X = -panCells * m.cellW
	case "up", "k":
		step.Y = panCells * m.cellH
	case "down", "j":
		step.Y = -panCells * m.cellH
	}
	if step != (viewport.Point{}) {
		m.d.Viewport().PanBy(step)
	}
	return nil
}

func (m *viewModel) command(kind interact.Kind) {
	m.d.Handle(interact.Event{Kind: kind})
}

func (m *viewModel) startReload() tea.Cmd {
	if m.reload == nil {
		m.status = "nothing to reload: viewing a layout document"
		return nil
	}
	if m.loading {
		return nil
	}
	m.loading = true
	m.status = "reloading..."
	reload, ctx := m.reload, m.ctx
	return func() tea.Msg {
		cs, err := reload(ctx)
		return reloadedMsg{collections: cs, err: err}
	}
}

// mouse turns terminal mouse events into canvas input. The release of a
// left press on the canvas is followed by a click at the same point, as a
// browser would deliver it; the input machine discards that click when the
// press turned into a pan. Releases carry no button, so other buttons are
// dropped at the release.
func (m *viewModel) mouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Y >= m.rows {
		return nil
	}
	p := viewport.Point{X: (float64(msg.X) + 0.5) * m.cellW, Y: (float64(msg.Y) + 0.5) * m.cellH}
	ev := interact.Event{X: p.X, Y: p.Y}

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		ev.Kind, ev.DeltaY = interact.KindWheel, -wheelStep
	case msg.Button == tea.MouseButtonWheelDown:
		ev.Kind, ev.DeltaY = interact.KindWheel, wheelStep
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if kind, ok := scene.Build(m.d).ControlAt(p); ok {
			m.pressedButton = true
			m.command(kind)
			return nil
		}
		m.pressedCanvas = true
		ev.Kind = interact.KindPointerDown
	case msg.Action == tea.MouseActionMotion:
		ev.Kind = interact.KindPointerMove
	case msg.Action == tea.MouseActionRelease:
		if m.pressedButton {
			m.pressedButton = false
			return nil
		}
		if !m.pressedCanvas {
			return nil
		}
		m.pressedCanvas = false
		now := time.Now()
		m.d.Handle(interact.Event{Kind: interact.KindPointerUp, Time: now})
		ev.Kind, ev.Time = interact.KindClick, now
	default:
		return nil
	}

	if nav, ok := m.d.Handle(ev); ok {
		return m.navigate(nav)
	}
	return nil
}

func (m *viewModel) navigate(nav interact.Navigate) tea.Cmd {
	m.nav = &nav
	m.status = "→ " + m.target(nav)
	if m.pick {
		return tea.Quit
	}
	return nil
}

// target is the console URL for nav, or its path without a console.
func (m *viewModel) target(nav interact.Navigate) string {
	if m.console == "" {
		return nav.Path()
	}
	return strings.TrimRight(m.console, "/") + nav.Path()
}

func (m *viewModel) View() string {
	if !m.sized {
		return "loading..."
	}
	grid := term.Rasterize(scene.Build(m.d), term.WithCellSize(m.cellW, m.cellH))
	return grid.String(false) + "\n" + m.statusBar()
}

func (m *viewModel) statusBar() string {
	st := m.d.State()
	left := fmt.Sprintf(" %d%% · %s · %s", st.ZoomPercent, plural(st.Nodes, "collection"), st.Interaction)

	var right string
	switch {
	case m.err != nil:
		right = viewErrStyle.Render(m.err.Error())
	case m.nav != nil && strings.HasPrefix(m.status, "→"):
		right = viewNavStyle.Render(m.status)
	case m.status != "":
		right = m.status
	case m.help:
		right = strings.Join(viewHelpLines, " · ")
	default:
		right = viewKeyStyle.Render("?") + " help  " + viewKeyStyle.Render("q") + " quit"
	}

	bar := viewBarStyle.Render(left) + "   " + right
	return lipgloss.NewStyle().MaxWidth(m.cols).Render(bar)
}

// =============================================================================
// view command
// =============================================================================

// viewCommand creates the view command.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		src        sourceFlags
		layoutFile string
		console    string
		pick       bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "view [schema.json|schema.toml ...]",
		Short: "Explore the diagram in the terminal",
		Long: `Explore the diagram in the terminal.

Drag to pan, scroll to zoom and click a collection to open it. A click that
ends a drag does not open anything. Keys: +/- zoom, 0 reset, f fit,
l relayout, r reload from the source, arrows pan, q quit.

With --pick the viewer exits on the first click and prints the collection's
console URL (or path), so it can feed other commands:

  open "$(schematic view --pick --console https://console.example.com schema.json)"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd.Context(), args, &src, opts, layoutFile, console, pick)
		},
	}

	src.register(cmd)
	cmd.Flags().Float64Var(&opts.Zoom, "zoom", 0, "initial zoom (default: fit to the terminal)")
	cmd.Flags().StringVar(&layoutFile, "layout", "", "view a layout document instead of a source")
	cmd.Flags().StringVar(&console, "console", "", "console base URL shown for clicked collections")
	cmd.Flags().BoolVar(&pick, "pick", false, "exit on the first click and print its target")

	return cmd
}

func (c *CLI) runView(ctx context.Context, files []string, src *sourceFlags, opts pipeline.Options, layoutFile, console string, pick bool) error {
	if console == "" {
		console = c.Config.Server.ConsoleURL
	}

	var (
		d      *schematic.Diagram
		reload reloadFunc
		err    error
	)
	if layoutFile != "" {
		gl, err := graph.ReadLayoutFile(layoutFile)
		if err != nil {
			return fmt.Errorf("load layout %s: %w", layoutFile, err)
		}
		if opts, err = c.options(src, nil, opts, false); err != nil {
			return err
		}
		if d, err = pipeline.DiagramFromLayout(gl, opts); err != nil {
			return fmt.Errorf("load layout %s: %w", layoutFile, err)
		}
	} else {
		l, err := c.open(ctx, src, files, opts)
		if err != nil {
			return err
		}
		defer l.Close()
		if d, err = l.diagram(ctx); err != nil {
			return err
		}
		reload = func(ctx context.Context) ([]collection.Collection, error) {
			o := l.opts
			o.Refresh = true
			return l.runner.Fetch(ctx, l.src, o)
		}
	}

	m := newViewModel(ctx, d, reload)
	m.console = console
	m.pick = pick
	m.fitted = opts.Zoom > 0

	final, err := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	).Run()
	if err != nil {
		return err
	}
	if vm, ok := final.(*viewModel); ok && pick && vm.nav != nil {
		fmt.Fprintln(c.out, vm.target(*vm.nav))
	}
	return nil
}
