package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/hsticky/pkg/engine"
	"github.com/matzehuels/hsticky/pkg/geom"
	"github.com/matzehuels/hsticky/pkg/render"
	"github.com/matzehuels/hsticky/pkg/scenario"
)

// Content units per terminal cell.
const (
	pxPerCol = 4.0
	pxPerRow = 8.0
)

// Preview styles
var (
	previewHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(colorWhite).Background(lipgloss.Color("238"))
	previewFocusStyle  = lipgloss.NewStyle().Foreground(colorYellow)
	previewHelpStyle   = lipgloss.NewStyle().Foreground(colorDim)
)

// previewCommand creates the interactive preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		step  float64
		flags engineFlags
	)

	cmd := &cobra.Command{
		Use:   "preview [scenario.toml]",
		Short: "Scroll a scenario interactively in the terminal",
		Long: `Scroll a scenario interactively in the terminal.

The viewport is drawn as a character grid and the springs run live, so
headers can be watched sliding and being pushed along.

Keys: ←/→ (h/l) scroll, home/end jump, f focus the centre cell, s settle, q quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPreview(cmd.Context(), args[0], step, flags)
		},
	}

	cmd.Flags().Float64Var(&step, "step", 20, "scroll distance per key press")
	addEngineFlags(cmd, &flags)

	return cmd
}

func (c *CLI) runPreview(ctx context.Context, input string, step float64, flags engineFlags) error {
	logger := commandLogger(ctx, "preview")
	sc, err := loadScenario(logger, input, flags)
	if err != nil {
		return fmt.Errorf("load scenario %s: %w", input, err)
	}

	// The alternate screen owns the terminal; engine diagnostics would
	// corrupt it.
	eng, err := prepareEngine(log.New(io.Discard), sc, sc.Offsets()[0])
	if err != nil {
		return err
	}

	m := newPreviewModel(sc, eng, step)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// =============================================================================
// previewModel - live viewport
// =============================================================================

type previewTickMsg time.Time

type previewModel struct {
	sc      *scenario.Scenario
	eng     *engine.Engine
	scrollX float64
	step    float64
	maxX    float64
	fps     int
	frames  int
	width   int
}

func newPreviewModel(sc *scenario.Scenario, eng *engine.Engine, step float64) previewModel {
	if step <= 0 {
		step = 20
	}
	return previewModel{
		sc:      sc,
		eng:     eng,
		scrollX: eng.Bounds().X,
		step:    step,
		maxX:    max(0, eng.ContentExtent().Width-sc.Viewport.Width),
		fps:     eng.Config().Spring.FPS,
	}
}

func (m previewModel) Init() tea.Cmd {
	return m.tick()
}

func (m previewModel) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg {
		return previewTickMsg(t)
	})
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			m = m.scrollTo(m.scrollX - m.step)
		case "right", "l":
			m = m.scrollTo(m.scrollX + m.step)
		case "home":
			m = m.scrollTo(0)
		case "end":
			m = m.scrollTo(m.maxX)
		case "f":
			m.toggleFocus()
		case "s":
			m.eng.Settle()
		}
	case previewTickMsg:
		if m.eng.Tick() {
			m.frames++
		}
		return m, m.tick()
	case tea.WindowSizeMsg:
		m.width = msg.Width
	}
	return m, nil
}

func (m previewModel) scrollTo(x float64) previewModel {
	m.scrollX = min(max(x, 0), m.maxX)
	m.eng.ViewportChanged(m.sc.Bounds(m.scrollX))
	return m
}

// toggleFocus clears the focus, or focuses the cell closest to the centre of
// the viewport.
func (m previewModel) toggleFocus() {
	if _, _, ok := m.eng.Focused(); ok {
		m.eng.ClearFocus()
		return
	}
	cache := m.eng.StaticLayout()
	if cache == nil || cache.Len() == 0 {
		return
	}
	center := m.scrollX + m.sc.Viewport.Width/2
	items := cache.Items()
	best := items[0]
	for _, it := range items[1:] {
		if math.Abs(it.Frame.Center().X-center) < math.Abs(best.Frame.Center().X-center) {
			best = it
		}
	}
	m.eng.Focus(best.Path, 0)
}

func (m previewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.sc.Name))
	b.WriteString("\n\n")

	cols := int(m.sc.Viewport.Width / pxPerCol)
	if m.width > 2 {
		cols = min(cols, m.width-2)
	}
	rows := int(math.Ceil(m.sc.Viewport.Height / pxPerRow))
	snap := render.Capture(m.eng, render.WithLabeler(m.sc.Label))
	b.WriteString(drawGrid(rasterize(snap, max(cols, 1), max(rows, 1))))
	b.WriteString("\n")

	state, stateStyle := iconMoving, styleMoving
	if m.eng.Settled() {
		state, stateStyle = iconSettled, styleSettled
	}
	fmt.Fprintf(&b, "%s  %s  %s\n",
		StyleNumber.Render(fmt.Sprintf("x=%.0f/%.0f", m.scrollX, m.maxX)),
		StyleDim.Render(fmt.Sprintf("frame %d", m.frames)),
		stateStyle.Render(state))
	b.WriteString(previewHelpStyle.Render("←/→ scroll  home/end jump  f focus  s settle  q quit"))
	return b.String()
}

// =============================================================================
// Rasteriser
// =============================================================================

type gridKind int

const (
	gridEmpty gridKind = iota
	gridCell
	gridFocus
	gridHeader
)

type gridCellState struct {
	ch      rune
	kind    gridKind
	section int
}

// rasterize maps the snapshot's viewport onto a cols×rows character grid.
// Rows start at the higher of the viewport top and the highest element, so
// popped headers stay on screen.
func rasterize(snap render.Snapshot, cols, rows int) [][]gridCellState {
	grid := make([][]gridCellState, rows)
	for r := range grid {
		grid[r] = make([]gridCellState, cols)
		for c := range grid[r] {
			grid[r][c].ch = ' '
		}
	}
	view := snap.Viewport
	if view.IsEmpty() {
		return grid
	}

	top := min(view.MinY(), snap.Bounds().MinY())
	sx := view.Width / float64(cols)
	sy := (view.MaxY() - top) / float64(rows)

	paint := func(f geom.Rect, kind gridKind, section int, fill rune, label string) {
		c0 := max(int(math.Floor((f.MinX()-view.X)/sx)), 0)
		c1 := min(int(math.Ceil((f.MaxX()-view.X)/sx)), cols)
		r0 := max(int(math.Floor((f.MinY()-top)/sy)), 0)
		r1 := min(int(math.Ceil((f.MaxY()-top)/sy)), rows)
		if c0 >= c1 || r0 >= r1 {
			return
		}
		for r := r0; r < r1; r++ {
			for c := c0; c < c1; c++ {
				grid[r][c] = gridCellState{ch: fill, kind: kind, section: section}
			}
		}
		runes := []rune(label)
		if len(runes) > c1-c0 {
			runes = runes[:c1-c0]
		}
		row := (r0 + r1 - 1) / 2
		start := c0 + (c1-c0-len(runes))/2
		for i, ch := range runes {
			grid[row][start+i].ch = ch
		}
	}

	for _, el := range snap.Cells() {
		if snap.IsFocused(el) {
			paint(snap.FocusFrame, gridFocus, el.Key.Path.Section, '█', el.Label)
			continue
		}
		paint(el.Frame, gridCell, el.Key.Path.Section, '▒', el.Label)
	}
	for _, el := range snap.Headers() {
		paint(el.Frame, gridHeader, el.Key.Path.Section, ' ', el.Label)
	}
	return grid
}

// drawGrid renders the grid, styling runs of equal kind and section together.
func drawGrid(grid [][]gridCellState) string {
	var b strings.Builder
	for _, row := range grid {
		b.WriteString(" ")
		for i := 0; i < len(row); {
			j := i
			var run strings.Builder
			for j < len(row) && row[j].kind == row[i].kind && row[j].section == row[i].section {
				run.WriteRune(row[j].ch)
				j++
			}
			b.WriteString(gridStyle(row[i]).Render(run.String()))
			i = j
		}
		b.WriteString("\n")
	}
	return b.String()
}

func gridStyle(c gridCellState) lipgloss.Style {
	switch c.kind {
	case gridCell:
		return lipgloss.NewStyle().Foreground(sectionColor(c.section))
	case gridFocus:
		return previewFocusStyle
	case gridHeader:
		return previewHeaderStyle
	}
	return lipgloss.NewStyle()
}
