package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/hsticky/pkg/engine"
	"github.com/matzehuels/hsticky/pkg/errors"
	"github.com/matzehuels/hsticky/pkg/geom"
	"github.com/matzehuels/hsticky/pkg/scenario"
)

// layoutOutput is the JSON written by layout -o.
type layoutOutput struct {
	Name    string         `json:"name"`
	ScrollX float64        `json:"scroll_x"`
	Extent  geom.Size      `json:"extent"`
	Items   []layoutItem   `json:"items"`
	Headers []layoutHeader `json:"headers"`
}

type layoutItem struct {
	Section int       `json:"section"`
	Item    int       `json:"item"`
	Frame   geom.Rect `json:"frame"`
}

type layoutHeader struct {
	Section int       `json:"section"`
	Title   string    `json:"title"`
	Frame   geom.Rect `json:"frame"`
	Pinned  bool      `json:"pinned"`
	Popped  bool      `json:"popped"`
}

// layoutCommand creates the layout command for printing the static layout.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		outPath string
		offset  float64
		flags   engineFlags
		noTable bool
	)

	cmd := &cobra.Command{
		Use:   "layout [scenario.toml]",
		Short: "Print the static layout and sticky header positions of a scenario",
		Long: `Print the static layout and sticky header positions of a scenario.

Every item frame is listed in section order together with the target frame of
each section header at the given scroll offset. With -o the same data is
written as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], offset, outPath, flags, noTable)
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write the layout as JSON to this file")
	cmd.Flags().Float64Var(&offset, "offset", 0, "horizontal scroll offset for header targets")
	cmd.Flags().BoolVar(&noTable, "no-table", false, "only print the summary")
	addEngineFlags(cmd, &flags)

	return cmd
}

// runLayout loads the scenario, runs one layout pass and reports it.
func (c *CLI) runLayout(ctx context.Context, input string, offset float64, outPath string, flags engineFlags, noTable bool) error {
	logger := commandLogger(ctx, "layout")
	prog := newProgress(logger)

	sc, err := loadScenario(logger, input, flags)
	if err != nil {
		return fmt.Errorf("load scenario %s: %w", input, err)
	}
	eng, err := prepareEngine(logger, sc, offset)
	if err != nil {
		return err
	}
	out := buildLayoutOutput(sc, eng, offset)
	prog.done(fmt.Sprintf("Laid out %d items", len(out.Items)))

	printSuccess("%s", StyleTitle.Render(sc.Name))
	printKeyValue("extent", fmt.Sprintf("%.1f × %.1f", out.Extent.Width, out.Extent.Height))
	printKeyValue("viewport", fmt.Sprintf("%.1f × %.1f at x=%.1f", sc.Viewport.Width, sc.Viewport.Height, offset))
	printKeyValue("visibility", eng.Config().Visibility.String())
	printStats(len(out.Items), len(out.Headers), len(eng.AttachedKeys()), eng.Settled())

	if !noTable {
		printNewline()
		fmt.Fprintln(output, itemTable(out))
		printNewline()
		fmt.Fprintln(output, headerTable(out))
	}

	if outPath != "" {
		if err := writeLayoutJSON(outPath, out); err != nil {
			return err
		}
		printFile(outPath)
	} else {
		printNextStep("Animate the scroll script", appName+" simulate "+input)
	}
	return nil
}

func buildLayoutOutput(sc *scenario.Scenario, eng *engine.Engine, offset float64) layoutOutput {
	out := layoutOutput{Name: sc.Name, ScrollX: offset, Extent: eng.ContentExtent()}
	for _, it := range eng.StaticLayout().Items() {
		out.Items = append(out.Items, layoutItem{Section: it.Path.Section, Item: it.Path.Item, Frame: it.Frame})
	}
	for _, t := range eng.HeaderTargets() {
		out.Headers = append(out.Headers, layoutHeader{
			Section: t.Section,
			Title:   sc.Title(t.Section),
			Frame:   t.Frame,
			Pinned:  t.Pinned(),
			Popped:  t.Popped,
		})
	}
	return out
}

func writeLayoutJSON(path string, out layoutOutput) error {
	if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

var tableHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)

func itemTable(out layoutOutput) string {
	rows := make([][]string, 0, len(out.Items))
	for _, it := range out.Items {
		rows = append(rows, []string{
			strconv.Itoa(it.Section), strconv.Itoa(it.Item),
			num(it.Frame.X), num(it.Frame.Y), num(it.Frame.Width), num(it.Frame.Height),
		})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Section", "Item", "X", "Y", "Width", "Height").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return tableHeaderStyle
			}
			if col < 2 {
				return lipgloss.NewStyle().Foreground(sectionColor(out.Items[row].Section))
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}

func headerTable(out layoutOutput) string {
	rows := make([][]string, 0, len(out.Headers))
	for _, h := range out.Headers {
		state := "pushed"
		if h.Pinned {
			state = "pinned"
		}
		if h.Popped {
			state += ", popped"
		}
		rows = append(rows, []string{strconv.Itoa(h.Section), h.Title, num(h.Frame.X), num(h.Frame.Y), state})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Section", "Header", "X", "Y", "State").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return tableHeaderStyle
			}
			if col == 4 {
				return StyleDim
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
