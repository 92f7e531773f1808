package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/hsticky/pkg/engine"
	"github.com/matzehuels/hsticky/pkg/errors"
	"github.com/matzehuels/hsticky/pkg/render"
	"github.com/matzehuels/hsticky/pkg/render/sink"
	"github.com/matzehuels/hsticky/pkg/scenario"
)

// simulateOpts holds the command-line flags for the simulate command.
type simulateOpts struct {
	outDir  string    // directory receiving the frames
	formats []string  // output formats: "svg", "png", "json"
	offsets []float64 // scroll script; empty uses the scenario's
	frames  int       // ticks per step; 0 runs until settled
	every   int       // also capture every N ticks; 0 captures step ends only
	scale   float64   // PNG pixel density
	targets bool      // draw target outlines of moving elements
	flags   engineFlags
}

// simulateCommand creates the simulate command that plays a scroll script.
func (c *CLI) simulateCommand() *cobra.Command {
	var formatsStr, offsetsStr string
	opts := simulateOpts{outDir: ".", scale: 1}

	cmd := &cobra.Command{
		Use:   "simulate [scenario.toml]",
		Short: "Play a scroll script and write the animated frames",
		Long: `Play a scroll script and write the animated frames.

Each scroll offset is applied as a viewport change, then the springs are
ticked until everything settles (or for --frames ticks). The state at the end
of each step is written in every requested format; --every N additionally
captures intermediate frames.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			offsets, err := parseOffsets(offsetsStr)
			if err != nil {
				return err
			}
			opts.offsets = offsets
			if opts.frames < 0 || opts.every < 0 {
				return errors.New(errors.ErrCodeInvalidInput, "--frames and --every must not be negative")
			}
			return c.runSimulate(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outDir, "output", "o", opts.outDir, "output directory")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, json (comma-separated)")
	cmd.Flags().StringVar(&offsetsStr, "offsets", "", "scroll offsets, e.g. 0,40,100 (default: the scenario's scroll script)")
	cmd.Flags().IntVar(&opts.frames, "frames", 0, "ticks per step (0: until settled)")
	cmd.Flags().IntVar(&opts.every, "every", 0, "also capture every N ticks")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.targets, "targets", false, "outline the targets of moving elements")
	addEngineFlags(cmd, &opts.flags)

	return cmd
}

// runSimulate drives the engine through the scroll script and writes frames.
func (c *CLI) runSimulate(ctx context.Context, input string, opts simulateOpts) error {
	logger := commandLogger(ctx, "simulate")

	sc, err := loadScenario(logger, input, opts.flags)
	if err != nil {
		return fmt.Errorf("load scenario %s: %w", input, err)
	}
	if len(opts.offsets) == 0 {
		opts.offsets = sc.Offsets()
	}

	prog := newProgress(logger)
	eng, err := prepareEngine(logger, sc, opts.offsets[0])
	if err != nil {
		return err
	}
	snaps, err := playScript(ctx, logger, sc, eng, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Simulated %d steps, %d snapshots", len(opts.offsets), len(snaps)))

	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	paths, err := writeSnapshots(ctx, opts, base, snaps)
	if err != nil {
		return err
	}

	printSuccess("Wrote %d files to %s", len(paths), opts.outDir)
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

// playScript applies every offset in turn and captures the resulting frames.
func playScript(ctx context.Context, logger *log.Logger, sc *scenario.Scenario, eng *engine.Engine, opts simulateOpts) ([]render.Snapshot, error) {
	frame := 0
	capture := func() render.Snapshot {
		return render.Capture(eng, render.WithName(sc.Name), render.WithFrame(frame), render.WithLabeler(sc.Label))
	}

	var snaps []render.Snapshot
	for step, x := range opts.offsets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		eng.ViewportChanged(sc.Bounds(x))

		limit := opts.frames
		if limit == 0 {
			limit = maxSettleFrames
		}
		ticks := 0
		for ticks < limit && (opts.frames > 0 || !eng.Settled()) {
			eng.Tick()
			ticks++
			frame++
			if opts.every > 0 && ticks%opts.every == 0 && ticks < limit {
				snaps = append(snaps, capture())
			}
		}
		if opts.frames == 0 && !eng.Settled() {
			printWarning("step %d (x=%g) did not settle within %d frames", step, x, maxSettleFrames)
		}
		logger.Debug("step", "n", step, "x", x, "ticks", ticks, "settled", eng.Settled())
		snaps = append(snaps, capture())
	}
	return snaps, nil
}

// writeSnapshots encodes every snapshot in every format concurrently and
// returns the written paths in order. Files are numbered by snapshot index.
func writeSnapshots(ctx context.Context, opts simulateOpts, base string, snaps []render.Snapshot) ([]string, error) {
	if err := errors.ValidateOutputPath(opts.outDir); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", opts.outDir, err)
	}

	total := len(snaps) * len(opts.formats)
	spinner := newSpinner(ctx, fmt.Sprintf("Writing %d files...", total))
	spinner.Start()
	defer spinner.Stop()

	var (
		mu      sync.Mutex
		paths   []string
		written atomic.Int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, snap := range snaps {
		for _, format := range opts.formats {
			path := filepath.Join(opts.outDir, fmt.Sprintf("%s-%04d.%s", base, i, format))
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				data, err := encodeSnapshot(snap, format, opts)
				if err != nil {
					return fmt.Errorf("encode %s: %w", path, err)
				}
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				n := written.Add(1)
				spinner.SetMessage("Writing files... %d/%d", n, total)
				mu.Lock()
				paths = append(paths, path)
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	slices.Sort(paths)
	return paths, nil
}

func encodeSnapshot(snap render.Snapshot, format string, opts simulateOpts) ([]byte, error) {
	switch format {
	case FormatSVG:
		var svgOpts []sink.SVGOption
		if opts.targets {
			svgOpts = append(svgOpts, sink.WithTargets())
		}
		return sink.RenderSVG(snap, svgOpts...), nil
	case FormatPNG:
		pngOpts := []sink.PNGOption{sink.WithScale(opts.scale)}
		if opts.targets {
			pngOpts = append(pngOpts, sink.WithPNGTargets())
		}
		return sink.RenderPNG(snap, pngOpts...)
	case FormatJSON:
		var jsonOpts []sink.JSONOption
		if opts.targets {
			jsonOpts = append(jsonOpts, sink.WithJSONTargets())
		}
		return sink.RenderJSON(snap, jsonOpts...)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
}
