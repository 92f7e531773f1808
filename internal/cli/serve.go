package cli

import (
	"context"
	"fmt"
	"net"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/hsticky/pkg/server"
)

// serveCommand creates the serve command exposing an engine over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noAnimate bool
		flags     engineFlags
	)

	cmd := &cobra.Command{
		Use:   "serve [scenario.toml]",
		Short: "Serve a scenario's engine over HTTP",
		Long: `Serve a scenario's engine over HTTP.

Clients query extents, elements, positions and header targets and drive the
engine by posting viewport changes, focus changes and ticks. Unless
--no-animate is set the springs also run in the background at the configured
frame rate.

Endpoints:
  GET  /extent                       GET  /headers
  GET  /elements?x=&y=&w=&h=         GET  /snapshot?format=json|svg|png
  GET  /positions/{kind}/{s}/{i}     POST /viewport, /tick?n=, /settle
  POST /focus, DELETE /focus`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), args[0], addr, !noAnimate, flags)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noAnimate, "no-animate", false, "only advance springs on POST /tick")
	addEngineFlags(cmd, &flags)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, input, addr string, animate bool, flags engineFlags) error {
	logger := commandLogger(ctx, "serve")

	sc, err := loadScenario(logger, input, flags)
	if err != nil {
		return fmt.Errorf("load scenario %s: %w", input, err)
	}
	eng, err := prepareEngine(logger, sc, sc.Offsets()[0])
	if err != nil {
		return err
	}

	srv := server.New(eng,
		server.WithLogger(logger),
		server.WithLabeler(sc.Label),
		server.WithName(sc.Name))

	printSuccess("Serving %s on %s", StyleTitle.Render(sc.Name), StyleHighlight.Render(addr))
	printDetail("%d sections · extent %.0f × %.0f", len(sc.Sections), eng.ContentExtent().Width, eng.ContentExtent().Height)
	printNextStep("Try", "curl http://localhost"+portOf(addr)+"/headers")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.ListenAndServe(gctx, addr, srv, logger) })
	if animate {
		g.Go(func() error { return srv.Animate(gctx) })
	}
	return g.Wait()
}

// portOf returns the ":port" part of a listen address.
func portOf(addr string) string {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return ""
	}
	return ":" + port
}
