// Package pkg provides the core libraries for hsticky, a horizontal
// sticky-header collection layout with spring-animated elements.
//
// # Overview
//
// hsticky lays out sections of items left to right, keeps each section's
// header pinned to the leading edge of the viewport until the section's last
// item pushes it out, and moves every on-screen element towards its target
// frame with a critically damped spring. The pkg directory is organized into
// three areas:
//
//  1. Engine core - [geom], [layout], [header], [physics], [attach] and the
//     [engine] facade that ties them together
//  2. Ambient support - [errors], [observability], [buildinfo]
//  3. Tooling - [scenario] files, [render] snapshots and sinks, and the HTTP
//     inspection [server]
//
// # Architecture
//
// The data flow of one layout pass:
//
//	layout.DataSource + layout.Delegate
//	         ↓
//	    [layout] package (static item frames, section spans)
//	         ↓
//	    [header] package (sticky header targets for the scroll offset)
//	         ↓
//	    [attach] package (attach, retarget and detach springs)
//	         ↓
//	    [physics] package (per-frame spring integration)
//
// Scrolling only reruns the header and attachment steps; the static layout is
// rebuilt by [engine.Engine.Prepare] alone.
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/hsticky/pkg/engine"
//	    "github.com/matzehuels/hsticky/pkg/geom"
//	)
//
//	eng := engine.New(engine.DefaultConfig(),
//	    engine.WithDataSource(source),
//	    engine.WithDelegate(delegate),
//	)
//	if err := eng.Prepare(geom.Rect{Width: 320, Height: 120}); err != nil {
//	    return err
//	}
//
//	eng.ViewportChanged(geom.Rect{X: 40, Width: 320, Height: 120})
//	for eng.Tick() {
//	    // draw eng.ElementsInRect(eng.Bounds())
//	}
//
// Scenario files describe a data source, delegate and scroll script in TOML
// and are the quickest way to drive an engine:
//
//	sc, err := scenario.Load("shelf.toml")
//	eng := sc.NewEngine()
//	err = eng.Prepare(sc.Bounds(0))
//
// # Concurrency
//
// An [engine.Engine] is not safe for concurrent use. The [server] package
// serialises requests and its animation loop behind a mutex.
//
// [geom]: https://pkg.go.dev/github.com/matzehuels/hsticky/pkg/geom
// [layout]: https://pkg.go.dev/github.com/matzehuels/hsticky/pkg/layout
// [header]: https://pkg.go.dev/github.com/matzehuels/hsticky/pkg/header
// [physics]: https://pkg.go.dev/github.com/matzehuels/hsticky/pkg/physics
// [attach]: https://pkg.go.dev/github.com/matzehuels/hsticky/pkg/attach
// [engine]: https://pkg.go.dev/github.com/matzehuels/hsticky/pkg/engine
// [errors]: https://pkg.go.dev/github.com/matzehuels/hsticky/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/hsticky/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/hsticky/pkg/buildinfo
// [scenario]: https://pkg.go.dev/github.com/matzehuels/hsticky/pkg/scenario
// [render]: https://pkg.go.dev/github.com/matzehuels/hsticky/pkg/render
// [server]: https://pkg.go.dev/github.com/matzehuels/hsticky/pkg/server
package pkg
