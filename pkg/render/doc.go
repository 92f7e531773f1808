// Package render captures the state of an engine and turns it into images
// and data files.
//
// # Overview
//
// A [Snapshot] freezes one frame: every attached element with its live and
// target frames, the viewport, the content extent and the focused cell. The
// [sink] subpackage encodes snapshots:
//
//   - SVG, with the viewport outlined and optional target ghosts
//   - PNG, rasterised directly with a bitmap font
//   - JSON, for diffing frames or feeding other tools
//
// Typical use from the simulate command:
//
//	snap := render.Capture(eng, render.WithName(sc.Name), render.WithLabeler(sc.Label))
//	svg := sink.RenderSVG(snap, sink.WithTargets())
//
// [sink]: github.com/matzehuels/hsticky/pkg/render/sink
package render
