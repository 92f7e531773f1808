// Package sink encodes render snapshots as SVG, PNG or JSON.
//
// Every sink takes a [render.Snapshot] plus functional options and returns
// bytes; writing them anywhere is the caller's business.
//
//	svg := sink.RenderSVG(snap, sink.WithTargets())
//	png, err := sink.RenderPNG(snap, sink.WithScale(2))
//	js, err := sink.RenderJSON(snap, sink.WithJSONTargets())
//
// Coordinates are content coordinates. SVG output uses a viewBox covering
// [render.Snapshot.Bounds] plus a margin, so popped headers above y=0 stay
// visible. PNG output translates the same box onto the image origin.
package sink
