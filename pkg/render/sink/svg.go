package sink

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/hsticky/pkg/geom"
	"github.com/matzehuels/hsticky/pkg/render"
)

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	targets  bool
	viewport bool
	labels   bool
	margin   float64
	palette  []string
}

// WithTargets draws a dashed outline at the target of every element that is
// still moving.
func WithTargets() SVGOption { return func(r *svgRenderer) { r.targets = true } }

// WithoutViewport omits the viewport outline.
func WithoutViewport() SVGOption { return func(r *svgRenderer) { r.viewport = false } }

// WithoutLabels omits element labels.
func WithoutLabels() SVGOption { return func(r *svgRenderer) { r.labels = false } }

// WithMargin sets the padding around the drawing.
func WithMargin(m float64) SVGOption { return func(r *svgRenderer) { r.margin = m } }

// WithPalette sets the cell colours, cycled by section.
func WithPalette(colors ...string) SVGOption { return func(r *svgRenderer) { r.palette = colors } }

// RenderSVG draws the snapshot.
func RenderSVG(s render.Snapshot, opts ...SVGOption) []byte {
	r := svgRenderer{viewport: true, labels: true, margin: defaultMargin}
	for _, opt := range opts {
		opt(&r)
	}

	box := s.Bounds()
	m := r.margin
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		box.X-m, box.Y-m, box.Width+2*m, box.Height+2*m, box.Width+2*m, box.Height+2*m)
	if s.Name != "" {
		fmt.Fprintf(&buf, "  <title>%s (frame %d)</title>\n", escapeXML(s.Name), s.Frame)
	}
	fmt.Fprintf(&buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
		box.X-m, box.Y-m, box.Width+2*m, box.Height+2*m, background)

	if r.targets {
		for _, el := range s.Elements {
			if el.Moving() {
				writeRect(&buf, "target", el.Target, `fill="none" stroke="`+targetColor+`" stroke-dasharray="4 3"`)
			}
		}
	}

	for _, el := range s.Cells() {
		frame := el.Frame
		stroke := ""
		if s.IsFocused(el) {
			frame = s.FocusFrame
			stroke = ` stroke="` + focusColor + `" stroke-width="2"`
		}
		fill := sectionColor(r.palette, el.Key.Path.Section)
		writeRect(&buf, "cell", frame, fmt.Sprintf(`id="cell-%d-%d" fill="%s" rx="4"%s`,
			el.Key.Path.Section, el.Key.Path.Item, fill, stroke))
		if r.labels {
			writeLabel(&buf, frame, el.Label, cellText)
		}
	}

	// Headers draw over cells.
	for _, el := range s.Headers() {
		writeRect(&buf, "header", el.Frame, fmt.Sprintf(`id="header-%d" fill="%s" rx="3"`, el.Key.Path.Section, headerFill))
		if r.labels {
			writeLabel(&buf, el.Frame, el.Label, headerText)
		}
	}

	if r.viewport {
		writeRect(&buf, "viewport", s.Viewport, `fill="none" stroke="`+viewportColor+`" stroke-width="2"`)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func writeRect(buf *bytes.Buffer, class string, f geom.Rect, attrs string) {
	fmt.Fprintf(buf, `  <rect class="%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" %s/>`+"\n",
		class, f.X, f.Y, f.Width, f.Height, attrs)
}

func writeLabel(buf *bytes.Buffer, f geom.Rect, label, fill string) {
	if label == "" || f.IsEmpty() {
		return
	}
	c := f.Center()
	fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="middle" font-family="monospace" font-size="11" fill="%s">%s</text>`+"\n",
		c.X, c.Y, fill, escapeXML(label))
}
