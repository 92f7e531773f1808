package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"image/color"
)

// DefaultPalette colours cells by section, cycling.
var DefaultPalette = []string{"#93c5fd", "#86efac", "#fcd34d", "#f9a8d4", "#c4b5fd", "#fdba74"}

const (
	headerFill    = "#334155"
	headerText    = "#f8fafc"
	cellText      = "#0f172a"
	viewportColor = "#e11d48"
	focusColor    = "#f59e0b"
	targetColor   = "#64748b"
	background    = "#ffffff"

	defaultMargin = 24.0
)

func sectionColor(palette []string, section int) string {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	return palette[section%len(palette)]
}

// parseHex converts "#rrggbb" to a colour. Malformed input yields black.
func parseHex(s string) color.RGBA {
	c := color.RGBA{A: 0xff}
	if len(s) != 7 || s[0] != '#' {
		return c
	}
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return color.RGBA{A: 0xff}
	}
	return c
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
