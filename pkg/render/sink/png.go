package sink

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/hsticky/pkg/errors"
	"github.com/matzehuels/hsticky/pkg/geom"
	"github.com/matzehuels/hsticky/pkg/render"
)

// MaxPNGDimension caps the width and height of a rendered PNG.
const MaxPNGDimension = 16384

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale   float64
	margin  float64
	targets bool
	labels  bool
	palette []string
}

// WithScale sets the pixel density (default 1).
func WithScale(s float64) PNGOption { return func(r *pngRenderer) { r.scale = s } }

// WithPNGMargin sets the padding around the drawing, in content units.
func WithPNGMargin(m float64) PNGOption { return func(r *pngRenderer) { r.margin = m } }

// WithPNGTargets outlines the target of every moving element.
func WithPNGTargets() PNGOption { return func(r *pngRenderer) { r.targets = true } }

// WithoutPNGLabels omits element labels.
func WithoutPNGLabels() PNGOption { return func(r *pngRenderer) { r.labels = false } }

// WithPNGPalette sets the cell colours, cycled by section.
func WithPNGPalette(colors ...string) PNGOption { return func(r *pngRenderer) { r.palette = colors } }

// RenderPNG rasterises the snapshot. Labels use a 7x13 bitmap font and are
// truncated to fit their element.
func RenderPNG(s render.Snapshot, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 1, margin: defaultMargin, labels: true}
	for _, opt := range opts {
		opt(&r)
	}
	if !(r.scale > 0) || math.IsInf(r.scale, 0) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "png scale must be positive, got %v", r.scale)
	}

	box := s.Bounds()
	w := int(math.Ceil((box.Width + 2*r.margin) * r.scale))
	h := int(math.Ceil((box.Height + 2*r.margin) * r.scale))
	if w <= 0 || h <= 0 || w > MaxPNGDimension || h > MaxPNGDimension {
		return nil, errors.New(errors.ErrCodeInvalidInput, "png size %dx%d out of range (max %d)", w, h, MaxPNGDimension)
	}

	c := canvas{
		img:    image.NewRGBA(image.Rect(0, 0, w, h)),
		origin: geom.Point{X: box.X - r.margin, Y: box.Y - r.margin},
		scale:  r.scale,
	}
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(parseHex(background)), image.Point{}, draw.Src)

	if r.targets {
		for _, el := range s.Elements {
			if el.Moving() {
				c.dashed(el.Target, parseHex(targetColor))
			}
		}
	}

	for _, el := range s.Cells() {
		frame := el.Frame
		if s.IsFocused(el) {
			frame = s.FocusFrame
		}
		c.fill(frame, parseHex(sectionColor(r.palette, el.Key.Path.Section)))
		if s.IsFocused(el) {
			c.stroke(frame, parseHex(focusColor), 2)
		}
		if r.labels {
			c.label(frame, el.Label, parseHex(cellText))
		}
	}
	for _, el := range s.Headers() {
		c.fill(el.Frame, parseHex(headerFill))
		if r.labels {
			c.label(el.Frame, el.Label, parseHex(headerText))
		}
	}
	c.stroke(s.Viewport, parseHex(viewportColor), 2)

	var buf bytes.Buffer
	if err := png.Encode(&buf, c.img); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

type canvas struct {
	img    *image.RGBA
	origin geom.Point
	scale  float64
}

func (c canvas) px(f geom.Rect) image.Rectangle {
	x0 := int(math.Round((f.MinX() - c.origin.X) * c.scale))
	y0 := int(math.Round((f.MinY() - c.origin.Y) * c.scale))
	x1 := int(math.Round((f.MaxX() - c.origin.X) * c.scale))
	y1 := int(math.Round((f.MaxY() - c.origin.Y) * c.scale))
	return image.Rect(x0, y0, x1, y1)
}

func (c canvas) fill(f geom.Rect, col color.Color) {
	draw.Draw(c.img, c.px(f).Intersect(c.img.Bounds()), image.NewUniform(col), image.Point{}, draw.Src)
}

func (c canvas) stroke(f geom.Rect, col color.Color, width int) {
	r := c.px(f)
	src := image.NewUniform(col)
	for _, edge := range []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width),
		image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y),
		image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y),
	} {
		draw.Draw(c.img, edge.Intersect(c.img.Bounds()), src, image.Point{}, draw.Src)
	}
}

func (c canvas) dashed(f geom.Rect, col color.Color) {
	const dash, gap = 4, 3
	r := c.px(f)
	b := c.img.Bounds()
	set := func(x, y int) {
		if (image.Point{X: x, Y: y}).In(b) {
			c.img.Set(x, y, col)
		}
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		if (x-r.Min.X)%(dash+gap) < dash {
			set(x, r.Min.Y)
			set(x, r.Max.Y-1)
		}
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		if (y-r.Min.Y)%(dash+gap) < dash {
			set(r.Min.X, y)
			set(r.Max.X-1, y)
		}
	}
}

func (c canvas) label(f geom.Rect, text string, col color.Color) {
	if text == "" || f.IsEmpty() {
		return
	}
	r := c.px(f)
	d := &font.Drawer{Dst: c.img, Src: image.NewUniform(col), Face: basicfont.Face7x13}

	runes := []rune(text)
	for len(runes) > 0 && d.MeasureString(string(runes)).Ceil() > r.Dx()-2 {
		runes = runes[:len(runes)-1]
	}
	if len(runes) == 0 {
		return
	}
	text = string(runes)

	width := d.MeasureString(text).Ceil()
	ascent := basicfont.Face7x13.Metrics().Ascent.Ceil()
	x := r.Min.X + (r.Dx()-width)/2
	y := r.Min.Y + (r.Dy()+ascent)/2
	d.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	d.DrawString(text)
}
