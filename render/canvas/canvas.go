// Package canvas draws the line counter state onto any draw.Image using a
// pure Go vector rasterizer, for headless runs and tests.
package canvas

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/swdee/go-linecount/counter"
	"github.com/swdee/go-linecount/geometry"
	"github.com/swdee/go-linecount/render/palette"
	"github.com/swdee/go-linecount/tracker"
)

// Annotator draws onto a draw.Image
type Annotator struct {
	classNames []string
	// Face is the font used for labels and counters
	Face           font.Face
	TextColor      color.Color
	BoxWidth       float32
	MotionWidth    float32
	BorderColor    color.RGBA
	BorderWidth    float32
	BandHalfWidth  int
	BandAlpha      uint8
	CounterOrigin  image.Point
	CounterSpacing int
	LabelPadding   int
}

// New returns an Annotator labeling tracks with the given class names
func New(classNames []string) *Annotator {
	return &Annotator{
		classNames:     classNames,
		Face:           basicfont.Face7x13,
		TextColor:      palette.White,
		BoxWidth:       2,
		MotionWidth:    3,
		BorderColor:    palette.Border,
		BorderWidth:    3,
		BandHalfWidth:  12,
		BandAlpha:      64,
		CounterOrigin:  image.Pt(10, 10),
		CounterSpacing: 18,
		LabelPadding:   2,
	}
}

// Track draws the bounding box outline and a "<class> <id>" label above it
func (a *Annotator) Track(dst draw.Image, t tracker.Track) {

	box := t.Box()
	clr := palette.Track(t.ID)

	corners := []image.Point{
		box.Min, image.Pt(box.Max.X, box.Min.Y), box.Max, image.Pt(box.Min.X, box.Max.Y),
	}

	for i := range corners {
		strokeLine(dst, corners[i], corners[(i+1)%len(corners)], a.BoxWidth, clr)
	}

	a.label(dst, fmt.Sprintf("%s %d", a.className(t.Label), t.ID),
		box.Min, clr)
}

// Motion draws the line between the previous and current box center
func (a *Annotator) Motion(dst draw.Image, id int, from, to image.Point) {
	strokeLine(dst, from, to, a.MotionWidth, palette.Track(id))
}

// Border draws the counting line over a translucent counting zone
func (a *Annotator) Border(dst draw.Image, border geometry.Segment) {

	if band := geometry.Band(border, a.BandHalfWidth); len(band) > 2 {
		fillPolygon(dst, band, palette.Translucent(a.BorderColor, a.BandAlpha))
	}

	strokeLine(dst, border.A, border.B, a.BorderWidth, a.BorderColor)
}

// Counters writes one "<key>: <n>" line per counter in the top left corner
func (a *Annotator) Counters(dst draw.Image, s counter.Snapshot) {

	ascent := a.Face.Metrics().Ascent.Ceil()
	origin := dst.Bounds().Min.Add(a.CounterOrigin)

	for i, c := range s.Counts {
		d := &font.Drawer{
			Dst:  dst,
			Src:  image.NewUniform(a.BorderColor),
			Face: a.Face,
			Dot:  fixed.P(origin.X, origin.Y+ascent+a.CounterSpacing*i),
		}

		d.DrawString(fmt.Sprintf("%s: %d", c.Label(), c.Value))
	}
}

// label draws text on a filled background whose bottom left corner is at
// the given point
func (a *Annotator) label(dst draw.Image, text string, at image.Point, bg color.Color) {

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(a.TextColor),
		Face: a.Face,
	}

	m := a.Face.Metrics()
	width := d.MeasureString(text).Ceil()
	height := (m.Ascent + m.Descent).Ceil()
	pad := a.LabelPadding

	rect := image.Rect(at.X, at.Y-height-2*pad, at.X+width+2*pad, at.Y)
	draw.Draw(dst, rect.Intersect(dst.Bounds()), image.NewUniform(bg), image.Point{}, draw.Src)

	d.Dot = fixed.P(at.X+pad, at.Y-pad-m.Descent.Ceil())
	d.DrawString(text)
}

func (a *Annotator) className(label int) string {
	if label >= 0 && label < len(a.classNames) {
		return a.classNames[label]
	}

	return fmt.Sprintf("class%d", label)
}

// strokeLine rasterizes the line from p to q as a quad of the given width
func strokeLine(dst draw.Image, p, q image.Point, width float32, clr color.Color) {

	dx := float64(q.X - p.X)
	dy := float64(q.Y - p.Y)
	length := math.Hypot(dx, dy)

	if length == 0 || width <= 0 {
		return
	}

	// unit normal scaled to half the line width
	nx := float32(-dy/length) * width / 2
	ny := float32(dx/length) * width / 2

	b := dst.Bounds()
	ox, oy := float32(b.Min.X), float32(b.Min.Y)
	px, py := float32(p.X)+0.5-ox, float32(p.Y)+0.5-oy
	qx, qy := float32(q.X)+0.5-ox, float32(q.Y)+0.5-oy

	r := vector.NewRasterizer(b.Dx(), b.Dy())
	r.MoveTo(px+nx, py+ny)
	r.LineTo(qx+nx, qy+ny)
	r.LineTo(qx-nx, qy-ny)
	r.LineTo(px-nx, py-ny)
	r.ClosePath()
	r.Draw(dst, b, image.NewUniform(clr), image.Point{})
}

// fillPolygon rasterizes the closed polygon with the given fill
func fillPolygon(dst draw.Image, poly []image.Point, clr color.Color) {

	if len(poly) < 3 {
		return
	}

	b := dst.Bounds()
	r := vector.NewRasterizer(b.Dx(), b.Dy())

	r.MoveTo(float32(poly[0].X-b.Min.X), float32(poly[0].Y-b.Min.Y))

	for _, pt := range poly[1:] {
		r.LineTo(float32(pt.X-b.Min.X), float32(pt.Y-b.Min.Y))
	}

	r.ClosePath()
	r.Draw(dst, b, image.NewUniform(clr), image.Point{})
}

var _ counter.Annotator[draw.Image] = (*Annotator)(nil)
