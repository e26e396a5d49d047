package render

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/swdee/go-linecount/counter"
	"github.com/swdee/go-linecount/geometry"
	"github.com/swdee/go-linecount/render/palette"
	"github.com/swdee/go-linecount/tracker"
)

// Style defines the line widths and colors used by the Annotator
type Style struct {
	// BoxThickness is the line width of the track bounding box
	BoxThickness int
	// MotionThickness is the line width of the motion line drawn between the
	// previous and current box centers
	MotionThickness int
	BorderColor     color.RGBA
	BorderThickness int
	// BandHalfWidth is the distance in pixels the translucent counting zone
	// extends either side of the border.  Zero disables the zone.
	BandHalfWidth int
	// BandAlpha is the opacity of the counting zone between 0 and 1
	BandAlpha float64
	// CounterOrigin is the position of the first counter line and
	// CounterSpacing the vertical distance between lines
	CounterOrigin  image.Point
	CounterSpacing int
}

// DefaultStyle returns the default annotation style
func DefaultStyle() Style {
	return Style{
		BoxThickness:    2,
		MotionThickness: 3,
		BorderColor:     palette.Border,
		BorderThickness: 3,
		BandHalfWidth:   12,
		BandAlpha:       0.25,
		CounterOrigin:   image.Pt(30, 30),
		CounterSpacing:  80,
	}
}

// Annotator draws the counting engine state onto a gocv Mat
type Annotator struct {
	classNames []string
	Style      Style
	LabelFont  Font
	CountFont  Font
}

// NewAnnotator returns an Annotator labeling tracks with the given class
// names
func NewAnnotator(classNames []string) *Annotator {
	return &Annotator{
		classNames: classNames,
		Style:      DefaultStyle(),
		LabelFont:  DefaultFont(),
		CountFont:  CounterFont(),
	}
}

// Track draws the bounding box of the track with a "<class> <id>" label
func (a *Annotator) Track(img *gocv.Mat, t tracker.Track) {

	box := t.Box()
	clr := palette.Track(t.ID)

	gocv.Rectangle(img, box, clr, a.Style.BoxThickness)

	text := fmt.Sprintf("%s %d", a.className(t.Label), t.ID)
	label := a.layoutLabel(box, text, clr)

	// draw box text gets written on
	gocv.Rectangle(img, label.rect, label.clr, -1)

	gocv.PutTextWithParams(img, label.text, label.textPos,
		a.LabelFont.Face, a.LabelFont.Scale, a.LabelFont.Color,
		a.LabelFont.Thickness, a.LabelFont.LineType, false)
}

// Motion draws the line between the previous and current box center
func (a *Annotator) Motion(img *gocv.Mat, id int, from, to image.Point) {
	gocv.Line(img, from, to, palette.Track(id), a.Style.MotionThickness)
}

// Border draws the counting line over a translucent counting zone
func (a *Annotator) Border(img *gocv.Mat, border geometry.Segment) {

	if band := geometry.Band(border, a.Style.BandHalfWidth); len(band) > 2 {
		a.fillTranslucent(img, band)
	}

	gocv.Line(img, border.A, border.B, a.Style.BorderColor, a.Style.BorderThickness)
}

// Counters draws one "<key>: <n>" line per counter in the top left corner
func (a *Annotator) Counters(img *gocv.Mat, s counter.Snapshot) {

	for i, c := range s.Counts {
		pos := image.Pt(a.Style.CounterOrigin.X,
			a.Style.CounterOrigin.Y+a.Style.CounterSpacing*(i+1))

		gocv.PutTextWithParams(img, fmt.Sprintf("%s: %d", c.Label(), c.Value), pos,
			a.CountFont.Face, a.CountFont.Scale, a.CountFont.Color,
			a.CountFont.Thickness, a.CountFont.LineType, false)
	}
}

// fillTranslucent blends a filled polygon onto the image
func (a *Annotator) fillTranslucent(img *gocv.Mat, poly []image.Point) {

	overlay := img.Clone()
	defer overlay.Close()

	pts := gocv.NewPointsVectorFromPoints([][]image.Point{poly})
	defer pts.Close()

	gocv.FillPoly(&overlay, pts, a.Style.BorderColor)
	gocv.AddWeighted(overlay, a.Style.BandAlpha, *img, 1-a.Style.BandAlpha, 0, img)
}

func (a *Annotator) className(label int) string {
	if label >= 0 && label < len(a.classNames) {
		return a.classNames[label]
	}

	return fmt.Sprintf("class%d", label)
}

// boxLabel defines where the track label should be rendered on the source
// image
type boxLabel struct {
	rect    image.Rectangle
	clr     color.RGBA
	text    string
	textPos image.Point
}

// layoutLabel positions the label text above the box according to the font
// alignment
func (a *Annotator) layoutLabel(box image.Rectangle, text string,
	clr color.RGBA) boxLabel {

	font := a.LabelFont
	lineThickness := a.Style.BoxThickness
	textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

	var centerX int

	switch font.Alignment {
	case Center:
		centerX = (box.Min.X + box.Max.X) / 2

	case Right:
		centerX = box.Max.X - (textSize.X / 2) - font.RightPad + (lineThickness / 2)

	case Left:
		fallthrough
	default:
		centerX = box.Min.X + (textSize.X / 2) + font.LeftPad - (lineThickness / 2)
	}

	// Adjust the label position so the text is centered horizontally
	return boxLabel{
		rect: image.Rect(centerX-textSize.X/2-font.LeftPad,
			box.Min.Y-textSize.Y-font.TopPad-font.BottomPad,
			centerX+textSize.X/2+font.RightPad, box.Min.Y),
		clr:     clr,
		text:    text,
		textPos: image.Pt(centerX-textSize.X/2, box.Min.Y-font.BottomPad),
	}
}

var _ counter.Annotator[*gocv.Mat] = (*Annotator)(nil)
