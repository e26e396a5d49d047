package geometry

import (
	"image"

	clipper "github.com/ctessum/go.clipper"
)

// Band returns the outline polygon of the segment widened by halfWidth pixels
// on each side with rounded ends.  It is used to render a visible counting
// zone around the border line.  A halfWidth of zero or less returns nil.
func Band(seg Segment, halfWidth int) []image.Point {

	if halfWidth <= 0 {
		return nil
	}

	path := clipper.Path{
		&clipper.IntPoint{X: clipper.CInt(seg.A.X), Y: clipper.CInt(seg.A.Y)},
		&clipper.IntPoint{X: clipper.CInt(seg.B.X), Y: clipper.CInt(seg.B.Y)},
	}

	co := clipper.NewClipperOffset()
	co.AddPath(path, clipper.JtRound, clipper.EtOpenRound)

	solution := co.Execute(float64(halfWidth))

	var points []image.Point

	for _, sol := range solution {
		for _, pt := range sol {
			points = append(points, image.Pt(int(pt.X), int(pt.Y)))
		}
	}

	return points
}
