package geometry

import (
	"image"
)

// Segment is a line segment between two points in pixel space
type Segment struct {
	A image.Point
	B image.Point
}

// NewSegment returns a Segment from a to b
func NewSegment(a, b image.Point) Segment {
	return Segment{A: a, B: b}
}

// Len2 returns the squared length of the segment
func (s Segment) Len2() int {
	dx := s.B.X - s.A.X
	dy := s.B.Y - s.A.Y
	return dx*dx + dy*dy
}

// Degenerate returns true when both end points are the same
func (s Segment) Degenerate() bool {
	return s.A == s.B
}

// Intersects returns true if segment AB crosses segment CD.
//
// The test compares the orientation of each end point against the other
// segment.  A collinear triple is not counter clockwise, so an end point
// lying exactly on the other segment sides with the clockwise points and
// fully collinear segments are reported as not intersecting.  A motion that
// stops on a border and then leaves it intersects on exactly one of the two
// steps.
func Intersects(a, b, c, d image.Point) bool {
	return ccw(a, c, d) != ccw(b, c, d) && ccw(a, b, c) != ccw(a, b, d)
}

// IntersectsSegment is a convenience wrapper around Intersects
func (s Segment) IntersectsSegment(o Segment) bool {
	return Intersects(s.A, s.B, o.A, o.B)
}

// ccw returns true when p, q, r are in strictly counter clockwise order (in
// y-up coordinates).  Collinear points return false
func ccw(p, q, r image.Point) bool {
	return (r.Y-p.Y)*(q.X-p.X) > (q.Y-p.Y)*(r.X-p.X)
}

// Center returns the midpoint of a corner form bounding box truncated to
// whole pixels
func Center(box image.Rectangle) image.Point {
	x := float64(box.Min.X) + float64(box.Max.X-box.Min.X)/2
	y := float64(box.Min.Y) + float64(box.Max.Y-box.Min.Y)/2
	return image.Pt(int(x), int(y))
}
