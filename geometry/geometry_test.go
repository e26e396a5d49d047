package geometry

import (
	"image"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntersects(t *testing.T) {

	tests := []struct {
		name       string
		a, b, c, d image.Point
		want       bool
	}{
		{
			name: "crossing diagonal",
			a:    image.Pt(10, 0), b: image.Pt(10, 30),
			c: image.Pt(0, 10), d: image.Pt(30, 0),
			want: true,
		},
		{
			name: "parallel vertical",
			a:    image.Pt(10, 0), b: image.Pt(10, 30),
			c: image.Pt(0, 10), d: image.Pt(0, 0),
			want: false,
		},
		{
			name: "downward motion over horizontal border",
			a:    image.Pt(960, 520), b: image.Pt(960, 480),
			c: image.Pt(0, 500), d: image.Pt(1920, 500),
			want: true,
		},
		{
			name: "motion above border",
			a:    image.Pt(960, 420), b: image.Pt(960, 480),
			c: image.Pt(0, 500), d: image.Pt(1920, 500),
			want: false,
		},
		{
			name: "collinear overlapping",
			a:    image.Pt(0, 0), b: image.Pt(10, 0),
			c: image.Pt(5, 0), d: image.Pt(15, 0),
			want: false,
		},
		{
			name: "zero length motion on border",
			a:    image.Pt(50, 500), b: image.Pt(50, 500),
			c: image.Pt(0, 500), d: image.Pt(1920, 500),
			want: false,
		},
		{
			name: "motion from above ends on border",
			a:    image.Pt(960, 500), b: image.Pt(960, 480),
			c: image.Pt(0, 500), d: image.Pt(1920, 500),
			want: false,
		},
		{
			name: "motion from border continues below",
			a:    image.Pt(960, 520), b: image.Pt(960, 500),
			c: image.Pt(0, 500), d: image.Pt(1920, 500),
			want: true,
		},
		{
			name: "motion from below ends on border",
			a:    image.Pt(960, 500), b: image.Pt(960, 520),
			c: image.Pt(0, 500), d: image.Pt(1920, 500),
			want: true,
		},
		{
			name: "motion from border continues above",
			a:    image.Pt(960, 480), b: image.Pt(960, 500),
			c: image.Pt(0, 500), d: image.Pt(1920, 500),
			want: false,
		},
		{
			name: "past end of border",
			a:    image.Pt(2000, 480), b: image.Pt(2000, 520),
			c: image.Pt(0, 500), d: image.Pt(1920, 500),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Intersects(tt.a, tt.b, tt.c, tt.d))
		})
	}
}

// TestStepOntoBorder walks a center onto the border and off the other side,
// the crossing must be seen on exactly one of the two steps in either
// direction
func TestStepOntoBorder(t *testing.T) {

	c, d := image.Pt(0, 500), image.Pt(1920, 500)

	tests := []struct {
		name string
		ys   []int
	}{
		{"downward", []int{480, 500, 520}},
		{"upward", []int{520, 500, 480}},
		{"downward pausing on border", []int{480, 500, 500, 520}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := 0

			for i := 1; i < len(tt.ys); i++ {
				prev := image.Pt(960, tt.ys[i-1])
				curr := image.Pt(960, tt.ys[i])

				if Intersects(curr, prev, c, d) {
					hits++
				}
			}

			assert.Equal(t, 1, hits)
		})
	}
}

func TestIntersectsSymmetry(t *testing.T) {

	// every combination of points on a small grid.  Inputs with a collinear
	// triple are skipped as the tie rule decides those by argument order
	var pts []image.Point

	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			pts = append(pts, image.Pt(x, y))
		}
	}

	collinear := func(p, q, r image.Point) bool {
		return (r.Y-p.Y)*(q.X-p.X) == (q.Y-p.Y)*(r.X-p.X)
	}

	checked := 0

	for _, a := range pts {
		for _, b := range pts {
			for _, c := range pts {
				for _, d := range pts {
					if collinear(a, c, d) || collinear(b, c, d) ||
						collinear(a, b, c) || collinear(a, b, d) {
						continue
					}

					checked++

					if Intersects(a, b, c, d) != Intersects(b, a, d, c) {
						t.Fatalf("asymmetric result for %v %v %v %v", a, b, c, d)
					}
				}
			}
		}
	}

	require.NotZero(t, checked)
}

func TestIntersectsDisjointBounds(t *testing.T) {

	rng := rand.New(rand.NewSource(2021))

	randPt := func() image.Point {
		return image.Pt(rng.Intn(200)-100, rng.Intn(200)-100)
	}

	bounds := func(p, q image.Point) image.Rectangle {
		// Inset keeps zero-size boxes so touching points still overlap
		return image.Rect(p.X, p.Y, q.X, q.Y).Inset(-1)
	}

	checked := 0

	for checked < 2000 {
		a, b, c, d := randPt(), randPt(), randPt(), randPt()

		if bounds(a, b).Overlaps(bounds(c, d)) {
			continue
		}

		checked++

		if Intersects(a, b, c, d) {
			t.Fatalf("disjoint segments reported intersecting: %v %v %v %v", a, b, c, d)
		}
	}
}

func TestCenter(t *testing.T) {
	assert.Equal(t, image.Pt(960, 480), Center(image.Rect(940, 440, 980, 520)))
	assert.Equal(t, image.Pt(2, 2), Center(image.Rectangle{Min: image.Pt(0, 0), Max: image.Pt(5, 5)}))
	assert.Equal(t, image.Pt(0, 0), Center(image.Rectangle{}))
}

func TestSegment(t *testing.T) {
	s := NewSegment(image.Pt(0, 500), image.Pt(1920, 500))

	assert.False(t, s.Degenerate())
	assert.Equal(t, 1920*1920, s.Len2())
	assert.True(t, s.IntersectsSegment(NewSegment(image.Pt(10, 490), image.Pt(10, 510))))
	assert.True(t, NewSegment(image.Pt(3, 3), image.Pt(3, 3)).Degenerate())
}

func TestBand(t *testing.T) {

	require.Nil(t, Band(NewSegment(image.Pt(0, 0), image.Pt(10, 0)), 0))

	poly := Band(NewSegment(image.Pt(0, 500), image.Pt(100, 500)), 10)
	require.NotEmpty(t, poly)

	minX, minY, maxX, maxY := poly[0].X, poly[0].Y, poly[0].X, poly[0].Y

	for _, p := range poly {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}

	assert.InDelta(t, -10, minX, 1)
	assert.InDelta(t, 110, maxX, 1)
	assert.InDelta(t, 490, minY, 1)
	assert.InDelta(t, 510, maxY, 1)
}
