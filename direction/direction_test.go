package direction

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPreset(t *testing.T, key string) Spec {
	t.Helper()
	s, ok := Preset(key)
	require.True(t, ok, "preset %q missing", key)
	return s
}

func TestEvaluateMatches(t *testing.T) {

	tests := map[string]struct {
		prev, curr image.Point
	}{
		Right:  {image.Pt(0, 0), image.Pt(20, 0)},
		Left:   {image.Pt(10, 0), image.Pt(0, 0)},
		Top:    {image.Pt(0, 10), image.Pt(0, 0)},
		Bottom: {image.Pt(0, 0), image.Pt(0, 10)},
	}

	for key, tt := range tests {
		t.Run(key, func(t *testing.T) {
			assert.True(t, mustPreset(t, key).Evaluate(tt.prev, tt.curr))
		})
	}
}

func TestEvaluateRejects(t *testing.T) {

	tests := map[string]struct {
		prev, curr image.Point
	}{
		// no movement never satisfies a positive requirement
		Right: {image.Pt(0, 0), image.Pt(0, 0)},
		// moving right
		Left: {image.Pt(0, 0), image.Pt(10, 0)},
		// moving down
		Top: {image.Pt(0, 0), image.Pt(0, 10)},
		// moving up
		Bottom: {image.Pt(0, 10), image.Pt(0, 0)},
	}

	for key, tt := range tests {
		t.Run(key, func(t *testing.T) {
			assert.False(t, mustPreset(t, key).Evaluate(tt.prev, tt.curr))
		})
	}
}

func TestEvaluateZeroDisplacement(t *testing.T) {
	origin := image.Pt(0, 0)

	assert.False(t, Spec{X: RequirePositive}.Evaluate(origin, origin))
	assert.False(t, Spec{Y: RequirePositive}.Evaluate(origin, origin))

	// the negative requirement only asks the positive test to fail
	assert.True(t, Spec{X: RequireNegative}.Evaluate(origin, origin))
	assert.True(t, Spec{Y: RequireNegative}.Evaluate(origin, origin))
}

func TestEvaluateUnconstrained(t *testing.T) {
	pts := []image.Point{
		image.Pt(0, 0), image.Pt(10, 0), image.Pt(-10, 0),
		image.Pt(0, 10), image.Pt(0, -10), image.Pt(7, -3),
	}

	for _, p := range pts {
		for _, q := range pts {
			assert.True(t, Spec{}.Evaluate(p, q), "%v -> %v", p, q)
		}
	}
}

func TestEvaluateBothAxes(t *testing.T) {
	upRight := Spec{X: RequirePositive, Y: RequirePositive}

	assert.True(t, upRight.Evaluate(image.Pt(0, 10), image.Pt(5, 0)))
	assert.False(t, upRight.Evaluate(image.Pt(0, 0), image.Pt(5, 10)))
	assert.False(t, upRight.Evaluate(image.Pt(5, 10), image.Pt(0, 0)))
}

func TestParseConstraint(t *testing.T) {

	tests := []struct {
		in      string
		want    Constraint
		wantErr bool
	}{
		{"", Unconstrained, false},
		{"any", Unconstrained, false},
		{"None", Unconstrained, false},
		{"positive", RequirePositive, false},
		{"+", RequirePositive, false},
		{" negative ", RequireNegative, false},
		{"-", RequireNegative, false},
		{"sideways", Unconstrained, true},
	}

	for _, tt := range tests {
		got, err := ParseConstraint(tt.in)

		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}

		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestSpecValidate(t *testing.T) {
	assert.NoError(t, Spec{X: RequireNegative, Y: RequirePositive}.Validate())
	assert.Error(t, Spec{X: Constraint(7)}.Validate())
	assert.Error(t, Spec{Y: Constraint(-1)}.Validate())
	assert.Equal(t, "x=positive,y=any", Spec{X: RequirePositive}.String())
}

func TestLookup(t *testing.T) {
	named, err := Lookup(Bottom, Right)
	require.NoError(t, err)
	require.Len(t, named, 2)

	assert.Equal(t, Bottom, named[0].Key)
	assert.Equal(t, Spec{Y: RequireNegative}, named[0].Spec)
	assert.Equal(t, Right, named[1].Key)

	_, err = Lookup("inside")
	assert.Error(t, err)

	_, err = Lookup(Top, Top)
	assert.Error(t, err)

	none, err := Lookup()
	require.NoError(t, err)
	assert.Empty(t, none)

	assert.Equal(t, []string{Bottom, Left, Right, Top}, PresetKeys())
}
