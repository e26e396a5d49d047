package direction

import (
	"fmt"
	"sort"
)

// preset direction keys
const (
	Right  = "right"
	Left   = "left"
	Top    = "top"
	Bottom = "bottom"
)

var presets = map[string]Spec{
	Right:  {X: RequirePositive, Y: Unconstrained},
	Left:   {X: RequireNegative, Y: Unconstrained},
	Top:    {X: Unconstrained, Y: RequirePositive},
	Bottom: {X: Unconstrained, Y: RequireNegative},
}

// Preset returns the Spec registered under the given key
func Preset(key string) (Spec, bool) {
	s, ok := presets[key]
	return s, ok
}

// PresetKeys returns the sorted list of preset keys
func PresetKeys() []string {
	keys := make([]string, 0, len(presets))

	for k := range presets {
		keys = append(keys, k)
	}

	sort.Strings(keys)
	return keys
}

// Lookup resolves preset keys into an ordered list of Named specs keeping
// the order given.  Unknown and repeated keys are an error.
func Lookup(keys ...string) ([]Named, error) {

	seen := make(map[string]bool, len(keys))
	out := make([]Named, 0, len(keys))

	for _, k := range keys {
		spec, ok := presets[k]

		if !ok {
			return nil, fmt.Errorf("unknown direction %q, expected one of %v", k, PresetKeys())
		}

		if seen[k] {
			return nil, fmt.Errorf("direction %q given more than once", k)
		}

		seen[k] = true
		out = append(out, Named{Key: k, Spec: spec})
	}

	return out, nil
}
