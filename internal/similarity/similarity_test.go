package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected float64
	}{
		{
			name:     "identical strings",
			a:        "nafta super 95",
			b:        "nafta super 95",
			expected: 1.0,
		},
		{
			name:     "both empty",
			a:        "",
			b:        "",
			expected: 1.0,
		},
		{
			name:     "one empty",
			a:        "gasoil",
			b:        "",
			expected: 0.0,
		},
		{
			name: "shifted overlap",
			// Three of four characters align, ratio 2*3/8.
			a:        "abcd",
			b:        "bcde",
			expected: 0.75,
		},
		{
			name:     "disjoint strings",
			a:        "aaaa",
			b:        "bbbb",
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Ratio(tt.a, tt.b), 1e-9)
		})
	}
}

func TestRatioSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"nafta super 95", "nafta super"},
		{"servicio tecnico", "servicio de tecnico"},
		{"abcd", "bcde"},
	}
	for _, p := range pairs {
		assert.InDelta(t, Ratio(p[0], p[1]), Ratio(p[1], p[0]), 1e-9)
	}
}

func TestRatioBounds(t *testing.T) {
	pairs := [][2]string{
		{"combustible", "lubricante"},
		{"x", "xyzzy"},
		{"alquiler maldonado", "alquiler melo"},
	}
	for _, p := range pairs {
		r := Ratio(p[0], p[1])
		assert.GreaterOrEqual(t, r, 0.0)
		assert.LessOrEqual(t, r, 1.0)
	}
}

func TestRatioCloseVariantsScoreHigh(t *testing.T) {
	// Typical near-duplicate invoice descriptions should clear the 0.70
	// matching threshold used by the historical classifier.
	r := Ratio("nafta super 95 litros", "nafta super 95 lts")
	assert.Greater(t, r, 0.7)
}
