package equilibrium

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/linstab/internal/model"
)

func mustModel(t *testing.T, x1, x2 string) *model.Model {
	t.Helper()
	m, err := model.New(x1, x2, nil)
	require.NoError(t, err)
	return m
}

func pointStrings(pts []Point) []string {
	out := make([]string, len(pts))
	for i, p := range pts {
		out[i] = p.String()
	}
	return out
}

func TestSolveReference(t *testing.T) {
	pts, err := Solve(model.Reference())
	require.NoError(t, err)
	assert.Equal(t, []string{"(-1, 1)", "(0, 0)", "(1, -1)"}, pointStrings(pts))
	for _, p := range pts {
		assert.True(t, p.IsReal())
		assert.True(t, p.Field().IsRational())
	}
}

func TestSolveDeterministic(t *testing.T) {
	first, err := Solve(model.Reference())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Solve(model.Reference())
		require.NoError(t, err)
		assert.Equal(t, pointStrings(first), pointStrings(again))
	}
}

func TestSolveIrrational(t *testing.T) {
	pts, err := Solve(mustModel(t, "x1^2 - 2", "x2 - x1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"(-sqrt(2), -sqrt(2))", "(sqrt(2), sqrt(2))"}, pointStrings(pts))
	assert.Equal(t, 2, pts[0].Field().Degree())
	assert.True(t, pts[1].IsReal())
}

func TestSolveComplex(t *testing.T) {
	pts, err := Solve(mustModel(t, "x1^2 + 1", "x2"))
	require.NoError(t, err)
	require.Len(t, pts, 2)
	assert.Equal(t, []string{"(-I, 0)", "(I, 0)"}, pointStrings(pts))
	assert.False(t, pts[0].IsReal())

	x1, _ := pts[1].Approx()
	assert.InDelta(t, 1.0, imag(x1), 1e-12)
}

func TestSolveSpecialFiber(t *testing.T) {
	// Elimination degenerates at x1 = 0, where x2 is recovered separately.
	pts, err := Solve(mustModel(t, "x1*x2", "x2^2 + x1 - 1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"(0, -1)", "(0, 1)", "(1, 0)"}, pointStrings(pts))
}

func TestSolveIrrationalFibres(t *testing.T) {
	r2, r3 := math.Sqrt2, math.Sqrt(3)
	q := math.Pow(2, 0.25)
	tests := []struct {
		name   string
		x1, x2 string
		want   [][2]complex128
	}{
		{
			"decoupled quadratics", "2 - x1^2", "3 - x2^2",
			[][2]complex128{{complex(-r2, 0), complex(-r3, 0)}, {complex(-r2, 0), complex(r3, 0)},
				{complex(r2, 0), complex(-r3, 0)}, {complex(r2, 0), complex(r3, 0)}},
		},
		{
			"circle and hyperbola", "x1^2 + x2^2 - 4", "x1^2 - x2^2 - 1",
			[][2]complex128{
				{complex(-math.Sqrt(2.5), 0), complex(-math.Sqrt(1.5), 0)},
				{complex(-math.Sqrt(2.5), 0), complex(math.Sqrt(1.5), 0)},
				{complex(math.Sqrt(2.5), 0), complex(-math.Sqrt(1.5), 0)},
				{complex(math.Sqrt(2.5), 0), complex(math.Sqrt(1.5), 0)},
			},
		},
		{
			"parabola over irrational x1", "x2^2 - x1", "x1^2 - 2",
			[][2]complex128{{complex(-r2, 0), complex(0, -q)}, {complex(-r2, 0), complex(0, q)},
				{complex(r2, 0), complex(-q, 0)}, {complex(r2, 0), complex(q, 0)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustModel(t, tt.x1, tt.x2)
			pts, err := Solve(m)
			require.NoError(t, err)
			require.Len(t, pts, len(tt.want))
			for i, p := range pts {
				x1, x2 := p.Approx()
				assert.InDelta(t, real(tt.want[i][0]), real(x1), 1e-9, "point %d x1", i)
				assert.InDelta(t, imag(tt.want[i][0]), imag(x1), 1e-9, "point %d x1", i)
				assert.InDelta(t, real(tt.want[i][1]), real(x2), 1e-9, "point %d x2", i)
				assert.InDelta(t, imag(tt.want[i][1]), imag(x2), 1e-9, "point %d x2", i)
				assert.Equal(t, imag(tt.want[i][0]) == 0 && imag(tt.want[i][1]) == 0, p.IsReal())
			}
		})
	}
}

func TestSolveErrors(t *testing.T) {
	tests := []struct {
		name   string
		x1, x2 string
		want   error
	}{
		{"inconsistent", "x1", "x1 + 1", ErrNoEquilibrium},
		{"inconsistent in x2", "x1 + x2", "x1 + x2 + 1", ErrNoEquilibrium},
		{"constant", "1", "x2", ErrNoEquilibrium},
		{"dependent", "x1 - x2", "2*x1 - 2*x2", ErrInfiniteEquilibria},
		{"vanishing", "0", "x1", ErrInfiniteEquilibria},
		{"common factor", "x1*(x2 - 1)", "x1*(x2 + 1)", ErrInfiniteEquilibria},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Solve(mustModel(t, tt.x1, tt.x2))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSolveIgnoresInput(t *testing.T) {
	pts, err := Solve(mustModel(t, "x1 + 5*u", "x2 - u"))
	require.NoError(t, err)
	assert.Equal(t, []string{"(0, 0)"}, pointStrings(pts))
}
