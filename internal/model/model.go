// Package model holds the polynomial dynamics under analysis.
//
// A [Model] is immutable once built and is passed explicitly to every stage;
// there is no package-level model state.
package model

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/san-kum/linstab/internal/dynamo"
	"github.com/san-kum/linstab/internal/poly"
)

// Variable indices in the model's ring.
const (
	X1 = iota
	X2
	U
)

// Reference dynamics and coefficients.
const (
	ReferenceX1Dot = "-x1 + a*x1^3 + x2 + b1*u"
	ReferenceX2Dot = "-x1 - x2 + b2*u"
)

var (
	// ErrInvalidModel indicates dynamics that cannot be analyzed.
	ErrInvalidModel = errors.New("model: invalid dynamics")

	// ErrParamName indicates a coefficient name that shadows a variable.
	ErrParamName = errors.New("model: parameter shadows a variable")
)

// ReferenceParams returns the coefficients of the reference model.
func ReferenceParams() map[string]*big.Rat {
	return map[string]*big.Rat{
		"a":  big.NewRat(2, 1),
		"b1": big.NewRat(4, 1),
		"b2": big.NewRat(2, 1),
	}
}

// Model is a two-state, one-input system x_dot = f(x, u) with polynomial
// right-hand sides over the rationals.
type Model struct {
	ring   *poly.Ring
	exprs  [2]string
	params map[string]*big.Rat
	f      [2]poly.MPoly
}

var _ dynamo.System = (*Model)(nil)

// New parses the two right-hand sides in the variables x1, x2, u. Named
// coefficients in params are substituted exactly.
func New(x1Dot, x2Dot string, params map[string]*big.Rat) (*Model, error) {
	ring := poly.NewRing("x1", "x2", "u")
	own := make(map[string]*big.Rat, len(params))
	for name, v := range params {
		if _, ok := ring.Index(name); ok {
			return nil, fmt.Errorf("%w: %q", ErrParamName, name)
		}
		if v == nil {
			return nil, fmt.Errorf("%w: parameter %q has no value", ErrInvalidModel, name)
		}
		own[name] = new(big.Rat).Set(v)
	}
	m := &Model{ring: ring, exprs: [2]string{x1Dot, x2Dot}, params: own}
	for i, src := range m.exprs {
		p, err := ring.Parse(src, own)
		if err != nil {
			return nil, fmt.Errorf("%w: x%d_dot: %w", ErrInvalidModel, i+1, err)
		}
		m.f[i] = p
	}
	return m, nil
}

// Reference returns the model the analysis was built around:
//
//	x1_dot = -x1 + 2*x1^3 + x2 + 4*u
//	x2_dot = -x1 - x2 + 2*u
func Reference() *Model {
	m, err := New(ReferenceX1Dot, ReferenceX2Dot, ReferenceParams())
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Model) Ring() *poly.Ring { return m.ring }

// Dynamics returns f_i, i in {0, 1}.
func (m *Model) Dynamics(i int) poly.MPoly { return m.f[i] }

// Unforced returns f_i with u = 0.
func (m *Model) Unforced(i int) poly.MPoly { return m.f[i].Substitute(U, new(big.Rat)) }

// Source returns the expression text f_i was parsed from.
func (m *Model) Source(i int) string { return m.exprs[i] }

// Params returns a copy of the named coefficients.
func (m *Model) Params() map[string]*big.Rat {
	out := make(map[string]*big.Rat, len(m.params))
	for k, v := range m.params {
		out[k] = new(big.Rat).Set(v)
	}
	return out
}

func (m *Model) StateDim() int {
	return 2
}

func (m *Model) ControlDim() int {
	return 1
}

// Derive evaluates the right-hand side in floating point. A missing control
// counts as zero.
func (m *Model) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	in := 0.0
	if len(u) > 0 {
		in = u[0]
	}
	vals := []float64{x[0], x[1], in}
	return dynamo.State{m.f[0].EvalFloat(vals), m.f[1].EvalFloat(vals)}
}

func (m *Model) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "x1_dot = %s\nx2_dot = %s", m.f[0], m.f[1])
	if len(m.params) > 0 {
		names := make([]string, 0, len(m.params))
		for k := range m.params {
			names = append(names, k)
		}
		sort.Strings(names)
		parts := make([]string, len(names))
		for i, k := range names {
			parts[i] = k + "=" + m.params[k].RatString()
		}
		fmt.Fprintf(&b, "\n(%s)", strings.Join(parts, ", "))
	}
	return b.String()
}
