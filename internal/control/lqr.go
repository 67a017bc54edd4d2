package control

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/linstab/internal/dynamo"
)

type LQR struct {
	K      [][]float64
	Target dynamo.State
}

func NewLQR(k [][]float64, target dynamo.State) *LQR {
	return &LQR{K: k, Target: target}
}

// FromGain builds the feedback law from an m x n gain matrix. The target
// must have n entries.
func FromGain(k mat.Matrix, target dynamo.State) (*LQR, error) {
	r, c := k.Dims()
	if len(target) != c {
		return nil, &dynamo.DimensionError{What: "target", Want: c, Got: len(target)}
	}
	if !target.IsValid() {
		return nil, dynamo.ErrInvalidState
	}
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = mat.Row(nil, i, k)
	}
	return NewLQR(rows, target.Clone()), nil
}

func (l *LQR) Compute(x dynamo.State, t float64) dynamo.Control {
	u := make(dynamo.Control, len(l.K))
	dx := x.Sub(l.Target)
	for i := range u {
		for j := range dx {
			if j < len(l.K[i]) {
				u[i] -= l.K[i][j] * dx[j]
			}
		}
	}
	return u
}

// StateDim is the number of state entries the gain acts on.
func (l *LQR) StateDim() int {
	if len(l.K) == 0 {
		return 0
	}
	return len(l.K[0])
}
