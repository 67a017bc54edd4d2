package control

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/linstab/internal/dynamo"
	"github.com/san-kum/linstab/internal/model"
)

func TestNone(t *testing.T) {
	ctrl := NewNone(1)
	u := ctrl.Compute(dynamo.State{1.0, 2.0}, 0.0)

	if len(u) != 1 {
		t.Errorf("expected 1 control, got %d", len(u))
	}
	if u[0] != 0 {
		t.Errorf("control should be 0, got %f", u[0])
	}
}

func TestLQR(t *testing.T) {
	k := [][]float64{{1.0, 2.0}}
	target := dynamo.State{-1.0, 1.0}
	ctrl := NewLQR(k, target)

	u := ctrl.Compute(dynamo.State{-1.0, 1.0}, 0.0)
	if u[0] != 0 {
		t.Errorf("expected zero control at target, got %f", u[0])
	}

	u = ctrl.Compute(dynamo.State{0.0, 1.0}, 0.0)
	if u[0] != -1 {
		t.Errorf("expected u = -K(x - target) = -1, got %f", u[0])
	}
}

func TestFromGain(t *testing.T) {
	k := mat.NewDense(1, 2, []float64{3, 4})
	ctrl, err := FromGain(k, dynamo.State{0, 0})
	if err != nil {
		t.Fatal(err)
	}
	if ctrl.StateDim() != 2 {
		t.Errorf("expected state dim 2, got %d", ctrl.StateDim())
	}

	u := ctrl.Compute(dynamo.State{1, 1}, 0)
	if u[0] != -7 {
		t.Errorf("expected -7, got %f", u[0])
	}
}

func TestFromGainErrors(t *testing.T) {
	k := mat.NewDense(1, 2, []float64{3, 4})

	_, err := FromGain(k, dynamo.State{0})
	var de *dynamo.DimensionError
	if !errors.As(err, &de) || de.Want != 2 || de.Got != 1 {
		t.Errorf("expected dimension error, got %v", err)
	}
	if !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}

	if _, err := FromGain(k, dynamo.State{math.NaN(), 0}); !errors.Is(err, dynamo.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
}

func TestLQRDrivesModelTowardTarget(t *testing.T) {
	// Hand-picked gain; only the sign of the local vector field is checked.
	m := model.Reference()
	target := dynamo.State{-1, 1}
	ctrl := NewLQR([][]float64{{2, 0}}, target)

	x := dynamo.State{-0.99, 1}
	dx := m.Derive(x, ctrl.Compute(x, 0), 0)
	if dx[0] >= 0 {
		t.Errorf("expected feedback to push x1 back toward -1, got x1_dot=%f", dx[0])
	}
}
