// Package stability classifies equilibria from the exact spectrum of their
// state Jacobian.
package stability

import (
	"fmt"

	"github.com/san-kum/linstab/internal/algebra"
)

// ErrIndeterminateStability indicates a real part whose sign could not be
// decided.
var ErrIndeterminateStability = algebra.ErrIndeterminate

// Label is the local stability verdict for one equilibrium.
type Label int

const (
	// Stable means every eigenvalue has strictly negative real part.
	Stable Label = iota
	// Unstable covers everything else, including zero real parts.
	Unstable
)

func (l Label) String() string {
	switch l {
	case Stable:
		return "Stable"
	case Unstable:
		return "Unstable"
	}
	return fmt.Sprintf("Label(%d)", int(l))
}

// Result is the spectrum of one Jacobian and its verdict.
type Result struct {
	Spectrum algebra.Spectrum
	Label    Label
}

// Classifier labels state matrices using an algebra capability.
type Classifier struct {
	alg algebra.Algebra
}

func NewClassifier(alg algebra.Algebra) *Classifier {
	if alg == nil {
		alg = algebra.Exact{}
	}
	return &Classifier{alg: alg}
}

// Classify decomposes the 2x2 matrix a and labels it.
func Classify(a [][]algebra.Element) (Result, error) {
	return NewClassifier(nil).Classify(a)
}

func (c *Classifier) Classify(a [][]algebra.Element) (Result, error) {
	spec, err := c.alg.EigenDecompose(a)
	if err != nil {
		return Result{}, err
	}
	label, err := LabelOf(spec)
	return Result{Spectrum: spec, Label: label}, err
}

// LabelOf returns Stable iff every eigenvalue has negative real part. An
// eigenvalue with a decided real part >= 0 settles Unstable even when another
// sign is indeterminate; the error is returned only when the verdict hinges
// on an undecided sign.
func LabelOf(spec algebra.Spectrum) (Label, error) {
	var undecided error
	for _, e := range spec {
		sign, err := e.Value.RealPartSign()
		if err != nil {
			if undecided == nil {
				undecided = fmt.Errorf("stability: eigenvalue %s: %w", e.Value, err)
			}
			continue
		}
		if sign >= 0 {
			return Unstable, nil
		}
	}
	if undecided != nil {
		return Unstable, undecided
	}
	return Stable, nil
}
