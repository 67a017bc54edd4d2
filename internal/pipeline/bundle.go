package pipeline

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/linstab/internal/algebra"
	"github.com/san-kum/linstab/internal/equilibrium"
	"github.com/san-kum/linstab/internal/linearize"
	"github.com/san-kum/linstab/internal/model"
	"github.com/san-kum/linstab/internal/stability"
)

// Entry collects everything computed for one equilibrium. Err is set when
// the entry could not be classified; such entries are never selected for
// gain synthesis.
type Entry struct {
	Index    int
	Point    equilibrium.Point
	Jacobian linearize.Pair
	Spectrum algebra.Spectrum
	Label    stability.Label
	Err      error
}

// Gain is the synthesis result for the selected equilibrium. Index is -1
// when nothing was selected.
type Gain struct {
	Index int
	K     *mat.Dense
	Err   error
}

// Bundle is the immutable result of one run.
type Bundle struct {
	Model   *model.Model
	Entries []Entry
	Gain    Gain
	Outcome Stage
	Err     error
	Trace   []Stage
}

func (b *Bundle) Equilibria() []equilibrium.Point {
	out := make([]equilibrium.Point, len(b.Entries))
	for i, e := range b.Entries {
		out[i] = e.Point
	}
	return out
}

func (b *Bundle) Jacobians() []linearize.Pair {
	out := make([]linearize.Pair, len(b.Entries))
	for i, e := range b.Entries {
		out[i] = e.Jacobian
	}
	return out
}

func (b *Bundle) Spectra() []algebra.Spectrum {
	out := make([]algebra.Spectrum, len(b.Entries))
	for i, e := range b.Entries {
		out[i] = e.Spectrum
	}
	return out
}

func (b *Bundle) Labels() []stability.Label {
	out := make([]stability.Label, len(b.Entries))
	for i, e := range b.Entries {
		out[i] = e.Label
	}
	return out
}

// Selected returns the entry the gain was synthesized for.
func (b *Bundle) Selected() (Entry, bool) {
	if b.Gain.Index < 0 || b.Gain.Index >= len(b.Entries) {
		return Entry{}, false
	}
	return b.Entries[b.Gain.Index], true
}
