// Package report renders analysis results for humans and machines.
//
// [Render] prints the sections in a fixed order: equilibrium points, Jacobian
// matrices, eigenvalues with multiplicities, stability labels and the LQR
// gain. [Export] flattens a bundle into JSON-ready [ExportData].
package report

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/linstab/internal/algebra"
	"github.com/san-kum/linstab/internal/lqr"
	"github.com/san-kum/linstab/internal/pipeline"
	"github.com/san-kum/linstab/internal/stability"
)

const (
	MsgNoEquilibrium = "No equilibrium points found."
	MsgNoGainNeeded  = "No unstable equilibrium point found for LQR gain computation."
)

// Options tune the rendering.
type Options struct {
	// ShowModel prints the dynamics above the results.
	ShowModel bool
	// ShowB adds the input matrix under each Jacobian.
	ShowB bool
}

// Render formats b as text.
func Render(b *pipeline.Bundle, opts Options) string {
	var sb strings.Builder
	if opts.ShowModel && b.Model != nil {
		sb.WriteString(Panel.Render(TitleStyle.Render("Model") + "\n" + b.Model.String()))
		sb.WriteString("\n\n")
	}

	switch b.Outcome {
	case pipeline.NoEquilibrium:
		sb.WriteString(MsgNoEquilibrium + "\n")
		return sb.String()
	case pipeline.Failed:
		sb.WriteString(WarnStyle.Render("Analysis failed:") + " " + errString(b.Err) + "\n")
		return sb.String()
	}

	section(&sb, "Equilibrium Points:")
	for _, e := range b.Entries {
		fmt.Fprintf(&sb, "  Point %d: x1 = %s, x2 = %s\n", e.Index+1, e.Point.X1, e.Point.X2)
	}

	sb.WriteString("\n")
	section(&sb, "Jacobian Matrices at Equilibrium Points:")
	for _, e := range b.Entries {
		fmt.Fprintf(&sb, "  At Point %d:\n", e.Index+1)
		a := [][]string{
			{e.Jacobian.A[0][0].String(), e.Jacobian.A[0][1].String()},
			{e.Jacobian.A[1][0].String(), e.Jacobian.A[1][1].String()},
		}
		sb.WriteString(Matrix(a))
		if opts.ShowB {
			sb.WriteString(Subtle.Render("  B:") + "\n")
			sb.WriteString(Matrix([][]string{{e.Jacobian.B[0].String()}, {e.Jacobian.B[1].String()}}))
		}
	}

	sb.WriteString("\n")
	section(&sb, "Eigenvalues at Equilibrium Points:")
	for _, e := range b.Entries {
		fmt.Fprintf(&sb, "  At Point %d: %s\n", e.Index+1, Eigenvalues(e.Spectrum))
	}

	sb.WriteString("\n")
	section(&sb, "Stability of Equilibrium Points:")
	for _, e := range b.Entries {
		fmt.Fprintf(&sb, "  At Point %d: %s\n", e.Index+1, labelText(e))
	}

	sb.WriteString("\n")
	section(&sb, "LQR Gain Matrix K at the selected Equilibrium Point:")
	switch b.Outcome {
	case pipeline.GainComputed:
		sb.WriteString(ValueStyle.Render(Gain(b.Gain.K)) + "\n")
	case pipeline.NoGainNeeded:
		sb.WriteString(MsgNoGainNeeded + "\n")
	case pipeline.GainFailed:
		sb.WriteString(WarnStyle.Render(gainFailure(b.Gain)) + "\n")
	}
	return sb.String()
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(HeaderStyle.Render(title))
	sb.WriteString("\n")
}

func labelText(e pipeline.Entry) string {
	if e.Err != nil {
		return WarnStyle.Render("Indeterminate") + Subtle.Render(" ("+e.Err.Error()+")")
	}
	if e.Label == stability.Stable {
		return StableStyle.Render(e.Label.String())
	}
	return UnstableStyle.Render(e.Label.String())
}

func gainFailure(g pipeline.Gain) string {
	if errors.Is(g.Err, lqr.ErrUncontrollable) {
		return fmt.Sprintf("System is uncontrollable at Point %d; gain not computed.", g.Index+1)
	}
	return fmt.Sprintf("Gain not computed at Point %d: %s", g.Index+1, errString(g.Err))
}

func errString(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

// Eigenvalues renders a spectrum as "value: multiplicity" pairs.
func Eigenvalues(s algebra.Spectrum) string {
	parts := make([]string, len(s))
	for i, e := range s {
		parts[i] = e.Value.String() + ": " + strconv.Itoa(e.Multiplicity)
	}
	return strings.Join(parts, ", ")
}

// Matrix draws a bracketed matrix with right-aligned columns.
func Matrix(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	widths := make([]int, len(rows[0]))
	for _, r := range rows {
		for j, c := range r {
			if len(c) > widths[j] {
				widths[j] = len(c)
			}
		}
	}
	var sb strings.Builder
	for i, r := range rows {
		left, right := "⎢", "⎥"
		switch {
		case len(rows) == 1:
			left, right = "[", "]"
		case i == 0:
			left, right = "⎡", "⎤"
		case i == len(rows)-1:
			left, right = "⎣", "⎦"
		}
		cells := make([]string, len(r))
		for j, c := range r {
			cells[j] = strings.Repeat(" ", widths[j]-len(c)) + c
		}
		sb.WriteString("  " + left + strings.Join(cells, "  ") + right + "\n")
	}
	return sb.String()
}

// Gain prints K in nested-bracket form.
func Gain(k *mat.Dense) string {
	if k == nil {
		return "[]"
	}
	r, c := k.Dims()
	rows := make([]string, r)
	for i := 0; i < r; i++ {
		cells := make([]string, c)
		for j := 0; j < c; j++ {
			cells[j] = strconv.FormatFloat(k.At(i, j), 'g', 8, 64)
		}
		rows[i] = "[" + strings.Join(cells, " ") + "]"
	}
	return "[" + strings.Join(rows, " ") + "]"
}
