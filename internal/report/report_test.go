package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/linstab/internal/model"
	"github.com/san-kum/linstab/internal/pipeline"
)

func run(t *testing.T, x1, x2 string) *pipeline.Bundle {
	t.Helper()
	m := model.Reference()
	if x1 != "" {
		var err error
		m, err = model.New(x1, x2, nil)
		if err != nil {
			t.Fatal(err)
		}
	}
	return pipeline.Run(context.Background(), m, pipeline.Config{})
}

func TestRenderReference(t *testing.T) {
	out := Render(run(t, "", ""), Options{ShowModel: true, ShowB: true})

	sections := []string{
		"Equilibrium Points:",
		"Jacobian Matrices at Equilibrium Points:",
		"Eigenvalues at Equilibrium Points:",
		"Stability of Equilibrium Points:",
		"LQR Gain Matrix K at the selected Equilibrium Point:",
	}
	last := -1
	for _, s := range sections {
		idx := strings.Index(out, s)
		if idx < 0 {
			t.Fatalf("missing section %q in:\n%s", s, out)
		}
		if idx < last {
			t.Errorf("section %q out of order", s)
		}
		last = idx
	}

	for _, want := range []string{
		"Point 1: x1 = -1, x2 = 1",
		"Point 2: x1 = 0, x2 = 0",
		"Point 3: x1 = 1, x2 = -1",
		"At Point 1: 2 - 2*sqrt(2): 1, 2 + 2*sqrt(2): 1",
		"At Point 2: -1 - I: 1, -1 + I: 1",
		"At Point 1: Unstable",
		"At Point 2: Stable",
		"x1_dot = 2*x1^3 - x1 + x2 + 4*u",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, MsgNoGainNeeded) {
		t.Error("gain should have been computed")
	}
}

func TestRenderOutcomes(t *testing.T) {
	tests := []struct {
		name   string
		x1, x2 string
		want   string
	}{
		{"no equilibrium", "x1", "x1 + 1", MsgNoEquilibrium},
		{"stable", "-x1 + x2", "-x1 - x2 + u", MsgNoGainNeeded},
		{"uncontrollable", "x1", "-x2 + u", "System is uncontrollable at Point 1"},
		{"infinite", "x1 - x2", "2*x1 - 2*x2", "Analysis failed:"},
	}

	for _, tt := range tests {
		out := Render(run(t, tt.x1, tt.x2), Options{})
		if !strings.Contains(out, tt.want) {
			t.Errorf("%s: expected %q in:\n%s", tt.name, tt.want, out)
		}
	}
}

func TestRenderIndeterminate(t *testing.T) {
	out := Render(run(t, "x1^2 + 1", "-x2 + u"), Options{})
	if !strings.Contains(out, "At Point 1: Indeterminate") {
		t.Errorf("expected indeterminate label in:\n%s", out)
	}
}

func TestMatrix(t *testing.T) {
	got := Matrix([][]string{{"5", "1"}, {"-1", "-1"}})
	want := "  ⎡ 5   1⎤\n  ⎣-1  -1⎦\n"
	if got != want {
		t.Errorf("expected\n%s\ngot\n%s", want, got)
	}

	if got := Matrix([][]string{{"4", "2"}}); got != "  [4  2]\n" {
		t.Errorf("unexpected single row: %q", got)
	}
}

func TestGain(t *testing.T) {
	k := mat.NewDense(1, 2, []float64{1, 1.5})
	if got := Gain(k); got != "[[1 1.5]]" {
		t.Errorf("unexpected gain rendering %q", got)
	}
	if got := Gain(nil); got != "[]" {
		t.Errorf("unexpected nil gain rendering %q", got)
	}
}

func TestExport(t *testing.T) {
	data := Export(run(t, "", ""))

	if data.Outcome != "gain_computed" {
		t.Errorf("expected gain_computed, got %s", data.Outcome)
	}
	if len(data.Equilibria) != 3 {
		t.Fatalf("expected 3 equilibria, got %d", len(data.Equilibria))
	}
	p := data.Equilibria[1]
	if p.X1 != "0" || p.Label != "Stable" || !p.Real {
		t.Errorf("unexpected origin entry: %+v", p)
	}
	if p.A[0][0] != "-1" || p.B[0] != "4" {
		t.Errorf("unexpected jacobian: %v %v", p.A, p.B)
	}
	if len(p.Eigenvalues) != 2 || p.Eigenvalues[0].Re != -1 {
		t.Errorf("unexpected eigenvalues: %+v", p.Eigenvalues)
	}
	if data.Gain == nil || data.Gain.Index != 0 || len(data.Gain.K) != 1 || len(data.Gain.K[0]) != 2 {
		t.Errorf("unexpected gain: %+v", data.Gain)
	}
	if data.Model.Params["b1"] != "4" {
		t.Errorf("expected b1=4, got %v", data.Model.Params)
	}
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	if err := ExportJSON(path, run(t, "x1", "x1 + 1")); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatal(err)
	}
	if data.Outcome != "no_equilibrium" || len(data.Equilibria) != 0 || data.Gain != nil {
		t.Errorf("unexpected export: %+v", data)
	}
}

type failingCloser struct {
	bytes.Buffer
	err error
}

func (f *failingCloser) Close() error { return f.err }

func TestWriteCloseReportsCloseError(t *testing.T) {
	closeErr := errors.New("flush failed")
	w := &failingCloser{err: closeErr}
	err := writeClose(w, run(t, "", ""))
	if !errors.Is(err, closeErr) {
		t.Fatalf("got %v, want close error", err)
	}
	if w.Len() == 0 {
		t.Error("nothing written before close")
	}
}

func TestDump(t *testing.T) {
	var buf bytes.Buffer
	Dump(&buf, run(t, "", ""))
	if !strings.Contains(buf.String(), "gain_computed") {
		t.Errorf("expected outcome in dump:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "2 + 2*sqrt(2)") {
		t.Errorf("expected eigenvalue in dump:\n%s", buf.String())
	}
}
