package report

import (
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/linstab/internal/pipeline"
)

type ExportData struct {
	Model      ModelData   `json:"model"`
	Outcome    string      `json:"outcome"`
	Error      string      `json:"error,omitempty"`
	Equilibria []PointData `json:"equilibria"`
	Gain       *GainData   `json:"gain,omitempty"`
}

type ModelData struct {
	X1Dot  string            `json:"x1_dot"`
	X2Dot  string            `json:"x2_dot"`
	Params map[string]string `json:"params,omitempty"`
}

type PointData struct {
	Index       int         `json:"index"`
	X1          string      `json:"x1"`
	X2          string      `json:"x2"`
	Real        bool        `json:"real"`
	A           [][]string  `json:"a"`
	B           []string    `json:"b"`
	Eigenvalues []EigenData `json:"eigenvalues"`
	Label       string      `json:"label"`
	Error       string      `json:"error,omitempty"`
}

type EigenData struct {
	Value        string  `json:"value"`
	Multiplicity int     `json:"multiplicity"`
	Re           float64 `json:"re"`
	Im           float64 `json:"im"`
}

type GainData struct {
	Index int         `json:"index"`
	K     [][]float64 `json:"k,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Export flattens b into plain data.
func Export(b *pipeline.Bundle) ExportData {
	data := ExportData{
		Outcome:    b.Outcome.String(),
		Equilibria: make([]PointData, len(b.Entries)),
	}
	if b.Err != nil {
		data.Error = b.Err.Error()
	}
	if b.Model != nil {
		data.Model = ModelData{X1Dot: b.Model.Dynamics(0).String(), X2Dot: b.Model.Dynamics(1).String()}
		if params := b.Model.Params(); len(params) > 0 {
			data.Model.Params = make(map[string]string, len(params))
			for k, v := range params {
				data.Model.Params[k] = v.RatString()
			}
		}
	}

	for i, e := range b.Entries {
		p := PointData{
			Index: e.Index,
			X1:    e.Point.X1.String(),
			X2:    e.Point.X2.String(),
			Real:  e.Point.IsReal(),
			A:     make([][]string, 2),
			B:     []string{e.Jacobian.B[0].String(), e.Jacobian.B[1].String()},
			Label: e.Label.String(),
		}
		for r := 0; r < 2; r++ {
			p.A[r] = []string{e.Jacobian.A[r][0].String(), e.Jacobian.A[r][1].String()}
		}
		for _, ev := range e.Spectrum {
			z := ev.Value.Approx()
			p.Eigenvalues = append(p.Eigenvalues, EigenData{
				Value:        ev.Value.String(),
				Multiplicity: ev.Multiplicity,
				Re:           real(z),
				Im:           imag(z),
			})
		}
		if e.Err != nil {
			p.Error = e.Err.Error()
		}
		data.Equilibria[i] = p
	}

	if b.Gain.Index >= 0 {
		g := &GainData{Index: b.Gain.Index}
		if b.Gain.K != nil {
			g.K = rows(b.Gain.K)
		}
		if b.Gain.Err != nil {
			g.Error = b.Gain.Err.Error()
		}
		data.Gain = g
	}
	return data
}

func rows(m *mat.Dense) [][]float64 {
	r, _ := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = mat.Row(nil, i, m)
	}
	return out
}

// WriteJSON encodes the exported bundle as indented JSON.
func WriteJSON(w io.Writer, b *pipeline.Bundle) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(Export(b))
}

func ExportJSON(path string, b *pipeline.Bundle) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	return writeClose(file, b)
}

// writeClose reports the close error too; a failed flush surfaces there.
func writeClose(wc io.WriteCloser, b *pipeline.Bundle) error {
	return errors.Join(WriteJSON(wc, b), wc.Close())
}

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Dump writes a Go-syntax dump of the exported bundle.
func Dump(w io.Writer, b *pipeline.Bundle) {
	dumpConfig.Fdump(w, Export(b))
}
