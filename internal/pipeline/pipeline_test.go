package pipeline

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/linstab/internal/equilibrium"
	"github.com/san-kum/linstab/internal/linearize"
	"github.com/san-kum/linstab/internal/lqr"
	"github.com/san-kum/linstab/internal/model"
	"github.com/san-kum/linstab/internal/stability"
)

func mustModel(x1, x2 string) *model.Model {
	m, err := model.New(x1, x2, nil)
	Expect(err).NotTo(HaveOccurred())
	return m
}

func pointStrings(b *Bundle) []string {
	var out []string
	for _, p := range b.Equilibria() {
		out = append(out, p.String())
	}
	return out
}

type failingSolver struct{}

func (failingSolver) SolveCARE(a, b, q, r mat.Matrix) (*mat.Dense, error) {
	return nil, lqr.ErrNumeric
}

var _ = ginkgo.Describe("Run", func() {
	ctx := context.Background()

	ginkgo.Context("with the reference model", func() {
		var b *Bundle

		ginkgo.BeforeEach(func() {
			b = Run(ctx, model.Reference(), Config{})
		})

		ginkgo.It("finds the three equilibria in order", func() {
			Expect(b.Err).NotTo(HaveOccurred())
			Expect(pointStrings(b)).To(Equal([]string{"(-1, 1)", "(0, 0)", "(1, -1)"}))
		})

		ginkgo.It("labels the saddles unstable and the origin stable", func() {
			Expect(b.Labels()).To(Equal([]stability.Label{stability.Unstable, stability.Stable, stability.Unstable}))
			Expect(b.Spectra()[1][0].Value.String()).To(Equal("-1 - I"))
			Expect(b.Spectra()[0][1].Value.String()).To(Equal("2 + 2*sqrt(2)"))
		})

		ginkgo.It("keeps the Jacobians index-aligned", func() {
			jac := b.Jacobians()
			Expect(jac).To(HaveLen(3))
			Expect(jac[1].A[0][0].String()).To(Equal("-1"))
			Expect(jac[0].A[0][0].String()).To(Equal("5"))
		})

		ginkgo.It("stabilizes the first unstable equilibrium", func() {
			Expect(b.Outcome).To(Equal(GainComputed))
			Expect(b.Gain.Index).To(Equal(0))
			Expect(b.Gain.Err).NotTo(HaveOccurred())

			sel, ok := b.Selected()
			Expect(ok).To(BeTrue())
			a, bm, err := sel.Jacobian.Numeric()
			Expect(err).NotTo(HaveOccurred())

			var bk, acl mat.Dense
			bk.Mul(bm, b.Gain.K)
			acl.Sub(a, &bk)
			var eig mat.Eigen
			Expect(eig.Factorize(&acl, mat.EigenNone)).To(BeTrue())
			for _, v := range eig.Values(nil) {
				Expect(real(v)).To(BeNumerically("<", 0))
			}
		})

		ginkgo.It("walks the full state machine", func() {
			Expect(b.Trace).To(Equal([]Stage{Init, EquilibriaSolved, Linearized, Classified, GainComputed, Done}))
		})

		ginkgo.It("is deterministic across worker counts", func() {
			for _, workers := range []int{1, 2, 4, 8} {
				again := Run(ctx, model.Reference(), Config{Workers: workers})
				Expect(pointStrings(again)).To(Equal(pointStrings(b)))
				Expect(again.Labels()).To(Equal(b.Labels()))
				Expect(again.Gain.Index).To(Equal(b.Gain.Index))
				Expect(mat.EqualApprox(again.Gain.K, b.Gain.K, 1e-12)).To(BeTrue())
			}
		})
	})

	ginkgo.It("needs no gain when every equilibrium is stable", func() {
		b := Run(ctx, mustModel("-x1 + x2", "-x1 - x2 + u"), Config{})
		Expect(b.Outcome).To(Equal(NoGainNeeded))
		Expect(b.Gain.Index).To(Equal(-1))
		Expect(b.Gain.K).To(BeNil())
		_, ok := b.Selected()
		Expect(ok).To(BeFalse())
	})

	ginkgo.It("returns an empty bundle when there is no equilibrium", func() {
		b := Run(ctx, mustModel("x1", "x1 + 1"), Config{})
		Expect(b.Outcome).To(Equal(NoEquilibrium))
		Expect(b.Err).NotTo(HaveOccurred())
		Expect(b.Entries).To(BeEmpty())
		Expect(b.Trace).To(Equal([]Stage{Init, NoEquilibrium, Done}))
	})

	ginkgo.It("records solver limits", func() {
		b := Run(ctx, mustModel("x1 - x2", "2*x1 - 2*x2"), Config{})
		Expect(b.Outcome).To(Equal(Failed))
		Expect(b.Err).To(MatchError(equilibrium.ErrInfiniteEquilibria))
		Expect(b.Entries).To(BeEmpty())
	})

	ginkgo.It("records an uncontrollable selection", func() {
		b := Run(ctx, mustModel("x1", "-x2 + u"), Config{})
		Expect(b.Outcome).To(Equal(GainFailed))
		Expect(b.Gain.Index).To(Equal(0))
		Expect(b.Gain.Err).To(MatchError(lqr.ErrUncontrollable))
		Expect(b.Err).NotTo(HaveOccurred())
	})

	ginkgo.It("refuses a non-real selected equilibrium", func() {
		b := Run(ctx, mustModel("x1^3 - 1", "x2 + u"), Config{})
		Expect(b.Entries).To(HaveLen(3))
		Expect(b.Entries[0].Point.IsReal()).To(BeFalse())
		Expect(b.Outcome).To(Equal(GainFailed))
		Expect(b.Gain.Index).To(Equal(0))
		Expect(b.Gain.Err).To(MatchError(linearize.ErrIndeterminateJacobian))

		var je *linearize.JacobianError
		Expect(b.Gain.Err).To(BeAssignableToTypeOf(je))
	})

	ginkgo.It("skips entries whose stability is indeterminate", func() {
		b := Run(ctx, mustModel("x1^2 + 1", "-x2 + u"), Config{Workers: 2})
		Expect(b.Entries).To(HaveLen(2))
		for _, e := range b.Entries {
			Expect(e.Err).To(MatchError(stability.ErrIndeterminateStability))
		}
		Expect(b.Outcome).To(Equal(NoGainNeeded))
	})

	ginkgo.It("selects an entry whose instability is decided by one eigenvalue", func() {
		b := Run(ctx, mustModel("x1^2 + 1", "x2 + u"), Config{})
		Expect(b.Entries).To(HaveLen(2))
		for _, e := range b.Entries {
			Expect(e.Err).NotTo(HaveOccurred())
			Expect(e.Label).To(Equal(stability.Unstable))
		}
		Expect(b.Outcome).To(Equal(GainFailed))
		Expect(b.Gain.Index).To(Equal(0))
		Expect(b.Gain.Err).To(MatchError(linearize.ErrIndeterminateJacobian))
	})

	ginkgo.It("uses the configured solver", func() {
		b := Run(ctx, model.Reference(), Config{Solver: failingSolver{}})
		Expect(b.Outcome).To(Equal(GainFailed))
		Expect(b.Gain.Err).To(MatchError(lqr.ErrNumeric))
	})

	ginkgo.It("rejects invalid weights as a gain failure", func() {
		w := lqr.DefaultWeights(2, 1)
		w.R = mat.NewDense(1, 1, []float64{-1})
		b := Run(ctx, model.Reference(), Config{Weights: w})
		Expect(b.Outcome).To(Equal(GainFailed))
		Expect(b.Gain.Err).To(MatchError(lqr.ErrInvalidWeights))
	})

	ginkgo.It("stops on cancellation", func() {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		b := Run(canceled, model.Reference(), Config{})
		Expect(b.Outcome).To(Equal(Failed))
		Expect(b.Err).To(MatchError(context.Canceled))
	})

	ginkgo.It("reports a nil model", func() {
		b := Run(ctx, nil, Config{})
		Expect(b.Outcome).To(Equal(Failed))
		Expect(b.Err).To(MatchError(ErrNilModel))
	})

	ginkgo.It("logs stage transitions", func() {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		Run(ctx, model.Reference(), Config{Logger: logger})
		Expect(buf.String()).To(ContainSubstring("stage=classified"))
		Expect(buf.String()).To(ContainSubstring("gain computed"))
	})
})

var _ = ginkgo.Describe("Stage", func() {
	ginkgo.It("names every stage", func() {
		Expect(GainComputed.String()).To(Equal("gain_computed"))
		Expect(Stage(99).String()).To(Equal("stage(99)"))
	})

	ginkgo.It("knows which stages are outcomes", func() {
		Expect(NoEquilibrium.Terminal()).To(BeTrue())
		Expect(Classified.Terminal()).To(BeFalse())
	})
})
