package lqr

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"
)

// residual returns the infinity norm of AᵀP + PA − PBR⁻¹BᵀP + Q.
func residual(a, b, q, r, p mat.Matrix) float64 {
	var rinv mat.Dense
	if err := rinv.Inverse(r); err != nil {
		return math.Inf(1)
	}
	var atp, pa, pb, pbr, pbrbt, pbrbtp, sum mat.Dense
	atp.Mul(a.T(), p)
	pa.Mul(p, a)
	pb.Mul(p, b)
	pbr.Mul(&pb, &rinv)
	pbrbt.Mul(&pbr, b.T())
	pbrbtp.Mul(&pbrbt, p)
	sum.Add(&atp, &pa)
	sum.Sub(&sum, &pbrbtp)
	sum.Add(&sum, q)
	return mat.Norm(&sum, math.Inf(1))
}

type failingSolver struct{ err error }

func (f failingSolver) SolveCARE(a, b, q, r mat.Matrix) (*mat.Dense, error) {
	return nil, f.err
}

type fixedSolver struct{ p *mat.Dense }

func (f fixedSolver) SolveCARE(a, b, q, r mat.Matrix) (*mat.Dense, error) {
	return f.p, nil
}

func closedLoopStable(a, b, k mat.Matrix) bool {
	var bk, acl mat.Dense
	bk.Mul(b, k)
	acl.Sub(a, &bk)
	ok, err := hurwitz(&acl)
	Expect(err).NotTo(HaveOccurred())
	return ok
}

var _ = Describe("Synthesize", func() {
	var (
		a, b *mat.Dense
		w    Weights
	)

	BeforeEach(func() {
		w = DefaultWeights(2, 1)
	})

	Context("at the unstable saddle of the reference model", func() {
		BeforeEach(func() {
			a = mat.NewDense(2, 2, []float64{5, 1, -1, -1})
			b = mat.NewDense(2, 1, []float64{4, 2})
		})

		It("returns a stabilizing 1x2 gain", func() {
			k, err := Synthesize(a, b, w)
			Expect(err).NotTo(HaveOccurred())

			r, c := k.Dims()
			Expect(r).To(Equal(1))
			Expect(c).To(Equal(2))
			Expect(closedLoopStable(a, b, k)).To(BeTrue())
		})

		It("solves the Riccati equation", func() {
			p, err := Hamiltonian{}.SolveCARE(a, b, w.Q, w.R)
			Expect(err).NotTo(HaveOccurred())
			Expect(residual(a, b, w.Q, w.R, p)).To(BeNumerically("<", 1e-8))
			Expect(p.At(0, 1)).To(BeNumerically("~", p.At(1, 0), 1e-12))
		})

		It("is deterministic", func() {
			k1, err := Synthesize(a, b, w)
			Expect(err).NotTo(HaveOccurred())
			for i := 0; i < 5; i++ {
				k2, err := Synthesize(a, b, w)
				Expect(err).NotTo(HaveOccurred())
				Expect(mat.EqualApprox(k1, k2, 1e-12)).To(BeTrue())
			}
		})

		It("honours configured weights", func() {
			heavy := Weights{
				Q: mat.NewDense(2, 2, []float64{10, 0, 0, 1}),
				R: mat.NewDense(1, 1, []float64{100}),
			}
			p, err := Hamiltonian{}.SolveCARE(a, b, heavy.Q, heavy.R)
			Expect(err).NotTo(HaveOccurred())
			Expect(residual(a, b, heavy.Q, heavy.R, p)).To(BeNumerically("<", 1e-6))

			k, err := Synthesize(a, b, heavy)
			Expect(err).NotTo(HaveOccurred())
			Expect(closedLoopStable(a, b, k)).To(BeTrue())
		})
	})

	Context("for the double integrator", func() {
		It("matches the closed-form gain [1, sqrt(3)]", func() {
			a = mat.NewDense(2, 2, []float64{0, 1, 0, 0})
			b = mat.NewDense(2, 1, []float64{0, 1})

			k, err := Synthesize(a, b, w)
			Expect(err).NotTo(HaveOccurred())
			Expect(k.At(0, 0)).To(BeNumerically("~", 1, 1e-9))
			Expect(k.At(0, 1)).To(BeNumerically("~", math.Sqrt(3), 1e-9))
		})
	})

	Context("with an uncontrollable unstable mode", func() {
		It("reports ErrUncontrollable", func() {
			a = mat.NewDense(2, 2, []float64{1, 0, 0, -1})
			b = mat.NewDense(2, 1, []float64{0, 1})

			_, err := Synthesize(a, b, w)
			Expect(err).To(MatchError(ErrUncontrollable))
		})
	})

	Context("with a pure oscillator and no state cost", func() {
		It("reports imaginary-axis eigenvalues as ErrUncontrollable", func() {
			a = mat.NewDense(2, 2, []float64{0, 1, -1, 0})
			b = mat.NewDense(2, 1, []float64{0, 1})
			w.Q = mat.NewDense(2, 2, nil)

			_, err := Synthesize(a, b, w)
			Expect(err).To(MatchError(ErrUncontrollable))
		})
	})

	DescribeTable("invalid weights",
		func(q, r *mat.Dense) {
			a = mat.NewDense(2, 2, []float64{5, 1, -1, -1})
			b = mat.NewDense(2, 1, []float64{4, 2})

			_, err := Synthesize(a, b, Weights{Q: q, R: r})
			Expect(err).To(MatchError(ErrInvalidWeights))
		},
		Entry("zero R", identity(2), mat.NewDense(1, 1, []float64{0})),
		Entry("negative R", identity(2), mat.NewDense(1, 1, []float64{-1})),
		Entry("asymmetric Q", mat.NewDense(2, 2, []float64{1, 1, 0, 1}), identity(1)),
		Entry("indefinite Q", mat.NewDense(2, 2, []float64{1, 0, 0, -1}), identity(1)),
		Entry("wrong Q shape", identity(3), identity(1)),
		Entry("wrong R shape", identity(2), identity(2)),
		Entry("missing R", identity(2), (*mat.Dense)(nil)),
	)

	Context("with a custom solver", func() {
		BeforeEach(func() {
			a = mat.NewDense(2, 2, []float64{5, 1, -1, -1})
			b = mat.NewDense(2, 1, []float64{4, 2})
		})

		It("propagates solver errors", func() {
			_, err := SynthesizeWith(failingSolver{err: ErrNumeric}, a, b, w)
			Expect(err).To(MatchError(ErrNumeric))
		})

		It("rejects a non-stabilizing P", func() {
			_, err := SynthesizeWith(fixedSolver{p: mat.NewDense(2, 2, nil)}, a, b, w)
			Expect(err).To(MatchError(ErrUncontrollable))
		})
	})
})
