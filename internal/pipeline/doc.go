// Package pipeline runs the full analysis of a model.
//
// A run moves through a fixed sequence of stages:
//
//	Init → EquilibriaSolved → Linearized → Classified → {GainComputed | NoGainNeeded | GainFailed} → Done
//
// A model without equilibria short-circuits Init → Done with an empty
// [Bundle]. Per-equilibrium work (linearization and classification) may fan
// out across workers; results are always stored by equilibrium index, so the
// bundle is identical for any worker count.
//
// # Example
//
//	b := pipeline.Run(ctx, model.Reference(), pipeline.Config{Workers: 4})
//	if b.Outcome == pipeline.GainComputed {
//		fmt.Println(mat.Formatted(b.Gain.K))
//	}
package pipeline
