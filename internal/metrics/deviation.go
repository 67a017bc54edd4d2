package metrics

import "github.com/san-kum/linstab/internal/dynamo"

// PeakDeviation is the largest distance from target seen so far.
type PeakDeviation struct {
	target dynamo.State
	peak   float64
}

func NewPeakDeviation(target dynamo.State) *PeakDeviation {
	return &PeakDeviation{target: target.Clone()}
}

func (p *PeakDeviation) Name() string { return "peak_deviation" }

func (p *PeakDeviation) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if d := x.Sub(p.target).Norm(); d > p.peak {
		p.peak = d
	}
}

func (p *PeakDeviation) Value() float64 { return p.peak }

func (p *PeakDeviation) Reset() { p.peak = 0 }

// SettlingTime is the earliest time after which the state stays within
// tolerance of target. It reports -1 while the state is still outside.
type SettlingTime struct {
	target    dynamo.State
	tolerance float64
	settledAt float64
	inside    bool
}

func NewSettlingTime(target dynamo.State, tolerance float64) *SettlingTime {
	return &SettlingTime{target: target.Clone(), tolerance: tolerance, settledAt: -1}
}

func (s *SettlingTime) Name() string { return "settling_time" }

func (s *SettlingTime) Observe(x dynamo.State, u dynamo.Control, t float64) {
	within := x.Sub(s.target).Norm() <= s.tolerance
	switch {
	case within && !s.inside:
		s.settledAt = t
	case !within:
		s.settledAt = -1
	}
	s.inside = within
}

func (s *SettlingTime) Value() float64 { return s.settledAt }

func (s *SettlingTime) Reset() {
	s.settledAt = -1
	s.inside = false
}

// ControlEffort integrates |u - ref|^2 over time with the left rectangle
// rule: the input term of the quadratic cost for R = I. ref is the input
// that holds the equilibrium.
type ControlEffort struct {
	ref   dynamo.Control
	cost  float64
	lastU dynamo.Control
	lastT float64
	seen  bool
}

func NewControlEffort(ref dynamo.Control) *ControlEffort {
	return &ControlEffort{ref: append(dynamo.Control(nil), ref...)}
}

func (c *ControlEffort) Name() string { return "control_effort" }

func (c *ControlEffort) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if c.seen {
		var sq float64
		for i, v := range c.lastU {
			if i < len(c.ref) {
				v -= c.ref[i]
			}
			sq += v * v
		}
		c.cost += sq * (t - c.lastT)
	}
	c.lastU = append(c.lastU[:0], u...)
	c.lastT = t
	c.seen = true
}

func (c *ControlEffort) Value() float64 { return c.cost }

func (c *ControlEffort) Reset() {
	c.cost = 0
	c.lastU = c.lastU[:0]
	c.seen = false
}
