package pipeline

import "fmt"

// Stage is a state of the analysis state machine.
type Stage int

const (
	Init Stage = iota
	EquilibriaSolved
	Linearized
	Classified
	GainComputed
	NoGainNeeded
	GainFailed
	NoEquilibrium
	Failed
	Done
)

var stageNames = map[Stage]string{
	Init:             "init",
	EquilibriaSolved: "equilibria_solved",
	Linearized:       "linearized",
	Classified:       "classified",
	GainComputed:     "gain_computed",
	NoGainNeeded:     "no_gain_needed",
	GainFailed:       "gain_failed",
	NoEquilibrium:    "no_equilibrium",
	Failed:           "failed",
	Done:             "done",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Terminal reports whether s is a run outcome.
func (s Stage) Terminal() bool {
	switch s {
	case GainComputed, NoGainNeeded, GainFailed, NoEquilibrium, Failed:
		return true
	}
	return false
}
