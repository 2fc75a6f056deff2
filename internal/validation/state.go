package validation

import "fmt"

// State is the aggregator lifecycle.
//
//	NotStarted -> Parsing -> ChecksRunning -> Complete
//	                     \-> Failed
type State int

const (
	NotStarted State = iota
	Parsing
	ChecksRunning
	Complete
	Failed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Parsing:
		return "parsing"
	case ChecksRunning:
		return "checks_running"
	case Complete:
		return "complete"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for st := NotStarted; st <= Failed; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown validation state %q", text)
}

// transitions lists the legal moves.
var transitions = map[State][]State{
	NotStarted:    {Parsing},
	Parsing:       {ChecksRunning, Failed},
	ChecksRunning: {Complete},
}

func (s State) canMoveTo(next State) bool {
	for _, n := range transitions[s] {
		if n == next {
			return true
		}
	}
	return false
}
