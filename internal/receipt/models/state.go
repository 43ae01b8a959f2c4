package models

// State is a step of the mint pipeline.
type State string

const (
	StateStart        State = "START"
	StateAssociating  State = "ASSOCIATING"
	StatePublishing   State = "PUBLISHING"
	StateMinting      State = "MINTING"
	StateTransferring State = "TRANSFERRING"
	StateDone         State = "DONE"
	StatePartial      State = "PARTIAL"
	StateFailed       State = "FAILED"
)

var transitions = map[State][]State{
	StateStart:        {StateAssociating, StateFailed},
	StateAssociating:  {StatePublishing, StateFailed},
	StatePublishing:   {StateMinting, StateFailed},
	StateMinting:      {StateTransferring, StateDone, StateFailed},
	StateTransferring: {StateDone, StatePartial, StateFailed},
}

// CanTransitionTo reports whether the pipeline may move from s to next.
func (s State) CanTransitionTo(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions leave s.
func (s State) Terminal() bool {
	return s == StateDone || s == StatePartial || s == StateFailed
}
