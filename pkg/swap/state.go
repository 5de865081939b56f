package swap

import "time"

// State is a step of the swap state machine
type State string

const (
	Init       State = "init"
	ChainBound State = "chain_bound"
	Quoted     State = "quoted"
	Assembled  State = "assembled"
	Approved   State = "approved"
	Submitted  State = "submitted"
	Done       State = "done"
	Failed     State = "failed"
)

// IsTerminal returns true for Done and Failed
func (s State) IsTerminal() bool {
	return s == Done || s == Failed
}

// Transition describes a single state change
type Transition struct {
	From    State
	To      State
	Elapsed time.Duration // time spent in From
	Err     error         // set when To is Failed
}

// Observer is notified of every state change, in order
type Observer interface {
	OnTransition(t Transition)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(t Transition)

// OnTransition calls f
func (f ObserverFunc) OnTransition(t Transition) {
	f(t)
}
