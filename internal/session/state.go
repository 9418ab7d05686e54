package session

import "fmt"

// State is the position of a session in its lifecycle
type State string

const (
	StateIdle           State = "idle"
	StateAuthenticating State = "authenticating"
	StateProfileLoading State = "profile_loading"
	StateReady          State = "ready"
	StateError          State = "error"
	StateSignedOut      State = "signed_out"
)

// transitions lists the states reachable from each state. Any state may move
// to signed_out; signed_out is final.
var transitions = map[State][]State{
	StateIdle:           {StateAuthenticating},
	StateAuthenticating: {StateProfileLoading, StateError},
	StateProfileLoading: {StateReady, StateError},
	StateReady:          {StateProfileLoading},
	StateError:          {StateProfileLoading, StateAuthenticating},
}

// CanTransition reports whether from may move to to
func CanTransition(from, to State) bool {
	if from == StateSignedOut {
		return false
	}
	if to == StateSignedOut {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s *Session) to(next State) error {
	if !CanTransition(s.State, next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.State, next)
	}
	s.State = next
	if next != StateError {
		s.Error = ""
	}
	return nil
}

// fail moves to the error state recording cause
func (s *Session) fail(cause error) {
	if s.to(StateError) == nil {
		s.Error = cause.Error()
	}
}
