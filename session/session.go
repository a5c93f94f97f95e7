// Package session holds the client-side view of the authenticated user
// as an explicit finite-state machine. Server identity is mirrored, not
// owned: the bearer token travels with every request and the who-am-i
// check decides what the client may believe at startup.
package session

import (
	webauth "github.com/caldris/go-webauth"
)

// State is the client's perceived authentication state.
type State int

const (
	// StateUnknown is the initial state, before the startup check of a
	// previously stored token has resolved.
	StateUnknown State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "invalid"
	}
}

// EventType tags the transition events.
type EventType int

const (
	// EventAuthStart marks the beginning of an in-flight login or
	// register attempt.
	EventAuthStart EventType = iota
	// EventAuthSuccess resolves an attempt with a user.
	EventAuthSuccess
	// EventAuthError resolves an attempt with a display error.
	EventAuthError
	// EventSetUser resolves the startup check, with or without a user.
	EventSetUser
	EventLogout
	EventClearError
)

// Event is the tagged-variant input to the reducer.
type Event struct {
	Type EventType
	User *webauth.AccountSummary
	Err  string
}

// Snapshot is the observable session value. Pending is orthogonal to
// the base state and is true only while a login/register is in flight.
type Snapshot struct {
	State   State
	User    *webauth.AccountSummary
	Pending bool
	Err     string
}

// IsLoading reports whether the UI should treat the session as
// unresolved: either the startup check or an auth attempt is pending.
func (s Snapshot) IsLoading() bool {
	return s.State == StateUnknown || s.Pending
}

type transitionKey struct {
	state State
	event EventType
}

// transitions is the full table of accepted (state, event) pairs. Pairs
// absent from the table are rejected and leave the snapshot untouched.
var transitions = map[transitionKey]func(Snapshot, Event) Snapshot{
	{StateUnknown, EventSetUser}: applySetUser,
	{StateUnknown, EventLogout}:  applyLogout,

	{StateAnonymous, EventAuthStart}:   applyAuthStart,
	{StateAnonymous, EventAuthSuccess}: applyAuthSuccess,
	{StateAnonymous, EventAuthError}:   applyAuthError,
	{StateAnonymous, EventLogout}:      applyLogout,
	{StateAnonymous, EventClearError}:  applyClearError,

	{StateAuthenticated, EventAuthStart}:   applyAuthStart,
	{StateAuthenticated, EventAuthSuccess}: applyAuthSuccess,
	{StateAuthenticated, EventAuthError}:   applyAuthError,
	{StateAuthenticated, EventLogout}:      applyLogout,
	{StateAuthenticated, EventClearError}:  applyClearError,
}

// Reduce applies the event to the snapshot and returns the next value.
// The second return reports whether the pair was accepted.
func Reduce(snap Snapshot, ev Event) (Snapshot, bool) {
	apply, ok := transitions[transitionKey{snap.State, ev.Type}]
	if !ok {
		return snap, false
	}
	return apply(snap, ev), true
}

func applyAuthStart(s Snapshot, _ Event) Snapshot {
	s.Pending = true
	s.Err = ""
	return s
}

func applyAuthSuccess(s Snapshot, ev Event) Snapshot {
	s.State = StateAuthenticated
	s.User = ev.User
	s.Pending = false
	s.Err = ""
	return s
}

func applyAuthError(s Snapshot, ev Event) Snapshot {
	// base state is kept; Pending always resolves
	s.Pending = false
	s.Err = ev.Err
	return s
}

func applySetUser(s Snapshot, ev Event) Snapshot {
	s.Pending = false
	s.Err = ""
	if ev.User == nil {
		s.State = StateAnonymous
		s.User = nil
		return s
	}
	s.State = StateAuthenticated
	s.User = ev.User
	return s
}

func applyLogout(Snapshot, Event) Snapshot {
	return Snapshot{State: StateAnonymous}
}

func applyClearError(s Snapshot, _ Event) Snapshot {
	s.Err = ""
	return s
}
