package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrNodeNotFound is returned when a node key does not resolve in the graph and the
// engine runs with the strict unknown-node policy.
var ErrNodeNotFound = errors.New("node not found")

// ErrResultNotFound is returned when a result id does not resolve in the graph.
var ErrResultNotFound = errors.New("result not found")

var (
	// ErrInvalidPhase is returned when an operation is not allowed in the current session phase.
	ErrInvalidPhase = errors.New("operation not allowed in current phase")

	// ErrSymptomRequired is returned when traversal is requested before a symptom is chosen.
	ErrSymptomRequired = errors.New("symptom must be selected before analysis")

	// ErrUnknownSymptom is returned when a symptom key is not part of the entry catalog.
	ErrUnknownSymptom = errors.New("unknown symptom")

	// ErrGateIncomplete is returned when analysis is started without gender and age range.
	ErrGateIncomplete = errors.New("gender and age range are required")

	// ErrInvalidOption is returned when the input does not match any option of the current node.
	ErrInvalidOption = errors.New("invalid option")

	ErrUnknownGender   = errors.New("unknown gender")
	ErrUnknownAgeRange = errors.New("unknown age range")
	ErrUnknownLanguage = errors.New("unknown language")

	// ErrNoResult is returned when a booking is requested for a session that has not reached a result.
	ErrNoResult = errors.New("session has no result")
)
