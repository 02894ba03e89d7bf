package domain

import "time"

// Phase is the screen a session is currently on.
type Phase string

const (
	PhaseEntry     Phase = "entry"     // symptom picker
	PhaseGate      Phase = "gate"      // gender and age range
	PhaseTraversal Phase = "traversal" // question loop
	PhaseResult    Phase = "result"    // terminal recommendation
)

// State represents the current snapshot of a symptom check session.
type State struct {
	SessionID string `json:"session_id"`

	Phase    Phase    `json:"phase"`
	Language Language `json:"language"`

	// UserName is the greeting name resolved at start; empty means guest.
	UserName string `json:"user_name,omitempty"`

	Demographics Demographics `json:"demographics"`

	// CurrentKey is the active node key while in traversal.
	CurrentKey string `json:"current_key,omitempty"`

	// History tracks the node keys visited since traversal began.
	History []string `json:"history,omitempty"`

	// ResultID is set once the session reaches a result.
	ResultID string `json:"result_id,omitempty"`

	// Fallback is true when the result was synthesized for an unresolvable key.
	Fallback bool `json:"fallback,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`

	// Sealed carries the encrypted form of a state written by an encrypting store.
	// It is empty on every state the engine sees.
	Sealed string `json:"sealed,omitempty"`
}

// NewState creates a clean state on the entry selector.
func NewState(sessionID string) *State {
	return &State{
		SessionID: sessionID,
		Phase:     PhaseEntry,
		Language:  DefaultLanguage,
		History:   []string{},
		UpdatedAt: time.Now().UTC(),
	}
}

// Terminated reports whether the session has reached a result.
func (s *State) Terminated() bool {
	return s.Phase == PhaseResult
}

// Snapshot returns a deep copy of the state.
func (s *State) Snapshot() *State {
	if s == nil {
		return nil
	}
	c := *s
	c.History = append([]string(nil), s.History...)
	return &c
}

// StartOptions configures a new session.
type StartOptions struct {
	// Symptom skips the entry selector when set (e.g. from a ?symptom= query parameter).
	Symptom string `json:"symptom,omitempty"`

	Language Language `json:"language,omitempty"`

	// UserID is resolved to a greeting name through the identity provider.
	UserID string `json:"user_id,omitempty"`
}
