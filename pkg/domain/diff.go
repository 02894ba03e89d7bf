package domain

// StateDiff represents the changes between two states.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	Phase        *Phase        `json:"phase,omitempty"`
	Language     *Language     `json:"language,omitempty"`
	CurrentKey   *string       `json:"current_key,omitempty"`
	Demographics *Demographics `json:"demographics,omitempty"`
	ResultID     *string       `json:"result_id,omitempty"`

	// History carries appended keys, or the whole list when it was reset.
	History *HistoryDelta `json:"history,omitempty"`
}

// HistoryDelta represents changes to the visited keys.
type HistoryDelta struct {
	Reset    bool     `json:"reset,omitempty"`
	Appended []string `json:"appended"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState
// (initial load), leaving out fields that are still zero.
func Diff(oldState, newState *State) *StateDiff {
	if newState == nil {
		return nil
	}
	initial := oldState == nil
	if initial {
		oldState = &State{}
	}

	diff := &StateDiff{SessionID: newState.SessionID}

	if oldState.Phase != newState.Phase {
		diff.Phase = &newState.Phase
	}
	if oldState.Language != newState.Language {
		diff.Language = &newState.Language
	}
	if oldState.CurrentKey != newState.CurrentKey {
		diff.CurrentKey = &newState.CurrentKey
	}
	if oldState.Demographics != newState.Demographics {
		d := newState.Demographics
		diff.Demographics = &d
	}
	if oldState.ResultID != newState.ResultID {
		diff.ResultID = &newState.ResultID
	}
	diff.History = diffHistory(oldState, newState)

	if diff.IsEmpty() && !initial {
		return nil
	}
	return diff
}

func diffHistory(old *State, new *State) *HistoryDelta {
	oldLen, newLen := len(old.History), len(new.History)
	if newLen >= oldLen && equalPrefix(old.History, new.History) {
		if newLen == oldLen {
			return nil
		}
		return &HistoryDelta{Appended: new.History[oldLen:]}
	}
	// Language switch or restart rewrote the history.
	return &HistoryDelta{Reset: true, Appended: append([]string{}, new.History...)}
}

func equalPrefix(prefix, s []string) bool {
	for i := range prefix {
		if prefix[i] != s[i] {
			return false
		}
	}
	return true
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.Phase == nil &&
		d.Language == nil &&
		d.CurrentKey == nil &&
		d.Demographics == nil &&
		d.ResultID == nil &&
		d.History == nil
}
