package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeEnter      EventType = "node_enter"
	EventResult         EventType = "result"
	EventFallback       EventType = "fallback"
	EventLanguageChange EventType = "language_change"
	EventHandoff        EventType = "handoff"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// NodeEvent represents entry into a question node.
type NodeEvent struct {
	EventBase
	NodeKey string `json:"node_key"`
	Symptom string `json:"symptom"`
	Depth   int    `json:"depth"`
}

// ResultEvent represents reaching a terminal recommendation.
type ResultEvent struct {
	EventBase
	ResultID string `json:"result_id"`
	BranchID string `json:"branch_id"`
	Urgent   bool   `json:"urgent"`
	Generic  bool   `json:"generic"`
	Symptom  string `json:"symptom"`
}

// FallbackEvent represents an unresolvable key replaced by the generic result.
type FallbackEvent struct {
	EventBase
	MissingKey string   `json:"missing_key"`
	Language   Language `json:"language"`
}

// LanguageEvent represents a language switch.
type LanguageEvent struct {
	EventBase
	From  Language `json:"from"`
	To    Language `json:"to"`
	Phase Phase    `json:"phase"`
}

// HandoffEvent represents a booking hand-off.
type HandoffEvent struct {
	EventBase
	Handoff Handoff `json:"handoff"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnNodeEnter      func(context.Context, *NodeEvent)
	OnResult         func(context.Context, *ResultEvent)
	OnFallback       func(context.Context, *FallbackEvent)
	OnLanguageChange func(context.Context, *LanguageEvent)
	OnHandoff        func(context.Context, *HandoffEvent)
}

// Merge returns hooks that invoke h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnNodeEnter:      chain(h.OnNodeEnter, other.OnNodeEnter),
		OnResult:         chain(h.OnResult, other.OnResult),
		OnFallback:       chain(h.OnFallback, other.OnFallback),
		OnLanguageChange: chain(h.OnLanguageChange, other.OnLanguageChange),
		OnHandoff:        chain(h.OnHandoff, other.OnHandoff),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
