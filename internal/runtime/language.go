package runtime

import (
	"context"

	"github.com/luminex/symptomcheck/pkg/domain"
)

// SwitchLanguage swaps the display language of a session.
//
// On the entry selector and the gate only the language changes, so the next
// render shows the same screen (with gate selections kept). During traversal,
// and on a result, the session restarts at the first question of its symptom.
func (e *Engine) SwitchLanguage(ctx context.Context, state *domain.State, lang domain.Language) (*domain.State, error) {
	parsed, err := domain.ParseLanguage(string(lang))
	if err != nil {
		return nil, err
	}

	next := e.next(state)
	if parsed == state.Language {
		return next, nil
	}
	next.Language = parsed

	if e.hooks.OnLanguageChange != nil {
		e.hooks.OnLanguageChange(ctx, &domain.LanguageEvent{
			EventBase: e.base(domain.EventLanguageChange, state),
			From:      state.Language,
			To:        parsed,
			Phase:     state.Phase,
		})
	}

	switch state.Phase {
	case domain.PhaseTraversal, domain.PhaseResult:
		if state.Demographics.Symptom == "" {
			return next, nil
		}
		g, err := e.graph(ctx)
		if err != nil {
			return nil, err
		}
		e.logger.Debug("language switched mid-traversal, restarting symptom",
			"session_id", state.SessionID,
			"symptom", state.Demographics.Symptom,
			"depth", len(state.History))
		return e.enter(ctx, g, next, state.Demographics.Symptom, true)
	default:
		return next, nil
	}
}
