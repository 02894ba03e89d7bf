package runtime

import (
	"context"
	"fmt"

	"github.com/luminex/symptomcheck/pkg/domain"
)

// Book hands the result of a terminal state off to the booking flow and returns
// the booking page URL carrying the branch and department.
func (e *Engine) Book(ctx context.Context, state *domain.State) (*domain.Booking, error) {
	g, err := e.graph(ctx)
	if err != nil {
		return nil, err
	}
	r, err := e.bookable(g, state)
	if err != nil {
		return nil, err
	}
	h := domain.Handoff{
		BranchID:             r.BranchID,
		BranchName:           g.DepartmentName(r, state.Language),
		DiagnosisTitle:       r.Title.Get(state.Language),
		DiagnosisDescription: r.Desc.Get(state.Language),
	}

	if e.handoff != nil {
		if err := e.handoff.Deliver(ctx, state.SessionID, h); err != nil {
			return nil, fmt.Errorf("failed to deliver hand-off: %w", err)
		}
	}

	target, err := h.RedirectURL(e.appointmentURL)
	if err != nil {
		return nil, fmt.Errorf("invalid appointment url: %w", err)
	}

	if e.hooks.OnHandoff != nil {
		e.hooks.OnHandoff(ctx, &domain.HandoffEvent{
			EventBase: e.base(domain.EventHandoff, state),
			Handoff:   h,
		})
	}
	e.logger.Info("booking hand-off",
		"session_id", state.SessionID,
		"branch", h.BranchID,
		"result_id", r.ID)

	return &domain.Booking{Handoff: h, RedirectURL: target}, nil
}

// resolveResult returns the result of a terminal state. A result id that no
// longer resolves (e.g. after a graph reload) degrades to the generic result.
// bookable returns the result a state presents. A traversal state whose
// current key left the graph presents the generic result (see renderStep),
// so it books that one.
func (e *Engine) bookable(g *domain.Graph, state *domain.State) (*domain.Result, error) {
	switch state.Phase {
	case domain.PhaseResult:
		return e.resolveResult(g, state), nil
	case domain.PhaseTraversal:
		if _, ok := g.Node(state.CurrentKey); !ok && e.policy != PolicyStrict {
			return g.FallbackResult(), nil
		}
	}
	return nil, domain.ErrNoResult
}

func (e *Engine) resolveResult(g *domain.Graph, state *domain.State) *domain.Result {
	if !state.Fallback {
		if r, ok := g.Result(state.ResultID); ok {
			return r
		}
		e.logger.Warn("result no longer in graph, presenting generic recommendation",
			"result_id", state.ResultID, "session_id", state.SessionID)
	}
	return g.FallbackResult()
}
