package runtime

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/luminex/symptomcheck/pkg/domain"
)

// Start creates the state of a new session.
// With a symptom supplied (query parameter or earlier hand-off) the entry
// selector is skipped and the session opens on the demographics gate.
func (e *Engine) Start(ctx context.Context, sessionID string, opts domain.StartOptions) (*domain.State, error) {
	lang, err := domain.ParseLanguage(string(opts.Language))
	if err != nil {
		return nil, err
	}

	state := domain.NewState(sessionID)
	state.Language = lang
	state.UpdatedAt = e.now()
	state.UserName = e.displayName(ctx, opts.UserID)

	if symptom := strings.TrimSpace(opts.Symptom); symptom != "" {
		state.Demographics.Symptom = symptom
		state.Phase = domain.PhaseGate
	}

	e.logger.Debug("session started",
		"session_id", sessionID,
		"phase", state.Phase,
		"language", lang,
		"symptom", state.Demographics.Symptom)
	return state, nil
}

func (e *Engine) displayName(ctx context.Context, userID string) string {
	if userID == "" || e.identity == nil {
		return ""
	}
	name, err := e.identity.DisplayName(ctx, userID)
	if err != nil {
		e.logger.Warn("identity lookup failed, greeting as guest", "user_id", userID, "err", err)
		return ""
	}
	return name
}

// SelectSymptom sets the entry point chosen on the entry selector and advances to the gate.
func (e *Engine) SelectSymptom(ctx context.Context, state *domain.State, key string) (*domain.State, error) {
	if state.Phase != domain.PhaseEntry {
		return nil, fmt.Errorf("%w: cannot select a symptom in %s phase", domain.ErrInvalidPhase, state.Phase)
	}
	g, err := e.graph(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := g.Symptom(key); !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownSymptom, key)
	}

	next := e.next(state)
	next.Demographics.Symptom = key
	next.Phase = domain.PhaseGate
	return next, nil
}

// SelectGender stores the gender. A second selection replaces the first.
func (e *Engine) SelectGender(_ context.Context, state *domain.State, gender domain.Gender) (*domain.State, error) {
	if state.Phase != domain.PhaseGate {
		return nil, fmt.Errorf("%w: cannot select gender in %s phase", domain.ErrInvalidPhase, state.Phase)
	}
	g, err := domain.ParseGender(string(gender))
	if err != nil {
		return nil, err
	}
	next := e.next(state)
	next.Demographics.Gender = g
	return next, nil
}

// SelectAgeRange stores the age range. A second selection replaces the first.
func (e *Engine) SelectAgeRange(_ context.Context, state *domain.State, age domain.AgeRange) (*domain.State, error) {
	if state.Phase != domain.PhaseGate {
		return nil, fmt.Errorf("%w: cannot select age range in %s phase", domain.ErrInvalidPhase, state.Phase)
	}
	a, err := domain.ParseAgeRange(string(age))
	if err != nil {
		return nil, err
	}
	next := e.next(state)
	next.Demographics.AgeRange = a
	return next, nil
}

// BeginAnalysis leaves the gate and enters traversal at the chosen symptom.
// It fails with domain.ErrGateIncomplete until both gender and age range are set.
func (e *Engine) BeginAnalysis(ctx context.Context, state *domain.State) (*domain.State, error) {
	if state.Phase != domain.PhaseGate {
		return nil, fmt.Errorf("%w: analysis can only start from the gate", domain.ErrInvalidPhase)
	}
	if state.Demographics.Symptom == "" {
		return nil, domain.ErrSymptomRequired
	}
	if !state.Demographics.Complete() {
		return nil, domain.ErrGateIncomplete
	}

	g, err := e.graph(ctx)
	if err != nil {
		return nil, err
	}
	return e.enter(ctx, g, e.next(state), state.Demographics.Symptom, true)
}

// Answer activates one option of the current node. The input may be the option
// id, its 1-based position or its label in any language.
func (e *Engine) Answer(ctx context.Context, state *domain.State, input string) (*domain.State, error) {
	if state.Phase != domain.PhaseTraversal {
		return nil, fmt.Errorf("%w: no question to answer in %s phase", domain.ErrInvalidPhase, state.Phase)
	}
	g, err := e.graph(ctx)
	if err != nil {
		return nil, err
	}

	node, ok := g.Node(state.CurrentKey)
	if !ok {
		// The graph changed under the session; degrade like renderStep does.
		return e.unknownNode(ctx, g, e.next(state), state.CurrentKey)
	}

	opt, ok := MatchOption(node, input)
	if !ok {
		return nil, fmt.Errorf("%w: %q for node %s", domain.ErrInvalidOption, input, node.Key)
	}

	next := e.next(state)
	if opt.Terminal() {
		return e.conclude(ctx, g, next, opt.Result)
	}
	return e.enter(ctx, g, next, opt.Next, false)
}

// MatchOption finds the option selected by input.
func MatchOption(node *domain.Node, input string) (domain.Option, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return domain.Option{}, false
	}
	for _, o := range node.Options {
		if strings.EqualFold(o.ID, input) {
			return o, true
		}
	}
	if i, err := strconv.Atoi(input); err == nil && i >= 1 && i <= len(node.Options) {
		return node.Options[i-1], true
	}
	for _, o := range node.Options {
		for _, label := range o.Text {
			if strings.EqualFold(strings.TrimSpace(label), input) {
				return o, true
			}
		}
	}
	return domain.Option{}, false
}

// Reset returns the session to the entry selector, keeping language and greeting name.
func (e *Engine) Reset(_ context.Context, state *domain.State) (*domain.State, error) {
	fresh := domain.NewState(state.SessionID)
	fresh.Language = state.Language
	fresh.UserName = state.UserName
	fresh.UpdatedAt = e.now()
	return fresh, nil
}

// enter moves next to key. restart replaces the history instead of appending.
func (e *Engine) enter(ctx context.Context, g *domain.Graph, next *domain.State, key string, restart bool) (*domain.State, error) {
	next.Phase = domain.PhaseTraversal
	next.CurrentKey = key
	next.ResultID = ""
	next.Fallback = false
	if restart {
		next.History = []string{key}
	} else {
		next.History = append(next.History, key)
	}

	if _, ok := g.Node(key); !ok {
		return e.unknownNode(ctx, g, next, key)
	}
	e.emitNodeEnter(ctx, next)
	return next, nil
}

// conclude moves next to the result phase.
func (e *Engine) conclude(ctx context.Context, g *domain.Graph, next *domain.State, resultID string) (*domain.State, error) {
	r, ok := g.Result(resultID)
	if !ok {
		return e.unknownNode(ctx, g, next, resultID)
	}
	next.Phase = domain.PhaseResult
	next.ResultID = r.ID
	next.Fallback = false
	e.emitResult(ctx, next, r)
	return next, nil
}

// unknownNode applies the unknown-node policy to a key that did not resolve.
func (e *Engine) unknownNode(ctx context.Context, g *domain.Graph, next *domain.State, key string) (*domain.State, error) {
	if e.policy == PolicyStrict {
		return nil, fmt.Errorf("%w: %q", domain.ErrNodeNotFound, key)
	}

	e.logger.Warn("unresolvable key, presenting generic recommendation",
		"node_key", key,
		"language", next.Language,
		"session_id", next.SessionID,
		"policy", e.policy)

	fb := g.FallbackResult()
	next.Phase = domain.PhaseResult
	next.ResultID = fb.ID
	next.Fallback = true
	e.emitFallback(ctx, next, key)
	e.emitResult(ctx, next, fb)
	return next, nil
}
