package runtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/luminex/symptomcheck/pkg/domain"
)

// Render calculates the presentation for a state without advancing it.
// The boolean reports whether the state is terminal (a result is shown).
func (e *Engine) Render(ctx context.Context, state *domain.State) ([]domain.ActionRequest, bool, error) {
	g, err := e.graph(ctx)
	if err != nil {
		return nil, false, err
	}

	switch state.Phase {
	case domain.PhaseEntry:
		view := e.entryView(g, state)
		return []domain.ActionRequest{
			{Type: domain.ActionRenderEntry, Payload: view},
			inputRequest(symptomKeys(view)),
		}, false, nil

	case domain.PhaseGate:
		view := e.gateView(g, state)
		return []domain.ActionRequest{
			{Type: domain.ActionRenderGate, Payload: view},
			inputRequest(gateValues(view)),
		}, false, nil

	case domain.PhaseTraversal:
		act, err := e.renderStep(ctx, g, state, state.CurrentKey)
		if err != nil {
			return nil, false, err
		}
		if q, ok := act.Payload.(domain.QuestionView); ok {
			ids := make([]string, len(q.Options))
			for i, o := range q.Options {
				ids[i] = o.Value
			}
			return []domain.ActionRequest{act, inputRequest(ids)}, false, nil
		}
		return []domain.ActionRequest{act}, true, nil

	case domain.PhaseResult:
		r := e.resolveResult(g, state)
		return []domain.ActionRequest{{
			Type:    domain.ActionRenderResult,
			Payload: e.resultView(g, r, state.Language, state.Fallback),
		}}, true, nil
	}
	return nil, false, fmt.Errorf("%w: unknown phase %q", domain.ErrInvalidPhase, state.Phase)
}

// RenderStep renders a single node key in lang. A key absent from the graph
// yields the generic result under the default policy, never an error.
func (e *Engine) RenderStep(ctx context.Context, key string, lang domain.Language) (domain.ActionRequest, error) {
	g, err := e.graph(ctx)
	if err != nil {
		return domain.ActionRequest{}, err
	}
	state := domain.NewState("")
	state.Language = lang
	return e.renderStep(ctx, g, state, key)
}

func (e *Engine) renderStep(ctx context.Context, g *domain.Graph, state *domain.State, key string) (domain.ActionRequest, error) {
	node, ok := g.Node(key)
	if !ok {
		if e.policy == PolicyStrict {
			return domain.ActionRequest{}, fmt.Errorf("%w: %q", domain.ErrNodeNotFound, key)
		}
		e.logger.Warn("unresolvable key, presenting generic recommendation",
			"node_key", key,
			"language", state.Language,
			"session_id", state.SessionID,
			"policy", e.policy)
		e.emitFallback(ctx, state, key)
		return domain.ActionRequest{
			Type:    domain.ActionRenderResult,
			Payload: e.resultView(g, g.FallbackResult(), state.Language, true),
		}, nil
	}

	view := domain.QuestionView{
		Key:      node.Key,
		Step:     len(state.History),
		Question: node.Question.Get(state.Language),
		Options:  make([]domain.Choice, len(node.Options)),
	}
	for i, o := range node.Options {
		view.Options[i] = domain.Choice{Value: o.ID, Label: o.Text.Get(state.Language)}
	}
	return domain.ActionRequest{Type: domain.ActionRenderQuestion, Payload: view}, nil
}

func (e *Engine) entryView(g *domain.Graph, state *domain.State) domain.EntryView {
	lang := state.Language
	name := state.UserName
	if name == "" {
		name = g.Message("guest", lang)
	}

	view := domain.EntryView{
		Greeting: strings.ReplaceAll(g.Message("greeting", lang), "{name}", name),
		Prompt:   g.Message("entry_prompt", lang),
	}
	for _, c := range g.Categories {
		cat := domain.EntryCategory{ID: c.ID, Label: c.Label.Get(lang)}
		for _, it := range c.Items {
			cat.Symptoms = append(cat.Symptoms, domain.Choice{
				Value:    it.Key,
				Label:    it.Label.Get(lang),
				Selected: it.Key == state.Demographics.Symptom,
			})
		}
		view.Categories = append(view.Categories, cat)
	}
	return view
}

func (e *Engine) gateView(g *domain.Graph, state *domain.State) domain.GateView {
	lang := state.Language
	d := state.Demographics

	symptom := d.Symptom
	if item, ok := g.Symptom(d.Symptom); ok {
		symptom = item.Label.Get(lang)
	}

	view := domain.GateView{
		Title:        g.Message("gate_title", lang),
		Symptom:      symptom,
		GenderLabel:  g.Message("gender_label", lang),
		AgeLabel:     g.Message("age_label", lang),
		StartLabel:   g.Message("start", lang),
		StartEnabled: d.Complete(),
	}
	for _, gender := range domain.Genders {
		view.Genders = append(view.Genders, domain.Choice{
			Value:    string(gender),
			Label:    g.Message("gender_"+string(gender), lang),
			Selected: d.Gender == gender,
		})
	}
	for _, age := range domain.AgeRanges {
		view.AgeRanges = append(view.AgeRanges, domain.Choice{
			Value:    string(age),
			Label:    g.Message("age_"+string(age), lang),
			Selected: d.AgeRange == age,
		})
	}
	return view
}

func (e *Engine) resultView(g *domain.Graph, r *domain.Result, lang domain.Language, generic bool) domain.ResultView {
	return domain.ResultView{
		ID:          r.ID,
		Title:       r.Title.Get(lang),
		Description: r.Desc.Get(lang),
		Department:  g.DepartmentName(r, lang),
		BranchID:    r.BranchID,
		Urgent:      r.Urgent,
		Generic:     generic,
		Disclaimer:  disclaimer(g, lang),
		BookLabel:   g.Message("book", lang),
	}
}

var defaultDisclaimer = domain.Text{
	domain.Turkish: "Bu sonuç yapay zeka destekli bir ön değerlendirmedir ve tıbbi tanı yerine geçmez.",
	domain.English: "This result is an AI-assisted preliminary assessment and is not a medical diagnosis.",
}

// disclaimer is always present on a result, even for graphs without messages.
func disclaimer(g *domain.Graph, lang domain.Language) string {
	if t, ok := g.Messages["disclaimer"]; ok {
		if s := t.Get(lang); s != "" {
			return s
		}
	}
	return defaultDisclaimer.Get(lang)
}

func inputRequest(options []string) domain.ActionRequest {
	return domain.ActionRequest{
		Type:    domain.ActionRequestInput,
		Payload: domain.InputRequest{Type: domain.InputChoice, Options: options},
	}
}

func symptomKeys(v domain.EntryView) []string {
	var keys []string
	for _, c := range v.Categories {
		for _, s := range c.Symptoms {
			keys = append(keys, s.Value)
		}
	}
	return keys
}

func gateValues(v domain.GateView) []string {
	var values []string
	for _, c := range v.Genders {
		values = append(values, c.Value)
	}
	for _, c := range v.AgeRanges {
		values = append(values, c.Value)
	}
	if v.StartEnabled {
		values = append(values, "start")
	}
	return values
}
