package ports

import (
	"context"

	"github.com/luminex/symptomcheck/pkg/domain"
)

// StatelessEngine defines the symptom checker core as seen by hosts.
// Every operation takes a state and returns a new one; the input is never mutated.
type StatelessEngine interface {
	// Start creates the state of a new session.
	Start(ctx context.Context, sessionID string, opts domain.StartOptions) (*domain.State, error)

	// Render calculates the presentation for a given state without advancing it.
	// The boolean reports whether the state is terminal.
	Render(ctx context.Context, state *domain.State) ([]domain.ActionRequest, bool, error)

	SelectSymptom(ctx context.Context, state *domain.State, key string) (*domain.State, error)
	SelectGender(ctx context.Context, state *domain.State, gender domain.Gender) (*domain.State, error)
	SelectAgeRange(ctx context.Context, state *domain.State, age domain.AgeRange) (*domain.State, error)

	// BeginAnalysis leaves the demographics gate and enters the symptom's first question.
	BeginAnalysis(ctx context.Context, state *domain.State) (*domain.State, error)

	// Answer activates one option of the current question.
	Answer(ctx context.Context, state *domain.State, input string) (*domain.State, error)

	SwitchLanguage(ctx context.Context, state *domain.State, lang domain.Language) (*domain.State, error)

	// Book hands the result of a terminal state off to the booking flow.
	Book(ctx context.Context, state *domain.State) (*domain.Booking, error)

	// Reset returns the session to the entry selector.
	Reset(ctx context.Context, state *domain.State) (*domain.State, error)

	// Inspect returns the current graph for introspection.
	Inspect() (*domain.Graph, error)
}
