package middleware

import (
	"context"

	"github.com/luminex/symptomcheck/pkg/domain"
	"github.com/luminex/symptomcheck/pkg/ports"
)

// Field names a personal field of the state that can be withheld from storage.
type Field string

const (
	FieldUserName Field = "user_name"
	FieldGender   Field = "gender"
	FieldAgeRange Field = "age_range"
)

type redactionMiddleware struct {
	next   ports.StateStore
	fields map[Field]bool
}

// NewRedactionMiddleware clears the given fields before a state is stored.
// Demographics are only read at the gate, so redacting them once traversal
// has started does not change any outcome.
func NewRedactionMiddleware(fields ...Field) Middleware {
	set := make(map[Field]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return func(next ports.StateStore) ports.StateStore {
		return &redactionMiddleware{next: next, fields: set}
	}
}

func (m *redactionMiddleware) Save(ctx context.Context, sessionID string, state *domain.State) error {
	out := state.Snapshot()
	if m.fields[FieldUserName] {
		out.UserName = ""
	}
	if state.Phase == domain.PhaseTraversal || state.Phase == domain.PhaseResult {
		if m.fields[FieldGender] {
			out.Demographics.Gender = ""
		}
		if m.fields[FieldAgeRange] {
			out.Demographics.AgeRange = ""
		}
	}
	return m.next.Save(ctx, sessionID, out)
}

func (m *redactionMiddleware) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *redactionMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *redactionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
