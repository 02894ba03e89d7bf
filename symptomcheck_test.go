package symptomcheck_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luminex/symptomcheck"
	"github.com/luminex/symptomcheck/pkg/adapters/memory"
	"github.com/luminex/symptomcheck/pkg/catalog"
	"github.com/luminex/symptomcheck/pkg/domain"
	"github.com/luminex/symptomcheck/pkg/dsl"
)

func pass(t *testing.T, eng *symptomcheck.Engine, symptom string, answers ...string) *domain.State {
	t.Helper()
	ctx := context.Background()
	s, err := eng.Start(ctx, "s", domain.StartOptions{Symptom: symptom})
	require.NoError(t, err)
	s, err = eng.SelectGender(ctx, s, domain.GenderMale)
	require.NoError(t, err)
	s, err = eng.SelectAgeRange(ctx, s, domain.AgeMiddle)
	require.NoError(t, err)
	s, err = eng.BeginAnalysis(ctx, s)
	require.NoError(t, err)
	for _, a := range answers {
		s, err = eng.Answer(ctx, s, a)
		require.NoError(t, err)
	}
	return s
}

func TestNew_DefaultCatalog(t *testing.T) {
	handoff := memory.NewHandoff()
	var results []string
	eng, err := symptomcheck.New(
		symptomcheck.WithBookingHandoff(handoff),
		symptomcheck.WithAppointmentURL("/book"),
		symptomcheck.WithLifecycleHooks(domain.LifecycleHooks{
			OnResult: func(_ context.Context, e *domain.ResultEvent) { results = append(results, "a:"+e.ResultID) },
		}),
		symptomcheck.WithLifecycleHooks(domain.LifecycleHooks{
			OnResult: func(_ context.Context, e *domain.ResultEvent) { results = append(results, "b:"+e.ResultID) },
		}),
	)
	require.NoError(t, err)
	assert.Equal(t, "catalog", eng.Name)
	require.NoError(t, eng.Validate())

	s := pass(t, eng, "bas_agrisi", "tek_tarafli", "zonklayici", "evet", "evet")
	assert.Equal(t, "migren_atagi", s.ResultID)
	assert.Equal(t, []string{"a:migren_atagi", "b:migren_atagi"}, results)

	booking, err := eng.Book(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "/book?branch=noroloji&dep=N%C3%B6roloji", booking.RedirectURL)

	_, err = eng.Watch(context.Background())
	assert.Error(t, err, "the embedded catalog never changes")
}

func TestNew_GraphFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.yaml")
	require.NoError(t, os.WriteFile(path, catalog.Source(), 0o644))

	eng, err := symptomcheck.New(symptomcheck.WithGraphFile(path))
	require.NoError(t, err)
	assert.Equal(t, "graph.yaml", eng.Name)

	g, err := eng.Inspect()
	require.NoError(t, err)
	assert.Contains(t, g.Results, "kalp_krizi_suphesi")
}

func TestNew_CustomLoaderAndStrictNodes(t *testing.T) {
	b := dsl.New().
		Branch("dahiliye", "Dahiliye", "Internal Medicine").
		Symptom("genel", "ates", "Ateş", "Fever")
	b.Node("ates").Ask("Kaç gündür?", "For how long?").
		Next("uzun", "Uzun", "Long", "eksik").
		Result("kisa", "Kısa", "Short", "grip")
	b.Result("grip").Title("Grip", "Flu").Branch("dahiliye")
	loader, err := b.Loader()
	require.NoError(t, err)

	eng, err := symptomcheck.New(symptomcheck.WithLoader(loader))
	require.NoError(t, err)
	s := pass(t, eng, "ates", "kisa")
	assert.Equal(t, "grip", s.ResultID)
	assert.Error(t, eng.Validate(), "option points at a missing node")

	strict, err := symptomcheck.New(symptomcheck.WithLoader(loader), symptomcheck.WithStrictNodes())
	require.NoError(t, err)
	ctx := context.Background()
	s = pass(t, strict, "ates")
	_, err = strict.Answer(ctx, s, "uzun")
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)

	lenient := pass(t, eng, "ates", "uzun")
	actions, terminal, err := eng.Render(ctx, lenient)
	require.NoError(t, err)
	assert.True(t, terminal)
	assert.Equal(t, domain.ActionRenderResult, actions[0].Type)
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, symptomcheck.Version)
}
