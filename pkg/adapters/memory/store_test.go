package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/luminex/symptomcheck/pkg/adapters/memory"
	"github.com/luminex/symptomcheck/pkg/domain"
	"github.com/luminex/symptomcheck/pkg/ports"
	"github.com/luminex/symptomcheck/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, memory.NewStore())
}

func TestMemoryStore_TTL(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore(memory.WithTTL(time.Hour), memory.WithClock(func() time.Time { return now }))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "tab", domain.NewState("tab")))
	now = now.Add(59 * time.Minute)
	_, err := store.Load(ctx, "tab")
	require.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = store.Load(ctx, "tab")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestMemoryHandoff_Contract(t *testing.T) {
	ports.RunHandoffContract(t, memory.NewHandoff())
}

func TestMemoryHandoff_SessionKeys(t *testing.T) {
	h := memory.NewHandoff()
	require.NoError(t, h.Deliver(context.Background(), "tab-1", domain.Handoff{
		BranchID:             "noroloji",
		BranchName:           "Nöroloji",
		DiagnosisTitle:       "Migren Atağı",
		DiagnosisDescription: "desc",
	}))

	values, ok := h.Values("tab-1")
	require.True(t, ok)
	assert.Equal(t, "noroloji", values["recommendedBranch"])
	assert.Equal(t, "Nöroloji", values["recommendedBranchName"])
	assert.Equal(t, "Migren Atağı", values["lastAiDiagnosis"])
	assert.Equal(t, "desc", values["lastAiDescription"])

	_, ok = h.Values("tab-2")
	assert.False(t, ok, "hand-off values are scoped to their session")
}

func sampleGraph(question string) *domain.Graph {
	g := domain.NewGraph()
	g.Branches["dahiliye"] = &domain.Branch{ID: "dahiliye", Name: domain.Text{domain.Turkish: "Dahiliye"}}
	g.Results["r"] = &domain.Result{ID: "r", Title: domain.Text{domain.Turkish: "Sonuç"}, BranchID: "dahiliye"}
	g.Nodes["start"] = &domain.Node{
		Key:      "start",
		Question: domain.Text{domain.Turkish: question},
		Options:  []domain.Option{{ID: "evet", Text: domain.Text{domain.Turkish: "Evet"}, Result: "r"}},
	}
	return g
}

func TestMemoryLoader_Contract(t *testing.T) {
	tests.GraphLoaderContractTest(t, memory.NewLoader(sampleGraph("Soru?")), []string{"start"}, []string{"r"})
}

func TestMemoryLoader_Watch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loader := memory.NewLoader(sampleGraph("v1"))
	ch, err := loader.Watch(ctx)
	require.NoError(t, err)

	loader.Replace(sampleGraph("v2"))

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected reload signal")
	}

	g, err := loader.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v2", g.Nodes["start"].Question.Get(domain.Turkish))

	cancel()
	assert.Eventually(t, func() bool {
		_, open := <-ch
		return !open
	}, time.Second, 10*time.Millisecond)
}

func TestIdentity(t *testing.T) {
	id := memory.Identity{"u1": "Ayşe"}
	name, err := id.DisplayName(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ayşe", name)

	name, err = id.DisplayName(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, name)
}
