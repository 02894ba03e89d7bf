package ports

import (
	"context"
	"testing"
	"time"

	"github.com/luminex/symptomcheck/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewState(sessionID)
		state.Phase = domain.PhaseTraversal
		state.Language = domain.English
		state.Demographics = domain.Demographics{
			Gender:   domain.GenderFemale,
			AgeRange: domain.AgeAdult,
			Symptom:  "bas_agrisi",
		}
		state.CurrentKey = "bas_agrisi_tek"
		state.History = []string{"bas_agrisi", "bas_agrisi_tek"}

		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, state.CurrentKey, loaded.CurrentKey)
		assert.Equal(t, domain.PhaseTraversal, loaded.Phase)
		assert.Equal(t, domain.English, loaded.Language)
		assert.Equal(t, state.Demographics, loaded.Demographics)
		assert.Equal(t, state.History, loaded.History)
	})

	t.Run("Load Returns Independent Copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.CurrentKey = "mutated"

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.NotEqual(t, "mutated", again.CurrentKey)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewState(sessionID))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewState(id1))
		_ = store.Save(ctx, id2, domain.NewState(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunHandoffContract verifies that a BookingHandoff which is also a HandoffReader
// stores the four booking values per session.
func RunHandoffContract(t *testing.T, h interface {
	BookingHandoff
	HandoffReader
}) {
	ctx := context.Background()
	want := domain.Handoff{
		BranchID:             "noroloji",
		BranchName:           "Nöroloji",
		DiagnosisTitle:       "Migren Atağı",
		DiagnosisDescription: "Tek taraflı, zonklayıcı baş ağrısı.",
	}

	t.Run("Deliver and Read", func(t *testing.T) {
		require.NoError(t, h.Deliver(ctx, "handoff-1", want))

		got, err := h.Read(ctx, "handoff-1")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("Overwrite", func(t *testing.T) {
		other := want
		other.BranchID = "acil"
		require.NoError(t, h.Deliver(ctx, "handoff-1", other))

		got, err := h.Read(ctx, "handoff-1")
		require.NoError(t, err)
		assert.Equal(t, "acil", got.BranchID)
	})

	t.Run("Read Unknown Session", func(t *testing.T) {
		_, err := h.Read(ctx, "handoff-missing")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})
}
