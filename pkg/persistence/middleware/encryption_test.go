package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luminex/symptomcheck/pkg/adapters/memory"
	"github.com/luminex/symptomcheck/pkg/domain"
	"github.com/luminex/symptomcheck/pkg/persistence/middleware"
	"github.com/luminex/symptomcheck/pkg/ports"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func encrypted(t *testing.T, inner ports.StateStore, cfg middleware.EncryptionConfig) ports.StateStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return mw(inner)
}

func sampleState() *domain.State {
	s := domain.NewState("s1")
	s.Phase = domain.PhaseTraversal
	s.UserName = "Ayşe"
	s.Demographics = domain.Demographics{Gender: domain.GenderFemale, AgeRange: domain.AgeAdult, Symptom: "bas_agrisi"}
	s.CurrentKey = "bas_agrisi"
	s.History = []string{"bas_agrisi"}
	return s
}

func TestEncryption_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, encrypted(t, memory.NewStore(), middleware.EncryptionConfig{ActiveKey: generateKey(t)}))
}

func TestEncryption_HidesContent(t *testing.T) {
	inner := memory.NewStore()
	store := encrypted(t, inner, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", sampleState()))

	raw, err := inner.Load(ctx, "s1")
	require.NoError(t, err)
	assert.NotEmpty(t, raw.Sealed)
	assert.Empty(t, raw.UserName)
	assert.Empty(t, raw.Demographics.Symptom)
	assert.Empty(t, raw.History)
	assert.Equal(t, domain.PhaseTraversal, raw.Phase)

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Ayşe", loaded.UserName)
	assert.Equal(t, "bas_agrisi", loaded.Demographics.Symptom)
	assert.Empty(t, loaded.Sealed)
}

func TestEncryption_KeyRotation(t *testing.T) {
	inner := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	require.NoError(t, encrypted(t, inner, middleware.EncryptionConfig{ActiveKey: oldKey}).Save(ctx, "s1", sampleState()))

	rotated := encrypted(t, inner, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}})
	s, err := rotated.Load(ctx, "s1")
	require.NoError(t, err)
	require.NoError(t, rotated.Save(ctx, "s1", s))

	_, err = encrypted(t, inner, middleware.EncryptionConfig{ActiveKey: newKey}).Load(ctx, "s1")
	assert.NoError(t, err, "re-saved state is sealed with the new key")

	_, err = encrypted(t, inner, middleware.EncryptionConfig{ActiveKey: generateKey(t)}).Load(ctx, "s1")
	assert.Error(t, err)
}

func TestEncryption_RejectsPlainState(t *testing.T) {
	inner := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, inner.Save(ctx, "s1", sampleState()))

	_, err := encrypted(t, inner, middleware.EncryptionConfig{ActiveKey: generateKey(t)}).Load(ctx, "s1")
	assert.ErrorIs(t, err, middleware.ErrNotSealed)
}

func TestEncryption_KeyValidation(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	assert.Error(t, err)

	key := generateKey(t)
	parsed, err := middleware.ParseKey(hex.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, parsed)

	_, err = middleware.ParseKey("not-a-key")
	assert.Error(t, err)
}
