package runner_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luminex/symptomcheck/internal/runtime"
	"github.com/luminex/symptomcheck/pkg/adapters/memory"
	"github.com/luminex/symptomcheck/pkg/catalog"
	"github.com/luminex/symptomcheck/pkg/domain"
	"github.com/luminex/symptomcheck/pkg/i18n"
	"github.com/luminex/symptomcheck/pkg/runner"
)

func lines(l ...string) *strings.Reader {
	return strings.NewReader(strings.Join(l, "\n") + "\n")
}

func TestRunner_TextMigraineBooking(t *testing.T) {
	handoff := memory.NewHandoff()
	store := memory.NewStore()
	engine := runtime.NewEngine(catalog.NewLoader(), runtime.WithBookingHandoff(handoff))

	var out bytes.Buffer
	r := runner.NewRunner(engine,
		runner.WithSessionID("cli"),
		runner.WithStore(store),
		runner.WithInputHandler(runner.NewTextHandler(
			// 4th symptom, female, adult (6th gate value), start (9th)
			lines("4", "1", "6", "9", "1", "zonklayici", "Evet, görsel aura oluyor", "evet", "1"),
			&out, runner.WithHints(false))),
	)

	final, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseResult, final.Phase)
	assert.Equal(t, "migren_atagi", final.ResultID)

	saved, err := store.Load(context.Background(), "cli")
	require.NoError(t, err)
	assert.Equal(t, "migren_atagi", saved.ResultID)

	values, ok := handoff.Values("cli")
	require.True(t, ok)
	assert.Equal(t, "noroloji", values[domain.KeyRecommendedBranch])

	text := out.String()
	assert.Contains(t, text, "- [4] Baş Ağrısı")
	assert.Contains(t, text, "(x) ")
	assert.Contains(t, text, "# Migren Atağı")
	assert.Contains(t, text, "branch=noroloji")
}

func TestRunner_RecoversFromInvalidInput(t *testing.T) {
	engine := runtime.NewEngine(catalog.NewLoader())
	var out bytes.Buffer
	r := runner.NewRunner(engine,
		runner.WithInputHandler(runner.NewTextHandler(lines("uydurma", "99", "exit"), &out)),
	)

	final, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseEntry, final.Phase)
	assert.Equal(t, 2, strings.Count(out.String(), "[!] "))
}

func TestRunner_LanguageCommandRestartsSymptom(t *testing.T) {
	engine := runtime.NewEngine(catalog.NewLoader())
	b := i18n.NewBroadcaster(domain.Turkish)

	var seen []domain.Language
	b.Subscribe(func(l domain.Language) { seen = append(seen, l) })

	var out bytes.Buffer
	r := runner.NewRunner(engine,
		runner.WithBroadcaster(b),
		runner.WithStartOptions(domain.StartOptions{Symptom: "bas_agrisi"}),
		runner.WithInputHandler(runner.NewTextHandler(
			lines("female", "adult", "start", "tek_tarafli", ":lang en", "exit"), &out)),
	)

	final, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Language{domain.English}, seen)
	assert.Equal(t, domain.English, final.Language)
	assert.Equal(t, domain.PhaseTraversal, final.Phase)
	assert.Equal(t, "bas_agrisi", final.CurrentKey)
	assert.Equal(t, []string{"bas_agrisi"}, final.History)
	assert.Contains(t, out.String(), "Where do you feel your headache?")
}

func TestRunner_LanguageWithoutBroadcaster(t *testing.T) {
	engine := runtime.NewEngine(catalog.NewLoader())
	var out bytes.Buffer
	r := runner.NewRunner(engine,
		runner.WithInputHandler(runner.NewTextHandler(lines(":lang en", ":lang de", "exit"), &out)),
	)

	final, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.English, final.Language)
	assert.Contains(t, out.String(), "unknown language")
}

func TestRunner_Restart(t *testing.T) {
	engine := runtime.NewEngine(catalog.NewLoader())
	r := runner.NewRunner(engine,
		runner.WithInputHandler(runner.NewTextHandler(lines("ates", ":restart", "exit"), &bytes.Buffer{})),
	)

	final, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseEntry, final.Phase)
	assert.Empty(t, final.Demographics.Symptom)
}

func TestRunner_JSONHeadless(t *testing.T) {
	engine := runtime.NewEngine(catalog.NewLoader(), runtime.WithBookingHandoff(memory.NewHandoff()))
	var out bytes.Buffer
	r := runner.NewRunner(engine,
		runner.WithSessionID("json"),
		runner.WithStartOptions(domain.StartOptions{Symptom: "nefes_darligi", Language: domain.English}),
		runner.WithInputHandler(runner.NewJSONHandler(
			lines(`"male"`, `"senior"`, "start", `"ani"`, `"evet"`, `"book"`), &out)),
	)

	final, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "kalp_krizi_suphesi", final.ResultID)

	var last []map[string]any
	outLines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.NoError(t, json.Unmarshal([]byte(outLines[len(outLines)-1]), &last))
	require.Len(t, last, 1)
	assert.Equal(t, runner.ActionBooking, last[0]["type"])
	assert.Contains(t, last[0]["payload"].(map[string]any)["redirect_url"], "branch=acil")
}

func TestRunner_ResumesInitialState(t *testing.T) {
	engine := runtime.NewEngine(catalog.NewLoader())
	start, err := engine.Start(context.Background(), "r", domain.StartOptions{Symptom: "ates"})
	require.NoError(t, err)

	r := runner.NewRunner(engine,
		runner.WithInitialState(start),
		runner.WithInputHandler(runner.NewTextHandler(lines("exit"), &bytes.Buffer{})),
	)
	final, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseGate, final.Phase)
}

func TestRunner_ResumedSessionSwitchesToBroadcasterLanguage(t *testing.T) {
	ctx := context.Background()
	engine := runtime.NewEngine(catalog.NewLoader())
	state, err := engine.Start(ctx, "r", domain.StartOptions{Symptom: "bas_agrisi", Language: domain.English})
	require.NoError(t, err)
	state, err = engine.SelectGender(ctx, state, domain.GenderFemale)
	require.NoError(t, err)
	state, err = engine.SelectAgeRange(ctx, state, domain.AgeAdult)
	require.NoError(t, err)
	state, err = engine.BeginAnalysis(ctx, state)
	require.NoError(t, err)
	state, err = engine.Answer(ctx, state, "tek_tarafli")
	require.NoError(t, err)

	// The host seeded the broadcaster from its own default, not from the session.
	b := i18n.NewBroadcaster(domain.Turkish)
	var out bytes.Buffer
	r := runner.NewRunner(engine,
		runner.WithBroadcaster(b),
		runner.WithInitialState(state),
		runner.WithInputHandler(runner.NewTextHandler(lines(":lang tr", "exit"), &out)),
	)

	final, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Turkish, final.Language)
	assert.Equal(t, "bas_agrisi", final.CurrentKey)
	assert.Contains(t, out.String(), "Baş ağrınız nerede hissediliyor?")
}

func TestRunner_BookBeforeResultIsRecoverable(t *testing.T) {
	engine := runtime.NewEngine(catalog.NewLoader())
	var out bytes.Buffer
	r := runner.NewRunner(engine,
		runner.WithStartOptions(domain.StartOptions{Symptom: "ates"}),
		runner.WithInputHandler(runner.NewTextHandler(lines(":book", "exit"), &out)),
	)

	final, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseGate, final.Phase)
	assert.Contains(t, out.String(), "[!] ")
}
