package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luminex/symptomcheck/internal/config"
	"github.com/luminex/symptomcheck/internal/logging"
	"github.com/luminex/symptomcheck/pkg/catalog"
	"github.com/luminex/symptomcheck/pkg/domain"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(config.Options{})
	require.NoError(t, err)
	cfg.Store.Driver = config.DriverFile
	cfg.Store.Path = t.TempDir()
	cfg.Language = "en"
	return cfg
}

func jsonInput(lines ...string) *strings.Reader {
	return strings.NewReader(strings.Join(lines, "\n") + "\n")
}

func lastLine(t *testing.T, out string) []map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	var actions []map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &actions))
	return actions
}

func TestRun_JSONResumesAcrossInvocations(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	var out bytes.Buffer
	err := Run(ctx, RunOptions{
		Config:    cfg,
		SessionID: "cli-1",
		Symptom:   "nefes_darligi",
		JSON:      true,
		Stdin:     jsonInput(`"male"`, `"senior"`, `"start"`),
		Stdout:    &out,
	})
	require.NoError(t, err)
	assert.Equal(t, "RENDER_QUESTION", lastLine(t, out.String())[0]["type"])

	out.Reset()
	err = Run(ctx, RunOptions{
		Config:    cfg,
		SessionID: "cli-1",
		JSON:      true,
		Stdin:     jsonInput(`"ani"`, `"evet"`, `"book"`),
		Stdout:    &out,
	})
	require.NoError(t, err)

	last := lastLine(t, out.String())
	assert.Equal(t, "BOOKING", last[0]["type"])
	assert.Contains(t, last[0]["payload"].(map[string]any)["redirect_url"], "branch=acil")
}

func TestRun_FreshDiscardsSession(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	require.NoError(t, Run(ctx, RunOptions{
		Config: cfg, SessionID: "cli-2", Symptom: "ates", JSON: true,
		Stdin: jsonInput(`"female"`), Stdout: &bytes.Buffer{},
	}))

	var out bytes.Buffer
	require.NoError(t, Run(ctx, RunOptions{
		Config: cfg, SessionID: "cli-2", Fresh: true, JSON: true,
		Stdin: jsonInput(), Stdout: &out,
	}))
	assert.Equal(t, "RENDER_ENTRY", lastLine(t, out.String())[0]["type"])
}

func TestRun_TextMode(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Driver = config.DriverMemory

	var out bytes.Buffer
	err := Run(context.Background(), RunOptions{
		Config: cfg, Symptom: "bas_agrisi",
		Stdin:  strings.NewReader("female\nadult\nstart\nexit\n"),
		Stdout: &out,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Where do you feel your headache?")
}

func TestRun_WatchNeedsWatchableGraph(t *testing.T) {
	cfg := testConfig(t)
	err := Run(context.Background(), RunOptions{Config: cfg, Watch: true, Stdin: jsonInput(), Stdout: &bytes.Buffer{}})
	assert.Error(t, err)

	err = Run(context.Background(), RunOptions{Config: cfg, Watch: true, JSON: true})
	assert.Error(t, err)
}

func TestOpenBackend_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	b, err := OpenBackend(ctx, config.StoreConfig{Driver: config.DriverRedis, RedisAddr: mr.Addr()}, logging.NewNop())
	require.NoError(t, err)
	defer b.Close()
	assert.NotNil(t, b.Locker)

	state := domain.NewState("r1")
	require.NoError(t, b.Sessions(logging.NewNop()).Save(ctx, "r1", state))
	assert.True(t, mr.Exists("luminex:session:r1"))

	_, err = OpenBackend(ctx, config.StoreConfig{Driver: config.DriverRedis, RedisAddr: "127.0.0.1:1"}, logging.NewNop())
	assert.Error(t, err)
}

func TestOpenBackend_EncryptedAndRedacted(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	b, err := OpenBackend(ctx, config.StoreConfig{
		Driver:        config.DriverFile,
		Path:          dir,
		EncryptionKey: strings.Repeat("ab", 32),
		Redact:        true,
	}, logging.NewNop())
	require.NoError(t, err)

	state := domain.NewState("e1")
	state.UserName = "Ayşe"
	state.Demographics = domain.Demographics{Gender: domain.GenderFemale, AgeRange: domain.AgeAdult}
	state.Phase = domain.PhaseTraversal
	require.NoError(t, b.Store.Save(ctx, "e1", state))

	raw, err := os.ReadFile(filepath.Join(dir, "e1.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "Ayşe")

	loaded, err := b.Store.Load(ctx, "e1")
	require.NoError(t, err)
	assert.Empty(t, loaded.UserName)
	assert.Empty(t, loaded.Demographics.Gender)

	_, err = OpenBackend(ctx, config.StoreConfig{Driver: config.DriverMemory, EncryptionKey: "short"}, logging.NewNop())
	assert.Error(t, err)
	_, err = OpenBackend(ctx, config.StoreConfig{Driver: "mongo"}, logging.NewNop())
	assert.Error(t, err)
}

func TestNewEngine_GraphPath(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(t.TempDir(), "graph.yaml")
	require.NoError(t, os.WriteFile(path, catalog.Source(), 0o644))

	eng, err := NewEngine(cfg, EngineOptions{GraphPath: path})
	require.NoError(t, err)
	require.NoError(t, eng.Validate())

	_, err = eng.Watch(context.Background())
	assert.NoError(t, err, "a graph file can be watched")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(config.LogConfig{Level: "warn", Format: "json"}, false, &buf)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	_, err = NewLogger(config.LogConfig{Level: "loud"}, false, &buf)
	assert.Error(t, err)
}
