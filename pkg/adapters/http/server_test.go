package http_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luminex/symptomcheck/internal/runtime"
	httpadapter "github.com/luminex/symptomcheck/pkg/adapters/http"
	"github.com/luminex/symptomcheck/pkg/adapters/memory"
	"github.com/luminex/symptomcheck/pkg/catalog"
	"github.com/luminex/symptomcheck/pkg/domain"
	"github.com/luminex/symptomcheck/pkg/runner"
	"github.com/luminex/symptomcheck/pkg/session"
)

type fixture struct {
	srv     *httptest.Server
	handoff *memory.Handoff
	store   *memory.Store
}

func newFixture(t *testing.T, opts ...httpadapter.Option) *fixture {
	t.Helper()
	handoff := memory.NewHandoff()
	store := memory.NewStore()
	engine := runtime.NewEngine(catalog.NewLoader(),
		runtime.WithBookingHandoff(handoff),
		runtime.WithAppointmentURL("/randevu-al.html"))

	h, err := httpadapter.NewHandler(engine, session.NewManager(store), opts...)
	require.NoError(t, err)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, handoff: handoff, store: store}
}

func (f *fixture) post(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	resp, err := http.Post(f.srv.URL+path, "application/json", r)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (f *fixture) action(t *testing.T, id, action, value string) runner.Response {
	t.Helper()
	resp := f.post(t, "/sessions/"+id+"/"+action, map[string]string{"value": value})
	require.Equal(t, http.StatusOK, resp.StatusCode, "%s %q", action, value)
	return decodeResponse(t, resp)
}

func decodeResponse(t *testing.T, resp *http.Response) runner.Response {
	t.Helper()
	var out struct {
		State    domain.State      `json:"state"`
		Actions  []json.RawMessage `json:"actions"`
		Terminal bool              `json:"terminal"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	actions := make([]domain.ActionRequest, len(out.Actions))
	for i, raw := range out.Actions {
		require.NoError(t, json.Unmarshal(raw, &actions[i]))
	}
	return runner.Response{State: &out.State, Actions: actions, Terminal: out.Terminal}
}

func TestSessionFlow_MigraineHandoff(t *testing.T) {
	f := newFixture(t)

	resp := f.post(t, "/sessions?symptom=bas_agrisi", map[string]string{"session_id": "tab-1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeResponse(t, resp)
	assert.Equal(t, domain.PhaseGate, created.State.Phase)
	assert.Equal(t, domain.ActionRenderGate, created.Actions[0].Type)

	f.action(t, "tab-1", "gender", "female")
	gate := f.action(t, "tab-1", "age", "adult")
	view := gate.Actions[0].Payload.(map[string]any)
	assert.Equal(t, true, view["start_enabled"])

	f.action(t, "tab-1", "start", "")
	for _, a := range []string{"tek_tarafli", "zonklayici", "evet"} {
		f.action(t, "tab-1", "answer", a)
	}
	result := f.action(t, "tab-1", "answer", "evet")
	require.True(t, result.Terminal)
	payload := result.Actions[0].Payload.(map[string]any)
	assert.Equal(t, "Migren Atağı", payload["title"])
	assert.Equal(t, "Nöroloji", payload["department"])

	resp = f.post(t, "/sessions/tab-1/book", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var booking domain.Booking
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&booking))
	assert.Equal(t, "/randevu-al.html?branch=noroloji&dep=N%C3%B6roloji", booking.RedirectURL)

	values, ok := f.handoff.Values("tab-1")
	require.True(t, ok)
	assert.Equal(t, "Migren Atağı", values[domain.KeyLastDiagnosis])
}

func TestSessionFlow_ErrorMapping(t *testing.T) {
	f := newFixture(t)

	resp := f.post(t, "/sessions/missing/answer", map[string]string{"value": "1"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	f.post(t, "/sessions", map[string]string{"session_id": "s"})

	tests := []struct {
		action, value string
		status        int
	}{
		{"symptom", "uydurma", http.StatusBadRequest},
		{"answer", "1", http.StatusConflict},
		{"gender", "female", http.StatusConflict},
		{"language", "de", http.StatusBadRequest},
		{"teleport", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		resp := f.post(t, "/sessions/s/"+tt.action, map[string]string{"value": tt.value})
		assert.Equal(t, tt.status, resp.StatusCode, "%s %q", tt.action, tt.value)
	}

	f.action(t, "s", "symptom", "ates")
	f.action(t, "s", "gender", "male")
	resp = f.post(t, "/sessions/s/start", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "gate incomplete")

	resp = f.post(t, "/sessions/s/book", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "no result yet")
}

func TestSessionFlow_LanguageRestart(t *testing.T) {
	f := newFixture(t)
	f.post(t, "/sessions", map[string]string{"session_id": "l", "symptom": "bas_agrisi"})
	f.action(t, "l", "gender", "female")
	f.action(t, "l", "age", "senior")
	f.action(t, "l", "start", "")
	f.action(t, "l", "answer", "1")

	switched := f.action(t, "l", "language", "en")
	assert.Equal(t, domain.English, switched.State.Language)
	assert.Equal(t, []string{"bas_agrisi"}, switched.State.History)
	q := switched.Actions[0].Payload.(map[string]any)
	assert.Equal(t, "Where do you feel your headache?", q["question"])
}

func TestSessionFlow_EmptyLanguageKeepsSession(t *testing.T) {
	f := newFixture(t)
	f.post(t, "/sessions", map[string]string{"session_id": "e", "symptom": "bas_agrisi", "language": "en"})

	for _, body := range []any{map[string]string{"value": ""}, map[string]string{"value": "  "}, nil} {
		resp := f.post(t, "/sessions/e/language", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "body %v", body)
	}

	saved, err := f.store.Load(context.Background(), "e")
	require.NoError(t, err)
	assert.Equal(t, domain.English, saved.Language)
}

func TestGetAndDeleteSession(t *testing.T) {
	f := newFixture(t)
	f.post(t, "/sessions", map[string]string{"session_id": "d"})

	resp, err := http.Get(f.srv.URL + "/sessions/d")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodDelete, f.srv.URL+"/sessions/d", nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, err = f.store.Load(context.Background(), "d")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestCatalogGraphAndInfo(t *testing.T) {
	f := newFixture(t,
		httpadapter.WithVersion("1.4.0\n"),
		httpadapter.WithMetricsHandler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			io.WriteString(w, "luminex_results_total 0\n")
		})))

	get := func(path string) string {
		resp, err := http.Get(f.srv.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return string(body)
	}

	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(get("/info")), &info))
	assert.Equal(t, "1.4.0", info["version"])
	assert.Equal(t, "1.0.0", info["api_version"])

	assert.Contains(t, get("/catalog?lang=en"), `"Headache"`)
	assert.Contains(t, get("/graph"), `"migren_atagi"`)
	assert.Contains(t, get("/graph?format=mermaid&lang=en"), "graph TD")
	assert.Contains(t, get("/openapi.yaml"), "LUMINEX Symptom Checker API")
	assert.Contains(t, get("/metrics"), "luminex_results_total")
	assert.Contains(t, get("/health"), "ok")
}

func TestServerInterfaceWrapper_BindsParameters(t *testing.T) {
	var bound []string
	var failed error
	siw := httpadapter.ServerInterfaceWrapper{
		Handler:          recordingHandler{calls: &bound},
		ErrorHandlerFunc: func(_ http.ResponseWriter, _ *http.Request, err error) { failed = err },
	}

	siw.GetGraph(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/graph?format=mermaid&session_id=tab%201", nil))
	require.NoError(t, failed)
	assert.Equal(t, []string{"graph mermaid  tab 1"}, bound)

	// Outside the router there is no {id} to bind.
	siw.GetSession(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/sessions/", nil))
	var perr *httpadapter.ParamError
	require.ErrorAs(t, failed, &perr)
	assert.Equal(t, "id", perr.Name)
	assert.Len(t, bound, 1)
}

type recordingHandler struct {
	httpadapter.ServerInterface
	calls *[]string
}

func (h recordingHandler) GetGraph(_ http.ResponseWriter, _ *http.Request, p httpadapter.GetGraphParams) {
	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	*h.calls = append(*h.calls, "graph "+deref(p.Format)+" "+deref(p.Lang)+" "+deref(p.SessionID))
}

func (h recordingHandler) GetSession(_ http.ResponseWriter, _ *http.Request, id string) {
	*h.calls = append(*h.calls, "session "+id)
}

func TestLoadSpec(t *testing.T) {
	doc, err := httpadapter.LoadSpec(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, doc.Paths.Find("/sessions/{id}/book"))
}

func TestSubscribeEvents_SessionDiffs(t *testing.T) {
	f := newFixture(t)
	f.post(t, "/sessions", map[string]string{"session_id": "sse"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, f.srv.URL+"/events?session_id=sse&watch=phase", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := make(chan string, 16)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			if strings.HasPrefix(sc.Text(), "data: ") {
				lines <- strings.TrimPrefix(sc.Text(), "data: ")
			}
		}
		close(lines)
	}()
	require.Equal(t, "connected", <-lines)

	f.action(t, "sse", "symptom", "ates")
	f.action(t, "sse", "gender", "female") // filtered out: no phase change

	select {
	case msg := <-lines:
		var diff domain.StateDiff
		require.NoError(t, json.Unmarshal([]byte(msg), &diff))
		require.NotNil(t, diff.Phase)
		assert.Equal(t, domain.PhaseGate, *diff.Phase)
		assert.Equal(t, "sse", diff.SessionID)
	case <-time.After(2 * time.Second):
		t.Fatal("no diff received")
	}

	select {
	case msg := <-lines:
		t.Fatalf("unexpected diff %s", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSubscribeEvents_GraphReload(t *testing.T) {
	loader := memory.NewLoader(mustDefault(t))
	f := newFixture(t, httpadapter.WithGraphWatcher(loader))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, f.srv.URL+"/events", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	sc := bufio.NewScanner(resp.Body)
	readEvent := func() string {
		for sc.Scan() {
			if strings.HasPrefix(sc.Text(), "event: ") {
				return strings.TrimPrefix(sc.Text(), "event: ")
			}
		}
		return ""
	}
	require.Equal(t, "ping", readEvent())
	loader.Replace(mustDefault(t))
	assert.Equal(t, "reload", readEvent())
}

func mustDefault(t *testing.T) *domain.Graph {
	t.Helper()
	g, err := catalog.Default()
	require.NoError(t, err)
	return g
}
