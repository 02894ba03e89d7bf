package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/luminex/symptomcheck/pkg/domain"
)

func TestTextHandler_Output(t *testing.T) {
	out := &bytes.Buffer{}
	h := NewTextHandler(strings.NewReader(""), out, WithHints(false),
		WithTextHandlerRenderer(func(s string) (string, error) { return "Rendered: " + s, nil }))

	actions := []domain.ActionRequest{
		{Type: domain.ActionRenderQuestion, Payload: domain.QuestionView{
			Step:     2,
			Question: "Ağrının karakteri nasıl?",
			Options:  []domain.Choice{{Value: "zonklayici", Label: "Zonklayıcı"}, {Value: "batici", Label: "Batıcı"}},
		}},
		{Type: domain.ActionRequestInput, Payload: domain.InputRequest{Type: domain.InputChoice}},
	}

	needsInput, err := h.Output(context.Background(), actions)
	if err != nil {
		t.Fatalf("Output failed: %v", err)
	}
	if !needsInput {
		t.Error("Expected output to return true for needsInput")
	}

	got := out.String()
	for _, want := range []string{"Rendered: ### 2. Ağrının karakteri nasıl?", "- [1] Zonklayıcı", "- [2] Batıcı"} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected output to contain %q, got %q", want, got)
		}
	}
}

func TestGateMarkdown_Numbering(t *testing.T) {
	v := domain.GateView{
		Title:        "Bilgiler",
		Genders:      []domain.Choice{{Value: "female", Label: "Kadın", Selected: true}, {Value: "male", Label: "Erkek"}},
		AgeRanges:    []domain.Choice{{Value: "adult", Label: "Yetişkin"}},
		StartLabel:   "Analizi Başlat",
		StartEnabled: false,
	}
	md := GateMarkdown(v)
	if !strings.Contains(md, "- [1] (x) Kadın") || !strings.Contains(md, "- [3] ( ) Yetişkin") {
		t.Errorf("unexpected gate markdown: %q", md)
	}
	if !strings.Contains(md, "~~Analizi Başlat~~") {
		t.Errorf("disabled start should be struck through: %q", md)
	}

	v.StartEnabled = true
	if md := GateMarkdown(v); !strings.Contains(md, "- [4] **Analizi Başlat**") {
		t.Errorf("enabled start should be choice 4: %q", md)
	}
}

func TestTextHandler_InputRetriesRejectedLines(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "8")
	out := &bytes.Buffer{}
	h := NewTextHandler(strings.NewReader("much too long\n  evet  \n"), out)

	val, err := h.Input(context.Background())
	if err != nil {
		t.Fatalf("Input failed: %v", err)
	}
	if val != "evet" {
		t.Errorf("Expected 'evet', got %q", val)
	}
	if !strings.Contains(out.String(), "Please try again") {
		t.Errorf("Expected retry prompt, got %q", out.String())
	}

	if _, err := h.Input(context.Background()); err != io.EOF {
		t.Errorf("Expected io.EOF, got %v", err)
	}
}

func TestTextHandler_InputHonoursContext(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	h := NewTextHandler(pr, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := h.Input(ctx); err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestJSONHandler(t *testing.T) {
	out := &bytes.Buffer{}
	h := NewJSONHandler(strings.NewReader("\"Hello World\"\nraw text\n"), out)

	for _, want := range []string{"Hello World", "raw text"} {
		got, err := h.Input(context.Background())
		if err != nil {
			t.Fatalf("Input failed: %v", err)
		}
		if got != want {
			t.Errorf("Expected %q, got %q", want, got)
		}
	}

	needsInput, err := h.Output(context.Background(), []domain.ActionRequest{
		{Type: domain.ActionRenderEntry, Payload: domain.EntryView{Greeting: "Merhaba"}},
		{Type: domain.ActionRequestInput, Payload: domain.InputRequest{Type: domain.InputChoice, Options: []string{"ates"}}},
	})
	if err != nil || !needsInput {
		t.Fatalf("Output: needsInput=%v err=%v", needsInput, err)
	}
	if err := h.SystemOutput(context.Background(), "invalid option"); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 JSON lines, got %d", len(lines))
	}
	var decoded []domain.ActionRequest
	if err := json.Unmarshal([]byte(lines[1]), &decoded); err != nil {
		t.Fatalf("Failed to decode JSON: %v", err)
	}
	if decoded[0].Type != ActionSystemMessage || decoded[0].Payload != "invalid option" {
		t.Errorf("unexpected system message: %+v", decoded[0])
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in   string
		want Command
	}{
		{":lang en", Command{Kind: CmdLanguage, Arg: "en"}},
		{":LANG tr", Command{Kind: CmdLanguage, Arg: "tr"}},
		{":restart", Command{Kind: CmdRestart}},
		{":book", Command{Kind: CmdBook}},
		{"exit", Command{Kind: CmdExit}},
		{"quit", Command{Kind: CmdExit}},
		{" 3 ", Command{Kind: CmdInput, Arg: "3"}},
	}
	for _, tt := range tests {
		if got := ParseCommand(tt.in); got != tt.want {
			t.Errorf("ParseCommand(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
