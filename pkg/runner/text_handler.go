package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/luminex/symptomcheck/pkg/domain"
)

const commandHint = "_:lang tr|en · :restart · exit_"

// TextHandler renders views as markdown with numbered choices.
type TextHandler struct {
	Writer   io.Writer
	Renderer ContentRenderer

	// Hints appends the command reminder under every screen.
	Hints bool

	pump *linePump
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithHints toggles the command reminder.
func WithHints(on bool) TextHandlerOption {
	return func(h *TextHandler) {
		h.Hints = on
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{Writer: w, Hints: true, pump: newLinePump(r)}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *TextHandler) Output(_ context.Context, actions []domain.ActionRequest) (bool, error) {
	needsInput := false
	for _, act := range actions {
		var md string
		switch p := act.Payload.(type) {
		case domain.EntryView:
			md = EntryMarkdown(p)
		case domain.GateView:
			md = GateMarkdown(p)
		case domain.QuestionView:
			md = QuestionMarkdown(p)
		case domain.ResultView:
			md = ResultMarkdown(p)
			needsInput = true
		}
		if act.Type == domain.ActionRequestInput {
			needsInput = true
		}
		if md == "" {
			continue
		}
		if h.Hints {
			md += "\n" + commandHint + "\n"
		}
		if err := h.write(md); err != nil {
			return false, err
		}
	}
	return needsInput, nil
}

func (h *TextHandler) write(md string) error {
	out := md
	if h.Renderer != nil {
		if rendered, err := h.Renderer(md); err == nil {
			out = rendered
		}
	}
	_, err := fmt.Fprintln(h.Writer, strings.TrimRight(out, "\n"))
	return err
}

// Input prompts and reads one sanitized line. Rejected lines are reported and re-read.
func (h *TextHandler) Input(ctx context.Context) (string, error) {
	for {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		fmt.Fprint(h.Writer, "> ")

		text, err := h.pump.next(ctx)
		if err != nil {
			return "", err
		}
		clean, err := SanitizeInput(text)
		if err != nil {
			fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
			continue
		}
		return clean, nil
	}
}

func (h *TextHandler) SystemOutput(_ context.Context, msg string) error {
	_, err := fmt.Fprintf(h.Writer, "[!] %s\n", msg)
	return err
}

func (h *TextHandler) Booking(_ context.Context, b *domain.Booking) error {
	return h.write(fmt.Sprintf("**%s** → %s\n\n%s\n", b.Handoff.BranchName, b.Handoff.DiagnosisTitle, b.RedirectURL))
}

func choiceLines(b *strings.Builder, start int, choices []domain.Choice, marks bool) int {
	for _, c := range choices {
		mark := ""
		if marks {
			mark = "( ) "
			if c.Selected {
				mark = "(x) "
			}
		}
		fmt.Fprintf(b, "- [%d] %s%s\n", start, mark, c.Label)
		start++
	}
	return start
}

// EntryMarkdown numbers symptoms across categories in catalog order.
func EntryMarkdown(v domain.EntryView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n%s\n", v.Greeting, v.Prompt)
	n := 1
	for _, c := range v.Categories {
		fmt.Fprintf(&b, "\n## %s\n\n", c.Label)
		n = choiceLines(&b, n, c.Symptoms, false)
	}
	return b.String()
}

// GateMarkdown numbers genders, then age ranges, then the start action.
func GateMarkdown(v domain.GateView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", v.Title)
	if v.Symptom != "" {
		fmt.Fprintf(&b, "_%s_\n\n", v.Symptom)
	}
	fmt.Fprintf(&b, "**%s**\n\n", v.GenderLabel)
	n := choiceLines(&b, 1, v.Genders, true)
	fmt.Fprintf(&b, "\n**%s**\n\n", v.AgeLabel)
	n = choiceLines(&b, n, v.AgeRanges, true)
	if v.StartEnabled {
		fmt.Fprintf(&b, "\n- [%d] **%s**\n", n, v.StartLabel)
	} else {
		fmt.Fprintf(&b, "\n~~%s~~\n", v.StartLabel)
	}
	return b.String()
}

func QuestionMarkdown(v domain.QuestionView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### %d. %s\n\n", v.Step, v.Question)
	choiceLines(&b, 1, v.Options, false)
	return b.String()
}

// ResultMarkdown shows the recommendation and offers the booking action as choice 1.
func ResultMarkdown(v domain.ResultView) string {
	var b strings.Builder
	if v.Urgent {
		fmt.Fprintf(&b, "# 🚨 %s\n\n", v.Title)
	} else {
		fmt.Fprintf(&b, "# %s\n\n", v.Title)
	}
	fmt.Fprintf(&b, "%s\n\n**%s**\n\n", v.Description, v.Department)
	fmt.Fprintf(&b, "> %s\n\n", v.Disclaimer)
	fmt.Fprintf(&b, "- [1] %s\n", v.BookLabel)
	return b.String()
}
