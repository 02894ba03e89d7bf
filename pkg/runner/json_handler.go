package runner

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/luminex/symptomcheck/pkg/domain"
)

// JSONHandler implements IOHandler over JSON lines.
// Every Output call writes one line holding the action array; input lines may
// be JSON strings or raw text.
type JSONHandler struct {
	Writer  io.Writer
	Encoder *json.Encoder

	pump *linePump
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Writer:  w,
		Encoder: json.NewEncoder(w),
		pump:    newLinePump(r),
	}
}

func (h *JSONHandler) Output(_ context.Context, actions []domain.ActionRequest) (bool, error) {
	if len(actions) == 0 {
		return false, nil
	}
	if err := h.Encoder.Encode(actions); err != nil {
		return false, err
	}
	for _, act := range actions {
		if act.Type == domain.ActionRequestInput || act.Type == domain.ActionRenderResult {
			return true, nil
		}
	}
	return false, nil
}

func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	text, err := h.pump.next(ctx)
	if err != nil {
		return "", err
	}
	var val string
	if err := json.Unmarshal([]byte(text), &val); err == nil {
		text = val
	}
	return SanitizeInput(text)
}

func (h *JSONHandler) SystemOutput(_ context.Context, msg string) error {
	return h.Encoder.Encode([]domain.ActionRequest{{Type: ActionSystemMessage, Payload: msg}})
}

func (h *JSONHandler) Booking(_ context.Context, b *domain.Booking) error {
	return h.Encoder.Encode([]domain.ActionRequest{{Type: ActionBooking, Payload: b}})
}
