package runner

import (
	"context"

	"github.com/luminex/symptomcheck/pkg/domain"
)

// Action types emitted by handlers in addition to the engine's own.
const (
	ActionSystemMessage = "SYSTEM_MESSAGE"
	ActionBooking       = "BOOKING"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Output presents the actions to the user.
	// Returns true if the actions ask for input.
	Output(ctx context.Context, actions []domain.ActionRequest) (bool, error)

	// Input reads one line from the user. io.EOF ends the session.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message (validation feedback, hints).
	SystemOutput(ctx context.Context, msg string) error

	// Booking presents the outcome of a hand-off.
	Booking(ctx context.Context, b *domain.Booking) error
}

// ContentRenderer transforms markdown before it is written (e.g. glamour).
type ContentRenderer func(string) (string, error)
