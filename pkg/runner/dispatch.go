package runner

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/luminex/symptomcheck/pkg/domain"
	"github.com/luminex/symptomcheck/pkg/ports"
)

// CommandKind classifies a line of user input.
type CommandKind int

const (
	CmdInput CommandKind = iota
	CmdLanguage
	CmdRestart
	CmdBook
	CmdExit
)

// Command is a parsed line of user input.
type Command struct {
	Kind CommandKind
	Arg  string
}

// ParseCommand recognizes the runner commands; anything else is plain input.
func ParseCommand(line string) Command {
	line = strings.TrimSpace(line)
	lower := strings.ToLower(line)
	switch {
	case lower == "exit" || lower == "quit" || lower == ":q":
		return Command{Kind: CmdExit}
	case lower == ":restart":
		return Command{Kind: CmdRestart}
	case lower == ":book":
		return Command{Kind: CmdBook}
	case strings.HasPrefix(lower, ":lang"):
		return Command{Kind: CmdLanguage, Arg: strings.TrimSpace(line[len(":lang"):])}
	}
	return Command{Kind: CmdInput, Arg: line}
}

// InputOptions returns the option values of the first input request in actions.
func InputOptions(actions []domain.ActionRequest) []string {
	for _, act := range actions {
		if act.Type != domain.ActionRequestInput {
			continue
		}
		if req, ok := act.Payload.(domain.InputRequest); ok {
			return req.Options
		}
	}
	return nil
}

// resolveChoice maps a 1-based position onto options; other input passes through.
func resolveChoice(input string, options []string) string {
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(options) {
		return options[n-1]
	}
	return input
}

// Dispatch applies one line of input to state according to its phase.
// options are the values offered by the last render, used to resolve numbered choices.
func Dispatch(ctx context.Context, engine ports.StatelessEngine, state *domain.State, input string, options []string) (*domain.State, error) {
	switch state.Phase {
	case domain.PhaseEntry:
		return engine.SelectSymptom(ctx, state, resolveChoice(input, options))

	case domain.PhaseGate:
		value := strings.ToLower(resolveChoice(input, options))
		if value == "start" {
			return engine.BeginAnalysis(ctx, state)
		}
		if g, err := domain.ParseGender(value); err == nil {
			return engine.SelectGender(ctx, state, g)
		}
		if a, err := domain.ParseAgeRange(value); err == nil {
			return engine.SelectAgeRange(ctx, state, a)
		}
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidOption, input)

	case domain.PhaseTraversal:
		// The engine resolves positions and labels itself.
		return engine.Answer(ctx, state, input)
	}
	return nil, fmt.Errorf("%w: no input expected in %s phase", domain.ErrInvalidPhase, state.Phase)
}

// Recoverable reports whether err was caused by the user's input rather than the system.
func Recoverable(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidOption,
		domain.ErrUnknownSymptom,
		domain.ErrUnknownGender,
		domain.ErrUnknownAgeRange,
		domain.ErrUnknownLanguage,
		domain.ErrGateIncomplete,
		domain.ErrSymptomRequired,
		domain.ErrInvalidPhase,
		domain.ErrNoResult,
		ErrInputTooLarge,
		ErrInvalidUTF8,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Response combines a state with its presentation for rich clients (HTTP, MCP).
type Response struct {
	State    *domain.State          `json:"state"`
	Actions  []domain.ActionRequest `json:"actions,omitempty"`
	Terminal bool                   `json:"terminal"`
}

// Respond renders state into a Response.
func Respond(ctx context.Context, engine ports.StatelessEngine, state *domain.State) (*Response, error) {
	actions, terminal, err := engine.Render(ctx, state)
	if err != nil {
		// The state is still returned so the caller can recover.
		return &Response{State: state}, err
	}
	return &Response{State: state, Actions: actions, Terminal: terminal}, nil
}

// DispatchAndRender applies input and renders the resulting state.
func DispatchAndRender(ctx context.Context, engine ports.StatelessEngine, state *domain.State, input string) (*Response, error) {
	actions, _, err := engine.Render(ctx, state)
	if err != nil {
		return nil, err
	}
	next, err := Dispatch(ctx, engine, state, input, InputOptions(actions))
	if err != nil {
		return nil, err
	}
	return Respond(ctx, engine, next)
}
