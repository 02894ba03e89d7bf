package domain

// ActionRequest represents something the engine requests the host to present.
type ActionRequest struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Standard Action Types
const (
	// ActionRenderEntry requests the symptom picker. Payload: EntryView
	ActionRenderEntry = "RENDER_ENTRY"

	// ActionRenderGate requests the demographics gate. Payload: GateView
	ActionRenderGate = "RENDER_GATE"

	// ActionRenderQuestion requests a question with its answers. Payload: QuestionView
	ActionRenderQuestion = "RENDER_QUESTION"

	// ActionRenderResult requests the result presenter. Payload: ResultView
	ActionRenderResult = "RENDER_RESULT"

	// ActionRequestInput requests the host to collect input from the user.
	// Payload: InputRequest
	ActionRequestInput = "REQUEST_INPUT"
)

// InputType defines the kind of input requested.
type InputType string

const (
	InputChoice  InputType = "choice"
	InputConfirm InputType = "confirm"
)

// InputRequest describes the input the host should collect next.
type InputRequest struct {
	Type    InputType `json:"type"`
	Options []string  `json:"options,omitempty"`
}

// Choice is a selectable element of a view.
type Choice struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected,omitempty"`
}

// EntryView is the localized symptom picker.
type EntryView struct {
	Greeting   string          `json:"greeting"`
	Prompt     string          `json:"prompt"`
	Categories []EntryCategory `json:"categories"`
}

// EntryCategory is one group of the symptom picker.
type EntryCategory struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Symptoms []Choice `json:"symptoms"`
}

// GateView is the localized demographics gate.
type GateView struct {
	Title        string   `json:"title"`
	Symptom      string   `json:"symptom"`
	GenderLabel  string   `json:"gender_label"`
	Genders      []Choice `json:"genders"`
	AgeLabel     string   `json:"age_label"`
	AgeRanges    []Choice `json:"age_ranges"`
	StartLabel   string   `json:"start_label"`
	StartEnabled bool     `json:"start_enabled"`
}

// QuestionView is a localized node with one choice per option, in catalog order.
type QuestionView struct {
	Key      string   `json:"key"`
	Step     int      `json:"step"`
	Question string   `json:"question"`
	Options  []Choice `json:"options"`
}

// ResultView is a localized terminal recommendation.
type ResultView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Department  string `json:"department"`
	BranchID    string `json:"branch_id"`
	Urgent      bool   `json:"urgent"`

	// Generic marks the synthesized fail-open recommendation.
	Generic bool `json:"generic,omitempty"`

	Disclaimer string `json:"disclaimer"`
	BookLabel  string `json:"book_label"`
}
