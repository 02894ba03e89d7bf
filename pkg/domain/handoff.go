package domain

import "net/url"

// Session keys read by the appointment booking page.
const (
	KeyRecommendedBranch     = "recommendedBranch"
	KeyRecommendedBranchName = "recommendedBranchName"
	KeyLastDiagnosis         = "lastAiDiagnosis"
	KeyLastDescription       = "lastAiDescription"
)

// Handoff is the message passed to the booking flow when the user chooses
// to book an appointment from a result.
type Handoff struct {
	BranchID             string `json:"branch_id"`
	BranchName           string `json:"branch_name"`
	DiagnosisTitle       string `json:"diagnosis_title"`
	DiagnosisDescription string `json:"diagnosis_description"`
}

// Values returns the hand-off as session key/value pairs.
func (h Handoff) Values() map[string]string {
	return map[string]string{
		KeyRecommendedBranch:     h.BranchID,
		KeyRecommendedBranchName: h.BranchName,
		KeyLastDiagnosis:         h.DiagnosisTitle,
		KeyLastDescription:       h.DiagnosisDescription,
	}
}

// HandoffFromValues rebuilds a Handoff from session key/value pairs.
func HandoffFromValues(v map[string]string) Handoff {
	return Handoff{
		BranchID:             v[KeyRecommendedBranch],
		BranchName:           v[KeyRecommendedBranchName],
		DiagnosisTitle:       v[KeyLastDiagnosis],
		DiagnosisDescription: v[KeyLastDescription],
	}
}

// RedirectURL appends the branch and dep query parameters to the booking page URL.
// Existing query parameters of base are preserved.
func (h Handoff) RedirectURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("branch", h.BranchID)
	q.Set("dep", h.BranchName)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Booking is the outcome of a hand-off: the message delivered and the page to open.
type Booking struct {
	Handoff     Handoff `json:"handoff"`
	RedirectURL string  `json:"redirect_url"`
}
