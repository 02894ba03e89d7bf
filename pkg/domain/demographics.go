package domain

import (
	"fmt"
	"strings"
)

// Gender is the gender selected on the demographics gate.
type Gender string

const (
	GenderFemale Gender = "female"
	GenderMale   Gender = "male"
	GenderOther  Gender = "other"
)

// Genders lists the gate choices in display order.
var Genders = []Gender{GenderFemale, GenderMale, GenderOther}

// ParseGender validates s against the fixed gender set.
func ParseGender(s string) (Gender, error) {
	g := Gender(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range Genders {
		if v == g {
			return g, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGender, s)
}

// AgeRange is the age bracket selected on the demographics gate.
type AgeRange string

const (
	AgeChild  AgeRange = "child"  // 0-12
	AgeYoung  AgeRange = "young"  // 13-18
	AgeAdult  AgeRange = "adult"  // 19-40
	AgeMiddle AgeRange = "middle" // 41-65
	AgeSenior AgeRange = "senior" // 65+
)

// AgeRanges lists the gate choices in display order.
var AgeRanges = []AgeRange{AgeChild, AgeYoung, AgeAdult, AgeMiddle, AgeSenior}

// ParseAgeRange validates s against the fixed age range set.
func ParseAgeRange(s string) (AgeRange, error) {
	a := AgeRange(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range AgeRanges {
		if v == a {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAgeRange, s)
}

// Demographics holds the values collected before traversal.
// They are recorded for the hand-off but never influence branching.
type Demographics struct {
	Gender   Gender   `json:"gender,omitempty"`
	AgeRange AgeRange `json:"age_range,omitempty"`

	// Symptom is the entry node key chosen by the user or supplied by the host.
	Symptom string `json:"symptom,omitempty"`
}

// IsSenior is derived from the age range.
func (d Demographics) IsSenior() bool {
	return d.AgeRange == AgeSenior
}

// Complete reports whether both gate values are set.
func (d Demographics) Complete() bool {
	return d.Gender != "" && d.AgeRange != ""
}
