package symptomcheck_test

import (
	"context"
	"fmt"
	"log"

	"github.com/luminex/symptomcheck"
	"github.com/luminex/symptomcheck/pkg/domain"
)

// ExampleNew walks the headache path of the embedded catalog to its result.
func ExampleNew() {
	eng, err := symptomcheck.New()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	state, err := eng.Start(ctx, "example", domain.StartOptions{Symptom: "bas_agrisi", Language: domain.English})
	if err != nil {
		log.Fatal(err)
	}
	state, _ = eng.SelectGender(ctx, state, domain.GenderFemale)
	state, _ = eng.SelectAgeRange(ctx, state, domain.AgeAdult)
	state, _ = eng.BeginAnalysis(ctx, state)

	for _, answer := range []string{"1", "Throbbing", "evet", "evet"} {
		if state, err = eng.Answer(ctx, state, answer); err != nil {
			log.Fatal(err)
		}
	}

	actions, terminal, err := eng.Render(ctx, state)
	if err != nil {
		log.Fatal(err)
	}
	result := actions[0].Payload.(domain.ResultView)
	fmt.Println(terminal, result.Title, "->", result.Department)
	// Output: true Migraine Attack -> Neurology
}
