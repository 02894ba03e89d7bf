/*
Package symptomcheck is the LUMINEX symptom checker: a bilingual (Turkish and
English) decision-tree engine that walks a patient from a symptom to a
recommended hospital department and hands the result off to appointment
booking.

A session moves through four phases. The entry selector lists the symptoms
by category; the demographics gate asks for gender and an age range; the
traversal asks the symptom's questions one at a time; the result names a
probable condition, a department and whether it is urgent. The result is
guidance only and is never a medical diagnosis.

# Hexagonal layout

The engine is stateless. Every operation takes a domain.State and returns a
new one, so hosts decide where sessions live (memory, files, Redis or
Postgres, see pkg/adapters) and how they are presented (terminal runner,
HTTP API or MCP tools).

# Usage

	eng, err := symptomcheck.New()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	state, _ := eng.Start(ctx, "session-1", domain.StartOptions{Symptom: "bas_agrisi"})
	state, _ = eng.SelectGender(ctx, state, domain.GenderFemale)
	state, _ = eng.SelectAgeRange(ctx, state, domain.AgeAdult)
	state, _ = eng.BeginAnalysis(ctx, state)

	actions, terminal, _ := eng.Render(ctx, state)

The default graph is the embedded catalog (pkg/catalog). WithGraphFile and
WithGraphDir load an alternative graph from a YAML/JSON document or from a
directory with one document per node, and WithLoader accepts any
ports.GraphLoader, including graphs built with pkg/dsl.
*/
package symptomcheck
