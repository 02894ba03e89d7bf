/*
Package dsl provides a fluent builder for constructing symptom checker graphs in Go.

It is an alternative to the YAML catalog for tests and embedding hosts. Texts are
given in Turkish first and English second; an empty English text leaves the
translation out (the engine then displays the Turkish text).

Example usage:

	b := dsl.New()
	b.Branch("noroloji", "Nöroloji", "Neurology")
	b.Symptom("bas_boyun", "bas_agrisi", "Baş Ağrısı", "Headache")

	b.Node("bas_agrisi").
		Ask("Baş ağrınız nerede?", "Where is your headache?").
		Next("tek", "Tek taraflı", "Unilateral", "bas_agrisi_tek").
		Result("ani", "Ani ve şiddetli", "Sudden and severe", "acil_durum")

	b.Result("acil_durum").
		Title("Acil Durum", "Emergency").
		Branch("acil").
		Urgent()

	graph, err := b.Build()
*/
package dsl
