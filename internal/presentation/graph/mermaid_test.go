package graph_test

import (
	"strings"
	"testing"

	"github.com/luminex/symptomcheck/internal/presentation/graph"
	"github.com/luminex/symptomcheck/pkg/catalog"
	"github.com/luminex/symptomcheck/pkg/domain"
	"github.com/luminex/symptomcheck/pkg/dsl"
)

func TestGenerateMermaid(t *testing.T) {
	b := dsl.New().
		Branch("noroloji", "Nöroloji", "Neurology").
		Branch("acil", "Acil Servis", "Emergency").
		Symptom("genel", "bas", "Baş Ağrısı", "Headache")
	b.Node("bas").
		Ask("Nerede?", "Where?").
		Next("tek", "Tek taraflı", "One \"side\"", "bas-tek").
		Result("ani", "Ani", "Sudden", "kanama")
	b.Node("bas-tek").
		Ask("Zonklayıcı mı?", "Throbbing?").
		Result("evet", "Evet", "Yes", "migren")
	b.Result("migren").Title("Migren", "Migraine").Branch("noroloji")
	b.Result("kanama").Title("Kanama", "Bleed").Branch("acil").Urgent()

	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	tests := []struct {
		name     string
		lang     domain.Language
		overlay  *graph.GraphOverlay
		contains []string
	}{
		{
			name: "Shapes",
			lang: domain.English,
			contains: []string{
				`bas(["Headache"])`,
				`bas_tek[/"bas-tek"/]`,
				`r_migren["Migraine<br/>Neurology"]`,
			},
		},
		{
			name: "Edges And Escaping",
			lang: domain.English,
			contains: []string{
				`bas -- "One 'side'" --> bas_tek`,
				`bas -- "Sudden" --> r_kanama`,
			},
		},
		{
			name:     "Urgent Styling",
			lang:     domain.Turkish,
			contains: []string{"class r_kanama urgent;", `r_kanama["Kanama<br/>Acil Servis"]`},
		},
		{
			name:    "Overlay",
			lang:    domain.Turkish,
			overlay: &graph.GraphOverlay{VisitedNodes: []string{"bas", "bas-tek", "bas"}, ResultID: "migren"},
			contains: []string{
				"class bas visited;",
				"class bas_tek visited;",
				"class r_migren current;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(g, tt.lang, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			if tt.overlay != nil && strings.Count(got, "class bas visited;") != 1 {
				t.Error("visited nodes should be deduplicated")
			}
		})
	}
}

func TestGenerateMermaid_Catalog(t *testing.T) {
	g, err := catalog.Default()
	if err != nil {
		t.Fatal(err)
	}
	got := graph.GenerateMermaid(g, domain.Turkish, nil)
	if !strings.Contains(got, `r_migren_atagi["Migren Atağı<br/>Nöroloji"]`) {
		t.Errorf("missing migraine result in %d bytes of output", len(got))
	}
	if strings.Contains(got, "Overlay") {
		t.Error("no overlay requested")
	}
}
