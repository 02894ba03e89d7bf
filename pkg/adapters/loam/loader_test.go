package loam_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luminex/symptomcheck/internal/testutils"
	lumloam "github.com/luminex/symptomcheck/pkg/adapters/loam"
	"github.com/luminex/symptomcheck/pkg/domain"
	"github.com/luminex/symptomcheck/pkg/ports/tests"
)

var headacheGraph = map[string]string{
	"graph.yaml": `kind: graph
version: "test"
messages:
  guest: {tr: Misafir, en: Guest}
`,
	"branches/noroloji.yaml": `name: {tr: Nöroloji, en: Neurology}`,
	"categories/bas_boyun.yaml": `label: {tr: Baş ve Boyun, en: Head and Neck}
items:
  - {key: bas_agrisi, label: {tr: Baş Ağrısı, en: Headache}}
`,
	"nodes/bas_agrisi.md": `---
question: {en: "Where do you feel your headache?"}
options:
  - {id: tek_tarafli, text: {tr: Tek taraflı, en: One side}, next: bas_agrisi_tek}
  - {id: iki_tarafli, text: {tr: İki taraflı, en: Both sides}, result: gerilim_tipi}
---
Baş ağrınız nerede hissediliyor?
`,
	"nodes/bas_agrisi_tek.md": `---
question: {tr: "Zonklayıcı mı?", en: "Is it throbbing?"}
options:
  - {id: evet, text: {tr: Evet, en: "Yes"}, result: migren_atagi}
  - {id: hayir, text: {tr: Hayır, en: "No"}, result: gerilim_tipi}
---
`,
	"results/migren_atagi.yaml": `title: {tr: Migren Atağı, en: Migraine Attack}
desc: {tr: Açıklama, en: Description}
branch: noroloji
`,
	"results/gerilim_tipi.yaml": `title: {tr: Gerilim Tipi Baş Ağrısı, en: Tension-Type Headache}
desc: {tr: Açıklama, en: Description}
branch: noroloji
`,
	"extra/generic.yaml": `kind: fallback
title: {tr: Uzman Değerlendirmesi, en: Specialist Evaluation}
desc: {tr: Açıklama, en: Description}
branch: noroloji
`,
}

func seed(t *testing.T, files map[string]string) (string, *lumloam.Loader) {
	t.Helper()
	dir, repo := testutils.SetupTestRepo(t)
	for name, content := range files {
		testutils.WriteFile(t, dir, name, content)
	}
	return dir, lumloam.New(loam.NewTypedRepository[lumloam.DocumentMetadata](repo))
}

func TestLoader_Contract(t *testing.T) {
	_, loader := seed(t, headacheGraph)
	tests.GraphLoaderContractTest(t, loader,
		[]string{"bas_agrisi", "bas_agrisi_tek"},
		[]string{"migren_atagi", "gerilim_tipi"})
}

func TestLoader_AssemblesGraph(t *testing.T) {
	_, loader := seed(t, headacheGraph)
	g, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "test", g.Version)
	assert.Equal(t, "Guest", g.Message("guest", domain.English))

	n, ok := g.Node("bas_agrisi")
	require.True(t, ok)
	assert.Equal(t, "Baş ağrınız nerede hissediliyor?", n.Question.Get(domain.Turkish), "body is the default-language question")
	require.Len(t, n.Options, 2)
	assert.Equal(t, "bas_agrisi_tek", n.Options[0].Next)

	r, ok := g.Result("migren_atagi")
	require.True(t, ok)
	assert.Equal(t, "Neurology", g.DepartmentName(r, domain.English))

	require.NotNil(t, g.Fallback)
	assert.Equal(t, "Specialist Evaluation", g.FallbackResult().Title.Get(domain.English))

	items := g.Symptoms()
	require.Len(t, items, 1)
	assert.Equal(t, "bas_agrisi", items[0].Key)
}

func TestLoader_ReadsBodyAndFrontmatterOnlyDocuments(t *testing.T) {
	_, loader := seed(t, headacheGraph)
	g, err := loader.Load(context.Background())
	require.NoError(t, err)

	body, ok := g.Node("bas_agrisi")
	require.True(t, ok)
	assert.Equal(t, "Where do you feel your headache?", body.Question.Get(domain.English))
	assert.Equal(t, "Baş ağrınız nerede hissediliyor?", body.Question.Get(domain.Turkish))

	empty, ok := g.Node("bas_agrisi_tek")
	require.True(t, ok, "a document without body is still part of the graph")
	assert.Equal(t, "Zonklayıcı mı?", empty.Question.Get(domain.Turkish))
	require.Len(t, empty.Options, 2)
	assert.Equal(t, "migren_atagi", empty.Options[0].Result)
}

func TestLoader_DetectsCollisions(t *testing.T) {
	files := map[string]string{
		"nodes/a.md":   "---\nquestion: {tr: A}\noptions: [{id: x, text: {tr: x}, result: r}]\n---\n",
		"more/a.yaml":  "kind: node\nquestion: {tr: B}\noptions: [{id: x, text: {tr: x}, result: r}]\n",
		"results/r.md": "---\ntitle: {tr: R}\ndesc: {tr: D}\nbranch: b\n---\n",
	}
	_, loader := seed(t, files)

	_, err := loader.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")
}

func TestLoader_RejectsMalformedOption(t *testing.T) {
	files := map[string]string{
		"nodes/a.md": "---\nquestion: {tr: A}\noptions: [{id: x, text: {tr: x}}]\n---\n",
	}
	_, loader := seed(t, files)

	_, err := loader.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of next or result")
}

func TestLoader_CachesUntilInvalidated(t *testing.T) {
	dir, loader := seed(t, headacheGraph)
	ctx := context.Background()

	first, err := loader.Load(ctx)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "results", "gerilim_tipi.yaml")))
	cached, err := loader.Load(ctx)
	require.NoError(t, err)
	assert.Same(t, first, cached)

	loader.Invalidate()
	fresh, err := loader.Load(ctx)
	require.NoError(t, err)
	_, ok := fresh.Result("gerilim_tipi")
	assert.False(t, ok)
}

func TestOpen(t *testing.T) {
	dir, _ := seed(t, headacheGraph)
	loader, err := lumloam.Open(dir)
	require.NoError(t, err)

	g, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, g.Nodes, 2)
}
