package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luminex/symptomcheck/pkg/catalog"
	"github.com/luminex/symptomcheck/pkg/domain"
	"github.com/luminex/symptomcheck/pkg/ports/tests"
)

func TestDefault(t *testing.T) {
	g, err := catalog.Default()
	require.NoError(t, err)

	assert.NotEmpty(t, g.Version)
	assert.Len(t, g.Symptoms(), 16)
	assert.Len(t, g.Nodes, 52)
	assert.Len(t, g.Results, 67)
	require.NotNil(t, g.Fallback)
	assert.Equal(t, domain.FallbackResultID, g.Fallback.ID)

	again, err := catalog.Default()
	require.NoError(t, err)
	assert.Same(t, g, again)
}

func TestDefault_KnownPaths(t *testing.T) {
	g, err := catalog.Default()
	require.NoError(t, err)

	r, ok := g.Result("migren_atagi")
	require.True(t, ok)
	assert.Equal(t, "noroloji", r.BranchID)
	assert.Equal(t, "Nöroloji", g.DepartmentName(r, domain.Turkish))
	assert.Equal(t, "Neurology", g.DepartmentName(r, domain.English))

	r, ok = g.Result("kalp_krizi_suphesi")
	require.True(t, ok)
	assert.True(t, r.Urgent)
	assert.Equal(t, "Acil Servis (112)", g.DepartmentName(r, domain.Turkish))

	n, ok := g.Node("bas_agrisi")
	require.True(t, ok)
	assert.Equal(t, "tek_tarafli", n.Options[0].ID)
	assert.Equal(t, "bas_agrisi_tek", n.Options[0].Next)
}

func TestLoader_Contract(t *testing.T) {
	tests.GraphLoaderContractTest(t, catalog.NewLoader(),
		[]string{"bas_agrisi", "nefes_darligi", "ates"},
		[]string{"migren_atagi", "kalp_krizi_suphesi"})
}

func TestParse_JSON(t *testing.T) {
	doc := `{
		"version": "test",
		"branches": [{"id": "dahiliye", "name": {"tr": "Dahiliye", "en": "Internal Medicine"}}],
		"categories": [{"id": "genel", "label": {"tr": "Genel", "en": "General"},
			"items": [{"key": "ates", "label": {"tr": "Ateş", "en": "Fever"}}]}],
		"nodes": {
			"ates": {
				"question": {"tr": "Ateşiniz kaç gündür var?", "en": "How long have you had a fever?"},
				"options": [{"id": "kisa", "text": {"tr": "Kısa", "en": "Short"}, "result": "viral"}]
			}
		},
		"results": {
			"viral": {"title": {"tr": "Viral", "en": "Viral"}, "desc": {"tr": "x", "en": "x"}, "branch": "dahiliye"}
		}
	}`

	g, err := catalog.Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "test", g.Version)

	n, ok := g.Node("ates")
	require.True(t, ok)
	assert.Equal(t, "How long have you had a fever?", n.Question.Get(domain.English))
	assert.Equal(t, "viral", n.Options[0].Result)
	assert.True(t, n.Options[0].Terminal())
	assert.Equal(t, domain.GenericFallback(), g.FallbackResult())
}

func TestParse_RejectsInvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"not yaml":          "nodes: [",
		"empty":             "",
		"option both":       `{"nodes": {"a": {"question": {"tr": "?"}, "options": [{"id": "x", "text": {"tr": "x"}, "next": "b", "result": "c"}]}}, "results": {}}`,
		"option neither":    `{"nodes": {"a": {"question": {"tr": "?"}, "options": [{"id": "x", "text": {"tr": "x"}}]}}, "results": {}}`,
		"unknown field":     `{"nodes": {}, "results": {}, "colour": "red"}`,
		"urgent not a bool": `{"nodes": {}, "results": {"r": {"title": {"tr": "t"}, "desc": {"tr": "d"}, "branch": "b", "urgent": "yes"}}}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := catalog.Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestSchemaIsEmbedded(t *testing.T) {
	assert.Contains(t, string(catalog.Schema()), "\"$schema\"")
	assert.Contains(t, string(catalog.Source()), "bas_agrisi")
	_, err := catalog.NewLoader().Load(context.Background())
	assert.NoError(t, err)
}
