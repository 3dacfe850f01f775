package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-blackswan/protodocs/internal/implref"
	"github.com/p-blackswan/protodocs/internal/protocol"
)

func renderDomain(t *testing.T, domain *protocol.Domain, meta protocol.Metadata, ix *implref.Index) string {
	t.Helper()
	r := newTestRenderer(t)
	page, err := r.BuildPage(domain, meta, ix)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, r.RenderDomain(&buf, page))
	return buf.String()
}

func TestRenderDomain_ScenarioA(t *testing.T) {
	html := renderDomain(t, &protocol.Domain{Domain: "Network", Commands: []protocol.Command{{Name: "enable"}}}, stable, nil)

	assert.Contains(t, html, "<title>Network Domain</title>")
	assert.Contains(t, html, "<h2>Methods</h2>")
	assert.Equal(t, 1, strings.Count(html, `id="method-enable"`))
	assert.Contains(t, html, `href="#method-enable"`)
	assert.NotContains(t, html, "<h4>Parameters</h4>")
	assert.NotContains(t, html, "<h4>Return object</h4>")
	assert.NotContains(t, html, "<h2>Events</h2>")
	assert.NotContains(t, html, "<h2>Types</h2>")
	assert.NotContains(t, html, "<hr>")
}

func TestRenderDomain_ScenarioB(t *testing.T) {
	html := renderDomain(t, &protocol.Domain{Domain: "Page", Types: []protocol.TypeDef{
		{ID: "T", Type: protocol.Type{Shape: protocol.ShapeString, Enum: []string{"a", "b"}}},
	}}, stable, nil)

	assert.Contains(t, html, `<p class="type-line">Type: <code class="type">string</code></p>`)
	assert.Contains(t, html, `Allowed values: <code>a</code>, <code>b</code>`)
	assert.Contains(t, html, `id="type-T"`)
}

func TestRenderDomain_ScenarioC(t *testing.T) {
	domain := &protocol.Domain{Domain: "Page", Commands: []protocol.Command{
		{Name: "navigate", Parameters: []protocol.Property{{Name: "url", Type: protocol.Type{Shape: protocol.ShapeString}}}},
	}}

	html := renderDomain(t, domain, stable, nil)
	assert.Contains(t, html, "<h4>Parameters</h4>")
	assert.Contains(t, html, "<code>url</code>")
	assert.Contains(t, html, `<div class="value"><code class="type">string</code>`)
	assert.NotContains(t, html, "Optional")

	domain.Commands[0].Parameters[0].Optional = true
	html = renderDomain(t, domain, stable, nil)
	assert.Contains(t, html, `<span class="tag optional">Optional</span>`)
	assert.Contains(t, html, `<div class="value"><code class="type">string</code>`)
}

func TestRenderDomain_ScenarioD(t *testing.T) {
	html := renderDomain(t, &protocol.Domain{Domain: "Network", Types: []protocol.TypeDef{
		{ID: "Request", Type: protocol.Type{Shape: protocol.ShapeObject, Properties: []protocol.Property{
			{Name: "id", Type: protocol.Type{Ref: "RequestId"}},
		}}},
	}}, protocol.Metadata{VersionSlug: "v99"}, nil)

	assert.Contains(t, html, DefaultUpstreamBase+"/tot/Network")
	assert.NotContains(t, html, DefaultUpstreamBase+"/v99")
	assert.Contains(t, html, `href="/devtools-protocol/v99/Network#type-RequestId"`)
	assert.Contains(t, html, "<h4>Properties</h4>")
}

func TestRenderDomain_SeparatorsAndArrays(t *testing.T) {
	html := renderDomain(t, &protocol.Domain{Domain: "DOM",
		Commands: []protocol.Command{{Name: "enable"}, {Name: "disable"}, {Name: "getDocument"}},
		Types: []protocol.TypeDef{
			{ID: "Quad", Type: protocol.Type{Shape: protocol.ShapeArray, Items: &protocol.Type{Shape: protocol.ShapeNumber}}},
		},
	}, stable, nil)

	assert.Equal(t, 2, strings.Count(html, "<hr>"))
	assert.Contains(t, html, `<code class="type">array[ <code class="type">number</code> ]</code>`)
}

func TestRenderDomain_ImplementationBadge(t *testing.T) {
	b := implref.NewBuilder()
	require.NoError(t, b.Add(implref.Hermes, protocol.KindMethod, "Debugger", "enable", implref.Reference{
		GitHub: &implref.GitHubLocation{Owner: "facebook", Repo: "hermes", CommitSHA: "abc", Path: "a.cpp"},
		Line:   4,
	}))
	html := renderDomain(t, &protocol.Domain{Domain: "Debugger", Commands: []protocol.Command{{Name: "enable"}}}, stable, b.Build())

	assert.Equal(t, 2, strings.Count(html, `href="https://github.com/facebook/hermes/blob/abc/a.cpp#L4"`))
	assert.Contains(t, html, `title="Referenced in Hermes CDPHandler"`)
}

func TestRenderDomain_EscapesText(t *testing.T) {
	html := renderDomain(t, &protocol.Domain{Domain: "Page", Types: []protocol.TypeDef{
		{ID: "Mode", Type: protocol.Type{Shape: protocol.ShapeString, Enum: []string{"<b>"}}},
	}}, stable, nil)
	assert.Contains(t, html, "<code>&lt;b&gt;</code>")
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestRenderDomain_WriteError(t *testing.T) {
	r := newTestRenderer(t)
	page, err := r.BuildPage(&protocol.Domain{Domain: "Page"}, stable, nil)
	require.NoError(t, err)
	assert.Error(t, r.RenderDomain(failWriter{}, page))
}

func TestRenderIndexes(t *testing.T) {
	r := newTestRenderer(t)

	var versions bytes.Buffer
	require.NoError(t, r.RenderVersionList(&versions, &VersionList{
		Title:    "Protocol versions",
		Versions: []VersionEntry{{Slug: "tot", Href: "/devtools-protocol/tot"}},
	}))
	assert.Contains(t, versions.String(), `<a href="/devtools-protocol/tot">tot</a>`)

	var version bytes.Buffer
	require.NoError(t, r.RenderVersionIndex(&version, &VersionIndex{
		Title:       "tot",
		VersionSlug: "tot",
		Domains: []DomainEntry{{
			Name:     "Network",
			Href:     "/devtools-protocol/tot/Network",
			Statuses: []protocol.Status{protocol.StatusDeprecated},
		}},
	}))
	assert.Contains(t, version.String(), `<a href="/devtools-protocol/tot/Network">Network</a>`)
	assert.Contains(t, version.String(), "Deprecated")
	assert.Contains(t, version.String(), `<a href="/devtools-protocol">All versions</a>`)

	var nf bytes.Buffer
	require.NoError(t, r.RenderNotFound(&nf, `domain "Nope"`))
	assert.Contains(t, nf.String(), "404")
	assert.Contains(t, nf.String(), "domain &#34;Nope&#34;")
}
