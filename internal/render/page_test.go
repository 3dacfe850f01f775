package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/p-blackswan/protodocs/internal/errors"
	"github.com/p-blackswan/protodocs/internal/implref"
	"github.com/p-blackswan/protodocs/internal/markdown"
	"github.com/p-blackswan/protodocs/internal/protocol"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New(markdown.New(), Links{Root: "devtools-protocol"})
	require.NoError(t, err)
	return r
}

var stable = protocol.Metadata{VersionSlug: "1-3", IsAvailableUpstream: true}

func TestBuildPage_ScenarioA_CommandWithoutParams(t *testing.T) {
	r := newTestRenderer(t)
	domain := &protocol.Domain{Domain: "Network", Commands: []protocol.Command{{Name: "enable"}}}

	page, err := r.BuildPage(domain, stable, implref.Empty())
	require.NoError(t, err)

	require.Len(t, page.Methods, 1)
	m := page.Methods[0]
	assert.Equal(t, "method-enable", m.Anchor)
	assert.Nil(t, m.Parameters)
	assert.Nil(t, m.Returns)
	assert.Empty(t, page.Events)
	assert.Empty(t, page.Types)

	require.Len(t, page.TOC, 1)
	assert.Equal(t, "Methods", page.TOC[0].Heading)
	assert.Equal(t, "#method-enable", page.TOC[0].Items[0].Href)
	assert.Equal(t, "Network Domain", page.Title)
}

func TestBuildPage_ScenarioB_EnumType(t *testing.T) {
	r := newTestRenderer(t)
	domain := &protocol.Domain{Domain: "Page", Types: []protocol.TypeDef{
		{ID: "T", Type: protocol.Type{Shape: protocol.ShapeString, Enum: []string{"a", "b"}}},
	}}

	page, err := r.BuildPage(domain, stable, nil)
	require.NoError(t, err)
	require.Len(t, page.Types, 1)

	typ := page.Types[0]
	assert.Equal(t, "type-T", typ.Anchor)
	assert.Equal(t, "string", typ.Type.Keyword)
	assert.Equal(t, []string{"a", "b"}, typ.AllowedValues)
	assert.Nil(t, typ.Properties)
}

func TestBuildPage_ScenarioC_OptionalProperty(t *testing.T) {
	r := newTestRenderer(t)
	prop := protocol.Property{Name: "url", Type: protocol.Type{Shape: protocol.ShapeString}}
	domain := &protocol.Domain{Domain: "Page", Commands: []protocol.Command{
		{Name: "navigate", Parameters: []protocol.Property{prop}},
	}}

	page, err := r.BuildPage(domain, stable, nil)
	require.NoError(t, err)
	row := page.Methods[0].Parameters[0]
	assert.Equal(t, "url", row.Name)
	assert.False(t, row.Optional)
	assert.Equal(t, TypeView{Keyword: "string"}, row.Type)

	domain.Commands[0].Parameters[0].Optional = true
	page, err = r.BuildPage(domain, stable, nil)
	require.NoError(t, err)
	optional := page.Methods[0].Parameters[0]
	assert.True(t, optional.Optional)
	assert.Equal(t, row.Type, optional.Type)
}

func TestBuildPage_ScenarioD_NotUpstream(t *testing.T) {
	r := newTestRenderer(t)
	meta := protocol.Metadata{VersionSlug: "v99"}
	domain := &protocol.Domain{Domain: "Network", Commands: []protocol.Command{
		{Name: "getBody", Parameters: []protocol.Property{{Name: "id", Type: protocol.Type{Ref: "RequestId"}}}},
	}}

	page, err := r.BuildPage(domain, meta, nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultUpstreamBase+"/tot/Network", page.UpstreamURL)
	assert.Equal(t, DefaultUpstreamBase+"/tot/Network#method-getBody", page.Methods[0].UpstreamURL)
	assert.NotContains(t, page.UpstreamURL, "v99")

	ref := page.Methods[0].Parameters[0].Type
	assert.Equal(t, "RequestId", ref.Ref)
	assert.Equal(t, "/devtools-protocol/v99/Network#type-RequestId", ref.Href)
	assert.Equal(t, "/devtools-protocol/v99", page.VersionHref)
}

func TestBuildPage_QualifiedRefKeepsLabel(t *testing.T) {
	r := newTestRenderer(t)
	domain := &protocol.Domain{Domain: "Network", Events: []protocol.Event{
		{Name: "requestWillBeSent", Parameters: []protocol.Property{{Name: "initiator", Type: protocol.Type{Ref: "Runtime.StackTrace"}}}},
	}}

	page, err := r.BuildPage(domain, stable, nil)
	require.NoError(t, err)
	tv := page.Events[0].Parameters[0].Type
	assert.Equal(t, "Runtime.StackTrace", tv.Ref)
	assert.Equal(t, "/devtools-protocol/1-3/Runtime#type-StackTrace", tv.Href)
	assert.Equal(t, "event-requestWillBeSent", page.Events[0].Anchor)
}

func TestBuildPage_ArrayTypes(t *testing.T) {
	r := newTestRenderer(t)
	domain := &protocol.Domain{Domain: "DOM", Types: []protocol.TypeDef{
		{ID: "Quad", Type: protocol.Type{Shape: protocol.ShapeArray, Items: &protocol.Type{Shape: protocol.ShapeNumber}}},
		{ID: "Ids", Type: protocol.Type{Shape: protocol.ShapeArray, Items: &protocol.Type{Ref: "Page.FrameId"}}},
		{ID: "Matrix", Type: protocol.Type{Shape: protocol.ShapeArray, Items: &protocol.Type{
			Shape: protocol.ShapeArray, Items: &protocol.Type{Shape: protocol.ShapeInteger},
		}}},
	}}

	page, err := r.BuildPage(domain, stable, nil)
	require.NoError(t, err)

	quad := page.Types[0].Type
	assert.True(t, quad.IsArray())
	assert.Equal(t, "number", quad.Items.Keyword)

	ids := page.Types[1].Type
	assert.Equal(t, "/devtools-protocol/1-3/Page#type-FrameId", ids.Items.Href)

	matrix := page.Types[2].Type
	assert.True(t, matrix.Items.IsArray())
	assert.Equal(t, "integer", matrix.Items.Items.Keyword)
}

func TestBuildPage_EnumArrayElementAborts(t *testing.T) {
	r := newTestRenderer(t)
	domain := &protocol.Domain{Domain: "Page", Commands: []protocol.Command{
		{Name: "setModes", Parameters: []protocol.Property{{
			Name: "modes",
			Type: protocol.Type{Shape: protocol.ShapeArray, Items: &protocol.Type{Shape: protocol.ShapeString, Enum: []string{"a"}}},
		}}},
	}}

	page, err := r.BuildPage(domain, stable, nil)
	assert.Nil(t, page)
	assert.ErrorIs(t, err, perrors.ErrContractViolation)
	assert.Contains(t, err.Error(), "setModes")
}

func TestBuildPage_UnknownShapeAborts(t *testing.T) {
	r := newTestRenderer(t)
	domain := &protocol.Domain{Domain: "Page", Types: []protocol.TypeDef{
		{ID: "Tuple", Type: protocol.Type{Shape: protocol.Shape("tuple")}},
	}}

	_, err := r.BuildPage(domain, stable, nil)
	assert.ErrorIs(t, err, perrors.ErrContractViolation)
	assert.Contains(t, err.Error(), "tuple")
}

func TestBuildPage_EmptyDomainOmitsEverything(t *testing.T) {
	r := newTestRenderer(t)
	page, err := r.BuildPage(&protocol.Domain{Domain: "Empty"}, stable, nil)
	require.NoError(t, err)
	assert.Empty(t, page.TOC)
	assert.Empty(t, page.Methods)
	assert.Empty(t, page.Description)
}

func TestBuildPage_FeatureStatuses(t *testing.T) {
	r := newTestRenderer(t)
	domain := &protocol.Domain{
		Domain:  "Audits",
		Feature: protocol.Feature{Experimental: true},
		Commands: []protocol.Command{{
			Name:    "checkContrast",
			Feature: protocol.Feature{Experimental: true, Deprecated: true},
			Returns: []protocol.Property{{Name: "ok", Type: protocol.Type{Shape: protocol.ShapeBoolean}, Feature: protocol.Feature{Deprecated: true}}},
		}},
	}

	page, err := r.BuildPage(domain, stable, nil)
	require.NoError(t, err)
	assert.Equal(t, []protocol.Status{protocol.StatusExperimental}, page.Statuses)
	both := []protocol.Status{protocol.StatusExperimental, protocol.StatusDeprecated}
	assert.Equal(t, both, page.Methods[0].Statuses)
	assert.Equal(t, both, page.TOC[0].Items[0].Statuses)
	assert.Equal(t, []protocol.Status{protocol.StatusDeprecated}, page.Methods[0].Returns[0].Statuses)
}

func TestBuildPage_ImplementationLinks(t *testing.T) {
	r := newTestRenderer(t)
	b := implref.NewBuilder()
	require.NoError(t, b.Add(implref.Hermes, protocol.KindMethod, "Debugger", "enable", implref.Reference{
		GitHub: &implref.GitHubLocation{Owner: "facebook", Repo: "hermes", CommitSHA: "abc", Path: "cdp/Agent.cpp"},
		Line:   12,
	}))
	require.NoError(t, b.Add(implref.Hermes, protocol.KindEvent, "Debugger", "paused", implref.Reference{Line: 3}))
	ix := b.Build()

	domain := &protocol.Domain{
		Domain:   "Debugger",
		Commands: []protocol.Command{{Name: "enable"}, {Name: "disable"}},
		Events:   []protocol.Event{{Name: "paused"}},
	}
	page, err := r.BuildPage(domain, stable, ix)
	require.NoError(t, err)

	enable := page.Methods[0]
	require.Len(t, enable.Impls, 1)
	assert.Equal(t, "https://github.com/facebook/hermes/blob/abc/cdp/Agent.cpp#L12", enable.Impls[0].URL)
	assert.Equal(t, "Hermes", enable.Impls[0].Badge.Label)
	assert.Equal(t, enable.Impls, page.TOC[0].Items[0].Impls)

	assert.Empty(t, page.Methods[1].Impls, "no references, no badge")

	paused := page.Events[0]
	require.Len(t, paused.Impls, 1)
	assert.Empty(t, paused.Impls[0].URL, "badge without a source link")
}

func TestBuildPage_UnknownImplementationAborts(t *testing.T) {
	r := newTestRenderer(t)
	r.impls = []implref.Implementation{"v8"}
	domain := &protocol.Domain{Domain: "Debugger", Commands: []protocol.Command{{Name: "enable"}}}

	_, err := r.BuildPage(domain, stable, nil)
	assert.ErrorIs(t, err, perrors.ErrContractViolation)
}

func TestBuildPage_Descriptions(t *testing.T) {
	r := newTestRenderer(t)
	domain := &protocol.Domain{
		Domain:      "Log",
		Description: "Provides access to **log** entries.",
		Commands:    []protocol.Command{{Name: "clear", Description: "Clears the log."}},
	}

	page, err := r.BuildPage(domain, stable, nil)
	require.NoError(t, err)
	assert.Contains(t, string(page.Description), "<strong>log</strong>")
	assert.Contains(t, string(page.Methods[0].Description), "Clears the log.")
}
