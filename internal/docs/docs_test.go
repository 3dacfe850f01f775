package docs_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-blackswan/protodocs/internal/docs"
	"github.com/p-blackswan/protodocs/internal/docs/docstest"
	perrors "github.com/p-blackswan/protodocs/internal/errors"
	"github.com/p-blackswan/protodocs/internal/implref"
)

func TestWriteDomain(t *testing.T) {
	f := docstest.New(t)
	var buf bytes.Buffer

	err := f.Service.WriteDomain(context.Background(), &buf, "tot", "Network")
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, `id="method-enable"`)
	assert.Contains(t, html, `id="event-requestWillBeSent"`)
	assert.Contains(t, html, `href="/devtools-protocol/tot/Network#type-RequestId"`)
	assert.Contains(t, html, "https://github.com/facebook/hermes/blob/abc123/cdp/NetworkAgent.cpp#L12")
	assert.Contains(t, html, "https://chromedevtools.github.io/devtools-protocol/tot/Network")
	assert.Contains(t, html, "<strong>activity</strong>")

	assert.Equal(t, float64(1), testutil.ToFloat64(f.Metrics.PagesRendered.WithLabelValues("domain")))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.Metrics.DocumentsCached))
}

func TestWriteDomain_NotUpstreamFallsBackToTipOfTree(t *testing.T) {
	f := docstest.New(t)
	var buf bytes.Buffer

	require.NoError(t, f.Service.WriteDomain(context.Background(), &buf, "v8", "Network"))
	assert.Contains(t, buf.String(), "https://chromedevtools.github.io/devtools-protocol/tot/Network")
	assert.NotContains(t, buf.String(), "chromedevtools.github.io/devtools-protocol/v8")
	// No index file for v8, so no badge.
	assert.NotContains(t, buf.String(), "github.com/facebook/hermes")
}

func TestWriteDomain_NotFound(t *testing.T) {
	f := docstest.New(t)
	ctx := context.Background()
	var buf bytes.Buffer

	err := f.Service.WriteDomain(ctx, &buf, "nope", "Network")
	assert.True(t, perrors.IsNotFound(err))

	err = f.Service.WriteDomain(ctx, &buf, "tot", "Nope")
	assert.True(t, perrors.IsNotFound(err))
	assert.Zero(t, buf.Len())

	assert.Equal(t, float64(1), testutil.ToFloat64(f.Metrics.NotFound.WithLabelValues("version")))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.Metrics.NotFound.WithLabelValues("domain")))
}

func TestWriteDomain_ContractViolationWritesNothing(t *testing.T) {
	f := docstest.New(t)
	var buf bytes.Buffer

	err := f.Service.WriteDomain(context.Background(), &buf, "tot", "Broken")
	assert.ErrorIs(t, err, perrors.ErrContractViolation)
	assert.Zero(t, buf.Len())
	assert.Equal(t, float64(1), testutil.ToFloat64(f.Metrics.ErrorsTotal.WithLabelValues("render", "contract_violation")))
}

func TestWriteVersion(t *testing.T) {
	f := docstest.New(t)
	var buf bytes.Buffer

	require.NoError(t, f.Service.WriteVersion(context.Background(), &buf, "tot"))
	html := buf.String()
	assert.Contains(t, html, `href="/devtools-protocol/tot/Network"`)
	assert.Contains(t, html, `href="/devtools-protocol/tot/Broken"`)
	assert.Contains(t, html, `status-Experimental">Experimental</span>`)

	err := f.Service.WriteVersion(context.Background(), &buf, "nope")
	assert.True(t, perrors.IsNotFound(err))
}

func TestWriteVersions(t *testing.T) {
	f := docstest.New(t)
	var buf bytes.Buffer

	require.NoError(t, f.Service.WriteVersions(context.Background(), &buf))
	assert.Contains(t, buf.String(), `href="/devtools-protocol/tot"`)
	assert.Contains(t, buf.String(), `href="/devtools-protocol/v8"`)
}

func TestPages(t *testing.T) {
	f := docstest.New(t)

	refs, err := f.Service.Pages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []docs.PageRef{
		{Slug: "tot", Domain: "Network"},
		{Slug: "tot", Domain: "Broken"},
		{Slug: "v8", Domain: "Network"},
		{Slug: "v8", Domain: "Broken"},
	}, refs)
}

type failingLoader struct{}

func (failingLoader) Load(context.Context, string, string) (*implref.Index, error) {
	return nil, errors.New("index unreadable")
}

func TestWriteDomain_IndexLoadFailure(t *testing.T) {
	f := docstest.New(t)
	svc := docs.New(f.Versions, failingLoader{}, f.Service.Renderer(), nil, zerolog.Nop())
	var buf bytes.Buffer

	err := svc.WriteDomain(context.Background(), &buf, "tot", "Network")
	assert.ErrorContains(t, err, "index unreadable")
	assert.Zero(t, buf.Len())
}
