// Package docstest builds a docs.Service over a small fixture protocol.
package docstest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/p-blackswan/protodocs/internal/docs"
	"github.com/p-blackswan/protodocs/internal/implref"
	"github.com/p-blackswan/protodocs/internal/markdown"
	"github.com/p-blackswan/protodocs/internal/metrics"
	"github.com/p-blackswan/protodocs/internal/render"
	"github.com/p-blackswan/protodocs/internal/versions"
)

// Root is the site prefix fixtures are served under.
const Root = "devtools-protocol"

// ProtocolJSON has a healthy Network domain and a Broken domain whose
// array of enums cannot be rendered.
const ProtocolJSON = `{
  "version": {"major": "1", "minor": "3"},
  "domains": [
    {
      "domain": "Network",
      "description": "Network **activity**.",
      "experimental": true,
      "types": [{"id": "RequestId", "type": "string", "description": "Unique request identifier."}],
      "commands": [
        {"name": "enable", "parameters": [{"name": "maxTotalBufferSize", "type": "integer", "optional": true}]}
      ],
      "events": [
        {"name": "requestWillBeSent", "parameters": [{"name": "requestId", "$ref": "RequestId"}]}
      ]
    },
    {
      "domain": "Broken",
      "types": [{"id": "Bad", "type": "array", "items": {"type": "string", "enum": ["a", "b"]}}]
    }
  ]
}`

// IndexJSON references Network.enable in Hermes.
const IndexJSON = `{
  "hermes": {
    "commands": {
      "Network.enable": [
        {"github": {"owner": "facebook", "repo": "hermes", "commitSha": "abc123", "path": "cdp/NetworkAgent.cpp"}, "line": 12}
      ]
    }
  }
}`

// Fixture is a wired service plus its parts.
type Fixture struct {
	Service  *docs.Service
	Versions *versions.Store
	Metrics  *metrics.Metrics
	Dir      string
}

// New writes the fixture files and wires a Service. Version "tot" is
// mirrored upstream and has an index; "v8" is neither.
func New(t testing.TB) *Fixture {
	t.Helper()
	dir := t.TempDir()
	protocolPath := filepath.Join(dir, "protocol.json")
	indexPath := filepath.Join(dir, "hermes.json")
	require.NoError(t, os.WriteFile(protocolPath, []byte(ProtocolJSON), 0o644))
	require.NoError(t, os.WriteFile(indexPath, []byte(IndexJSON), 0o644))

	m := metrics.New()
	logger := zerolog.Nop()

	vs, err := versions.NewStore(&versions.Manifest{Versions: []versions.VersionConfig{
		{
			Slug:                "tot",
			AvailableUpstream:   true,
			ImplementationIndex: indexPath,
			Source:              versions.SourceConfig{Files: []string{protocolPath}},
		},
		{
			Slug:   "v8",
			Source: versions.SourceConfig{Files: []string{protocolPath}},
		},
	}}, versions.Options{OnCacheChange: m.SetDocumentsCached, Logger: logger})
	require.NoError(t, err)

	r, err := render.New(markdown.New(), render.Links{Root: Root})
	require.NoError(t, err)

	return &Fixture{
		Service:  docs.New(vs, implref.NewLoader(nil, logger), r, m, logger),
		Versions: vs,
		Metrics:  m,
		Dir:      dir,
	}
}

// Service wires a Service over vs with no implementation index store.
func Service(t testing.TB, vs *versions.Store) *docs.Service {
	t.Helper()
	r, err := render.New(markdown.New(), render.Links{Root: Root})
	require.NoError(t, err)
	logger := zerolog.Nop()
	return docs.New(vs, implref.NewLoader(nil, logger), r, nil, logger)
}
