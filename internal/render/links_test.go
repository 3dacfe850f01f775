package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/p-blackswan/protodocs/internal/protocol"
)

func TestUpstreamVersion(t *testing.T) {
	assert.Equal(t, "1-3", UpstreamVersion(protocol.Metadata{VersionSlug: "1-3", IsAvailableUpstream: true}))
	assert.Equal(t, TipOfTree, UpstreamVersion(protocol.Metadata{VersionSlug: "v99"}))
}

func TestLinks(t *testing.T) {
	l := Links{Root: "/devtools-protocol/", UpstreamBase: "https://example.test/docs/"}
	meta := protocol.Metadata{VersionSlug: "v99"}

	assert.Equal(t, "/devtools-protocol", l.RootIndex())
	assert.Equal(t, "/devtools-protocol/v99", l.VersionIndex("v99"))
	assert.Equal(t, "/devtools-protocol/v99/Network", l.Domain("v99", "Network"))
	assert.Equal(t, "/devtools-protocol/v99/Runtime#type-StackTrace",
		l.TypeRef("v99", protocol.ResolvedRef{Domain: "Runtime", LocalName: "StackTrace"}))
	assert.Equal(t, "https://example.test/docs/tot/Network", l.UpstreamDomain(meta, "Network"))
	assert.Equal(t, "https://example.test/docs/tot/Network#method-enable",
		l.UpstreamMember(meta, "Network", protocol.KindMethod, "enable"))
}

func TestLinks_EscapesEachSegment(t *testing.T) {
	l := Links{Root: "devtools-protocol"}
	meta := protocol.Metadata{VersionSlug: "a b/c", IsAvailableUpstream: true}

	assert.Equal(t, "/devtools-protocol/a%20b%2Fc/Do%3Fm", l.Domain("a b/c", "Do?m"))
	assert.Equal(t, DefaultUpstreamBase+"/a%20b%2Fc/X#event-k%20y",
		l.UpstreamMember(meta, "X", protocol.KindEvent, "k y"))
	assert.Equal(t, "type-a%2Fb", Anchor(protocol.KindType, "a/b"))
}
