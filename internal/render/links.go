package render

import (
	"net/url"
	"strings"

	"github.com/p-blackswan/protodocs/internal/protocol"
)

// TipOfTree is the upstream version used when a version is not mirrored
// upstream. It may point at content that has since diverged.
const TipOfTree = "tot"

// DefaultUpstreamBase is the canonical upstream documentation site.
const DefaultUpstreamBase = "https://chromedevtools.github.io/devtools-protocol"

// Links builds every URL a page contains. Each path segment is escaped on
// its own; no segment is assumed to be safe already.
type Links struct {
	// Root is the site path prefix, e.g. "devtools-protocol".
	Root string
	// UpstreamBase is the upstream documentation base URL.
	UpstreamBase string
}

func (l Links) root() string {
	return "/" + strings.Trim(l.Root, "/")
}

func (l Links) upstreamBase() string {
	if l.UpstreamBase == "" {
		return DefaultUpstreamBase
	}
	return strings.TrimRight(l.UpstreamBase, "/")
}

// UpstreamVersion picks the upstream version segment for meta.
// TODO: check the tot snapshot for the domain or member before falling back to it.
func UpstreamVersion(meta protocol.Metadata) string {
	if meta.IsAvailableUpstream {
		return meta.VersionSlug
	}
	return TipOfTree
}

// RootIndex links to the list of versions.
func (l Links) RootIndex() string {
	return l.root()
}

// VersionIndex links to a version's list of domains.
func (l Links) VersionIndex(slug string) string {
	return l.root() + "/" + url.PathEscape(slug)
}

// Domain links to a domain page within a version.
func (l Links) Domain(slug, domain string) string {
	return l.VersionIndex(slug) + "/" + url.PathEscape(domain)
}

// TypeRef links a type reference to its declaring page and anchor.
func (l Links) TypeRef(slug string, ref protocol.ResolvedRef) string {
	return l.Domain(slug, ref.Domain) + "#" + Anchor(protocol.KindType, ref.LocalName)
}

// UpstreamDomain links to the domain in the upstream docs.
func (l Links) UpstreamDomain(meta protocol.Metadata, domain string) string {
	return l.upstreamBase() + "/" + url.PathEscape(UpstreamVersion(meta)) + "/" + url.PathEscape(domain)
}

// UpstreamMember links to a member in the upstream docs.
func (l Links) UpstreamMember(meta protocol.Metadata, domain string, kind protocol.MemberKind, key string) string {
	return l.UpstreamDomain(meta, domain) + "#" + url.PathEscape(kind.String()) + "-" + url.PathEscape(key)
}

// Anchor is the escaped in-page anchor for a member.
func Anchor(kind protocol.MemberKind, key string) string {
	return kind.Anchor(url.PathEscape(key))
}
