package implref

import (
	"fmt"
	"net/url"
	"slices"
	"sort"
	"strings"

	"github.com/p-blackswan/protodocs/internal/protocol"
)

// GitHubLocation pins a reference to a file at a commit on GitHub.
type GitHubLocation struct {
	Owner     string `json:"owner"`
	Repo      string `json:"repo"`
	CommitSHA string `json:"commitSha"`
	Path      string `json:"path"`
}

// Reference is one place in an implementation's source that touches a
// protocol member.
type Reference struct {
	GitHub *GitHubLocation `json:"github,omitempty"`
	Line   int             `json:"line"`
}

// URL links to the referenced line, or returns "" without a GitHub location.
func (r Reference) URL() string {
	g := r.GitHub
	if g == nil {
		return ""
	}
	segments := strings.Split(g.Path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	u := fmt.Sprintf("https://github.com/%s/%s/blob/%s/%s",
		url.PathEscape(g.Owner), url.PathEscape(g.Repo), url.PathEscape(g.CommitSHA), strings.Join(segments, "/"))
	if r.Line > 0 {
		u += fmt.Sprintf("#L%d", r.Line)
	}
	return u
}

// MemberKey joins a domain and member key into the index key "Domain.key".
func MemberKey(domain, key string) string {
	return domain + "." + key
}

type byKind map[protocol.MemberKind]map[string][]Reference

// Index maps (implementation, kind, "Domain.key") to ordered references.
// It is immutable once built; share it freely between renders.
type Index struct {
	refs map[Implementation]byKind
}

// Empty returns an index with no references.
func Empty() *Index {
	return &Index{refs: map[Implementation]byKind{}}
}

// Lookup returns the references for a member, or an empty list when the
// member has none. Only an unknown implementation is an error.
func (ix *Index) Lookup(impl Implementation, kind protocol.MemberKind, domain, key string) ([]Reference, error) {
	if !impl.Known() {
		return nil, unknownImplementation(impl)
	}
	refs := ix.refs[impl][kind][MemberKey(domain, key)]
	return slices.Clone(refs), nil
}

// Primary returns the first reference for a member, if any.
func (ix *Index) Primary(impl Implementation, kind protocol.MemberKind, domain, key string) (Reference, bool, error) {
	refs, err := ix.Lookup(impl, kind, domain, key)
	if err != nil || len(refs) == 0 {
		return Reference{}, false, err
	}
	return refs[0], true, nil
}

// Len counts the members that have at least one reference.
func (ix *Index) Len() int {
	n := 0
	for _, kinds := range ix.refs {
		for _, members := range kinds {
			n += len(members)
		}
	}
	return n
}

// Entry is one member's reference list.
type Entry struct {
	Implementation Implementation
	Kind           protocol.MemberKind
	Domain         string
	Key            string
	References     []Reference
}

// Entries returns every entry sorted by implementation, kind and member key.
func (ix *Index) Entries() []Entry {
	var out []Entry
	for impl, kinds := range ix.refs {
		for kind, members := range kinds {
			for mk, refs := range members {
				domain, key, _ := strings.Cut(mk, ".")
				out = append(out, Entry{
					Implementation: impl,
					Kind:           kind,
					Domain:         domain,
					Key:            key,
					References:     slices.Clone(refs),
				})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Implementation != b.Implementation {
			return a.Implementation < b.Implementation
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return MemberKey(a.Domain, a.Key) < MemberKey(b.Domain, b.Key)
	})
	return out
}

// Builder accumulates references in discovery order.
type Builder struct {
	refs map[Implementation]byKind
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{refs: map[Implementation]byKind{}}
}

// Add appends a reference for a member. Unknown implementations are rejected
// so a built index never holds entries for them.
func (b *Builder) Add(impl Implementation, kind protocol.MemberKind, domain, key string, ref Reference) error {
	if !impl.Known() {
		return unknownImplementation(impl)
	}
	kinds, ok := b.refs[impl]
	if !ok {
		kinds = byKind{}
		b.refs[impl] = kinds
	}
	members, ok := kinds[kind]
	if !ok {
		members = map[string][]Reference{}
		kinds[kind] = members
	}
	mk := MemberKey(domain, key)
	members[mk] = append(members[mk], ref)
	return nil
}

// Build returns the index. The builder must not be used afterwards.
func (b *Builder) Build() *Index {
	ix := &Index{refs: b.refs}
	b.refs = nil
	return ix
}
