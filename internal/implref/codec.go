package implref

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	perrors "github.com/p-blackswan/protodocs/internal/errors"
	"github.com/p-blackswan/protodocs/internal/protocol"
)

// wireIndex is the on-disk layout:
// {"hermes": {"commands": {"Network.enable": [ref, ...]}, "events": {}, "types": {}}}
type wireIndex map[string]map[string]map[string][]Reference

// Decode reads a pre-aggregated index file.
func Decode(r io.Reader) (*Index, error) {
	var w wireIndex
	if err := json.NewDecoder(r).Decode(&w); err != nil {
		return nil, fmt.Errorf("decoding implementation index: %w", err)
	}

	b := NewBuilder()
	for implID, categories := range w {
		impl, err := ParseImplementation(implID)
		if err != nil {
			return nil, err
		}
		for category, members := range categories {
			kind, ok := protocol.KindForCategory(category)
			if !ok {
				return nil, perrors.Contract("implementation index", "unknown member category %q", category)
			}
			for mk, refs := range members {
				domain, key, ok := splitMemberKey(mk)
				if !ok {
					return nil, perrors.Contract("implementation index", "member key %q is not Domain.key", mk)
				}
				for _, ref := range refs {
					if err := b.Add(impl, kind, domain, key, ref); err != nil {
						return nil, err
					}
				}
			}
		}
	}
	return b.Build(), nil
}

// Encode writes the index in the layout Decode reads.
func Encode(w io.Writer, ix *Index) error {
	out := wireIndex{}
	for _, e := range ix.Entries() {
		categories, ok := out[string(e.Implementation)]
		if !ok {
			categories = map[string]map[string][]Reference{}
			out[string(e.Implementation)] = categories
		}
		members, ok := categories[e.Kind.Category()]
		if !ok {
			members = map[string][]Reference{}
			categories[e.Kind.Category()] = members
		}
		members[MemberKey(e.Domain, e.Key)] = e.References
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding implementation index: %w", err)
	}
	return nil
}

func splitMemberKey(mk string) (domain, key string, ok bool) {
	domain, key, ok = strings.Cut(mk, ".")
	return domain, key, ok && domain != "" && key != ""
}
