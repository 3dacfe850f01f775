package protocol

import "fmt"

// MemberKind is the closed set of member kinds in a domain.
type MemberKind int

const (
	KindMethod MemberKind = iota
	KindEvent
	KindType
)

// Kinds lists every member kind in page order.
var Kinds = []MemberKind{KindMethod, KindEvent, KindType}

// String returns the kind's anchor name: method, event or type.
func (k MemberKind) String() string {
	switch k {
	case KindMethod:
		return "method"
	case KindEvent:
		return "event"
	case KindType:
		return "type"
	}
	panic(fmt.Sprintf("protocol: unhandled member kind %d", int(k)))
}

// Category returns the kind's collection name in the document and the
// implementation index: commands, events or types.
func (k MemberKind) Category() string {
	switch k {
	case KindMethod:
		return "commands"
	case KindEvent:
		return "events"
	case KindType:
		return "types"
	}
	panic(fmt.Sprintf("protocol: unhandled member kind %d", int(k)))
}

// KindForCategory maps a collection name back to its kind.
func KindForCategory(category string) (MemberKind, bool) {
	for _, k := range Kinds {
		if k.Category() == category {
			return k, true
		}
	}
	return 0, false
}

// Anchor returns the in-page anchor id for a member key, e.g. method-enable.
// The key is used as-is; callers escape it when building URLs.
func (k MemberKind) Anchor(key string) string {
	return k.String() + "-" + key
}

// MemberKeys returns the keys of every member of kind k, in document order.
func (d *Domain) MemberKeys(k MemberKind) []string {
	var keys []string
	switch k {
	case KindMethod:
		for i := range d.Commands {
			keys = append(keys, d.Commands[i].Key())
		}
	case KindEvent:
		for i := range d.Events {
			keys = append(keys, d.Events[i].Key())
		}
	case KindType:
		for i := range d.Types {
			keys = append(keys, d.Types[i].Key())
		}
	}
	return keys
}
