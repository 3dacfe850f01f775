// Package implref indexes where an external implementation of the protocol
// references each protocol member, so pages can link a command, event or
// type to the source lines that handle it.
package implref

import (
	perrors "github.com/p-blackswan/protodocs/internal/errors"
)

// Implementation identifies an external implementation of the protocol.
type Implementation string

// Hermes is the Hermes JavaScript engine's CDP handler.
const Hermes Implementation = "hermes"

// Implementations lists every known implementation.
var Implementations = []Implementation{Hermes}

// Badge describes how an implementation is shown next to a member.
type Badge struct {
	Label string
	Title string
}

// Known reports whether i is a recognized implementation.
func (i Implementation) Known() bool {
	for _, k := range Implementations {
		if i == k {
			return true
		}
	}
	return false
}

// Badge returns the implementation's display badge.
func (i Implementation) Badge() (Badge, error) {
	switch i {
	case Hermes:
		return Badge{
			Label: "Hermes",
			Title: "Referenced in Hermes CDPHandler",
		}, nil
	}
	return Badge{}, unknownImplementation(i)
}

// ParseImplementation validates an implementation id read from data.
func ParseImplementation(s string) (Implementation, error) {
	i := Implementation(s)
	if !i.Known() {
		return "", unknownImplementation(i)
	}
	return i, nil
}

func unknownImplementation(i Implementation) error {
	return perrors.Contract("implementation", "unhandled implementation id %q", string(i))
}
