package protocol

import "strings"

// ResolvedRef is a type reference split into its owning domain and local name.
type ResolvedRef struct {
	Domain    string
	LocalName string
}

// ResolveRef resolves a possibly qualified reference ("Domain.Name" or
// "Name") relative to the domain that declares it.
func ResolveRef(ref, declaringDomain string) ResolvedRef {
	if domain, name, ok := strings.Cut(ref, "."); ok {
		return ResolvedRef{Domain: domain, LocalName: name}
	}
	return ResolvedRef{Domain: declaringDomain, LocalName: ref}
}
