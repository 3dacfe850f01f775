// Package protocol models a parsed protocol document: domains with their
// commands, events and types, in the JSON layout used by the DevTools
// protocol files.
//
// Every value in this package is read-only once decoded. Render code
// receives documents by pointer and must not modify them.
package protocol

// Version is the protocol's declared version.
type Version struct {
	Major string `json:"major"`
	Minor string `json:"minor"`
}

// Document is the root of one protocol version.
type Document struct {
	Version *Version `json:"version,omitempty"`
	Domains []Domain `json:"domains"`
}

// Domain returns the domain with the given name.
func (d *Document) Domain(name string) (*Domain, bool) {
	for i := range d.Domains {
		if d.Domains[i].Domain == name {
			return &d.Domains[i], true
		}
	}
	return nil, false
}

// DomainNames lists the document's domains in document order.
func (d *Document) DomainNames() []string {
	names := make([]string, 0, len(d.Domains))
	for _, dom := range d.Domains {
		names = append(names, dom.Domain)
	}
	return names
}

// Domain groups related commands, events and types.
type Domain struct {
	Feature
	Domain       string    `json:"domain"`
	Description  string    `json:"description,omitempty"`
	Dependencies []string  `json:"dependencies,omitempty"`
	Types        []TypeDef `json:"types,omitempty"`
	Commands     []Command `json:"commands,omitempty"`
	Events       []Event   `json:"events,omitempty"`
}

// Command is a request a client can send.
type Command struct {
	Feature
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Parameters  []Property `json:"parameters,omitempty"`
	Returns     []Property `json:"returns,omitempty"`
}

// Key returns the command's member key.
func (c *Command) Key() string { return c.Name }

// Event is a notification the server emits.
type Event struct {
	Feature
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Parameters  []Property `json:"parameters,omitempty"`
}

// Key returns the event's member key.
func (e *Event) Key() string { return e.Name }

// TypeDef is a named type declared by a domain.
type TypeDef struct {
	Feature
	Type
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
}

// Key returns the type's member key.
func (t *TypeDef) Key() string { return t.ID }

// Property is a named field: a parameter, a return value or an object
// property.
type Property struct {
	Feature
	Type
	Name        string `json:"name"`
	Optional    bool   `json:"optional,omitempty"`
	Description string `json:"description,omitempty"`
}

// Shape is the discriminant of a non-reference type.
type Shape string

const (
	ShapeArray   Shape = "array"
	ShapeObject  Shape = "object"
	ShapeBoolean Shape = "boolean"
	ShapeInteger Shape = "integer"
	ShapeString  Shape = "string"
	ShapeNumber  Shape = "number"
	ShapeAny     Shape = "any"
)

// Known reports whether s is one of the shapes the protocol grammar allows.
func (s Shape) Known() bool {
	switch s {
	case ShapeArray, ShapeObject, ShapeBoolean, ShapeInteger, ShapeString, ShapeNumber, ShapeAny:
		return true
	}
	return false
}

// Type is either a reference ($ref) or an inline shape.
type Type struct {
	Ref        string     `json:"$ref,omitempty"`
	Shape      Shape      `json:"type,omitempty"`
	Items      *Type      `json:"items,omitempty"`
	Enum       []string   `json:"enum,omitempty"`
	Properties []Property `json:"properties,omitempty"`
}

// IsRef reports whether the type refers to a named type.
func (t *Type) IsRef() bool { return t.Ref != "" }

// IsEnum reports whether the type carries an enumeration.
func (t *Type) IsEnum() bool { return len(t.Enum) > 0 }

// Metadata describes how one protocol version is published.
type Metadata struct {
	// VersionSlug is the URL-safe version identifier used in page paths.
	VersionSlug string
	// IsAvailableUpstream reports whether the canonical upstream docs
	// mirror this version.
	IsAvailableUpstream bool
}
