package render

import (
	"encoding/json"
	"fmt"
	"html/template"
	"slices"

	perrors "github.com/p-blackswan/protodocs/internal/errors"
	"github.com/p-blackswan/protodocs/internal/implref"
	"github.com/p-blackswan/protodocs/internal/protocol"
)

// Page is the view model for one (version, domain) page.
type Page struct {
	Title       string
	Domain      string
	VersionSlug string
	VersionHref string
	UpstreamURL string
	Description template.HTML
	Statuses    []protocol.Status
	TOC         []TOCList
	Methods     []Member
	Events      []Member
	Types       []Member
}

// TOCList is one linked table-of-contents list in the summary card.
type TOCList struct {
	Heading string
	Items   []TOCItem
}

// TOCItem links to a member on the same page.
type TOCItem struct {
	Domain   string
	Key      string
	Href     string
	Statuses []protocol.Status
	Impls    []ImplLink
}

// ImplLink is an implementation badge, linked when the primary reference
// has a source location.
type ImplLink struct {
	Badge implref.Badge
	URL   string
}

// Member is a command, event or type entry.
type Member struct {
	Kind        protocol.MemberKind
	Domain      string
	Key         string
	Anchor      string
	Statuses    []protocol.Status
	Impls       []ImplLink
	UpstreamURL string
	Description template.HTML
	Parameters  []Row
	Returns     []Row

	// Set for types only.
	Type          *TypeView
	AllowedValues []string
	Properties    []Row
}

// Row is one line of a parameters, return object or properties table.
type Row struct {
	Name          string
	Optional      bool
	Type          TypeView
	Description   template.HTML
	AllowedValues []string
	Statuses      []protocol.Status
}

// TypeView is a rendered type: a reference link, a keyword, or an array of
// another TypeView.
type TypeView struct {
	Ref     string
	Href    string
	Keyword string
	Items   *TypeView
}

// IsArray reports whether the view renders as array[ ... ].
func (v TypeView) IsArray() bool { return v.Keyword == string(protocol.ShapeArray) }

type pageBuilder struct {
	r      *Renderer
	domain *protocol.Domain
	meta   protocol.Metadata
	index  *implref.Index
}

// BuildPage resolves every link, badge and type of a domain into a Page.
// A contract violation anywhere aborts the whole page.
func (r *Renderer) BuildPage(domain *protocol.Domain, meta protocol.Metadata, index *implref.Index) (*Page, error) {
	if index == nil {
		index = implref.Empty()
	}
	b := &pageBuilder{r: r, domain: domain, meta: meta, index: index}
	page, err := b.build()
	if err != nil {
		return nil, fmt.Errorf("rendering %s/%s: %w", meta.VersionSlug, domain.Domain, err)
	}
	return page, nil
}

func (b *pageBuilder) build() (*Page, error) {
	d := b.domain
	desc, err := b.r.md.Render(d.Description)
	if err != nil {
		return nil, err
	}

	page := &Page{
		Title:       d.Domain + " Domain",
		Domain:      d.Domain,
		VersionSlug: b.meta.VersionSlug,
		VersionHref: b.r.links.VersionIndex(b.meta.VersionSlug),
		UpstreamURL: b.r.links.UpstreamDomain(b.meta, d.Domain),
		Description: desc,
		Statuses:    protocol.Statuses(d),
	}

	for _, kind := range protocol.Kinds {
		list, err := b.tocList(kind)
		if err != nil {
			return nil, err
		}
		if list != nil {
			page.TOC = append(page.TOC, *list)
		}
	}

	for i := range d.Commands {
		c := &d.Commands[i]
		m, err := b.member(protocol.KindMethod, c.Key(), c, c.Description)
		if err != nil {
			return nil, err
		}
		if m.Parameters, err = b.rows(c.Parameters); err != nil {
			return nil, fmt.Errorf("method %s parameters: %w", c.Name, err)
		}
		if m.Returns, err = b.rows(c.Returns); err != nil {
			return nil, fmt.Errorf("method %s returns: %w", c.Name, err)
		}
		page.Methods = append(page.Methods, m)
	}

	for i := range d.Events {
		e := &d.Events[i]
		m, err := b.member(protocol.KindEvent, e.Key(), e, e.Description)
		if err != nil {
			return nil, err
		}
		if m.Parameters, err = b.rows(e.Parameters); err != nil {
			return nil, fmt.Errorf("event %s parameters: %w", e.Name, err)
		}
		page.Events = append(page.Events, m)
	}

	for i := range d.Types {
		t := &d.Types[i]
		m, err := b.member(protocol.KindType, t.Key(), t, t.Description)
		if err != nil {
			return nil, err
		}
		tv, err := b.typeView(&t.Type, false)
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", t.ID, err)
		}
		m.Type = &tv
		if m.AllowedValues, err = typeDetail(&t.Type); err != nil {
			return nil, fmt.Errorf("type %s: %w", t.ID, err)
		}
		if m.Properties, err = b.rows(t.Properties); err != nil {
			return nil, fmt.Errorf("type %s properties: %w", t.ID, err)
		}
		page.Types = append(page.Types, m)
	}

	return page, nil
}

var tocHeadings = map[protocol.MemberKind]string{
	protocol.KindMethod: "Methods",
	protocol.KindEvent:  "Events",
	protocol.KindType:   "Types",
}

func (b *pageBuilder) tocList(kind protocol.MemberKind) (*TOCList, error) {
	keys := b.domain.MemberKeys(kind)
	if len(keys) == 0 {
		return nil, nil
	}

	list := &TOCList{Heading: tocHeadings[kind]}
	for i, key := range keys {
		impls, err := b.implLinks(kind, key)
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, TOCItem{
			Domain:   b.domain.Domain,
			Key:      key,
			Href:     "#" + Anchor(kind, key),
			Statuses: protocol.Statuses(b.featured(kind, i)),
			Impls:    impls,
		})
	}
	return list, nil
}

func (b *pageBuilder) featured(kind protocol.MemberKind, i int) protocol.Featured {
	switch kind {
	case protocol.KindMethod:
		return &b.domain.Commands[i]
	case protocol.KindEvent:
		return &b.domain.Events[i]
	default:
		return &b.domain.Types[i]
	}
}

func (b *pageBuilder) member(kind protocol.MemberKind, key string, f protocol.Featured, description string) (Member, error) {
	impls, err := b.implLinks(kind, key)
	if err != nil {
		return Member{}, err
	}
	desc, err := b.r.md.Render(description)
	if err != nil {
		return Member{}, err
	}
	return Member{
		Kind:        kind,
		Domain:      b.domain.Domain,
		Key:         key,
		Anchor:      Anchor(kind, key),
		Statuses:    protocol.Statuses(f),
		Impls:       impls,
		UpstreamURL: b.r.links.UpstreamMember(b.meta, b.domain.Domain, kind, key),
		Description: desc,
	}, nil
}

// implLinks returns a badge per implementation with a primary reference.
// Members without references get no badge.
func (b *pageBuilder) implLinks(kind protocol.MemberKind, key string) ([]ImplLink, error) {
	var links []ImplLink
	for _, impl := range b.r.impls {
		badge, err := impl.Badge()
		if err != nil {
			return nil, err
		}
		primary, ok, err := b.index.Primary(impl, kind, b.domain.Domain, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		links = append(links, ImplLink{Badge: badge, URL: primary.URL()})
	}
	return links, nil
}

func (b *pageBuilder) rows(props []protocol.Property) ([]Row, error) {
	if len(props) == 0 {
		return nil, nil
	}
	rows := make([]Row, 0, len(props))
	for i := range props {
		p := &props[i]
		tv, err := b.typeView(&p.Type, false)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.Name, err)
		}
		allowed, err := typeDetail(&p.Type)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.Name, err)
		}
		desc, err := b.r.md.Render(p.Description)
		if err != nil {
			return nil, err
		}
		rows = append(rows, Row{
			Name:          p.Name,
			Optional:      p.Optional,
			Type:          tv,
			Description:   desc,
			AllowedValues: allowed,
			Statuses:      protocol.Statuses(p),
		})
	}
	return rows, nil
}

// typeView renders a type. Array elements may not be enums.
func (b *pageBuilder) typeView(t *protocol.Type, failIfEnum bool) (TypeView, error) {
	if failIfEnum && t.IsEnum() {
		return TypeView{}, perrors.Contract("type", "unexpected enum in this context: %s", describe(t))
	}
	if t.IsRef() {
		ref := protocol.ResolveRef(t.Ref, b.domain.Domain)
		return TypeView{Ref: t.Ref, Href: b.r.links.TypeRef(b.meta.VersionSlug, ref)}, nil
	}

	switch t.Shape {
	case protocol.ShapeArray:
		v := TypeView{Keyword: string(t.Shape)}
		if t.Items != nil {
			items, err := b.typeView(t.Items, true)
			if err != nil {
				return TypeView{}, err
			}
			v.Items = &items
		}
		return v, nil
	case protocol.ShapeObject, protocol.ShapeBoolean, protocol.ShapeInteger,
		protocol.ShapeString, protocol.ShapeNumber, protocol.ShapeAny:
		return TypeView{Keyword: string(t.Shape)}, nil
	}
	return TypeView{}, perrors.Contract("type", "unhandled type: %s", describe(t))
}

// typeDetail returns a string enum's allowed values in document order.
func typeDetail(t *protocol.Type) ([]string, error) {
	if t.IsRef() {
		return nil, nil
	}
	switch t.Shape {
	case protocol.ShapeString:
		return slices.Clone(t.Enum), nil
	case protocol.ShapeArray, protocol.ShapeObject, protocol.ShapeBoolean,
		protocol.ShapeInteger, protocol.ShapeNumber, protocol.ShapeAny:
		return nil, nil
	}
	return nil, perrors.Contract("type", "unhandled type: %s", describe(t))
}

func describe(t *protocol.Type) string {
	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Sprintf("%+v", *t)
	}
	return string(raw)
}
