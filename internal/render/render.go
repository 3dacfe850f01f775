// Package render turns a protocol domain into a documentation page.
//
// Rendering runs in two steps. BuildPage resolves a domain into a Page
// view model, which is where type references, feature statuses and
// implementation links are computed and where contract violations are
// detected. The Renderer then executes the HTML templates into a buffer.
// A page is never partially written.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/p-blackswan/protodocs/internal/implref"
	"github.com/p-blackswan/protodocs/internal/markdown"
	"github.com/p-blackswan/protodocs/internal/protocol"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Renderer renders pages. It holds no per-page state and is safe for
// concurrent use.
type Renderer struct {
	tmpl  *template.Template
	md    *markdown.Renderer
	links Links
	impls []implref.Implementation
}

// New parses the page templates.
func New(md *markdown.Renderer, links Links) (*Renderer, error) {
	r := &Renderer{
		md:    md,
		links: links,
		impls: implref.Implementations,
	}
	tmpl, err := template.New("pages").Funcs(template.FuncMap{
		"root": links.RootIndex,
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	r.tmpl = tmpl
	return r, nil
}

// Links returns the link builder pages are rendered with.
func (r *Renderer) Links() Links { return r.links }

// RenderDomain writes a domain page.
func (r *Renderer) RenderDomain(w io.Writer, page *Page) error {
	return r.execute(w, "domain", page)
}

// VersionEntry is one line of the version list.
type VersionEntry struct {
	Slug string
	Href string
}

// VersionList is the view model of the root page.
type VersionList struct {
	Title    string
	Versions []VersionEntry
}

// DomainEntry is one line of a version index.
type DomainEntry struct {
	Name     string
	Href     string
	Statuses []protocol.Status
}

// VersionIndex is the view model of a version's domain list.
type VersionIndex struct {
	Title       string
	VersionSlug string
	Domains     []DomainEntry
}

// RenderVersionList writes the list of versions.
func (r *Renderer) RenderVersionList(w io.Writer, list *VersionList) error {
	return r.execute(w, "versions", list)
}

// RenderVersionIndex writes the list of domains in a version.
func (r *Renderer) RenderVersionIndex(w io.Writer, idx *VersionIndex) error {
	return r.execute(w, "version", idx)
}

// NotFound is the view model of the not-found page.
type NotFound struct {
	Title  string
	Detail string
}

// RenderNotFound writes the standard not-found page.
func (r *Renderer) RenderNotFound(w io.Writer, detail string) error {
	return r.execute(w, "notfound", &NotFound{Title: "Not Found", Detail: detail})
}

func (r *Renderer) execute(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("executing %s template: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
