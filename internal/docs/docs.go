// Package docs ties versions, implementation indexes and the renderer
// together to produce whole pages.
package docs

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	perrors "github.com/p-blackswan/protodocs/internal/errors"
	"github.com/p-blackswan/protodocs/internal/implref"
	"github.com/p-blackswan/protodocs/internal/metrics"
	"github.com/p-blackswan/protodocs/internal/protocol"
	"github.com/p-blackswan/protodocs/internal/render"
	"github.com/p-blackswan/protodocs/internal/versions"
)

// VersionStore is the part of versions.Store the service reads.
type VersionStore interface {
	Versions(ctx context.Context) ([]*versions.Version, error)
	BySlug(ctx context.Context, slug string) (*versions.Version, error)
}

// IndexLoader returns a protocol's implementation index.
type IndexLoader interface {
	Load(ctx context.Context, protocolID, indexPath string) (*implref.Index, error)
}

// Service renders pages. It is safe for concurrent use.
type Service struct {
	versions VersionStore
	indexes  IndexLoader
	renderer *render.Renderer
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// New creates a Service. m may be nil.
func New(vs VersionStore, indexes IndexLoader, r *render.Renderer, m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		versions: vs,
		indexes:  indexes,
		renderer: r,
		metrics:  m,
		logger:   logger.With().Str("component", "docs").Logger(),
	}
}

// Renderer returns the page renderer.
func (s *Service) Renderer() *render.Renderer { return s.renderer }

// Domain resolves slug and domain name to a loaded domain.
func (s *Service) Domain(ctx context.Context, slug, name string) (*versions.Version, *protocol.Domain, error) {
	v, err := s.version(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	doc, err := v.Protocol(ctx)
	if err != nil {
		return nil, nil, err
	}
	d, ok := doc.Domain(name)
	if !ok {
		s.notFound("domain")
		return nil, nil, perrors.NotFound("domain", name)
	}
	return v, d, nil
}

// WriteDomain renders one domain page to w. Nothing is written on error.
func (s *Service) WriteDomain(ctx context.Context, w io.Writer, slug, name string) error {
	start := time.Now()

	v, d, err := s.Domain(ctx, slug, name)
	if err != nil {
		return err
	}
	ix, err := s.indexes.Load(ctx, v.Slug(), v.IndexFile())
	if err != nil {
		s.recordError("implref", err)
		return err
	}
	page, err := s.renderer.BuildPage(d, v.Metadata(), ix)
	if err != nil {
		s.recordError("render", err)
		return err
	}
	if err := s.renderer.RenderDomain(w, page); err != nil {
		s.recordError("render", err)
		return err
	}

	s.recordRender(metrics.KindDomain, start)
	return nil
}

// WriteVersion renders the domain list of a version.
func (s *Service) WriteVersion(ctx context.Context, w io.Writer, slug string) error {
	start := time.Now()

	v, err := s.version(ctx, slug)
	if err != nil {
		return err
	}
	doc, err := v.Protocol(ctx)
	if err != nil {
		return err
	}

	links := s.renderer.Links()
	idx := &render.VersionIndex{
		Title:       fmt.Sprintf("Protocol %s", v.Slug()),
		VersionSlug: v.Slug(),
	}
	for i := range doc.Domains {
		d := &doc.Domains[i]
		idx.Domains = append(idx.Domains, render.DomainEntry{
			Name:     d.Domain,
			Href:     links.Domain(v.Slug(), d.Domain),
			Statuses: protocol.Statuses(d),
		})
	}

	if err := s.renderer.RenderVersionIndex(w, idx); err != nil {
		s.recordError("render", err)
		return err
	}
	s.recordRender(metrics.KindVersion, start)
	return nil
}

// WriteVersions renders the list of all versions.
func (s *Service) WriteVersions(ctx context.Context, w io.Writer) error {
	start := time.Now()

	vs, err := s.versions.Versions(ctx)
	if err != nil {
		return err
	}

	links := s.renderer.Links()
	list := &render.VersionList{Title: "Protocol versions"}
	for _, v := range vs {
		list.Versions = append(list.Versions, render.VersionEntry{
			Slug: v.Slug(),
			Href: links.VersionIndex(v.Slug()),
		})
	}

	if err := s.renderer.RenderVersionList(w, list); err != nil {
		s.recordError("render", err)
		return err
	}
	s.recordRender(metrics.KindVersions, start)
	return nil
}

// WriteNotFound renders the standard not-found page.
func (s *Service) WriteNotFound(w io.Writer, detail string) error {
	return s.renderer.RenderNotFound(w, detail)
}

// PageRef identifies one domain page.
type PageRef struct {
	Slug   string
	Domain string
}

// Pages lists every (version, domain) pair in manifest order, then
// document order.
func (s *Service) Pages(ctx context.Context) ([]PageRef, error) {
	vs, err := s.versions.Versions(ctx)
	if err != nil {
		return nil, err
	}
	var refs []PageRef
	for _, v := range vs {
		doc, err := v.Protocol(ctx)
		if err != nil {
			return nil, err
		}
		for _, name := range doc.DomainNames() {
			refs = append(refs, PageRef{Slug: v.Slug(), Domain: name})
		}
	}
	return refs, nil
}

func (s *Service) version(ctx context.Context, slug string) (*versions.Version, error) {
	v, err := s.versions.BySlug(ctx, slug)
	if perrors.IsNotFound(err) {
		s.notFound("version")
	}
	return v, err
}

func (s *Service) notFound(reason string) {
	if s.metrics != nil {
		s.metrics.RecordNotFound(reason)
	}
}

func (s *Service) recordRender(kind string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordRender(kind, time.Since(start))
	}
}

func (s *Service) recordError(module string, err error) {
	errType := "internal"
	if perrors.IsContractViolation(err) {
		errType = "contract_violation"
	}
	s.logger.Error().Err(err).Str("module", module).Str("type", errType).Msg("page failed")
	if s.metrics != nil {
		s.metrics.RecordError(module, errType)
	}
}
