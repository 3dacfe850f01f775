// Package versions maps version slugs to protocol documents.
package versions

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"

	perrors "github.com/p-blackswan/protodocs/internal/errors"
	"github.com/p-blackswan/protodocs/internal/protocol"
)

// DefaultCacheSize is the number of parsed documents held in memory.
const DefaultCacheSize = 8

// Fetcher downloads one file from a repository at a ref.
type Fetcher interface {
	FetchFile(ctx context.Context, owner, repo, ref, path string) ([]byte, error)
}

// Options configures a Store.
type Options struct {
	CacheSize int
	// Fetcher serves GitHub sources. It may be nil when no version uses one.
	Fetcher Fetcher
	// OnCacheChange is called with the number of cached documents
	// after every insert.
	OnCacheChange func(cached int)
	Logger        zerolog.Logger
}

// Store resolves versions listed in a manifest.
type Store struct {
	versions []*Version
	bySlug   map[string]*Version
	cache    *documentCache
	fetcher  Fetcher
	onCache  func(int)
	logger   zerolog.Logger

	mu       sync.Mutex
	inflight map[string]*load
}

// load tracks one in-progress document load so concurrent callers share it.
type load struct {
	done chan struct{}
	doc  *protocol.Document
	err  error
}

// Version is one protocol version from the manifest.
type Version struct {
	store  *Store
	config VersionConfig
}

// NewStore builds a Store from a validated manifest.
func NewStore(m *Manifest, opts Options) (*Store, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}

	s := &Store{
		bySlug:   make(map[string]*Version, len(m.Versions)),
		cache:    newDocumentCache(size),
		fetcher:  opts.Fetcher,
		onCache:  opts.OnCacheChange,
		logger:   opts.Logger.With().Str("component", "versions").Logger(),
		inflight: make(map[string]*load),
	}
	for _, cfg := range m.Versions {
		if cfg.Source.GitHub != nil && opts.Fetcher == nil {
			return nil, fmt.Errorf("version %q: github source configured without a fetcher", cfg.Slug)
		}
		v := &Version{store: s, config: cfg}
		s.versions = append(s.versions, v)
		s.bySlug[cfg.Slug] = v
	}
	return s, nil
}

// Open loads the manifest at path and builds a Store.
func Open(path string, opts Options) (*Store, error) {
	m, err := LoadManifest(path)
	if err != nil {
		return nil, err
	}
	return NewStore(m, opts)
}

// Versions returns all versions in manifest order.
func (s *Store) Versions(ctx context.Context) ([]*Version, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]*Version, len(s.versions))
	copy(out, s.versions)
	return out, nil
}

// BySlug returns the version with the given slug.
func (s *Store) BySlug(ctx context.Context, slug string) (*Version, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, ok := s.bySlug[slug]
	if !ok {
		return nil, perrors.NotFound("version", slug)
	}
	return v, nil
}

// Cached reports how many parsed documents are in memory.
func (s *Store) Cached() int { return s.cache.len() }

// Slug returns the version's URL identifier.
func (v *Version) Slug() string { return v.config.Slug }

// Metadata returns the values the renderer needs about this version.
func (v *Version) Metadata() protocol.Metadata {
	return protocol.Metadata{
		VersionSlug:         v.config.Slug,
		IsAvailableUpstream: v.config.AvailableUpstream,
	}
}

// IndexFile is the optional implementation index path; empty if unset.
func (v *Version) IndexFile() string { return v.config.ImplementationIndex }

// Protocol returns the version's parsed document, loading it on first use.
func (v *Version) Protocol(ctx context.Context) (*protocol.Document, error) {
	return v.store.document(ctx, v)
}

func (s *Store) document(ctx context.Context, v *Version) (*protocol.Document, error) {
	slug := v.config.Slug
	if doc, ok := s.cache.get(slug); ok {
		return doc, nil
	}

	s.mu.Lock()
	if doc, ok := s.cache.get(slug); ok {
		s.mu.Unlock()
		return doc, nil
	}
	if l, ok := s.inflight[slug]; ok {
		s.mu.Unlock()
		select {
		case <-l.done:
			return l.doc, l.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	l := &load{done: make(chan struct{})}
	s.inflight[slug] = l
	s.mu.Unlock()

	l.doc, l.err = s.read(ctx, v)
	if l.err == nil {
		if evicted, ok := s.cache.put(slug, l.doc); ok {
			s.logger.Debug().Str("slug", evicted).Msg("evicted document")
		}
		if s.onCache != nil {
			s.onCache(s.cache.len())
		}
	}

	s.mu.Lock()
	delete(s.inflight, slug)
	s.mu.Unlock()
	close(l.done)

	return l.doc, l.err
}

// read fetches and merges every source file of a version.
func (s *Store) read(ctx context.Context, v *Version) (*protocol.Document, error) {
	src := v.config.Source
	var docs []*protocol.Document

	if gh := src.GitHub; gh != nil {
		for _, p := range gh.Paths {
			raw, err := s.fetcher.FetchFile(ctx, gh.Owner, gh.Repo, gh.Ref, p)
			if err != nil {
				return nil, sourceError(v.config.Slug, p, err)
			}
			doc, err := protocol.Decode(bytes.NewReader(raw))
			if err != nil {
				return nil, fmt.Errorf("version %q: %s: %w", v.config.Slug, p, err)
			}
			docs = append(docs, doc)
		}
	} else {
		for _, p := range src.Files {
			doc, err := decodeFile(p)
			if err != nil {
				return nil, fmt.Errorf("version %q: %w", v.config.Slug, err)
			}
			docs = append(docs, doc)
		}
	}

	doc := protocol.Merge(docs...)
	s.logger.Info().
		Str("slug", v.config.Slug).
		Int("domains", len(doc.Domains)).
		Msg("loaded protocol")
	return doc, nil
}

// sourceError reports a configured version whose source could not be read.
// The version exists, so the result never matches ErrNotFound.
func sourceError(slug, path string, err error) error {
	if perrors.IsNotFound(err) {
		return fmt.Errorf("version %q: %s: %w: %v", slug, path, perrors.ErrUnavailable, err)
	}
	return fmt.Errorf("version %q: %s: %w", slug, path, err)
}

func decodeFile(path string) (*protocol.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	doc, err := protocol.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
