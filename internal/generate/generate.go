// Package generate writes every page of the site to a directory tree.
package generate

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/p-blackswan/protodocs/internal/docs"
	perrors "github.com/p-blackswan/protodocs/internal/errors"
)

// Config holds generator settings.
type Config struct {
	// OutputDir receives <root>/<slug>/<domain>/index.html.
	OutputDir string
	// Root is the site path prefix.
	Root    string
	Workers int
}

// Result summarizes a run.
type Result struct {
	Pages    int
	Duration time.Duration
}

// Generator renders pages concurrently.
type Generator struct {
	docs   *docs.Service
	config Config
	logger zerolog.Logger
}

// New creates a Generator.
func New(svc *docs.Service, cfg Config, logger zerolog.Logger) *Generator {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Generator{
		docs:   svc,
		config: cfg,
		logger: logger.With().Str("component", "generate").Logger(),
	}
}

// Run writes the version list, each version index and every domain page.
// The first failure cancels the remaining work and is returned.
func (g *Generator) Run(ctx context.Context) (Result, error) {
	start := time.Now()

	refs, err := g.docs.Pages(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("listing pages: %w", err)
	}

	if err := g.writeIndexes(ctx, refs); err != nil {
		return Result{}, err
	}

	var written atomic.Int64
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.config.Workers)

	for _, ref := range refs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := g.writeDomain(ctx, ref); err != nil {
				return fmt.Errorf("page %s/%s: %w", ref.Slug, ref.Domain, err)
			}
			written.Add(1)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Result{Pages: int(written.Load())}, err
	}

	res := Result{Pages: int(written.Load()), Duration: time.Since(start)}
	g.logger.Info().
		Int("pages", res.Pages).
		Int("workers", g.config.Workers).
		Dur("duration", res.Duration).
		Str("output", g.config.OutputDir).
		Msg("site generated")
	return res, nil
}

func (g *Generator) writeIndexes(ctx context.Context, refs []docs.PageRef) error {
	var buf bytes.Buffer
	if err := g.docs.WriteVersions(ctx, &buf); err != nil {
		return fmt.Errorf("version list: %w", err)
	}
	if err := g.write(buf.Bytes(), g.config.Root); err != nil {
		return err
	}

	slugs := lo.Uniq(lo.Map(refs, func(ref docs.PageRef, _ int) string { return ref.Slug }))
	for _, slug := range slugs {
		buf.Reset()
		if err := g.docs.WriteVersion(ctx, &buf, slug); err != nil {
			return fmt.Errorf("version %s: %w", slug, err)
		}
		slugDir, err := segment("version", slug)
		if err != nil {
			return err
		}
		if err := g.write(buf.Bytes(), g.config.Root, slugDir); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) writeDomain(ctx context.Context, ref docs.PageRef) error {
	var buf bytes.Buffer
	if err := g.docs.WriteDomain(ctx, &buf, ref.Slug, ref.Domain); err != nil {
		return err
	}
	slugDir, err := segment("version", ref.Slug)
	if err != nil {
		return err
	}
	domainDir, err := segment("domain", ref.Domain)
	if err != nil {
		return err
	}
	if err := g.write(buf.Bytes(), g.config.Root, slugDir, domainDir); err != nil {
		return err
	}
	g.logger.Debug().Str("slug", ref.Slug).Str("domain", ref.Domain).Msg("page written")
	return nil
}

// segment escapes name into a single directory name matching the path
// segment render.Links puts in page URLs.
func segment(what, name string) (string, error) {
	escaped := url.PathEscape(name)
	if escaped == "" || escaped == "." || escaped == ".." {
		return "", perrors.Contract(what, "name %q cannot be a page path", name)
	}
	return escaped, nil
}

// write stores content as index.html under the joined segments. The file
// is renamed into place so a failed run never leaves a truncated page.
func (g *Generator) write(content []byte, segments ...string) error {
	dir := filepath.Join(append([]string{g.config.OutputDir}, segments...)...)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".index-*.html")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}

	path := filepath.Join(dir, "index.html")
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("renaming to %s: %w", path, err)
	}
	return nil
}
