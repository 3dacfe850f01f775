package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/p-blackswan/protodocs/internal/config"
	"github.com/p-blackswan/protodocs/internal/docs"
	ghclient "github.com/p-blackswan/protodocs/internal/github"
	"github.com/p-blackswan/protodocs/internal/implref"
	"github.com/p-blackswan/protodocs/internal/markdown"
	"github.com/p-blackswan/protodocs/internal/metrics"
	"github.com/p-blackswan/protodocs/internal/render"
	"github.com/p-blackswan/protodocs/internal/store"
	"github.com/p-blackswan/protodocs/internal/versions"
)

type app struct {
	metrics  *metrics.Metrics
	github   *ghclient.Client
	versions *versions.Store
	store    *store.Store // nil unless INDEX_DB_PATH is set
	docs     *docs.Service
}

func wireApp(cfg *config.Config, logger zerolog.Logger) (*app, error) {
	a := &app{metrics: metrics.New()}

	gh, err := ghclient.NewClient(ghclient.Options{
		Token:   cfg.GitHubToken,
		BaseURL: cfg.GitHubAPIURL,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("wire github client: %w", err)
	}
	a.github = gh

	a.versions, err = versions.Open(cfg.ManifestPath, versions.Options{
		CacheSize:     cfg.DocumentCacheSize,
		Fetcher:       gh,
		OnCacheChange: a.metrics.SetDocumentsCached,
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("wire versions: %w", err)
	}

	// A nil *store.Store must not reach the loader as a non-nil interface.
	var indexStore implref.Store
	if cfg.IndexDBEnabled() {
		a.store, err = store.New(cfg.IndexDBPath, logger)
		if err != nil {
			return nil, fmt.Errorf("wire index store: %w", err)
		}
		indexStore = a.store
	}

	r, err := render.New(markdown.New(), render.Links{
		Root:         cfg.ProtocolRoot,
		UpstreamBase: cfg.UpstreamBaseURL,
	})
	if err != nil {
		a.close()
		return nil, fmt.Errorf("wire renderer: %w", err)
	}

	a.docs = docs.New(a.versions, implref.NewLoader(indexStore, logger), r, a.metrics, logger)
	return a, nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
}
