package implref

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// Store persists whole indexes per protocol id.
type Store interface {
	LoadIndex(ctx context.Context, protocolID string) (*Index, bool, error)
	SaveIndex(ctx context.Context, protocolID string, ix *Index) error
}

// Loader returns the implementation index for a protocol, building it at
// most once per protocol. Sources are tried in order: memo, store, index
// file. A protocol with none of them gets an empty index. Loads of
// different protocols run independently.
type Loader struct {
	store  Store
	logger zerolog.Logger

	mu       sync.Mutex
	memo     map[string]*Index
	inflight map[string]*pending
}

type pending struct {
	done chan struct{}
	ix   *Index
	err  error
}

// NewLoader creates a loader. store may be nil.
func NewLoader(store Store, logger zerolog.Logger) *Loader {
	return &Loader{
		store:    store,
		logger:   logger.With().Str("component", "implref").Logger(),
		memo:     make(map[string]*Index),
		inflight: make(map[string]*pending),
	}
}

// Load returns the index for protocolID, reading indexPath if the store has
// nothing for it. Failed loads are not memoized.
func (l *Loader) Load(ctx context.Context, protocolID, indexPath string) (*Index, error) {
	l.mu.Lock()
	if ix, ok := l.memo[protocolID]; ok {
		l.mu.Unlock()
		return ix, nil
	}
	if p, ok := l.inflight[protocolID]; ok {
		l.mu.Unlock()
		select {
		case <-p.done:
			return p.ix, p.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	p := &pending{done: make(chan struct{})}
	l.inflight[protocolID] = p
	l.mu.Unlock()

	ix, source, err := l.load(ctx, protocolID, indexPath)
	if err != nil {
		p.err = fmt.Errorf("loading implementation data for %s: %w", protocolID, err)
	} else {
		p.ix = ix
	}

	l.mu.Lock()
	if p.err == nil {
		l.memo[protocolID] = ix
	}
	delete(l.inflight, protocolID)
	l.mu.Unlock()
	close(p.done)

	if p.err == nil {
		l.logger.Info().
			Str("protocol", protocolID).
			Str("source", source).
			Int("members", ix.Len()).
			Msg("implementation index loaded")
	}
	return p.ix, p.err
}

// Forget drops a memoized index so the next Load rebuilds it.
func (l *Loader) Forget(protocolID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.memo, protocolID)
}

func (l *Loader) load(ctx context.Context, protocolID, indexPath string) (*Index, string, error) {
	if l.store != nil {
		ix, ok, err := l.store.LoadIndex(ctx, protocolID)
		if err != nil {
			return nil, "", err
		}
		if ok {
			return ix, "store", nil
		}
	}

	if indexPath == "" {
		return Empty(), "none", nil
	}

	f, err := os.Open(indexPath)
	if err != nil {
		return nil, "", fmt.Errorf("opening index file: %w", err)
	}
	defer f.Close()

	ix, err := Decode(f)
	if err != nil {
		return nil, "", err
	}
	return ix, "file", nil
}
