package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/p-blackswan/protodocs/internal/implref"
	"github.com/p-blackswan/protodocs/internal/protocol"
)

var _ implref.Store = (*Store)(nil)

// SaveIndex replaces the stored index for a protocol in one transaction.
func (s *Store) SaveIndex(ctx context.Context, protocolID string, ix *implref.Index) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM implementation_refs WHERE protocol_id = ?`, protocolID); err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO implementation_refs (
		protocol_id, implementation, category, domain, member_key, ordinal,
		owner, repo, commit_sha, path, line
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	entries := ix.Entries()
	for _, e := range entries {
		for ordinal, ref := range e.References {
			var owner, repo, sha, path sql.NullString
			if g := ref.GitHub; g != nil {
				owner = sql.NullString{String: g.Owner, Valid: true}
				repo = sql.NullString{String: g.Repo, Valid: true}
				sha = sql.NullString{String: g.CommitSHA, Valid: true}
				path = sql.NullString{String: g.Path, Valid: true}
			}
			if _, err := stmt.ExecContext(ctx,
				protocolID, string(e.Implementation), e.Kind.Category(), e.Domain, e.Key, ordinal,
				owner, repo, sha, path, ref.Line,
			); err != nil {
				return fmt.Errorf("failed to insert reference: %w", err)
			}
		}
	}

	if _, err := tx.ExecContext(ctx, `
	INSERT OR REPLACE INTO indexed_protocols (protocol_id, members, indexed_at) VALUES (?, ?, ?)
	`, protocolID, len(entries), time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to record index: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit index: %w", err)
	}

	s.logger.Info().Str("protocol", protocolID).Int("members", len(entries)).Msg("index saved")
	return nil
}

// LoadIndex returns the stored index for a protocol. ok is false if the
// protocol was never indexed.
func (s *Store) LoadIndex(ctx context.Context, protocolID string) (*implref.Index, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var members int
	err := s.db.QueryRowContext(ctx,
		`SELECT members FROM indexed_protocols WHERE protocol_id = ?`, protocolID).Scan(&members)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get indexed protocol: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
	SELECT implementation, category, domain, member_key, owner, repo, commit_sha, path, line
	FROM implementation_refs
	WHERE protocol_id = ?
	ORDER BY implementation, category, domain, member_key, ordinal
	`, protocolID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query index: %w", err)
	}
	defer rows.Close()

	b := implref.NewBuilder()
	for rows.Next() {
		var implID, category, domain, key string
		var owner, repo, sha, path sql.NullString
		var ref implref.Reference
		if err := rows.Scan(&implID, &category, &domain, &key, &owner, &repo, &sha, &path, &ref.Line); err != nil {
			return nil, false, fmt.Errorf("failed to scan reference: %w", err)
		}

		impl, err := implref.ParseImplementation(implID)
		if err != nil {
			return nil, false, err
		}
		kind, ok := protocol.KindForCategory(category)
		if !ok {
			return nil, false, fmt.Errorf("stored reference has unknown category %q", category)
		}
		if owner.Valid {
			ref.GitHub = &implref.GitHubLocation{
				Owner:     owner.String,
				Repo:      repo.String,
				CommitSHA: sha.String,
				Path:      path.String,
			}
		}
		if err := b.Add(impl, kind, domain, key, ref); err != nil {
			return nil, false, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("failed to read index: %w", err)
	}

	return b.Build(), true, nil
}

// IndexedProtocols lists every protocol id with a stored index.
func (s *Store) IndexedProtocols(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT protocol_id FROM indexed_protocols ORDER BY protocol_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list indexed protocols: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan protocol id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
