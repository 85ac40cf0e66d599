package db

import (
	"context"
	"fmt"
)

type CleanStats struct {
	Total   int `json:"total"`
	Kept    int `json:"kept"`
	Dropped int `json:"dropped"`
	Updated int `json:"updated"`
}

// RewriteFunc returns the replacement for text, or false to drop it.
type RewriteFunc func(text string) (string, bool)

type storedMessage struct {
	id    int64
	scope string
	text  string
}

// Rewrite passes every stored message through fn and removes duplicates
// within each scope. With dryRun the changes are computed and rolled back.
func (s *Store) Rewrite(ctx context.Context, fn RewriteFunc, dryRun bool) (CleanStats, error) {
	var stats CleanStats

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT id, scope, text FROM messages ORDER BY scope, id`)
	if err != nil {
		return stats, fmt.Errorf("query messages: %w", err)
	}
	var all []storedMessage
	for rows.Next() {
		var m storedMessage
		if err := rows.Scan(&m.id, &m.scope, &m.text); err != nil {
			rows.Close()
			return stats, fmt.Errorf("scan message: %w", err)
		}
		all = append(all, m)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return stats, fmt.Errorf("iterate messages: %w", err)
	}
	rows.Close()

	var (
		scope string
		last  string
		seen  map[string]struct{}
	)
	for i, m := range all {
		if i == 0 || m.scope != scope {
			scope, last, seen = m.scope, "", map[string]struct{}{}
		}
		stats.Total++

		text, ok := fn(m.text)
		if ok {
			if _, dup := seen[text]; dup || text == last || text == "" {
				ok = false
			}
		}
		if !ok {
			stats.Dropped++
			if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, m.id); err != nil {
				return stats, fmt.Errorf("delete message: %w", err)
			}
			continue
		}

		seen[text] = struct{}{}
		last = text
		stats.Kept++
		if text != m.text {
			stats.Updated++
			if _, err := tx.ExecContext(ctx, `UPDATE messages SET text = ? WHERE id = ?`, text, m.id); err != nil {
				return stats, fmt.Errorf("update message: %w", err)
			}
		}
	}

	if dryRun {
		return stats, nil
	}
	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("commit tx: %w", err)
	}
	return stats, nil
}
