// Package db persists the message corpus and the learning allow list in
// SQLite.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrNotFound = errors.New("not found")

type Store struct {
	conn *sql.DB
	now  func() time.Time
}

func Open(path string) (*Store, error) {
	conn, err := openConn(path)
	if err != nil {
		return nil, err
	}
	return &Store{conn: conn, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) AddMessage(ctx context.Context, scope, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if _, err := s.conn.ExecContext(ctx,
		`INSERT INTO messages(scope, text, created_at) VALUES(?,?,?)`,
		scope, text, s.now().UnixNano(),
	); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// AddMessages stores texts in one transaction and returns how many were
// inserted. Blank texts are skipped.
func (s *Store) AddMessages(ctx context.Context, scope string, texts []string) (int, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO messages(scope, text, created_at) VALUES(?,?,?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := s.now().UnixNano()
	inserted := 0
	for _, text := range texts {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, scope, text, now); err != nil {
			return 0, fmt.Errorf("insert message: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return inserted, nil
}

// LoadAll returns every stored text across scopes in insertion order.
func (s *Store) LoadAll(ctx context.Context) ([]string, error) {
	return s.queryStrings(ctx, `SELECT text FROM messages ORDER BY id`)
}

func (s *Store) LoadScope(ctx context.Context, scope string) ([]string, error) {
	return s.queryStrings(ctx, `SELECT text FROM messages WHERE scope = ? ORDER BY id`, scope)
}

// Count returns the number of messages in scope, or in total when scope is
// empty.
func (s *Store) Count(ctx context.Context, scope string) (int, error) {
	row := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`)
	if scope != "" {
		row = s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE scope = ?`, scope)
	}
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("scan count: %w", err)
	}
	return count, nil
}

func (s *Store) Scopes(ctx context.Context) ([]string, error) {
	return s.queryStrings(ctx, `SELECT DISTINCT scope FROM messages ORDER BY scope`)
}

func (s *Store) AddLearningGroup(ctx context.Context, scope string) error {
	if _, err := s.conn.ExecContext(ctx,
		`INSERT INTO learning_groups(scope, created_at) VALUES(?,?) ON CONFLICT(scope) DO NOTHING`,
		scope, s.now().UnixNano(),
	); err != nil {
		return fmt.Errorf("insert learning group: %w", err)
	}
	return nil
}

// RemoveLearningGroup returns ErrNotFound when scope was not learning.
func (s *Store) RemoveLearningGroup(ctx context.Context, scope string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM learning_groups WHERE scope = ?`, scope)
	if err != nil {
		return fmt.Errorf("delete learning group: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("learning group rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) LearningGroups(ctx context.Context) ([]string, error) {
	return s.queryStrings(ctx, `SELECT scope FROM learning_groups ORDER BY scope`)
}

func (s *Store) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}
