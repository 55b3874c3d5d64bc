// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/chainpick/internal/coverage"
	"github.com/verte-zerg/chainpick/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for coverage tallies and play history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS coverage (
			lang TEXT NOT NULL,
			letter TEXT NOT NULL,
			count INTEGER NOT NULL,
			target INTEGER NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (lang, letter)
		);`,
		`CREATE TABLE IF NOT EXISTS plays (
			id INTEGER PRIMARY KEY,
			round_id TEXT NOT NULL,
			played_at TEXT NOT NULL,
			lang TEXT NOT NULL,
			syllable TEXT NOT NULL,
			word TEXT NOT NULL,
			context TEXT NOT NULL,
			accepted INTEGER NOT NULL,
			reason TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_plays_played_at ON plays(played_at);`,
		`CREATE INDEX IF NOT EXISTS idx_plays_word ON plays(word);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveCoverage replaces the stored tallies of a language.
func (s *Store) SaveCoverage(ctx context.Context, lang string, snap coverage.Snapshot) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO coverage (lang, letter, count, target, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (lang, letter) DO UPDATE SET
			count = excluded.count,
			target = excluded.target,
			updated_at = excluded.updated_at`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()

	now := time.Now().UTC().Format(timeLayout)
	for i := 0; i < coverage.Letters; i++ {
		letter := string(rune('a' + i))
		if _, err = stmt.ExecContext(ctx, lang, letter, snap.Counts[i], snap.Targets[i], now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadCoverage returns the stored tallies of a language. The bool is false
// when nothing was saved yet.
func (s *Store) LoadCoverage(ctx context.Context, lang string) (coverage.Snapshot, bool, error) {
	var snap coverage.Snapshot
	rows, err := s.db.QueryContext(ctx, `SELECT letter, count, target FROM coverage WHERE lang = ?`, lang)
	if err != nil {
		return snap, false, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	found := false
	for rows.Next() {
		var letter string
		var count, target int
		if err := rows.Scan(&letter, &count, &target); err != nil {
			return snap, false, err
		}
		if len(letter) != 1 || letter[0] < 'a' || letter[0] > 'z' {
			continue
		}
		i := letter[0] - 'a'
		snap.Counts[i] = count
		snap.Targets[i] = target
		found = true
	}
	if err := rows.Err(); err != nil {
		return snap, false, err
	}
	return snap, found, nil
}

// InsertPlay stores a played word and its outcome.
func (s *Store) InsertPlay(ctx context.Context, play model.Play) error {
	playedAt := play.PlayedAt
	if playedAt.IsZero() {
		playedAt = time.Now().UTC()
	}
	accepted := 0
	if play.Accepted {
		accepted = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO plays (round_id, played_at, lang, syllable, word, context, accepted, reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		play.RoundID,
		playedAt.UTC().Format(timeLayout),
		play.Lang,
		play.Syllable,
		strings.ToLower(strings.TrimSpace(play.Word)),
		string(play.Context),
		accepted,
		play.Reason,
	)
	return err
}

// ListPlays returns plays matching cfg in chronological order. Last keeps
// only the most recent N.
func (s *Store) ListPlays(ctx context.Context, cfg model.HistoryConfig) ([]model.Play, error) {
	where, args := historyFilter(cfg)
	limit := -1
	if cfg.Last > 0 {
		limit = cfg.Last
	}
	query := fmt.Sprintf(`SELECT id, round_id, played_at, lang, syllable, word, context, accepted, reason
		FROM (
			SELECT * FROM plays
			WHERE %s
			ORDER BY played_at DESC, id DESC
			LIMIT ?
		)
		ORDER BY played_at ASC, id ASC`, where)
	args = append(args, limit)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var plays []model.Play
	for rows.Next() {
		var p model.Play
		var playedAt, kind string
		var accepted int
		if err := rows.Scan(&p.ID, &p.RoundID, &playedAt, &p.Lang, &p.Syllable, &p.Word, &kind, &accepted, &p.Reason); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, playedAt)
		if err != nil {
			return nil, err
		}
		p.PlayedAt = parsed
		p.Context = model.Context(kind)
		p.Accepted = accepted != 0
		plays = append(plays, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return plays, nil
}

// RejectedWords returns the most often rejected words matching cfg.
func (s *Store) RejectedWords(ctx context.Context, cfg model.HistoryConfig) ([]model.WordCount, error) {
	if cfg.Top <= 0 {
		return nil, nil
	}
	where, args := historyFilter(cfg)
	query := fmt.Sprintf(`SELECT word, COUNT(*) AS n
		FROM plays
		WHERE %s AND accepted = 0
		GROUP BY word
		ORDER BY n DESC, word ASC
		LIMIT ?`, where)
	args = append(args, cfg.Top)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.WordCount
	for rows.Next() {
		var wc model.WordCount
		if err := rows.Scan(&wc.Word, &wc.Count); err != nil {
			return nil, err
		}
		result = append(result, wc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func historyFilter(cfg model.HistoryConfig) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Lang != "" {
		clauses = append(clauses, "lang = ?")
		args = append(args, cfg.Lang)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "played_at >= ?")
		args = append(args, cfg.Since.UTC().Format(timeLayout))
	}
	return strings.Join(clauses, " AND "), args
}
