// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive persists pipeline runs in SQLite and indexes their
// headlines for full-text search.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/newspulse/pkg/types"
)

const dbFile = "newspulse.db"

// ErrNotFound is returned when a run ID does not exist.
var ErrNotFound = errors.New("run not found")

// now is the clock used for new runs. Tests override it.
var now = time.Now

// Run is one archived pipeline invocation.
type Run struct {
	ID          string                `json:"id" yaml:"id"`
	Query       string                `json:"query" yaml:"query"`
	MaxArticles int                   `json:"max_articles" yaml:"max_articles"`
	CreatedAt   time.Time             `json:"created_at" yaml:"created_at"`
	Report      types.Report          `json:"report" yaml:"report"`
	Articles    []types.ScoredArticle `json:"articles,omitempty" yaml:"articles,omitempty"`
}

// Store manages the archive SQLite database.
type Store struct {
	db         *sql.DB
	dataDir    string
	maxResults int

	// fts is false when the SQLite build lacks FTS5 (go-sqlite3 needs the
	// sqlite_fts5 tag); Search then falls back to substring matching.
	fts bool
}

// NewStore opens or creates the archive database at
// dataDir/newspulse.db and creates the schema if it does not exist.
func NewStore(cfg types.ArchiveConfig) (*Store, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "data"
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		dataDir:    dataDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			max_articles INTEGER,
			created_at TEXT NOT NULL,
			summary TEXT,
			positive INTEGER,
			negative INTEGER,
			neutral INTEGER,
			total INTEGER,
			top_headlines TEXT,
			digest TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS articles (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			label TEXT,
			score REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_run_id ON articles(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table over headlines with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='articles_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE articles_fts USING fts5(title, content=articles, content_rowid=rowid)`,
			`CREATE TRIGGER articles_ai AFTER INSERT ON articles BEGIN
				INSERT INTO articles_fts(rowid, title) VALUES (new.rowid, new.title);
			END`,
			`CREATE TRIGGER articles_ad AFTER DELETE ON articles BEGIN
				INSERT INTO articles_fts(articles_fts, rowid, title) VALUES('delete', old.rowid, old.title);
			END`,
			`CREATE TRIGGER articles_au AFTER UPDATE ON articles BEGIN
				INSERT INTO articles_fts(articles_fts, rowid, title) VALUES('delete', old.rowid, old.title);
				INSERT INTO articles_fts(rowid, title) VALUES (new.rowid, new.title);
			END`,
		}
		if _, err := s.db.Exec(ftsStatements[0]); err != nil {
			if strings.Contains(err.Error(), "no such module") {
				return nil
			}
			return fmt.Errorf("creating FTS table: %w", err)
		}
		for _, stmt := range ftsStatements[1:] {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	s.fts = true
	return nil
}

// Save stores run and its articles in one transaction. An empty ID is
// replaced by a new UUID and a zero CreatedAt by the current time. It
// returns the stored run ID.
func (s *Store) Save(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now()
	}

	headlines := run.Report.TopHeadlines
	if headlines == nil {
		headlines = []string{}
	}
	headlinesJSON, err := json.Marshal(headlines)
	if err != nil {
		return "", fmt.Errorf("encoding top headlines: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, query, max_articles, created_at, summary, positive, negative, neutral, total, top_headlines, digest)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Query, run.MaxArticles, run.CreatedAt.UTC().Format(time.RFC3339Nano),
		run.Report.Summary, run.Report.Positive, run.Report.Negative, run.Report.Neutral,
		run.Report.Total, string(headlinesJSON), run.Report.Digest,
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO articles (run_id, position, title, description, label, score)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, a := range run.Articles {
		if _, err := stmt.ExecContext(ctx,
			run.ID, i, a.Title, a.Description, string(a.Result.Label), a.Result.Score,
		); err != nil {
			return "", fmt.Errorf("inserting article %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	return run.ID, nil
}
