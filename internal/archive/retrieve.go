// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/newspulse/pkg/types"
)

const runColumns = `id, query, max_articles, created_at, summary,
	positive, negative, neutral, total, top_headlines, digest`

// List returns the most recent runs without their articles, newest first.
// A limit of zero uses the store default.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Get returns the run with the given ID including its articles in
// pipeline order. It returns ErrNotFound for unknown IDs.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Run{}, err
	}

	run.Articles, err = s.articles(ctx, id)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

func (s *Store) articles(ctx context.Context, runID string) ([]types.ScoredArticle, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title, description, label, score FROM articles WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	var out []types.ScoredArticle
	for rows.Next() {
		var (
			a     types.ScoredArticle
			desc  sql.NullString
			label sql.NullString
			score sql.NullFloat64
		)
		if err := rows.Scan(&a.Title, &desc, &label, &score); err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		a.Description = desc.String
		a.Result = types.SentimentResult{Label: types.SentimentLabel(label.String), Score: score.Float64}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Hit is a headline matched by Search, with the run it belongs to.
type Hit struct {
	RunID     string                `json:"run_id" yaml:"run_id"`
	Query     string                `json:"query" yaml:"query"`
	CreatedAt time.Time             `json:"created_at" yaml:"created_at"`
	Title     string                `json:"title" yaml:"title"`
	Result    types.SentimentResult `json:"result" yaml:"result"`
}

// Search runs an FTS5 query over archived headlines and returns matches
// ranked by relevance. Each whitespace-separated term is matched literally,
// so punctuation such as "AT&T" or "Fed's" is not parsed as query syntax.
// Without FTS5 it matches query as a substring. A limit of zero uses the
// store default.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query is empty")
	}
	if limit <= 0 {
		limit = s.maxResults
	}

	stmt := `SELECT a.run_id, r.query, r.created_at, a.title, a.label, a.score
		FROM articles_fts
		JOIN articles a ON a.rowid = articles_fts.rowid
		JOIN runs r ON r.id = a.run_id
		WHERE articles_fts MATCH ?
		ORDER BY articles_fts.rank
		LIMIT ?`
	if !s.fts {
		stmt = `SELECT a.run_id, r.query, r.created_at, a.title, a.label, a.score
		FROM articles a
		JOIN runs r ON r.id = a.run_id
		WHERE a.title LIKE '%' || ? || '%' ESCAPE '\'
		ORDER BY r.created_at DESC, a.position
		LIMIT ?`
	}

	arg := likeLiteral(query)
	if s.fts {
		arg = ftsQuery(query)
	}

	rows, err := s.db.QueryContext(ctx, stmt, arg, limit)
	if err != nil {
		return nil, fmt.Errorf("searching archive: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var (
			h         Hit
			createdAt string
			label     sql.NullString
			score     sql.NullFloat64
		)
		if err := rows.Scan(&h.RunID, &h.Query, &createdAt, &h.Title, &label, &score); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if h.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at of run %s: %w", h.RunID, err)
		}
		h.Result = types.SentimentResult{Label: types.SentimentLabel(label.String), Score: score.Float64}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// ftsQuery turns free text into an FTS5 expression of quoted terms.
// Quoted strings are tokenized like the indexed text, and adjacent terms
// are implicitly ANDed.
func ftsQuery(text string) string {
	terms := strings.Fields(text)
	for i, t := range terms {
		terms[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(terms, " ")
}

// likeLiteral escapes LIKE wildcards so text matches literally.
func likeLiteral(text string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(text)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run           Run
		createdAt     string
		maxArticles   sql.NullInt64
		summary       sql.NullString
		headlinesJSON sql.NullString
		digest        sql.NullString
		counts        [4]sql.NullInt64
	)
	err := row.Scan(
		&run.ID, &run.Query, &maxArticles, &createdAt, &summary,
		&counts[0], &counts[1], &counts[2], &counts[3], &headlinesJSON, &digest,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scanning run: %w", err)
	}

	run.MaxArticles = int(maxArticles.Int64)
	if run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return Run{}, fmt.Errorf("parsing created_at of run %s: %w", run.ID, err)
	}
	run.Report = types.Report{
		Summary:      summary.String,
		Positive:     int(counts[0].Int64),
		Negative:     int(counts[1].Int64),
		Neutral:      int(counts[2].Int64),
		Total:        int(counts[3].Int64),
		TopHeadlines: []string{},
		Digest:       digest.String,
	}
	if headlinesJSON.Valid && headlinesJSON.String != "" {
		if err := json.Unmarshal([]byte(headlinesJSON.String), &run.Report.TopHeadlines); err != nil {
			return Run{}, fmt.Errorf("decoding top headlines of run %s: %w", run.ID, err)
		}
		if run.Report.TopHeadlines == nil {
			run.Report.TopHeadlines = []string{}
		}
	}
	return run, nil
}
