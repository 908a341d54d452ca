package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/domain/repository"
)

const DefaultRunsTable = "runs"

const runColumns = "id, company, ticker, provider, artifact_path, news, candles, analysis, created_at"

// SQLRunStore implements RunStore over database/sql for every Dialect.
type SQLRunStore struct {
	db      *sql.DB
	dialect Dialect
	table   string
}

var _ repository.RunStore = (*SQLRunStore)(nil)

// NewSQLRunStore creates a run store on db.
func NewSQLRunStore(db *sql.DB, dialect Dialect, table string) *SQLRunStore {
	if table == "" {
		table = DefaultRunsTable
	}
	return &SQLRunStore{db: db, dialect: dialect, table: table}
}

func (s *SQLRunStore) Init(ctx context.Context) error {
	for _, stmt := range s.dialect.Schema(s.table) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init %s schema: %w", s.dialect.Name, err)
		}
	}
	return nil
}

func (s *SQLRunStore) FindFresh(ctx context.Context, company string, since time.Time) (*models.Run, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE company = %s AND created_at > %s ORDER BY created_at DESC LIMIT 1",
		runColumns, s.table, s.dialect.Placeholder(1), s.dialect.Placeholder(2))
	return s.queryOne(ctx, q, company, s.dialect.TimeArg(since))
}

func (s *SQLRunStore) Latest(ctx context.Context, company string) (*models.Run, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE company = %s ORDER BY created_at DESC LIMIT 1",
		runColumns, s.table, s.dialect.Placeholder(1))
	return s.queryOne(ctx, q, company)
}

func (s *SQLRunStore) Save(ctx context.Context, run *models.Run) error {
	news, err := json.Marshal(nonNilNews(run.News))
	if err != nil {
		return &models.PersistenceError{Op: "encode news", Err: err}
	}
	candles, err := json.Marshal(nonNilCandles(run.Candles))
	if err != nil {
		return &models.PersistenceError{Op: "encode candles", Err: err}
	}
	analysis, err := json.Marshal(run.Analysis)
	if err != nil {
		return &models.PersistenceError{Op: "encode analysis", Err: err}
	}

	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", s.table, runColumns, s.dialect.placeholders(1, 9))
	_, err = s.db.ExecContext(ctx, q,
		run.ID,
		run.Company,
		run.Ticker,
		run.Provider,
		run.ArtifactPath,
		string(news),
		string(candles),
		string(analysis),
		s.dialect.TimeArg(run.CreatedAt),
	)
	if err != nil {
		return &models.PersistenceError{Op: "insert run", Err: err}
	}
	return nil
}

func (s *SQLRunStore) ListOlderThan(ctx context.Context, company string, before time.Time) ([]models.Run, error) {
	q := fmt.Sprintf("SELECT id, company, artifact_path, created_at FROM %s WHERE created_at < %s",
		s.table, s.dialect.Placeholder(1))
	args := []interface{}{s.dialect.TimeArg(before)}
	if company != "" {
		q += " AND company = " + s.dialect.Placeholder(2)
		args = append(args, company)
	}
	q += " ORDER BY created_at"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []models.Run
	for rows.Next() {
		var (
			r       models.Run
			created interface{}
		)
		if err := rows.Scan(&r.ID, &r.Company, &r.ArtifactPath, &created); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if r.CreatedAt, err = scanTime(created); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLRunStore) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	q := fmt.Sprintf("%s WHERE id IN (%s)", s.dialect.DeletePrefix(s.table), s.dialect.placeholders(1, len(ids)))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("delete runs %s: %w", strings.Join(ids, ","), err)
	}
	return nil
}

func (s *SQLRunStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLRunStore) Close() error {
	return s.db.Close()
}

func (s *SQLRunStore) queryOne(ctx context.Context, q string, args ...interface{}) (*models.Run, error) {
	var (
		r                       models.Run
		news, candles, analysis []byte
		created                 interface{}
	)
	err := s.db.QueryRowContext(ctx, q, args...).Scan(
		&r.ID, &r.Company, &r.Ticker, &r.Provider, &r.ArtifactPath,
		&news, &candles, &analysis, &created,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}

	if r.CreatedAt, err = scanTime(created); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(news, &r.News); err != nil {
		return nil, fmt.Errorf("decode news: %w", err)
	}
	if err := json.Unmarshal(candles, &r.Candles); err != nil {
		return nil, fmt.Errorf("decode candles: %w", err)
	}
	if err := json.Unmarshal(analysis, &r.Analysis); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	return &r, nil
}

func nonNilNews(n []models.NewsItem) []models.NewsItem {
	if n == nil {
		return []models.NewsItem{}
	}
	return n
}

func nonNilCandles(c models.CandleSeriesSet) models.CandleSeriesSet {
	if c == nil {
		return models.CandleSeriesSet{}
	}
	return c
}
