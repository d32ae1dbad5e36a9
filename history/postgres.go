package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/emperance/statify/stats"
)

var _ Store = (*PostgresStore)(nil)

const createTable = `
CREATE TABLE IF NOT EXISTS statistics_results (
	id UUID PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL,
	count INTEGER NOT NULL,
	sum DOUBLE PRECISION NOT NULL,
	min DOUBLE PRECISION NOT NULL,
	max DOUBLE PRECISION NOT NULL,
	mean DOUBLE PRECISION NOT NULL,
	median DOUBLE PRECISION NOT NULL,
	modes JSONB,
	population_variance DOUBLE PRECISION NOT NULL,
	sample_variance DOUBLE PRECISION,
	q1 DOUBLE PRECISION NOT NULL,
	q2 DOUBLE PRECISION NOT NULL,
	q3 DOUBLE PRECISION NOT NULL,
	class_width DOUBLE PRECISION NOT NULL,
	classes INTEGER NOT NULL,
	sample JSONB NOT NULL
)`

// PostgresStore persists history entries to a PostgreSQL table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects with the given DSN and ensures the results
// table exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		return nil, fmt.Errorf("failed to create results table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Save(ctx context.Context, res *stats.Result) (Entry, error) {
	entry := Entry{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Result:    res,
	}

	modes, err := json.Marshal(res.Modes)
	if err != nil {
		return Entry{}, err
	}
	sample, err := json.Marshal(res.Sample)
	if err != nil {
		return Entry{}, err
	}

	const q = `
INSERT INTO statistics_results
  (id, created_at, count, sum, min, max, mean, median, modes,
   population_variance, sample_variance, q1, q2, q3, class_width, classes, sample)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
`
	// pq encodes []byte as bytea, which jsonb columns reject
	_, err = s.db.ExecContext(ctx, q,
		entry.ID, entry.CreatedAt,
		res.Count, res.Sum, res.Min, res.Max, res.Mean, res.Median, string(modes),
		res.PopulationVariance, nullable(res.SampleVariance),
		res.Q1, res.Q2, res.Q3, res.ClassWidth, res.Classes, string(sample),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to insert result: %w", err)
	}

	return entry, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Entry, error) {
	const q = selectColumns + ` WHERE id = $1`

	entry, err := scanEntry(s.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to query result: %w", err)
	}
	return entry, nil
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]Entry, error) {
	q := selectColumns + ` ORDER BY created_at DESC`
	args := []interface{}{}
	if limit > 0 {
		q += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

const selectColumns = `
SELECT id, created_at, count, sum, min, max, mean, median, modes,
       population_variance, sample_variance, q1, q2, q3, class_width, classes, sample
FROM statistics_results`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var (
		entry     Entry
		res       stats.Result
		modes     []byte
		sample    []byte
		sampleVar sql.NullFloat64
	)

	err := row.Scan(
		&entry.ID, &entry.CreatedAt,
		&res.Count, &res.Sum, &res.Min, &res.Max, &res.Mean, &res.Median, &modes,
		&res.PopulationVariance, &sampleVar,
		&res.Q1, &res.Q2, &res.Q3, &res.ClassWidth, &res.Classes, &sample,
	)
	if err != nil {
		return Entry{}, err
	}

	if len(modes) > 0 {
		if err := json.Unmarshal(modes, &res.Modes); err != nil {
			return Entry{}, err
		}
	}
	if err := json.Unmarshal(sample, &res.Sample); err != nil {
		return Entry{}, err
	}
	if sampleVar.Valid {
		res.SampleVariance = &sampleVar.Float64
		if sd, ok := stats.SampleStdDev(res.Sample); ok {
			res.SampleStdDev = &sd
		}
	}

	// derived fields are not stored
	res.Range = res.Max - res.Min
	res.IQR = res.Q3 - res.Q1
	if sd, ok := stats.PopulationStdDev(res.Sample); ok {
		res.PopulationStdDev = sd
	}

	entry.Result = &res
	return entry, nil
}

func nullable(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
