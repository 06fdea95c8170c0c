package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/lease-abstract-cli/internal/model"
	"github.com/sells-group/lease-abstract-cli/internal/render"
)

// Pool is the subset of pgxpool.Pool the store uses. Tests substitute a
// pgxmock pool through this interface.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_run":             `INSERT INTO runs (id, document, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
	"update_run_status":      `UPDATE runs SET status = $1, updated_at = $2 WHERE id = $3`,
	"complete_run":           `UPDATE runs SET result = $1, status = $2, updated_at = $3 WHERE id = $4`,
	"skip_run":               `UPDATE runs SET skipped = $1, status = $2, updated_at = $3 WHERE id = $4`,
	"fail_run":               `UPDATE runs SET error = $1, status = $2, updated_at = $3 WHERE id = $4`,
	"get_run":                `SELECT id, document, status, result, skipped, error, created_at, updated_at FROM runs WHERE id = $1`,
	"get_cached_render":      `SELECT pages FROM render_cache WHERE doc_hash = $1 AND expires_at > now() ORDER BY rendered_at DESC LIMIT 1`,
	"set_cached_render":      `INSERT INTO render_cache (id, doc_hash, pages, rendered_at, expires_at) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (doc_hash) DO UPDATE SET pages = $3, rendered_at = $4, expires_at = $5`,
	"delete_expired_renders": `DELETE FROM render_cache WHERE expires_at <= now()`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	document   TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'queued',
	result     JSONB,
	skipped    JSONB,
	error      TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS render_cache (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	doc_hash    TEXT NOT NULL UNIQUE,
	pages       JSONB NOT NULL,
	rendered_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_document ON runs(document);
CREATE INDEX IF NOT EXISTS idx_render_cache_doc_hash ON render_cache(doc_hash);
CREATE INDEX IF NOT EXISTS idx_render_cache_expires_at ON render_cache(expires_at);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, document string) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, document, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		id, document, string(model.RunStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.Run{
		ID:        id,
		Document:  document,
		Status:    model.RunStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run status %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, result *model.PipelineResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal result")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET result = $1, status = $2, updated_at = $3 WHERE id = $4`,
		resultJSON, string(model.RunStatusComplete), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) SkipRun(ctx context.Context, runID string, skipped *model.PipelineSkipped) error {
	skippedJSON, err := json.Marshal(skipped)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal skip")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET skipped = $1, status = $2, updated_at = $3 WHERE id = $4`,
		skippedJSON, string(model.RunStatusSkipped), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: skip run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, cause string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET error = $1, status = $2, updated_at = $3 WHERE id = $4`,
		cause, string(model.RunStatusFailed), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	var r model.Run
	var resultJSON, skippedJSON *[]byte
	var errText *string

	err := s.pool.QueryRow(ctx,
		`SELECT id, document, status, result, skipped, error, created_at, updated_at FROM runs WHERE id = $1`,
		runID,
	).Scan(&r.ID, &r.Document, &r.Status, &resultJSON, &skippedJSON, &errText, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}

	if err := unmarshalRunPayloads(&r, resultJSON, skippedJSON, errText); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, document, status, result, skipped, error, created_at, updated_at FROM runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.Document != "" {
		query += fmt.Sprintf(` AND document = $%d`, argIdx)
		args = append(args, filter.Document)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
		argIdx++
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		var resultJSON, skippedJSON *[]byte
		var errText *string

		if err := rows.Scan(&r.ID, &r.Document, &r.Status, &resultJSON, &skippedJSON, &errText, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		if err := unmarshalRunPayloads(&r, resultJSON, skippedJSON, errText); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) GetCachedRender(ctx context.Context, docHash string) ([]render.Page, error) {
	var pagesJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT pages FROM render_cache
		 WHERE doc_hash = $1 AND expires_at > now()
		 ORDER BY rendered_at DESC LIMIT 1`,
		docHash,
	).Scan(&pagesJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: get cached render")
	}

	var pages []render.Page
	if err := json.Unmarshal(pagesJSON, &pages); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal cached pages")
	}
	return pages, nil
}

func (s *PostgresStore) SetCachedRender(ctx context.Context, docHash string, pages []render.Page, ttl time.Duration) error {
	id := uuid.New().String()
	now := time.Now().UTC()
	expiresAt := now.Add(ttl)

	pagesJSON, err := json.Marshal(pages)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal pages")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO render_cache (id, doc_hash, pages, rendered_at, expires_at) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (doc_hash) DO UPDATE SET pages = $3, rendered_at = $4, expires_at = $5`,
		id, docHash, pagesJSON, now, expiresAt,
	)
	return eris.Wrap(err, "postgres: set cached render")
}

func (s *PostgresStore) DeleteExpiredRenders(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM render_cache WHERE expires_at <= now()`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete expired renders")
	}
	return int(tag.RowsAffected()), nil
}

func unmarshalRunPayloads(r *model.Run, resultJSON, skippedJSON *[]byte, errText *string) error {
	if resultJSON != nil {
		r.Result = &model.PipelineResult{}
		if err := json.Unmarshal(*resultJSON, r.Result); err != nil {
			return eris.Wrap(err, "postgres: unmarshal result")
		}
	}
	if skippedJSON != nil {
		r.Skipped = &model.PipelineSkipped{}
		if err := json.Unmarshal(*skippedJSON, r.Skipped); err != nil {
			return eris.Wrap(err, "postgres: unmarshal skip")
		}
	}
	if errText != nil {
		r.Error = *errText
	}
	return nil
}
