package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/twiced-technology-gmbh/dayplan/internal/clierr"
	"github.com/twiced-technology-gmbh/dayplan/internal/date"
	"github.com/twiced-technology-gmbh/dayplan/internal/planner"
	"github.com/twiced-technology-gmbh/dayplan/internal/task"
)

// PgStore implements Store over PostgreSQL. It is selected by
// storage.backend: postgres and shares nothing with the planner directory
// besides the config file that points at it.
type PgStore struct {
	ctx  context.Context
	pool *pgxpool.Pool
	loc  *time.Location
}

// OpenPg connects a pgx pool for the given DSN and verifies connectivity.
func OpenPg(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, clierr.Config("invalid storage.dsn: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, clierr.Newf(clierr.StoreError, "connecting to postgres: %v", err)
	}
	return pool, nil
}

// NewPgStore wraps a pgx pool in the Store interface. The context is
// captured once because Store methods take none; CLI invocations are
// short-lived. loc resolves day boundaries for Blocked; nil means UTC.
func NewPgStore(ctx context.Context, pool *pgxpool.Pool, loc *time.Location) *PgStore {
	if loc == nil {
		loc = time.UTC
	}
	return &PgStore{ctx: ctx, pool: pool, loc: loc}
}

// EnsureSchema creates the tables and indexes if they do not exist.
func (s *PgStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS tasks (
			id           TEXT PRIMARY KEY,
			title        TEXT NOT NULL,
			body         TEXT NOT NULL DEFAULT '',
			priority     TEXT NOT NULL DEFAULT 'medium',
			status       TEXT NOT NULL DEFAULT 'pending',
			duration     INTEGER NOT NULL DEFAULT 60,
			due          DATE,
			recurrence   TEXT NOT NULL DEFAULT '',
			tags         TEXT[] NOT NULL DEFAULT '{}',
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			completed_at TIMESTAMPTZ
		)`)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status)`)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS blocked_intervals (
			id       BIGSERIAL PRIMARY KEY,
			start_at TIMESTAMPTZ NOT NULL,
			end_at   TIMESTAMPTZ NOT NULL,
			reason   TEXT NOT NULL DEFAULT ''
		)`)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schedules (
			day        DATE PRIMARY KEY,
			doc        JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	return err
}

// Tasks returns all stored tasks in id order.
func (s *PgStore) Tasks() ([]*task.Task, error) {
	rows, err := s.pool.Query(s.ctx, `
		SELECT id, title, body, priority, status, duration, due, recurrence, tags, created_at, updated_at, completed_at
		FROM tasks ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}
	return tasks, nil
}

// SaveTask validates the task and upserts its row.
func (s *PgStore) SaveTask(t *task.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}

	var due *time.Time
	if t.Due != nil {
		due = &t.Due.Time
	}
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}

	_, err := s.pool.Exec(s.ctx, `
		INSERT INTO tasks (id, title, body, priority, status, duration, due, recurrence, tags, created_at, updated_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title, body = EXCLUDED.body, priority = EXCLUDED.priority,
			status = EXCLUDED.status, duration = EXCLUDED.duration, due = EXCLUDED.due,
			recurrence = EXCLUDED.recurrence, tags = EXCLUDED.tags,
			updated_at = EXCLUDED.updated_at, completed_at = EXCLUDED.completed_at`,
		t.ID, t.Title, t.Body, t.Priority, t.Status, t.Duration,
		due, string(t.Recurrence), tags, t.Created, t.Updated, t.Completed)
	if err != nil {
		return fmt.Errorf("save task %s: %w", t.ID, err)
	}
	return nil
}

// Blocked returns the blocked intervals overlapping the given day,
// sorted by start time.
func (s *PgStore) Blocked(day date.Date) ([]BlockedInterval, error) {
	dayStart := day.At(0, 0, s.loc)
	dayEnd := day.AddDays(1).At(0, 0, s.loc)

	rows, err := s.pool.Query(s.ctx, `
		SELECT start_at, end_at, reason FROM blocked_intervals
		WHERE start_at < $2 AND end_at > $1
		ORDER BY start_at ASC`, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("list blocked intervals: %w", err)
	}
	defer rows.Close()

	var out []BlockedInterval
	for rows.Next() {
		var iv BlockedInterval
		if err := rows.Scan(&iv.Start, &iv.End, &iv.Reason); err != nil {
			return nil, err
		}
		out = append(out, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}
	return out, nil
}

// AddBlocked validates and inserts a blocked interval.
func (s *PgStore) AddBlocked(iv BlockedInterval) error {
	if err := iv.Validate(); err != nil {
		return clierr.Newf(clierr.InvalidInterval, "%v", err)
	}
	_, err := s.pool.Exec(s.ctx, `
		INSERT INTO blocked_intervals (start_at, end_at, reason)
		VALUES ($1, $2, $3)`, iv.Start, iv.End, iv.Reason)
	if err != nil {
		return fmt.Errorf("add blocked interval: %w", err)
	}
	return nil
}

// SaveSchedule upserts the schedule document keyed by its date.
func (s *PgStore) SaveSchedule(sched *planner.Schedule) error {
	doc, err := json.Marshal(sched)
	if err != nil {
		return fmt.Errorf("marshaling schedule: %w", err)
	}
	_, err = s.pool.Exec(s.ctx, `
		INSERT INTO schedules (day, doc) VALUES ($1, $2::jsonb)
		ON CONFLICT (day) DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW()`,
		sched.Date.Time, string(doc))
	if err != nil {
		return fmt.Errorf("save schedule %s: %w", sched.Date, err)
	}
	return nil
}

// LoadSchedule reads the stored schedule for the given day.
func (s *PgStore) LoadSchedule(day date.Date) (*planner.Schedule, error) {
	var doc []byte
	err := s.pool.QueryRow(s.ctx, `SELECT doc FROM schedules WHERE day = $1`, day.Time).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, clierr.Newf(clierr.ScheduleNotFound, "no schedule stored for %s", day)
		}
		return nil, fmt.Errorf("load schedule %s: %w", day, err)
	}

	var sched planner.Schedule
	if err := json.Unmarshal(doc, &sched); err != nil {
		return nil, clierr.Newf(clierr.DataIntegrity, "parsing schedule for %s: %v", day, err).
			WithDetails(map[string]any{"date": day.String()})
	}
	return &sched, nil
}

// PruneSchedules deletes schedules dated strictly before the cutoff.
func (s *PgStore) PruneSchedules(before date.Date) (int, error) {
	tag, err := s.pool.Exec(s.ctx, `DELETE FROM schedules WHERE day < $1`, before.Time)
	if err != nil {
		return 0, fmt.Errorf("prune schedules: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanTask(row interface{ Scan(dest ...any) error }) (*task.Task, error) {
	var t task.Task
	var due *time.Time
	var recurrence string
	if err := row.Scan(&t.ID, &t.Title, &t.Body, &t.Priority, &t.Status, &t.Duration,
		&due, &recurrence, &t.Tags, &t.Created, &t.Updated, &t.Completed); err != nil {
		return nil, err
	}
	if due != nil {
		d := date.FromTime(*due)
		t.Due = &d
	}
	t.Recurrence = task.Recurrence(recurrence)
	return &t, nil
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*PgStore)(nil)
)
