package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/harborview/insights-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool used by the store. Narrowing the
// surface keeps the store mockable with pgxmock.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// PoolConfig carries connection pool sizing.
type PoolConfig struct {
	MaxConns int32
	MinConns int32
}

// PostgresStore implements Store on top of a pgx connection pool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres connects to Postgres and returns a store backed by a pool.
func NewPostgres(ctx context.Context, databaseURL string, cfg *PoolConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse database url")
	}
	if cfg != nil {
		if cfg.MaxConns > 0 {
			poolCfg.MaxConns = cfg.MaxConns
		}
		if cfg.MinConns > 0 {
			poolCfg.MinConns = cfg.MinConns
		}
	}
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS projects (
	id               TEXT PRIMARY KEY,
	workspace_id     TEXT NOT NULL,
	name             TEXT NOT NULL,
	status           TEXT NOT NULL DEFAULT 'active',
	created_at       TIMESTAMPTZ NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL,
	start_date       TIMESTAMPTZ,
	target_end_date  TIMESTAMPTZ,
	estimated_budget DOUBLE PRECISION,
	actual_budget    DOUBLE PRECISION,
	health_score     INTEGER
);

CREATE TABLE IF NOT EXISTS tasks (
	id           TEXT PRIMARY KEY,
	workspace_id TEXT NOT NULL,
	project_id   TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'todo',
	priority     TEXT NOT NULL DEFAULT 'medium',
	type         TEXT NOT NULL DEFAULT '',
	assignee_id  TEXT,
	due_date     TIMESTAMPTZ,
	updated_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS bugs (
	id           TEXT PRIMARY KEY,
	workspace_id TEXT NOT NULL,
	project_id   TEXT NOT NULL,
	severity     TEXT NOT NULL DEFAULT 'LOW',
	status       TEXT NOT NULL DEFAULT 'OPEN',
	updated_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS members (
	id           TEXT PRIMARY KEY,
	workspace_id TEXT NOT NULL,
	user_id      TEXT NOT NULL,
	role         TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_projects_workspace ON projects(workspace_id);
CREATE INDEX IF NOT EXISTS idx_tasks_workspace ON tasks(workspace_id);
CREATE INDEX IF NOT EXISTS idx_bugs_workspace ON bugs(workspace_id);
CREATE INDEX IF NOT EXISTS idx_members_workspace ON members(workspace_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveSnapshot(ctx context.Context, snap model.Snapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, table := range []string{"projects", "tasks", "bugs", "members"} {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE workspace_id = $1`, snap.WorkspaceID); err != nil {
			return eris.Wrapf(err, "postgres: clear %s", table)
		}
	}

	for _, p := range snap.Projects {
		_, err := tx.Exec(ctx, `
			INSERT INTO projects (id, workspace_id, name, status, created_at, updated_at,
				start_date, target_end_date, estimated_budget, actual_budget, health_score)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			p.ID, snap.WorkspaceID, p.Name, string(p.Status), p.CreatedAt, p.UpdatedAt,
			p.StartDate, p.TargetEndDate, p.EstimatedBudget, p.ActualBudget, p.HealthScore,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert project %s", p.ID)
		}
	}

	for _, t := range snap.Tasks {
		_, err := tx.Exec(ctx, `
			INSERT INTO tasks (id, workspace_id, project_id, status, priority, type, assignee_id, due_date, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			t.ID, snap.WorkspaceID, t.ProjectID, string(t.Status), string(t.Priority), t.Type,
			t.AssigneeID, t.DueDate, t.UpdatedAt,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert task %s", t.ID)
		}
	}

	for _, b := range snap.Bugs {
		_, err := tx.Exec(ctx, `
			INSERT INTO bugs (id, workspace_id, project_id, severity, status, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			b.ID, snap.WorkspaceID, b.ProjectID, string(b.Severity), string(b.Status), b.UpdatedAt,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert bug %s", b.ID)
		}
	}

	for _, m := range snap.Members {
		_, err := tx.Exec(ctx, `
			INSERT INTO members (id, workspace_id, user_id, role) VALUES ($1, $2, $3, $4)`,
			m.ID, snap.WorkspaceID, m.UserID, m.Role,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert member %s", m.ID)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "postgres: commit snapshot")
	}
	return nil
}

func (s *PostgresStore) UpsertProject(ctx context.Context, p model.Project) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO projects (id, workspace_id, name, status, created_at, updated_at,
			start_date, target_end_date, estimated_budget, actual_budget, health_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			workspace_id = EXCLUDED.workspace_id,
			name = EXCLUDED.name,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at,
			start_date = EXCLUDED.start_date,
			target_end_date = EXCLUDED.target_end_date,
			estimated_budget = EXCLUDED.estimated_budget,
			actual_budget = EXCLUDED.actual_budget,
			health_score = EXCLUDED.health_score`,
		p.ID, p.WorkspaceID, p.Name, string(p.Status), p.CreatedAt, p.UpdatedAt,
		p.StartDate, p.TargetEndDate, p.EstimatedBudget, p.ActualBudget, p.HealthScore,
	)
	return eris.Wrapf(err, "postgres: upsert project %s", p.ID)
}

func (s *PostgresStore) UpsertTask(ctx context.Context, t model.Task) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tasks (id, workspace_id, project_id, status, priority, type, assignee_id, due_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			workspace_id = EXCLUDED.workspace_id,
			project_id = EXCLUDED.project_id,
			status = EXCLUDED.status,
			priority = EXCLUDED.priority,
			type = EXCLUDED.type,
			assignee_id = EXCLUDED.assignee_id,
			due_date = EXCLUDED.due_date,
			updated_at = EXCLUDED.updated_at`,
		t.ID, t.WorkspaceID, t.ProjectID, string(t.Status), string(t.Priority), t.Type,
		t.AssigneeID, t.DueDate, t.UpdatedAt,
	)
	return eris.Wrapf(err, "postgres: upsert task %s", t.ID)
}

func (s *PostgresStore) UpsertBug(ctx context.Context, b model.Bug) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO bugs (id, workspace_id, project_id, severity, status, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			workspace_id = EXCLUDED.workspace_id,
			project_id = EXCLUDED.project_id,
			severity = EXCLUDED.severity,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at`,
		b.ID, b.WorkspaceID, b.ProjectID, string(b.Severity), string(b.Status), b.UpdatedAt,
	)
	return eris.Wrapf(err, "postgres: upsert bug %s", b.ID)
}

func (s *PostgresStore) UpsertMember(ctx context.Context, m model.Member) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO members (id, workspace_id, user_id, role) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			workspace_id = EXCLUDED.workspace_id,
			user_id = EXCLUDED.user_id,
			role = EXCLUDED.role`,
		m.ID, m.WorkspaceID, m.UserID, m.Role,
	)
	return eris.Wrapf(err, "postgres: upsert member %s", m.ID)
}

// LoadSnapshot fetches the four collections concurrently. Each goroutine
// writes a distinct field, so no locking is needed.
func (s *PostgresStore) LoadSnapshot(ctx context.Context, workspaceID string) (*model.Snapshot, error) {
	snap := &model.Snapshot{WorkspaceID: workspaceID}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		projects, err := s.queryProjects(gctx, workspaceID)
		snap.Projects = projects
		return err
	})
	g.Go(func() error {
		tasks, err := s.queryTasks(gctx, workspaceID)
		snap.Tasks = tasks
		return err
	})
	g.Go(func() error {
		bugs, err := s.queryBugs(gctx, workspaceID)
		snap.Bugs = bugs
		return err
	})
	g.Go(func() error {
		members, err := s.queryMembers(gctx, workspaceID)
		snap.Members = members
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *PostgresStore) ListWorkspaces(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT workspace_id FROM projects ORDER BY workspace_id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list workspaces")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "postgres: scan workspace id")
		}
		ids = append(ids, id)
	}
	return ids, eris.Wrap(rows.Err(), "postgres: iterate workspaces")
}

func (s *PostgresStore) queryProjects(ctx context.Context, workspaceID string) ([]model.Project, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, workspace_id, name, status, created_at, updated_at,
			start_date, target_end_date, estimated_budget, actual_budget, health_score
		FROM projects WHERE workspace_id = $1 ORDER BY created_at, id`,
		workspaceID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query projects")
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var (
			p      model.Project
			status string
		)
		err := rows.Scan(&p.ID, &p.WorkspaceID, &p.Name, &status, &p.CreatedAt, &p.UpdatedAt,
			&p.StartDate, &p.TargetEndDate, &p.EstimatedBudget, &p.ActualBudget, &p.HealthScore)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan project")
		}
		p.Status = model.ProjectStatus(status)
		projects = append(projects, p)
	}
	return projects, eris.Wrap(rows.Err(), "postgres: iterate projects")
}

func (s *PostgresStore) queryTasks(ctx context.Context, workspaceID string) ([]model.Task, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, workspace_id, project_id, status, priority, type, assignee_id, due_date, updated_at
		FROM tasks WHERE workspace_id = $1 ORDER BY id`,
		workspaceID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query tasks")
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		var (
			t                model.Task
			status, priority string
		)
		err := rows.Scan(&t.ID, &t.WorkspaceID, &t.ProjectID, &status, &priority, &t.Type,
			&t.AssigneeID, &t.DueDate, &t.UpdatedAt)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan task")
		}
		t.Status = model.TaskStatus(status)
		t.Priority = model.TaskPriority(priority)
		tasks = append(tasks, t)
	}
	return tasks, eris.Wrap(rows.Err(), "postgres: iterate tasks")
}

func (s *PostgresStore) queryBugs(ctx context.Context, workspaceID string) ([]model.Bug, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, workspace_id, project_id, severity, status, updated_at
		FROM bugs WHERE workspace_id = $1 ORDER BY id`,
		workspaceID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query bugs")
	}
	defer rows.Close()

	var bugs []model.Bug
	for rows.Next() {
		var (
			b                model.Bug
			severity, status string
		)
		if err := rows.Scan(&b.ID, &b.WorkspaceID, &b.ProjectID, &severity, &status, &b.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan bug")
		}
		b.Severity = model.BugSeverity(severity)
		b.Status = model.BugStatus(status)
		bugs = append(bugs, b)
	}
	return bugs, eris.Wrap(rows.Err(), "postgres: iterate bugs")
}

func (s *PostgresStore) queryMembers(ctx context.Context, workspaceID string) ([]model.Member, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, workspace_id, user_id, role FROM members WHERE workspace_id = $1 ORDER BY id`,
		workspaceID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query members")
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		var m model.Member
		if err := rows.Scan(&m.ID, &m.WorkspaceID, &m.UserID, &m.Role); err != nil {
			return nil, eris.Wrap(err, "postgres: scan member")
		}
		members = append(members, m)
	}
	return members, eris.Wrap(rows.Err(), "postgres: iterate members")
}
