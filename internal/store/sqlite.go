package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/harborview/insights-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS projects (
	id               TEXT PRIMARY KEY,
	workspace_id     TEXT NOT NULL,
	name             TEXT NOT NULL,
	status           TEXT NOT NULL DEFAULT 'active',
	created_at       DATETIME NOT NULL,
	updated_at       DATETIME NOT NULL,
	start_date       DATETIME,
	target_end_date  DATETIME,
	estimated_budget REAL,
	actual_budget    REAL,
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
	due_date     DATETIME,
	updated_at   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS bugs (
	id           TEXT PRIMARY KEY,
	workspace_id TEXT NOT NULL,
	project_id   TEXT NOT NULL,
	severity     TEXT NOT NULL DEFAULT 'LOW',
	status       TEXT NOT NULL DEFAULT 'OPEN',
	updated_at   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS members (
	id           TEXT PRIMARY KEY,
	workspace_id TEXT NOT NULL,
	user_id      TEXT NOT NULL,
	role         TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_projects_workspace ON projects(workspace_id);
CREATE INDEX IF NOT EXISTS idx_tasks_workspace ON tasks(workspace_id);
CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);
CREATE INDEX IF NOT EXISTS idx_bugs_workspace ON bugs(workspace_id);
CREATE INDEX IF NOT EXISTS idx_bugs_project ON bugs(project_id);
CREATE INDEX IF NOT EXISTS idx_members_workspace ON members(workspace_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap model.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, table := range []string{"projects", "tasks", "bugs", "members"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE workspace_id = ?`, snap.WorkspaceID); err != nil {
			return eris.Wrapf(err, "sqlite: clear %s", table)
		}
	}

	for _, p := range snap.Projects {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO projects (id, workspace_id, name, status, created_at, updated_at,
				start_date, target_end_date, estimated_budget, actual_budget, health_score)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, snap.WorkspaceID, p.Name, string(p.Status), p.CreatedAt.UTC(), p.UpdatedAt.UTC(),
			nullableTime(p.StartDate), nullableTime(p.TargetEndDate),
			p.EstimatedBudget, p.ActualBudget, p.HealthScore,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert project %s", p.ID)
		}
	}

	for _, t := range snap.Tasks {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (id, workspace_id, project_id, status, priority, type, assignee_id, due_date, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, snap.WorkspaceID, t.ProjectID, string(t.Status), string(t.Priority), t.Type,
			t.AssigneeID, nullableTime(t.DueDate), t.UpdatedAt.UTC(),
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert task %s", t.ID)
		}
	}

	for _, b := range snap.Bugs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO bugs (id, workspace_id, project_id, severity, status, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			b.ID, snap.WorkspaceID, b.ProjectID, string(b.Severity), string(b.Status), b.UpdatedAt.UTC(),
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert bug %s", b.ID)
		}
	}

	for _, m := range snap.Members {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO members (id, workspace_id, user_id, role) VALUES (?, ?, ?, ?)`,
			m.ID, snap.WorkspaceID, m.UserID, m.Role,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert member %s", m.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "sqlite: commit snapshot")
	}
	return nil
}

func (s *SQLiteStore) UpsertProject(ctx context.Context, p model.Project) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, workspace_id, name, status, created_at, updated_at,
			start_date, target_end_date, estimated_budget, actual_budget, health_score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			workspace_id = excluded.workspace_id,
			name = excluded.name,
			status = excluded.status,
			updated_at = excluded.updated_at,
			start_date = excluded.start_date,
			target_end_date = excluded.target_end_date,
			estimated_budget = excluded.estimated_budget,
			actual_budget = excluded.actual_budget,
			health_score = excluded.health_score`,
		p.ID, p.WorkspaceID, p.Name, string(p.Status), p.CreatedAt.UTC(), p.UpdatedAt.UTC(),
		nullableTime(p.StartDate), nullableTime(p.TargetEndDate),
		p.EstimatedBudget, p.ActualBudget, p.HealthScore,
	)
	return eris.Wrapf(err, "sqlite: upsert project %s", p.ID)
}

func (s *SQLiteStore) UpsertTask(ctx context.Context, t model.Task) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, workspace_id, project_id, status, priority, type, assignee_id, due_date, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			workspace_id = excluded.workspace_id,
			project_id = excluded.project_id,
			status = excluded.status,
			priority = excluded.priority,
			type = excluded.type,
			assignee_id = excluded.assignee_id,
			due_date = excluded.due_date,
			updated_at = excluded.updated_at`,
		t.ID, t.WorkspaceID, t.ProjectID, string(t.Status), string(t.Priority), t.Type,
		t.AssigneeID, nullableTime(t.DueDate), t.UpdatedAt.UTC(),
	)
	return eris.Wrapf(err, "sqlite: upsert task %s", t.ID)
}

func (s *SQLiteStore) UpsertBug(ctx context.Context, b model.Bug) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bugs (id, workspace_id, project_id, severity, status, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			workspace_id = excluded.workspace_id,
			project_id = excluded.project_id,
			severity = excluded.severity,
			status = excluded.status,
			updated_at = excluded.updated_at`,
		b.ID, b.WorkspaceID, b.ProjectID, string(b.Severity), string(b.Status), b.UpdatedAt.UTC(),
	)
	return eris.Wrapf(err, "sqlite: upsert bug %s", b.ID)
}

func (s *SQLiteStore) UpsertMember(ctx context.Context, m model.Member) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO members (id, workspace_id, user_id, role) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			workspace_id = excluded.workspace_id,
			user_id = excluded.user_id,
			role = excluded.role`,
		m.ID, m.WorkspaceID, m.UserID, m.Role,
	)
	return eris.Wrapf(err, "sqlite: upsert member %s", m.ID)
}

func (s *SQLiteStore) LoadSnapshot(ctx context.Context, workspaceID string) (*model.Snapshot, error) {
	snap := &model.Snapshot{WorkspaceID: workspaceID}

	projects, err := s.queryProjects(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	snap.Projects = projects

	tasks, err := s.queryTasks(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	snap.Tasks = tasks

	bugs, err := s.queryBugs(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	snap.Bugs = bugs

	members, err := s.queryMembers(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	snap.Members = members

	return snap, nil
}

func (s *SQLiteStore) ListWorkspaces(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT workspace_id FROM projects ORDER BY workspace_id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list workspaces")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan workspace id")
		}
		ids = append(ids, id)
	}
	return ids, eris.Wrap(rows.Err(), "sqlite: iterate workspaces")
}

func (s *SQLiteStore) queryProjects(ctx context.Context, workspaceID string) ([]model.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, workspace_id, name, status, created_at, updated_at,
			start_date, target_end_date, estimated_budget, actual_budget, health_score
		FROM projects WHERE workspace_id = ? ORDER BY created_at, id`,
		workspaceID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query projects")
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var (
			p          model.Project
			status     string
			start, end sql.NullTime
			est, act   sql.NullFloat64
			health     sql.NullInt64
		)
		err := rows.Scan(&p.ID, &p.WorkspaceID, &p.Name, &status, &p.CreatedAt, &p.UpdatedAt,
			&start, &end, &est, &act, &health)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan project")
		}
		p.Status = model.ProjectStatus(status)
		p.StartDate = timeOrNil(start)
		p.TargetEndDate = timeOrNil(end)
		if est.Valid {
			p.EstimatedBudget = &est.Float64
		}
		if act.Valid {
			p.ActualBudget = &act.Float64
		}
		if health.Valid {
			h := int(health.Int64)
			p.HealthScore = &h
		}
		projects = append(projects, p)
	}
	return projects, eris.Wrap(rows.Err(), "sqlite: iterate projects")
}

func (s *SQLiteStore) queryTasks(ctx context.Context, workspaceID string) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, workspace_id, project_id, status, priority, type, assignee_id, due_date, updated_at
		FROM tasks WHERE workspace_id = ? ORDER BY id`,
		workspaceID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query tasks")
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		var (
			t                model.Task
			status, priority string
			assignee         sql.NullString
			due              sql.NullTime
		)
		err := rows.Scan(&t.ID, &t.WorkspaceID, &t.ProjectID, &status, &priority, &t.Type,
			&assignee, &due, &t.UpdatedAt)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan task")
		}
		t.Status = model.TaskStatus(status)
		t.Priority = model.TaskPriority(priority)
		if assignee.Valid {
			t.AssigneeID = &assignee.String
		}
		t.DueDate = timeOrNil(due)
		tasks = append(tasks, t)
	}
	return tasks, eris.Wrap(rows.Err(), "sqlite: iterate tasks")
}

func (s *SQLiteStore) queryBugs(ctx context.Context, workspaceID string) ([]model.Bug, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, workspace_id, project_id, severity, status, updated_at
		FROM bugs WHERE workspace_id = ? ORDER BY id`,
		workspaceID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query bugs")
	}
	defer rows.Close()

	var bugs []model.Bug
	for rows.Next() {
		var (
			b                model.Bug
			severity, status string
		)
		if err := rows.Scan(&b.ID, &b.WorkspaceID, &b.ProjectID, &severity, &status, &b.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan bug")
		}
		b.Severity = model.BugSeverity(severity)
		b.Status = model.BugStatus(status)
		bugs = append(bugs, b)
	}
	return bugs, eris.Wrap(rows.Err(), "sqlite: iterate bugs")
}

func (s *SQLiteStore) queryMembers(ctx context.Context, workspaceID string) ([]model.Member, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, workspace_id, user_id, role FROM members WHERE workspace_id = ? ORDER BY id`,
		workspaceID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query members")
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		var m model.Member
		if err := rows.Scan(&m.ID, &m.WorkspaceID, &m.UserID, &m.Role); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan member")
		}
		members = append(members, m)
	}
	return members, eris.Wrap(rows.Err(), "sqlite: iterate members")
}

// nullableTime converts an optional time to a driver-friendly value.
func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func timeOrNil(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	utc := t.Time.UTC()
	return &utc
}
