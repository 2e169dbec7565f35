package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborview/insights-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func testSnapshot() model.Snapshot {
	created := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	updated := time.Date(2026, 3, 1, 14, 30, 0, 0, time.UTC)
	start := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	due := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	est := 120000.0
	act := 95000.0
	health := 82
	assignee := "user-1"

	return model.Snapshot{
		WorkspaceID: "ws-1",
		Projects: []model.Project{
			{
				ID: "p-1", WorkspaceID: "ws-1", Name: "Platform Rebuild",
				Status: model.ProjectStatusActive, CreatedAt: created, UpdatedAt: updated,
				StartDate: &start, TargetEndDate: &end,
				EstimatedBudget: &est, ActualBudget: &act, HealthScore: &health,
			},
			{
				ID: "p-2", WorkspaceID: "ws-1", Name: "Mobile App",
				Status: model.ProjectStatusCompleted, CreatedAt: created.Add(time.Hour), UpdatedAt: updated,
			},
		},
		Tasks: []model.Task{
			{
				ID: "t-1", WorkspaceID: "ws-1", ProjectID: "p-1",
				Status: model.TaskStatusDone, Priority: model.TaskPriorityHigh, Type: "feature",
				AssigneeID: &assignee, DueDate: &due, UpdatedAt: updated,
			},
			{
				ID: "t-2", WorkspaceID: "ws-1", ProjectID: "p-1",
				Status: model.TaskStatusTodo, Priority: model.TaskPriorityLow,
				UpdatedAt: updated,
			},
		},
		Bugs: []model.Bug{
			{
				ID: "b-1", WorkspaceID: "ws-1", ProjectID: "p-1",
				Severity: model.BugSeverityCritical, Status: model.BugStatusOpen, UpdatedAt: updated,
			},
		},
		Members: []model.Member{
			{ID: "m-1", WorkspaceID: "ws-1", UserID: "user-1", Role: "admin"},
			{ID: "m-2", WorkspaceID: "ws-1", UserID: "user-2", Role: "member"},
		},
	}
}

func TestSQLite_SaveAndLoadSnapshot(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	snap := testSnapshot()

	require.NoError(t, st.SaveSnapshot(ctx, snap))

	got, err := st.LoadSnapshot(ctx, "ws-1")
	require.NoError(t, err)
	require.Len(t, got.Projects, 2)
	require.Len(t, got.Tasks, 2)
	require.Len(t, got.Bugs, 1)
	require.Len(t, got.Members, 2)

	p := got.Projects[0]
	assert.Equal(t, "p-1", p.ID)
	assert.Equal(t, "Platform Rebuild", p.Name)
	assert.Equal(t, model.ProjectStatusActive, p.Status)
	assert.True(t, p.CreatedAt.Equal(snap.Projects[0].CreatedAt))
	assert.True(t, p.UpdatedAt.Equal(snap.Projects[0].UpdatedAt))
	require.NotNil(t, p.StartDate)
	assert.True(t, p.StartDate.Equal(*snap.Projects[0].StartDate))
	require.NotNil(t, p.TargetEndDate)
	assert.True(t, p.TargetEndDate.Equal(*snap.Projects[0].TargetEndDate))
	require.NotNil(t, p.EstimatedBudget)
	assert.Equal(t, 120000.0, *p.EstimatedBudget)
	require.NotNil(t, p.ActualBudget)
	assert.Equal(t, 95000.0, *p.ActualBudget)
	require.NotNil(t, p.HealthScore)
	assert.Equal(t, 82, *p.HealthScore)

	// Optional fields absent on the second project stay nil.
	p2 := got.Projects[1]
	assert.Nil(t, p2.StartDate)
	assert.Nil(t, p2.TargetEndDate)
	assert.Nil(t, p2.EstimatedBudget)
	assert.Nil(t, p2.ActualBudget)
	assert.Nil(t, p2.HealthScore)

	tk := got.Tasks[0]
	assert.Equal(t, model.TaskStatusDone, tk.Status)
	assert.Equal(t, model.TaskPriorityHigh, tk.Priority)
	assert.Equal(t, "feature", tk.Type)
	require.NotNil(t, tk.AssigneeID)
	assert.Equal(t, "user-1", *tk.AssigneeID)
	require.NotNil(t, tk.DueDate)
	assert.True(t, tk.DueDate.Equal(*snap.Tasks[0].DueDate))
	assert.Nil(t, got.Tasks[1].AssigneeID)
	assert.Nil(t, got.Tasks[1].DueDate)

	assert.Equal(t, model.BugSeverityCritical, got.Bugs[0].Severity)
	assert.Equal(t, model.BugStatusOpen, got.Bugs[0].Status)
	assert.Equal(t, "user-2", got.Members[1].UserID)
}

func TestSQLite_SaveSnapshot_ReplacesExisting(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	snap := testSnapshot()

	require.NoError(t, st.SaveSnapshot(ctx, snap))

	// Re-import a shrunken snapshot; old rows for the workspace must go.
	snap.Projects = snap.Projects[:1]
	snap.Tasks = nil
	snap.Bugs = nil
	snap.Members = snap.Members[:1]
	require.NoError(t, st.SaveSnapshot(ctx, snap))

	got, err := st.LoadSnapshot(ctx, "ws-1")
	require.NoError(t, err)
	assert.Len(t, got.Projects, 1)
	assert.Empty(t, got.Tasks)
	assert.Empty(t, got.Bugs)
	assert.Len(t, got.Members, 1)
}

func TestSQLite_SaveSnapshot_IsolatedByWorkspace(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	first := testSnapshot()
	require.NoError(t, st.SaveSnapshot(ctx, first))

	second := testSnapshot()
	second.WorkspaceID = "ws-2"
	for i := range second.Projects {
		second.Projects[i].ID = "ws2-" + second.Projects[i].ID
	}
	for i := range second.Tasks {
		second.Tasks[i].ID = "ws2-" + second.Tasks[i].ID
	}
	for i := range second.Bugs {
		second.Bugs[i].ID = "ws2-" + second.Bugs[i].ID
	}
	for i := range second.Members {
		second.Members[i].ID = "ws2-" + second.Members[i].ID
	}
	require.NoError(t, st.SaveSnapshot(ctx, second))

	got, err := st.LoadSnapshot(ctx, "ws-1")
	require.NoError(t, err)
	assert.Len(t, got.Projects, 2)

	workspaces, err := st.ListWorkspaces(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ws-1", "ws-2"}, workspaces)
}

func TestSQLite_LoadSnapshot_EmptyWorkspace(t *testing.T) {
	st := newTestSQLiteStore(t)

	got, err := st.LoadSnapshot(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Equal(t, "unknown", got.WorkspaceID)
	assert.Empty(t, got.Projects)
	assert.Empty(t, got.Tasks)
	assert.Empty(t, got.Bugs)
	assert.Empty(t, got.Members)
}

func TestSQLite_UpsertProject_InsertThenUpdate(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	snap := testSnapshot()
	p := snap.Projects[0]

	require.NoError(t, st.UpsertProject(ctx, p))

	p.Name = "Platform Rebuild v2"
	p.Status = model.ProjectStatusOnHold
	require.NoError(t, st.UpsertProject(ctx, p))

	got, err := st.LoadSnapshot(ctx, "ws-1")
	require.NoError(t, err)
	require.Len(t, got.Projects, 1)
	assert.Equal(t, "Platform Rebuild v2", got.Projects[0].Name)
	assert.Equal(t, model.ProjectStatusOnHold, got.Projects[0].Status)
}

func TestSQLite_UpsertTaskBugMember(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	snap := testSnapshot()

	task := snap.Tasks[0]
	require.NoError(t, st.UpsertTask(ctx, task))
	task.Status = model.TaskStatusReview
	require.NoError(t, st.UpsertTask(ctx, task))

	bug := snap.Bugs[0]
	require.NoError(t, st.UpsertBug(ctx, bug))
	bug.Status = model.BugStatusClosed
	require.NoError(t, st.UpsertBug(ctx, bug))

	member := snap.Members[0]
	require.NoError(t, st.UpsertMember(ctx, member))
	member.Role = "viewer"
	require.NoError(t, st.UpsertMember(ctx, member))

	got, err := st.LoadSnapshot(ctx, "ws-1")
	require.NoError(t, err)
	require.Len(t, got.Tasks, 1)
	assert.Equal(t, model.TaskStatusReview, got.Tasks[0].Status)
	require.Len(t, got.Bugs, 1)
	assert.Equal(t, model.BugStatusClosed, got.Bugs[0].Status)
	require.Len(t, got.Members, 1)
	assert.Equal(t, "viewer", got.Members[0].Role)
}

func TestSQLite_ListWorkspaces_Empty(t *testing.T) {
	st := newTestSQLiteStore(t)

	workspaces, err := st.ListWorkspaces(context.Background())
	require.NoError(t, err)
	assert.Empty(t, workspaces)
}
