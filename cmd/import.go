package main

import (
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harborview/insights-cli/internal/model"
	"github.com/harborview/insights-cli/internal/store"
)

var importFilePath string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a workspace snapshot into the store",
	Long: `Reads a workspace snapshot from a JSON or YAML file and stores it,
replacing any previously stored records for that workspace. Records
missing an ID are assigned one.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		snap, err := readSnapshotFile(importFilePath)
		if err != nil {
			return err
		}
		assignIDs(snap)

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return err
		}
		if err := st.SaveSnapshot(ctx, *snap); err != nil {
			return eris.Wrapf(err, "import: save workspace %s", snap.WorkspaceID)
		}

		zap.L().Info("import complete",
			zap.String("workspace", snap.WorkspaceID),
			zap.Int("projects", len(snap.Projects)),
			zap.Int("tasks", len(snap.Tasks)),
			zap.Int("bugs", len(snap.Bugs)),
			zap.Int("members", len(snap.Members)),
			zap.String("file", importFilePath),
		)
		return nil
	},
}

// assignIDs fills in missing record IDs and backfills workspace IDs from
// the snapshot header.
func assignIDs(snap *model.Snapshot) {
	for i := range snap.Projects {
		if snap.Projects[i].ID == "" {
			snap.Projects[i].ID = uuid.NewString()
		}
		if snap.Projects[i].WorkspaceID == "" {
			snap.Projects[i].WorkspaceID = snap.WorkspaceID
		}
	}
	for i := range snap.Tasks {
		if snap.Tasks[i].ID == "" {
			snap.Tasks[i].ID = uuid.NewString()
		}
		if snap.Tasks[i].WorkspaceID == "" {
			snap.Tasks[i].WorkspaceID = snap.WorkspaceID
		}
	}
	for i := range snap.Bugs {
		if snap.Bugs[i].ID == "" {
			snap.Bugs[i].ID = uuid.NewString()
		}
		if snap.Bugs[i].WorkspaceID == "" {
			snap.Bugs[i].WorkspaceID = snap.WorkspaceID
		}
	}
	for i := range snap.Members {
		if snap.Members[i].ID == "" {
			snap.Members[i].ID = uuid.NewString()
		}
		if snap.Members[i].WorkspaceID == "" {
			snap.Members[i].WorkspaceID = snap.WorkspaceID
		}
	}
}

func init() {
	importCmd.Flags().StringVar(&importFilePath, "file", "", "path to snapshot file (required)")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}
