package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/harborview/insights-cli/internal/analytics"
	"github.com/harborview/insights-cli/internal/model"
	"github.com/harborview/insights-cli/internal/store"
)

var (
	reportWorkspace string
	reportInput     string
	reportOutput    string
)

var reportCmd = &cobra.Command{
	Use:   "report [executive|stakeholder]",
	Short: "Generate a dashboard report for a workspace",
	Long: `Generates a dashboard report from a stored workspace snapshot.

Variants:
  executive    portfolio overview, health factors, risk assessment,
               strategic actions, and project timelines
  stakeholder  budget tracking, deliverables, ROI, and business impact

With --input, the snapshot is read from a JSON or YAML file instead of
the database.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"executive", "stakeholder"},
	RunE:      runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	variant := args[0]
	if variant != "executive" && variant != "stakeholder" {
		return eris.Errorf("report: unknown variant %q (want executive or stakeholder)", variant)
	}

	if err := analytics.ValidateConfig(cfg.Analytics); err != nil {
		return err
	}

	snap, err := resolveSnapshot(ctx)
	if err != nil {
		return err
	}

	engine := analytics.New(cfg.Analytics)
	now := time.Now().UTC()

	var report any
	switch variant {
	case "executive":
		report = engine.Executive(snap, now)
	case "stakeholder":
		report = engine.Stakeholder(snap, now)
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return eris.Wrap(err, "report: marshal")
	}

	if reportOutput != "" {
		if err := os.WriteFile(reportOutput, append(out, '\n'), 0o644); err != nil {
			return eris.Wrap(err, "report: write output")
		}
		zap.L().Info("report written",
			zap.String("variant", variant),
			zap.String("workspace", snap.WorkspaceID),
			zap.String("path", reportOutput),
		)
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

// resolveSnapshot reads the snapshot from --input when given, otherwise
// loads it from the configured store.
func resolveSnapshot(ctx context.Context) (*model.Snapshot, error) {
	if reportInput != "" {
		return readSnapshotFile(reportInput)
	}

	if reportWorkspace == "" {
		return nil, eris.New("report: --workspace is required without --input")
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	defer st.Close() //nolint:errcheck

	return st.LoadSnapshot(ctx, reportWorkspace)
}

// readSnapshotFile parses a snapshot from a JSON or YAML file. YAML is
// tried when JSON decoding fails, so either extension works.
func readSnapshotFile(path string) (*model.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "snapshot: read file")
	}

	var snap model.Snapshot
	if jsonErr := json.Unmarshal(data, &snap); jsonErr != nil {
		if yamlErr := yaml.Unmarshal(data, &snap); yamlErr != nil {
			return nil, eris.Wrapf(jsonErr, "snapshot: parse %s", path)
		}
	}
	if snap.WorkspaceID == "" {
		return nil, eris.Errorf("snapshot: %s has no workspace_id", path)
	}
	return &snap, nil
}

func init() {
	reportCmd.Flags().StringVar(&reportWorkspace, "workspace", "", "workspace ID to report on")
	reportCmd.Flags().StringVar(&reportInput, "input", "", "read snapshot from a JSON or YAML file instead of the store")
	reportCmd.Flags().StringVar(&reportOutput, "output", "", "write the report to a file instead of stdout")
	rootCmd.AddCommand(reportCmd)
}
