package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tillworks/till/internal/sync"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a full sync cycle against the backend",
	Long: `Run a full sync cycle: upload local changes, download remote changes,
then repair foreign keys that went stale while parents were unsynced.

Upload always runs before download, so local edits pending at the start of
the cycle reach the backend before the timestamp comparison on the way back.

Examples:
  till sync
  till upload
  till download`,
	Args: cobra.NoArgs,
	RunE: runFullSync,
}

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Push local changes to the backend",
	Args:  cobra.NoArgs,
	RunE:  runUpload,
}

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Pull remote changes from the backend",
	Long: `Pull remote changes from the backend.

Note: outside a full sync cycle, records with pending local edits keep their
local state even when the remote copy is newer. Run 'till sync' for the
complete reconciliation.`,
	Args: cobra.NoArgs,
	RunE: runDownload,
}

var syncResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear sync cursors so the next cycle reconciles everything",
	Long: `Clear the last full sync timestamp and the per-entity download cursors.

Record data and backend ids are untouched. Use this after restoring the
database from a backup, when the cursors no longer describe what is local.`,
	Args: cobra.NoArgs,
	RunE: runSyncReset,
}

func init() {
	syncCmd.AddCommand(syncResetCmd)
}

func runSyncReset(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := sync.ResetCursors(a.database); err != nil {
		return fmt.Errorf("reset cursors: %w", err)
	}

	fmt.Println(okStyle.Render("Sync cursors cleared."))
	return nil
}

func runFullSync(cmd *cobra.Command, args []string) error {
	return runSyncOp(cmd, "FULL SYNC", func(o *sync.Orchestrator) (*sync.Report, error) {
		return o.FullSync(cmd.Context())
	})
}

func runUpload(cmd *cobra.Command, args []string) error {
	return runSyncOp(cmd, "UPLOAD", func(o *sync.Orchestrator) (*sync.Report, error) {
		return o.UploadAll(cmd.Context())
	})
}

func runDownload(cmd *cobra.Command, args []string) error {
	return runSyncOp(cmd, "DOWNLOAD", func(o *sync.Orchestrator) (*sync.Report, error) {
		return o.DownloadAll(cmd.Context())
	})
}

func runSyncOp(cmd *cobra.Command, label string, op func(*sync.Orchestrator) (*sync.Report, error)) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	orch, err := a.orchestrator()
	if err != nil {
		return err
	}

	fmt.Println(headerStyle.Render(label))
	fmt.Println(rule())

	report, err := op(orch)
	if err != nil {
		if errors.Is(err, sync.ErrSyncInProgress) {
			return fmt.Errorf("another sync is already running")
		}
		return err
	}

	printReport(report)
	return nil
}
