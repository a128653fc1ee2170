package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/tillworks/till/internal/sync"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync state and local record counts",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	// The snapshot reads the local database only, so status keeps working
	// when no backend is configured yet.
	var st *sync.Status
	if a.cfg.Remote.BaseURL == "" {
		st, err = sync.Snapshot(a.database)
	} else {
		var orch *sync.Orchestrator
		orch, err = a.orchestrator()
		if err != nil {
			return err
		}
		st, err = orch.Status()
	}
	if err != nil {
		return fmt.Errorf("collect status: %w", err)
	}

	fmt.Println(headerStyle.Render("TILL STATUS"))
	fmt.Println(rule())
	if a.cfg.Remote.BaseURL == "" {
		fmt.Println(dimStyle.Render("No backend configured; showing local state only."))
	}

	if st.LastFullSync != nil {
		fmt.Printf("Last full sync: %s\n", st.LastFullSync.Local().Format(time.RFC1123))
	} else {
		fmt.Println(warnStyle.Render("Never fully synced."))
	}
	if st.IsUploading || st.IsDownloading {
		fmt.Println(warnStyle.Render("Sync in progress."))
	}

	fmt.Println()
	names := make([]string, 0, len(st.Counts))
	for name := range st.Counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-18s %d\n", name, st.Counts[name])
	}

	fmt.Println(rule())
	if st.Unsynced > 0 {
		fmt.Println(warnStyle.Render(fmt.Sprintf("%d record(s) waiting to upload.", st.Unsynced)))
	} else {
		fmt.Println(okStyle.Render("Everything is synced."))
	}

	return nil
}
