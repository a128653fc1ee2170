package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tillworks/till/pkg/version"
)

var versionFull bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	Run:   runVersion,
}

func init() {
	versionCmd.Flags().BoolVar(&versionFull, "full", false, "include build date, Go version and platform")
}

func runVersion(cmd *cobra.Command, args []string) {
	if versionFull {
		fmt.Println(version.Full())
		return
	}
	fmt.Println(version.Info())
}
