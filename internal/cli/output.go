package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tillworks/till/internal/sync"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

func rule() string {
	return strings.Repeat("─", 50)
}

// printReport renders a sync report: per-entity counts first, then the
// accumulated record errors, then the verdict.
func printReport(report *sync.Report) {
	for _, res := range report.Results {
		line := fmt.Sprintf("  %-12s total %-4d", res.Entity, res.Total)
		if res.Uploaded > 0 {
			line += fmt.Sprintf(" up %-4d", res.Uploaded)
		}
		if res.Downloaded > 0 {
			line += fmt.Sprintf(" down %-4d", res.Downloaded)
		}
		if res.Failed > 0 {
			line += errStyle.Render(fmt.Sprintf(" failed %d", res.Failed))
		}
		fmt.Println(line)
	}

	if len(report.Errors) > 0 {
		fmt.Println()
		for _, msg := range report.Errors {
			fmt.Println(errStyle.Render("  ! " + msg))
		}
	}

	fmt.Println(rule())
	switch {
	case report.Success:
		fmt.Println(okStyle.Render("Done."))
	case len(report.Errors) > 0:
		fmt.Println(warnStyle.Render(fmt.Sprintf("Partial: %d error(s).", len(report.Errors))))
	}
}
