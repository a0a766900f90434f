// File: internal/orchestrator/render.go
// Brief: Fleet summary table rendering.

package orchestrator

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
)

// PrintSummary renders the per-service result table after a fleet pass.
func PrintSummary(w io.Writer, results []Result) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No services processed.")
		return
	}
	succeeded := 0
	for _, r := range results {
		if !r.Failed() {
			succeeded++
		}
	}
	fmt.Fprintf(w, "\nSummary: %d succeeded, %d failed\n", succeeded, len(results)-succeeded)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SERVICE\tSTATUS\tDETAIL")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Service, statusText(r), r.Message)
	}
	_ = tw.Flush()
}

func statusText(r Result) string {
	if r.Failed() {
		mark := color.New(color.FgRed).Sprint("✗")
		if r.FailedIn != "" && r.FailedIn != StateExecute {
			return fmt.Sprintf("%s failed (%s)", mark, r.FailedIn)
		}
		return mark + " failed"
	}
	return color.New(color.FgGreen).Sprint("✓") + " ok"
}
