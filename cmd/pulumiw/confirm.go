// File: cmd/pulumiw/confirm.go
// Brief: Confirmation prompt for destructive fleet runs.

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// confirmFleetDestroy guards `pulumiw <stack> all destroy`. Approved runs
// (--yes or PULUMIW_YES) proceed; non-interactive sessions without approval
// are refused rather than silently destroying a fleet.
func confirmFleetDestroy(in io.Reader, out io.Writer, approved bool, stack string, count int) error {
	if approved {
		return nil
	}
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		return fmt.Errorf("refusing to destroy %d service(s) without confirmation; rerun with --yes", count)
	}
	fmt.Fprintf(out, "Destroy %d service(s) in stack %q? [y/N] ", count, stack)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return nil
	default:
		return fmt.Errorf("aborted")
	}
}
