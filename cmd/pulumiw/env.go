// File: cmd/pulumiw/env.go
// Brief: `pulumiw env` environment variable reference command.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/example/pulumiw/internal/envcatalog"
	"github.com/spf13/cobra"
)

type envRow struct {
	Category    string `json:"category"`
	Variable    string `json:"variable"`
	Value       string `json:"value,omitempty"`
	Description string `json:"description"`
}

func envRows() []envRow {
	rows := envcatalog.Catalog()
	out := make([]envRow, 0, len(rows))
	for _, row := range rows {
		value := ""
		if !row.Dynamic {
			value = strings.TrimSpace(os.Getenv(row.Name))
		}
		out = append(out, envRow{
			Category:    row.Category,
			Variable:    row.Name,
			Value:       value,
			Description: row.Description,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Variable < out[j].Variable
	})
	return out
}

func filterEnvRows(rows []envRow, category, match string, onlySet bool) []envRow {
	category = strings.TrimSpace(category)
	match = strings.ToLower(strings.TrimSpace(match))
	out := rows[:0]
	for _, row := range rows {
		if category != "" && !strings.EqualFold(row.Category, category) {
			continue
		}
		if match != "" {
			haystack := strings.ToLower(row.Variable + "\n" + row.Description + "\n" + row.Category)
			if !strings.Contains(haystack, match) {
				continue
			}
		}
		if onlySet && strings.TrimSpace(row.Value) == "" {
			continue
		}
		out = append(out, row)
	}
	return out
}

func newEnvCommand() *cobra.Command {
	var format string
	var onlySet bool
	var category string
	var match string

	cmd := &cobra.Command{
		Use:           "env",
		Short:         "List environment variables pulumiw understands",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := filterEnvRows(envRows(), category, match, onlySet)
			switch strings.ToLower(strings.TrimSpace(format)) {
			case "", "table":
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "CATEGORY\tVARIABLE\tVALUE\tDESCRIPTION")
				for _, row := range rows {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", row.Category, row.Variable, row.Value, row.Description)
				}
				return tw.Flush()
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			default:
				return fmt.Errorf("invalid --output value %q (must be table or json)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "table", "Output format: table or json")
	cmd.Flags().BoolVar(&onlySet, "only-set", false, "Show only variables that are currently set")
	cmd.Flags().StringVar(&category, "category", "", "Filter by category")
	cmd.Flags().StringVar(&match, "filter", "", "Substring filter over names and descriptions")
	return cmd
}
