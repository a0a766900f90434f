package envcatalog

type VarInfo struct {
	Category    string
	Name        string
	Description string
	Dynamic     bool
}

func Catalog() []VarInfo {
	return []VarInfo{
		{
			Category:    "Config",
			Name:        "PULUMIW_CONFIG",
			Description: "Path to the pulumiw config file.",
		},
		{
			Category:    "Config",
			Name:        "PULUMIW_<FLAG>",
			Dynamic:     true,
			Description: "Set any pulumiw CLI flag via environment (hyphens become underscores). Example: PULUMIW_LOG_LEVEL=debug.",
		},
		{
			Category:    "Run",
			Name:        "PULUMIW_ROOT",
			Description: "Repository root holding catalog.yaml and services/ (defaults to the working directory).",
		},
		{
			Category:    "Run",
			Name:        "PULUMIW_PROVIDER",
			Description: "Override the catalog provider for resolution (azure, aws, gcp).",
		},
		{
			Category:    "Run",
			Name:        "PULUMIW_GENERATE_ONLY",
			Description: "Generate stack files without invoking pulumi (set to 1/true).",
		},
		{
			Category:    "Run",
			Name:        "PULUMIW_DIFF",
			Description: "Print a unified diff of generated stack file changes (set to 1/true).",
		},
		{
			Category:    "Run",
			Name:        "PULUMIW_YES",
			Description: "Skip the confirmation prompt for fleet destroy runs (equivalent to passing --yes).",
		},
		{
			Category:    "Run",
			Name:        "PULUMIW_EXTRA_ARGS",
			Description: "Extra arguments appended to every pulumi invocation, parsed shell-style. Example: PULUMIW_EXTRA_ARGS='--non-interactive --yes'.",
		},
		{
			Category:    "Pulumi",
			Name:        "PULUMIW_BINARY",
			Description: "Path to the pulumi binary to invoke (defaults to pulumi on PATH).",
		},
		{
			Category:    "Output",
			Name:        "NO_COLOR",
			Description: "Disable ANSI color output (any non-empty value).",
		},
		{
			Category:    "Logging",
			Name:        "PULUMIW_LOG_LEVEL",
			Description: "Log level for pulumiw output (debug, info, warn, error).",
		},
	}
}
