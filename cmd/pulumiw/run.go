// File: cmd/pulumiw/run.go
// Brief: Root command execution: resolve, generate, and run pulumi.

package main

import (
	"fmt"
	"os"

	"github.com/example/pulumiw/internal/catalog"
	"github.com/example/pulumiw/internal/logging"
	"github.com/example/pulumiw/internal/orchestrator"
	"github.com/example/pulumiw/internal/pulumiexec"
	"github.com/mattn/go-shellwords"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const defaultAction = "preview"

type runOptions struct {
	root         string
	provider     string
	binary       string
	logLevel     string
	generateOnly bool
	showDiff     bool
	yes          bool
}

func newRunOptions() *runOptions {
	return &runOptions{
		root:     ".",
		binary:   pulumiexec.DefaultBinary,
		logLevel: "info",
	}
}

func (o *runOptions) bindFlags(persistent, local *pflag.FlagSet) {
	persistent.StringVar(&o.root, "root", o.root, "Repository root holding catalog.yaml and services/")
	persistent.StringVar(&o.logLevel, "log-level", o.logLevel, "Log level for pulumiw output (debug, info, warn, error)")
	local.StringVar(&o.provider, "provider", "", "Override the catalog provider (azure, aws, gcp)")
	local.StringVar(&o.binary, "binary", o.binary, "Pulumi binary to invoke")
	local.BoolVarP(&o.generateOnly, "generate-only", "g", false, "Generate stack config files only, don't run pulumi")
	local.BoolVar(&o.showDiff, "diff", false, "Print a unified diff of generated stack file changes")
	local.BoolVar(&o.yes, "yes", false, "Skip the confirmation prompt for fleet destroy runs")
}

func (o *runOptions) repoRoot() (string, error) {
	expanded, err := homedir.Expand(o.root)
	if err != nil {
		return "", fmt.Errorf("expand --root: %w", err)
	}
	return expanded, nil
}

// validateRunArgs accepts <stack> <service|all> [action]; anything after --
// is forwarded to pulumi untouched.
func validateRunArgs(cmd *cobra.Command, args []string) error {
	n := len(args)
	if at := cmd.ArgsLenAtDash(); at >= 0 {
		n = at
	}
	if n < 2 || n > 3 {
		return fmt.Errorf("expected <stack> <service|\"all\"> [action], got %d positional arguments", n)
	}
	return nil
}

func splitRunArgs(cmd *cobra.Command, args []string) (positional, passthrough []string) {
	if at := cmd.ArgsLenAtDash(); at >= 0 {
		return args[:at], args[at:]
	}
	return args, nil
}

func extraArgsFromEnv() ([]string, error) {
	raw := os.Getenv("PULUMIW_EXTRA_ARGS")
	if raw == "" {
		return nil, nil
	}
	parsed, err := shellwords.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse PULUMIW_EXTRA_ARGS: %w", err)
	}
	return parsed, nil
}

func runRoot(cmd *cobra.Command, args []string, opts *runOptions) error {
	positional, passthrough := splitRunArgs(cmd, args)
	stack, service := positional[0], positional[1]
	action := defaultAction
	if len(positional) == 3 {
		action = positional[2]
	}

	log, err := logging.New(opts.logLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	root, err := opts.repoRoot()
	if err != nil {
		return err
	}

	entries, err := catalog.Load(root)
	if err != nil {
		return err
	}

	fleet := service == "all"
	var targets []catalog.Entry
	if fleet {
		targets = catalog.FilterProvider(entries, opts.provider)
		if len(targets) == 0 {
			return fmt.Errorf("no catalog services match provider %q", opts.provider)
		}
	} else {
		entry, err := catalog.Find(entries, service)
		if err != nil {
			return err
		}
		targets = []catalog.Entry{entry}
	}

	if fleet && action == "destroy" && !opts.generateOnly {
		if err := confirmFleetDestroy(os.Stdin, cmd.OutOrStdout(), opts.yes, stack, len(targets)); err != nil {
			return err
		}
	}

	envExtra, err := extraArgsFromEnv()
	if err != nil {
		return err
	}
	extraArgs := append(append([]string{}, passthrough...), envExtra...)

	runner := pulumiexec.New(log)
	runner.Binary = opts.binary
	orch := orchestrator.New(runner, orchestrator.Options{
		Root:             root,
		Stack:            stack,
		Action:           action,
		GenerateOnly:     opts.generateOnly,
		ShowDiff:         opts.showDiff,
		ProviderOverride: opts.provider,
		ExtraArgs:        extraArgs,
		DiffOut:          cmd.OutOrStdout(),
		Log:              log,
	})

	ctx := cmd.Context()
	if !fleet {
		res := orch.ProcessService(ctx, targets[0])
		if res.Failed() {
			// The cause is already on stderr (pulumi output or the logged
			// resolution error); mirror the exit status without repeating it.
			code := res.ExitCode
			if code <= 0 {
				code = 1
			}
			return &exitCodeError{code: code}
		}
		return nil
	}

	results := orch.ProcessAll(ctx, targets)
	orchestrator.PrintSummary(cmd.OutOrStdout(), results)
	if err := ctx.Err(); err != nil {
		return err
	}
	if orchestrator.AnyFailed(results) {
		return &exitCodeError{code: 1}
	}
	return nil
}
