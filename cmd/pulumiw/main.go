// main.go bootstraps pulumiw: it builds the root Cobra command, wires viper
// env/config binding, and executes with a signal-aware context.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rootCmd := newRootCommand()
	err := rootCmd.ExecuteContext(ctx)
	handleError(err)
	if err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCodeError carries the external tool's exit status (or the aggregate
// fleet failure) up to main without reformatting it as a message.
type exitCodeError struct {
	code int
	msg  string
}

func (e *exitCodeError) Error() string { return e.msg }

func exitCode(err error) int {
	var ec *exitCodeError
	if errors.As(err, &ec) && ec.code > 0 {
		return ec.code
	}
	return 1
}

func newRootCommand() *cobra.Command {
	opts := newRunOptions()
	cmd := &cobra.Command{
		Use:   "pulumiw <stack> <service|all> [action] [-- pulumi args...]",
		Short: "Pulumi wrapper for multi-service deployments with shared config",
		Long: "pulumiw resolves layered deployment config (provider globals, broadcast\n" +
			"keys, service overrides) into generated Pulumi stack files and runs the\n" +
			"pulumi CLI against them.",
		Example: `  # Preview az-app1 in dev
  pulumiw dev az-app1 preview

  # Deploy every service in prod, forwarding --yes to pulumi
  pulumiw prod all up -- --yes

  # Generate stack files only, without running pulumi
  pulumiw dev az-app1 --generate-only`,
		Args:          validateRunArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, args, opts)
		},
	}
	opts.bindFlags(cmd.PersistentFlags(), cmd.Flags())
	cmd.AddCommand(
		newValidateCommand(opts),
		newEnvCommand(),
		newVersionCommand(),
	)
	cmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		return bindViper(c)
	}
	return cmd
}

// bindViper lets every flag of the invoked command be set via PULUMIW_<FLAG>
// env vars or an optional config file; explicit flags always win.
func bindViper(cmd *cobra.Command) error {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.SetEnvPrefix("PULUMIW")
	v.AutomaticEnv()
	configFile := os.Getenv("PULUMIW_CONFIG")
	configureConfigFile(v, configFile)

	flagSets := []*pflag.FlagSet{cmd.Flags(), cmd.InheritedFlags()}
	for _, fs := range flagSets {
		if err := v.BindPFlags(fs); err != nil {
			return err
		}
	}
	if err := readConfigFile(v, configFile != ""); err != nil {
		return err
	}
	for _, fs := range flagSets {
		fs.VisitAll(func(f *pflag.Flag) {
			if f.Changed {
				return
			}
			if !v.IsSet(f.Name) {
				return
			}
			val := fmt.Sprintf("%v", v.Get(f.Name))
			if val != "" {
				_ = f.Value.Set(val)
			}
		})
	}
	return nil
}

func configureConfigFile(v *viper.Viper, explicitPath string) {
	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
		return
	}
	v.SetConfigName("config")
	for _, dir := range configSearchDirs() {
		v.AddConfigPath(dir)
	}
}

func readConfigFile(v *viper.Viper, strict bool) error {
	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if errors.As(err, &cfgErr) && !strict {
			return nil
		}
		return err
	}
	return nil
}

func configSearchDirs() []string {
	added := make(map[string]struct{})
	var dirs []string
	add := func(path string) {
		if path == "" {
			return
		}
		if _, ok := added[path]; ok {
			return
		}
		added[path] = struct{}{}
		dirs = append(dirs, path)
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		add(filepath.Join(xdg, "pulumiw"))
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		add(filepath.Join(home, ".config", "pulumiw"))
		add(filepath.Join(home, ".pulumiw"))
	}
	return dirs
}

func handleError(err error) {
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		return
	}
	var ec *exitCodeError
	if errors.As(err, &ec) && ec.msg == "" {
		// Pulumi already wrote its own error output; don't repeat it.
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
}
