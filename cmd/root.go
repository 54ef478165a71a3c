package cmd

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/keytree/internal/config"
	"github.com/oakwood-commons/keytree/internal/formatter"
	"github.com/oakwood-commons/keytree/pkg/logger"
	"github.com/oakwood-commons/keytree/pkg/settings"
)

var (
	rootCtx = context.Background()

	configFile string
	debug      bool
	output     string

	// activeConfig is the merged configuration of the current run.
	activeConfig config.Config
)

var rootCmd = &cobra.Command{
	Use:   settings.CliBinaryName,
	Short: "Inspect and edit keyed trees",
	Long: `keytree loads a forest of titled nodes addressed by "0-i-j" keys and lets
you render it, resolve keys, query it with CEL and replay edit scripts.`,
	Example: `  keytree show forest.yaml
  keytree show forest.yaml --select 0-1 -o list
  keytree resolve forest.yaml 0-0-1 -o json
  keytree query forest.yaml -e '_.depth == 1'
  keytree apply forest.yaml --step select:0-0 --step add:Later
  keytree apply --script edits.yaml --write out.toml`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		level := settings.LogLevel(debug)
		lgr := logger.Get(level)
		lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())

		path := config.ResolvePath(configFile)
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		if err := formatter.ValidateOutput(output); err != nil {
			return err
		}
		activeConfig = cfg

		run := settings.NewCliParams()
		run.MinLogLevel = level
		run.ConfigFile = path
		run.Output = resolveOutput(output, cfg)
		run.ExitOnError = true

		lgr.V(1).Info("configured run", "config", path, logger.OutputKey, run.Output)
		rootCtx = settings.IntoContext(logger.WithLogger(context.Background(), lgr), run)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config-file", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging on stderr")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "output format: tree|list|mermaid|yaml|json|toml|markdown|html (default from config)")

	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// resolveOutput picks the --output flag, then the configured default.
func resolveOutput(flag string, cfg config.Config) string {
	if flag != "" {
		return flag
	}
	if cfg.Output.Default != "" {
		return cfg.Output.Default
	}
	return string(formatter.OutputTree)
}

// versionString builds the human-readable version line used by --version
// and the version command.
func versionString() string {
	v := settings.VersionInformation
	return fmt.Sprintf("%s %s (commit %s, built %s, %s)",
		settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime, runtime.Version())
}

// currentRun returns the settings of the running command.
func currentRun() *settings.Run {
	return settings.FromContextOrDefault(rootCtx)
}
