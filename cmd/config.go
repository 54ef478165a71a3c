package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/keytree/internal/config"
	"github.com/oakwood-commons/keytree/internal/formatter"
	"github.com/oakwood-commons/keytree/pkg/settings"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print keytree version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return printStructured(cmd, settings.VersionInformation, versionString())
	},
}

// configCmd groups configuration subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect keytree configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the merged configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return printStructured(cmd, activeConfig, "")
	},
}

var configDefaultCmd = &cobra.Command{
	Use:   "default",
	Short: "Print the built-in default configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return writeText(cmd.OutOrStdout(), string(config.DefaultYAML()))
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := currentRun().ConfigFile
		if path == "" {
			path = "(built-in defaults)"
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), path)
		return err
	},
}

// printStructured writes v as JSON when -o json is set and as YAML
// otherwise. A non-empty text is printed instead for the tree output.
func printStructured(cmd *cobra.Command, v any, text string) error {
	out := cmd.OutOrStdout()
	switch formatter.Output(currentRun().Output) {
	case formatter.OutputJSON:
		s, err := formatter.FormatJSON(v)
		if err != nil {
			return err
		}
		return writeText(out, s)
	case formatter.OutputTree:
		if text != "" {
			return writeText(out, text)
		}
	}
	s, err := formatter.FormatYAML(v, yamlOptions(activeConfig))
	if err != nil {
		return err
	}
	return writeText(out, s)
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configDefaultCmd)
	configCmd.AddCommand(configPathCmd)
}
