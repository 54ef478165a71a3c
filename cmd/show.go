package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/keytree/internal/config"
	"github.com/oakwood-commons/keytree/pkg/logger"
)

var (
	showSelect   string
	showDepth    int
	showData     bool
	showHideKeys bool
	showMaxTitle int
)

var showCmd = &cobra.Command{
	Use:   "show <file|->",
	Short: "Render a forest snapshot",
	Long: `Render a forest snapshot as a tree, an indented key list, a Mermaid
flowchart, a Markdown or HTML bullet list, or re-encoded YAML, JSON or
TOML. Use "-" to read stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		run := currentRun()
		cfg := showConfig(cmd, activeConfig)

		ws, err := openWorkspace(cmd, args[0], renderOptions(cfg, detectTerminalWidth()))
		if err != nil {
			return err
		}
		if showSelect != "" {
			if ws.Engine().Select(showSelect) == nil {
				return fmt.Errorf("no node with key %q", showSelect)
			}
			logger.FromContext(rootCtx).V(1).Info("selected node", logger.SelectedKey, showSelect)
		}
		return printRendered(cmd.OutOrStdout(), ws, run.Output)
	},
}

// showConfig overlays the display flags the user set on cfg.
func showConfig(cmd *cobra.Command, cfg config.Config) config.Config {
	flags := cmd.Flags()
	if flags.Changed("depth") {
		cfg.Tree.MaxDepth = &showDepth
	}
	if flags.Changed("data") {
		cfg.Tree.ShowData = &showData
		cfg.List.ShowData = &showData
		cfg.Mermaid.ShowData = &showData
	}
	if flags.Changed("hide-keys") {
		cfg.Tree.HideKeys = &showHideKeys
	}
	if flags.Changed("max-title") {
		cfg.Tree.MaxTitle = &showMaxTitle
	}
	return cfg
}

func init() {
	showCmd.Flags().StringVar(&showSelect, "select", "", "mark the node with this key as selected")
	showCmd.Flags().IntVar(&showDepth, "depth", 0, "limit rendered depth (0 = unlimited)")
	showCmd.Flags().BoolVar(&showData, "data", false, "show node payloads next to titles")
	showCmd.Flags().BoolVar(&showHideKeys, "hide-keys", false, "omit keys from tree labels")
	showCmd.Flags().IntVar(&showMaxTitle, "max-title", 0, "truncate titles to this width (0 = auto, -1 = unlimited)")
}
