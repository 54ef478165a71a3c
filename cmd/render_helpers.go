package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/oakwood-commons/keytree/internal/config"
	"github.com/oakwood-commons/keytree/internal/formatter"
	"github.com/oakwood-commons/keytree/pkg/core"
	"github.com/oakwood-commons/keytree/pkg/loader"
	"github.com/oakwood-commons/keytree/pkg/logger"
	"github.com/oakwood-commons/keytree/pkg/tree"
)

// Payload is the node payload the CLI reads and writes: any JSON object.
type Payload = map[string]any

// minAutoTitleWidth keeps automatic title truncation readable on narrow
// terminals.
const minAutoTitleWidth = 20

// detectTerminalWidth returns the width of stdout when it is a terminal,
// falling back to $COLUMNS. Piped output reports 0 so it is never truncated.
func detectTerminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	if w, _, err := term.GetSize(fd); err == nil && w > 0 {
		return w
	}
	if col := os.Getenv("COLUMNS"); col != "" {
		if w, err := strconv.Atoi(col); err == nil && w > 0 {
			return w
		}
	}
	return 0
}

// titleLimit maps tree.max_title to a truncation width: positive values are
// used as is, negative values disable truncation and 0 derives a limit from
// the terminal width.
func titleLimit(configured, termWidth int) int {
	switch {
	case configured > 0:
		return configured
	case configured < 0 || termWidth <= 0:
		return 0
	}
	if limit := termWidth / 2; limit > minAutoTitleWidth {
		return limit
	}
	return minAutoTitleWidth
}

// renderOptions turns the merged config into renderer options.
func renderOptions(cfg config.Config, termWidth int) core.RenderOptions {
	maxTitle := titleLimit(config.IntValue(cfg.Tree.MaxTitle, 0), termWidth)
	return core.RenderOptions{
		Tree: formatter.TreeOptions{
			MaxDepth:    config.IntValue(cfg.Tree.MaxDepth, 0),
			ShowData:    config.BoolValue(cfg.Tree.ShowData, false),
			HideKeys:    config.BoolValue(cfg.Tree.HideKeys, false),
			MaxTitleLen: maxTitle,
		},
		List: formatter.ListOptions{
			Indent:      config.IntValue(cfg.List.Indent, 2),
			ShowData:    config.BoolValue(cfg.List.ShowData, false),
			MaxTitleLen: maxTitle,
		},
		Mermaid: formatter.MermaidOptions{
			Direction:   strings.ToUpper(cfg.Mermaid.Direction),
			ShowData:    config.BoolValue(cfg.Mermaid.ShowData, false),
			MaxDepth:    config.IntValue(cfg.Tree.MaxDepth, 0),
			MaxTitleLen: maxTitle,
		},
		Markdown: formatter.MarkdownOptions{
			ShowData:    config.BoolValue(cfg.Tree.ShowData, false),
			MaxTitleLen: maxTitle,
		},
		YAML: yamlOptions(cfg),
	}
}

func yamlOptions(cfg config.Config) formatter.YAMLFormatOptions {
	return formatter.YAMLFormatOptions{
		Indent:              config.IntValue(cfg.Output.YAMLIndent, 2),
		LiteralBlockStrings: config.BoolValue(cfg.Output.LiteralBlocks, true),
		OmitValues:          config.BoolValue(cfg.Output.OmitValues, false),
	}
}

// workspaceOptions builds the workspace options shared by every command.
func workspaceOptions(opts core.RenderOptions) []core.Option[Payload] {
	return []core.Option[Payload]{
		core.WithLogger[Payload](*logger.FromContext(rootCtx)),
		core.WithRenderOptions[Payload](opts),
	}
}

// openWorkspace loads the forest at path, or from stdin when path is "-".
// An empty path starts from an empty forest.
func openWorkspace(cmd *cobra.Command, path string, opts core.RenderOptions) (*core.Workspace[Payload], error) {
	wsOpts := workspaceOptions(opts)
	switch path {
	case "":
		return core.New(tree.Forest[Payload]{}, wsOpts...)
	case "-":
		forest, err := loader.LoadReader[Payload](cmd.InOrStdin(), *logger.FromContext(rootCtx))
		if err != nil {
			return nil, fmt.Errorf("stdin: %w", err)
		}
		return core.New(forest, wsOpts...)
	default:
		return core.Open(path, wsOpts...)
	}
}

// printRendered renders the workspace state in the run's output format.
func printRendered(w io.Writer, ws *core.Workspace[Payload], output string) error {
	out, err := ws.Render(formatter.Output(output))
	if err != nil {
		return err
	}
	return writeText(w, out)
}

// writeText writes s, adding a trailing newline when it lacks one.
func writeText(w io.Writer, s string) error {
	if s != "" && !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	_, err := io.WriteString(w, s)
	return err
}
