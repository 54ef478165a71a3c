package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/keytree/internal/formatter"
	"github.com/oakwood-commons/keytree/internal/script"
	"github.com/oakwood-commons/keytree/pkg/loader"
	"github.com/oakwood-commons/keytree/pkg/logger"
	"github.com/oakwood-commons/keytree/pkg/tree"
)

var (
	scriptFile  string
	inlineSteps []string
	showTrace   bool
	writePath   string
)

var applyCmd = &cobra.Command{
	Use:   "apply [file|-]",
	Short: "Replay edit steps against a forest",
	Long: `Apply select, add, remove, modify, sort and clear steps in order and print
the resulting forest with its selection. Steps come from a YAML or JSON
script (--script) followed by inline shorthands (--step). Without a file
the forest starts empty.

Inline steps:
  select:0-1       select the node at 0-1
  add:Title        add a node under the selection, or a root
  modify:Title     retitle the selection
  sort:0-1,0-0     reorder the selection's children (or the roots)
  remove           delete the selection and its subtree
  clear            drop the selection`,
	Example: `  keytree apply --step add:Inbox --step select:0-0 --step add:Today
  keytree apply forest.yaml --script edits.yaml --trace
  keytree apply forest.yaml --step select:0-1 --step remove --write forest.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		if path == "-" && scriptFile == "-" {
			return errors.New("stdin cannot supply both the forest and the script")
		}

		steps, err := collectSteps(cmd.InOrStdin())
		if err != nil {
			return err
		}

		run := currentRun()
		run.InputPath = path
		opts := renderOptions(activeConfig, detectTerminalWidth())
		ws, err := openWorkspace(cmd, path, opts)
		if err != nil {
			return err
		}

		lgr := logger.FromContext(rootCtx)
		lgr.V(1).Info("applying steps", logger.InputKey, path, "steps", len(steps))
		res, err := ws.Apply(rootCtx, steps)
		if err != nil {
			return err
		}

		if showTrace {
			for _, tr := range res.Trace {
				if _, err := fmt.Fprintln(cmd.ErrOrStderr(), traceLine(tr)); err != nil {
					return err
				}
			}
		}
		if writePath != "" {
			if err := writeSnapshot(writePath, res.State.Forest, opts.YAML); err != nil {
				return err
			}
			lgr.Info("wrote snapshot", "path", writePath, "nodes", tree.Len(res.State.Forest))
		}
		return printRendered(cmd.OutOrStdout(), ws, run.Output)
	},
}

// collectSteps reads the script file, if any, then appends inline steps.
func collectSteps(stdin io.Reader) ([]script.Step[Payload], error) {
	var steps []script.Step[Payload]
	if scriptFile != "" {
		var data []byte
		var err error
		if scriptFile == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(scriptFile)
		}
		if err != nil {
			return nil, fmt.Errorf("read script: %w", err)
		}
		parsed, err := script.Parse[Payload](data)
		if err != nil {
			return nil, fmt.Errorf("script %s: %w", scriptFile, err)
		}
		steps = append(steps, parsed...)
	}
	if len(inlineSteps) > 0 {
		parsed, err := script.ParseInline[Payload](inlineSteps)
		if err != nil {
			return nil, err
		}
		steps = append(steps, parsed...)
	}
	if len(steps) == 0 {
		return nil, script.ErrNoSteps
	}
	return steps, nil
}

func traceLine(tr script.Trace) string {
	selected := tr.Selected
	if selected == "" {
		selected = "-"
	} else if !tr.Resolved {
		selected += " (unresolved)"
	}
	return fmt.Sprintf("%-24s selected=%s", tr.Step, selected)
}

// writeSnapshot saves forest in the format named by the path's extension,
// YAML when the extension is unknown.
func writeSnapshot(path string, forest tree.Forest[Payload], yamlOpts formatter.YAMLFormatOptions) error {
	var (
		s   string
		err error
	)
	switch loader.FormatFromPath(path) {
	case loader.FormatJSON:
		s, err = formatter.FormatJSON(forest)
	case loader.FormatNDJSON:
		s, err = formatNDJSON(forest)
	case loader.FormatTOML:
		s, err = formatter.FormatTOML(forest, "")
	default:
		s, err = formatter.FormatYAML(forest, yamlOpts)
	}
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, []byte(s), 0o644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return nil
}

// formatNDJSON writes one compact root node per line.
func formatNDJSON(forest tree.Forest[Payload]) (string, error) {
	var buf bytes.Buffer
	for _, n := range forest {
		b, err := json.Marshal(n)
		if err != nil {
			return "", err
		}
		buf.Write(b)
		buf.WriteByte('\n')
	}
	return buf.String(), nil
}

func init() {
	applyCmd.Flags().StringVar(&scriptFile, "script", "", "YAML or JSON script of steps (\"-\" for stdin)")
	applyCmd.Flags().StringArrayVar(&inlineSteps, "step", nil, "inline step op[:arg], repeatable")
	applyCmd.Flags().BoolVar(&showTrace, "trace", false, "print each step and the selection after it to stderr")
	applyCmd.Flags().StringVar(&writePath, "write", "", "save the resulting forest to this file (.yaml, .json, .ndjson, .toml)")
}
