package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/keytree/internal/formatter"
	"github.com/oakwood-commons/keytree/internal/query"
	"github.com/oakwood-commons/keytree/pkg/core"
	"github.com/oakwood-commons/keytree/pkg/tree"
)

var evalExpression string

var resolveCmd = &cobra.Command{
	Use:   "resolve <file|-> <key>",
	Short: "Print the node at a key",
	Long: `Resolve a "0-i-j" key against a forest snapshot and print the node with
its subtree. A key that matches no node is an error. With --eval the CEL
expression is evaluated against the node view instead ("_.data.owner").`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		run := currentRun()
		opts := renderOptions(activeConfig, detectTerminalWidth())

		ws, err := openWorkspace(cmd, args[0], opts)
		if err != nil {
			return err
		}
		n, err := ws.Resolve(args[1])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if evalExpression != "" {
			return printEval(out, n, evalExpression, run.Output, opts.YAML)
		}
		switch formatter.Output(run.Output) {
		case formatter.OutputYAML:
			s, err := formatter.FormatYAML(n, opts.YAML)
			if err != nil {
				return err
			}
			return writeText(out, s)
		case formatter.OutputJSON:
			s, err := formatter.FormatJSON(n)
			if err != nil {
				return err
			}
			return writeText(out, s)
		}

		sub, err := core.New(tree.Forest[Payload]{n}, workspaceOptions(opts)...)
		if err != nil {
			return err
		}
		return printRendered(out, sub, run.Output)
	},
}

// printEval evaluates expr against the view of n. Structured outputs encode
// the result; the others print it flat.
func printEval(w io.Writer, n *tree.Node[Payload], expr, output string, yamlOpts formatter.YAMLFormatOptions) error {
	eval, err := query.NewEvaluator()
	if err != nil {
		return err
	}
	view, err := query.View(n, tree.Depth(n.Key))
	if err != nil {
		return err
	}
	result, err := eval.Evaluate(expr, view)
	if err != nil {
		return err
	}
	var s string
	switch formatter.Output(output) {
	case formatter.OutputJSON:
		s, err = formatter.FormatJSON(result)
	case formatter.OutputYAML:
		s, err = formatter.FormatYAML(result, yamlOpts)
	default:
		s = formatter.Stringify(result)
	}
	if err != nil {
		return err
	}
	return writeText(w, s)
}

func init() {
	resolveCmd.Flags().StringVar(&evalExpression, "eval", "", "evaluate a CEL expression against the node instead of printing it")
}
