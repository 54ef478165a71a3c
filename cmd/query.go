package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/keytree/internal/formatter"
	"github.com/oakwood-commons/keytree/internal/limiter"
	"github.com/oakwood-commons/keytree/internal/query"
)

var (
	expression    string
	listFunctions bool
	limitRecords  int
	offsetRecords int
	tailRecords   int
)

var queryCmd = &cobra.Command{
	Use:   "query <file|-> -e <expr>",
	Short: "List the keys of nodes matching a CEL predicate",
	Long: `Evaluate a CEL predicate against every node and print the keys of the
matches in depth-first order. Inside the expression "_" is the node view:

  _.title     the node title
  _.key       the node key
  _.depth     1 for roots
  _.children  the number of direct children
  _.data      the payload, or null`,
	Example: `  keytree query forest.yaml -e '_.title.startsWith("In")'
  keytree query forest.yaml -e '_.data != null && _.data.done' -o json
  keytree query forest.yaml -e 'true' --offset 10 --limit 5
  keytree query --functions`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if listFunctions {
			eval, err := query.NewEvaluator()
			if err != nil {
				return err
			}
			for _, fn := range eval.Functions() {
				if _, err := fmt.Fprintln(out, fn); err != nil {
					return err
				}
			}
			return nil
		}
		if len(args) == 0 {
			return errors.New("a forest file is required")
		}
		if expression == "" {
			return errors.New("an expression is required (-e)")
		}
		window := limiter.Config{Limit: limitRecords, Offset: offsetRecords, Tail: tailRecords}
		if err := window.Validate(); err != nil {
			return err
		}

		run := currentRun()
		opts := renderOptions(activeConfig, detectTerminalWidth())
		ws, err := openWorkspace(cmd, args[0], opts)
		if err != nil {
			return err
		}
		keys, err := ws.Query(expression)
		if err != nil {
			return err
		}
		if keys == nil {
			keys = []string{}
		}
		keys = limiter.Apply(window, keys)

		switch formatter.Output(run.Output) {
		case formatter.OutputJSON:
			s, err := formatter.FormatJSON(keys)
			if err != nil {
				return err
			}
			return writeText(out, s)
		case formatter.OutputYAML:
			s, err := formatter.FormatYAML(keys, opts.YAML)
			if err != nil {
				return err
			}
			return writeText(out, s)
		}
		for _, key := range keys {
			n := ws.Engine().Lookup(key)
			if _, err := fmt.Fprintf(out, "%s\t%s\n", key, n.Title); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	queryCmd.Flags().StringVarP(&expression, "expression", "e", "", "CEL predicate evaluated per node")
	queryCmd.Flags().BoolVar(&listFunctions, "functions", false, "list the functions available to expressions")
	queryCmd.Flags().IntVar(&limitRecords, "limit", 0, "print only the first N matches (0 = all)")
	queryCmd.Flags().IntVar(&offsetRecords, "offset", 0, "skip the first N matches")
	queryCmd.Flags().IntVar(&tailRecords, "tail", 0, "print only the last N matches; excludes --limit")
}
