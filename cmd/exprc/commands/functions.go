package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/exprgraph/pkg/config"
	"github.com/Sumatoshi-tech/exprgraph/pkg/expr"
)

// ErrUnknownKind is returned for a --kind value that matches no operation kind.
var ErrUnknownKind = errors.New("unknown operation kind")

func newFunctionsCommand(global *globalOptions) *cobra.Command {
	var format, kind string

	cmd := &cobra.Command{
		Use:   "functions",
		Short: "List the supported operators and functions",
		Long: `List every operator, function and the conditional the expression language
supports, with the token emitted for it and the accepted argument count.

Examples:
  exprc functions
  exprc functions --kind operator
  exprc functions -f json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(global.configPath)
			if err != nil {
				return err
			}

			resolved, err := outputFormat(format, cfg)
			if err != nil {
				return err
			}

			operations, err := filterOperations(expr.Catalog(), kind)
			if err != nil {
				return err
			}

			if resolved == config.FormatJSON {
				return writeOperationsJSON(cmd.OutOrStdout(), operations)
			}

			writeOperationsTable(cmd.OutOrStdout(), operations)

			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: text or json (default from config)")
	cmd.Flags().StringVar(&kind, "kind", "", "only list one kind: function, operator or conditional")

	return cmd
}

func filterOperations(operations []expr.Operation, kind string) ([]expr.Operation, error) {
	if kind == "" {
		return operations, nil
	}

	filtered := make([]expr.Operation, 0, len(operations))

	for _, operation := range operations {
		if operation.Kind == kind {
			filtered = append(filtered, operation)
		}
	}

	if len(filtered) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	return filtered, nil
}

func writeOperationsJSON(out io.Writer, operations []expr.Operation) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	err := enc.Encode(operations)
	if err != nil {
		return fmt.Errorf("encode operations: %w", err)
	}

	return nil
}

func writeOperationsTable(out io.Writer, operations []expr.Operation) {
	tbl := newTable(out)
	tbl.AppendHeader(table.Row{"Name", "Kind", "Token", "Arity"})

	for _, operation := range operations {
		tbl.AppendRow(table.Row{operation.Name, operation.Kind, operation.Token, arity(operation)})
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d", len(operations))})
	tbl.Render()
}

// arity renders "2", "1-3" or "2+" for variadic operations.
func arity(operation expr.Operation) string {
	switch {
	case operation.MaxArgs < 0:
		return strconv.Itoa(operation.MinArgs) + "+"
	case operation.MinArgs == operation.MaxArgs:
		return strconv.Itoa(operation.MinArgs)
	default:
		return fmt.Sprintf("%d-%d", operation.MinArgs, operation.MaxArgs)
	}
}
