package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/exprgraph/pkg/config"
	"github.com/Sumatoshi-tech/exprgraph/pkg/document"
	"github.com/Sumatoshi-tech/exprgraph/pkg/observability"
)

type validateReport struct {
	Document string                     `json:"document"`
	Valid    bool                       `json:"valid"`
	Problems []document.ValidationError `json:"problems,omitempty"`
	// CompileError is set by --strict when the schema passes but the
	// expression does not build.
	CompileError string `json:"compile_error,omitempty"`
}

func newValidateCommand(global *globalOptions) *cobra.Command {
	var format string

	var strict bool

	cmd := &cobra.Command{
		Use:   "validate <document|->",
		Short: "Validate an expression document against the document schema",
		Long: `Validate an expression document against the embedded document schema.

Exits with status 2 when the document is invalid. With --strict a document
that passes the schema is also compiled, catching arity and shape errors.

Examples:
  exprc validate parallax.yaml
  exprc validate --strict - < parallax.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, global, args[0], format, strict)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: text or json (default from config)")
	cmd.Flags().BoolVar(&strict, "strict", false, "also compile the document")

	return cmd
}

func runValidate(cmd *cobra.Command, global *globalOptions, path, formatFlag string, strict bool) error {
	sess, err := openSession(cmd, global, sessionOptions{mode: observability.ModeCLI})
	if err != nil {
		return err
	}
	defer sess.close()

	format, err := outputFormat(formatFlag, sess.cfg)
	if err != nil {
		return err
	}

	doc, err := readDocument(cmd, path)
	if err != nil {
		return err
	}

	ctx, cancel := sess.withTimeout(cmd.Context())
	defer cancel()

	problems, err := sess.compiler.Validate(ctx, doc.data)
	if err != nil {
		return &ExitError{Code: exitCodeValidationFailure, Err: fmt.Errorf("%s: %w", doc.label, err)}
	}

	report := validateReport{Document: doc.label, Problems: problems}

	if len(problems) == 0 && strict {
		_, compileErr := sess.compiler.Compile(ctx, "", doc.data)
		if compileErr != nil {
			report.CompileError = compileErr.Error()
		}
	}

	report.Valid = len(report.Problems) == 0 && report.CompileError == ""

	out := cmd.OutOrStdout()

	switch {
	case format == config.FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		err = enc.Encode(report)
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
	case !global.quiet || !report.Valid:
		writeValidateText(out, report)
	}

	if !report.Valid {
		return &ExitError{Code: exitCodeValidationFailure}
	}

	return nil
}

func writeValidateText(out io.Writer, report validateReport) {
	label := sanitizeForTerminal(report.Document)

	if report.Valid {
		color.New(color.FgGreen).Fprintf(out, "document is valid (%s)\n", label)

		return
	}

	color.New(color.FgRed).Fprintf(out, "document is invalid (%s)\n", label)

	if report.CompileError != "" {
		color.New(color.FgRed).Fprintf(out, "  - %s\n", sanitizeForTerminal(report.CompileError))

		return
	}

	fmt.Fprintf(out, "\nErrors:\n")

	for _, problem := range report.Problems {
		color.New(color.FgRed).Fprintf(out, "  - %s: %s\n",
			sanitizeForTerminal(problem.Field), sanitizeForTerminal(problem.Description))
	}
}
