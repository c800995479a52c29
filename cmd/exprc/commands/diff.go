package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/exprgraph/pkg/compiler"
	"github.com/Sumatoshi-tech/exprgraph/pkg/config"
	"github.com/Sumatoshi-tech/exprgraph/pkg/observability"
)

type diffReport struct {
	Equal             bool     `json:"equal"`
	Left              string   `json:"left"`
	Right             string   `json:"right"`
	ReferencesAdded   []string `json:"references_added,omitempty"`
	ReferencesRemoved []string `json:"references_removed,omitempty"`
	ConstantsAdded    []string `json:"constants_added,omitempty"`
	ConstantsRemoved  []string `json:"constants_removed,omitempty"`
	ConstantsChanged  []string `json:"constants_changed,omitempty"`
}

func newDiffCommand(global *globalOptions) *cobra.Command {
	var format string

	var exitCode bool

	cmd := &cobra.Command{
		Use:   "diff <document-a> <document-b>",
		Short: "Compare the compiled output of two documents",
		Long: `Compile two documents and show how their expression strings and parameter
tables differ. Inserted text is shown as {+text+} and deleted text as [-text-].

Examples:
  exprc diff parallax.yaml parallax-v2.yaml
  exprc diff --exit-code a.yaml b.yaml`,
		Args: cobra.ExactArgs(2), //nolint:mnd // left and right documents.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd, global, args[0], args[1], format, exitCode)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: text or json (default from config)")
	cmd.Flags().BoolVar(&exitCode, "exit-code", false, "exit with status 1 when the artifacts differ")

	return cmd
}

func runDiff(cmd *cobra.Command, global *globalOptions, leftPath, rightPath, formatFlag string, exitCode bool) error {
	sess, err := openSession(cmd, global, sessionOptions{mode: observability.ModeCLI})
	if err != nil {
		return err
	}
	defer sess.close()

	format, err := outputFormat(formatFlag, sess.cfg)
	if err != nil {
		return err
	}

	inputs, err := readInputs(cmd, []string{leftPath, rightPath}, "")
	if err != nil {
		return err
	}

	ctx, cancel := sess.withTimeout(cmd.Context())
	defer cancel()

	artifacts, err := sess.compiler.CompileAll(ctx, inputs)
	if err != nil {
		return err
	}

	left, right := artifacts[0], artifacts[1]
	diff := compiler.Diff(left, right)

	out := cmd.OutOrStdout()

	if format == config.FormatJSON {
		err = writeDiffJSON(out, left, right, diff)
		if err != nil {
			return err
		}
	} else if !global.quiet {
		writeDiffText(out, diff)
	}

	if exitCode && !diff.Equal() {
		return &ExitError{Code: exitCodeDifferences}
	}

	return nil
}

func writeDiffJSON(out io.Writer, left, right *compiler.Artifact, diff compiler.Difference) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	err := enc.Encode(diffReport{
		Equal:             diff.Equal(),
		Left:              left.Expression,
		Right:             right.Expression,
		ReferencesAdded:   diff.ReferencesAdded,
		ReferencesRemoved: diff.ReferencesRemoved,
		ConstantsAdded:    diff.ConstantsAdded,
		ConstantsRemoved:  diff.ConstantsRemoved,
		ConstantsChanged:  diff.ConstantsChanged,
	})
	if err != nil {
		return fmt.Errorf("encode diff: %w", err)
	}

	return nil
}

func writeDiffText(out io.Writer, diff compiler.Difference) {
	if diff.Equal() {
		fmt.Fprintln(out, "artifacts are identical")

		return
	}

	added := color.New(color.FgGreen)
	removed := color.New(color.FgRed)
	changed := color.New(color.FgYellow)

	fmt.Fprint(out, "expression: ")

	for _, part := range diff.Expression {
		switch part.Type {
		case diffmatchpatch.DiffInsert:
			added.Fprintf(out, "{+%s+}", part.Text)
		case diffmatchpatch.DiffDelete:
			removed.Fprintf(out, "[-%s-]", part.Text)
		case diffmatchpatch.DiffEqual:
			fmt.Fprint(out, part.Text)
		}
	}

	fmt.Fprintln(out)

	for _, name := range diff.ReferencesAdded {
		added.Fprintf(out, "+ reference %s\n", name)
	}

	for _, name := range diff.ReferencesRemoved {
		removed.Fprintf(out, "- reference %s\n", name)
	}

	for _, name := range diff.ConstantsAdded {
		added.Fprintf(out, "+ constant %s\n", name)
	}

	for _, name := range diff.ConstantsRemoved {
		removed.Fprintf(out, "- constant %s\n", name)
	}

	for _, name := range diff.ConstantsChanged {
		changed.Fprintf(out, "~ constant %s\n", name)
	}
}
