package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/exprgraph/pkg/compiler"
	"github.com/Sumatoshi-tech/exprgraph/pkg/config"
	"github.com/Sumatoshi-tech/exprgraph/pkg/observability"
	"github.com/Sumatoshi-tech/exprgraph/pkg/persist"
	"github.com/Sumatoshi-tech/exprgraph/pkg/safeconv"
)

var (
	// ErrNameWithMultipleDocuments is returned when --name is combined with
	// more than one document.
	ErrNameWithMultipleDocuments = errors.New("--name requires exactly one document")
	// ErrDuplicateArtifact is returned when two documents in one run would be
	// saved under the same artifact name.
	ErrDuplicateArtifact = errors.New("duplicate artifact name")
	// ErrStdinWithMultipleDocuments is returned when "-" is mixed with other
	// documents.
	ErrStdinWithMultipleDocuments = errors.New("stdin input must be the only document")
)

type compileOptions struct {
	format         string
	name           string
	outputDir      string
	artifactFormat string
}

func newCompileCommand(global *globalOptions) *cobra.Command {
	opts := &compileOptions{}

	cmd := &cobra.Command{
		Use:   "compile <document...|->",
		Short: "Compile expression documents",
		Long: `Compile one or more expression documents and print the expression string
with its reference and constant parameter tables.

Several documents are compiled in parallel. With --output each artifact is
also written to the directory, one file per artifact name.

Examples:
  exprc compile parallax.yaml
  exprc compile -f json scenes/*.yaml
  exprc compile -o build --artifact-format lz4 scenes/*.yaml
  exprc compile - < parallax.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, global, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: text or json (default from config)")
	cmd.Flags().StringVar(&opts.name, "name", "", "artifact name overriding the document name (single document only)")
	cmd.Flags().StringVarP(&opts.outputDir, "output", "o", "", "directory to write compiled artifacts to")
	cmd.Flags().StringVar(&opts.artifactFormat, "artifact-format", "",
		"artifact encoding: "+strings.Join(persist.Formats(), ", ")+" (default from config)")

	return cmd
}

func runCompile(cmd *cobra.Command, global *globalOptions, opts *compileOptions, paths []string) error {
	if opts.name != "" && len(paths) > 1 {
		return ErrNameWithMultipleDocuments
	}

	sess, err := openSession(cmd, global, sessionOptions{mode: observability.ModeCLI})
	if err != nil {
		return err
	}
	defer sess.close()

	format, err := outputFormat(opts.format, sess.cfg)
	if err != nil {
		return err
	}

	inputs, err := readInputs(cmd, paths, opts.name)
	if err != nil {
		return err
	}

	ctx, cancel := sess.withTimeout(cmd.Context())
	defer cancel()

	artifacts, err := sess.compiler.CompileAll(ctx, inputs)
	if err != nil {
		return err
	}

	var saved []string

	if opts.outputDir != "" {
		saved, err = saveArtifacts(sess.cfg, opts, artifacts)
		if err != nil {
			return err
		}
	}

	if global.quiet {
		return nil
	}

	out := cmd.OutOrStdout()

	if format == config.FormatJSON {
		return writeArtifactsJSON(out, artifacts)
	}

	for idx, artifact := range artifacts {
		if idx > 0 {
			fmt.Fprintln(out)
		}

		writeArtifactText(out, artifact)
	}

	for _, path := range saved {
		writeSavedLine(out, path)
	}

	return nil
}

func readInputs(cmd *cobra.Command, paths []string, name string) ([]compiler.Input, error) {
	inputs := make([]compiler.Input, 0, len(paths))

	for _, path := range paths {
		if path == stdinPath && len(paths) > 1 {
			return nil, ErrStdinWithMultipleDocuments
		}

		doc, err := readDocument(cmd, path)
		if err != nil {
			return nil, err
		}

		inputs = append(inputs, compiler.Input{Name: name, Label: doc.label, Data: doc.data})
	}

	return inputs, nil
}

func saveArtifacts(cfg *config.Config, opts *compileOptions, artifacts []*compiler.Artifact) ([]string, error) {
	formatName := opts.artifactFormat
	if formatName == "" {
		formatName = cfg.Compile.ArtifactFormat
	}

	codec, err := persist.CodecFor(formatName)
	if err != nil {
		return nil, err
	}

	store := persist.NewStore[compiler.Artifact](opts.outputDir, codec)
	seen := make(map[string]string, len(artifacts))
	paths := make([]string, 0, len(artifacts))

	for _, artifact := range artifacts {
		path := store.Path(artifact.Name)
		if previous, dup := seen[path]; dup {
			return nil, fmt.Errorf("%w: %q and %q both write %s", ErrDuplicateArtifact, previous, artifact.Name, path)
		}

		seen[path] = artifact.Name

		path, err = store.Save(artifact.Name, artifact)
		if err != nil {
			return nil, err
		}

		paths = append(paths, path)
	}

	return paths, nil
}

func writeArtifactsJSON(out io.Writer, artifacts []*compiler.Artifact) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	var err error
	if len(artifacts) == 1 {
		err = enc.Encode(artifacts[0])
	} else {
		err = enc.Encode(artifacts)
	}

	if err != nil {
		return fmt.Errorf("encode artifacts: %w", err)
	}

	return nil
}

func writeArtifactText(out io.Writer, artifact *compiler.Artifact) {
	bold := color.New(color.Bold)

	bold.Fprintf(out, "%s\n", sanitizeForTerminal(artifact.Name))
	fmt.Fprintf(out, "  %s\n", artifact.Expression)

	if len(artifact.References) > 0 {
		tbl := newTable(out)
		tbl.SetTitle("References")
		tbl.AppendHeader(table.Row{"Name", "Object type"})

		for _, ref := range artifact.References {
			tbl.AppendRow(table.Row{ref.Name, sanitizeForTerminal(ref.ObjectType)})
		}

		fmt.Fprintln(out)
		tbl.Render()
	}

	if len(artifact.Constants) > 0 {
		tbl := newTable(out)
		tbl.SetTitle("Constants")
		tbl.AppendHeader(table.Row{"Name", "Shape", "Value"})

		for _, constant := range artifact.Constants {
			tbl.AppendRow(table.Row{constant.Name, constant.Shape, constant.Literal})
		}

		fmt.Fprintln(out)
		tbl.Render()
	}

	fmt.Fprintf(out, "\n%s nodes, %s, %s, %s\n",
		humanize.Comma(int64(artifact.NodeCount)),
		plural(len(artifact.References), "reference"),
		plural(len(artifact.Constants), "constant"),
		humanize.Bytes(safeconv.MustInt64ToUint64(artifact.Size())),
	)
}

func writeSavedLine(out io.Writer, path string) {
	size := "?"

	info, err := os.Stat(path)
	if err == nil {
		size = humanize.Bytes(safeconv.MustInt64ToUint64(info.Size()))
	}

	color.New(color.FgGreen).Fprintf(out, "saved %s (%s)\n", path, size)
}

// newTable returns a borderless go-pretty writer rendering to out.
func newTable(out io.Writer) table.Writer {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(out)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false

	return tbl
}

func plural(count int, noun string) string {
	if count == 1 {
		return "1 " + noun
	}

	return humanize.Comma(int64(count)) + " " + noun + "s"
}
