package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pbxfmt/pbx/comments"
	"github.com/pbxfmt/pbx/gid"
	"github.com/pbxfmt/pbx/internal/difftree"
	"github.com/pbxfmt/pbx/pbx"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	convert   string
	lint      bool
	gidsplit  []string
	gidFormat string
	giddump   string
	output    string
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	cmd := &cobra.Command{
		Use:           "pbx [file]",
		Short:         "Parse, convert, and lint Xcode project.pbxproj files",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, args, f)
		},
	}
	cmd.Flags().StringVar(&f.convert, "convert", "", `reformat the input as "xcode", "xml", or "json"`)
	cmd.Flags().BoolVar(&f.lint, "lint", false, "verify that unparsing reproduces the input byte-for-byte")
	cmd.Flags().StringSliceVar(&f.gidsplit, "gidsplit", nil, "decode the given gid(s) and print their fields")
	cmd.Flags().StringVar(&f.gidFormat, "gid-format", "text", `output format for --gidsplit/--giddump: "text" or "json"`)
	cmd.Flags().StringVar(&f.giddump, "giddump", "", "dump every gid found in FILE with its decoded fields")
	cmd.Flags().StringVarP(&f.output, "output", "o", "-", `output destination, or "-" for standard output`)
	return cmd
}

func runRoot(cmd *cobra.Command, args []string, f *rootFlags) error {
	format, err := parseGidFormat(f.gidFormat)
	if err != nil {
		return fail(codeError, "%s", err)
	}

	if len(f.gidsplit) > 0 {
		return runGidSplit(cmd, f.gidsplit, format)
	}
	if f.giddump != "" {
		return runGidDump(cmd, f.giddump, format)
	}
	if len(args) == 0 {
		return fail(codeError, "missing input file")
	}
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fail(codeError, "%s", err)
	}

	if f.lint {
		return runLint(cmd, path, data)
	}
	return runConvert(cmd, path, data, f)
}

func parseGidFormat(s string) (gid.GidSplitFormat, error) {
	switch s {
	case "", "text":
		return gid.Text, nil
	case "json":
		return gid.JSON, nil
	default:
		return gid.Text, fmt.Errorf("unknown --gid-format %q", s)
	}
}

func runGidSplit(cmd *cobra.Command, gids []string, format gid.GidSplitFormat) error {
	splits := make([]gid.Split, 0, len(gids))
	for _, g := range gids {
		s, err := gid.DecomposeSplit(g)
		if err != nil {
			return fail(codeError, "%s", err)
		}
		splits = append(splits, s)
	}
	return gid.WriteSplits(cmd.OutOrStdout(), splits, format)
}

func runGidDump(cmd *cobra.Command, path string, format gid.GidSplitFormat) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fail(codeError, "%s", err)
	}
	v, info, err := pbx.Parse(data, pbx.ParseOptions{})
	if err != nil {
		pbx.ReportParseStatus(cmd.ErrOrStderr(), info, path)
		return fail(codeParsingFailed, "parsing %s failed", path)
	}
	root, ok := v.(*pbx.Mapping)
	if !ok {
		return fail(codeParsingFailed, "%s: root value is not a dictionary", path)
	}
	objects, _ := root.Mapping("objects")
	table := comments.Synthesize(root, pbx.ProjectNameForPath(path))
	var splits []gid.Split
	if objects != nil {
		for _, g := range objects.Keys() {
			s, err := gid.DecomposeSplit(g)
			if err != nil {
				continue
			}
			s.Comment, _ = table.Lookup(g)
			splits = append(splits, s)
		}
	}
	return gid.WriteSplits(cmd.OutOrStdout(), splits, format)
}

func runLint(cmd *cobra.Command, path string, data []byte) error {
	v, info, err := pbx.Parse(data, pbx.ParseOptions{})
	if err != nil {
		pbx.ReportParseStatus(cmd.ErrOrStderr(), info, path)
		return fail(codeParsingFailed, "parsing %s failed", path)
	}
	switch info.Detected {
	case pbx.JSON:
		fmt.Fprintf(cmd.OutOrStdout(), "%s is in json which is nothing that Xcode can read.\n", path)
		return fail(codeLintFailed, "%s: wrong format for lint", path)
	case pbx.XML:
		fmt.Fprintf(cmd.OutOrStdout(), "%s is in XML which is a clearly a failed lint.\n", path)
		return fail(codeLintFailed, "%s: wrong format for lint", path)
	}
	out, err := pbx.Unparse(v, pbx.UnparseOptions{
		Format:      pbx.Xcode,
		ProjectName: pbx.ProjectNameForPath(path),
	})
	if err != nil {
		return fail(codeError, "%s", err)
	}
	if bytes.Equal(out, data) {
		return nil
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: round-trip mismatch\n", path)
	fmt.Fprint(cmd.ErrOrStderr(), difftree.UnifiedLines(path, path+" (unparsed)", data, out))
	return fail(codeLintFailed, "%s: lint failed", path)
}

func runConvert(cmd *cobra.Command, path string, data []byte, f *rootFlags) error {
	v, info, err := pbx.Parse(data, pbx.ParseOptions{})
	if err != nil {
		pbx.ReportParseStatus(cmd.ErrOrStderr(), info, path)
		return fail(codeParsingFailed, "parsing %s failed", path)
	}

	outFormat := pbx.Xcode
	if f.convert != "" {
		outFormat, err = pbx.ParseFormat(f.convert)
		if err != nil {
			return fail(codeError, "%s", err)
		}
	}
	out, err := pbx.Unparse(v, pbx.UnparseOptions{
		Format:      outFormat,
		ProjectName: pbx.ProjectNameForPath(path),
	})
	if err != nil {
		return fail(codeError, "%s", err)
	}

	if f.output == "-" || f.output == "" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	return os.WriteFile(f.output, out, 0o644)
}
