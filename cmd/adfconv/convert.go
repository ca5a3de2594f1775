package main

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/athapong/adfconv/pkg/adf"
	"github.com/athapong/adfconv/pkg/adf/atlassian"
)

func newToMarkdownCmd(a *app) *cobra.Command {
	return a.conversionCmd("to-md [file]", "Convert an ADF JSON document to Markdown", func(in []byte) ([]byte, error) {
		doc, err := a.parseADF(in)
		if err != nil {
			return nil, err
		}
		md, err := a.conv.ADFToMarkdown(doc)
		return []byte(md), err
	})
}

func newFromMarkdownCmd(a *app) *cobra.Command {
	return a.conversionCmd("from-md [file]", "Convert Markdown to an ADF JSON document", func(in []byte) ([]byte, error) {
		doc, err := a.conv.MarkdownToADF(string(in))
		if err != nil {
			return nil, err
		}
		return marshal(doc)
	})
}

func newToHTMLCmd(a *app) *cobra.Command {
	return a.conversionCmd("to-html [file]", "Render an ADF JSON document as HTML", func(in []byte) ([]byte, error) {
		doc, err := a.parseADF(in)
		if err != nil {
			return nil, err
		}
		html, err := a.conv.ADFToHTML(doc)
		return []byte(html), err
	})
}

func newFromHTMLCmd(a *app) *cobra.Command {
	return a.conversionCmd("from-html [file]", "Convert HTML to an ADF JSON document", func(in []byte) ([]byte, error) {
		doc, err := a.conv.HTMLToADF(string(in))
		if err != nil {
			return nil, err
		}
		return marshal(doc)
	})
}

// conversionCmd builds a command that reads a file or stdin, converts it and
// writes the result to --output or stdout.
func (a *app) conversionCmd(use, short string, fn func([]byte) ([]byte, error)) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			out, err := fn(in)
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, out)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

// parseADF decodes input as ADF, through the Atlassian models when
// --lenient is set.
func (a *app) parseADF(in []byte) (*adf.Node, error) {
	if a.v.GetBool("lenient") {
		return atlassian.Unmarshal(in)
	}
	return a.conv.ParseADF(in)
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, errors.Wrap(err, "failed to read input")
	}
	return data, nil
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return errors.Wrap(os.WriteFile(path, data, 0o644), "failed to write output")
}

func marshal(doc *adf.Node) ([]byte, error) {
	return adf.MarshalIndent(doc)
}
