package main

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/athapong/adfconv/pkg/adf"
	"github.com/athapong/adfconv/pkg/convert"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate an ADF JSON document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			doc, err := a.parseADF(in)
			if err != nil {
				return err
			}
			counts := adf.CountTypes(doc)
			fmt.Fprintf(cmd.OutOrStdout(), "valid: %d blocks, %d raw nodes\n", len(doc.Content), counts[adf.TypeRaw])
			return nil
		},
	}
}

func newVerifyCmd(a *app) *cobra.Command {
	var via string
	cmd := &cobra.Command{
		Use:   "verify [file]",
		Short: "Check that an ADF document survives a round trip through HTML or Markdown",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			doc, err := a.parseADF(in)
			if err != nil {
				return err
			}

			formats := []convert.Format{convert.FormatHTML, convert.FormatMarkdown}
			switch via {
			case "both":
			case string(convert.FormatHTML), string(convert.FormatMarkdown):
				formats = []convert.Format{convert.Format(via)}
			default:
				return errors.Errorf("unknown format %q", via)
			}

			changed := false
			out := cmd.OutOrStdout()
			for _, f := range formats {
				report, err := a.conv.Verify(doc, f)
				if err != nil {
					return err
				}
				if report.Equal {
					fmt.Fprintf(out, "%s: unchanged\n", f)
					continue
				}
				changed = true
				fmt.Fprintf(out, "%s: %d changes\n%s", f, report.Changes, report.Diff)
			}
			if changed {
				return errors.New("round trip changed the document")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&via, "via", "both", "intermediate format: html, markdown or both")
	return cmd
}

func newPreviewCmd(a *app) *cobra.Command {
	var style string
	var width int
	cmd := &cobra.Command{
		Use:   "preview [file]",
		Short: "Render an ADF JSON document in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			doc, err := a.parseADF(in)
			if err != nil {
				return err
			}
			md, err := a.conv.ADFToMarkdown(doc)
			if err != nil {
				return err
			}

			r, err := glamour.NewTermRenderer(
				glamour.WithStandardStyle(style),
				glamour.WithWordWrap(width),
			)
			if err != nil {
				return errors.Wrap(err, "failed to create renderer")
			}
			out, err := r.Render(md)
			if err != nil {
				return errors.Wrap(err, "failed to render markdown")
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().StringVar(&style, "style", "dracula", "glamour style (dark, light, dracula, notty, ascii)")
	cmd.Flags().IntVar(&width, "width", 80, "word wrap width")
	return cmd
}
