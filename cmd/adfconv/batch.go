package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/athapong/adfconv/pkg/convert"
)

// outputExt is the file extension written for each direction.
var outputExt = map[convert.Direction]string{
	convert.ADFToHTML:     ".html",
	convert.HTMLToADF:     ".json",
	convert.ADFToMarkdown: ".md",
	convert.MarkdownToADF: ".json",
}

// inputExt lists the extensions read for each direction.
var inputExt = map[convert.Direction][]string{
	convert.ADFToHTML:     {".json"},
	convert.HTMLToADF:     {".html", ".htm"},
	convert.ADFToMarkdown: {".json"},
	convert.MarkdownToADF: {".md", ".markdown"},
}

func newBatchCmd(a *app) *cobra.Command {
	var (
		direction string
		outputDir string
		batchSize int
	)
	cmd := &cobra.Command{
		Use:   "batch <input-dir>",
		Short: "Convert every matching file in a directory tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := convert.ParseDirection(direction)
			if err != nil {
				return err
			}
			inputDir := args[0]
			if outputDir == "" {
				outputDir = inputDir
			}

			files, err := readInputFiles(inputDir, inputExt[d])
			if err != nil {
				return errors.Wrap(err, "failed to read input directory")
			}
			if len(files) == 0 {
				return errors.Errorf("no input files found in %s", inputDir)
			}
			a.logger.Infof("Converting %d input files...", len(files))

			jobs := make([]*convert.Job, 0, len(files))
			paths := make(map[*convert.Job]string, len(files))
			for _, file := range files {
				content, err := os.ReadFile(file)
				if err != nil {
					a.logger.Errorf("Failed to read file %s: %v", file, err)
					continue
				}
				job := convert.NewJob(d, content)
				jobs = append(jobs, job)
				paths[job] = file
			}

			pipeline := convert.NewPipeline(a.conv, convert.WithBatchSize(batchSize), convert.WithPipelineLogger(a.logger))
			batchErr := pipeline.BatchProcess(cmd.Context(), jobs)

			written := 0
			for _, job := range jobs {
				if job.Err != nil {
					a.logger.WithField("file", paths[job]).WithError(job.Err).Error("Conversion failed")
					continue
				}
				rel, err := filepath.Rel(inputDir, paths[job])
				if err != nil {
					return err
				}
				target := filepath.Join(outputDir, strings.TrimSuffix(rel, filepath.Ext(rel))+outputExt[d])
				if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
					return err
				}
				if err := os.WriteFile(target, job.Output, 0o644); err != nil {
					return errors.Wrap(err, "failed to write output")
				}
				written++
			}

			a.logger.Infof("Wrote %d of %d files to %s", written, len(jobs), outputDir)
			return batchErr
		},
	}
	cmd.Flags().StringVarP(&direction, "direction", "d", string(convert.MarkdownToADF), "conversion: adf_to_html, html_to_adf, adf_to_markdown, markdown_to_adf")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory for converted files (default: next to the input)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 10, "documents converted concurrently")
	return cmd
}

// readInputFiles lists files under inputDir with one of the extensions.
func readInputFiles(inputDir string, extensions []string) ([]string, error) {
	var files []string
	err := filepath.Walk(inputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			ext := strings.ToLower(filepath.Ext(path))
			for _, e := range extensions {
				if ext == e {
					files = append(files, path)
					break
				}
			}
		}
		return nil
	})

	return files, err
}
