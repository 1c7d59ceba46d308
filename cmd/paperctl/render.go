package main

import (
	"fmt"
	"os"
	"path/filepath"

	"papergen/internal/app/render"

	"github.com/spf13/cobra"
)

var (
	renderAnswers bool
	renderOutDir  string
)

var renderCmd = &cobra.Command{
	Use:   "render [paper.json | share-link]",
	Short: "Render a paper as a printable HTML document",
	Long: `Render a paper (JSON file, share link or token on stdin) to HTML.
The document is written to stdout, or into --out using the paper's file name.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().BoolVar(&renderAnswers, "answers", false, "include the answer key")
	renderCmd.Flags().StringVarP(&renderOutDir, "out", "o", "", "directory to write the document into")
}

func runRender(cmd *cobra.Command, args []string) error {
	paper, err := readPaper(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	doc, err := render.Document(paper, render.Options{ShowAnswers: renderAnswers})
	if err != nil {
		return err
	}
	if renderOutDir == "" {
		_, err = fmt.Fprint(cmd.OutOrStdout(), doc)
		return err
	}
	path := filepath.Join(renderOutDir, render.FileName(paper))
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "wrote", path)
	return nil
}
