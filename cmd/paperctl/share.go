package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"papergen/internal/app/sharelink"
	"papergen/internal/domain/model"

	"github.com/spf13/cobra"
)

var shareBaseURL string

var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Build and read share links",
}

var shareEncodeCmd = &cobra.Command{
	Use:   "encode [paper.json]",
	Short: "Print the share link of a paper",
	Long: `Read a paper as JSON (from the file argument or stdin) and print its
share link. With --base "" only the token is printed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShareEncode,
}

var shareDecodeCmd = &cobra.Command{
	Use:   "decode <link-or-token>",
	Short: "Print the paper carried by a share link",
	Args:  cobra.ExactArgs(1),
	RunE:  runShareDecode,
}

func init() {
	shareEncodeCmd.Flags().StringVar(&shareBaseURL, "base", "http://localhost:8080", "origin the link points at")
	shareCmd.AddCommand(shareEncodeCmd, shareDecodeCmd)
}

func runShareEncode(cmd *cobra.Command, args []string) error {
	paper, err := readPaper(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	if shareBaseURL == "" {
		token, err := sharelink.Encode(paper)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	}
	link, err := sharelink.BuildLink(shareBaseURL, paper)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), link)
	return nil
}

func runShareDecode(cmd *cobra.Command, args []string) error {
	paper, err := sharelink.DecodeLink(args[0])
	if err != nil {
		return fmt.Errorf("%s (%w)", sharelink.UserMessage(err), err)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(paper)
}

// readPaper decodes a paper from the file named in args, or from stdin.
// Input that is not a JSON object is read as a share link or token.
func readPaper(stdin io.Reader, args []string) (*model.QuestionPaper, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 1 && args[0] != "-" {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(stdin)
	}
	if err != nil {
		return nil, fmt.Errorf("read paper: %w", err)
	}
	if trimmed := strings.TrimSpace(string(data)); trimmed != "" && !strings.HasPrefix(trimmed, "{") {
		return sharelink.DecodeLink(trimmed)
	}
	var paper model.QuestionPaper
	if err := json.Unmarshal(data, &paper); err != nil {
		return nil, fmt.Errorf("parse paper: %w", err)
	}
	return &paper, nil
}
