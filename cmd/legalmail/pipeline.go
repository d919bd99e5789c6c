package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hal9000y/legalmail-mcp/internal/format"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var emailPath string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Classify an email and extract its parties, agreement, questions and urgency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			emailText, err := readDocument(cmd, emailPath)
			if err != nil {
				return err
			}

			return writeJSON(cmd.OutOrStdout(), a.agent.Analyze(emailText))
		},
	}

	cmd.Flags().StringVar(&emailPath, "email", "", `Email file, "-" reads stdin`)
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newDraftCmd(a *app) *cobra.Command {
	var emailPath, contractPath string

	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Draft a reply to an email citing the contract",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			emailText, err := readDocument(cmd, emailPath)
			if err != nil {
				return err
			}
			contractText, err := readDocument(cmd, contractPath)
			if err != nil {
				return err
			}

			draft := a.agent.Draft(emailText, a.agent.Analyze(emailText), contractText)
			return writeJSON(cmd.OutOrStdout(), struct {
				DraftReply string `json:"draft_reply"`
			}{DraftReply: draft})
		},
	}

	cmd.Flags().StringVar(&emailPath, "email", "", `Email file, "-" reads stdin`)
	cmd.Flags().StringVar(&contractPath, "contract", "", "Contract file (text, HTML, PDF or DOCX)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("contract")

	return cmd
}

func newProcessCmd(a *app) *cobra.Command {
	var emailPath, contractPath string

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Analyze an email and draft a reply when a contract is given",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			emailText, err := readDocument(cmd, emailPath)
			if err != nil {
				return err
			}

			var contractText *string
			if contractPath != "" {
				text, err := readDocument(cmd, contractPath)
				if err != nil {
					return err
				}
				contractText = &text
			}

			return writeJSON(cmd.OutOrStdout(), a.agent.ProcessEmail(emailText, contractText))
		},
	}

	cmd.Flags().StringVar(&emailPath, "email", "", `Email file, "-" reads stdin`)
	cmd.Flags().StringVar(&contractPath, "contract", "", "Contract file (text, HTML, PDF or DOCX), no reply is drafted when omitted")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

// readDocument returns the text of path. Stdin and files of unknown type are
// read as plain text, others are converted by extension.
func readDocument(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("io.ReadAll failed: %w", err)
		}
		return string(raw), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("os.ReadFile failed: %w", err)
	}

	if format.DetectType("", path) == "" {
		return string(raw), nil
	}

	text, err := format.Converter{}.Text("", path, raw)
	if err != nil {
		return "", fmt.Errorf("converter.Text failed for %s: %w", path, err)
	}
	return text, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("enc.Encode failed: %w", err)
	}
	return nil
}
