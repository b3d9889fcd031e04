package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wesm/tempbox/internal/mediator"
	"github.com/wesm/tempbox/internal/tempmail"
)

var (
	showAttachments bool
	showJSON        bool
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a message",
	Long: `Print a message's headers and body. HTML-only messages are converted
to plain text.

Examples:
  tempbox show 01J8Z5Q2
  tempbox show 01J8Z5Q2 --attachments
  tempbox show 01J8Z5Q2 --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		resp, err := execute(ctx, mediator.FetchEmail{ID: args[0]})
		if err != nil {
			return err
		}
		email := resp.(mediator.Email).Email

		var atts []tempmail.Attachment
		if showAttachments && email.HasAttachments {
			resp, err := execute(ctx, mediator.GetAttachments{ID: email.ID})
			if err != nil {
				return err
			}
			atts = resp.(mediator.Attachments).Attachments
		}

		out := cmd.OutOrStdout()
		if showJSON {
			return printJSON(out, struct {
				tempmail.Email
				Attachments []tempmail.Attachment `json:"attachments,omitempty"`
			}{email, atts})
		}
		printEmail(out, email, atts)
		return nil
	},
}

func printEmail(out io.Writer, e tempmail.Email, atts []tempmail.Attachment) {
	fmt.Fprintf(out, "Subject: %s\n", e.Subject)
	fmt.Fprintf(out, "From:    %s\n", e.FromAddress)
	fmt.Fprintf(out, "To:      %s\n", e.ToAddress)
	fmt.Fprintf(out, "Date:    %s\n", e.Received().Format("Monday, January 2, 2006 at 3:04 PM"))
	if e.HasAttachments && len(atts) == 0 {
		fmt.Fprintf(out, "Attachments: %d (use --attachments to list)\n", max(e.AttachmentCount, 1))
	}
	fmt.Fprintln(out, strings.Repeat("-", 60))
	fmt.Fprintln(out, strings.TrimRight(e.Body(), "\n"))

	if len(atts) > 0 {
		fmt.Fprintln(out)
		rows := [][]string{{"ATTACHMENT", "FILENAME", "TYPE", "SIZE"}}
		for _, a := range atts {
			rows = append(rows, []string{a.ID, a.Filename, a.MimeType, fmt.Sprintf("%d", a.Size)})
		}
		writeTable(out, rows)
	}
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showAttachments, "attachments", false, "also list attachments")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "output as JSON")
}
