package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"github.com/wesm/tempbox/internal/mediator"
	"github.com/wesm/tempbox/internal/tempmail"
)

var (
	listPage int
	listJSON bool
)

var listCmd = &cobra.Command{
	Use:   "list [address]",
	Short: "List messages in a mailbox",
	Long: `List one page of messages for an address, newest first.

Without an address the saved one is used.

Examples:
  tempbox list
  tempbox list someone@vwh.sh --page 2
  tempbox list --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if listPage < 1 {
			return fmt.Errorf("--page must be at least 1, got %d", listPage)
		}
		address, err := resolveAddress(args)
		if err != nil {
			return err
		}

		// Page 1 is the plain list; later pages go through the "more" path,
		// whose offset is (counter+1) * page size.
		var c mediator.Command = mediator.FetchEmails{Address: address}
		if listPage > 1 {
			c = mediator.FetchMoreEmails{Address: address, Offset: listPage - 2}
		}
		resp, err := execute(cmd.Context(), c)
		if err != nil {
			return err
		}

		var emails []tempmail.Email
		switch r := resp.(type) {
		case mediator.Emails:
			emails = r.Emails
		case mediator.EmailsMore:
			emails = r.Emails
		}

		out := cmd.OutOrStdout()
		if listJSON {
			if emails == nil {
				emails = []tempmail.Email{}
			}
			return printJSON(out, emails)
		}
		if len(emails) == 0 {
			fmt.Fprintf(out, "No messages for %s.\n", address)
			return nil
		}
		outputEmailTable(out, emails)
		return nil
	},
}

// outputEmailTable prints message summaries as an aligned table.
func outputEmailTable(out io.Writer, emails []tempmail.Email) {
	rows := [][]string{{"ID", "RECEIVED", "FROM", "SUBJECT", "ATT"}}
	for _, e := range emails {
		att := ""
		if e.HasAttachments {
			att = fmt.Sprintf("%d", max(e.AttachmentCount, 1))
		}
		rows = append(rows, []string{
			e.ID,
			e.Received().Format("2006-01-02 15:04"),
			truncate(e.FromAddress, 30),
			truncate(e.Subject, 50),
			att,
		})
	}
	writeTable(out, rows)
	fmt.Fprintf(out, "\nShowing %d messages\n", len(emails))
}

var flatten = strings.NewReplacer("\r", "", "\n", " ", "\t", " ")

// truncate shortens s to at most n terminal cells, flattening whitespace that
// would break the table.
func truncate(s string, n int) string {
	return runewidth.Truncate(flatten.Replace(s), n, "...")
}

var countCmd = &cobra.Command{
	Use:   "count [address]",
	Short: "Print the number of messages in a mailbox",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		address, err := resolveAddress(args)
		if err != nil {
			return err
		}
		resp, err := execute(cmd.Context(), mediator.CountEmails{Address: address})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), resp.(mediator.Count).Count)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(countCmd)
	listCmd.Flags().IntVar(&listPage, "page", 1, "page number (1-based)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
}
