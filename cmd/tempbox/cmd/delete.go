package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wesm/tempbox/internal/mediator"
)

var deleteAll bool

var deleteCmd = &cobra.Command{
	Use:   "delete <id> | --all [address]",
	Short: "Delete a message, or every message in a mailbox",
	Long: `Delete a single message by ID, or with --all empty a mailbox.

Without an address, --all empties the saved one.

Examples:
  tempbox delete 01J8Z5Q2
  tempbox delete --all
  tempbox delete --all someone@vwh.sh`,
	Args: func(cmd *cobra.Command, args []string) error {
		if deleteAll {
			return cobra.MaximumNArgs(1)(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if !deleteAll {
			if _, err := execute(cmd.Context(), mediator.DeleteEmail{ID: args[0]}); err != nil {
				return err
			}
			fmt.Fprintf(out, "Deleted %s\n", args[0])
			return nil
		}

		address, err := resolveAddress(args)
		if err != nil {
			return err
		}
		if _, err := execute(cmd.Context(), mediator.DeleteAllEmails{Address: address}); err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted all messages for %s\n", address)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolVar(&deleteAll, "all", false, "delete every message in the mailbox")
}
