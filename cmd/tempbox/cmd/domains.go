package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wesm/tempbox/internal/mediator"
)

var domainsJSON bool

var domainsCmd = &cobra.Command{
	Use:   "domains",
	Short: "List the domains addresses can be created under",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := execute(cmd.Context(), mediator.FetchDomains{})
		if err != nil {
			return err
		}
		domains := resp.(mediator.Domains).Domains

		out := cmd.OutOrStdout()
		if domainsJSON {
			return printJSON(out, domains)
		}
		if len(domains) == 0 {
			fmt.Fprintln(out, "No domains available.")
			return nil
		}
		for _, d := range domains {
			fmt.Fprintln(out, d)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(domainsCmd)
	domainsCmd.Flags().BoolVar(&domainsJSON, "json", false, "output as JSON")
}
