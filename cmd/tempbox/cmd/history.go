package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	historyLimit  int
	historyForget string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previously used addresses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		out := cmd.OutOrStdout()
		if historyForget != "" {
			if err := s.ForgetAddress(historyForget); err != nil {
				return err
			}
			fmt.Fprintf(out, "Forgot %s\n", historyForget)
			return nil
		}

		uses, err := s.ListAddresses(historyLimit)
		if err != nil {
			return err
		}
		if len(uses) == 0 {
			fmt.Fprintln(out, "No addresses used yet.")
			return nil
		}

		rows := [][]string{{"ADDRESS", "LAST USED", "FIRST USED", "USES"}}
		for _, u := range uses {
			rows = append(rows, []string{
				u.Address,
				u.LastUsedAt.Local().Format("2006-01-02 15:04"),
				u.FirstUsedAt.Local().Format("2006-01-02 15:04"),
				strconv.Itoa(u.UseCount),
			})
		}
		writeTable(out, rows)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum addresses to show (0 for all)")
	historyCmd.Flags().StringVar(&historyForget, "forget", "", "remove an address from the history")
}
