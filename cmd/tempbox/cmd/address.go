package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wesm/tempbox/internal/session"
)

var addressNew bool

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print the saved mailbox address",
	Long: `Print the saved mailbox address. With --new a fresh random name is
generated under the same domain and saved.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		p, err := loadIdentity(s)
		if err != nil {
			return err
		}
		if addressNew {
			p.Name = session.GenerateName(cfg.Mailbox.NameLength)
			if err := saveIdentity(s, p); err != nil {
				return err
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), p.Name+"@"+p.Domain)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addressCmd)
	addressCmd.Flags().BoolVar(&addressNew, "new", false, "generate and save a new random name")
}
