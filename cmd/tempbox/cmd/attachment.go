package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wesm/tempbox/internal/launch"
	"github.com/wesm/tempbox/internal/tempmail"
)

var attachmentOpen bool

// opener launches URLs; tests replace it.
var opener launch.Opener = launch.Default

var attachmentCmd = &cobra.Command{
	Use:   "attachment <attachment-id>",
	Short: "Print or open an attachment's download URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := tempmail.AttachmentURL(cfg.AttachmentBaseURL(), args[0])
		if !attachmentOpen {
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		}
		if err := opener.Open(url); err != nil {
			return fmt.Errorf("open %s: %w", url, err)
		}
		logger.Debug("opened attachment", "url", url)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(attachmentCmd)
	attachmentCmd.Flags().BoolVar(&attachmentOpen, "open", false, "open with the system handler")
}
