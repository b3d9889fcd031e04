package cmd

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/wesm/tempbox/internal/mediator"
	"github.com/wesm/tempbox/internal/store"
	"github.com/wesm/tempbox/internal/tempmail"
)

var (
	initName   string
	initDomain string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Choose the mailbox name and domain",
	Long: `Choose the mailbox name and domain used by the TUI and the other
commands. Prompts interactively unless both --name and --domain are given
or stdin is not a terminal.

Examples:
  tempbox init
  tempbox init --name alice --domain vwh.sh`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	p, err := loadIdentity(s)
	if err != nil {
		return err
	}
	if initName != "" {
		p.Name = initName
	}
	if initDomain != "" {
		p.Domain = initDomain
	}

	interactive := (initName == "" || initDomain == "") && isatty.IsTerminal(os.Stdin.Fd())
	if interactive {
		domains := availableDomains(cmd)
		if !slices.Contains(domains, p.Domain) {
			domains = append([]string{p.Domain}, domains...)
		}
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Mailbox name").
					Value(&p.Name).
					Validate(validateName),
				huh.NewSelect[string]().
					Title("Domain").
					Options(huh.NewOptions(domains...)...).
					Value(&p.Domain),
			),
		)
		if err := form.RunWithContext(cmd.Context()); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
			return fmt.Errorf("run form: %w", err)
		}
	}

	if err := validateName(p.Name); err != nil {
		return err
	}
	address := p.Name + "@" + p.Domain
	if err := tempmail.ValidateAddress(address); err != nil {
		return err
	}
	if err := saveIdentity(s, p); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Using %s\n", address)
	return nil
}

// availableDomains asks the API for domains, falling back to the configured
// default when it cannot be reached.
func availableDomains(cmd *cobra.Command) []string {
	resp, err := execute(cmd.Context(), mediator.FetchDomains{})
	if err != nil {
		logger.Warn("fetch domains", "error", err)
		return []string{cfg.Mailbox.DefaultDomain}
	}
	if d := resp.(mediator.Domains).Domains; len(d) > 0 {
		return d
	}
	return []string{cfg.Mailbox.DefaultDomain}
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("name must not be empty")
	}
	if strings.ContainsAny(name, "@ \t") {
		return errors.New("name cannot contain '@' or spaces")
	}
	return nil
}

func saveIdentity(s *store.Store, p store.Preferences) error {
	if err := s.SavePreferences(p); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return s.RecordAddress(p.Name+"@"+p.Domain, time.Now())
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initName, "name", "", "mailbox name (local part)")
	initCmd.Flags().StringVar(&initDomain, "domain", "", "mailbox domain")
}
