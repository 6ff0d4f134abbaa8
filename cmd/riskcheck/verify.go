package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	rlog "github.com/umerontech/riskcheck/internal/log"
	"github.com/umerontech/riskcheck/internal/probe"
)

// NewVerifyCmd creates the verify command group.
// Each subcommand runs one probe in isolation, which is useful for
// debugging why a full assessment produced a particular signal.
func NewVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Run a single verification probe",
		Long: `Verify runs one public probe in isolation and prints the raw result.

Examples:
  # Validate a phone number
  riskcheck verify phone +923001234567

  # Look up MX records for an email domain
  riskcheck verify email seller@example.com

  # Check whether a URL is reachable
  riskcheck verify url https://example-store.pk

  # Look up domain registration age
  riskcheck verify domain example-store.pk

  # Run an internet footprint search (requires search credentials)
  riskcheck verify footprint "+923001234567" --hint phone

  # Extract identifiers from pasted text
  riskcheck verify extract listing.txt`,
	}

	addConfigFlags(cmd.PersistentFlags())

	cmd.AddCommand(newVerifyPhoneCmd())
	cmd.AddCommand(newVerifyEmailCmd())
	cmd.AddCommand(newVerifyURLCmd())
	cmd.AddCommand(newVerifyDomainCmd())
	cmd.AddCommand(newVerifyFootprintCmd())
	cmd.AddCommand(newVerifyExtractCmd())

	return cmd
}

// newVerifyProber builds a prober for a verify subcommand.
// Verify runs without the database, so search results are not cached.
func newVerifyProber(cmd *cobra.Command) (*probe.Prober, error) {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	logger := rlog.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	return newProber(cfg, nil, logger), nil
}

// newVerifyPhoneCmd creates the verify phone subcommand.
func newVerifyPhoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "phone [number]",
		Short: "Validate a phone number and show its canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newVerifyProber(cmd)
			if err != nil {
				return err
			}

			result, err := p.CheckPhone(args[0])
			if err != nil {
				return fmt.Errorf("phone check failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Input:  %s\n", result.Input)
			fmt.Fprintf(out, "E.164:  %s\n", result.E164)
			fmt.Fprintf(out, "Region: %s\n", result.Region)
			fmt.Fprintf(out, "Valid:  %t\n", result.Valid)
			return nil
		},
	}
}

// newVerifyEmailCmd creates the verify email subcommand.
func newVerifyEmailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "email [address]",
		Short: "Check whether an email domain has MX records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newVerifyProber(cmd)
			if err != nil {
				return err
			}

			result, err := p.CheckEmailMX(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("MX lookup failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Domain: %s\n", result.Domain)
			fmt.Fprintf(out, "Has MX: %t\n", result.HasMX)
			for _, host := range result.Hosts {
				fmt.Fprintf(out, "  MX: %s\n", host)
			}
			return nil
		},
	}
}

// newVerifyURLCmd creates the verify url subcommand.
func newVerifyURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "url [url]",
		Short: "Check whether a URL is reachable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newVerifyProber(cmd)
			if err != nil {
				return err
			}

			result, err := p.CheckReachability(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("reachability check failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Status:       %d\n", result.StatusCode)
			fmt.Fprintf(out, "Final URL:    %s\n", result.FinalURL)
			fmt.Fprintf(out, "HTTPS:        %t\n", result.HTTPS)
			fmt.Fprintf(out, "Content-Type: %s\n", result.ContentType)
			fmt.Fprintf(out, "Reachable:    %t\n", result.Reachable())
			return nil
		},
	}
}

// newVerifyDomainCmd creates the verify domain subcommand.
func newVerifyDomainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "domain [domain-or-url]",
		Short: "Look up domain registration age via RDAP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newVerifyProber(cmd)
			if err != nil {
				return err
			}

			domain := args[0]
			if strings.Contains(domain, "/") || strings.Contains(domain, "://") {
				registrable, err := probe.RegistrableDomain(domain)
				if err != nil {
					return fmt.Errorf("could not extract domain from %q: %w", args[0], err)
				}
				domain = registrable
			}

			result, err := p.DomainAge(cmd.Context(), domain)
			if err != nil {
				return fmt.Errorf("domain age lookup failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Domain:     %s\n", result.Domain)
			fmt.Fprintf(out, "Registered: %s\n", result.RegisteredAt.Format("2006-01-02"))
			fmt.Fprintf(out, "Age:        %d days\n", result.AgeDays)
			return nil
		},
	}
}

// newVerifyFootprintCmd creates the verify footprint subcommand.
func newVerifyFootprintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "footprint [identifier]",
		Short: "Search the public internet footprint of an identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hint, err := cmd.Flags().GetString("hint")
			if err != nil {
				return err
			}

			p, err := newVerifyProber(cmd)
			if err != nil {
				return err
			}

			result := p.Footprint(cmd.Context(), args[0], hint)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Enabled:       %t\n", result.Enabled)
			fmt.Fprintf(out, "Query:         %s\n", result.Query)
			fmt.Fprintf(out, "Total results: %d\n", result.Total)
			fmt.Fprintf(out, "Negative hits: %d\n", result.NegativeHits)
			if result.Err != "" {
				fmt.Fprintf(out, "Error:         %s\n", result.Err)
			}
			for _, domain := range result.TopDomains {
				fmt.Fprintf(out, "  %s\n", domain)
			}
			return nil
		},
	}

	cmd.Flags().String("hint", "", "Platform hint appended to the search query")

	return cmd
}

// newVerifyExtractCmd creates the verify extract subcommand.
func newVerifyExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract [file]",
		Short: "Extract emails, URLs, and phone numbers from text",
		Long: `Extract pulls candidate identifiers out of free text such as a pasted
listing description or chat transcript. Reads from the given file, or
from standard input when no file is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if len(args) == 1 {
				data, err = os.ReadFile(args[0]) //nolint:gosec // User-provided input path is intentional
				if err != nil {
					return fmt.Errorf("failed to read input file: %w", err)
				}
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
			}

			candidates := probe.ExtractCandidates(string(data))

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Emails (%d):\n", len(candidates.Emails))
			for _, v := range candidates.Emails {
				fmt.Fprintf(out, "  %s\n", v)
			}
			fmt.Fprintf(out, "URLs (%d):\n", len(candidates.URLs))
			for _, v := range candidates.URLs {
				fmt.Fprintf(out, "  %s\n", v)
			}
			fmt.Fprintf(out, "Phones (%d):\n", len(candidates.Phones))
			for _, v := range candidates.Phones {
				fmt.Fprintf(out, "  %s\n", v)
			}
			return nil
		},
	}
}
