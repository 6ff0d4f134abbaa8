// Package main provides the entry point for the RiskCheck CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for RiskCheck.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "riskcheck",
		Short: "Fraud risk assessment for online sellers and listings",
		Long: `RiskCheck assesses the fraud risk of online sellers and marketplace
listings. It normalizes the seller's identifier, runs independent public
probes (reachability, domain age, internet footprint, phone and email
checks), combines them with user-supplied evidence, and produces a
risk level with a confidence score.

RiskCheck reports risk and uncertainty; it never labels anyone a scammer.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewVerifyCmd())
	cmd.AddCommand(NewNormalizeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
