package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/umerontech/riskcheck/internal/config"
	"github.com/umerontech/riskcheck/internal/identity"
)

// NewNormalizeCmd creates the normalize command.
func NewNormalizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize [platform] [identifier]",
		Short: "Show the canonical form and deduplication key of an identifier",
		Long: `Normalize shows how RiskCheck canonicalizes an identifier.

The value is the displayable form (scheme normalized, tracking
parameters stripped, phone numbers in E.164). The key is what
submissions, community reports, and media links correlate on: two
inputs with the same key are the same entity.

Examples:
  riskcheck normalize facebook "FB.com/Some.Seller?ref=share"
  riskcheck normalize phone "0300 1234567"`,
		Args: cobra.ExactArgs(2),
		RunE: runNormalizeCmd,
	}

	cmd.Flags().String("region", config.DefaultPhoneRegion,
		"Region for parsing phone numbers without a country code")

	return cmd
}

// runNormalizeCmd executes the normalize command.
func runNormalizeCmd(cmd *cobra.Command, args []string) error {
	region, err := cmd.Flags().GetString("region")
	if err != nil {
		return err
	}

	entityType := strings.ToLower(strings.TrimSpace(args[0]))
	entityValue := strings.TrimSpace(args[1])
	if entityType == "" || entityValue == "" {
		return errors.New("platform and identifier must not be empty")
	}

	entity := identity.NewNormalizer(region).Normalize(entityType, entityValue)

	fmt.Fprintf(cmd.OutOrStdout(), "Value: %s\n", entity.Value)
	fmt.Fprintf(cmd.OutOrStdout(), "Key:   %s\n", entity.Key)

	return nil
}
