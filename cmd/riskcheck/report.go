package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/umerontech/riskcheck/internal/config"
	"github.com/umerontech/riskcheck/internal/database"
	"github.com/umerontech/riskcheck/internal/identity"
)

// NewReportCmd creates the report command group for community reports.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Manage community incident reports",
		Long: `Report manages community incident reports about sellers.

New reports always start in pending status and only influence risk
scoring as a warning. A moderator approves or rejects them; only
approved reports count as strong evidence.

Examples:
  # Submit a report about a seller
  riskcheck report submit facebook https://facebook.com/some.seller \
    --category advance_payment --description "Paid, never delivered" \
    --amount 15000

  # Moderate reports
  riskcheck report approve 3
  riskcheck report reject 4

  # Show report counters for a seller
  riskcheck report counts facebook https://facebook.com/some.seller

  # Show past assessments of a seller
  riskcheck report history facebook https://facebook.com/some.seller`,
	}

	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .riskcheck in current or home directory)")
	cmd.PersistentFlags().String("db-dir", "",
		"Database directory (default: XDG data directory)")

	cmd.AddCommand(newReportSubmitCmd())
	cmd.AddCommand(newReportApproveCmd())
	cmd.AddCommand(newReportRejectCmd())
	cmd.AddCommand(newReportCountsCmd())
	cmd.AddCommand(newReportHistoryCmd())

	return cmd
}

// openReportDB builds the configuration and opens the database for a
// report subcommand.
func openReportDB(cmd *cobra.Command) (*database.RiskDB, *config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, nil, err
	}

	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cf.Apply(cfg)
	} else if explicitConfigPath {
		return nil, nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	if v, err := cmd.Flags().GetString("db-dir"); err == nil && v != "" {
		cfg.DBDir = v
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	return db, cfg, nil
}

// normalizeReportTarget validates and normalizes the platform/identifier
// arguments shared by several subcommands.
func normalizeReportTarget(cfg *config.Config, args []string) (entityType, entityValue, entityKey string, err error) {
	entityType = strings.ToLower(strings.TrimSpace(args[0]))
	entityValue = strings.TrimSpace(args[1])
	if entityType == "" || entityValue == "" {
		return "", "", "", errors.New("platform and identifier must not be empty")
	}

	entity := identity.NewNormalizer(cfg.PhoneRegion).Normalize(entityType, entityValue)
	return entityType, entity.Value, entity.Key, nil
}

// newReportSubmitCmd creates the report submit subcommand.
func newReportSubmitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit [platform] [identifier]",
		Short: "Submit a community incident report (starts as pending)",
		Args:  cobra.ExactArgs(2),
		RunE:  runReportSubmitCmd,
	}

	cmd.Flags().String("category", "", "Incident category (e.g. advance_payment, fake_product)")
	cmd.Flags().StringP("description", "d", "", "What happened, in the reporter's words")
	cmd.Flags().Int64("amount", 0, "Amount lost, in whole currency units")
	cmd.Flags().String("evidence-url", "", "URL of supporting evidence (chat export, listing)")
	cmd.Flags().String("contact", "", "Reporter contact for follow-up (kept private)")
	cmd.Flags().StringArrayP("attachment", "a", nil, "SHA-256 hash of an attached screenshot (repeatable)")

	return cmd
}

// runReportSubmitCmd executes the report submit subcommand.
func runReportSubmitCmd(cmd *cobra.Command, args []string) error {
	db, cfg, err := openReportDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	entityType, entityValue, entityKey, err := normalizeReportTarget(cfg, args)
	if err != nil {
		return err
	}

	rep := &database.CommunityReport{
		EntityType:  entityType,
		EntityKey:   entityKey,
		EntityValue: entityValue,
	}

	if rep.Category, err = cmd.Flags().GetString("category"); err != nil {
		return err
	}
	if rep.Description, err = cmd.Flags().GetString("description"); err != nil {
		return err
	}
	if rep.Amount, err = cmd.Flags().GetInt64("amount"); err != nil {
		return err
	}
	if rep.EvidenceURL, err = cmd.Flags().GetString("evidence-url"); err != nil {
		return err
	}
	if rep.ReporterContact, err = cmd.Flags().GetString("contact"); err != nil {
		return err
	}
	if rep.Attachments, err = cmd.Flags().GetStringArray("attachment"); err != nil {
		return err
	}

	if rep.Description == "" {
		return errors.New("a description is required (--description)")
	}

	ctx := cmd.Context()
	id, err := db.InsertCommunityReport(ctx, rep)
	if err != nil {
		return fmt.Errorf("failed to submit report: %w", err)
	}

	for _, hash := range rep.Attachments {
		if err := db.LinkEntityMedia(ctx, entityType, entityKey, hash); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to link media %s: %v\n", hash, err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Report %d submitted for %s (status: %s)\n",
		id, entityValue, database.ReportStatusPending)
	fmt.Fprintln(cmd.OutOrStdout(), "Pending reports show as a warning only until a moderator approves them.")

	return nil
}

// newReportApproveCmd creates the report approve subcommand.
func newReportApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve [report-id]",
		Short: "Approve a pending report so it counts as strong evidence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReportModerateCmd(cmd, args, database.ReportStatusApproved)
		},
	}
}

// newReportRejectCmd creates the report reject subcommand.
func newReportRejectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reject [report-id]",
		Short: "Reject a report so it no longer influences scoring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReportModerateCmd(cmd, args, database.ReportStatusRejected)
		},
	}
}

// runReportModerateCmd sets the moderation status for one report.
func runReportModerateCmd(cmd *cobra.Command, args []string, status string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid report ID %q: %w", args[0], err)
	}

	db, _, err := openReportDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.SetCommunityReportStatus(cmd.Context(), id, status); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Report %d is now %s\n", id, status)
	return nil
}

// newReportCountsCmd creates the report counts subcommand.
func newReportCountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "counts [platform] [identifier]",
		Short: "Show community-report counters for a seller",
		Args:  cobra.ExactArgs(2),
		RunE:  runReportCountsCmd,
	}
}

// runReportCountsCmd executes the report counts subcommand.
func runReportCountsCmd(cmd *cobra.Command, args []string) error {
	db, cfg, err := openReportDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	entityType, entityValue, entityKey, err := normalizeReportTarget(cfg, args)
	if err != nil {
		return err
	}

	counts, err := db.CountCommunityReports(cmd.Context(), entityType, entityKey)
	if err != nil {
		return fmt.Errorf("failed to count reports: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Entity:   %s (%s)\n", entityValue, entityType)
	fmt.Fprintf(cmd.OutOrStdout(), "Approved: %d\n", counts.Approved)
	fmt.Fprintf(cmd.OutOrStdout(), "Pending:  %d\n", counts.Pending)

	return nil
}

// newReportHistoryCmd creates the report history subcommand.
func newReportHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [platform] [identifier]",
		Short: "Show past assessments of a seller",
		Args:  cobra.ExactArgs(2),
		RunE:  runReportHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 10, "Maximum number of assessments to show (0 for all)")

	return cmd
}

// runReportHistoryCmd executes the report history subcommand.
func runReportHistoryCmd(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	db, cfg, err := openReportDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	entityType, entityValue, entityKey, err := normalizeReportTarget(cfg, args)
	if err != nil {
		return err
	}

	subs, err := db.SubmissionHistory(cmd.Context(), entityType, entityKey, limit)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if len(subs) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No assessments recorded for %s (%s)\n", entityValue, entityType)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Assessment history for %s (%s):\n\n", entityValue, entityType)
	for _, sub := range subs {
		fmt.Fprintf(cmd.OutOrStdout(), "  #%-5d %s  %-8s %-10s confidence %d%%\n",
			sub.ID,
			sub.CreatedAt.Format("2006-01-02 15:04"),
			sub.RiskLevel.String(),
			sub.Grade,
			sub.Confidence,
		)
	}

	return nil
}
