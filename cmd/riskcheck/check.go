package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/umerontech/riskcheck/internal/config"
	"github.com/umerontech/riskcheck/internal/database"
	"github.com/umerontech/riskcheck/internal/engine"
	"github.com/umerontech/riskcheck/internal/identity"
	rlog "github.com/umerontech/riskcheck/internal/log"
	"github.com/umerontech/riskcheck/internal/model"
	"github.com/umerontech/riskcheck/internal/probe"
	"github.com/umerontech/riskcheck/internal/report"
)

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [platform] [identifier]",
		Short: "Assess the fraud risk of a seller or listing",
		Long: `Check runs a full risk assessment for one seller identifier.

It normalizes the identifier, runs independent public probes
(URL reachability, domain age, internet footprint, phone and email
verification), merges in community reports and user evidence, and
prints a risk level with a confidence score.

Supported platforms include facebook, instagram, whatsapp, olx, daraz,
website, phone, and email. Use 'riskcheck check --file' to assess a
whole list of submissions concurrently.

Examples:
  # Assess a Facebook seller page
  riskcheck check facebook https://facebook.com/some.seller

  # Assess a phone number with seller contact details
  riskcheck check phone +923001234567 --seller-email seller@example.com

  # Include checklist evidence
  riskcheck check olx https://olx.com.pk/item/123 \
    --about yes --reviews no --advance-payment yes --price "PKR 45,000"

  # Batch assessment from a JSON file
  riskcheck check --file submissions.json --batch 4

  # Output JSON report
  riskcheck check --json website https://example-store.pk`,
		Args: cobra.MaximumNArgs(2),
		RunE: runCheckCmd,
	}

	addConfigFlags(cmd.Flags())

	// Seller contact flags
	cmd.Flags().String("seller-phone", "", "Seller phone number to verify independently")
	cmd.Flags().String("seller-email", "", "Seller email address to verify independently")
	cmd.Flags().String("seller-website", "", "Seller website URL to verify independently")
	cmd.Flags().StringArrayP("link", "l", nil,
		"Linked account as platform:value or a bare value (repeatable, first three are checked)")
	cmd.Flags().StringArrayP("attachment", "a", nil,
		"SHA-256 hash of an attached screenshot (repeatable)")

	// Evidence flags
	cmd.Flags().String("intent", "", "What the transaction is about")
	cmd.Flags().String("price", "", "Quoted price as free text")
	cmd.Flags().String("price-range", "", "Price range as free text (used when --price is empty)")
	cmd.Flags().String("about", "", "Profile has an about section (yes/no/unsure)")
	cmd.Flags().String("reviews", "", "Reviews are publicly visible (yes/no/unsure)")
	cmd.Flags().String("address", "", "An address or location is provided (yes/no/unsure)")
	cmd.Flags().String("contact", "", "A phone number or email is shown on the page (yes/no/unsure)")
	cmd.Flags().String("old-posts", "", "Posts older than six months exist (yes/no/unsure)")
	cmd.Flags().String("recent-posts", "", "Activity within the last 30 days (yes/no/unsure)")
	cmd.Flags().String("advance-payment", "", "Seller asked for payment before delivery (yes/no/unsure)")

	// Batch flags
	cmd.Flags().StringP("file", "f", "", "Assess submissions from a JSON file instead of arguments")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize, "Number of concurrent assessments in file mode")

	// Report flags
	cmd.Flags().BoolP("json", "j", false, "Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "", "Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-save", false, "Do not store the submission in the local database")

	return cmd
}

// addConfigFlags registers the flags shared by commands that need a full
// runtime configuration (check and verify).
func addConfigFlags(fs *pflag.FlagSet) {
	fs.StringP("config", "c", "",
		"Configuration file path (default: .riskcheck in current or home directory)")
	fs.String("db-dir", "",
		"Database directory (default: XDG data directory)")
	fs.DurationP("timeout", "t", config.DefaultHTTPTimeout,
		"Timeout for each outbound probe request")
	fs.String("search-api-key", "",
		"Google Custom Search API key (enables the internet footprint probe)")
	fs.String("search-cx", "",
		"Programmable Search Engine identifier")
}

// runCheckCmd executes the check command.
func runCheckCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return err
	}
	if cfg.BatchSize, err = cmd.Flags().GetInt("batch"); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := rlog.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	batchFile, err := cmd.Flags().GetString("file")
	if err != nil {
		return err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return err
	}

	if batchFile != "" {
		if len(args) > 0 {
			return errors.New("positional arguments and --file are mutually exclusive")
		}
		return runBatchCheck(ctx, cfg, batchFile, noSave, logger)
	}

	if len(args) != 2 {
		return errors.New("expected a platform and an identifier (or --file for batch mode)")
	}

	input, err := buildCheckInput(cmd, args)
	if err != nil {
		return err
	}

	return runCheck(ctx, cfg, input, noSave, logger)
}

// buildConfig creates a Config from defaults, the optional config file,
// and command flags, in that order of precedence.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// If the user explicitly specified a config file path, error if not
	// found. Otherwise a missing file just means defaults.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cf.Apply(cfg)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	// Flags override file settings.
	if flags.Changed("timeout") {
		if cfg.HTTPTimeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if v, err := flags.GetString("search-api-key"); err == nil && v != "" {
		cfg.SearchAPIKey = v
	}
	if v, err := flags.GetString("search-cx"); err == nil && v != "" {
		cfg.SearchCX = v
	}
	if v, err := flags.GetString("db-dir"); err == nil && v != "" {
		cfg.DBDir = v
	}

	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildCheckInput assembles the assessment input from flags and arguments.
func buildCheckInput(cmd *cobra.Command, args []string) (*checkInput, error) {
	flags := cmd.Flags()

	in := &checkInput{
		EntityType:  strings.ToLower(strings.TrimSpace(args[0])),
		EntityValue: strings.TrimSpace(args[1]),
	}
	if in.EntityType == "" || in.EntityValue == "" {
		return nil, errors.New("platform and identifier must not be empty")
	}

	var err error
	if in.SellerPhone, err = flags.GetString("seller-phone"); err != nil {
		return nil, err
	}
	if in.SellerEmail, err = flags.GetString("seller-email"); err != nil {
		return nil, err
	}
	if in.SellerWebsite, err = flags.GetString("seller-website"); err != nil {
		return nil, err
	}

	links, err := flags.GetStringArray("link")
	if err != nil {
		return nil, err
	}
	in.Linked = parseLinkedAccounts(links)

	if in.Attachments, err = flags.GetStringArray("attachment"); err != nil {
		return nil, err
	}

	if in.Evidence.Intent, err = flags.GetString("intent"); err != nil {
		return nil, err
	}
	if in.Evidence.Price, err = flags.GetString("price"); err != nil {
		return nil, err
	}
	if in.Evidence.PriceRange, err = flags.GetString("price-range"); err != nil {
		return nil, err
	}

	answers := []struct {
		flag string
		dst  *model.Answer
	}{
		{"about", &in.Evidence.HasAbout},
		{"reviews", &in.Evidence.HasReviews},
		{"address", &in.Evidence.HasAddress},
		{"contact", &in.Evidence.HasContactInfo},
		{"old-posts", &in.Evidence.HasOldPosts},
		{"recent-posts", &in.Evidence.HasRecentPosts},
		{"advance-payment", &in.Evidence.AskedAdvancePayment},
	}
	for _, ans := range answers {
		raw, err := flags.GetString(ans.flag)
		if err != nil {
			return nil, err
		}
		if *ans.dst, err = parseAnswer(raw); err != nil {
			return nil, fmt.Errorf("invalid --%s value: %w", ans.flag, err)
		}
	}

	return in, nil
}

// checkInput is one submission: the engine input plus the attachment
// hashes that only the storage layer cares about.
type checkInput struct {
	EntityType    string                `json:"entity_type"`
	EntityValue   string                `json:"entity_value"`
	Evidence      model.Evidence        `json:"evidence"`
	SellerPhone   string                `json:"seller_phone,omitempty"`
	SellerEmail   string                `json:"seller_email,omitempty"`
	SellerWebsite string                `json:"seller_website,omitempty"`
	Linked        []model.LinkedAccount `json:"linked_accounts,omitempty"`
	Attachments   []string              `json:"attachments,omitempty"`
}

// parseAnswer converts a flag value into a checklist answer.
// An empty string means the question was not answered.
func parseAnswer(raw string) (model.Answer, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return model.AnswerUnanswered, nil
	case "yes", "y", "true":
		return model.AnswerYes, nil
	case "no", "n", "false":
		return model.AnswerNo, nil
	case "unsure", "unknown":
		return model.AnswerUnsure, nil
	default:
		return model.AnswerUnanswered, fmt.Errorf("expected yes, no, or unsure, got %q", raw)
	}
}

// parseLinkedAccounts parses repeatable --link values. Each value is
// either "platform:value" or a bare identifier. A colon followed by
// "//" is part of a URL, not a platform separator.
func parseLinkedAccounts(values []string) []model.LinkedAccount {
	accounts := make([]model.LinkedAccount, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}

		platform, rest, found := strings.Cut(v, ":")
		if found && !strings.HasPrefix(rest, "//") && platform != "" {
			accounts = append(accounts, model.LinkedAccount{
				Platform: strings.ToLower(platform),
				Value:    strings.TrimSpace(rest),
			})
			continue
		}
		accounts = append(accounts, model.LinkedAccount{Value: v})
	}
	return accounts
}

// newProber builds the probe client from the configuration, using the
// database as the search cache.
func newProber(cfg *config.Config, db *database.RiskDB, logger *slog.Logger) *probe.Prober {
	opts := []probe.Option{
		probe.WithTimeout(cfg.HTTPTimeout),
		probe.WithUserAgent(cfg.UserAgent),
		probe.WithMaxBodySize(cfg.MaxBodySize),
		probe.WithBlockPrivateHosts(cfg.BlockPrivateHosts),
		probe.WithPhoneRegion(cfg.PhoneRegion),
		probe.WithSearchEndpoint(cfg.SearchEndpoint),
		probe.WithRDAPEndpoint(cfg.RDAPEndpoint),
		probe.WithSearchDefaults(cfg.SearchResults, cfg.SearchCountry, cfg.SearchLanguage),
		probe.WithCacheTTL(cfg.CacheTTL),
		probe.WithLogger(logger),
	}

	if cfg.SearchConfigured() {
		opts = append(opts, probe.WithSearchCredentials(cfg.SearchAPIKey, cfg.SearchCX))
	}
	if db != nil {
		opts = append(opts, probe.WithCache(db))
	}

	return probe.NewProber(opts...)
}

// runCheck assesses a single submission.
func runCheck(ctx context.Context, cfg *config.Config, in *checkInput, noSave bool, logger *slog.Logger) error {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	normalizer := identity.NewNormalizer(cfg.PhoneRegion)
	eng := engine.New(normalizer, newProber(cfg, db, logger), engine.WithLogger(logger))

	engineInput := resolveEngineInput(ctx, db, normalizer, in, logger)

	fmt.Printf("Assessing %s (%s)...\n", in.EntityValue, in.EntityType)
	startTime := time.Now()

	assessment, err := eng.Assess(ctx, engineInput)
	if err != nil {
		return fmt.Errorf("assessment failed: %w", err)
	}

	elapsed := time.Since(startTime)
	fmt.Printf("Assessment completed in %s\n", elapsed.Round(time.Millisecond))

	if err := outputReport(cfg, assessment); err != nil {
		return fmt.Errorf("report failed: %w", err)
	}

	if !noSave {
		if err := saveSubmission(ctx, db, in, assessment, logger); err != nil {
			logger.Error("failed to save submission", "entity_key", assessment.EntityKey, "error", err)
		}
	}

	return nil
}

// runBatchCheck assesses every submission in the given JSON file.
func runBatchCheck(ctx context.Context, cfg *config.Config, path string, noSave bool, logger *slog.Logger) error {
	items, err := readBatchFile(path)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("no submissions found in %s", path)
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	normalizer := identity.NewNormalizer(cfg.PhoneRegion)
	eng := engine.New(normalizer, newProber(cfg, db, logger), engine.WithLogger(logger))

	inputs := make([]engine.Input, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, resolveEngineInput(ctx, db, normalizer, item, logger))
	}

	fmt.Printf("Starting batch assessment of %d submissions (concurrency: %d)...\n\n",
		len(items), cfg.BatchSize)
	startTime := time.Now()

	bp := engine.NewBatchProcessor(eng,
		engine.WithConcurrency(cfg.BatchSize),
		engine.WithBatchLogger(logger),
	)

	results, err := bp.Process(ctx, inputs)
	if err != nil {
		return err
	}

	for _, result := range results {
		if result.Err != nil {
			fmt.Fprintf(os.Stderr, "[%d/%d] Assessment failed for %s: %v\n",
				result.Index+1, len(results), items[result.Index].EntityValue, result.Err)
			continue
		}

		fmt.Printf("[%d/%d] Assessment completed: %s\n",
			result.Index+1, len(results), result.Assessment.EntityValue)

		if err := outputReport(cfg, result.Assessment); err != nil {
			logger.Error("report failed", "entity_key", result.Assessment.EntityKey, "error", err)
		}

		if !noSave {
			if err := saveSubmission(ctx, db, items[result.Index], result.Assessment, logger); err != nil {
				logger.Error("failed to save submission", "entity_key", result.Assessment.EntityKey, "error", err)
			}
		}
	}

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch assessment completed in %s\n", elapsed.Round(time.Millisecond))

	return nil
}

// readBatchFile loads submissions from a JSON array file.
func readBatchFile(path string) ([]*checkInput, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided batch file path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	var items []*checkInput
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse batch file %s: %w", path, err)
	}

	for i, item := range items {
		item.EntityType = strings.ToLower(strings.TrimSpace(item.EntityType))
		item.EntityValue = strings.TrimSpace(item.EntityValue)
		if item.EntityType == "" || item.EntityValue == "" {
			return nil, fmt.Errorf("submission %d is missing entity_type or entity_value", i+1)
		}
	}

	return items, nil
}

// resolveEngineInput looks up the community and media counters for the
// submission and builds the engine input. Counter lookups degrade to
// zero values on error; a broken counter must not block an assessment.
func resolveEngineInput(ctx context.Context, db *database.RiskDB, normalizer *identity.Normalizer, in *checkInput, logger *slog.Logger) engine.Input {
	entity := normalizer.Normalize(in.EntityType, in.EntityValue)

	community, err := db.CountCommunityReports(ctx, in.EntityType, entity.Key)
	if err != nil {
		logger.Warn("community report lookup failed", "entity_key", entity.Key, "error", err)
		community = model.CommunityCounts{}
	}

	media := model.MediaCounts{Provided: len(in.Attachments) > 0}
	if len(in.Attachments) > 0 {
		reuse, err := db.MediaReuseCount(ctx, entity.Key, in.Attachments)
		if err != nil {
			logger.Warn("media reuse lookup failed", "entity_key", entity.Key, "error", err)
		} else {
			media.ReuseCount = reuse
		}
	}

	return engine.Input{
		EntityType:    in.EntityType,
		EntityValue:   in.EntityValue,
		Evidence:      in.Evidence,
		SellerPhone:   in.SellerPhone,
		SellerEmail:   in.SellerEmail,
		SellerWebsite: in.SellerWebsite,
		Linked:        in.Linked,
		Community:     community,
		Media:         media,
	}
}

// saveSubmission stores the completed assessment and links its media.
func saveSubmission(ctx context.Context, db *database.RiskDB, in *checkInput, a *model.Assessment, logger *slog.Logger) error {
	sub := &database.Submission{
		EntityType:    a.EntityType,
		EntityKey:     a.EntityKey,
		EntityValue:   a.EntityValue,
		Intent:        in.Evidence.Intent,
		PriceRange:    in.Evidence.StakeText(),
		SellerPhone:   in.SellerPhone,
		SellerEmail:   in.SellerEmail,
		SellerWebsite: in.SellerWebsite,
		RiskLevel:     a.RiskLevel,
		Confidence:    a.Confidence,
		Grade:         a.Grade,
		Rationale:     a.Rationale,
		Signals:       a.Signals,
		Evidence:      &in.Evidence,
		Attachments:   in.Attachments,
		Linked:        in.Linked,
	}

	id, err := db.InsertSubmission(ctx, sub)
	if err != nil {
		return fmt.Errorf("failed to save submission: %w", err)
	}

	for _, hash := range in.Attachments {
		if err := db.LinkEntityMedia(ctx, a.EntityType, a.EntityKey, hash); err != nil {
			logger.Warn("failed to link media", "sha256", hash, "error", err)
		}
	}

	logger.Info("submission saved", "id", id, "entity_key", a.EntityKey)
	return nil
}

// outputReport outputs the assessment in the requested format.
func outputReport(cfg *config.Config, a *model.Assessment) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports may contain seller contact details; keep them
		// readable by the owner only.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	// JSON output
	if cfg.JSONReport {
		writer := report.NewJSONWriter(output, report.WithPrettyPrint())
		_, err := writer.Write(a)
		return err
	}

	// Markdown output
	if cfg.MarkdownReport {
		writer := report.NewMarkdownWriter(output)
		_, err := writer.Write(a)
		return err
	}

	// Human-readable report (default)
	writer := report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	_, err := writer.Write(a)
	return err
}
