package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/umerontech/riskcheck/internal/model"
)

// Community report statuses. New reports start pending and only count
// toward risk scoring once approved.
const (
	ReportStatusPending  = "pending"
	ReportStatusApproved = "approved"
	ReportStatusRejected = "rejected"
)

// RiskDB provides SQLite-based storage for assessments and supporting
// data. It manages connection pooling and provides methods for CRUD
// operations.
//
// Design decision: We use one database file for all tables rather than
// separate files per concern. Community counts and attachment reuse
// feed directly into scoring, so keeping them next to submissions
// avoids cross-database queries and simplifies backup.
type RiskDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures RiskDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a RiskDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*RiskDB, error) {
	dbPath := filepath.Join(dbDir, "riskcheck.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses mode=rw to prevent creating new files and
	// mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; keep the pool at a single
	// connection so concurrent batch workers serialize cleanly.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &RiskDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Close closes the database connection.
func (rdb *RiskDB) Close() error {
	return rdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (rdb *RiskDB) createTables() error {
	schema := `
	-- Submissions store completed assessments
	CREATE TABLE IF NOT EXISTS submissions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		entity_type TEXT NOT NULL,
		entity_key TEXT NOT NULL,
		entity_value TEXT NOT NULL,
		intent TEXT,
		price_range TEXT,
		seller_phone TEXT,
		seller_email TEXT,
		seller_website TEXT,
		risk_level TEXT NOT NULL,
		confidence INTEGER NOT NULL,
		grade TEXT NOT NULL,
		rationale TEXT NOT NULL,
		signals_json TEXT NOT NULL,
		evidence_json TEXT,
		attachments_json TEXT,
		linked_accounts_json TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_submissions_entity_key ON submissions(entity_key);
	CREATE INDEX IF NOT EXISTS idx_submissions_entity_type ON submissions(entity_type);

	-- Community reports are user-submitted incidents
	CREATE TABLE IF NOT EXISTS community_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		entity_type TEXT NOT NULL,
		entity_key TEXT NOT NULL,
		entity_value TEXT NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL,
		amount INTEGER,
		evidence_url TEXT,
		reporter_contact TEXT,
		attachments_json TEXT,
		status TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_community_entity_key ON community_reports(entity_key);
	CREATE INDEX IF NOT EXISTS idx_community_status ON community_reports(status);

	-- Entity media links attachments to entities for reuse detection
	CREATE TABLE IF NOT EXISTS entity_media (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		entity_type TEXT NOT NULL,
		entity_key TEXT NOT NULL,
		media_sha256 TEXT NOT NULL,
		UNIQUE(entity_type, entity_key, media_sha256)
	);

	CREATE INDEX IF NOT EXISTS idx_entity_media_key ON entity_media(entity_key);
	CREATE INDEX IF NOT EXISTS idx_entity_media_sha ON entity_media(media_sha256);

	-- Search cache stores raw search responses to limit API usage
	CREATE TABLE IF NOT EXISTS search_cache (
		query_hash TEXT PRIMARY KEY,
		query TEXT NOT NULL,
		response_json TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// Submission represents a stored assessment.
type Submission struct {
	ID            int64
	CreatedAt     time.Time
	EntityType    string
	EntityKey     string
	EntityValue   string
	Intent        string
	PriceRange    string
	SellerPhone   string
	SellerEmail   string
	SellerWebsite string
	RiskLevel     model.Status
	Confidence    int
	Grade         string
	Rationale     string
	Signals       []model.Signal
	Evidence      *model.Evidence
	Attachments   []string
	Linked        []model.LinkedAccount
}

// InsertSubmission stores a completed assessment and returns its ID.
func (rdb *RiskDB) InsertSubmission(ctx context.Context, sub *Submission) (int64, error) {
	signalsJSON, err := json.Marshal(sub.Signals)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize signals: %w", err)
	}
	evidenceJSON, err := json.Marshal(sub.Evidence)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize evidence: %w", err)
	}
	attachmentsJSON, err := json.Marshal(sub.Attachments)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize attachments: %w", err)
	}
	linkedJSON, err := json.Marshal(sub.Linked)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize linked accounts: %w", err)
	}

	query := `
	INSERT INTO submissions (
		entity_type, entity_key, entity_value,
		intent, price_range,
		seller_phone, seller_email, seller_website,
		risk_level, confidence, grade, rationale,
		signals_json, evidence_json, attachments_json, linked_accounts_json
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := rdb.db.ExecContext(ctx, query,
		sub.EntityType,
		sub.EntityKey,
		sub.EntityValue,
		sub.Intent,
		sub.PriceRange,
		sub.SellerPhone,
		sub.SellerEmail,
		sub.SellerWebsite,
		sub.RiskLevel.String(),
		sub.Confidence,
		sub.Grade,
		sub.Rationale,
		string(signalsJSON),
		string(evidenceJSON),
		string(attachmentsJSON),
		string(linkedJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert submission: %w", err)
	}

	return result.LastInsertId()
}

// GetSubmission retrieves a submission by ID.
// Returns nil without error when no submission exists.
func (rdb *RiskDB) GetSubmission(ctx context.Context, id int64) (*Submission, error) {
	query := `
	SELECT id, created_at, entity_type, entity_key, entity_value,
		intent, price_range, seller_phone, seller_email, seller_website,
		risk_level, confidence, grade, rationale,
		signals_json, evidence_json, attachments_json, linked_accounts_json
	FROM submissions
	WHERE id = ?
	`

	sub, err := scanSubmission(rdb.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return sub, nil
}

// SubmissionHistory retrieves past submissions for an entity, newest
// first. A limit of zero or less means no limit.
func (rdb *RiskDB) SubmissionHistory(ctx context.Context, entityType, entityKey string, limit int) ([]*Submission, error) {
	query := `
	SELECT id, created_at, entity_type, entity_key, entity_value,
		intent, price_range, seller_phone, seller_email, seller_website,
		risk_level, confidence, grade, rationale,
		signals_json, evidence_json, attachments_json, linked_accounts_json
	FROM submissions
	WHERE entity_type = ? AND entity_key = ?
	ORDER BY created_at DESC, id DESC
	`
	args := []interface{}{entityType, entityKey}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query submission history: %w", err)
	}
	defer rows.Close()

	var results []*Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		results = append(results, sub)
	}

	return results, rows.Err()
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan code.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSubmission(row rowScanner) (*Submission, error) {
	var sub Submission
	var createdAt string
	var intent, priceRange, phone, email, website sql.NullString
	var riskLevel string
	var signalsJSON string
	var evidenceJSON, attachmentsJSON, linkedJSON sql.NullString

	err := row.Scan(
		&sub.ID,
		&createdAt,
		&sub.EntityType,
		&sub.EntityKey,
		&sub.EntityValue,
		&intent,
		&priceRange,
		&phone,
		&email,
		&website,
		&riskLevel,
		&sub.Confidence,
		&sub.Grade,
		&sub.Rationale,
		&signalsJSON,
		&evidenceJSON,
		&attachmentsJSON,
		&linkedJSON,
	)
	if err != nil {
		return nil, err
	}

	sub.CreatedAt = parseTimestamp(createdAt)
	sub.Intent = intent.String
	sub.PriceRange = priceRange.String
	sub.SellerPhone = phone.String
	sub.SellerEmail = email.String
	sub.SellerWebsite = website.String
	sub.RiskLevel = model.ParseStatus(riskLevel)

	if err := json.Unmarshal([]byte(signalsJSON), &sub.Signals); err != nil {
		return nil, fmt.Errorf("failed to parse signals: %w", err)
	}
	if evidenceJSON.Valid && evidenceJSON.String != "" && evidenceJSON.String != "null" {
		if err := json.Unmarshal([]byte(evidenceJSON.String), &sub.Evidence); err != nil {
			return nil, fmt.Errorf("failed to parse evidence: %w", err)
		}
	}
	if attachmentsJSON.Valid && attachmentsJSON.String != "" {
		if err := json.Unmarshal([]byte(attachmentsJSON.String), &sub.Attachments); err != nil {
			return nil, fmt.Errorf("failed to parse attachments: %w", err)
		}
	}
	if linkedJSON.Valid && linkedJSON.String != "" {
		if err := json.Unmarshal([]byte(linkedJSON.String), &sub.Linked); err != nil {
			return nil, fmt.Errorf("failed to parse linked accounts: %w", err)
		}
	}

	return &sub, nil
}

// CommunityReport represents a user-submitted incident report.
type CommunityReport struct {
	ID              int64
	CreatedAt       time.Time
	EntityType      string
	EntityKey       string
	EntityValue     string
	Category        string
	Description     string
	Amount          int64
	EvidenceURL     string
	ReporterContact string
	Attachments     []string
	Status          string
}

// InsertCommunityReport stores a new incident report in pending status
// and returns its ID.
func (rdb *RiskDB) InsertCommunityReport(ctx context.Context, report *CommunityReport) (int64, error) {
	attachmentsJSON, err := json.Marshal(report.Attachments)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize attachments: %w", err)
	}

	query := `
	INSERT INTO community_reports (
		entity_type, entity_key, entity_value,
		category, description, amount, evidence_url, reporter_contact,
		attachments_json, status
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var amount interface{}
	if report.Amount > 0 {
		amount = report.Amount
	}

	result, err := rdb.db.ExecContext(ctx, query,
		report.EntityType,
		report.EntityKey,
		report.EntityValue,
		report.Category,
		report.Description,
		amount,
		report.EvidenceURL,
		report.ReporterContact,
		string(attachmentsJSON),
		ReportStatusPending,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert community report: %w", err)
	}

	return result.LastInsertId()
}

// SetCommunityReportStatus moves a report to the given status.
// Returns an error when the report does not exist.
func (rdb *RiskDB) SetCommunityReportStatus(ctx context.Context, id int64, status string) error {
	if status != ReportStatusPending && status != ReportStatusApproved && status != ReportStatusRejected {
		return fmt.Errorf("invalid report status %q", status)
	}

	result, err := rdb.db.ExecContext(ctx, "UPDATE community_reports SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return fmt.Errorf("failed to update report status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("community report %d not found", id)
	}

	return nil
}

// GetCommunityReport retrieves a report by ID.
// Returns nil without error when no report exists.
func (rdb *RiskDB) GetCommunityReport(ctx context.Context, id int64) (*CommunityReport, error) {
	query := `
	SELECT id, created_at, entity_type, entity_key, entity_value,
		category, description, amount, evidence_url, reporter_contact,
		attachments_json, status
	FROM community_reports
	WHERE id = ?
	`

	var report CommunityReport
	var createdAt string
	var amount sql.NullInt64
	var evidenceURL, reporterContact, attachmentsJSON sql.NullString

	err := rdb.db.QueryRowContext(ctx, query, id).Scan(
		&report.ID,
		&createdAt,
		&report.EntityType,
		&report.EntityKey,
		&report.EntityValue,
		&report.Category,
		&report.Description,
		&amount,
		&evidenceURL,
		&reporterContact,
		&attachmentsJSON,
		&report.Status,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get community report: %w", err)
	}

	report.CreatedAt = parseTimestamp(createdAt)
	report.Amount = amount.Int64
	report.EvidenceURL = evidenceURL.String
	report.ReporterContact = reporterContact.String
	if attachmentsJSON.Valid && attachmentsJSON.String != "" {
		if err := json.Unmarshal([]byte(attachmentsJSON.String), &report.Attachments); err != nil {
			return nil, fmt.Errorf("failed to parse attachments: %w", err)
		}
	}

	return &report, nil
}

// CountCommunityReports counts approved and pending reports for an
// entity. Rejected reports never feed into scoring.
func (rdb *RiskDB) CountCommunityReports(ctx context.Context, entityType, entityKey string) (model.CommunityCounts, error) {
	query := `
	SELECT
		COUNT(CASE WHEN status = ? THEN 1 END),
		COUNT(CASE WHEN status = ? THEN 1 END)
	FROM community_reports
	WHERE entity_type = ? AND entity_key = ?
	`

	var counts model.CommunityCounts
	err := rdb.db.QueryRowContext(ctx, query,
		ReportStatusApproved, ReportStatusPending, entityType, entityKey,
	).Scan(&counts.Approved, &counts.Pending)
	if err != nil {
		return model.CommunityCounts{}, fmt.Errorf("failed to count community reports: %w", err)
	}

	return counts, nil
}

// LinkEntityMedia records that an attachment was submitted for an
// entity. Duplicate links are ignored.
func (rdb *RiskDB) LinkEntityMedia(ctx context.Context, entityType, entityKey, sha256 string) error {
	query := `
	INSERT OR IGNORE INTO entity_media (entity_type, entity_key, media_sha256)
	VALUES (?, ?, ?)
	`

	if _, err := rdb.db.ExecContext(ctx, query, entityType, entityKey, sha256); err != nil {
		return fmt.Errorf("failed to link entity media: %w", err)
	}

	return nil
}

// MediaReuseCount counts how many other entities have submitted any of
// the given attachment hashes. A nonzero count means the same
// screenshot circulates across listings, a strong recycled-scam signal.
func (rdb *RiskDB) MediaReuseCount(ctx context.Context, entityKey string, sha256s []string) (int, error) {
	if len(sha256s) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(sha256s)), ",")
	query := fmt.Sprintf(`
	SELECT COUNT(DISTINCT entity_key) FROM entity_media
	WHERE media_sha256 IN (%s) AND entity_key != ?
	`, placeholders)

	args := make([]interface{}, 0, len(sha256s)+1)
	for _, sha := range sha256s {
		args = append(args, sha)
	}
	args = append(args, entityKey)

	var count int
	if err := rdb.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count media reuse: %w", err)
	}

	return count, nil
}

// GetSearch returns the cached search payload for key if it is younger
// than ttl. Implements the probe package's cache interface; lookup
// failures are treated as misses so a broken cache degrades to direct
// API calls.
func (rdb *RiskDB) GetSearch(key string, ttl time.Duration) ([]byte, bool) {
	query := `
	SELECT response_json FROM search_cache
	WHERE query_hash = ? AND created_at > datetime('now', ?)
	`
	modifier := fmt.Sprintf("-%d seconds", int(ttl.Seconds()))

	var payload string
	err := rdb.db.QueryRowContext(context.Background(), query, key, modifier).Scan(&payload)
	if err != nil {
		return nil, false
	}

	return []byte(payload), true
}

// PutSearch stores a search payload, replacing any previous entry for
// the same key.
func (rdb *RiskDB) PutSearch(key, searchQuery string, payload []byte) error {
	query := `
	INSERT OR REPLACE INTO search_cache (query_hash, query, response_json, created_at)
	VALUES (?, ?, ?, CURRENT_TIMESTAMP)
	`

	if _, err := rdb.db.ExecContext(context.Background(), query, key, searchQuery, string(payload)); err != nil {
		return fmt.Errorf("failed to store search cache entry: %w", err)
	}

	return nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
