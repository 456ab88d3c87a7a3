package database

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/idguard/internal/model"
)

// FileName is the name of the SQLite file inside the database directory.
const FileName = "idguard.db"

//go:embed migrations/*.sql
var migrations embed.FS

// timestampLayout is fixed-width so that text ordering equals time ordering.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ReportDB stores finished exposure and hygiene reports in SQLite.
type ReportDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	migrator *goose.Provider
}

// Options configures ReportDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging, so the API server can read
	// history while a check is being saved.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a ReportDB in dbDir and migrates it to the latest schema.
// If CreateIfNotExists is false and the database doesn't exist, ErrDatabaseNotFound is returned.
func Open(dbDir string, opts Options) (*ReportDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s (use CreateIfNotExists option to create)", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a new file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	ctx := context.Background()
	if opts.EnableWAL {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	rdb := &ReportDB{db: db, dbPath: dbPath}
	if err := rdb.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return rdb, nil
}

func (r *ReportDB) migrate(ctx context.Context) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, r.db, fsys)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	r.migrator = provider
	return nil
}

// Path returns the path of the database file.
func (r *ReportDB) Path() string {
	return r.dbPath
}

// SchemaVersion returns the applied migration version.
func (r *ReportDB) SchemaVersion(ctx context.Context) (int64, error) {
	v, err := r.migrator.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}

// Close closes the database connection.
func (r *ReportDB) Close() error {
	return r.db.Close()
}

// Save inserts report and returns the id assigned to it. A zero timestamp is
// replaced by the current time. report itself is not modified.
func (r *ReportDB) Save(ctx context.Context, report *model.Report) (int64, error) {
	if report == nil {
		return 0, ErrNilReport
	}
	if _, err := model.ParseModuleType(string(report.ModuleType)); err != nil {
		return 0, err
	}

	ts := report.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	summary, err := json.Marshal(report.Summary)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize summary: %w", err)
	}
	full := report.FullReport
	if len(full) == 0 {
		full = json.RawMessage("{}")
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO reports (timestamp, module_type, summary, full_report) VALUES (?, ?, ?, ?)`,
		formatTimestamp(ts),
		string(report.ModuleType),
		string(summary),
		string(full),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save report: %w", err)
	}
	return result.LastInsertId()
}

// Get retrieves the full report with the given id.
// It returns (nil, nil) when there is no such report.
func (r *ReportDB) Get(ctx context.Context, id int64) (*model.Report, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, timestamp, module_type, summary, full_report FROM reports WHERE id = ?`, id)

	var (
		report    model.Report
		timestamp string
		module    string
		summary   string
		full      string
	)
	err := row.Scan(&report.ID, &timestamp, &module, &summary, &full)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	report.Timestamp = parseTimestamp(timestamp)
	report.ModuleType = model.ModuleType(module)
	if err := json.Unmarshal([]byte(summary), &report.Summary); err != nil {
		return nil, fmt.Errorf("failed to parse summary of report %d: %w", id, err)
	}
	report.FullReport = json.RawMessage(full)
	return &report, nil
}

// ListRecent returns the newest limit reports of moduleType, newest first.
// An empty moduleType lists every type. Listed reports carry no FullReport.
func (r *ReportDB) ListRecent(ctx context.Context, moduleType model.ModuleType, limit int) ([]model.Report, error) {
	reports, _, err := r.ListPage(ctx, moduleType, 1, limit)
	return reports, err
}

// ListPage returns one page of reports of moduleType, newest first, together
// with the total number of matching reports. Pages start at 1.
func (r *ReportDB) ListPage(ctx context.Context, moduleType model.ModuleType, page, perPage int) ([]model.Report, int, error) {
	if page < 1 || perPage < 1 {
		return nil, 0, ErrInvalidLimit
	}

	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reports WHERE (? = '' OR module_type = ?)`,
		string(moduleType), string(moduleType),
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count reports: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
	SELECT id, timestamp, module_type, summary
	FROM reports
	WHERE (? = '' OR module_type = ?)
	ORDER BY timestamp DESC, id DESC
	LIMIT ? OFFSET ?
	`, string(moduleType), string(moduleType), perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := make([]model.Report, 0, perPage)
	for rows.Next() {
		var (
			report    model.Report
			timestamp string
			module    string
			summary   string
		)
		if err := rows.Scan(&report.ID, &timestamp, &module, &summary); err != nil {
			return nil, 0, fmt.Errorf("failed to scan report: %w", err)
		}
		report.Timestamp = parseTimestamp(timestamp)
		report.ModuleType = model.ModuleType(module)
		if err := json.Unmarshal([]byte(summary), &report.Summary); err != nil {
			continue // Skip malformed rows
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, total, nil
}

// Prune deletes all but the newest keep reports of moduleType and returns how
// many were deleted. An empty moduleType prunes across every type.
func (r *ReportDB) Prune(ctx context.Context, moduleType model.ModuleType, keep int) (int64, error) {
	if keep < 0 {
		return 0, ErrInvalidLimit
	}
	result, err := r.db.ExecContext(ctx, `
	DELETE FROM reports
	WHERE (? = '' OR module_type = ?)
	AND id NOT IN (
		SELECT id FROM reports
		WHERE (? = '' OR module_type = ?)
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	)
	`, string(moduleType), string(moduleType), string(moduleType), string(moduleType), keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune reports: %w", err)
	}
	return result.RowsAffected()
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// timestampFormats contains the timestamp formats a row may hold.
// Rows written by Save use the first one.
var timestampFormats = []string{
	timestampLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05", // SQLite default datetime format
}

// parseTimestamp returns the zero time when no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
