package report

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// DefaultTable is the table runs are written to.
const DefaultTable = "bpsim_runs"

const timeLayout = "2006-01-02 15:04:05"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Run is the summary of one core's replay.
type Run struct {
	Name           string
	Core           int
	Branches       uint64
	Mispredictions uint64
	Accuracy       float64
	Started        time.Time
	Finished       time.Time
}

// Execer is the subset of *sql.DB used by Recorder.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Recorder writes runs to a SQL table.
type Recorder struct {
	db    Execer
	table string
	close func() error
}

// Open connects to the MySQL database named by dsn.
func Open(dsn string) (*Recorder, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	r, err := NewRecorder(db, DefaultTable)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	r.close = db.Close

	return r, nil
}

// NewRecorder creates a recorder writing to table through db.
func NewRecorder(db Execer, table string) (*Recorder, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &Recorder{db: db, table: table}, nil
}

// Table returns the table name.
func (r *Recorder) Table() string {
	return r.table
}

// CreateTable creates the run table if it does not exist.
func (r *Recorder) CreateTable(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	core INT NOT NULL,
	branches BIGINT UNSIGNED NOT NULL,
	mispredictions BIGINT UNSIGNED NOT NULL,
	accuracy DOUBLE NOT NULL,
	start_time DATETIME NOT NULL,
	end_time DATETIME NOT NULL
)`, r.table)

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create table %s: %w", r.table, err)
	}
	return nil
}

// Insert writes one run.
func (r *Recorder) Insert(ctx context.Context, run Run) error {
	query := fmt.Sprintf("INSERT INTO %s (name, core, branches, mispredictions, accuracy, start_time, end_time) VALUES (?, ?, ?, ?, ?, ?, ?)", r.table)

	_, err := r.db.ExecContext(ctx, query,
		run.Name,
		run.Core,
		run.Branches,
		run.Mispredictions,
		run.Accuracy,
		run.Started.UTC().Format(timeLayout),
		run.Finished.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s/core %d: %w", run.Name, run.Core, err)
	}
	return nil
}

// Close closes the underlying database if the recorder opened it.
func (r *Recorder) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close()
}
