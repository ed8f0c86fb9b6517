// Package store provides SQLite persistence for contacts, meetings and reminders.
// The store owns a single database handle; every operation commits on its own and
// operations touching more than one row set run in a transaction.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/juju/clock"
	_ "modernc.org/sqlite" // sqlite driver
)

// DefaultUpcomingDays is the window of upcoming meetings shown when caller has no preference
const DefaultUpcomingDays = 7

// DateLayout is the storage format of all date fields. Range queries compare strings,
// so the layout must stay lexicographically sortable.
const DateLayout = "2006-01-02"

// TimeLayout is the storage format of meeting time
const TimeLayout = "15:04"

// ErrNotFound returned when the requested id has no matching row
var ErrNotFound = errors.New("not found")

// Store implements persistence using SQLite
type Store struct {
	db    *sqlx.DB
	clock clock.Clock
}

// Option customizes Store
type Option func(s *Store)

// WithClock sets the clock used to determine "today" for date window queries
func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// Stats holds total counts of stored records
type Stats struct {
	Contacts  int `db:"contacts" json:"contacts"`
	Meetings  int `db:"meetings" json:"meetings"`
	Reminders int `db:"reminders" json:"reminders"`
}

// New opens the SQLite database at dbPath, creating the file if absent, and makes sure
// all tables exist. Rows stored by previous runs are preserved.
func New(dbPath string, opts ...Option) (*Store, error) {
	db, err := sqlx.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// all statements go through one connection, sqlite has a single writer anyway
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	// enable WAL mode, it also forces the file to be opened right away
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to set WAL mode: %w (also failed to close db: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	s := &Store{db: db, clock: clock.WallClock}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.initialize(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to initialize schema: %w (also failed to close db: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// dsn adds pragmas applied by the driver to every new connection
func dsn(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// initialize creates the database schema. Tables are never dropped here, so files
// written by earlier versions keep their rows. Files created before the cascade clause
// was added still get their reminders removed by DeleteMeeting.
func (s *Store) initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS contacts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			phone TEXT,
			email TEXT,
			address TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS meetings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			date TEXT NOT NULL,
			time TEXT NOT NULL,
			location TEXT,
			description TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS reminders (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			meeting_id INTEGER,
			reminder_date TEXT NOT NULL,
			FOREIGN KEY (meeting_id) REFERENCES meetings(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_meetings_date ON meetings(date, time)`,
		`CREATE INDEX IF NOT EXISTS idx_reminders_meeting_id ON reminders(meeting_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reminders_date ON reminders(reminder_date)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// Stats returns total number of contacts, meetings and reminders
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.GetContext(ctx, &st, `SELECT
		(SELECT COUNT(*) FROM contacts) AS contacts,
		(SELECT COUNT(*) FROM meetings) AS meetings,
		(SELECT COUNT(*) FROM reminders) AS reminders`)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to count records: %w", err)
	}
	return st, nil
}

// Today returns the current date in DateLayout according to store's clock
func (s *Store) Today() string {
	return s.clock.Now().Format(DateLayout)
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// likePattern makes a LIKE pattern matching keyword as a plain substring.
// Wildcard characters in keyword are escaped with '\'.
func likePattern(keyword string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(keyword) + "%"
}

// notFound converts sql.ErrNoRows to ErrNotFound and wraps everything else
func notFound(err error, msg string, args ...any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf(msg+": %w", append(args, err)...)
}

// checkAffected returns ErrNotFound if the statement didn't touch any row
func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
