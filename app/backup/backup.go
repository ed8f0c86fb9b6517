// Package backup exports the organizer store to a YAML document and imports it back
package backup

//go:generate go run ./internal/schema schema.json

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/invopop/jsonschema"
	"github.com/juju/clock"
	"gopkg.in/yaml.v3"

	"github.com/umputun/organizer/app/organizer"
	"github.com/umputun/organizer/app/store"
)

// Document is the content of a backup file
type Document struct {
	ExportedAt time.Time        `yaml:"exported_at" json:"exported_at" jsonschema:"description=time of export"`
	Contacts   []store.Contact  `yaml:"contacts" json:"contacts" jsonschema:"description=all contacts"`
	Meetings   []store.Meeting  `yaml:"meetings" json:"meetings" jsonschema:"description=all meetings"`
	Reminders  []store.Reminder `yaml:"reminders" json:"reminders" jsonschema:"description=reminders referencing meetings by id"`
}

// Store defines bulk operations used for backup, implemented by store.Store
type Store interface {
	Export(ctx context.Context) (store.Snapshot, error)
	Import(ctx context.Context, snap store.Snapshot) (store.Snapshot, error)
}

// Service makes and restores backups
type Service struct {
	store Store
	clock clock.Clock
}

// New makes backup service for the store, clk sets exported_at, wall clock if nil
func New(st Store, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.WallClock
	}
	return &Service{store: st, clock: clk}
}

// Export writes all records as YAML document to w
func (s *Service) Export(ctx context.Context, w io.Writer) (Document, error) {
	snap, err := s.store.Export(ctx)
	if err != nil {
		return Document{}, fmt.Errorf("failed to export store: %w", err)
	}
	doc := Document{
		ExportedAt: s.clock.Now().UTC().Truncate(time.Second),
		Contacts:   snap.Contacts,
		Meetings:   snap.Meetings,
		Reminders:  snap.Reminders,
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err = enc.Encode(doc); err != nil {
		return Document{}, fmt.Errorf("failed to encode backup: %w", err)
	}
	if err = enc.Close(); err != nil {
		return Document{}, fmt.Errorf("failed to close backup encoder: %w", err)
	}
	log.Printf("[INFO] exported %d contacts, %d meetings, %d reminders",
		len(doc.Contacts), len(doc.Meetings), len(doc.Reminders))
	return doc, nil
}

// Import reads YAML document from r and adds all its records to the store.
// Records get new ids, reminders are relinked to the new meeting ids.
// Nothing is imported if any record is invalid.
func (s *Service) Import(ctx context.Context, r io.Reader) (store.Stats, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return store.Stats{}, errors.New("empty backup")
		}
		return store.Stats{}, fmt.Errorf("failed to decode backup: %w", err)
	}

	if err := Verify(doc); err != nil {
		return store.Stats{}, err
	}

	res, err := s.store.Import(ctx, store.Snapshot{Contacts: doc.Contacts, Meetings: doc.Meetings, Reminders: doc.Reminders})
	if err != nil {
		return store.Stats{}, fmt.Errorf("failed to import backup: %w", err)
	}
	stats := store.Stats{Contacts: len(res.Contacts), Meetings: len(res.Meetings), Reminders: len(res.Reminders)}
	log.Printf("[INFO] imported %d contacts, %d meetings, %d reminders exported at %s",
		stats.Contacts, stats.Meetings, stats.Reminders, doc.ExportedAt.Format(time.RFC3339))
	return stats, nil
}

// Verify checks all records of the document, reminders must reference meetings of the same document
func Verify(doc Document) error {
	for i, c := range doc.Contacts {
		if err := organizer.ValidateContact(c); err != nil {
			return fmt.Errorf("contact %d: %w", i+1, err)
		}
	}
	meetings := make(map[int64]bool, len(doc.Meetings))
	for i, m := range doc.Meetings {
		if err := organizer.ValidateMeeting(m); err != nil {
			return fmt.Errorf("meeting %d: %w", i+1, err)
		}
		if meetings[m.ID] {
			return fmt.Errorf("meeting %d: %w", i+1, &organizer.ValidationError{Field: "id", Reason: fmt.Sprintf("duplicate id %d", m.ID)})
		}
		meetings[m.ID] = true
	}
	for i, r := range doc.Reminders {
		if err := organizer.ValidateDate("reminder_date", r.ReminderDate); err != nil {
			return fmt.Errorf("reminder %d: %w", i+1, err)
		}
		if !meetings[r.MeetingID] {
			return fmt.Errorf("reminder %d: %w", i+1,
				&organizer.ValidationError{Field: "meeting_id", Reason: fmt.Sprintf("unknown meeting %d", r.MeetingID)})
		}
	}
	return nil
}

// GenerateSchema generates a JSON schema for the backup Document
func GenerateSchema() *jsonschema.Schema {
	schema := jsonschema.Reflect(&Document{})
	schema.Title = "Organizer Backup Schema"
	schema.Description = "Schema for organizer YAML backup file"
	schema.Version = "1.0.0"
	return schema
}
