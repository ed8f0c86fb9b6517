package store

import (
	"context"
	"fmt"
)

// Snapshot is a consistent copy of all stored records
type Snapshot struct {
	Contacts  []Contact  `json:"contacts" yaml:"contacts"`
	Meetings  []Meeting  `json:"meetings" yaml:"meetings"`
	Reminders []Reminder `json:"reminders" yaml:"reminders"`
}

// Export reads all records inside a single read transaction
func (s *Store) Export(ctx context.Context) (Snapshot, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	snap := Snapshot{Contacts: []Contact{}, Meetings: []Meeting{}, Reminders: []Reminder{}}
	if err = tx.SelectContext(ctx, &snap.Contacts, `SELECT `+contactColumns+` FROM contacts ORDER BY id`); err != nil {
		return Snapshot{}, fmt.Errorf("failed to export contacts: %w", err)
	}
	if err = tx.SelectContext(ctx, &snap.Meetings, `SELECT `+meetingColumns+` FROM meetings ORDER BY id`); err != nil {
		return Snapshot{}, fmt.Errorf("failed to export meetings: %w", err)
	}
	if err = tx.SelectContext(ctx, &snap.Reminders,
		`SELECT id, COALESCE(meeting_id, 0) AS meeting_id, reminder_date FROM reminders ORDER BY id`); err != nil {
		return Snapshot{}, fmt.Errorf("failed to export reminders: %w", err)
	}
	return snap, nil
}

// Import adds all records of the snapshot in one transaction, either everything is stored or nothing.
// Every record gets a new id; reminders are linked to the new ids of their meetings.
// Returns the snapshot with the assigned ids.
func (s *Store) Import(ctx context.Context, snap Snapshot) (Snapshot, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res := Snapshot{
		Contacts:  make([]Contact, 0, len(snap.Contacts)),
		Meetings:  make([]Meeting, 0, len(snap.Meetings)),
		Reminders: make([]Reminder, 0, len(snap.Reminders)),
	}

	for _, c := range snap.Contacts {
		r, err := tx.NamedExecContext(ctx,
			`INSERT INTO contacts (name, phone, email, address) VALUES (:name, :phone, :email, :address)`, c)
		if err != nil {
			return Snapshot{}, fmt.Errorf("failed to import contact %q: %w", c.Name, err)
		}
		if c.ID, err = r.LastInsertId(); err != nil {
			return Snapshot{}, fmt.Errorf("failed to get id of contact %q: %w", c.Name, err)
		}
		res.Contacts = append(res.Contacts, c)
	}

	meetingIDs := make(map[int64]int64, len(snap.Meetings)) // old id -> new id
	for _, m := range snap.Meetings {
		r, err := tx.NamedExecContext(ctx,
			`INSERT INTO meetings (date, time, location, description) VALUES (:date, :time, :location, :description)`, m)
		if err != nil {
			return Snapshot{}, fmt.Errorf("failed to import meeting %d: %w", m.ID, err)
		}
		newID, err := r.LastInsertId()
		if err != nil {
			return Snapshot{}, fmt.Errorf("failed to get id of meeting %d: %w", m.ID, err)
		}
		meetingIDs[m.ID] = newID
		m.ID = newID
		res.Meetings = append(res.Meetings, m)
	}

	for _, rm := range snap.Reminders {
		meetingID, ok := meetingIDs[rm.MeetingID]
		if !ok {
			return Snapshot{}, fmt.Errorf("reminder %d references unknown meeting %d", rm.ID, rm.MeetingID)
		}
		r, err := tx.ExecContext(ctx, `INSERT INTO reminders (meeting_id, reminder_date) VALUES (?, ?)`,
			meetingID, rm.ReminderDate)
		if err != nil {
			return Snapshot{}, fmt.Errorf("failed to import reminder %d: %w", rm.ID, err)
		}
		if rm.ID, err = r.LastInsertId(); err != nil {
			return Snapshot{}, fmt.Errorf("failed to get id of reminder for meeting %d: %w", meetingID, err)
		}
		rm.MeetingID = meetingID
		res.Reminders = append(res.Reminders, rm)
	}

	if err = tx.Commit(); err != nil {
		return Snapshot{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return res, nil
}
