package store

import (
	"context"
	"fmt"
)

// Meeting is a scheduled appointment. Date is stored as DateLayout, time as TimeLayout.
type Meeting struct {
	ID          int64  `db:"id" json:"id" yaml:"id"`
	Date        string `db:"date" json:"date" yaml:"date"`
	Time        string `db:"time" json:"time" yaml:"time"`
	Location    string `db:"location" json:"location" yaml:"location,omitempty"`
	Description string `db:"description" json:"description" yaml:"description,omitempty"`
}

const meetingColumns = `id, date, time, COALESCE(location, '') AS location, COALESCE(description, '') AS description`

// joinedMeetingColumns used for queries joining meetings (m) with reminders (r)
const joinedMeetingColumns = `m.id, m.date, m.time, COALESCE(m.location, '') AS location,
	COALESCE(m.description, '') AS description`

// AddMeeting inserts a new meeting and returns its id, ready to be used for a reminder
func (s *Store) AddMeeting(ctx context.Context, m Meeting) (int64, error) {
	res, err := s.db.NamedExecContext(ctx,
		`INSERT INTO meetings (date, time, location, description) VALUES (:date, :time, :location, :description)`, m)
	if err != nil {
		return 0, fmt.Errorf("failed to add meeting on %s %s: %w", m.Date, m.Time, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get id of meeting on %s %s: %w", m.Date, m.Time, err)
	}
	return id, nil
}

// ScheduleMeeting adds the meeting and its reminder in one transaction.
// Returns ids of the new meeting and reminder.
func (s *Store) ScheduleMeeting(ctx context.Context, m Meeting, reminderDate string) (meetingID, reminderID int64, err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.NamedExecContext(ctx,
		`INSERT INTO meetings (date, time, location, description) VALUES (:date, :time, :location, :description)`, m)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to add meeting on %s %s: %w", m.Date, m.Time, err)
	}
	if meetingID, err = res.LastInsertId(); err != nil {
		return 0, 0, fmt.Errorf("failed to get id of meeting on %s %s: %w", m.Date, m.Time, err)
	}

	res, err = tx.ExecContext(ctx, `INSERT INTO reminders (meeting_id, reminder_date) VALUES (?, ?)`,
		meetingID, reminderDate)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to add reminder for meeting %d: %w", meetingID, err)
	}
	if reminderID, err = res.LastInsertId(); err != nil {
		return 0, 0, fmt.Errorf("failed to get id of reminder for meeting %d: %w", meetingID, err)
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return meetingID, reminderID, nil
}

// GetMeetings returns all meetings ordered by id
func (s *Store) GetMeetings(ctx context.Context) ([]Meeting, error) {
	meetings := []Meeting{}
	if err := s.db.SelectContext(ctx, &meetings, `SELECT `+meetingColumns+` FROM meetings ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to get meetings: %w", err)
	}
	return meetings, nil
}

// GetMeetingByID returns a single meeting, ErrNotFound if id is unknown
func (s *Store) GetMeetingByID(ctx context.Context, id int64) (Meeting, error) {
	var m Meeting
	if err := s.db.GetContext(ctx, &m, `SELECT `+meetingColumns+` FROM meetings WHERE id = ?`, id); err != nil {
		return Meeting{}, notFound(err, "failed to get meeting %d", id)
	}
	return m, nil
}

// UpdateMeeting overwrites all fields of the meeting with m.ID. Linked reminders are not touched,
// see RescheduleMeeting for the combined update.
func (s *Store) UpdateMeeting(ctx context.Context, m Meeting) error {
	res, err := s.db.NamedExecContext(ctx, `UPDATE meetings
		SET date = :date, time = :time, location = :location, description = :description WHERE id = :id`, m)
	if err != nil {
		return fmt.Errorf("failed to update meeting %d: %w", m.ID, err)
	}
	return checkAffected(res)
}

// RescheduleMeeting updates the meeting and sets the date of its reminders in one transaction.
// A meeting without reminder gets a new one.
func (s *Store) RescheduleMeeting(ctx context.Context, m Meeting, reminderDate string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.NamedExecContext(ctx, `UPDATE meetings
		SET date = :date, time = :time, location = :location, description = :description WHERE id = :id`, m)
	if err != nil {
		return fmt.Errorf("failed to update meeting %d: %w", m.ID, err)
	}
	if err = checkAffected(res); err != nil {
		return err
	}

	res, err = tx.ExecContext(ctx, `UPDATE reminders SET reminder_date = ? WHERE meeting_id = ?`, reminderDate, m.ID)
	if err != nil {
		return fmt.Errorf("failed to update reminder of meeting %d: %w", m.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		if _, err = tx.ExecContext(ctx, `INSERT INTO reminders (meeting_id, reminder_date) VALUES (?, ?)`,
			m.ID, reminderDate); err != nil {
			return fmt.Errorf("failed to add reminder for meeting %d: %w", m.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteMeeting removes the meeting together with all its reminders as one unit,
// nobody can observe the meeting gone while its reminders remain or the other way around.
func (s *Store) DeleteMeeting(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `DELETE FROM reminders WHERE meeting_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete reminders of meeting %d: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM meetings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete meeting %d: %w", id, err)
	}
	if err = checkAffected(res); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SearchMeetings returns meetings with keyword as a substring of date, time, location or description
func (s *Store) SearchMeetings(ctx context.Context, keyword string) ([]Meeting, error) {
	pattern := likePattern(keyword)
	meetings := []Meeting{}
	err := s.db.SelectContext(ctx, &meetings, `SELECT `+meetingColumns+` FROM meetings
		WHERE date LIKE ? ESCAPE '\' OR time LIKE ? ESCAPE '\' OR location LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\'
		ORDER BY id`, pattern, pattern, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search meetings for %q: %w", keyword, err)
	}
	return meetings, nil
}

// GetUpcomingMeetings returns meetings dated from today through today+days, both ends inclusive,
// ordered by date and time
func (s *Store) GetUpcomingMeetings(ctx context.Context, days int) ([]Meeting, error) {
	now := s.clock.Now()
	from, to := now.Format(DateLayout), now.AddDate(0, 0, days).Format(DateLayout)

	meetings := []Meeting{}
	err := s.db.SelectContext(ctx, &meetings, `SELECT `+meetingColumns+` FROM meetings
		WHERE date BETWEEN ? AND ? ORDER BY date, time, id`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get meetings between %s and %s: %w", from, to, err)
	}
	return meetings, nil
}
