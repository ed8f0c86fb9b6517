package store

import (
	"context"
	"fmt"
)

// Reminder marks the date a meeting should be brought up
type Reminder struct {
	ID           int64  `db:"id" json:"id" yaml:"id"`
	MeetingID    int64  `db:"meeting_id" json:"meeting_id" yaml:"meeting_id"`
	ReminderDate string `db:"reminder_date" json:"reminder_date" yaml:"reminder_date"`
}

// MeetingReminder is a meeting joined with one of its reminders
type MeetingReminder struct {
	Meeting
	ReminderID   int64  `db:"reminder_id" json:"reminder_id"`
	ReminderDate string `db:"reminder_date" json:"reminder_date"`
}

// AddReminder links a new reminder to an existing meeting and returns its id.
// Returns ErrNotFound if the meeting doesn't exist.
func (s *Store) AddReminder(ctx context.Context, meetingID int64, reminderDate string) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err = tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM meetings WHERE id = ?`, meetingID); err != nil {
		return 0, fmt.Errorf("failed to check meeting %d: %w", meetingID, err)
	}
	if count == 0 {
		return 0, ErrNotFound
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO reminders (meeting_id, reminder_date) VALUES (?, ?)`,
		meetingID, reminderDate)
	if err != nil {
		return 0, fmt.Errorf("failed to add reminder for meeting %d: %w", meetingID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get id of reminder for meeting %d: %w", meetingID, err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return id, nil
}

// GetAllReminders returns all reminders ordered by id
func (s *Store) GetAllReminders(ctx context.Context) ([]Reminder, error) {
	reminders := []Reminder{}
	err := s.db.SelectContext(ctx, &reminders,
		`SELECT id, COALESCE(meeting_id, 0) AS meeting_id, reminder_date FROM reminders ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get reminders: %w", err)
	}
	return reminders, nil
}

// GetRemindersForDate returns meetings having a reminder on the given date.
// A meeting with several reminders on that date is listed once per reminder.
func (s *Store) GetRemindersForDate(ctx context.Context, date string) ([]Meeting, error) {
	meetings := []Meeting{}
	err := s.db.SelectContext(ctx, &meetings, `SELECT `+joinedMeetingColumns+`
		FROM meetings m JOIN reminders r ON m.id = r.meeting_id
		WHERE r.reminder_date = ? ORDER BY m.time, r.id`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get reminders for %s: %w", date, err)
	}
	return meetings, nil
}

// GetReminderDateForMeeting returns the earliest reminder date of the meeting,
// ErrNotFound if the meeting has no reminder
func (s *Store) GetReminderDateForMeeting(ctx context.Context, meetingID int64) (string, error) {
	var date string
	err := s.db.GetContext(ctx, &date,
		`SELECT reminder_date FROM reminders WHERE meeting_id = ? ORDER BY reminder_date LIMIT 1`, meetingID)
	if err != nil {
		return "", notFound(err, "failed to get reminder date of meeting %d", meetingID)
	}
	return date, nil
}

// GetRemindersInWindow returns meetings joined with their reminders dated from..to, both inclusive,
// ordered by reminder date and meeting time
func (s *Store) GetRemindersInWindow(ctx context.Context, from, to string) ([]MeetingReminder, error) {
	res := []MeetingReminder{}
	err := s.db.SelectContext(ctx, &res, `SELECT `+joinedMeetingColumns+`, r.id AS reminder_id, r.reminder_date
		FROM meetings m JOIN reminders r ON m.id = r.meeting_id
		WHERE r.reminder_date BETWEEN ? AND ? ORDER BY r.reminder_date, m.time, r.id`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get reminders between %s and %s: %w", from, to, err)
	}
	return res, nil
}
