// Package organizer implements user-facing operations on top of the store.
// It validates and normalizes input, combines meeting and reminder changes
// and builds the dashboard view. CLI, web API and notifications all go through it.
package organizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/go-pkgz/lgr"
	"github.com/juju/clock"

	"github.com/umputun/organizer/app/store"
)

// Store defines storage operations used by the service, implemented by store.Store
type Store interface {
	AddContact(ctx context.Context, c store.Contact) (int64, error)
	GetContacts(ctx context.Context) ([]store.Contact, error)
	GetContactByID(ctx context.Context, id int64) (store.Contact, error)
	UpdateContact(ctx context.Context, c store.Contact) error
	DeleteContact(ctx context.Context, id int64) error
	SearchContacts(ctx context.Context, keyword string) ([]store.Contact, error)

	ScheduleMeeting(ctx context.Context, m store.Meeting, reminderDate string) (meetingID, reminderID int64, err error)
	GetMeetings(ctx context.Context) ([]store.Meeting, error)
	GetMeetingByID(ctx context.Context, id int64) (store.Meeting, error)
	UpdateMeeting(ctx context.Context, m store.Meeting) error
	RescheduleMeeting(ctx context.Context, m store.Meeting, reminderDate string) error
	DeleteMeeting(ctx context.Context, id int64) error
	SearchMeetings(ctx context.Context, keyword string) ([]store.Meeting, error)
	GetUpcomingMeetings(ctx context.Context, days int) ([]store.Meeting, error)

	AddReminder(ctx context.Context, meetingID int64, reminderDate string) (int64, error)
	GetAllReminders(ctx context.Context) ([]store.Reminder, error)
	GetRemindersForDate(ctx context.Context, date string) ([]store.Meeting, error)
	GetReminderDateForMeeting(ctx context.Context, meetingID int64) (string, error)
	GetRemindersInWindow(ctx context.Context, from, to string) ([]store.MeetingReminder, error)

	Stats(ctx context.Context) (store.Stats, error)
}

// Service is the organizer business layer
type Service struct {
	store Store
	clock clock.Clock
}

// Option func type
type Option func(s *Service)

// WithClock sets the clock used to determine today, wall clock by default
func WithClock(clk clock.Clock) Option {
	return func(s *Service) { s.clock = clk }
}

// New makes organizer service for the given store
func New(st Store, opts ...Option) *Service {
	res := &Service{store: st, clock: clock.WallClock}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// Today returns the current date in store.DateLayout
func (s *Service) Today() string {
	return s.clock.Now().Format(store.DateLayout)
}

// AddContact validates and adds a new contact, returns its id
func (s *Service) AddContact(ctx context.Context, c store.Contact) (int64, error) {
	c = normalizeContact(c)
	if err := ValidateContact(c); err != nil {
		return 0, err
	}
	return s.store.AddContact(ctx, c)
}

// Contacts returns all contacts
func (s *Service) Contacts(ctx context.Context) ([]store.Contact, error) {
	return s.store.GetContacts(ctx)
}

// Contact returns a contact by id
func (s *Service) Contact(ctx context.Context, id int64) (store.Contact, error) {
	return s.store.GetContactByID(ctx, id)
}

// UpdateContact validates and overwrites the contact with c.ID
func (s *Service) UpdateContact(ctx context.Context, c store.Contact) error {
	c = normalizeContact(c)
	if err := ValidateContact(c); err != nil {
		return err
	}
	return s.store.UpdateContact(ctx, c)
}

// DeleteContact removes a contact by id
func (s *Service) DeleteContact(ctx context.Context, id int64) error {
	return s.store.DeleteContact(ctx, id)
}

// SearchContacts returns contacts matching the keyword in any text field
func (s *Service) SearchContacts(ctx context.Context, keyword string) ([]store.Contact, error) {
	return s.store.SearchContacts(ctx, strings.TrimSpace(keyword))
}

// AddMeeting validates and adds a meeting together with its reminder.
// Returns ids of the new meeting and reminder.
func (s *Service) AddMeeting(ctx context.Context, m store.Meeting, reminderDate string) (meetingID, reminderID int64, err error) {
	m, reminderDate = normalizeMeeting(m), strings.TrimSpace(reminderDate)
	if err = ValidateMeeting(m); err != nil {
		return 0, 0, err
	}
	if err = ValidateDate("reminder_date", reminderDate); err != nil {
		return 0, 0, err
	}
	warnLateReminder(m, reminderDate)
	return s.store.ScheduleMeeting(ctx, m, reminderDate)
}

// Meetings returns all meetings
func (s *Service) Meetings(ctx context.Context) ([]store.Meeting, error) {
	return s.store.GetMeetings(ctx)
}

// Meeting returns a meeting by id
func (s *Service) Meeting(ctx context.Context, id int64) (store.Meeting, error) {
	return s.store.GetMeetingByID(ctx, id)
}

// ReminderDate returns the date to pre-fill for the meeting's reminder,
// the earliest existing reminder or the meeting date if it has none
func (s *Service) ReminderDate(ctx context.Context, meetingID int64) (string, error) {
	date, err := s.store.GetReminderDateForMeeting(ctx, meetingID)
	if err == nil {
		return date, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}
	m, err := s.store.GetMeetingByID(ctx, meetingID)
	if err != nil {
		return "", err
	}
	return m.Date, nil
}

// UpdateMeeting validates and overwrites the meeting, reminders are kept as is
func (s *Service) UpdateMeeting(ctx context.Context, m store.Meeting) error {
	m = normalizeMeeting(m)
	if err := ValidateMeeting(m); err != nil {
		return err
	}
	return s.store.UpdateMeeting(ctx, m)
}

// RescheduleMeeting validates and overwrites the meeting and moves its reminder to reminderDate.
// Empty reminderDate keeps the current one, see ReminderDate.
func (s *Service) RescheduleMeeting(ctx context.Context, m store.Meeting, reminderDate string) error {
	m, reminderDate = normalizeMeeting(m), strings.TrimSpace(reminderDate)
	if err := ValidateMeeting(m); err != nil {
		return err
	}
	if reminderDate == "" {
		date, err := s.ReminderDate(ctx, m.ID)
		if err != nil {
			return err
		}
		reminderDate = date
	}
	if err := ValidateDate("reminder_date", reminderDate); err != nil {
		return err
	}
	warnLateReminder(m, reminderDate)
	return s.store.RescheduleMeeting(ctx, m, reminderDate)
}

// DeleteMeeting removes a meeting with all its reminders
func (s *Service) DeleteMeeting(ctx context.Context, id int64) error {
	return s.store.DeleteMeeting(ctx, id)
}

// SearchMeetings returns meetings matching the keyword in any text field
func (s *Service) SearchMeetings(ctx context.Context, keyword string) ([]store.Meeting, error) {
	return s.store.SearchMeetings(ctx, strings.TrimSpace(keyword))
}

// UpcomingMeetings returns meetings from today through today+days
func (s *Service) UpcomingMeetings(ctx context.Context, days int) ([]store.Meeting, error) {
	if days < 0 {
		return nil, &ValidationError{Field: "days", Reason: "must not be negative"}
	}
	return s.store.GetUpcomingMeetings(ctx, days)
}

// AddReminder adds one more reminder for an existing meeting
func (s *Service) AddReminder(ctx context.Context, meetingID int64, reminderDate string) (int64, error) {
	reminderDate = strings.TrimSpace(reminderDate)
	if err := ValidateDate("reminder_date", reminderDate); err != nil {
		return 0, err
	}
	m, err := s.store.GetMeetingByID(ctx, meetingID)
	if err != nil {
		return 0, err
	}
	warnLateReminder(m, reminderDate)
	return s.store.AddReminder(ctx, meetingID, reminderDate)
}

// Reminders returns all reminders
func (s *Service) Reminders(ctx context.Context) ([]store.Reminder, error) {
	return s.store.GetAllReminders(ctx)
}

// RemindersForDate returns meetings with a reminder on the given date
func (s *Service) RemindersForDate(ctx context.Context, date string) ([]store.Meeting, error) {
	date = strings.TrimSpace(date)
	if err := ValidateDate("date", date); err != nil {
		return nil, err
	}
	return s.store.GetRemindersForDate(ctx, date)
}

// TodayReminders returns meetings with a reminder due today
func (s *Service) TodayReminders(ctx context.Context) ([]store.Meeting, error) {
	return s.store.GetRemindersForDate(ctx, s.Today())
}

// RemindersInWindow returns reminders dated from today through today+days with their meetings
func (s *Service) RemindersInWindow(ctx context.Context, days int) ([]store.MeetingReminder, error) {
	if days < 0 {
		return nil, &ValidationError{Field: "days", Reason: "must not be negative"}
	}
	now := s.clock.Now()
	return s.store.GetRemindersInWindow(ctx, now.Format(store.DateLayout), now.AddDate(0, 0, days).Format(store.DateLayout))
}

// Dashboard is the summary shown on the main screen
type Dashboard struct {
	Date      string                  `json:"date"`
	Stats     store.Stats             `json:"stats"`
	Upcoming  []store.Meeting         `json:"upcoming"`
	Today     []store.Meeting         `json:"today"`
	Reminders []store.MeetingReminder `json:"reminders"`
}

// Dashboard collects counts, upcoming meetings and reminders for the next store.DefaultUpcomingDays days
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	res := Dashboard{Date: s.Today()}
	var err error
	if res.Stats, err = s.store.Stats(ctx); err != nil {
		return Dashboard{}, fmt.Errorf("failed to get stats: %w", err)
	}
	if res.Upcoming, err = s.store.GetUpcomingMeetings(ctx, store.DefaultUpcomingDays); err != nil {
		return Dashboard{}, fmt.Errorf("failed to get upcoming meetings: %w", err)
	}
	if res.Today, err = s.TodayReminders(ctx); err != nil {
		return Dashboard{}, fmt.Errorf("failed to get today's reminders: %w", err)
	}
	if res.Reminders, err = s.RemindersInWindow(ctx, store.DefaultUpcomingDays); err != nil {
		return Dashboard{}, fmt.Errorf("failed to get reminders: %w", err)
	}
	return res, nil
}

// warnLateReminder logs reminders set after the meeting, allowed but most likely a mistake
func warnLateReminder(m store.Meeting, reminderDate string) {
	if reminderDate > m.Date {
		log.Printf("[WARN] reminder date %s is after meeting date %s", reminderDate, m.Date)
	}
}

func normalizeContact(c store.Contact) store.Contact {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.TrimSpace(c.Email)
	c.Address = strings.TrimSpace(c.Address)
	return c
}

func normalizeMeeting(m store.Meeting) store.Meeting {
	m.Date = strings.TrimSpace(m.Date)
	m.Time = strings.TrimSpace(m.Time)
	m.Location = strings.TrimSpace(m.Location)
	m.Description = strings.TrimSpace(m.Description)
	return m
}
