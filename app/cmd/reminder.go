package cmd

import (
	"context"

	"github.com/gosuri/uitable"

	"github.com/umputun/organizer/app/organizer"
	"github.com/umputun/organizer/app/store"
)

// ReminderCommand groups reminder subcommands
type ReminderCommand struct {
	Add    ReminderAddCommand    `command:"add" description:"add one more reminder for a meeting"`
	List   ReminderListCommand   `command:"list" description:"list all reminders"`
	Today  ReminderTodayCommand  `command:"today" description:"list meetings reminded today"`
	Window ReminderWindowCommand `command:"window" description:"list reminders of the next days"`
}

// ReminderAddCommand adds a reminder for existing meeting
type ReminderAddCommand struct {
	MeetingID int64  `long:"meeting" required:"true" description:"meeting id"`
	Date      string `long:"date" required:"true" description:"reminder date, YYYY-MM-DD"`
	CommonOpts
}

// Execute adds the reminder
func (c *ReminderAddCommand) Execute(_ []string) error {
	return c.withService(func(svc *organizer.Service, _ *store.Store) error {
		id, err := svc.AddReminder(context.Background(), c.MeetingID, c.Date)
		if err != nil {
			return err
		}
		c.printf("reminder %d added for meeting %d on %s\n", id, c.MeetingID, c.Date)
		return nil
	})
}

// ReminderListCommand lists all reminders
type ReminderListCommand struct {
	CommonOpts
}

// Execute prints all reminders
func (c *ReminderListCommand) Execute(_ []string) error {
	return c.withService(func(svc *organizer.Service, _ *store.Store) error {
		reminders, err := svc.Reminders(context.Background())
		if err != nil {
			return err
		}
		if len(reminders) == 0 {
			c.printf("no reminders\n")
			return nil
		}
		table := uitable.New()
		table.AddRow("ID", "MEETING", "DATE")
		for _, r := range reminders {
			table.AddRow(r.ID, r.MeetingID, r.ReminderDate)
		}
		c.printf("%s\n", table)
		return nil
	})
}

// ReminderTodayCommand lists meetings with a reminder due today
type ReminderTodayCommand struct {
	Date string `long:"date" description:"date to check instead of today, YYYY-MM-DD"`
	CommonOpts
}

// Execute prints meetings reminded today or on the given date
func (c *ReminderTodayCommand) Execute(_ []string) error {
	return c.withService(func(svc *organizer.Service, _ *store.Store) error {
		ctx := context.Background()
		date := c.Date
		if date == "" {
			date = svc.Today()
		}
		meetings, err := svc.RemindersForDate(ctx, date)
		if err != nil {
			return err
		}
		c.printf("reminders for %s\n", date)
		c.printMeetings(meetings)
		return nil
	})
}

// ReminderWindowCommand lists reminders from today through today+days
type ReminderWindowCommand struct {
	Days int `long:"days" default:"7" description:"number of days to look ahead"`
	CommonOpts
}

// Execute prints reminders with their meetings
func (c *ReminderWindowCommand) Execute(_ []string) error {
	return c.withService(func(svc *organizer.Service, _ *store.Store) error {
		reminders, err := svc.RemindersInWindow(context.Background(), c.Days)
		if err != nil {
			return err
		}
		c.printMeetingReminders(reminders)
		return nil
	})
}

// DashboardCommand prints the summary: counts, upcoming meetings and reminders
type DashboardCommand struct {
	CommonOpts
}

// Execute prints the dashboard
func (c *DashboardCommand) Execute(_ []string) error {
	return c.withService(func(svc *organizer.Service, _ *store.Store) error {
		d, err := svc.Dashboard(context.Background())
		if err != nil {
			return err
		}
		c.printf("organizer %s, today is %s\n", c.Revision, d.Date)
		c.printf("contacts: %d, meetings: %d, reminders: %d\n\n", d.Stats.Contacts, d.Stats.Meetings, d.Stats.Reminders)
		c.printf("today's reminders:\n")
		c.printMeetings(d.Today)
		c.printf("\nupcoming meetings, next %d days:\n", store.DefaultUpcomingDays)
		c.printMeetings(d.Upcoming)
		c.printf("\nreminders, next %d days:\n", store.DefaultUpcomingDays)
		c.printMeetingReminders(d.Reminders)
		return nil
	})
}
