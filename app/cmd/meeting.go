package cmd

import (
	"context"

	"github.com/umputun/organizer/app/organizer"
	"github.com/umputun/organizer/app/store"
)

// MeetingCommand groups meeting subcommands
type MeetingCommand struct {
	Add      MeetingAddCommand      `command:"add" description:"add meeting with reminder"`
	List     MeetingListCommand     `command:"list" description:"list all meetings"`
	Get      MeetingGetCommand      `command:"get" description:"show meeting with its reminder date"`
	Update   MeetingUpdateCommand   `command:"update" description:"update meeting and its reminder, fields not given are kept"`
	Delete   MeetingDeleteCommand   `command:"delete" description:"delete meeting with all its reminders"`
	Search   MeetingSearchCommand   `command:"search" description:"search meetings by any field"`
	Upcoming MeetingUpcomingCommand `command:"upcoming" description:"list meetings of the next days"`
}

// MeetingFields are editable meeting fields
type MeetingFields struct {
	Date        string `long:"date" description:"meeting date, YYYY-MM-DD"`
	Time        string `long:"time" description:"meeting time, HH:MM"`
	Location    string `long:"location" description:"meeting location"`
	Description string `long:"description" description:"meeting description"`
}

// apply overwrites fields of m set on command line
func (f MeetingFields) apply(m store.Meeting) store.Meeting {
	for _, p := range []struct {
		val string
		dst *string
	}{{f.Date, &m.Date}, {f.Time, &m.Time}, {f.Location, &m.Location}, {f.Description, &m.Description}} {
		if p.val != "" {
			*p.dst = p.val
		}
	}
	return m
}

// MeetingAddCommand adds a meeting together with its reminder
type MeetingAddCommand struct {
	MeetingFields
	Reminder string `long:"reminder" required:"true" description:"reminder date, YYYY-MM-DD"`
	CommonOpts
}

// Execute adds the meeting and prints ids
func (c *MeetingAddCommand) Execute(_ []string) error {
	return c.withService(func(svc *organizer.Service, _ *store.Store) error {
		meetingID, reminderID, err := svc.AddMeeting(context.Background(), c.MeetingFields.apply(store.Meeting{}), c.Reminder)
		if err != nil {
			return err
		}
		c.printf("meeting %d added, reminder %d on %s\n", meetingID, reminderID, c.Reminder)
		return nil
	})
}

// MeetingListCommand lists meetings
type MeetingListCommand struct {
	CommonOpts
}

// Execute prints all meetings
func (c *MeetingListCommand) Execute(_ []string) error {
	return c.withService(func(svc *organizer.Service, _ *store.Store) error {
		meetings, err := svc.Meetings(context.Background())
		if err != nil {
			return err
		}
		c.printMeetings(meetings)
		return nil
	})
}

// MeetingGetCommand shows a meeting
type MeetingGetCommand struct {
	ID int64 `long:"id" required:"true" description:"meeting id"`
	CommonOpts
}

// Execute prints the meeting and its reminder date
func (c *MeetingGetCommand) Execute(_ []string) error {
	return c.withService(func(svc *organizer.Service, _ *store.Store) error {
		ctx := context.Background()
		m, err := svc.Meeting(ctx, c.ID)
		if err != nil {
			return err
		}
		date, err := svc.ReminderDate(ctx, c.ID)
		if err != nil {
			return err
		}
		c.printMeetings([]store.Meeting{m})
		c.printf("reminder: %s\n", date)
		return nil
	})
}

// MeetingUpdateCommand updates meeting fields and reminder date given on command line
type MeetingUpdateCommand struct {
	ID int64 `long:"id" required:"true" description:"meeting id"`
	MeetingFields
	Reminder string `long:"reminder" description:"reminder date, YYYY-MM-DD, current reminder kept if not set"`
	CommonOpts
}

// Execute loads the meeting, applies the changes and reschedules it
func (c *MeetingUpdateCommand) Execute(_ []string) error {
	return c.withService(func(svc *organizer.Service, _ *store.Store) error {
		ctx := context.Background()
		m, err := svc.Meeting(ctx, c.ID)
		if err != nil {
			return err
		}
		if err = svc.RescheduleMeeting(ctx, c.MeetingFields.apply(m), c.Reminder); err != nil {
			return err
		}
		c.printf("meeting %d updated\n", c.ID)
		return nil
	})
}

// MeetingDeleteCommand deletes a meeting
type MeetingDeleteCommand struct {
	ID int64 `long:"id" required:"true" description:"meeting id"`
	CommonOpts
}

// Execute deletes the meeting with its reminders
func (c *MeetingDeleteCommand) Execute(_ []string) error {
	return c.withService(func(svc *organizer.Service, _ *store.Store) error {
		if err := svc.DeleteMeeting(context.Background(), c.ID); err != nil {
			return err
		}
		c.printf("meeting %d deleted\n", c.ID)
		return nil
	})
}

// MeetingSearchCommand finds meetings with keyword in any field
type MeetingSearchCommand struct {
	Query string `short:"q" long:"query" required:"true" description:"keyword to search for"`
	CommonOpts
}

// Execute prints matching meetings
func (c *MeetingSearchCommand) Execute(_ []string) error {
	return c.withService(func(svc *organizer.Service, _ *store.Store) error {
		meetings, err := svc.SearchMeetings(context.Background(), c.Query)
		if err != nil {
			return err
		}
		c.printMeetings(meetings)
		return nil
	})
}

// MeetingUpcomingCommand lists meetings from today through today+days
type MeetingUpcomingCommand struct {
	Days int `long:"days" default:"7" description:"number of days to look ahead"`
	CommonOpts
}

// Execute prints upcoming meetings
func (c *MeetingUpcomingCommand) Execute(_ []string) error {
	return c.withService(func(svc *organizer.Service, _ *store.Store) error {
		meetings, err := svc.UpcomingMeetings(context.Background(), c.Days)
		if err != nil {
			return err
		}
		c.printMeetings(meetings)
		return nil
	})
}
