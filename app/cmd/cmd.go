// Package cmd implements command-line commands of the organizer.
// Each leaf command is a go-flags command with Execute method, common options
// are set by the caller before execution.
package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gosuri/uitable"
	"github.com/juju/clock"

	"github.com/umputun/organizer/app/organizer"
	"github.com/umputun/organizer/app/store"
)

// CommonOptionsCommander extends flags.Commander with SetCommon
// All commands should implement this interfaces
type CommonOptionsCommander interface {
	SetCommon(commonOpts CommonOpts)
	Execute(args []string) error
}

// CommonOpts sets externally from main, shared across all commands
type CommonOpts struct {
	DBPath   string
	Revision string
	Out      io.Writer
	Clock    clock.Clock
}

// SetCommon satisfies CommonOptionsCommander interface and sets common option fields
// The method called by main for each command
func (c *CommonOpts) SetCommon(commonOpts CommonOpts) {
	c.DBPath = commonOpts.DBPath
	c.Revision = commonOpts.Revision
	c.Out = commonOpts.Out
	c.Clock = commonOpts.Clock
}

// open makes store and organizer service for DBPath, caller closes the store
func (c *CommonOpts) open() (*organizer.Service, *store.Store, error) {
	st, err := store.New(c.DBPath, store.WithClock(c.clock()))
	if err != nil {
		return nil, nil, fmt.Errorf("can't open organizer db %s: %w", c.DBPath, err)
	}
	return organizer.New(st, organizer.WithClock(c.clock())), st, nil
}

// withService opens the store, runs fn and closes the store
func (c *CommonOpts) withService(fn func(svc *organizer.Service, st *store.Store) error) error {
	svc, st, err := c.open()
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(svc, st)
}

func (c *CommonOpts) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *CommonOpts) clock() clock.Clock {
	if c.Clock == nil {
		return clock.WallClock
	}
	return c.Clock
}

func (c *CommonOpts) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out(), format, args...)
}

func (c *CommonOpts) printContacts(contacts []store.Contact) {
	if len(contacts) == 0 {
		c.printf("no contacts\n")
		return
	}
	table := uitable.New()
	table.MaxColWidth = 40
	table.AddRow("ID", "NAME", "PHONE", "EMAIL", "ADDRESS")
	for _, ct := range contacts {
		table.AddRow(ct.ID, ct.Name, ct.Phone, ct.Email, ct.Address)
	}
	c.printf("%s\n", table)
}

func (c *CommonOpts) printMeetings(meetings []store.Meeting) {
	if len(meetings) == 0 {
		c.printf("no meetings\n")
		return
	}
	table := uitable.New()
	table.MaxColWidth = 40
	table.AddRow("ID", "DATE", "TIME", "WHEN", "LOCATION", "DESCRIPTION")
	for _, m := range meetings {
		table.AddRow(m.ID, m.Date, m.Time, c.when(m.Date, m.Time), m.Location, m.Description)
	}
	c.printf("%s\n", table)
}

func (c *CommonOpts) printMeetingReminders(reminders []store.MeetingReminder) {
	if len(reminders) == 0 {
		c.printf("no reminders\n")
		return
	}
	table := uitable.New()
	table.MaxColWidth = 40
	table.AddRow("REMINDER", "MEETING", "DATE", "TIME", "WHEN", "LOCATION", "DESCRIPTION")
	for _, r := range reminders {
		table.AddRow(r.ReminderDate, r.ID, r.Date, r.Time, c.when(r.Date, r.Time), r.Location, r.Description)
	}
	c.printf("%s\n", table)
}

// when returns meeting time relative to now, i.e. "3 days from now"
func (c *CommonOpts) when(date, tm string) string {
	now := c.clock().Now()
	ts, err := time.ParseInLocation(store.DateLayout+" "+store.TimeLayout, date+" "+tm, now.Location())
	if err != nil {
		return ""
	}
	return humanize.RelTime(now, ts, "from now", "ago")
}
