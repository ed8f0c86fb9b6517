package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AddAndGetMeeting(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	in := Meeting{Date: "2026-10-20", Time: "14:30", Location: "Office", Description: "Quarterly review"}
	id, err := s.AddMeeting(ctx, in)
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := s.GetMeetingByID(ctx, id)
	require.NoError(t, err)
	in.ID = id
	assert.Equal(t, in, got)

	id2, err := s.AddMeeting(ctx, Meeting{Date: "2026-10-21", Time: "09:00"})
	require.NoError(t, err)
	assert.NotEqual(t, id, id2)

	meetings, err := s.GetMeetings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Meeting{in, {ID: id2, Date: "2026-10-21", Time: "09:00"}}, meetings)

	_, err = s.GetMeetingByID(ctx, 1000)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ScheduleMeeting(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	m := Meeting{Date: "2026-10-20", Time: "14:30", Location: "Office"}
	meetingID, reminderID, err := s.ScheduleMeeting(ctx, m, "2026-10-19")
	require.NoError(t, err)

	m.ID = meetingID
	got, err := s.GetMeetingByID(ctx, meetingID)
	require.NoError(t, err)
	assert.Equal(t, m, got)

	reminders, err := s.GetAllReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Reminder{{ID: reminderID, MeetingID: meetingID, ReminderDate: "2026-10-19"}}, reminders)
}

func TestStore_UpdateMeetingKeepsReminder(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	id, err := s.AddMeeting(ctx, Meeting{Date: "2026-10-20", Time: "14:30", Location: "Office", Description: "review"})
	require.NoError(t, err)
	remID, err := s.AddReminder(ctx, id, "2026-10-19")
	require.NoError(t, err)

	upd := Meeting{ID: id, Date: "2026-10-25", Time: "08:00", Location: "Cafe", Description: "review moved"}
	require.NoError(t, s.UpdateMeeting(ctx, upd))

	got, err := s.GetMeetingByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, upd, got)

	reminders, err := s.GetAllReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Reminder{{ID: remID, MeetingID: id, ReminderDate: "2026-10-19"}}, reminders,
		"reminder untouched by plain update")

	assert.ErrorIs(t, s.UpdateMeeting(ctx, Meeting{ID: 999, Date: "2026-10-25", Time: "08:00"}), ErrNotFound)
}

func TestStore_RescheduleMeeting(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	t.Run("with reminder", func(t *testing.T) {
		id, err := s.AddMeeting(ctx, Meeting{Date: "2026-10-20", Time: "14:30"})
		require.NoError(t, err)
		remID, err := s.AddReminder(ctx, id, "2026-10-19")
		require.NoError(t, err)

		upd := Meeting{ID: id, Date: "2026-10-27", Time: "10:00", Description: "moved"}
		require.NoError(t, s.RescheduleMeeting(ctx, upd, "2026-10-26"))

		got, err := s.GetMeetingByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, upd, got)

		date, err := s.GetReminderDateForMeeting(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "2026-10-26", date)

		reminders, err := s.GetAllReminders(ctx)
		require.NoError(t, err)
		require.Len(t, reminders, 1)
		assert.Equal(t, remID, reminders[0].ID, "reminder id unchanged")
		assert.Equal(t, id, reminders[0].MeetingID, "reminder still linked")
	})

	t.Run("without reminder", func(t *testing.T) {
		id, err := s.AddMeeting(ctx, Meeting{Date: "2026-11-01", Time: "12:00"})
		require.NoError(t, err)
		require.NoError(t, s.RescheduleMeeting(ctx, Meeting{ID: id, Date: "2026-11-02", Time: "12:00"}, "2026-11-01"))

		date, err := s.GetReminderDateForMeeting(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "2026-11-01", date)
	})

	t.Run("unknown meeting", func(t *testing.T) {
		before, err := s.GetAllReminders(ctx)
		require.NoError(t, err)
		err = s.RescheduleMeeting(ctx, Meeting{ID: 999, Date: "2026-11-02", Time: "12:00"}, "2026-11-01")
		assert.ErrorIs(t, err, ErrNotFound)
		after, err := s.GetAllReminders(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, after, "nothing inserted")
	})
}

func TestStore_DeleteMeetingCascade(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	id, err := s.AddMeeting(ctx, Meeting{Date: "2026-10-20", Time: "14:30"})
	require.NoError(t, err)
	rem1, err := s.AddReminder(ctx, id, "2026-10-18")
	require.NoError(t, err)
	rem2, err := s.AddReminder(ctx, id, "2026-10-19")
	require.NoError(t, err)

	keepID, err := s.AddMeeting(ctx, Meeting{Date: "2026-10-21", Time: "10:00"})
	require.NoError(t, err)
	keepRem, err := s.AddReminder(ctx, keepID, "2026-10-20")
	require.NoError(t, err)

	require.NoError(t, s.DeleteMeeting(ctx, id))

	meetings, err := s.GetMeetings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Meeting{{ID: keepID, Date: "2026-10-21", Time: "10:00"}}, meetings)

	reminders, err := s.GetAllReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Reminder{{ID: keepRem, MeetingID: keepID, ReminderDate: "2026-10-20"}}, reminders)
	for _, r := range reminders {
		assert.NotEqual(t, rem1, r.ID)
		assert.NotEqual(t, rem2, r.ID)
	}

	assert.ErrorIs(t, s.DeleteMeeting(ctx, id), ErrNotFound)
}

func TestStore_DeleteMeetingEngineCascade(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	id, err := s.AddMeeting(ctx, Meeting{Date: "2026-10-20", Time: "14:30"})
	require.NoError(t, err)
	_, err = s.AddReminder(ctx, id, "2026-10-18")
	require.NoError(t, err)

	// delete bypassing the store, the engine must still drop the reminder
	_, err = s.db.Exec("DELETE FROM meetings WHERE id = ?", id)
	require.NoError(t, err)

	reminders, err := s.GetAllReminders(ctx)
	require.NoError(t, err)
	assert.Empty(t, reminders)
}

func TestStore_SearchMeetings(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	data := []Meeting{
		{Date: "2026-10-20", Time: "14:30", Location: "Head Office", Description: "Budget review"},
		{Date: "2026-11-02", Time: "09:00", Location: "Cafe", Description: "Coffee with Smith"},
		{Date: "2026-10-25", Time: "10:30", Location: "Zoom", Description: "OFFICE hours"},
	}
	for _, m := range data {
		_, err := s.AddMeeting(ctx, m)
		require.NoError(t, err)
	}

	tests := []struct {
		keyword string
		want    []int64
	}{
		{"office", []int64{1, 3}},
		{"2026-10", []int64{1, 3}},
		{":30", []int64{1, 3}},
		{"smith", []int64{2}},
		{"cafe", []int64{2}},
		{"none", []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			res, err := s.SearchMeetings(ctx, tt.keyword)
			require.NoError(t, err)
			ids := []int64{}
			for _, m := range res {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestStore_GetUpcomingMeetings(t *testing.T) {
	s := newTestStore(t) // today is 2026-10-15
	ctx := t.Context()

	add := func(date, tm string) int64 {
		id, err := s.AddMeeting(ctx, Meeting{Date: date, Time: tm})
		require.NoError(t, err)
		return id
	}
	yesterday := add("2026-10-14", "10:00")
	todayLate := add("2026-10-15", "09:00")
	lastDay := add("2026-10-22", "23:59")
	tooFar := add("2026-10-23", "00:00")
	middle := add("2026-10-18", "12:00")
	todayEarly := add("2026-10-15", "08:00")

	ids := func(mm []Meeting) []int64 {
		res := []int64{}
		for _, m := range mm {
			res = append(res, m.ID)
		}
		return res
	}

	res, err := s.GetUpcomingMeetings(ctx, DefaultUpcomingDays)
	require.NoError(t, err)
	assert.Equal(t, []int64{todayEarly, todayLate, middle, lastDay}, ids(res))
	assert.NotContains(t, ids(res), yesterday)
	assert.NotContains(t, ids(res), tooFar)

	res, err = s.GetUpcomingMeetings(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{todayEarly, todayLate}, ids(res))

	res, err = s.GetUpcomingMeetings(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, []int64{todayEarly, todayLate, middle, lastDay, tooFar}, ids(res))

	res, err = s.GetUpcomingMeetings(ctx, -1)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestStore_GetUpcomingMeetingsYearBoundary(t *testing.T) {
	clk := testclock.NewClock(time.Date(2026, time.December, 29, 23, 0, 0, 0, time.Local))
	s, err := New(filepath.Join(t.TempDir(), "test.db"), WithClock(clk))
	require.NoError(t, err)
	defer s.Close()
	ctx := t.Context()

	in, err := s.AddMeeting(ctx, Meeting{Date: "2027-01-05", Time: "10:00"})
	require.NoError(t, err)
	_, err = s.AddMeeting(ctx, Meeting{Date: "2027-01-06", Time: "10:00"})
	require.NoError(t, err)

	res, err := s.GetUpcomingMeetings(ctx, 7)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, in, res[0].ID)
}
