package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/organizer/app/organizer"
	"github.com/umputun/organizer/app/store"
)

// call sends request to the handler and returns status code and body
func call(t *testing.T, h http.Handler, method, url, body string) (int, string) {
	t.Helper()
	var rdr io.Reader = http.NoBody
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, url, rdr)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code, rec.Body.String()
}

func decodeJSON[T any](t *testing.T, body string) T {
	t.Helper()
	var res T
	require.NoError(t, json.Unmarshal([]byte(body), &res), body)
	return res
}

func TestAPI_Contacts(t *testing.T) {
	h := newTestServer(t, Config{}).routes()

	code, body := call(t, h, "POST", "/api/v1/contacts", `{"name":"John Smith","phone":"555-1234"}`)
	require.Equal(t, http.StatusCreated, code, body)
	john := decodeJSON[store.Contact](t, body)
	assert.Equal(t, store.Contact{ID: 1, Name: "John Smith", Phone: "555-1234"}, john)

	code, body = call(t, h, "POST", "/api/v1/contacts", `{"name":"Anna","email":"anna@example.com"}`)
	require.Equal(t, http.StatusCreated, code, body)

	t.Run("list", func(t *testing.T) {
		code, body := call(t, h, "GET", "/api/v1/contacts", "")
		require.Equal(t, http.StatusOK, code)
		contacts := decodeJSON[[]store.Contact](t, body)
		require.Len(t, contacts, 2)
		assert.Equal(t, "Anna", contacts[1].Name)
	})

	t.Run("get", func(t *testing.T) {
		code, body := call(t, h, "GET", "/api/v1/contacts/1", "")
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, john, decodeJSON[store.Contact](t, body))

		code, body = call(t, h, "GET", "/api/v1/contacts/100", "")
		assert.Equal(t, http.StatusNotFound, code)
		assert.JSONEq(t, `{"error":"not found"}`, body)

		code, _ = call(t, h, "GET", "/api/v1/contacts/abc", "")
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("search", func(t *testing.T) {
		code, body := call(t, h, "GET", "/api/v1/contacts/search?q=example", "")
		require.Equal(t, http.StatusOK, code)
		contacts := decodeJSON[[]store.Contact](t, body)
		require.Len(t, contacts, 1)
		assert.Equal(t, "Anna", contacts[0].Name)

		code, body = call(t, h, "GET", "/api/v1/contacts/search?q=nobody", "")
		require.Equal(t, http.StatusOK, code)
		assert.JSONEq(t, `[]`, body)
	})

	t.Run("update", func(t *testing.T) {
		code, body := call(t, h, "PUT", "/api/v1/contacts/1", `{"name":"John S.","address":"Elm St"}`)
		require.Equal(t, http.StatusOK, code, body)
		assert.Equal(t, store.Contact{ID: 1, Name: "John S.", Address: "Elm St"}, decodeJSON[store.Contact](t, body))

		code, body = call(t, h, "PUT", "/api/v1/contacts/1", `{"name":""}`)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.JSONEq(t, `{"error":"invalid name: required"}`, body)

		code, _ = call(t, h, "PUT", "/api/v1/contacts/100", `{"name":"ghost"}`)
		assert.Equal(t, http.StatusNotFound, code)

		code, _ = call(t, h, "PUT", "/api/v1/contacts/1", `{"name":"x","nickname":"y"}`)
		assert.Equal(t, http.StatusBadRequest, code, "unknown field")

		code, _ = call(t, h, "PUT", "/api/v1/contacts/1", `{bad json`)
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("delete", func(t *testing.T) {
		code, _ := call(t, h, "DELETE", "/api/v1/contacts/1", "")
		assert.Equal(t, http.StatusNoContent, code)
		code, _ = call(t, h, "DELETE", "/api/v1/contacts/1", "")
		assert.Equal(t, http.StatusNotFound, code)
		code, _ = call(t, h, "GET", "/api/v1/contacts/1", "")
		assert.Equal(t, http.StatusNotFound, code)
	})
}

func TestAPI_Meetings(t *testing.T) {
	h := newTestServer(t, Config{}).routes() // today is 2026-10-15

	code, body := call(t, h, "POST", "/api/v1/meetings",
		`{"date":"2026-10-20","time":"14:30","location":"Office","description":"review","reminder_date":"2026-10-19"}`)
	require.Equal(t, http.StatusCreated, code, body)
	created := decodeJSON[MeetingResponse](t, body)
	assert.Equal(t, store.Meeting{ID: 1, Date: "2026-10-20", Time: "14:30", Location: "Office", Description: "review"},
		created.Meeting)
	assert.Equal(t, "2026-10-19", created.ReminderDate)
	assert.Equal(t, int64(1), created.ReminderID)

	code, body = call(t, h, "POST", "/api/v1/meetings", `{"date":"2026-11-30","time":"09:00","reminder_date":"2026-11-29"}`)
	require.Equal(t, http.StatusCreated, code, body)

	t.Run("validation", func(t *testing.T) {
		code, body := call(t, h, "POST", "/api/v1/meetings", `{"date":"2026-10-20","time":"14:30"}`)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Contains(t, body, "reminder_date")

		code, body = call(t, h, "POST", "/api/v1/meetings", `{"date":"20.10.2026","time":"14:30","reminder_date":"2026-10-19"}`)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Contains(t, body, "invalid date")
	})

	t.Run("get", func(t *testing.T) {
		code, body := call(t, h, "GET", "/api/v1/meetings/1", "")
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "2026-10-19", decodeJSON[MeetingResponse](t, body).ReminderDate)

		code, body = call(t, h, "GET", "/api/v1/meetings/1/reminder", "")
		require.Equal(t, http.StatusOK, code)
		assert.JSONEq(t, `{"meeting_id":1,"reminder_date":"2026-10-19"}`, body)

		code, _ = call(t, h, "GET", "/api/v1/meetings/99/reminder", "")
		assert.Equal(t, http.StatusNotFound, code)

		code, body = call(t, h, "GET", "/api/v1/meetings", "")
		require.Equal(t, http.StatusOK, code)
		assert.Len(t, decodeJSON[[]store.Meeting](t, body), 2)
	})

	t.Run("search and upcoming", func(t *testing.T) {
		code, body := call(t, h, "GET", "/api/v1/meetings/search?q=office", "")
		require.Equal(t, http.StatusOK, code)
		assert.Len(t, decodeJSON[[]store.Meeting](t, body), 1)

		code, body = call(t, h, "GET", "/api/v1/meetings/upcoming", "")
		require.Equal(t, http.StatusOK, code)
		upcoming := decodeJSON[[]store.Meeting](t, body)
		require.Len(t, upcoming, 1)
		assert.Equal(t, int64(1), upcoming[0].ID)

		code, body = call(t, h, "GET", "/api/v1/meetings/upcoming?days=60", "")
		require.Equal(t, http.StatusOK, code)
		assert.Len(t, decodeJSON[[]store.Meeting](t, body), 2)

		code, _ = call(t, h, "GET", "/api/v1/meetings/upcoming?days=abc", "")
		assert.Equal(t, http.StatusBadRequest, code)
		code, _ = call(t, h, "GET", "/api/v1/meetings/upcoming?days=-1", "")
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("update", func(t *testing.T) {
		code, body := call(t, h, "PUT", "/api/v1/meetings/1",
			`{"date":"2026-10-22","time":"10:00","location":"Cafe","reminder_date":"2026-10-21"}`)
		require.Equal(t, http.StatusOK, code, body)
		upd := decodeJSON[MeetingResponse](t, body)
		assert.Equal(t, store.Meeting{ID: 1, Date: "2026-10-22", Time: "10:00", Location: "Cafe"}, upd.Meeting)
		assert.Equal(t, "2026-10-21", upd.ReminderDate)

		code, body = call(t, h, "PUT", "/api/v1/meetings/1", `{"date":"2026-10-23","time":"10:00"}`)
		require.Equal(t, http.StatusOK, code, body)
		assert.Equal(t, "2026-10-21", decodeJSON[MeetingResponse](t, body).ReminderDate, "reminder kept")

		code, _ = call(t, h, "PUT", "/api/v1/meetings/77", `{"date":"2026-10-23","time":"10:00"}`)
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("delete", func(t *testing.T) {
		code, _ := call(t, h, "DELETE", "/api/v1/meetings/1", "")
		assert.Equal(t, http.StatusNoContent, code)

		code, body := call(t, h, "GET", "/api/v1/reminders", "")
		require.Equal(t, http.StatusOK, code)
		reminders := decodeJSON[[]store.Reminder](t, body)
		require.Len(t, reminders, 1)
		assert.Equal(t, int64(2), reminders[0].MeetingID, "reminder of deleted meeting removed")

		code, _ = call(t, h, "DELETE", "/api/v1/meetings/1", "")
		assert.Equal(t, http.StatusNotFound, code)
	})
}

func TestAPI_RemindersAndDashboard(t *testing.T) {
	h := newTestServer(t, Config{}).routes() // today is 2026-10-15

	for _, body := range []string{
		`{"name":"John"}`,
	} {
		code, resp := call(t, h, "POST", "/api/v1/contacts", body)
		require.Equal(t, http.StatusCreated, code, resp)
	}
	for _, body := range []string{
		`{"date":"2026-10-16","time":"09:00","description":"dentist","reminder_date":"2026-10-15"}`,
		`{"date":"2026-10-21","time":"11:00","description":"planning","reminder_date":"2026-10-20"}`,
		`{"date":"2026-12-01","time":"11:00","reminder_date":"2026-11-30"}`,
	} {
		code, resp := call(t, h, "POST", "/api/v1/meetings", body)
		require.Equal(t, http.StatusCreated, code, resp)
	}

	t.Run("for date", func(t *testing.T) {
		code, body := call(t, h, "GET", "/api/v1/reminders/date/2026-10-20", "")
		require.Equal(t, http.StatusOK, code)
		meetings := decodeJSON[[]store.Meeting](t, body)
		require.Len(t, meetings, 1)
		assert.Equal(t, "planning", meetings[0].Description)

		code, _ = call(t, h, "GET", "/api/v1/reminders/date/tomorrow", "")
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("window", func(t *testing.T) {
		code, body := call(t, h, "GET", "/api/v1/reminders/window", "")
		require.Equal(t, http.StatusOK, code)
		window := decodeJSON[[]store.MeetingReminder](t, body)
		require.Len(t, window, 2)
		assert.Equal(t, "2026-10-15", window[0].ReminderDate)
		assert.Equal(t, "dentist", window[0].Description)

		code, body = call(t, h, "GET", "/api/v1/reminders/window?days=90", "")
		require.Equal(t, http.StatusOK, code)
		assert.Len(t, decodeJSON[[]store.MeetingReminder](t, body), 3)
	})

	t.Run("dashboard", func(t *testing.T) {
		code, body := call(t, h, "GET", "/api/v1/dashboard", "")
		require.Equal(t, http.StatusOK, code)
		d := decodeJSON[organizer.Dashboard](t, body)
		assert.Equal(t, "2026-10-15", d.Date)
		assert.Equal(t, store.Stats{Contacts: 1, Meetings: 3, Reminders: 3}, d.Stats)
		assert.Len(t, d.Upcoming, 2)
		require.Len(t, d.Today, 1)
		assert.Equal(t, "dentist", d.Today[0].Description)
		assert.Len(t, d.Reminders, 2)
	})
}
