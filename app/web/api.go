package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/umputun/organizer/app/organizer"
	"github.com/umputun/organizer/app/store"
)

// MeetingRequest is the body of meeting create and update requests
type MeetingRequest struct {
	store.Meeting
	ReminderDate string `json:"reminder_date"` // required on create, keeps the current reminder on update if empty
}

// MeetingResponse is a meeting with the date of its reminder
type MeetingResponse struct {
	store.Meeting
	ReminderDate string `json:"reminder_date"`
	ReminderID   int64  `json:"reminder_id,omitempty"`
}

// ReminderDateResponse is the JSON response for meeting's reminder date
type ReminderDateResponse struct {
	MeetingID    int64  `json:"meeting_id"`
	ReminderDate string `json:"reminder_date"`
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.org.Contacts(r.Context())
	if err != nil {
		s.writeError(w, err, "failed to load contacts")
		return
	}
	s.writeJSON(w, http.StatusOK, contacts)
}

func (s *Server) handleSearchContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.org.SearchContacts(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeError(w, err, "failed to search contacts")
		return
	}
	s.writeJSON(w, http.StatusOK, contacts)
}

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	c, err := s.org.Contact(r.Context(), id)
	if err != nil {
		s.writeError(w, err, "failed to load contact")
		return
	}
	s.writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleAddContact(w http.ResponseWriter, r *http.Request) {
	var c store.Contact
	if !s.decode(w, r, &c) {
		return
	}
	id, err := s.org.AddContact(r.Context(), c)
	if err != nil {
		s.writeError(w, err, "failed to add contact")
		return
	}
	s.respondContact(w, r, id, http.StatusCreated)
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var c store.Contact
	if !s.decode(w, r, &c) {
		return
	}
	c.ID = id
	if err := s.org.UpdateContact(r.Context(), c); err != nil {
		s.writeError(w, err, "failed to update contact")
		return
	}
	s.respondContact(w, r, id, http.StatusOK)
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.org.DeleteContact(r.Context(), id); err != nil {
		s.writeError(w, err, "failed to delete contact")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListMeetings(w http.ResponseWriter, r *http.Request) {
	meetings, err := s.org.Meetings(r.Context())
	if err != nil {
		s.writeError(w, err, "failed to load meetings")
		return
	}
	s.writeJSON(w, http.StatusOK, meetings)
}

func (s *Server) handleSearchMeetings(w http.ResponseWriter, r *http.Request) {
	meetings, err := s.org.SearchMeetings(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeError(w, err, "failed to search meetings")
		return
	}
	s.writeJSON(w, http.StatusOK, meetings)
}

func (s *Server) handleUpcomingMeetings(w http.ResponseWriter, r *http.Request) {
	days, ok := s.queryDays(w, r)
	if !ok {
		return
	}
	meetings, err := s.org.UpcomingMeetings(r.Context(), days)
	if err != nil {
		s.writeError(w, err, "failed to load upcoming meetings")
		return
	}
	s.writeJSON(w, http.StatusOK, meetings)
}

func (s *Server) handleGetMeeting(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	s.respondMeeting(w, r, id, 0, http.StatusOK)
}

func (s *Server) handleMeetingReminder(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	date, err := s.org.ReminderDate(r.Context(), id)
	if err != nil {
		s.writeError(w, err, "failed to load reminder date")
		return
	}
	s.writeJSON(w, http.StatusOK, ReminderDateResponse{MeetingID: id, ReminderDate: date})
}

func (s *Server) handleAddMeeting(w http.ResponseWriter, r *http.Request) {
	var req MeetingRequest
	if !s.decode(w, r, &req) {
		return
	}
	meetingID, reminderID, err := s.org.AddMeeting(r.Context(), req.Meeting, req.ReminderDate)
	if err != nil {
		s.writeError(w, err, "failed to add meeting")
		return
	}
	s.respondMeeting(w, r, meetingID, reminderID, http.StatusCreated)
}

func (s *Server) handleUpdateMeeting(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req MeetingRequest
	if !s.decode(w, r, &req) {
		return
	}
	req.Meeting.ID = id
	if err := s.org.RescheduleMeeting(r.Context(), req.Meeting, req.ReminderDate); err != nil {
		s.writeError(w, err, "failed to update meeting")
		return
	}
	s.respondMeeting(w, r, id, 0, http.StatusOK)
}

func (s *Server) handleDeleteMeeting(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.org.DeleteMeeting(r.Context(), id); err != nil {
		s.writeError(w, err, "failed to delete meeting")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListReminders(w http.ResponseWriter, r *http.Request) {
	reminders, err := s.org.Reminders(r.Context())
	if err != nil {
		s.writeError(w, err, "failed to load reminders")
		return
	}
	s.writeJSON(w, http.StatusOK, reminders)
}

func (s *Server) handleRemindersForDate(w http.ResponseWriter, r *http.Request) {
	meetings, err := s.org.RemindersForDate(r.Context(), r.PathValue("date"))
	if err != nil {
		s.writeError(w, err, "failed to load reminders")
		return
	}
	s.writeJSON(w, http.StatusOK, meetings)
}

func (s *Server) handleRemindersWindow(w http.ResponseWriter, r *http.Request) {
	days, ok := s.queryDays(w, r)
	if !ok {
		return
	}
	reminders, err := s.org.RemindersInWindow(r.Context(), days)
	if err != nil {
		s.writeError(w, err, "failed to load reminders")
		return
	}
	s.writeJSON(w, http.StatusOK, reminders)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.org.Dashboard(r.Context())
	if err != nil {
		s.writeError(w, err, "failed to load dashboard")
		return
	}
	s.writeJSON(w, http.StatusOK, d)
}

// respondContact loads the stored contact and writes it with the given status
func (s *Server) respondContact(w http.ResponseWriter, r *http.Request, id int64, status int) {
	c, err := s.org.Contact(r.Context(), id)
	if err != nil {
		s.writeError(w, err, "failed to load contact")
		return
	}
	s.writeJSON(w, status, c)
}

// respondMeeting loads the stored meeting with its reminder date and writes it with the given status
func (s *Server) respondMeeting(w http.ResponseWriter, r *http.Request, id, reminderID int64, status int) {
	m, err := s.org.Meeting(r.Context(), id)
	if err != nil {
		s.writeError(w, err, "failed to load meeting")
		return
	}
	date, err := s.org.ReminderDate(r.Context(), id)
	if err != nil {
		s.writeError(w, err, "failed to load reminder date")
		return
	}
	s.writeJSON(w, status, MeetingResponse{Meeting: m, ReminderDate: date, ReminderID: reminderID})
}

// pathID parses {id} path value, writes 400 response if it is not a positive number
func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		s.writeJSONError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// queryDays parses optional days query parameter, store.DefaultUpcomingDays if not set
func (s *Server) queryDays(w http.ResponseWriter, r *http.Request) (int, bool) {
	val := r.URL.Query().Get("days")
	if val == "" {
		return store.DefaultUpcomingDays, true
	}
	days, err := strconv.Atoi(val)
	if err != nil {
		s.writeError(w, &organizer.ValidationError{Field: "days", Reason: "not a number"}, "")
		return 0, false
	}
	return days, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}
