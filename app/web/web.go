// Package web implements the JSON API server for the organizer
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/didip/tollbooth/v8"
	"github.com/didip/tollbooth/v8/limiter"
	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/organizer/app/organizer"
	"github.com/umputun/organizer/app/store"
)

// Organizer defines operations exposed by the API, implemented by organizer.Service
type Organizer interface {
	AddContact(ctx context.Context, c store.Contact) (int64, error)
	Contacts(ctx context.Context) ([]store.Contact, error)
	Contact(ctx context.Context, id int64) (store.Contact, error)
	UpdateContact(ctx context.Context, c store.Contact) error
	DeleteContact(ctx context.Context, id int64) error
	SearchContacts(ctx context.Context, keyword string) ([]store.Contact, error)

	AddMeeting(ctx context.Context, m store.Meeting, reminderDate string) (meetingID, reminderID int64, err error)
	Meetings(ctx context.Context) ([]store.Meeting, error)
	Meeting(ctx context.Context, id int64) (store.Meeting, error)
	ReminderDate(ctx context.Context, meetingID int64) (string, error)
	RescheduleMeeting(ctx context.Context, m store.Meeting, reminderDate string) error
	DeleteMeeting(ctx context.Context, id int64) error
	SearchMeetings(ctx context.Context, keyword string) ([]store.Meeting, error)
	UpcomingMeetings(ctx context.Context, days int) ([]store.Meeting, error)

	Reminders(ctx context.Context) ([]store.Reminder, error)
	RemindersForDate(ctx context.Context, date string) ([]store.Meeting, error)
	RemindersInWindow(ctx context.Context, days int) ([]store.MeetingReminder, error)
	Dashboard(ctx context.Context) (organizer.Dashboard, error)
}

// Server represents the web server
type Server struct {
	org          Organizer
	version      string
	passwordHash string           // bcrypt hash for basic auth
	writeLimiter *limiter.Limiter // rate limiter for modifying requests
}

// Config holds server configuration
type Config struct {
	Organizer    Organizer
	Version      string
	PasswordHash string  // bcrypt hash for basic auth (empty to disable)
	WriteLimit   float64 // max modifying requests per second per client, defaults to 10
}

// New creates a new web server
func New(cfg Config) (*Server, error) {
	if cfg.Organizer == nil {
		return nil, errors.New("web server initialization failed: organizer is required")
	}

	writeLimit := cfg.WriteLimit
	if writeLimit <= 0 {
		writeLimit = 10
	}
	lmt := tollbooth.NewLimiter(writeLimit, nil)
	lmt.SetIPLookup(limiter.IPLookup{Name: "RemoteAddr"})
	lmt.SetMessageContentType("application/json")
	lmt.SetMessage(`{"error":"too many requests"}`)

	return &Server{
		org:          cfg.Organizer,
		version:      cfg.Version,
		passwordHash: cfg.PasswordHash,
		writeLimiter: lmt,
	}, nil
}

// Run starts the web server, blocks until ctx is canceled
func (s *Server) Run(ctx context.Context, address string) error {
	server := &http.Server{
		Addr:              address,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] failed to shutdown server: %v", err)
		}
	}()

	log.Printf("[INFO] starting web server on %s", address)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web server failed: %w", err)
	}
	return nil
}

// routes returns the http.Handler with all routes configured
func (s *Server) routes() http.Handler {
	router := routegroup.New(http.NewServeMux())

	router.Use(
		rest.RealIP,
		rest.Recoverer(log.Default()),
		rest.Throttle(1000),
		rest.AppInfo("organizer", "umputun", s.version),
		rest.Ping,
		rest.Trace,
		rest.SizeLimit(64*1024), // 64KB max request size
		logger.New(logger.Log(log.Default()), logger.Prefix("[DEBUG]")).Handler,
	)

	// must be done before any routes are defined
	if s.passwordHash != "" {
		log.Printf("[INFO] authentication enabled for api")
		router.Use(s.authMiddleware)
	}

	router.Mount("/api/v1").Route(func(api *routegroup.Bundle) {
		api.Use(rest.NoCache)
		limited := api.With(tollbooth.HTTPMiddleware(s.writeLimiter))

		api.HandleFunc("GET /contacts", s.handleListContacts)
		api.HandleFunc("GET /contacts/search", s.handleSearchContacts)
		api.HandleFunc("GET /contacts/{id}", s.handleGetContact)
		limited.HandleFunc("POST /contacts", s.handleAddContact)
		limited.HandleFunc("PUT /contacts/{id}", s.handleUpdateContact)
		limited.HandleFunc("DELETE /contacts/{id}", s.handleDeleteContact)

		api.HandleFunc("GET /meetings", s.handleListMeetings)
		api.HandleFunc("GET /meetings/search", s.handleSearchMeetings)
		api.HandleFunc("GET /meetings/upcoming", s.handleUpcomingMeetings)
		api.HandleFunc("GET /meetings/{id}", s.handleGetMeeting)
		api.HandleFunc("GET /meetings/{id}/reminder", s.handleMeetingReminder)
		limited.HandleFunc("POST /meetings", s.handleAddMeeting)
		limited.HandleFunc("PUT /meetings/{id}", s.handleUpdateMeeting)
		limited.HandleFunc("DELETE /meetings/{id}", s.handleDeleteMeeting)

		api.HandleFunc("GET /reminders", s.handleListReminders)
		api.HandleFunc("GET /reminders/date/{date}", s.handleRemindersForDate)
		api.HandleFunc("GET /reminders/window", s.handleRemindersWindow)

		api.HandleFunc("GET /dashboard", s.handleDashboard)
	})

	return router
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[WARN] failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes a JSON error response
func (s *Server) writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]string{"error": message}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("[WARN] failed to encode JSON error response: %v", err)
	}
}

// writeError maps organizer errors to status codes, validation to 400, missing record to 404, anything else to 500
func (s *Server) writeError(w http.ResponseWriter, err error, msg string) {
	var verr *organizer.ValidationError
	switch {
	case errors.As(err, &verr):
		s.writeJSONError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, store.ErrNotFound):
		s.writeJSONError(w, http.StatusNotFound, "not found")
	default:
		log.Printf("[ERROR] %s: %v", msg, err)
		s.writeJSONError(w, http.StatusInternalServerError, msg)
	}
}
