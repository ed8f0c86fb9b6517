// Package notify delivers reminders due today to email, slack, telegram and webhook destinations
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"strings"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/notify"
	"github.com/go-pkgz/repeater"
	"github.com/go-pkgz/repeater/strategy"
	"github.com/go-pkgz/syncs"

	"github.com/umputun/organizer/app/store"
)

//go:generate moq -out mocks/notifier.go -pkg mocks -skip-ensure -fmt goimports . Notifier

// Notifier is a single delivery transport, implemented by go-pkgz/notify senders
type Notifier interface {
	notify.Notifier
}

// Params defines what is sent and where
type Params struct {
	FromEmail    string
	ToEmails     []string
	Destinations []string // slack:, telegram:, https:// and extra mailto: destinations
	Subject      string
	Template     string // optional html template file, built-in template used if empty or broken
	HostName     string
	Concurrency  int

	Retries    int
	RetryDelay time.Duration
}

// SendersParams defines transports configuration
type SendersParams struct {
	SMTPHost      string
	SMTPPort      int
	SMTPTLS       bool
	SMTPUsername  string
	SMTPPassword  string
	SlackToken    string
	TelegramToken string
	Timeout       time.Duration
}

// Service sends reminder messages to all configured destinations
type Service struct {
	destinations []notify.Notifier
	fromEmail    string
	toEmail      []string
	extra        []string
	subject      string
	template     string
	hostName     string
	concurrency  int
	repeater     *repeater.Repeater
}

const defaultSubject = "Today's reminders"

// NewService makes notification service, nil if no destination is configured
func NewService(p Params, sp SendersParams) *Service {
	if len(p.ToEmails) == 0 && len(p.Destinations) == 0 {
		return nil
	}

	res := &Service{
		fromEmail:   p.FromEmail,
		toEmail:     p.ToEmails,
		extra:       p.Destinations,
		subject:     p.Subject,
		template:    p.Template,
		hostName:    p.HostName,
		concurrency: p.Concurrency,
		repeater: repeater.New(&strategy.Backoff{Repeats: max(p.Retries, 1), Duration: p.RetryDelay,
			Factor: 2, Jitter: true}),
	}
	if res.subject == "" {
		res.subject = defaultSubject
	}
	if res.concurrency <= 0 {
		res.concurrency = 4
	}
	if res.hostName == "" {
		res.hostName = os.Getenv("MHOST")
	}

	if len(p.ToEmails) > 0 || hasSchema(p.Destinations, "mailto") {
		res.destinations = append(res.destinations, makeEmail(sp))
	}
	if sp.SlackToken != "" {
		res.destinations = append(res.destinations, notify.NewSlack(sp.SlackToken))
	}
	if sp.TelegramToken != "" {
		tg, err := notify.NewTelegram(notify.TelegramParams{Token: sp.TelegramToken, Timeout: sp.Timeout})
		if err != nil {
			log.Printf("[WARN] can't make telegram notifier, %v", err)
		} else {
			res.destinations = append(res.destinations, tg)
		}
	}
	if hasSchema(p.Destinations, "https") || hasSchema(p.Destinations, "http") {
		res.destinations = append(res.destinations, notify.NewWebhook(notify.WebhookParams{Timeout: sp.Timeout}))
	}
	return res
}

// SendReminders sends one message listing the meetings reminded on the given date to every destination.
// Nothing is sent for an empty list.
func (s *Service) SendReminders(ctx context.Context, date string, meetings []store.Meeting) error {
	if len(meetings) == 0 {
		log.Printf("[DEBUG] no reminders for %s, nothing to send", date)
		return nil
	}
	msg, err := s.MakeRemindersHTML(date, meetings)
	if err != nil {
		return fmt.Errorf("can't make reminders message: %w", err)
	}
	return s.Send(ctx, fmt.Sprintf("%s, %s", s.subject, date), msg)
}

// Send delivers text to all destinations concurrently, each one retried on failure
func (s *Service) Send(ctx context.Context, subj, text string) error {
	dests := s.destinationURLs(subj)
	wg := syncs.NewErrSizedGroup(s.concurrency)
	for _, dest := range dests {
		wg.Go(func() error {
			err := s.repeater.Do(ctx, func() error {
				return notify.Send(ctx, s.destinations, dest, text)
			})
			if err != nil {
				return fmt.Errorf("failed to send to %s: %w", redact(dest), err)
			}
			log.Printf("[DEBUG] sent %q to %s", subj, redact(dest))
			return nil
		})
	}
	if err := wg.Wait(); err != nil {
		return err
	}
	return nil
}

// MakeRemindersHTML creates html message with the list of meetings.
// Custom template file used if set and valid, falls back to the built-in one otherwise.
func (s *Service) MakeRemindersHTML(date string, meetings []store.Meeting) (string, error) {
	data := struct {
		Date     string
		Meetings []store.Meeting
		TS       time.Time
		Host     string
	}{
		Date:     date,
		Meetings: meetings,
		TS:       time.Now(),
		Host:     s.hostName,
	}

	tmpl := defaultRemindersTemplate
	if s.template != "" {
		body, err := os.ReadFile(s.template)
		if err != nil {
			log.Printf("[WARN] can't read template %s, using default: %v", s.template, err)
		} else {
			tmpl = string(body)
		}
	}

	res, err := execTemplate(tmpl, data)
	if err != nil && tmpl != defaultRemindersTemplate {
		log.Printf("[WARN] bad template %s, using default: %v", s.template, err)
		return execTemplate(defaultRemindersTemplate, data)
	}
	return res, err
}

// destinationURLs returns mailto destination for configured emails followed by the extra destinations
func (s *Service) destinationURLs(subj string) []string {
	res := make([]string, 0, len(s.extra)+1)
	if len(s.toEmail) > 0 {
		res = append(res, mailtoDestination(s.toEmail, s.fromEmail, subj))
	}
	return append(res, s.extra...)
}

func execTemplate(tmpl string, data any) (string, error) {
	t, err := template.New("msg").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("can't parse message template: %w", err)
	}
	buf := bytes.Buffer{}
	if err = t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to apply template: %w", err)
	}
	return buf.String(), nil
}

func hasSchema(dests []string, schema string) bool {
	for _, d := range dests {
		if strings.HasPrefix(d, schema+":") {
			return true
		}
	}
	return false
}

// redact drops query part of the destination, it may carry tokens
func redact(dest string) string {
	if i := strings.Index(dest, "?"); i >= 0 {
		return dest[:i]
	}
	return dest
}

const defaultRemindersTemplate = `<!DOCTYPE html>
<html>
	<head>
		<meta name="viewport" content="width=device-width" />
		<meta http-equiv="Content-Type" content="text/html; charset=UTF-8" />
		<style type="text/css">
			body {
				font-family: "Arial";
				font-size: 1.0em;
			}
			ul {
				margin-top: -0.5em;
				margin-left: -0.5em;
			}
			.bold {
				color: #882828;
				font-weight: 900;
			}
		</style>
	</head>

	<body>
		<p>Reminders for <span class="bold">{{.Date}}</span>{{if .Host}} from {{.Host}}{{end}}</p>
		<ul>
		{{- range .Meetings}}
			<li><span class="bold">{{.Date}} {{.Time}}</span>{{if .Location}} at {{.Location}}{{end}}{{if .Description}}: {{.Description}}{{end}}</li>
		{{- end}}
		</ul>
		<p>Sent at {{.TS.Format "2006-01-02T15:04:05Z07:00"}}</p>
	</body>
</html>
`
