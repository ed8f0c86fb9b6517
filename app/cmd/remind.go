package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	log "github.com/go-pkgz/lgr"

	"github.com/umputun/organizer/app/notify"
	"github.com/umputun/organizer/app/organizer"
	"github.com/umputun/organizer/app/store"
)

// NotifyOpts defines where reminders are sent
type NotifyOpts struct {
	To            []string      `long:"to" env:"TO" env-delim:"," description:"email(s) to send reminders to"`
	From          string        `long:"from" env:"FROM" description:"from email"`
	Destinations  []string      `long:"dest" env:"DEST" env-delim:"," description:"extra destinations, slack:, telegram:, mailto: or http(s) urls"`
	Subject       string        `long:"subject" env:"SUBJECT" default:"Today's reminders" description:"message subject"`
	Template      string        `long:"template" env:"TEMPLATE" description:"html template file for the message"`
	SMTPHost      string        `long:"smtp-host" env:"SMTP_HOST" description:"SMTP host"`
	SMTPPort      int           `long:"smtp-port" env:"SMTP_PORT" default:"25" description:"SMTP port"`
	SMTPUsername  string        `long:"smtp-username" env:"SMTP_USERNAME" description:"SMTP user name"`
	SMTPPassword  string        `long:"smtp-password" env:"SMTP_PASSWORD" description:"SMTP password"`
	SMTPTLS       bool          `long:"smtp-tls" env:"SMTP_TLS" description:"enable SMTP TLS"`
	SlackToken    string        `long:"slack-token" env:"SLACK_TOKEN" description:"slack token"`
	TelegramToken string        `long:"telegram-token" env:"TELEGRAM_TOKEN" description:"telegram bot token"`
	Timeout       time.Duration `long:"timeout" env:"TIMEOUT" default:"10s" description:"transport timeout"`
	Retries       int           `long:"retries" env:"RETRIES" default:"3" description:"send attempts per destination"`
	RetryDelay    time.Duration `long:"retry-delay" env:"RETRY_DELAY" default:"1s" description:"initial delay between attempts"`
	HostName      string        `long:"host" env:"HOSTNAME" description:"host name shown in the message"`
}

// service makes notify.Service, nil if no destination is set
func (n NotifyOpts) service() *notify.Service {
	from := n.From
	if from == "" {
		from = "organizer@" + n.hostName()
	}
	return notify.NewService(
		notify.Params{
			FromEmail:    from,
			ToEmails:     n.To,
			Destinations: n.Destinations,
			Subject:      n.Subject,
			Template:     n.Template,
			HostName:     n.hostName(),
			Retries:      n.Retries,
			RetryDelay:   n.RetryDelay,
		},
		notify.SendersParams{
			SMTPHost:      n.SMTPHost,
			SMTPPort:      n.SMTPPort,
			SMTPTLS:       n.SMTPTLS,
			SMTPUsername:  n.SMTPUsername,
			SMTPPassword:  n.SMTPPassword,
			SlackToken:    n.SlackToken,
			TelegramToken: n.TelegramToken,
			Timeout:       n.Timeout,
		})
}

func (n NotifyOpts) hostName() string {
	if n.HostName != "" {
		return n.HostName
	}
	host, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return host
}

// RemindCommand sends today's reminders to configured destinations
type RemindCommand struct {
	Notify NotifyOpts `group:"notify" namespace:"notify" env-namespace:"ORGANIZER_NOTIFY"`
	CommonOpts
}

// Execute sends reminders due today
func (c *RemindCommand) Execute(_ []string) error {
	ns := c.Notify.service()
	if ns == nil {
		return errors.New("no notification destination, set --notify.to or --notify.dest")
	}
	return c.withService(func(svc *organizer.Service, _ *store.Store) error {
		n, err := sendTodayReminders(context.Background(), svc, ns)
		if err != nil {
			return err
		}
		c.printf("sent %d reminders for %s\n", n, svc.Today())
		return nil
	})
}

// reminderSender is implemented by notify.Service
type reminderSender interface {
	SendReminders(ctx context.Context, date string, meetings []store.Meeting) error
}

// sendTodayReminders sends meetings reminded today, returns number of meetings sent
func sendTodayReminders(ctx context.Context, svc *organizer.Service, sender reminderSender) (int, error) {
	today := svc.Today()
	meetings, err := svc.TodayReminders(ctx)
	if err != nil {
		return 0, fmt.Errorf("can't get reminders for %s: %w", today, err)
	}
	if err = sender.SendReminders(ctx, today, meetings); err != nil {
		return 0, fmt.Errorf("can't send reminders for %s: %w", today, err)
	}
	log.Printf("[INFO] %d reminders for %s processed", len(meetings), today)
	return len(meetings), nil
}
