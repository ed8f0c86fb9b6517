package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	log "github.com/go-pkgz/lgr"
	"github.com/robfig/cron/v3"

	"github.com/umputun/organizer/app/notify"
	"github.com/umputun/organizer/app/organizer"
	"github.com/umputun/organizer/app/store"
	"github.com/umputun/organizer/app/web"
)

// ServerCommand runs the JSON API server and, optionally, scheduled reminders delivery
type ServerCommand struct {
	Listen     string     `long:"listen" env:"ORGANIZER_LISTEN" default:"127.0.0.1:8080" description:"listen address"`
	AuthHash   string     `long:"auth-hash" env:"ORGANIZER_AUTH_HASH" description:"bcrypt hash of basic auth password, user organizer"`
	WriteLimit float64    `long:"write-limit" env:"ORGANIZER_WRITE_LIMIT" default:"10" description:"max modifying requests per second per client"`
	RemindCron string     `long:"remind-cron" env:"ORGANIZER_REMIND_CRON" description:"cron spec to send today's reminders, i.e. \"0 8 * * *\""`
	RemindEach bool       `long:"remind-each" env:"ORGANIZER_REMIND_EACH" description:"send reminders on each cron tick, not once a day"`
	Notify     NotifyOpts `group:"notify" namespace:"notify" env-namespace:"ORGANIZER_NOTIFY"`
	CommonOpts
}

// Execute runs the server until SIGTERM or SIGINT
func (c *ServerCommand) Execute(_ []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signals(cancel)
	return c.run(ctx)
}

// run starts the server and reminders schedule, blocks until ctx is canceled
func (c *ServerCommand) run(ctx context.Context) error {
	return c.withService(func(svc *organizer.Service, _ *store.Store) error {
		if c.RemindCron != "" {
			cr, err := c.scheduleReminders(ctx, svc)
			if err != nil {
				return err
			}
			cr.Start()
			defer func() { <-cr.Stop().Done() }()
		}

		srv, err := web.New(web.Config{Organizer: svc, Version: c.Revision, PasswordHash: c.AuthHash, WriteLimit: c.WriteLimit})
		if err != nil {
			return err
		}
		return srv.Run(ctx, c.Listen)
	})
}

// scheduleReminders makes cron sending today's reminders on RemindCron schedule
func (c *ServerCommand) scheduleReminders(ctx context.Context, svc *organizer.Service) (*cron.Cron, error) {
	ns := c.Notify.service()
	if ns == nil {
		return nil, fmt.Errorf("remind cron %q set without notification destination", c.RemindCron)
	}
	dedup := notify.NewDeDup(!c.RemindEach)
	cr := cron.New()
	if _, err := cr.AddFunc(c.RemindCron, func() {
		today := svc.Today()
		if !dedup.Add(today) {
			log.Printf("[DEBUG] reminders for %s already sent", today)
			return
		}
		if _, err := sendTodayReminders(ctx, svc, ns); err != nil {
			dedup.Remove(today)
			log.Printf("[WARN] %v", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid remind cron %q: %w", c.RemindCron, err)
	}
	log.Printf("[INFO] reminders scheduled on %q", c.RemindCron)
	return cr, nil
}

func signals(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	go func() {
		stacktrace := make([]byte, 8192)
		for sig := range sigChan {
			if sig == syscall.SIGQUIT { // catch SIGQUIT and print stack traces
				length := runtime.Stack(stacktrace, true)
				fmt.Println(string(stacktrace[:length]))
				continue
			}
			log.Printf("[INFO] %s received, shutting down", sig)
			cancel()
		}
	}()
	signal.Notify(sigChan, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGINT)
}
