package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/go-pkgz/lgr"
	"github.com/joho/godotenv"
	"github.com/umputun/go-flags"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/umputun/organizer/app/cmd"
)

// Opts with all cli commands and flags
type Opts struct {
	DB  string `long:"db" env:"ORGANIZER_DB" default:"~/.organizer/organizer.db" description:"sqlite database file"`
	Dbg bool   `long:"dbg" env:"ORGANIZER_DEBUG" description:"debug mode"`

	Log struct {
		Enabled         bool   `long:"enabled" env:"ENABLED" description:"enable logging"`
		Filename        string `long:"file" env:"FILE" description:"log file, stderr if not set"`
		MaxSize         int    `long:"max-size" env:"MAX_SIZE" default:"100" description:"max log file size in megabytes"`
		MaxBackups      int    `long:"max-backups" env:"MAX_BACKUPS" default:"7" description:"max number of old log files"`
		MaxAge          int    `long:"max-age" env:"MAX_AGE" default:"0" description:"max days to keep old log files"`
		EnabledCompress bool   `long:"compress" env:"COMPRESS" description:"compress old log files"`
	} `group:"log" namespace:"log" env-namespace:"ORGANIZER_LOG"`

	Contact   cmd.ContactCommand   `command:"contact" description:"manage contacts"`
	Meeting   cmd.MeetingCommand   `command:"meeting" description:"manage meetings"`
	Reminder  cmd.ReminderCommand  `command:"reminder" description:"show and add reminders"`
	Dashboard cmd.DashboardCommand `command:"dashboard" description:"show counts, upcoming meetings and reminders"`
	Export    cmd.ExportCommand    `command:"export" description:"export all records to yaml backup"`
	Import    cmd.ImportCommand    `command:"import" description:"import records from yaml backup"`
	Schema    cmd.SchemaCommand    `command:"schema" description:"print json schema of yaml backup"`
	Remind    cmd.RemindCommand    `command:"remind" description:"send today's reminders"`
	Server    cmd.ServerCommand    `command:"server" description:"run json api server"`
}

var opts Opts

var revision = "unknown"

func main() {
	if envFile := os.Getenv("ORGANIZER_ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			fmt.Fprintf(os.Stderr, "can't load env file %s: %v\n", envFile, err)
			os.Exit(1)
		}
	}

	p := flags.NewParser(&opts, flags.Default)
	p.CommandHandler = func(command flags.Commander, args []string) error {
		setupLogs()
		dbPath, err := dbFile(opts.DB)
		if err != nil {
			return err
		}
		c := command.(cmd.CommonOptionsCommander)
		c.SetCommon(cmd.CommonOpts{DBPath: dbPath, Revision: revision, Out: os.Stdout})
		err = c.Execute(args)
		if err != nil {
			log.Printf("[ERROR] failed with %+v", err)
		}
		return err
	}

	if _, err := p.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}

// dbFile expands ~ in path and makes the parent directory
func dbFile(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("can't get home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("can't make db directory: %w", err)
	}
	return path, nil
}

// setupLogs configures lgr and returns writer logs go to
func setupLogs() io.Writer {
	if !opts.Log.Enabled {
		log.Setup(log.Out(io.Discard), log.Err(io.Discard))
		return io.Discard
	}

	var out io.Writer = os.Stderr
	if opts.Log.Filename != "" {
		out = &lumberjack.Logger{
			Filename:   opts.Log.Filename,
			MaxSize:    opts.Log.MaxSize,
			MaxBackups: opts.Log.MaxBackups,
			MaxAge:     opts.Log.MaxAge,
			Compress:   opts.Log.EnabledCompress,
		}
	}

	if opts.Dbg {
		log.Setup(log.Out(out), log.Err(out), log.Debug, log.Msec, log.CallerFunc, log.CallerPkg, log.CallerFile)
		return out
	}
	log.Setup(log.Out(out), log.Err(out), log.Msec)
	return out
}
