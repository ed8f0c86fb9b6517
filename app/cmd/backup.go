package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/umputun/organizer/app/backup"
	"github.com/umputun/organizer/app/organizer"
	"github.com/umputun/organizer/app/store"
)

// ExportCommand writes all records to YAML backup
type ExportCommand struct {
	File string `short:"f" long:"file" description:"backup file, stdout if not set"`
	CommonOpts
}

// Execute exports the store
func (c *ExportCommand) Execute(_ []string) error {
	return c.withService(func(_ *organizer.Service, st *store.Store) error {
		w := c.out()
		if c.File != "" {
			fh, err := os.Create(c.File) //nolint:gosec // file name from command line
			if err != nil {
				return fmt.Errorf("can't create backup file: %w", err)
			}
			defer fh.Close()
			w = fh
		}
		doc, err := backup.New(st, c.clock()).Export(context.Background(), w)
		if err != nil {
			return err
		}
		if c.File != "" {
			c.printf("exported %d contacts, %d meetings, %d reminders to %s\n",
				len(doc.Contacts), len(doc.Meetings), len(doc.Reminders), c.File)
		}
		return nil
	})
}

// ImportCommand adds records from YAML backup
type ImportCommand struct {
	File string `short:"f" long:"file" required:"true" description:"backup file, - for stdin"`
	CommonOpts
}

// Execute imports the backup, nothing is imported if any record is invalid
func (c *ImportCommand) Execute(_ []string) error {
	var r io.Reader = os.Stdin
	if c.File != "-" {
		fh, err := os.Open(c.File) //nolint:gosec // file name from command line
		if err != nil {
			return fmt.Errorf("can't open backup file: %w", err)
		}
		defer fh.Close()
		r = fh
	}
	return c.withService(func(_ *organizer.Service, st *store.Store) error {
		stats, err := backup.New(st, c.clock()).Import(context.Background(), r)
		if err != nil {
			return err
		}
		c.printf("imported %d contacts, %d meetings, %d reminders\n", stats.Contacts, stats.Meetings, stats.Reminders)
		return nil
	})
}

// SchemaCommand prints JSON schema of the backup file
type SchemaCommand struct {
	File string `short:"f" long:"file" description:"output file, stdout if not set"`
	CommonOpts
}

// Execute writes the schema
func (c *SchemaCommand) Execute(_ []string) error {
	data, err := json.MarshalIndent(backup.GenerateSchema(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}
	if c.File == "" {
		c.printf("%s\n", data)
		return nil
	}
	if err = os.WriteFile(c.File, data, 0o600); err != nil {
		return fmt.Errorf("failed to write schema file: %w", err)
	}
	c.printf("schema written to %s\n", c.File)
	return nil
}
