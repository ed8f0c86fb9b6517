package cmd

import (
	"context"

	"github.com/umputun/organizer/app/organizer"
	"github.com/umputun/organizer/app/store"
)

// ContactCommand groups contact subcommands
type ContactCommand struct {
	Add    ContactAddCommand    `command:"add" description:"add contact"`
	List   ContactListCommand   `command:"list" description:"list all contacts"`
	Get    ContactGetCommand    `command:"get" description:"show contact"`
	Update ContactUpdateCommand `command:"update" description:"update contact, fields not given are kept"`
	Delete ContactDeleteCommand `command:"delete" description:"delete contact"`
	Search ContactSearchCommand `command:"search" description:"search contacts by any field"`
}

// ContactFields are editable contact fields
type ContactFields struct {
	Name    string `long:"name" description:"contact name"`
	Phone   string `long:"phone" description:"phone number"`
	Email   string `long:"email" description:"email address"`
	Address string `long:"address" description:"postal address"`
}

// apply overwrites fields of c set on command line
func (f ContactFields) apply(c store.Contact) store.Contact {
	for _, p := range []struct {
		val string
		dst *string
	}{{f.Name, &c.Name}, {f.Phone, &c.Phone}, {f.Email, &c.Email}, {f.Address, &c.Address}} {
		if p.val != "" {
			*p.dst = p.val
		}
	}
	return c
}

// ContactAddCommand adds a contact
type ContactAddCommand struct {
	ContactFields
	CommonOpts
}

// Execute adds contact and prints its id
func (c *ContactAddCommand) Execute(_ []string) error {
	return c.withService(func(svc *organizer.Service, _ *store.Store) error {
		id, err := svc.AddContact(context.Background(), c.ContactFields.apply(store.Contact{}))
		if err != nil {
			return err
		}
		c.printf("contact %d added\n", id)
		return nil
	})
}

// ContactListCommand lists contacts
type ContactListCommand struct {
	CommonOpts
}

// Execute prints all contacts
func (c *ContactListCommand) Execute(_ []string) error {
	return c.withService(func(svc *organizer.Service, _ *store.Store) error {
		contacts, err := svc.Contacts(context.Background())
		if err != nil {
			return err
		}
		c.printContacts(contacts)
		return nil
	})
}

// ContactGetCommand shows a contact
type ContactGetCommand struct {
	ID int64 `long:"id" required:"true" description:"contact id"`
	CommonOpts
}

// Execute prints the contact
func (c *ContactGetCommand) Execute(_ []string) error {
	return c.withService(func(svc *organizer.Service, _ *store.Store) error {
		ct, err := svc.Contact(context.Background(), c.ID)
		if err != nil {
			return err
		}
		c.printContacts([]store.Contact{ct})
		return nil
	})
}

// ContactUpdateCommand updates contact fields given on command line
type ContactUpdateCommand struct {
	ID int64 `long:"id" required:"true" description:"contact id"`
	ContactFields
	CommonOpts
}

// Execute loads the contact, applies the changes and saves it
func (c *ContactUpdateCommand) Execute(_ []string) error {
	return c.withService(func(svc *organizer.Service, _ *store.Store) error {
		ctx := context.Background()
		ct, err := svc.Contact(ctx, c.ID)
		if err != nil {
			return err
		}
		if err = svc.UpdateContact(ctx, c.ContactFields.apply(ct)); err != nil {
			return err
		}
		c.printf("contact %d updated\n", c.ID)
		return nil
	})
}

// ContactDeleteCommand deletes a contact
type ContactDeleteCommand struct {
	ID int64 `long:"id" required:"true" description:"contact id"`
	CommonOpts
}

// Execute deletes the contact
func (c *ContactDeleteCommand) Execute(_ []string) error {
	return c.withService(func(svc *organizer.Service, _ *store.Store) error {
		if err := svc.DeleteContact(context.Background(), c.ID); err != nil {
			return err
		}
		c.printf("contact %d deleted\n", c.ID)
		return nil
	})
}

// ContactSearchCommand finds contacts with keyword in any field
type ContactSearchCommand struct {
	Query string `short:"q" long:"query" required:"true" description:"keyword to search for"`
	CommonOpts
}

// Execute prints matching contacts
func (c *ContactSearchCommand) Execute(_ []string) error {
	return c.withService(func(svc *organizer.Service, _ *store.Store) error {
		contacts, err := svc.SearchContacts(context.Background(), c.Query)
		if err != nil {
			return err
		}
		c.printContacts(contacts)
		return nil
	})
}
