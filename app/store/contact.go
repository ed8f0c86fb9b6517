package store

import (
	"context"
	"fmt"
)

// Contact is a person in the address book
type Contact struct {
	ID      int64  `db:"id" json:"id" yaml:"id"`
	Name    string `db:"name" json:"name" yaml:"name"`
	Phone   string `db:"phone" json:"phone" yaml:"phone,omitempty"`
	Email   string `db:"email" json:"email" yaml:"email,omitempty"`
	Address string `db:"address" json:"address" yaml:"address,omitempty"`
}

// optional columns may be NULL in files written by older versions
const contactColumns = `id, name, COALESCE(phone, '') AS phone, COALESCE(email, '') AS email,
	COALESCE(address, '') AS address`

// AddContact inserts a new contact and returns its id. ID of the passed contact is ignored.
func (s *Store) AddContact(ctx context.Context, c Contact) (int64, error) {
	res, err := s.db.NamedExecContext(ctx,
		`INSERT INTO contacts (name, phone, email, address) VALUES (:name, :phone, :email, :address)`, c)
	if err != nil {
		return 0, fmt.Errorf("failed to add contact %q: %w", c.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get id of contact %q: %w", c.Name, err)
	}
	return id, nil
}

// GetContacts returns all contacts ordered by id
func (s *Store) GetContacts(ctx context.Context) ([]Contact, error) {
	contacts := []Contact{}
	if err := s.db.SelectContext(ctx, &contacts, `SELECT `+contactColumns+` FROM contacts ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to get contacts: %w", err)
	}
	return contacts, nil
}

// GetContactByID returns a single contact, ErrNotFound if id is unknown
func (s *Store) GetContactByID(ctx context.Context, id int64) (Contact, error) {
	var c Contact
	if err := s.db.GetContext(ctx, &c, `SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id); err != nil {
		return Contact{}, notFound(err, "failed to get contact %d", id)
	}
	return c, nil
}

// UpdateContact overwrites all fields of the contact with c.ID.
// Returns ErrNotFound and changes nothing if there is no such contact.
func (s *Store) UpdateContact(ctx context.Context, c Contact) error {
	res, err := s.db.NamedExecContext(ctx,
		`UPDATE contacts SET name = :name, phone = :phone, email = :email, address = :address WHERE id = :id`, c)
	if err != nil {
		return fmt.Errorf("failed to update contact %d: %w", c.ID, err)
	}
	return checkAffected(res)
}

// DeleteContact removes the contact. Contacts have no dependents, nothing else is touched.
func (s *Store) DeleteContact(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contact %d: %w", id, err)
	}
	return checkAffected(res)
}

// SearchContacts returns contacts with keyword as a substring of name, phone, email or address.
// Matching is case-insensitive for ASCII letters, the engine's default for LIKE.
func (s *Store) SearchContacts(ctx context.Context, keyword string) ([]Contact, error) {
	pattern := likePattern(keyword)
	contacts := []Contact{}
	err := s.db.SelectContext(ctx, &contacts, `SELECT `+contactColumns+` FROM contacts
		WHERE name LIKE ? ESCAPE '\' OR phone LIKE ? ESCAPE '\' OR email LIKE ? ESCAPE '\' OR address LIKE ? ESCAPE '\'
		ORDER BY id`, pattern, pattern, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search contacts for %q: %w", keyword, err)
	}
	return contacts, nil
}
