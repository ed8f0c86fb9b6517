package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AddAndGetContact(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	inputs := []Contact{
		{Name: "John Smith", Phone: "555-1234", Email: "john@example.com", Address: "1 Main St"},
		{Name: "Jane Doe"},
		{Name: "Zoë Ünicode", Address: "Straße 5"},
	}

	ids := map[int64]bool{}
	for _, in := range inputs {
		id, err := s.AddContact(ctx, in)
		require.NoError(t, err)
		assert.False(t, ids[id], "id %d assigned twice", id)
		ids[id] = true

		got, err := s.GetContactByID(ctx, id)
		require.NoError(t, err)
		in.ID = id
		assert.Equal(t, in, got)
	}

	contacts, err := s.GetContacts(ctx)
	require.NoError(t, err)
	require.Len(t, contacts, 3)
	assert.Equal(t, "John Smith", contacts[0].Name)
	assert.Equal(t, "Jane Doe", contacts[1].Name)
	assert.Equal(t, "Zoë Ünicode", contacts[2].Name)
}

func TestStore_AddContactIgnoresID(t *testing.T) {
	s := newTestStore(t)
	id, err := s.AddContact(t.Context(), Contact{ID: 100, Name: "x"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestStore_GetContactNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetContactByID(t.Context(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_GetContactsEmpty(t *testing.T) {
	s := newTestStore(t)
	contacts, err := s.GetContacts(t.Context())
	require.NoError(t, err)
	assert.NotNil(t, contacts)
	assert.Empty(t, contacts)
}

func TestStore_UpdateContact(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	id, err := s.AddContact(ctx, Contact{Name: "John", Phone: "1"})
	require.NoError(t, err)
	otherID, err := s.AddContact(ctx, Contact{Name: "Other", Phone: "2"})
	require.NoError(t, err)

	upd := Contact{ID: id, Name: "John Smith", Phone: "555", Email: "j@example.com", Address: "Home"}
	require.NoError(t, s.UpdateContact(ctx, upd))

	got, err := s.GetContactByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, upd, got)

	other, err := s.GetContactByID(ctx, otherID)
	require.NoError(t, err)
	assert.Equal(t, Contact{ID: otherID, Name: "Other", Phone: "2"}, other, "other contact untouched")

	t.Run("unknown id", func(t *testing.T) {
		err := s.UpdateContact(ctx, Contact{ID: 999, Name: "ghost"})
		assert.ErrorIs(t, err, ErrNotFound)
		contacts, err := s.GetContacts(ctx)
		require.NoError(t, err)
		assert.Len(t, contacts, 2)
	})
}

func TestStore_DeleteContact(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	id1, err := s.AddContact(ctx, Contact{Name: "one"})
	require.NoError(t, err)
	id2, err := s.AddContact(ctx, Contact{Name: "two"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteContact(ctx, id1))
	_, err = s.GetContactByID(ctx, id1)
	assert.ErrorIs(t, err, ErrNotFound)

	contacts, err := s.GetContacts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Contact{{ID: id2, Name: "two"}}, contacts)

	assert.ErrorIs(t, s.DeleteContact(ctx, id1), ErrNotFound, "second delete")

	// ids are never reused
	id3, err := s.AddContact(ctx, Contact{Name: "three"})
	require.NoError(t, err)
	assert.Greater(t, id3, id2)
}

func TestStore_SearchContacts(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	data := []Contact{
		{Name: "John Smith", Phone: "555-0001"},
		{Name: "Anna", Email: "anna.SMITH@example.com"},
		{Name: "Bob", Address: "12 Blacksmith Lane"},
		{Name: "Carol", Phone: "555-0002", Email: "carol@example.com", Address: "Elm St"},
		{Name: "Percent", Address: "100% street"},
		{Name: "Under_score"},
	}
	for _, c := range data {
		_, err := s.AddContact(ctx, c)
		require.NoError(t, err)
	}

	names := func(cc []Contact) []string {
		res := []string{}
		for _, c := range cc {
			res = append(res, c.Name)
		}
		return res
	}

	tests := []struct {
		keyword string
		want    []string
	}{
		{"smith", []string{"John Smith", "Anna", "Bob"}},
		{"SMITH", []string{"John Smith", "Anna", "Bob"}},
		{"555", []string{"John Smith", "Carol"}},
		{"example.com", []string{"Anna", "Carol"}},
		{"elm", []string{"Carol"}},
		{"mit", []string{"John Smith", "Anna", "Bob"}},
		{"nobody", []string{}},
		{"%", []string{"Percent"}},
		{"_", []string{"Under_score"}},
		{"", []string{"John Smith", "Anna", "Bob", "Carol", "Percent", "Under_score"}},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			res, err := s.SearchContacts(ctx, tt.keyword)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(res))
		})
	}
}
