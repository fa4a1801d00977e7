package listview

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	id    uint
	email string
}

func (r row) GetId() uint { return r.id }

func emailOf(r row) string { return r.email }

func TestApplyDropsStaleGenerations(t *testing.T) {
	s := NewState[row]()

	slow := s.SetQuery("ru")
	fast := s.SetQuery("ruiz")

	assert.True(t, s.Apply(fast, []row{{id: 1}}))
	assert.False(t, s.Apply(slow, []row{{id: 1}, {id: 2}, {id: 3}}))

	assert.Len(t, s.Items(), 1)
	assert.Equal(t, "ruiz", s.Query())
	assert.Equal(t, fast, s.Generation())
}

func TestConcurrentResponsesKeepLatest(t *testing.T) {
	s := NewState[row]()
	gens := make([]uint64, 20)
	for i := range gens {
		gens[i] = s.SetQuery("q")
	}

	var wg sync.WaitGroup
	for i, g := range gens {
		wg.Add(1)
		go func(i int, g uint64) {
			defer wg.Done()
			s.Apply(g, []row{{id: uint(i)}})
		}(i, g)
	}
	wg.Wait()

	require.Len(t, s.Items(), 1)
	assert.Equal(t, uint(19), s.Items()[0].id)
}

func TestSetQueryClearsSelection(t *testing.T) {
	s := NewState[row]()
	gen := s.SetQuery("")
	s.Apply(gen, []row{{id: 1, email: "a@x.io"}, {id: 2, email: "b@x.io"}})

	s.Toggle(2)
	assert.Equal(t, []row{{id: 2, email: "b@x.io"}}, s.Effective())

	s.SetQuery("b")
	assert.Len(t, s.Effective(), 2, "no selection means every visible row")
}

func TestEffectiveSet(t *testing.T) {
	visible := []row{{id: 1}, {id: 2}, {id: 3}}

	assert.Equal(t, visible, EffectiveSet(visible, Selection{}))
	assert.Equal(t, visible, EffectiveSet(visible, Selection{2: false}))

	// selected rows that are no longer visible are ignored
	got := EffectiveSet(visible, Selection{3: true, 1: true, 9: true})
	assert.Equal(t, []row{{id: 1}, {id: 3}}, got)
}

func TestCollectEmails(t *testing.T) {
	rows := []row{
		{id: 1, email: "ana@x.io"},
		{id: 2, email: ""},
		{id: 3, email: "bo@x.io"},
		{id: 4, email: "ANA@x.io"},
		{id: 5, email: "  "},
		{id: 6, email: "bo@x.io"},
	}
	assert.Equal(t, []string{"ana@x.io", "bo@x.io"}, CollectEmails(rows, emailOf))
	assert.Equal(t, []string{}, CollectEmails([]row{}, emailOf))
}

func TestSelectAndClear(t *testing.T) {
	s := NewState[row]()
	s.Apply(s.SetQuery(""), []row{{id: 1}, {id: 2}})

	s.Select(1, true)
	assert.Len(t, s.Effective(), 1)
	s.Select(1, false)
	assert.Len(t, s.Effective(), 2)

	s.Select(2, true)
	s.ClearSelection()
	assert.Len(t, s.Effective(), 2)
}

func TestDraftSaveAndDiscard(t *testing.T) {
	d := Open(row{id: 1, email: "old@x.io"})
	require.NoError(t, d.Edit(func(r *row) error { r.email = "new@x.io"; return nil }))

	_, err := d.Save(func(r row) (row, error) { return row{}, errors.New("Email already in use") })
	require.Error(t, err)
	assert.True(t, d.IsOpen())
	assert.Equal(t, "new@x.io", d.Current().email)
	assert.Equal(t, "old@x.io", d.Original().email)

	saved, err := d.Save(func(r row) (row, error) { return r, nil })
	require.NoError(t, err)
	assert.Equal(t, "new@x.io", saved.email)
	assert.False(t, d.IsOpen())

	_, err = d.Save(func(r row) (row, error) { return r, nil })
	assert.ErrorIs(t, err, ErrNoDraft)

	d2 := Open(row{id: 2, email: "keep@x.io"})
	require.NoError(t, d2.Edit(func(r *row) error { r.email = "drop@x.io"; return nil }))
	d2.Discard()
	assert.Equal(t, "keep@x.io", d2.Current().email)
	err = d2.Edit(func(r *row) error { r.email = "ignored@x.io"; return nil })
	assert.ErrorIs(t, err, ErrNoDraft)
	assert.Equal(t, "keep@x.io", d2.Current().email)
}

type contact struct {
	name  *string
	notes []string
}

func (c *contact) Clone() contact {
	out := contact{notes: append([]string(nil), c.notes...)}
	if c.name != nil {
		name := *c.name
		out.name = &name
	}
	return out
}

func TestDraftDoesNotShareFieldsWithOriginal(t *testing.T) {
	name := "Ana"
	record := contact{name: &name, notes: []string{"vip"}}

	d := Open(record)
	require.NoError(t, d.Edit(func(c *contact) error {
		*c.name = "Bea"
		c.notes[0] = "buyer"
		return nil
	}))

	assert.Equal(t, "Ana", name)
	assert.Equal(t, []string{"vip"}, record.notes)
	assert.Equal(t, "Ana", *d.Original().name)
	assert.Equal(t, "Bea", *d.Current().name)

	d.Discard()
	assert.Equal(t, "Ana", *d.Current().name)
	assert.Equal(t, []string{"vip"}, d.Current().notes)
}

func TestDraftEditErrorKeepsDraftOpen(t *testing.T) {
	d := Open(row{id: 1, email: "a@x.io"})
	err := d.Edit(func(r *row) error { return errors.New("First and last name are required.") })
	require.Error(t, err)
	assert.True(t, d.IsOpen())
}
