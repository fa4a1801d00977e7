package listview

import "errors"

// ErrNoDraft is returned when saving without an open draft
var ErrNoDraft = errors.New("no draft in progress")

// Draft is a local editable copy of a record. Edits stay local until Save
// succeeds; Discard drops them.
type Draft[T any] struct {
	original T
	current  T
	open     bool
}

// Cloner is implemented by records with pointer or slice fields. Drafts of
// such records hold deep copies, so edits never reach the original.
type Cloner[T any] interface {
	Clone() T
}

func clone[T any](v T) T {
	if c, ok := any(&v).(Cloner[T]); ok {
		return c.Clone()
	}
	return v
}

// Open starts editing a copy of record
func Open[T any](record T) *Draft[T] {
	return &Draft[T]{original: clone(record), current: clone(record), open: true}
}

// Edit applies fn to the working copy. An error from fn is returned as is
// and the edits made so far stay in the draft.
func (d *Draft[T]) Edit(fn func(*T) error) error {
	if !d.open {
		return ErrNoDraft
	}
	return fn(&d.current)
}

// Current returns a copy of the working record
func (d *Draft[T]) Current() T {
	return clone(d.current)
}

// Original returns the record as it was when the draft was opened or last saved
func (d *Draft[T]) Original() T {
	return clone(d.original)
}

func (d *Draft[T]) IsOpen() bool {
	return d.open
}

// Save hands the working copy to persist. On success the result becomes the
// new original and the draft closes; on failure nothing changes and the
// draft stays open.
func (d *Draft[T]) Save(persist func(T) (T, error)) (T, error) {
	var zero T
	if !d.open {
		return zero, ErrNoDraft
	}
	saved, err := persist(clone(d.current))
	if err != nil {
		return zero, err
	}
	d.original = clone(saved)
	d.current = clone(saved)
	d.open = false
	return saved, nil
}

// Discard drops local edits and closes the draft
func (d *Draft[T]) Discard() {
	d.current = clone(d.original)
	d.open = false
}
