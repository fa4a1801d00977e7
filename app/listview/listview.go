package listview

import (
	"strings"
	"sync"
)

// Row is an item with a stable id
type Row interface {
	GetId() uint
}

// Selection maps row ids to their checked state
type Selection map[uint]bool

// Any reports whether at least one row is checked
func (s Selection) Any() bool {
	for _, v := range s {
		if v {
			return true
		}
	}
	return false
}

// State is the query, results and selection of one list view. Every
// SetQuery issues a new generation; results for older generations are
// dropped by Apply.
type State[T Row] struct {
	mu         sync.Mutex
	query      string
	generation uint64
	applied    uint64
	items      []T
	selection  Selection
}

func NewState[T Row]() *State[T] {
	return &State[T]{selection: Selection{}}
}

// SetQuery records a new query, clears the selection and returns the
// generation the caller must pass back to Apply.
func (s *State[T]) SetQuery(q string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = q
	s.generation++
	s.selection = Selection{}
	return s.generation
}

// Apply installs items fetched for gen. It reports false, leaving state
// untouched, when a newer query has been issued since.
func (s *State[T]) Apply(gen uint64, items []T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || gen < s.applied {
		return false
	}
	s.applied = gen
	s.items = items
	return true
}

func (s *State[T]) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

func (s *State[T]) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Items returns a copy of the visible rows
func (s *State[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]T(nil), s.items...)
}

// Toggle flips the checked state of id
func (s *State[T]) Toggle(id uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection[id] = !s.selection[id]
}

// Select sets the checked state of id
func (s *State[T]) Select(id uint, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on {
		s.selection[id] = true
	} else {
		delete(s.selection, id)
	}
}

func (s *State[T]) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = Selection{}
}

// Effective returns the rows a bulk action applies to
func (s *State[T]) Effective() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return EffectiveSet(s.items, s.selection)
}

// EffectiveSet is the checked rows among visible, or all of visible when
// nothing is checked. Order follows visible.
func EffectiveSet[T Row](visible []T, selection Selection) []T {
	if !selection.Any() {
		return append([]T(nil), visible...)
	}
	out := make([]T, 0, len(selection))
	for _, row := range visible {
		if selection[row.GetId()] {
			out = append(out, row)
		}
	}
	return out
}

// CollectEmails returns distinct, non-empty emails in first-seen order.
// Duplicates are detected case-insensitively.
func CollectEmails[T any](rows []T, email func(T) string) []string {
	out := []string{}
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		e := strings.TrimSpace(email(row))
		if e == "" {
			continue
		}
		key := strings.ToLower(e)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}
	return out
}
