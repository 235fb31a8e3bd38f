// Package memapi is an in-memory todoes backend serving the HTTP surface the todoes client expects. It is used
// by tests and by the todoesd development server; nothing is persisted.
package memapi

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/nicolagi/todoes"
)

// Errors returned by Store, mapped to 404, 409 and 400 by the router.
var (
	ErrNotFound = errors.New("todo not found")
	ErrConflict = errors.New("todo id already taken")
	ErrNoID     = errors.New("todo has no id")
)

// Store keeps todoes in insertion order. Todoes going in or out are copied, so callers never share memory with
// the store.
type Store struct {
	mu     sync.Mutex
	todoes []*todoes.Todo
}

// NewStore creates a store holding copies of the given todoes.
func NewStore(seed ...*todoes.Todo) *Store {
	s := &Store{}
	for _, todo := range seed {
		s.todoes = append(s.todoes, clone(todo))
	}
	return s
}

// Filter holds the optional conditions for Find. Conditions are ANDed together.
type Filter struct {
	ID   *int64
	Name string // Case-insensitive substring; empty matches all.
}

func (f Filter) match(todo *todoes.Todo) bool {
	if f.ID != nil && todo.ID != *f.ID {
		return false
	}
	if f.Name != "" && !strings.Contains(strings.ToLower(todo.Name), strings.ToLower(f.Name)) {
		return false
	}
	return true
}

// Find returns the matching todoes, never nil.
func (s *Store) Find(f Filter) []*todoes.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	results := []*todoes.Todo{}
	for _, todo := range s.todoes {
		if f.match(todo) {
			results = append(results, clone(todo))
		}
	}
	return results
}

// Get returns a copy of the todo with the given id, or ErrNotFound.
func (s *Store) Get(id int64) (*todoes.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(id); i >= 0 {
		return clone(s.todoes[i]), nil
	}
	return nil, ErrNotFound
}

// Add stores the todo, assigning the next id if it has none.
func (s *Store) Add(todo *todoes.Todo) (*todoes.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	added := clone(todo)
	if added.ID == 0 {
		added.ID = s.nextID()
	} else if s.index(added.ID) >= 0 {
		return nil, ErrConflict
	}
	s.todoes = append(s.todoes, added)
	return clone(added), nil
}

// Update replaces the todo with the same id, keeping its position.
func (s *Store) Update(todo *todoes.Todo) error {
	if todo.ID == 0 {
		return ErrNoID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(todo.ID)
	if i < 0 {
		return ErrNotFound
	}
	s.todoes[i] = clone(todo)
	return nil
}

// Delete removes the todo with the given id and returns it, or ErrNotFound.
func (s *Store) Delete(id int64) (*todoes.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	deleted := s.todoes[i]
	s.todoes = append(s.todoes[:i], s.todoes[i+1:]...)
	return deleted, nil
}

func (s *Store) index(id int64) int {
	for i, todo := range s.todoes {
		if todo.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) nextID() int64 {
	var highest int64
	for _, todo := range s.todoes {
		if todo.ID > highest {
			highest = todo.ID
		}
	}
	return highest + 1
}

func clone(todo *todoes.Todo) *todoes.Todo {
	c := *todo
	if todo.Extra != nil {
		c.Extra = make(map[string]json.RawMessage, len(todo.Extra))
		for k, v := range todo.Extra {
			c.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return &c
}
