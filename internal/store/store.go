// Package store holds the single mutable copy of the enhancement parameters.
package store

import (
	"sync"

	"image-enhancer/internal/core"
	"image-enhancer/internal/presets"
)

// State is a snapshot of the store.
type State struct {
	Params core.Params
	Preset presets.Name
	Sepia  bool
}

// DefaultState is the session start state.
func DefaultState() State {
	return State{Params: core.DefaultParams(), Preset: presets.None}
}

// Store owns the parameter vector. Every mutation notifies subscribers exactly
// once, synchronously and in subscription order, after the lock is released.
type Store struct {
	mu          sync.RWMutex
	state       State
	subscribers []func(State)
}

func New() *Store {
	return &Store{state: DefaultState()}
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) Params() core.Params {
	return s.State().Params
}

// Subscribe registers fn for change notifications.
func (s *Store) Subscribe(fn func(State)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

// Set shallow-merges the fields present in p. The active preset and sepia flag are kept.
func (s *Store) Set(p core.Partial) {
	s.update(func(st *State) {
		st.Params = st.Params.Merge(p)
	})
}

// SetChecked is Set for values that did not come from bounded controls.
// Invalid updates are rejected without touching the store.
func (s *Store) SetChecked(p core.Partial) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.Set(p)
	return nil
}

// ApplyPreset merges the preset's override and takes its sepia flag.
// Scale is never changed; "none" resets the tone fields and sharpness only.
func (s *Store) ApplyPreset(name string) error {
	p, err := presets.Resolve(name)
	if err != nil {
		return err
	}
	s.update(func(st *State) {
		st.Params = st.Params.Merge(p.Override)
		st.Preset = p.Name
		st.Sepia = p.ApplySepia
	})
	return nil
}

// ResetAll restores every field, scale included, to its default.
func (s *Store) ResetAll() {
	s.update(func(st *State) {
		*st = DefaultState()
	})
}

func (s *Store) update(fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	snapshot := s.state
	subs := make([]func(State), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, sub := range subs {
		sub(snapshot)
	}
}
