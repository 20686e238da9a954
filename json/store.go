package json

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"sync"

	assistant "github.com/tahazafark/virtual-ai-assistant"
)

var _ assistant.ConversationStore = (*Store)(nil)

// Store is a ConversationStore backed by a single JSON file. Every mutation
// rewrites the file. The file is read once, on first use.
type Store struct {
	path string

	mu     sync.Mutex
	loaded bool
	state  Snapshot
}

// NewStore returns a Store persisting to path. The file is created on the
// first write.
func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) load() error {
	if s.loaded {
		return nil
	}
	snap, err := Load(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		snap = Snapshot{ActivePersona: assistant.PersonaGeneral}
	case err != nil:
		return fmt.Errorf("json: %w", err)
	}
	s.state = snap
	s.loaded = true
	return nil
}

// commit persists next and adopts it on success.
func (s *Store) commit(next Snapshot) error {
	if err := Save(s.path, next); err != nil {
		return fmt.Errorf("json: %w", err)
	}
	s.state = next
	return nil
}

// Append implements assistant.ConversationStore.
func (s *Store) Append(ctx context.Context, msg assistant.Message) error {
	if err := assistant.ValidateMessage(msg); err != nil {
		return fmt.Errorf("json: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}
	next := s.state
	next.Messages = append(slices.Clip(next.Messages), msg)
	return s.commit(next)
}

// Messages implements assistant.ConversationStore.
func (s *Store) Messages(ctx context.Context) ([]assistant.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return nil, err
	}
	return slices.Clone(s.state.Messages), nil
}

// Clear implements assistant.ConversationStore. The active persona is kept.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}
	return s.commit(Snapshot{ActivePersona: s.state.ActivePersona})
}

// ActivePersona implements assistant.ConversationStore.
func (s *Store) ActivePersona(ctx context.Context) (assistant.PersonaID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return "", err
	}
	return s.state.ActivePersona, nil
}

// SetActivePersona implements assistant.ConversationStore.
func (s *Store) SetActivePersona(ctx context.Context, id assistant.PersonaID) error {
	if id == "" {
		return fmt.Errorf("json: persona id is required: %w", assistant.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}
	next := s.state
	next.ActivePersona = id
	return s.commit(next)
}
