package mock

import (
	"context"

	assistant "github.com/tahazafark/virtual-ai-assistant"
)

// ConversationStore is a test double for assistant.ConversationStore.
type ConversationStore struct {
	AppendFn           func(ctx context.Context, msg assistant.Message) error
	MessagesFn         func(ctx context.Context) ([]assistant.Message, error)
	ClearFn            func(ctx context.Context) error
	ActivePersonaFn    func(ctx context.Context) (assistant.PersonaID, error)
	SetActivePersonaFn func(ctx context.Context, id assistant.PersonaID) error
}

// Append delegates to AppendFn.
func (s *ConversationStore) Append(ctx context.Context, msg assistant.Message) error {
	return s.AppendFn(ctx, msg)
}

// Messages delegates to MessagesFn.
func (s *ConversationStore) Messages(ctx context.Context) ([]assistant.Message, error) {
	return s.MessagesFn(ctx)
}

// Clear delegates to ClearFn.
func (s *ConversationStore) Clear(ctx context.Context) error {
	return s.ClearFn(ctx)
}

// ActivePersona delegates to ActivePersonaFn.
func (s *ConversationStore) ActivePersona(ctx context.Context) (assistant.PersonaID, error) {
	return s.ActivePersonaFn(ctx)
}

// SetActivePersona delegates to SetActivePersonaFn.
func (s *ConversationStore) SetActivePersona(ctx context.Context, id assistant.PersonaID) error {
	return s.SetActivePersonaFn(ctx, id)
}
