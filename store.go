package assistant

import "context"

// ConversationStore persists the conversation log and the active persona.
// Messages returns entries in append order. ActivePersona returns
// PersonaGeneral when none has been set.
type ConversationStore interface {
	Append(ctx context.Context, msg Message) error
	Messages(ctx context.Context) ([]Message, error)
	Clear(ctx context.Context) error
	ActivePersona(ctx context.Context) (PersonaID, error)
	SetActivePersona(ctx context.Context, id PersonaID) error
}
