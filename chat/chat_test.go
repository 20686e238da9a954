package chat_test

import (
	"context"
	"sync"

	assistant "github.com/tahazafark/virtual-ai-assistant"
	"github.com/tahazafark/virtual-ai-assistant/mock"
)

// memStore returns a ConversationStore double backed by a slice.
func memStore() (*mock.ConversationStore, func() []assistant.Message) {
	var (
		mu      sync.Mutex
		msgs    []assistant.Message
		persona = assistant.PersonaGeneral
	)
	s := &mock.ConversationStore{
		AppendFn: func(ctx context.Context, m assistant.Message) error {
			mu.Lock()
			defer mu.Unlock()
			msgs = append(msgs, m)
			return nil
		},
		MessagesFn: func(ctx context.Context) ([]assistant.Message, error) {
			mu.Lock()
			defer mu.Unlock()
			return append([]assistant.Message(nil), msgs...), nil
		},
		ClearFn: func(ctx context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			msgs = nil
			return nil
		},
		ActivePersonaFn: func(ctx context.Context) (assistant.PersonaID, error) {
			mu.Lock()
			defer mu.Unlock()
			return persona, nil
		},
		SetActivePersonaFn: func(ctx context.Context, id assistant.PersonaID) error {
			mu.Lock()
			defer mu.Unlock()
			persona = id
			return nil
		},
	}
	snapshot := func() []assistant.Message {
		mu.Lock()
		defer mu.Unlock()
		return append([]assistant.Message(nil), msgs...)
	}
	return s, snapshot
}
