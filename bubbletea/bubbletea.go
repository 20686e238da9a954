// Package bubbletea provides the terminal chat interface.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	assistant "github.com/tahazafark/virtual-ai-assistant"
)

// Chat is the conversation the TUI drives. *chat.Conversation implements it.
type Chat interface {
	Send(ctx context.Context, text string, onEvent func(assistant.Event)) (assistant.Result, error)
	Messages(ctx context.Context) ([]assistant.Message, error)
	Clear(ctx context.Context) error
	ActivePersona(ctx context.Context) (assistant.PersonaID, error)
	SetPersona(ctx context.Context, id assistant.PersonaID) error
	SpeechEnabled() bool
	ToggleSpeech() bool
	Listen(ctx context.Context) (string, error)
}

// Run creates and runs the Bubble Tea program. It blocks until the program
// exits. Cancelling ctx quits the program.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// StreamEventMsg delivers one streaming event to the model.
type StreamEventMsg struct {
	Event assistant.Event
}

// ReplyDoneMsg signals that a Send has returned.
type ReplyDoneMsg struct {
	Result assistant.Result
	Err    error
}

// HistoryMsg carries the stored conversation loaded at startup.
type HistoryMsg struct {
	Messages []assistant.Message
	Persona  assistant.PersonaID
	Err      error
}

// PersonaMsg reports the outcome of a persona switch.
type PersonaMsg struct {
	Persona assistant.PersonaID
	Err     error
}

// ClearedMsg reports the outcome of clearing the conversation.
type ClearedMsg struct {
	Err error
}

// TranscriptMsg carries the result of voice input.
type TranscriptMsg struct {
	Text string
	Err  error
}
