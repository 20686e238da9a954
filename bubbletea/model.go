package bubbletea

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	assistant "github.com/tahazafark/virtual-ai-assistant"
	"github.com/tahazafark/virtual-ai-assistant/chat"
	"github.com/tahazafark/virtual-ai-assistant/goldmark"
)

var _ tea.Model = Model{}

const keyHelp = "Enter send · Tab persona · Ctrl+T speech · Ctrl+R voice · Ctrl+L clear · Ctrl+C quit"

// Model is the Bubble Tea model for the chat TUI.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable conversation. Exported for test access.
	Viewport viewport.Model

	chat     Chat
	personas assistant.Personas
	styles   Styles
	md       *goldmark.Renderer

	blocks []MessageBlock
	// active receives deltas of the reply being streamed.
	active *AssistantTextBlock

	persona assistant.PersonaID
	speech  bool

	running   bool
	listening bool
	cancel    context.CancelFunc
	eventCh   chan assistant.Event
	doneCh    chan ReplyDoneMsg
	notice    string
	err       error
	ready     bool
}

// New creates a Model driving c.
func New(c Chat, personas assistant.Personas, theme assistant.Theme) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Prompt = ""
	ti.CharLimit = 0
	ti.Focus()

	return Model{
		Input:    ti,
		chat:     c,
		personas: personas,
		styles:   NewStyles(theme),
		md:       goldmark.New(theme),
		persona:  assistant.PersonaGeneral,
		speech:   c.SpeechEnabled(),
	}
}

// Running reports whether a reply is being generated.
func (m Model) Running() bool { return m.running }

// Listening reports whether voice input is in progress.
func (m Model) Listening() bool { return m.listening }

// Persona returns the active persona.
func (m Model) Persona() assistant.PersonaID { return m.persona }

// SpeechEnabled reports the speech state shown in the status line.
func (m Model) SpeechEnabled() bool { return m.speech }

// Err returns the last error shown in the status line, if any.
func (m Model) Err() error { return m.err }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, loadHistory(m.chat))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case HistoryMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		if msg.Persona != "" {
			m.persona = msg.Persona
		}
		m.blocks = m.historyBlocks(msg.Messages)
		return m.refresh(), nil

	case StreamEventMsg:
		if e, ok := msg.Event.(assistant.EventTextDelta); ok {
			if m.active == nil {
				m.active = NewAssistantTextBlock(m.md)
				m.blocks = append(m.blocks, m.active)
			}
			m.active.Append(e.Delta)
			m = m.refresh()
		}
		if m.eventCh != nil {
			return m, waitForEvent(m.eventCh, m.doneCh)
		}
		return m, nil

	case ReplyDoneMsg:
		return m.finishReply(msg)

	case PersonaMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.persona = msg.Persona
		m.notice = "Persona: " + m.personas.Lookup(msg.Persona).Name
		return m, nil

	case ClearedMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.blocks = nil
		m.notice = "Conversation cleared"
		return m.refresh(), nil

	case TranscriptMsg:
		return m.finishListening(msg)
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)
	if !m.busy() {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) busy() bool { return m.running || m.listening }

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	const (
		inputHeight  = 1
		statusHeight = 1
		gaps         = 2
	)
	h := max(msg.Height-inputHeight-statusHeight-gaps, 1)

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, h)
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = h
	}
	m.Input.Width = msg.Width
	return m.refresh()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.busy() {
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyEnter:
		text := strings.TrimSpace(m.Input.Value())
		if m.busy() || text == "" {
			return m, nil
		}
		return m.submit(text)

	case tea.KeyTab:
		if m.busy() {
			return m, nil
		}
		return m, setPersona(m.chat, m.personas.Next(m.persona).ID)

	case tea.KeyCtrlT:
		m.speech = m.chat.ToggleSpeech()
		if m.speech {
			m.notice = "Speech on"
		} else {
			m.notice = "Speech off"
		}
		return m, nil

	case tea.KeyCtrlL:
		if m.busy() {
			return m, nil
		}
		m.err = nil
		return m, clearConversation(m.chat)

	case tea.KeyCtrlR:
		if m.busy() {
			return m, nil
		}
		ctx, cancel := context.WithCancel(context.Background())
		m.cancel = cancel
		m.listening = true
		m.err = nil
		m.notice = ""
		return m, listen(ctx, m.chat)
	}

	if m.busy() {
		return m, nil
	}
	var cmds []tea.Cmd
	var cmd tea.Cmd
	// Runes go to the input only; 'j' and 'k' would otherwise scroll.
	if msg.Type != tea.KeyRunes {
		m.Viewport, cmd = m.Viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.Input.Blur()
	m.err = nil
	m.notice = ""
	m.blocks = append(m.blocks, NewUserMessageBlock(text, m.styles))
	m.active = nil
	m = m.refresh()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.eventCh = make(chan assistant.Event, 256)
	m.doneCh = make(chan ReplyDoneMsg, 1)
	m.running = true

	return m, tea.Batch(
		send(ctx, m.chat, text, m.eventCh, m.doneCh),
		waitForEvent(m.eventCh, m.doneCh),
	)
}

func (m Model) finishReply(msg ReplyDoneMsg) (tea.Model, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
	}
	m.running = false
	m.cancel = nil
	m.eventCh = nil
	m.doneCh = nil

	res := msg.Result
	switch {
	case res.Cancelled():
		m.dropActive()
		m.notice = "Cancelled"
	case res.Err != nil:
		m.dropActive()
		m.blocks = append(m.blocks, NewErrorBlock(res.Err.Error(), m.styles))
	case m.active == nil && res.Text != "":
		b := NewAssistantTextBlock(m.md)
		b.Append(res.Text)
		m.blocks = append(m.blocks, b)
	}
	if msg.Err != nil {
		m.err = msg.Err
	}
	m.active = nil
	m = m.refresh()
	return m, m.Input.Focus()
}

// dropActive removes the partially streamed reply, which is not stored.
func (m *Model) dropActive() {
	if m.active == nil {
		return
	}
	for i, b := range m.blocks {
		if b == MessageBlock(m.active) {
			m.blocks = append(m.blocks[:i:i], m.blocks[i+1:]...)
			break
		}
	}
	m.active = nil
}

func (m Model) finishListening(msg TranscriptMsg) (tea.Model, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
	}
	m.listening = false
	m.cancel = nil

	switch {
	case msg.Err == nil:
		m.Input.SetValue(msg.Text)
		m.Input.CursorEnd()
	case errors.Is(msg.Err, context.Canceled):
		m.notice = "Listening cancelled"
	case errors.Is(msg.Err, chat.ErrVoiceUnavailable):
		m.err = msg.Err
	default:
		m.blocks = append(m.blocks, NewErrorBlock(msg.Err.Error(), m.styles))
		m = m.refresh()
	}
	return m, m.Input.Focus()
}

func (m Model) historyBlocks(msgs []assistant.Message) []MessageBlock {
	blocks := make([]MessageBlock, 0, len(msgs))
	for _, msg := range msgs {
		switch {
		case msg.Role == assistant.RoleUser:
			blocks = append(blocks, NewUserMessageBlock(msg.Content, m.styles))
		case strings.HasPrefix(msg.Content, errorPrefix):
			blocks = append(blocks, NewErrorBlock(msg.Content, m.styles))
		default:
			b := NewAssistantTextBlock(m.md)
			b.Append(msg.Content)
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// refresh re-renders the conversation and scrolls to the bottom.
func (m Model) refresh() Model {
	if !m.ready {
		return m
	}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
	return m
}

func (m Model) renderContent() string {
	parts := make([]string, 0, len(m.blocks))
	for _, b := range m.blocks {
		if v := b.View(m.Viewport.Width); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, "\n\n")
}

func (m Model) statusLine() string {
	width := m.Viewport.Width
	badge := "[" + m.personas.Lookup(m.persona).Name + "]"
	speech := "speech off"
	if m.speech {
		speech = "speech on"
	}

	state, style := keyHelp, m.styles.Muted
	switch {
	case m.err != nil:
		state, style = "Error: "+m.err.Error(), m.styles.Error
	case m.listening:
		state, style = "Listening...", m.styles.Accent
	case m.running:
		state, style = "Generating...", m.styles.Accent
	case m.notice != "":
		state = m.notice
	}

	used := runewidth.StringWidth(badge) + runewidth.StringWidth(speech) + 2
	if width > 0 {
		if room := width - used; room > 0 {
			state = runewidth.Truncate(state, room, "…")
		} else {
			state = ""
		}
	}
	return m.styles.Persona.Render(badge) + " " + m.styles.Speech.Render(speech) + " " + style.Render(state)
}

func loadHistory(c Chat) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		msgs, err := c.Messages(ctx)
		if err != nil {
			return HistoryMsg{Err: err}
		}
		id, err := c.ActivePersona(ctx)
		return HistoryMsg{Messages: msgs, Persona: id, Err: err}
	}
}

func setPersona(c Chat, id assistant.PersonaID) tea.Cmd {
	return func() tea.Msg {
		return PersonaMsg{Persona: id, Err: c.SetPersona(context.Background(), id)}
	}
}

func clearConversation(c Chat) tea.Cmd {
	return func() tea.Msg {
		return ClearedMsg{Err: c.Clear(context.Background())}
	}
}

func listen(ctx context.Context, c Chat) tea.Cmd {
	return func() tea.Msg {
		text, err := c.Listen(ctx)
		return TranscriptMsg{Text: text, Err: err}
	}
}

// send runs one Send and reports completion on doneCh after closing eventCh.
func send(ctx context.Context, c Chat, text string, eventCh chan<- assistant.Event, doneCh chan<- ReplyDoneMsg) tea.Cmd {
	return func() tea.Msg {
		res, err := c.Send(ctx, text, func(e assistant.Event) {
			select {
			case eventCh <- e:
			case <-ctx.Done():
			}
		})
		close(eventCh)
		doneCh <- ReplyDoneMsg{Result: res, Err: err}
		return nil
	}
}

// waitForEvent returns the next event, or the ReplyDoneMsg once eventCh
// is closed.
func waitForEvent(eventCh <-chan assistant.Event, doneCh <-chan ReplyDoneMsg) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-eventCh
		if !ok {
			return <-doneCh
		}
		return StreamEventMsg{Event: e}
	}
}
