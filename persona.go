package assistant

import (
	"fmt"
	"slices"
)

// PersonaID identifies an assistant persona.
type PersonaID string

const (
	PersonaGeneral PersonaID = "general"
	PersonaVoice   PersonaID = "voice"
	PersonaImage   PersonaID = "image"
	PersonaTask    PersonaID = "task"
	PersonaEmail   PersonaID = "email"
)

// Persona is a named system-prompt configuration.
type Persona struct {
	ID           PersonaID
	Name         string
	Description  string
	SystemPrompt string
}

// Validate checks that the persona can be used to build requests.
func (p Persona) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("persona id is required: %w", ErrValidation)
	}
	if p.SystemPrompt == "" {
		return fmt.Errorf("persona %q: system prompt is required: %w", p.ID, ErrValidation)
	}
	return nil
}

// Personas is an ordered persona registry. The zero value is empty; use
// DefaultPersonas or NewPersonas.
type Personas struct {
	order []PersonaID
	byID  map[PersonaID]Persona
}

// NewPersonas builds a registry in the given order. Later entries with a
// duplicate ID replace earlier ones in place.
func NewPersonas(ps ...Persona) (Personas, error) {
	r := Personas{byID: make(map[PersonaID]Persona, len(ps))}
	for _, p := range ps {
		if err := p.Validate(); err != nil {
			return Personas{}, err
		}
		if _, ok := r.byID[p.ID]; !ok {
			r.order = append(r.order, p.ID)
		}
		r.byID[p.ID] = p
	}
	if _, ok := r.byID[PersonaGeneral]; !ok {
		return Personas{}, fmt.Errorf("persona %q is required: %w", PersonaGeneral, ErrValidation)
	}
	return r, nil
}

// Merge returns a copy of r with overrides applied. Overrides with a known ID
// replace the built-in entry; new IDs are appended.
func (r Personas) Merge(overrides ...Persona) (Personas, error) {
	all := make([]Persona, 0, len(r.order)+len(overrides))
	for _, id := range r.order {
		all = append(all, r.byID[id])
	}
	return NewPersonas(append(all, overrides...)...)
}

// Lookup returns the persona for id. Unknown IDs fall back to the general
// persona.
func (r Personas) Lookup(id PersonaID) Persona {
	if p, ok := r.byID[id]; ok {
		return p
	}
	return r.byID[PersonaGeneral]
}

// Has reports whether id is registered.
func (r Personas) Has(id PersonaID) bool {
	_, ok := r.byID[id]
	return ok
}

// All returns the personas in registry order.
func (r Personas) All() []Persona {
	out := make([]Persona, len(r.order))
	for i, id := range r.order {
		out[i] = r.byID[id]
	}
	return out
}

// Next returns the persona after id, wrapping around. Unknown IDs start at
// the first persona.
func (r Personas) Next(id PersonaID) Persona {
	if len(r.order) == 0 {
		return Persona{}
	}
	i := slices.Index(r.order, id)
	return r.byID[r.order[(i+1)%len(r.order)]]
}

// DefaultPersonas returns the built-in persona set.
func DefaultPersonas() Personas {
	r, err := NewPersonas(
		Persona{
			ID:          PersonaGeneral,
			Name:        "General Assistant",
			Description: "General tasks and conversation",
			SystemPrompt: "You are a helpful AI assistant focused on general tasks and conversation. " +
				"You provide clear, concise, and accurate responses while maintaining a friendly tone.",
		},
		Persona{
			ID:          PersonaVoice,
			Name:        "Voice Assistant",
			Description: "Natural conversation optimized for speech",
			SystemPrompt: "You are a voice interaction specialist, focused on natural conversation and voice commands. " +
				"Your responses are optimized for speech output, using clear language and natural pacing. " +
				"Keep responses concise and easy to follow when spoken aloud.",
		},
		Persona{
			ID:          PersonaImage,
			Name:        "Image Processing",
			Description: "Image description and analysis",
			SystemPrompt: "You are an image processing assistant, helping with image-related tasks and analysis. " +
				"You provide detailed descriptions and insights about images while maintaining technical accuracy.",
		},
		Persona{
			ID:          PersonaTask,
			Name:        "Task Manager",
			Description: "Planning and tracking activities",
			SystemPrompt: "You are a task management specialist, helping organize and track activities. " +
				"You break down complex tasks into manageable steps and provide clear action items. " +
				"Focus on practical, actionable advice and time management.",
		},
		Persona{
			ID:          PersonaEmail,
			Name:        "Email Assistant",
			Description: "Drafting and improving emails",
			SystemPrompt: "You are an email assistant, helping compose and manage email communications. " +
				"You help draft professional emails, suggest improvements, and maintain appropriate tone. " +
				"Focus on clarity, professionalism, and effective communication.",
		},
	)
	if err != nil {
		panic(err) // built-in set is static
	}
	return r
}
