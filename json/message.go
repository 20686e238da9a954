package json

import (
	"fmt"
	"time"

	assistant "github.com/tahazafark/virtual-ai-assistant"
)

// messageDTO is the JSON representation of a Message.
type messageDTO struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Persona   string    `json:"persona"`
	Timestamp time.Time `json:"timestamp"`
}

func marshalMessage(msg assistant.Message) messageDTO {
	return messageDTO{
		ID:        msg.ID,
		Role:      string(msg.Role),
		Content:   msg.Content,
		Persona:   string(msg.Persona),
		Timestamp: msg.Timestamp,
	}
}

func unmarshalMessage(dto messageDTO) (assistant.Message, error) {
	switch assistant.Role(dto.Role) {
	case assistant.RoleUser, assistant.RoleAssistant:
	default:
		return assistant.Message{}, fmt.Errorf("unknown message role: %q", dto.Role)
	}
	return assistant.Message{
		ID:        dto.ID,
		Role:      assistant.Role(dto.Role),
		Content:   dto.Content,
		Persona:   assistant.PersonaID(dto.Persona),
		Timestamp: dto.Timestamp,
	}, nil
}
