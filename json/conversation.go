// Package json persists the conversation log as a JSON file.
package json

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	assistant "github.com/tahazafark/virtual-ai-assistant"
)

const envelopeVersion = 1

// Snapshot is the persisted state of a conversation.
type Snapshot struct {
	ActivePersona assistant.PersonaID
	Messages      []assistant.Message
}

// envelope is the v1 wire format for a persisted conversation.
type envelope struct {
	Version       int          `json:"version"`
	ActivePersona string       `json:"active_persona"`
	Messages      []messageDTO `json:"messages"`
}

// MarshalSnapshot serializes s in v1 envelope format.
func MarshalSnapshot(s Snapshot) ([]byte, error) {
	env := envelope{
		Version:       envelopeVersion,
		ActivePersona: string(s.ActivePersona),
		Messages:      make([]messageDTO, len(s.Messages)),
	}
	for i, msg := range s.Messages {
		env.Messages[i] = marshalMessage(msg)
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalSnapshot deserializes a v1 envelope. An empty active persona
// becomes the general persona.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != envelopeVersion {
		return Snapshot{}, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	s := Snapshot{
		ActivePersona: assistant.PersonaID(env.ActivePersona),
		Messages:      make([]assistant.Message, len(env.Messages)),
	}
	if s.ActivePersona == "" {
		s.ActivePersona = assistant.PersonaGeneral
	}
	for i, dto := range env.Messages {
		msg, err := unmarshalMessage(dto)
		if err != nil {
			return Snapshot{}, fmt.Errorf("message %d: %w", i, err)
		}
		s.Messages[i] = msg
	}
	return s, nil
}

// Save writes s to path atomically, creating parent directories as needed.
func Save(path string, s Snapshot) error {
	data, err := MarshalSnapshot(s)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads a snapshot from path.
func Load(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalSnapshot(data)
}
