package assistant

import (
	"fmt"
	"net/url"
)

// Validate checks universal constraints on StreamRequest.
func (r StreamRequest) Validate() error {
	u, err := url.Parse(r.URL)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", r.URL, ErrValidation)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url must be http or https, got %q: %w", r.URL, ErrValidation)
	}
	if u.Host == "" {
		return fmt.Errorf("url has no host: %q: %w", r.URL, ErrValidation)
	}
	if r.FirstByteTimeout < 0 {
		return fmt.Errorf("first byte timeout must be non-negative, got %s: %w", r.FirstByteTimeout, ErrValidation)
	}
	if r.IdleTimeout < 0 {
		return fmt.Errorf("idle timeout must be non-negative, got %s: %w", r.IdleTimeout, ErrValidation)
	}
	return nil
}

// ValidateMessage checks that a message can be persisted.
func ValidateMessage(msg Message) error {
	switch msg.Role {
	case RoleUser, RoleAssistant:
	default:
		return fmt.Errorf("unknown role %q: %w", msg.Role, ErrValidation)
	}
	if msg.ID == "" {
		return fmt.Errorf("message id is required: %w", ErrValidation)
	}
	if msg.Persona == "" {
		return fmt.Errorf("message persona is required: %w", ErrValidation)
	}
	if msg.Timestamp.IsZero() {
		return fmt.Errorf("message timestamp is required: %w", ErrValidation)
	}
	return nil
}
