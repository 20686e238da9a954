package assistant_test

import (
	"testing"
	"time"

	assistant "github.com/tahazafark/virtual-ai-assistant"
	"github.com/stretchr/testify/assert"
)

func TestStreamRequest_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     assistant.StreamRequest
		wantErr bool
	}{
		{"valid https", assistant.StreamRequest{URL: "https://api.deepseek.com/v1/chat/completions"}, false},
		{"valid with timeouts", assistant.StreamRequest{URL: "http://127.0.0.1:8080/x", FirstByteTimeout: time.Second, IdleTimeout: time.Second}, false},
		{"empty url", assistant.StreamRequest{}, true},
		{"unsupported scheme", assistant.StreamRequest{URL: "ftp://example.com"}, true},
		{"missing host", assistant.StreamRequest{URL: "https:///path"}, true},
		{"negative first byte timeout", assistant.StreamRequest{URL: "https://example.com", FirstByteTimeout: -1}, true},
		{"negative idle timeout", assistant.StreamRequest{URL: "https://example.com", IdleTimeout: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.req.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, assistant.ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateMessage(t *testing.T) {
	t.Parallel()

	t.Run("new message is valid", func(t *testing.T) {
		t.Parallel()
		msg := assistant.NewMessage(assistant.RoleUser, "hi", assistant.PersonaGeneral)
		assert.NoError(t, assistant.ValidateMessage(msg))
	})

	t.Run("unknown role", func(t *testing.T) {
		t.Parallel()
		msg := assistant.NewMessage("system", "hi", assistant.PersonaGeneral)
		assert.ErrorIs(t, assistant.ValidateMessage(msg), assistant.ErrValidation)
	})

	t.Run("missing persona", func(t *testing.T) {
		t.Parallel()
		msg := assistant.NewMessage(assistant.RoleUser, "hi", "")
		assert.ErrorIs(t, assistant.ValidateMessage(msg), assistant.ErrValidation)
	})

	t.Run("missing id", func(t *testing.T) {
		t.Parallel()
		msg := assistant.Message{Role: assistant.RoleUser, Persona: assistant.PersonaGeneral, Timestamp: time.Now()}
		assert.ErrorIs(t, assistant.ValidateMessage(msg), assistant.ErrValidation)
	})
}

// Not parallel: the shared entropy source only guarantees ordering for
// consecutive calls within one millisecond.
func TestNewID_MonotonicSerial(t *testing.T) {
	now := time.Now()
	prev := assistant.NewID(now)
	for range 100 {
		next := assistant.NewID(now)
		assert.Greater(t, next, prev)
		prev = next
	}
}
