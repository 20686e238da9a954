package assistant_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	assistant "github.com/tahazafark/virtual-ai-assistant"
)

func TestHasCredential(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header http.Header
		want   bool
	}{
		{"nil", nil, false},
		{"empty authorization", http.Header{"Authorization": {""}}, false},
		{"bearer without token", http.Header{"Authorization": {"Bearer "}}, false},
		{"bearer token", http.Header{"Authorization": {"Bearer sk-1"}}, true},
		{"other scheme", http.Header{"Authorization": {"Basic abc"}}, true},
		{"api key header", http.Header{"X-Api-Key": {"ak"}}, true},
		{"blank api key header", http.Header{"X-Api-Key": {"  "}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, assistant.HasCredential(tt.header))
		})
	}
}

func TestAuthMissingError_Provider(t *testing.T) {
	t.Parallel()

	assert.EqualError(t, assistant.AuthMissingError("DeepSeek"), "DeepSeek API key not found. Please check your environment variables.")
	assert.EqualError(t, assistant.AuthMissingError("Anthropic"), "Anthropic API key not found. Please check your environment variables.")
	assert.EqualError(t, assistant.AuthMissingError(""), "API key not found. Please check your environment variables.")
}
