package openai_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	assistant "github.com/tahazafark/virtual-ai-assistant"
	"github.com/tahazafark/virtual-ai-assistant/openai"
)

func TestDecodeDelta(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		want string
	}{
		{"content", `{"choices":[{"delta":{"content":"Hel"}}]}`, "Hel"},
		{"role only", `{"choices":[{"delta":{"role":"assistant"}}]}`, ""},
		{"null content", `{"choices":[{"delta":{"content":null}}]}`, ""},
		{"empty choices", `{"choices":[]}`, ""},
		{"no choices", `{"id":"x"}`, ""},
		{"no delta", `{"choices":[{"finish_reason":"stop"}]}`, ""},
		{"done sentinel", `[DONE]`, ""},
		{"only first choice", `{"choices":[{"delta":{"content":"a"}},{"delta":{"content":"b"}}]}`, "a"},
		{"multi-line json", "{\"choices\":\n[{\"delta\":{\"content\":\"x\"}}]}", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := openai.DecodeDelta(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeDelta_Malformed(t *testing.T) {
	t.Parallel()

	for _, data := range []string{"not-json", `{"choices":[{"delta":{"content":42}}]}`, ""} {
		_, err := openai.DecodeDelta(data)
		assert.ErrorIs(t, err, assistant.ErrMalformedEvent, "data %q", data)
	}
}
