package openai

import (
	"encoding/json"
	"fmt"
	"strings"

	assistant "github.com/tahazafark/virtual-ai-assistant"
)

// Interface compliance check.
var _ assistant.DeltaDecoder = DecodeDelta

// doneSentinel terminates OpenAI-style streams. It carries no content.
const doneSentinel = "[DONE]"

type apiChunk struct {
	Choices []struct {
		Delta struct {
			Content *string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// DecodeDelta extracts choices[0].delta.content from one event payload.
// Missing fields at any level yield "". Invalid JSON returns an error
// wrapping [assistant.ErrMalformedEvent].
func DecodeDelta(data string) (string, error) {
	if strings.TrimSpace(data) == doneSentinel {
		return "", nil
	}
	var chunk apiChunk
	if err := json.Unmarshal([]byte(data), &chunk); err != nil {
		return "", fmt.Errorf("openai: %w: %w", assistant.ErrMalformedEvent, err)
	}
	if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == nil {
		return "", nil
	}
	return *chunk.Choices[0].Delta.Content, nil
}
