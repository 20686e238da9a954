package anthropic

import (
	"encoding/json"
	"fmt"

	assistant "github.com/tahazafark/virtual-ai-assistant"
)

var _ assistant.DeltaDecoder = DecodeDelta

type apiEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// DecodeDelta extracts the text of a content_block_delta event. Other event
// types yield "". An error event ends the stream with
// [assistant.ErrStreamAborted].
func DecodeDelta(data string) (string, error) {
	var ev apiEvent
	if err := json.Unmarshal([]byte(data), &ev); err != nil {
		return "", fmt.Errorf("anthropic: %w: %w", assistant.ErrMalformedEvent, err)
	}
	switch ev.Type {
	case "content_block_delta":
		if ev.Delta.Type == "text_delta" {
			return ev.Delta.Text, nil
		}
	case "error":
		return "", fmt.Errorf("anthropic: %w: %s: %s", assistant.ErrStreamAborted, ev.Error.Type, ev.Error.Message)
	}
	return "", nil
}
