package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	assistant "github.com/tahazafark/virtual-ai-assistant"
)

// Interface compliance checks.
var (
	_ assistant.Synthesizer = (*Client)(nil)
	_ assistant.Transcriber = (*Client)(nil)
)

// errNoAudio is returned when a speech response carries no audio part.
var errNoAudio = errors.New("response contains no audio")

// Client implements [assistant.Synthesizer] and [assistant.Transcriber].
type Client struct {
	client          *genai.Client
	speechModel     string
	transcribeModel string
	voice           string
	speakingRate    float64
	pitch           float64
	baseURL         string
}

// Option configures a [Client].
type Option func(*Client)

// WithSpeechModel sets the TTS model. Default is gemini-2.5-flash-preview-tts.
func WithSpeechModel(model string) Option {
	return func(c *Client) { c.speechModel = model }
}

// WithTranscribeModel sets the model used for transcription.
func WithTranscribeModel(model string) Option {
	return func(c *Client) { c.transcribeModel = model }
}

// WithVoice sets the prebuilt voice name. Default is Kore.
func WithVoice(voice string) Option {
	return func(c *Client) { c.voice = voice }
}

// WithProsody sets the speaking rate (1.0 is normal) and pitch in semitones.
func WithProsody(rate, pitch float64) Option {
	return func(c *Client) {
		c.speakingRate = rate
		c.pitch = pitch
	}
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	c := &Client{
		speechModel:     defaultSpeechModel,
		transcribeModel: defaultTranscribeModel,
		voice:           defaultVoice,
		speakingRate:    1.0,
	}
	for _, o := range opts {
		o(c)
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if c.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL}
	}
	gc, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	c.client = gc
	return c, nil
}

// Synthesize renders text as WAV audio.
func (c *Client) Synthesize(ctx context.Context, text string) (assistant.Audio, error) {
	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: SpeechPrompt(text, c.speakingRate, c.pitch)}},
	}}
	resp, err := c.client.Models.GenerateContent(ctx, c.speechModel, contents, SpeechConfig(c.voice))
	if err != nil {
		return assistant.Audio{}, fmt.Errorf("gemini: synthesize: %w", err)
	}
	a, err := ExtractAudio(resp)
	if err != nil {
		return assistant.Audio{}, fmt.Errorf("gemini: synthesize: %w", err)
	}
	return a, nil
}

// Transcribe converts recorded speech to text. An empty transcript returns
// [assistant.ErrNoSpeech].
func (c *Client) Transcribe(ctx context.Context, a assistant.Audio) (string, error) {
	if len(a.Data) == 0 {
		return "", assistant.ErrNoSpeech
	}
	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: transcribePrompt},
			{InlineData: &genai.Blob{Data: a.Data, MIMEType: a.MimeType}},
		},
	}}
	resp, err := c.client.Models.GenerateContent(ctx, c.transcribeModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini: transcribe: %w", err)
	}
	text := strings.TrimSpace(ResponseText(resp))
	if text == "" {
		return "", assistant.ErrNoSpeech
	}
	return text, nil
}

// SpeechConfig returns the generation config requesting audio in voice.
func SpeechConfig(voice string) *genai.GenerateContentConfig {
	if voice == "" {
		voice = defaultVoice
	}
	return &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		},
	}
}

// SpeechPrompt phrases text for the TTS model. Prosody other than the
// defaults is expressed as a style instruction.
func SpeechPrompt(text string, rate, pitch float64) string {
	var style []string
	switch {
	case rate > 1.05:
		style = append(style, "briskly")
	case rate > 0 && rate < 0.95:
		style = append(style, "slowly")
	}
	switch {
	case pitch > 0:
		style = append(style, "in a higher voice")
	case pitch < 0:
		style = append(style, "in a lower voice")
	}
	if len(style) == 0 {
		return text
	}
	return "Say " + strings.Join(style, " and ") + ": " + text
}

// ExtractAudio returns the first inline audio part of resp. Raw PCM is
// wrapped in a WAV container.
func ExtractAudio(resp *genai.GenerateContentResponse) (assistant.Audio, error) {
	if resp == nil {
		return assistant.Audio{}, errNoAudio
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if p == nil || p.InlineData == nil || len(p.InlineData.Data) == 0 {
				continue
			}
			return toWAV(p.InlineData.Data, p.InlineData.MIMEType)
		}
	}
	return assistant.Audio{}, errNoAudio
}

// ResponseText concatenates the non-thought text parts of the first
// candidate.
func ResponseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		b.WriteString(p.Text)
	}
	return b.String()
}
