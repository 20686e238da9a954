// Package gemini implements speech synthesis and transcription with the
// Google Gemini API.
//
// It wraps the google.golang.org/genai SDK. Synthesized speech arrives as raw
// PCM and is wrapped in a WAV container so ordinary players can read it.
package gemini

const (
	defaultSpeechModel     = "gemini-2.5-flash-preview-tts"
	defaultTranscribeModel = "gemini-2.5-flash"
	defaultVoice           = "Kore"
	defaultSampleRate      = 24000

	transcribePrompt = "Transcribe this audio clip verbatim. Reply with the transcript only. If nobody speaks, reply with an empty message."
)
