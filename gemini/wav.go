package gemini

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"mime"
	"strconv"
	"strings"

	assistant "github.com/tahazafark/virtual-ai-assistant"
)

const wavMimeType = "audio/wav"

// toWAV wraps 16-bit mono PCM in a WAV header. Other encodings pass
// through unchanged.
func toWAV(data []byte, mimeType string) (assistant.Audio, error) {
	mt, params, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return assistant.Audio{}, fmt.Errorf("parse mime type %q: %w", mimeType, err)
	}
	pcm := mt == "audio/l16" || mt == "audio/pcm" || strings.EqualFold(params["codec"], "pcm")
	if !pcm {
		return assistant.Audio{Data: data, MimeType: mimeType}, nil
	}
	rate := defaultSampleRate
	if r, err := strconv.Atoi(params["rate"]); err == nil && r > 0 {
		rate = r
	}
	return assistant.Audio{Data: WAV(data, rate, 1, 16), MimeType: wavMimeType}, nil
}

// WAV returns pcm prefixed with a canonical 44-byte RIFF/WAVE header.
func WAV(pcm []byte, sampleRate, channels, bitsPerSample int) []byte {
	blockAlign := channels * bitsPerSample / 8
	var buf bytes.Buffer
	buf.Grow(44 + len(pcm))

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}
