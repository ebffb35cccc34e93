package usecases

import (
	"log/slog"
	"strings"
)

// Premade vendor voices available to every business. Keys are the
// human-friendly names shown in the dashboard voice picker.
var voiceRegistry = map[string]string{
	"rachel":  "21m00Tcm4TlvDq8ikWAM",
	"adam":    "pNInz6obpgDQGcFmaJgB",
	"antoni":  "ErXwobaYiN019PkySvjV",
	"arnold":  "VR6AewLTigWG4xSOukaG",
	"bella":   "EXAVITQu4vr4xnSDxMaL",
	"domi":    "AZnzlk1XvdvUeBnXmlld",
	"elli":    "MF3mGyEYCl7XXWbV9V6O",
	"josh":    "TxGEqnHWrfWFTfGW9XjX",
	"sam":     "yoZ06aMxZJJ28mfd3POQ",
	"charlie": "IKne3meq5aSn9XLyUdCD",
}

const (
	defaultVoiceName = "rachel"

	// Raw voice IDs are long alphanumeric tokens; anything shorter is
	// treated as a (possibly unknown) display name.
	voiceIDMinLength = 20
)

// ResolveVoice maps a voice picker value to a (voiceID, voiceName) pair.
// Pre-resolved IDs pass through unchanged. Unknown names fall back to the
// default voice so agent creation never fails on a bad picker value.
func ResolveVoice(selector string) (voiceID, voiceName string) {
	name := strings.ToLower(strings.TrimSpace(selector))

	if id, ok := voiceRegistry[name]; ok {
		return id, name
	}

	if looksLikeVoiceID(strings.TrimSpace(selector)) {
		trimmed := strings.TrimSpace(selector)
		return trimmed, trimmed
	}

	slog.Warn("unrecognized voice selector, using default voice",
		"selector", selector, "default", defaultVoiceName)
	return voiceRegistry[defaultVoiceName], defaultVoiceName
}

func looksLikeVoiceID(s string) bool {
	if len(s) < voiceIDMinLength {
		return false
	}
	for _, c := range s {
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
