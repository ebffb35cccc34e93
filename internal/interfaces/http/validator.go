package http

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Input validation constants
const (
	MaxBusinessNameLength     = 256
	MaxDescriptionLength      = 10000
	MaxFirstMessageLength     = 1000
	MaxPromptOverrideLength   = 50000 // For custom agent instructions
	MaxKnowledgeTitleLength   = 256
	MaxKnowledgeContentLength = 10000
)

var (
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	areaCodePattern = regexp.MustCompile(`^[0-9]{3}$`)
)

// ValidEmail checks basic email shape; deliverability is proven by the
// verification code, not here.
func ValidEmail(s string) bool {
	return s != "" && len(s) <= 255 && emailPattern.MatchString(s)
}

// ValidAreaCode checks a 3-digit US area code
func ValidAreaCode(s string) bool {
	return areaCodePattern.MatchString(s)
}

// ValidTemperature checks the model temperature bounds
func ValidTemperature(t float64) bool {
	return t >= 0.0 && t <= 1.0
}

// SanitizeString removes null bytes and control characters
func SanitizeString(s string) string {
	// Remove null bytes
	s = strings.ReplaceAll(s, "\x00", "")

	// Keep only valid UTF-8
	if !utf8.ValidString(s) {
		v := make([]rune, 0, len(s))
		for _, r := range s {
			if r != utf8.RuneError {
				v = append(v, r)
			}
		}
		s = string(v)
	}
	return s
}

// TruncateString safely truncates a string to max length
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// ValidateLength checks if string is within bounds
func ValidateLength(s string, min, max int) bool {
	l := len(s)
	return l >= min && l <= max
}
