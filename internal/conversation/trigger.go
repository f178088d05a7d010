package conversation

import (
	"regexp"
	"strings"
)

// bookingIntentPatterns matches free-text messages asking to book an
// appointment. Accented and unaccented spellings both occur in the wild.
var bookingIntentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bturnos?\b`),
	regexp.MustCompile(`(?i)\bcitas?\b`),
	regexp.MustCompile(`(?i)\bsacar\s+(un\s+)?turno\b`),
	regexp.MustCompile(`(?i)\breservar\b`),
}

// IsBookingIntent returns true if the message signals the user wants to book
// a turno, opening a slot-filling session.
func IsBookingIntent(message string) bool {
	message = strings.TrimSpace(message)
	if message == "" {
		return false
	}
	for _, pat := range bookingIntentPatterns {
		if pat.MatchString(message) {
			return true
		}
	}
	return false
}
