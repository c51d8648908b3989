package normalize

import "strings"

// minPhoneDigits is the shortest cleaned value still treated as a phone
const minPhoneDigits = 10

// CleanPhone normalizes a raw identity value to a phone number:
// strip any @-suffix (routing/domain suffix like "@s.whatsapp.net"),
// then keep only digits plus an optional leading "+".
// Values shorter than ten characters return "" (not found, not an error).
// CleanPhone is idempotent
func CleanPhone(raw string) string {
	if raw == "" {
		return ""
	}
	if i := strings.IndexByte(raw, '@'); i >= 0 {
		raw = raw[:i]
	}

	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c >= '0' && c <= '9':
			b.WriteByte(c)
		case c == '+' && b.Len() == 0:
			b.WriteByte(c)
		}
	}

	phone := b.String()
	if len(phone) < minPhoneDigits {
		return ""
	}
	return phone
}
