package customer

import "strings"

// NormalizePhone reduces a phone number to its 10-digit national form:
// non-digits are stripped, and a leading country code 1 on an 11-digit
// number is dropped. Applied to both query input and stored values so
// equality is representation-independent.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	return digits
}

// FormatE164 renders a phone number in +1XXXXXXXXXX form for SMS delivery.
// Numbers that are neither 10 nor 11 digits pass through unchanged.
func FormatE164(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	switch {
	case len(digits) == 10:
		return "+1" + digits
	case len(digits) == 11 && digits[0] == '1':
		return "+" + digits
	}
	return phone
}
