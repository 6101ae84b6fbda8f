package login

import (
	"strings"
	"unicode"
)

// MaskPhone keeps the last four digits: "5551234567" -> "***-***-4567".
func MaskPhone(phone string) string {
	var digits []rune
	for _, r := range phone {
		if unicode.IsDigit(r) {
			digits = append(digits, r)
		}
	}
	if len(digits) < 4 {
		return "***-***-****"
	}
	return "***-***-" + string(digits[len(digits)-4:])
}

// MaskEmail keeps the first and last character of the local part:
// "jane.doe@example.com" -> "j***e@example.com".
func MaskEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "***"
	}

	local := []rune(email[:at])
	domain := email[at+1:]
	if len(local) == 1 {
		return string(local[0]) + "***@" + domain
	}
	return string(local[0]) + "***" + string(local[len(local)-1]) + "@" + domain
}
