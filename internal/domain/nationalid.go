package domain

import "strings"

const nationalIDLength = 11

// NormalizeNationalID strips everything but digits from a CPF.
func NormalizeNationalID(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValidNationalID reports whether s, once normalized, is an 11-digit CPF
// with correct check digits. Sequences of a single repeated digit are
// rejected even though they satisfy the checksum.
func IsValidNationalID(s string) bool {
	id := NormalizeNationalID(s)
	if len(id) != nationalIDLength {
		return false
	}
	if strings.Count(id, id[:1]) == nationalIDLength {
		return false
	}
	return checkDigit(id[:9], 10) == id[9] && checkDigit(id[:10], 11) == id[10]
}

func checkDigit(digits string, weight int) byte {
	sum := 0
	for i := range len(digits) {
		sum += int(digits[i]-'0') * (weight - i)
	}
	d := 11 - sum%11
	if d > 9 {
		d = 0
	}
	return byte('0' + d)
}

// ParseNationalIDKey accepts a transfer key that is a CPF, formatted or not,
// and returns its digits. Keys carrying anything other than digits and CPF
// punctuation (email, phone, random keys) are rejected.
func ParseNationalIDKey(key string) (string, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", false
	}
	for _, r := range key {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-', r == ' ':
		default:
			return "", false
		}
	}
	if !IsValidNationalID(key) {
		return "", false
	}
	return NormalizeNationalID(key), true
}

// FormatNationalID renders 11 digits as 000.000.000-00.
func FormatNationalID(id string) string {
	if len(id) != nationalIDLength {
		return id
	}
	return id[0:3] + "." + id[3:6] + "." + id[6:9] + "-" + id[9:11]
}
