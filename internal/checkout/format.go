package checkout

import (
	"strings"
	"unicode"
)

// Format normalises a raw keystroke value before it is stored.
// Applying it twice yields the same result as applying it once.
func Format(field Field, raw string) string {
	switch field {
	case FieldCardNumber:
		return groupCardNumber(strings.Map(dropSpace, raw))
	case FieldExpiryDate:
		d := digitsOnly(raw)
		if len(d) > 2 {
			return d[:2] + "/" + d[2:]
		}
		return d
	case FieldCVV:
		return digitsOnly(raw)
	case FieldZipCode:
		return truncate(digitsOnly(raw), 5)
	case FieldPhone:
		return truncate(digitsOnly(raw), 10)
	default:
		return raw
	}
}

// groupCardNumber inserts a space after every run of four digits that is
// followed by another digit. Non-digits pass through untouched.
func groupCardNumber(s string) string {
	r := []rune(s)
	var b strings.Builder
	run := 0
	for i, c := range r {
		b.WriteRune(c)
		if !isDigit(c) {
			run = 0
			continue
		}
		run++
		if run == 4 {
			run = 0
			if i+1 < len(r) && isDigit(r[i+1]) {
				b.WriteByte(' ')
			}
		}
	}
	return b.String()
}

func dropSpace(r rune) rune {
	if unicode.IsSpace(r) {
		return -1
	}
	return r
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if isDigit(r) {
			return r
		}
		return -1
	}, s)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
