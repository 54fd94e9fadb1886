package normalize

import "strings"

// ISBN13 returns the ISBN-13 form of an ISBN-10 or ISBN-13 string. Hyphens
// and spaces are ignored. ok is false when the input is not a valid ISBN.
func ISBN13(raw string) (string, bool) {
	clean := cleanISBN(raw)
	switch len(clean) {
	case 13:
		if !validISBN13(clean) {
			return "", false
		}
		return clean, true
	case 10:
		if !validISBN10(clean) {
			return "", false
		}
		base := "978" + clean[:9]
		return base + string(isbn13CheckDigit(base)), true
	default:
		return "", false
	}
}

func cleanISBN(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(raw) {
		if (r >= '0' && r <= '9') || r == 'X' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func validISBN10(s string) bool {
	sum := 0
	for i := 0; i < 10; i++ {
		c := s[i]
		var v int
		switch {
		case c >= '0' && c <= '9':
			v = int(c - '0')
		case c == 'X' && i == 9:
			v = 10
		default:
			return false
		}
		sum += v * (10 - i)
	}
	return sum%11 == 0
}

func validISBN13(s string) bool {
	for i := 0; i < 13; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return isbn13CheckDigit(s[:12]) == s[12]
}

// isbn13CheckDigit computes the check digit for the first 12 digits.
func isbn13CheckDigit(first12 string) byte {
	sum := 0
	for i := 0; i < 12; i++ {
		d := int(first12[i] - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	return byte('0' + (10-sum%10)%10)
}
