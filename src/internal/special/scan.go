// FILE: fieldwisp/src/internal/special/scan.go
package special

// Character-class scanners for the latency and RFC3339 grammars.

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

// scanDigits returns the index after a run of digits starting at i.
func scanDigits(s string, i int) int {
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return i
}

func skipSpace(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

// MatchLatency reports whether s has the form
// ws* digit+ ('.' digit+)? ws* 's' ws*.
func MatchLatency(s string) bool {
	i := skipSpace(s, 0)

	j := scanDigits(s, i)
	if j == i {
		return false
	}
	i = j

	if i < len(s) && s[i] == '.' {
		j = scanDigits(s, i+1)
		if j == i+1 {
			return false
		}
		i = j
	}

	i = skipSpace(s, i)
	if i >= len(s) || s[i] != 's' {
		return false
	}
	return skipSpace(s, i+1) == len(s)
}

// CanonicalLatency validates s and strips it down to "<digits>[.<digits>]s".
func CanonicalLatency(s string) (string, bool) {
	if !MatchLatency(s) {
		return "", false
	}
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; isDigit(c) || c == '.' || c == 's' {
			out = append(out, c)
		}
	}
	return string(out), true
}

// fixedDigits checks that s[i:i+n] are all digits.
func fixedDigits(s string, i, n int) bool {
	if i+n > len(s) {
		return false
	}
	for k := i; k < i+n; k++ {
		if !isDigit(s[k]) {
			return false
		}
	}
	return true
}

func expectByte(s string, i int, c byte) bool {
	return i < len(s) && s[i] == c
}

// MatchRFC3339 reports whether s has the form
// YYYY-MM-DDTHH:MM:SS[.frac](Z|+HH:MM|-HH:MM). Field ranges are left to the
// time parser.
func MatchRFC3339(s string) bool {
	// date
	if !fixedDigits(s, 0, 4) || !expectByte(s, 4, '-') ||
		!fixedDigits(s, 5, 2) || !expectByte(s, 7, '-') ||
		!fixedDigits(s, 8, 2) || !expectByte(s, 10, 'T') {
		return false
	}
	// clock
	if !fixedDigits(s, 11, 2) || !expectByte(s, 13, ':') ||
		!fixedDigits(s, 14, 2) || !expectByte(s, 16, ':') ||
		!fixedDigits(s, 17, 2) {
		return false
	}

	i := 19
	if expectByte(s, i, '.') {
		j := scanDigits(s, i+1)
		if j == i+1 {
			return false
		}
		i = j
	}

	switch {
	case expectByte(s, i, 'Z'):
		return i+1 == len(s)
	case expectByte(s, i, '+'), expectByte(s, i, '-'):
		return fixedDigits(s, i+1, 2) && expectByte(s, i+3, ':') &&
			fixedDigits(s, i+4, 2) && i+6 == len(s)
	}
	return false
}
