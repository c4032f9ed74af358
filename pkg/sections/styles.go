package sections

import (
	"strconv"
	"strings"
)

// NumberStyle identifies how a section number component is written.
type NumberStyle string

const (
	StyleArabic     NumberStyle = "arabic"      // 1, 2, 3, 10, 100
	StyleRomanUpper NumberStyle = "roman_upper" // I, II, III, IV, V
	StyleRomanLower NumberStyle = "roman_lower" // i, ii, iii, iv, v
	StyleAlphaUpper NumberStyle = "alpha_upper" // A, B, C, ... Z, AA, AB
	StyleAlphaLower NumberStyle = "alpha_lower" // a, b, c, ... z, aa, ab
)

var romanTable = []struct {
	value   int
	numeral string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

// IntToRoman converts a positive integer to an uppercase Roman numeral.
func IntToRoman(n int) string {
	var b strings.Builder
	for _, e := range romanTable {
		for n >= e.value {
			b.WriteString(e.numeral)
			n -= e.value
		}
	}
	return b.String()
}

var romanValues = map[byte]int{
	'I': 1, 'V': 5, 'X': 10, 'L': 50, 'C': 100, 'D': 500, 'M': 1000,
}

// RomanToInt converts a Roman numeral (either case) to an integer.
func RomanToInt(s string) int {
	s = strings.ToUpper(s)
	result, prev := 0, 0
	for i := len(s) - 1; i >= 0; i-- {
		curr := romanValues[s[i]]
		if curr < prev {
			result -= curr
		} else {
			result += curr
		}
		prev = curr
	}
	return result
}

// IntToAlpha converts a positive integer to bijective base-26 letters
// (1=A, 26=Z, 27=AA).
func IntToAlpha(n int) string {
	var buf []byte
	for n > 0 {
		n--
		buf = append(buf, byte('A'+n%26))
		n /= 26
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

// AlphaToInt converts bijective base-26 letters back to an integer.
func AlphaToInt(s string) int {
	s = strings.ToUpper(s)
	result := 0
	for i := 0; i < len(s); i++ {
		result = result*26 + int(s[i]-'A') + 1
	}
	return result
}

// FormatNumber renders value in the given style.
func FormatNumber(style NumberStyle, value int) string {
	switch style {
	case StyleRomanUpper:
		return IntToRoman(value)
	case StyleRomanLower:
		return strings.ToLower(IntToRoman(value))
	case StyleAlphaUpper:
		return IntToAlpha(value)
	case StyleAlphaLower:
		return strings.ToLower(IntToAlpha(value))
	default:
		return strconv.Itoa(value)
	}
}

// ParseNumber converts a component string back to its integer value.
func ParseNumber(style NumberStyle, text string) int {
	switch style {
	case StyleRomanUpper, StyleRomanLower:
		return RomanToInt(text)
	case StyleAlphaUpper, StyleAlphaLower:
		return AlphaToInt(text)
	default:
		n, _ := strconv.Atoi(text)
		return n
	}
}

func isRomanChars(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'I', 'V', 'X', 'L', 'C', 'D', 'M', 'i', 'v', 'x', 'l', 'c', 'd', 'm':
		default:
			return false
		}
	}
	return len(s) > 0
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

func isUpper(s string) bool {
	return s == strings.ToUpper(s)
}

const (
	classArabic = iota
	classUpper
	classLower
)

// styleClass groups styles so ambiguous letter prefixes compare equal:
// "B" and "C" are the same kind of component even though C alone would
// read as Roman.
func styleClass(s NumberStyle) int {
	switch s {
	case StyleRomanUpper, StyleAlphaUpper:
		return classUpper
	case StyleRomanLower, StyleAlphaLower:
		return classLower
	default:
		return classArabic
	}
}

// InferStyle guesses the number style of a single prefix component.
// Letters that are all valid Roman characters are treated as Roman;
// level-wide disambiguation may later reinterpret them as alphabetic.
func InferStyle(s string) NumberStyle {
	if isDigits(s) {
		return StyleArabic
	}
	if isRomanChars(s) {
		if isUpper(s) {
			return StyleRomanUpper
		}
		return StyleRomanLower
	}
	if isUpper(s) {
		return StyleAlphaUpper
	}
	return StyleAlphaLower
}
