package verseparser

import "strings"

var romanValues = map[byte]int{
	'i': 1,
	'v': 5,
	'x': 10,
	'l': 50,
	'c': 100,
	'd': 500,
	'm': 1000,
}

var romanEncoding = []struct {
	value  int
	symbol string
}{
	{1000, "m"}, {900, "cm"}, {500, "d"}, {400, "cd"},
	{100, "c"}, {90, "xc"}, {50, "l"}, {40, "xl"},
	{10, "x"}, {9, "ix"}, {5, "v"}, {4, "iv"},
	{1, "i"},
}

// DecodeRoman returns the value of a Roman numeral, case-insensitively.
// Only canonical numerals are accepted: "iv" is 4 but "iiii", "vv" and "il" are
// rejected.
func DecodeRoman(s string) (int, bool) {
	s = strings.ToLower(s)
	if s == "" {
		return 0, false
	}

	total := 0
	prev := 0
	for i := 0; i < len(s); i++ {
		v, ok := romanValues[s[i]]
		if !ok {
			return 0, false
		}
		total += v
		if prev < v {
			// previous symbol was subtractive: undo its add and subtract it
			total -= 2 * prev
		}
		prev = v
	}

	if total < 1 || EncodeRoman(total) != s {
		return 0, false
	}
	return total, true
}

// EncodeRoman returns the canonical lowercase numeral for n, or "" if n < 1.
func EncodeRoman(n int) string {
	if n < 1 {
		return ""
	}
	var b strings.Builder
	for _, e := range romanEncoding {
		for n >= e.value {
			b.WriteString(e.symbol)
			n -= e.value
		}
	}
	return b.String()
}
