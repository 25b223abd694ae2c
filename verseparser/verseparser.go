// Package verseparser splits a pasted block of chapter text into numbered verses.
//
// A block is one chapter. Each verse starts with an Arabic ("12", "12.", "12)")
// or Roman ("xii", "xii.", "XII)") marker followed by whitespace and text. Lines
// without a marker continue the previous verse.
package verseparser

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Line is one parsed verse: its number and its text.
type Line struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
	// SourceLine is the 1-based input line the verse marker was found on.
	SourceLine int `json:"sourceLine"`
}

var (
	ErrEmptyInput         = errors.New("verse text is empty")
	ErrOrphanContinuation = errors.New("text before the first verse number")
	ErrInvalidNumeral     = errors.New("invalid verse number")
)

// ParseError reports why a block was rejected and where.
type ParseError struct {
	Kind error
	// Line is the 1-based input line, 0 when the whole input is at fault.
	Line int
	Text string
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return e.Kind.Error()
	}
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Kind, e.Text)
}

func (e *ParseError) Unwrap() error {
	return e.Kind
}

var (
	arabicMarker = regexp.MustCompile(`^(\d+)[.)]?\s+(\S.*)$`)
	romanMarker  = regexp.MustCompile(`^(?i)([ivxlcdm]+)([.)]?)\s+(\S.*)$`)
)

func normalize(line string) string {
	line = strings.ReplaceAll(line, "\u202F", " ")
	line = strings.ReplaceAll(line, "\u00A0", " ")
	line = strings.ReplaceAll(line, "\uFEFF", "")
	return strings.Join(strings.Fields(line), " ")
}

// Parse converts rawText into verses in input order. It does not sort, dedupe
// or check numbering; see Audit for that.
func Parse(rawText string) ([]Line, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, &ParseError{Kind: ErrEmptyInput}
	}

	var out []Line
	for i, raw := range strings.Split(rawText, "\n") {
		lineNum := i + 1
		line := normalize(strings.TrimSuffix(raw, "\r"))
		if line == "" {
			continue
		}

		if m := arabicMarker.FindStringSubmatch(line); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil || n < 1 {
				return nil, &ParseError{Kind: ErrInvalidNumeral, Line: lineNum, Text: m[1]}
			}
			out = append(out, Line{Number: n, Text: m[2], SourceLine: lineNum})
			continue
		}

		if m := romanMarker.FindStringSubmatch(line); m != nil {
			numeral, punctuated := strings.ToLower(m[1]), m[2] != ""
			n, ok := DecodeRoman(numeral)
			switch {
			case ok && (punctuated || !strings.ContainsAny(numeral, "dm")):
				out = append(out, Line{Number: n, Text: m[3], SourceLine: lineNum})
				continue
			case !ok && (punctuated || isSmallNumeralRun(numeral)):
				// "iiii." and "iiii" are miskeyed markers, not words
				return nil, &ParseError{Kind: ErrInvalidNumeral, Line: lineNum, Text: m[1]}
			}
			// "did" and "mix" are words; fall through to continuation
		}

		if len(out) == 0 {
			return nil, &ParseError{Kind: ErrOrphanContinuation, Line: lineNum, Text: line}
		}
		last := &out[len(out)-1]
		last.Text = last.Text + " " + line
	}

	if len(out) == 0 {
		// only invisible characters
		return nil, &ParseError{Kind: ErrEmptyInput}
	}
	return out, nil
}

// isSmallNumeralRun reports whether s uses only i, v and x. Verse markers
// live in that range, while ordinary words that happen to be made of Roman
// letters almost always contain l, c, d or m.
func isSmallNumeralRun(s string) bool {
	return s != "" && strings.Trim(s, "ivx") == ""
}

// Numbers returns the verse numbers of lines in order.
func Numbers(lines []Line) []int {
	nums := make([]int, len(lines))
	for i, l := range lines {
		nums[i] = l.Number
	}
	return nums
}
