// models/testament.go
package models

import "strings"

// Testament classifies a Book for grouping and sort order
type Testament string

const (
	TestamentOld    Testament = "OLD"
	TestamentNew    Testament = "NEW"
	TestamentCustom Testament = "CUSTOM"
)

// testamentRank is the fixed export order; anything not listed ranks last
var testamentRank = map[Testament]int{
	TestamentOld:    1,
	TestamentNew:    2,
	TestamentCustom: 3,
}

// Rank returns 1 for OLD, 2 for NEW, 3 for CUSTOM and 4 for anything else.
func (t Testament) Rank() int {
	if r, ok := testamentRank[t]; ok {
		return r
	}
	return 4
}

// Valid reports whether t is one of the three known testaments.
func (t Testament) Valid() bool {
	_, ok := testamentRank[t]
	return ok
}

// ParseTestament accepts any casing and surrounding whitespace.
func ParseTestament(s string) (Testament, bool) {
	t := Testament(strings.ToUpper(strings.TrimSpace(s)))
	return t, t.Valid()
}

// Label is the name the dashboard shows for a testament.
func (t Testament) Label() string {
	switch t {
	case TestamentOld:
		return "Old Covenant"
	case TestamentNew:
		return "Renewed Covenant"
	case TestamentCustom:
		return "Custom"
	}
	return string(t)
}
