package verseparser

import "fmt"

// MinTextLength is the shortest verse text the corpus accepts.
const MinTextLength = 3

// IssueKind classifies an Audit finding.
type IssueKind string

const (
	IssueDuplicate  IssueKind = "duplicate"
	IssueOutOfOrder IssueKind = "out_of_order"
	IssueShortText  IssueKind = "short_text"
)

// Issue is a numbering or content problem in an otherwise parseable block.
type Issue struct {
	Kind    IssueKind `json:"kind"`
	Number  int       `json:"number"`
	Line    int       `json:"line"`
	Message string    `json:"message"`
}

// Fatal reports whether the issue should block an upload. Out-of-order
// numbering is only a warning.
func (i Issue) Fatal() bool {
	return i.Kind != IssueOutOfOrder
}

// Audit checks parsed lines for duplicate numbers, numbers that go backwards
// and texts shorter than MinTextLength.
func Audit(lines []Line) []Issue {
	var issues []Issue
	seen := make(map[int]int, len(lines))
	prev := 0
	for _, l := range lines {
		if first, dup := seen[l.Number]; dup {
			issues = append(issues, Issue{
				Kind:    IssueDuplicate,
				Number:  l.Number,
				Line:    l.SourceLine,
				Message: fmt.Sprintf("verse %d already appears on line %d", l.Number, first),
			})
		} else {
			seen[l.Number] = l.SourceLine
			if l.Number < prev {
				issues = append(issues, Issue{
					Kind:    IssueOutOfOrder,
					Number:  l.Number,
					Line:    l.SourceLine,
					Message: fmt.Sprintf("verse %d follows verse %d", l.Number, prev),
				})
			}
		}
		if l.Number > prev {
			prev = l.Number
		}

		if len([]rune(l.Text)) < MinTextLength {
			issues = append(issues, Issue{
				Kind:    IssueShortText,
				Number:  l.Number,
				Line:    l.SourceLine,
				Message: fmt.Sprintf("verse %d text must be at least %d characters", l.Number, MinTextLength),
			})
		}
	}
	return issues
}

// HasFatal reports whether any issue blocks an upload.
func HasFatal(issues []Issue) bool {
	for _, i := range issues {
		if i.Fatal() {
			return true
		}
	}
	return false
}
