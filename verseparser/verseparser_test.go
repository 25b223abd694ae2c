package verseparser

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}

func TestParse_ArabicMarkers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		nums  []int
		texts []string
	}{
		{
			name:  "bare numbers",
			input: "1 In the beginning\n2 And the earth was without form",
			nums:  []int{1, 2},
			texts: []string{"In the beginning", "And the earth was without form"},
		},
		{
			name:  "period and paren",
			input: "12. And Yahuah said\n3) Let there be light",
			nums:  []int{12, 3},
			texts: []string{"And Yahuah said", "Let there be light"},
		},
		{
			name:  "crlf and blank lines",
			input: "\r\n1 First verse\r\n\r\n   \r\n2 Second verse\r\n",
			nums:  []int{1, 2},
			texts: []string{"First verse", "Second verse"},
		},
		{
			name:  "inner whitespace collapsed",
			input: "7\tAnd  God saw   the light",
			nums:  []int{7},
			texts: []string{"And God saw the light"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.nums, Numbers(lines))
			assert.Equal(t, tt.texts, texts(lines))
		})
	}
}

func TestParse_RoundTrip(t *testing.T) {
	want := []string{
		"In the beginning Elohim created the heavens and the earth.",
		"And the earth came to be formless and empty.",
		"And Elohim said, Let light come to be, and light came to be.",
		"And Elohim saw the light, that it was good.",
	}
	var b strings.Builder
	for i, text := range want {
		fmt.Fprintf(&b, "%d %s\n", i+1, text)
	}

	lines, err := Parse(b.String())
	require.NoError(t, err)
	require.Len(t, lines, len(want))
	for i, l := range lines {
		assert.Equal(t, i+1, l.Number)
		assert.Equal(t, want[i], l.Text)
	}
}

func TestParse_RomanMarkers(t *testing.T) {
	lines, err := Parse("i. First\nii. Second\niii. Third")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, Numbers(lines))
	assert.Equal(t, []string{"First", "Second", "Third"}, texts(lines))

	lines, err = Parse("IV And it was so\nix) Ninth\nXL. Fortieth")
	require.NoError(t, err)
	assert.Equal(t, []int{4, 9, 40}, Numbers(lines))
}

func TestParse_MixedMarkers(t *testing.T) {
	lines, err := Parse("1 First\nii. Second\n3) Third")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, Numbers(lines))
}

func TestParse_Continuation(t *testing.T) {
	lines, err := Parse("1 In the\nbeginning")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, Line{Number: 1, Text: "In the beginning", SourceLine: 1}, lines[0])
}

func TestParse_RomanLookingWordIsContinuation(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"invalid numeral with d", "1 And Mosheh went up, and\ndid go into the cloud", "And Mosheh went up, and did go into the cloud"},
		{"valid numeral with m", "1 Take fine meal and\nmix the flour with oil", "Take fine meal and mix the flour with oil"},
		{"valid numeral with d", "1 And she\ndix it so", "And she dix it so"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := Parse(tt.input)
			require.NoError(t, err)
			require.Len(t, lines, 1)
			assert.Equal(t, tt.want, lines[0].Text)
		})
	}
}

func TestParse_PunctuatedLargeNumeralIsMarker(t *testing.T) {
	lines, err := Parse("mix. The thousand and ninth verse")
	require.NoError(t, err)
	assert.Equal(t, []int{1009}, Numbers(lines))
}

func TestParse_PreservesInputOrder(t *testing.T) {
	lines, err := Parse("3 Third\n1 First\n3 Third again")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 3}, Numbers(lines))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  error
		line  int
	}{
		{"empty", "", ErrEmptyInput, 0},
		{"whitespace only", "  \n\t\r\n ", ErrEmptyInput, 0},
		{"byte order mark only", "\uFEFF", ErrEmptyInput, 0},
		{"no marker", "beginning was good", ErrOrphanContinuation, 1},
		{"continuation before first marker", "\n\nand then\n1 First", ErrOrphanContinuation, 3},
		{"zero", "0 Nothing here", ErrInvalidNumeral, 1},
		{"non canonical roman", "1 First\niiii. Fourth", ErrInvalidNumeral, 2},
		{"non canonical roman without punctuation", "1 Start\niiii more", ErrInvalidNumeral, 2},
		{"repeated v", "1 Start\nvv more", ErrInvalidNumeral, 2},
		{"double subtraction", "1 Start\niix more", ErrInvalidNumeral, 2},
		{"four x", "1 Start\nXXXX more", ErrInvalidNumeral, 2},
		{"overflow", "99999999999999999999999 Too big", ErrInvalidNumeral, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := Parse(tt.input)
			require.Error(t, err)
			assert.Nil(t, lines)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.line, perr.Line)
		})
	}
}

func TestParse_Deterministic(t *testing.T) {
	input := "1 First\ncontinued\nii. Second\n3) Third"
	a, err := Parse(input)
	require.NoError(t, err)
	b, err := Parse(input)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestParseError_Message(t *testing.T) {
	_, err := Parse("orphan text")
	require.Error(t, err)
	assert.Equal(t, `line 1: text before the first verse number: "orphan text"`, err.Error())

	_, err = Parse("")
	assert.Equal(t, "verse text is empty", err.Error())
}
