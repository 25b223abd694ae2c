package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTestamentRank(t *testing.T) {
	tests := []struct {
		in   Testament
		want int
	}{
		{TestamentOld, 1},
		{TestamentNew, 2},
		{TestamentCustom, 3},
		{Testament("APOCRYPHA"), 4},
		{Testament(""), 4},
		{Testament("old"), 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.in.Rank(), "rank of %q", tt.in)
	}
}

func TestParseTestament(t *testing.T) {
	got, ok := ParseTestament("  new ")
	assert.True(t, ok)
	assert.Equal(t, TestamentNew, got)

	_, ok = ParseTestament("middle")
	assert.False(t, ok)
}

func TestTestamentLabel(t *testing.T) {
	assert.Equal(t, "Old Covenant", TestamentOld.Label())
	assert.Equal(t, "Renewed Covenant", TestamentNew.Label())
	assert.Equal(t, "Custom", TestamentCustom.Label())
	assert.Equal(t, "OTHER", Testament("OTHER").Label())
}
