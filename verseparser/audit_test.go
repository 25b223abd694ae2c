package verseparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAudit_Clean(t *testing.T) {
	lines, err := Parse("1 First verse\n2 Second verse\n3 Third verse")
	require.NoError(t, err)
	assert.Empty(t, Audit(lines))
}

func TestAudit_Findings(t *testing.T) {
	lines, err := Parse("1 First verse\n3 Third verse\n2 Second verse\n3 Again\n4 ok")
	require.NoError(t, err)

	issues := Audit(lines)
	require.Len(t, issues, 3)

	assert.Equal(t, IssueOutOfOrder, issues[0].Kind)
	assert.Equal(t, 2, issues[0].Number)
	assert.Equal(t, 3, issues[0].Line)

	assert.Equal(t, IssueDuplicate, issues[1].Kind)
	assert.Equal(t, 3, issues[1].Number)
	assert.Equal(t, "verse 3 already appears on line 2", issues[1].Message)

	assert.Equal(t, IssueShortText, issues[2].Kind)
	assert.Equal(t, 4, issues[2].Number)

	assert.True(t, HasFatal(issues))
}

func TestAudit_OutOfOrderIsWarningOnly(t *testing.T) {
	lines, err := Parse("2 Second verse\n1 First verse")
	require.NoError(t, err)

	issues := Audit(lines)
	require.Len(t, issues, 1)
	assert.False(t, issues[0].Fatal())
	assert.False(t, HasFatal(issues))
}
