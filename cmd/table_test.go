package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableAlignsWideCharacters(t *testing.T) {
	tbl := newTable("CONTENT", "STATUS", "PLATFORM")
	tbl.addRow("🚀 Launch day", "published", "X (Twitter)")
	tbl.addRow("Plain text", "failed", "LinkedIn")
	tbl.addRow("日本語のお知らせ", "draft", "Telegram")

	var out bytes.Buffer
	require.NoError(t, tbl.render(&out))

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "CONTENT")

	column := func(line, value string) int {
		idx := strings.Index(line, value)
		require.GreaterOrEqual(t, idx, 0, "%q not in %q", value, line)
		return lipgloss.Width(line[:idx])
	}

	statusAt := column(lines[1], "published")
	assert.Equal(t, statusAt, column(lines[2], "failed"))
	assert.Equal(t, statusAt, column(lines[3], "draft"))
	assert.Equal(t, lipgloss.Width("日本語のお知らせ")+len(columnGap), statusAt)

	platformAt := column(lines[1], "X (Twitter)")
	assert.Equal(t, platformAt, column(lines[2], "LinkedIn"))
	assert.Equal(t, platformAt, column(lines[3], "Telegram"))

	for _, line := range lines[1:] {
		assert.Equal(t, line, strings.TrimRight(line, " "), "last column is not padded")
	}
}

func TestTableShortRows(t *testing.T) {
	tbl := newTable("A", "B")
	tbl.addRow("only")

	var out bytes.Buffer
	require.NoError(t, tbl.render(&out))
	assert.Equal(t, "only", strings.TrimRight(strings.Split(out.String(), "\n")[1], " "))
}
