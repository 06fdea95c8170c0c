package synonyms

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `fields:
  starting_monthly_rent:
    synonyms:
      - base rent
      - minimum rent
      - fixed monthly rent
    disqualifiers:
      - percentage rent
      - additional rent
  security_deposit:
    synonyms:
      - deposit
`

func writeDict(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "synonyms.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	tbl, err := Load(writeDict(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())

	rent := tbl.Get("starting_monthly_rent")
	assert.Equal(t, []string{"base rent", "minimum rent", "fixed monthly rent"}, rent.Synonyms)
	assert.Equal(t, []string{"percentage rent", "additional rent"}, rent.Disqualifiers)

	deposit := tbl.Get("security_deposit")
	assert.Equal(t, []string{"deposit"}, deposit.Synonyms)
	assert.Empty(t, deposit.Disqualifiers)
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	tbl, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())
	assert.Empty(t, tbl.Get("starting_monthly_rent").Synonyms)
}

func TestLoad_EmptyPath(t *testing.T) {
	tbl, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeDict(t, "fields: [not, a, map"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "synonyms: parse")
}

func TestPromptLines(t *testing.T) {
	tbl, err := Load(writeDict(t, sampleYAML))
	require.NoError(t, err)

	lines := tbl.PromptLines()
	require.Len(t, lines, 2)
	// Sorted by field name: security_deposit before starting_monthly_rent.
	assert.Equal(t, "- security_deposit: also appears as deposit", lines[0])
	assert.Equal(t, "- starting_monthly_rent: also appears as base rent, minimum rent, fixed monthly rent (do not confuse with percentage rent, additional rent)", lines[1])
}

func TestPromptLines_Empty(t *testing.T) {
	var tbl *Table
	assert.Nil(t, tbl.PromptLines())
	assert.Equal(t, Entry{}, tbl.Get("anything"))
	assert.Equal(t, 0, tbl.Len())
}
