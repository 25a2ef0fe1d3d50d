package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Molly166/LogParser/internal/model"
)

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseFileSkipKeepsLineNumbers(t *testing.T) {
	content := `x - [m,1] - {"messageUser":"first","reply":"a"}
this line has no payload
x - [m,3] - {"messageUser":"third","reply":"b"}
`
	path := writeFixture(t, content)

	records, stats, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 1, records[0].LineNumber)
	assert.Equal(t, 3, records[1].LineNumber)
	assert.Equal(t, "first", *records[0].Query)
	assert.Equal(t, "third", *records[1].Query)

	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, 1, stats.Skipped)
}

func TestParseFileBlankLinesConsumeNumbering(t *testing.T) {
	content := "\n\n" + `x - [m,3] - {"reply":"ok"}` + "\n"
	path := writeFixture(t, content)

	records, _, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 3, records[0].LineNumber)
}

func TestParseFileMissingFile(t *testing.T) {
	_, _, err := ParseFile(filepath.Join(t.TempDir(), "nope.log"))
	assert.Error(t, err)
}

func TestParseFileStripsBOM(t *testing.T) {
	content := "\xef\xbb\xbf" + `x - [m,1] - {"messageUser":"hi","reply":"ok"}` + "\n"
	path := writeFixture(t, content)

	records, _, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "hi", *records[0].Query)
}

func TestStreamMatchesWholeFile(t *testing.T) {
	content := sampleLine + "\n" +
		"garbage without payload\n" +
		malformedLine + "\n" +
		"\n" +
		`x - [m,5] - {"reply":"only reply"}` + "\n"
	path := writeFixture(t, content)

	whole, wholeStats, err := ParseFile(path)
	require.NoError(t, err)

	st, err := ParseFileStream(path)
	require.NoError(t, err)
	defer st.Close()

	var streamed []model.Record
	for st.Next() {
		streamed = append(streamed, st.Record())
	}
	require.NoError(t, st.Err())

	assert.Equal(t, whole, streamed)
	assert.Equal(t, wholeStats, st.Stats())
}

func TestStreamStats(t *testing.T) {
	content := sampleLine + "\n" +
		"garbage\n" +
		malformedLine + "\n" +
		`x - [m,4] - {"totally: broken` + "\n"
	path := writeFixture(t, content)

	st, err := ParseFileStream(path)
	require.NoError(t, err)
	defer st.Close()

	for st.Next() {
	}
	require.NoError(t, st.Err())

	stats := st.Stats()
	assert.Equal(t, 3, stats.Processed)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, stats.Recovered)
	assert.Equal(t, 1, stats.Empty)
}

func TestStreamCloseIsIdempotent(t *testing.T) {
	path := writeFixture(t, sampleLine+"\n")

	st, err := ParseFileStream(path)
	require.NoError(t, err)

	require.True(t, st.Next())
	require.NoError(t, st.Close())
	require.NoError(t, st.Close())
	assert.False(t, st.Next())
}

func TestParseFileDeterministic(t *testing.T) {
	path := writeFixture(t, sampleLine+"\n"+malformedLine+"\n")

	first, _, err := ParseFile(path)
	require.NoError(t, err)
	second, _, err := ParseFile(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
