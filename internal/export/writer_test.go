package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Molly166/LogParser/internal/model"
	"github.com/Molly166/LogParser/internal/parser"
)

func strptr(s string) *string { return &s }
func intptr(n int64) *int64   { return &n }

func sampleRecords() []model.Record {
	return []model.Record{
		{
			LineNumber: 1,
			Query:      strptr("垃圾袋0.99"),
			BillInfo:   strptr("[{'类别': '支出'}]"),
			Reply:      strptr("已记录"),
			UserID:     intptr(1638),
			SessionID:  strptr("abc"),
		},
		{
			LineNumber: 3,
			Reply:      strptr("only reply"),
		},
	}
}

func TestWriteJSONMissingIsNull(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleRecords()))

	out := buf.String()
	assert.Contains(t, out, `"query": "垃圾袋0.99"`)
	assert.Contains(t, out, `"query": null`)
	assert.Contains(t, out, `"bill_info": null`)
	assert.Contains(t, out, `"line_number": 3`)
	// Outcome is internal and must not leak into output.
	assert.NotContains(t, out, "outcome")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRecords()))

	raw := buf.Bytes()
	require.True(t, bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}), "expected UTF-8 BOM")

	r := csv.NewReader(bytes.NewReader(raw[3:]))
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "垃圾袋0.99", rows[1][1])
	assert.Equal(t, "1638", rows[1][4])
	// Missing fields are empty cells.
	assert.Equal(t, "", rows[2][1])
	assert.Equal(t, "", rows[2][2])
	assert.Equal(t, "only reply", rows[2][3])
}

func TestWriteTXT(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTXT(&buf, sampleRecords()))

	out := buf.String()
	assert.Contains(t, out, "=== record 1 ===")
	assert.Contains(t, out, "query: 垃圾袋0.99")
	assert.Contains(t, out, "user_id: 1638")
	assert.Contains(t, out, "query: (missing)")
	assert.Contains(t, out, "reply: only reply")
}

func TestValidFormat(t *testing.T) {
	assert.True(t, ValidFormat("json"))
	assert.True(t, ValidFormat("csv"))
	assert.True(t, ValidFormat("txt"))
	assert.False(t, ValidFormat("xml"))
	assert.False(t, ValidFormat(""))
}

// Streaming writers must produce the same bytes as their whole-file
// counterparts modulo JSON encoder newline placement.
func TestStreamWritersMatchWholeFile(t *testing.T) {
	content := `x - [m,1] - {"messageUser":"hi","reply":"ok","userId":7}` + "\n" +
		"garbage line\n" +
		`x - [m,3] - {"reply":"second"}` + "\n"
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	records, _, err := parser.ParseFile(path)
	require.NoError(t, err)

	t.Run("csv", func(t *testing.T) {
		var whole bytes.Buffer
		require.NoError(t, WriteCSV(&whole, records))

		st, err := parser.ParseFileStream(path)
		require.NoError(t, err)
		defer st.Close()

		var streamed bytes.Buffer
		n, err := StreamCSV(&streamed, st)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, whole.String(), streamed.String())
	})

	t.Run("txt", func(t *testing.T) {
		var whole bytes.Buffer
		require.NoError(t, WriteTXT(&whole, records))

		st, err := parser.ParseFileStream(path)
		require.NoError(t, err)
		defer st.Close()

		var streamed bytes.Buffer
		n, err := StreamTXT(&streamed, st)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, whole.String(), streamed.String())
	})

	t.Run("json", func(t *testing.T) {
		st, err := parser.ParseFileStream(path)
		require.NoError(t, err)
		defer st.Close()

		var streamed bytes.Buffer
		n, err := StreamJSON(&streamed, st)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		out := streamed.String()
		assert.True(t, strings.HasPrefix(out, "[\n"))
		assert.True(t, strings.HasSuffix(out, "\n]\n"))
		assert.Contains(t, out, `"query": "hi"`)
		assert.Contains(t, out, `"line_number": 3`)
	})
}
