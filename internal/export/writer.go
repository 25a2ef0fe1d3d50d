// Package export serializes extraction records to JSON, CSV, and TXT.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/Molly166/LogParser/internal/model"
	"github.com/Molly166/LogParser/internal/parser"
)

// Supported output formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatTXT  = "txt"
)

// Formats lists the supported output formats in display order.
var Formats = []string{FormatJSON, FormatCSV, FormatTXT}

// ValidFormat reports whether format names a supported serialization.
func ValidFormat(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// csvHeader is the fixed column order for tabular output.
var csvHeader = []string{
	"line_number", "query", "bill_info", "reply",
	"user_id", "session_id", "user_intention", "success_flag",
}

// WriteJSON writes records as an indented JSON array. Missing fields
// serialize as null.
func WriteJSON(w io.Writer, records []model.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return eris.Wrap(enc.Encode(records), "export: encode json")
}

// WriteCSV writes records as UTF-8 CSV with a BOM so spreadsheet tools
// pick up the encoding. Missing fields become empty cells.
func WriteCSV(w io.Writer, records []model.Record) error {
	bw := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	cw := csv.NewWriter(bw)

	if err := cw.Write(csvHeader); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for i := range records {
		if err := cw.Write(csvRow(&records[i])); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "export: flush csv")
	}
	return eris.Wrap(bw.Close(), "export: close csv transform")
}

// WriteTXT writes records as human-readable blocks.
func WriteTXT(w io.Writer, records []model.Record) error {
	for i := range records {
		if err := writeTXTRecord(w, i+1, &records[i]); err != nil {
			return err
		}
	}
	return nil
}

// StreamJSON consumes a record stream and writes a JSON array one record
// at a time, returning the number of records written.
func StreamJSON(w io.Writer, st *parser.Stream) (int, error) {
	if _, err := io.WriteString(w, "[\n"); err != nil {
		return 0, eris.Wrap(err, "export: write json open")
	}

	count := 0
	for st.Next() {
		if count > 0 {
			if _, err := io.WriteString(w, ",\n"); err != nil {
				return count, eris.Wrap(err, "export: write json separator")
			}
		}
		rec := st.Record()
		buf, err := json.MarshalIndent(rec, "  ", "  ")
		if err != nil {
			return count, eris.Wrap(err, "export: encode json record")
		}
		if _, err := io.WriteString(w, "  "+string(buf)); err != nil {
			return count, eris.Wrap(err, "export: write json record")
		}
		count++
	}
	if err := st.Err(); err != nil {
		return count, err
	}

	if _, err := io.WriteString(w, "\n]\n"); err != nil {
		return count, eris.Wrap(err, "export: write json close")
	}
	return count, nil
}

// StreamCSV consumes a record stream and writes CSV rows as they arrive.
func StreamCSV(w io.Writer, st *parser.Stream) (int, error) {
	bw := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	cw := csv.NewWriter(bw)

	if err := cw.Write(csvHeader); err != nil {
		return 0, eris.Wrap(err, "export: write csv header")
	}

	count := 0
	for st.Next() {
		rec := st.Record()
		if err := cw.Write(csvRow(&rec)); err != nil {
			return count, eris.Wrap(err, "export: write csv row")
		}
		count++
	}
	if err := st.Err(); err != nil {
		return count, err
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return count, eris.Wrap(err, "export: flush csv")
	}
	return count, eris.Wrap(bw.Close(), "export: close csv transform")
}

// StreamTXT consumes a record stream and writes text blocks as they arrive.
func StreamTXT(w io.Writer, st *parser.Stream) (int, error) {
	count := 0
	for st.Next() {
		rec := st.Record()
		if err := writeTXTRecord(w, count+1, &rec); err != nil {
			return count, err
		}
		count++
	}
	return count, st.Err()
}

func csvRow(r *model.Record) []string {
	return []string{
		strconv.Itoa(r.LineNumber),
		strOrEmpty(r.Query),
		strOrEmpty(r.BillInfo),
		strOrEmpty(r.Reply),
		intOrEmpty(r.UserID),
		strOrEmpty(r.SessionID),
		strOrEmpty(r.UserIntention),
		intOrEmpty(r.SuccessFlag),
	}
}

func writeTXTRecord(w io.Writer, n int, r *model.Record) error {
	_, err := fmt.Fprintf(w,
		"=== record %d ===\nline: %d\nquery: %s\nbill_info: %s\nreply: %s\n",
		n, r.LineNumber,
		strOrPlaceholder(r.Query),
		strOrPlaceholder(r.BillInfo),
		strOrPlaceholder(r.Reply),
	)
	if err != nil {
		return eris.Wrap(err, "export: write txt record")
	}
	if r.UserID != nil {
		if _, err := fmt.Fprintf(w, "user_id: %d\n", *r.UserID); err != nil {
			return eris.Wrap(err, "export: write txt record")
		}
	}
	_, err = io.WriteString(w, "\n")
	return eris.Wrap(err, "export: write txt record")
}

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func intOrEmpty(p *int64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatInt(*p, 10)
}

func strOrPlaceholder(p *string) string {
	if p == nil {
		return "(missing)"
	}
	return *p
}
