package parser

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/Molly166/LogParser/internal/model"
)

// Log lines embed whole serialized conversations, so they run far past the
// default bufio token size.
const maxLineBytes = 16 << 20

// ParseFile parses every line of the file at path and returns the fully
// materialized record sequence. Blank lines and lines without a payload
// region are skipped but still consume a line number, so LineNumber always
// matches physical position. Only environment-level failures (open, read)
// return an error; malformed content never does.
func ParseFile(path string) ([]model.Record, model.Stats, error) {
	st, err := ParseFileStream(path)
	if err != nil {
		return nil, model.Stats{}, err
	}
	defer st.Close()

	var records []model.Record
	for st.Next() {
		records = append(records, st.Record())
	}
	if err := st.Err(); err != nil {
		return nil, st.Stats(), err
	}
	return records, st.Stats(), nil
}

// Stream is a forward-only, single-use record sequence over one log file.
// Each record is fully computed before Next returns; the file is read
// incrementally and held open only until Close (or exhaustion). A second
// pass requires a new Stream.
type Stream struct {
	f     *os.File
	sc    *bufio.Scanner
	line  int
	rec   model.Record
	stats model.Stats
	err   error
}

// ParseFileStream opens path for streaming extraction. A UTF-8 BOM, common
// in logs exported from Windows tooling, is stripped transparently.
func ParseFileStream(path string) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "parser: open %s", path)
	}

	var r io.Reader = transform.NewReader(f, unicode.UTF8BOM.NewDecoder())
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	return &Stream{f: f, sc: sc}, nil
}

// Next advances to the next record. It returns false at end of input or on
// a read error; check Err afterwards to tell the two apart.
func (s *Stream) Next() bool {
	if s.err != nil || s.sc == nil {
		return false
	}
	for s.sc.Scan() {
		s.line++
		line := strings.TrimSpace(s.sc.Text())
		if line == "" {
			continue
		}

		rec, ok := ParseLine(line)
		if !ok {
			s.stats.Skipped++
			continue
		}
		rec.LineNumber = s.line

		s.stats.Processed++
		switch rec.Outcome {
		case model.OutcomeRecovered:
			s.stats.Recovered++
		case model.OutcomeEmpty:
			s.stats.Empty++
		}

		s.rec = *rec
		return true
	}
	if err := s.sc.Err(); err != nil {
		s.err = eris.Wrap(err, "parser: read line")
	}
	s.sc = nil
	return false
}

// Record returns the record produced by the last successful Next call.
func (s *Stream) Record() model.Record { return s.rec }

// Stats returns the counters accumulated so far. Final totals are only
// meaningful once Next has returned false.
func (s *Stream) Stats() model.Stats { return s.stats }

// Err returns the first read error, if any.
func (s *Stream) Err() error { return s.err }

// Close releases the underlying file. Safe to call more than once.
func (s *Stream) Close() error {
	if s.f == nil {
		return nil
	}
	f := s.f
	s.f = nil
	s.sc = nil
	return f.Close()
}
