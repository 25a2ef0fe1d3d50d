// Package parser extracts query, billing info, and model reply from
// application log lines that embed a JSON-ish payload after a textual
// prefix. Strict JSON decoding is attempted first; lines that fail it go
// through pattern-based recovery so that malformed payloads still yield a
// record with whatever fields can be salvaged.
package parser

import (
	"encoding/json"
	"strings"

	"github.com/Molly166/LogParser/internal/model"
)

// ParseLine converts one raw log line into a Record. The boolean is false
// when the line carries no payload region at all (no opening brace after
// the prefix), in which case the line is skipped rather than emitted as an
// all-missing record. Malformed payload content never returns an error:
// the fallback path fills in what it can and the rest stays missing.
func ParseLine(line string) (*model.Record, bool) {
	payload, ok := isolatePayload(line)
	if !ok {
		return nil, false
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(payload), &data); err == nil {
		rec := extractFields(data)
		rec.Outcome = model.OutcomeDecoded
		return rec, true
	}

	rec := RecoverFields(payload)
	if rec.Empty() {
		rec.Outcome = model.OutcomeEmpty
	} else {
		rec.Outcome = model.OutcomeRecovered
	}
	return rec, true
}

// isolatePayload cuts the {...} payload region out of a raw line. Lines
// look like "<ts> [<task>] <level> <class> - [<method>,<lineno>] - <payload>",
// so the substring after the last " - " separator is preferred; lines
// without the separator fall back to the first opening brace. The end of
// the region is found by a balanced scan; if the payload never balances
// (the malformed case) the whole tail is kept for the fallback path.
func isolatePayload(line string) (string, bool) {
	line = strings.TrimSpace(line)

	tail := line
	if i := strings.LastIndex(line, " - "); i >= 0 {
		tail = line[i+3:]
	}
	start := strings.IndexByte(tail, '{')
	if start < 0 {
		// Separator split may have cut the payload off; retry on the
		// whole line before giving up.
		if start = strings.IndexByte(line, '{'); start < 0 {
			return "", false
		}
		tail = line
	}
	tail = tail[start:]

	if end, ok := balancedEnd(tail); ok {
		tail = tail[:end]
	}
	return strings.TrimRight(tail, " \t\r\n\x00"), true
}

// balancedEnd returns the byte offset just past the brace that closes the
// object opened at tail[0]. String contents are skipped so braces inside
// quoted values do not end the payload early.
func balancedEnd(tail string) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(tail); i++ {
		c := tail[i]

		if escaped {
			escaped = false
			continue
		}
		if inString {
			switch c {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}
