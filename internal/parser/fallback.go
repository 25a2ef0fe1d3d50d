package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Molly166/LogParser/internal/model"
)

// Fallback key probes. Values are quoted strings that may contain escaped
// quotes and backslashes, so the patterns match escape pairs instead of
// stopping at the first quote.
var (
	queryPattern       = regexp.MustCompile(`"messageUser"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	sessionPattern     = regexp.MustCompile(`"sessionId"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	intentionPattern   = regexp.MustCompile(`"userIntention"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	userIDPattern      = regexp.MustCompile(`"userId"\s*:\s*(-?\d+)`)
	successFlagPattern = regexp.MustCompile(`"successFlag"\s*:\s*(-?\d+)`)
)

// billMarker prefixes the billing list in interpretation text.
const billMarker = "账单:"

// RecoverFields extracts what it can from a payload that failed strict
// decoding. Each probe succeeds or fails independently; the returned record
// is never nil, only emptier. Exported so that decode/fallback parity can
// be exercised directly on well-formed payloads.
func RecoverFields(payload string) *model.Record {
	rec := &model.Record{}

	if m := queryPattern.FindStringSubmatch(payload); m != nil {
		rec.Query = normalized(unescape(m[1]))
	}
	if m := sessionPattern.FindStringSubmatch(payload); m != nil {
		rec.SessionID = normalized(unescape(m[1]))
	}
	if m := intentionPattern.FindStringSubmatch(payload); m != nil {
		rec.UserIntention = normalized(unescape(m[1]))
	}
	if m := userIDPattern.FindStringSubmatch(payload); m != nil {
		if n, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			rec.UserID = &n
		}
	}
	if m := successFlagPattern.FindStringSubmatch(payload); m != nil {
		if n, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			rec.SuccessFlag = &n
		}
	}

	if reply, ok := scanQuotedValue(payload, "reply"); ok {
		rec.Reply = normalized(reply)
	}
	if bill, ok := recoverBillInfo(payload); ok {
		rec.BillInfo = &bill
	}

	return rec
}

// recoverBillInfo mirrors the structured bill extraction against raw text:
// the analysisResult value is located by pattern, its inner
// message_interpretation text is cut out the same way, and the locator runs
// over that text. promptParam/reference is the fallback source. When
// neither nested region can be recovered, the text after a bare billing
// marker is scanned as a last resort.
func recoverBillInfo(payload string) (string, bool) {
	sources := []struct{ outer, inner string }{
		{"analysisResult", "message_interpretation"},
		{"promptParam", "reference"},
	}
	for _, src := range sources {
		outer, ok := scanQuotedValue(payload, src.outer)
		if !ok {
			continue
		}
		text, ok := scanQuotedValue(outer, src.inner)
		if !ok {
			continue
		}
		if span, found := FindBillList(text); found {
			return span, true
		}
	}

	if i := strings.Index(payload, billMarker); i >= 0 {
		if span, found := FindBillList(payload[i+len(billMarker):]); found {
			return span, true
		}
	}
	return "", false
}

// scanQuotedValue finds `"key": "..."` in raw text and returns the
// unescaped value. The terminating quote must be an unescaped ASCII double
// quote followed, after optional whitespace, by a comma, closing brace, or
// end of text. Full-width quotation marks and unescaped ASCII quotes in
// the middle of a value (the usual reason strict decoding failed) are
// treated as literal content.
func scanQuotedValue(s, key string) (string, bool) {
	probe := `"` + key + `"`
	at := strings.Index(s, probe)
	if at < 0 {
		return "", false
	}
	rest := s[at+len(probe):]

	// Expect a colon, then the opening quote.
	rest = strings.TrimLeft(rest, " \t")
	if !strings.HasPrefix(rest, ":") {
		return "", false
	}
	rest = strings.TrimLeft(rest[1:], " \t")
	if !strings.HasPrefix(rest, `"`) {
		return "", false
	}
	rest = rest[1:]

	escaped := false
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c == '"' && terminatesValue(rest[i+1:]) {
			return unescape(rest[:i]), true
		}
	}
	return "", false
}

// terminatesValue reports whether text after a candidate closing quote
// looks like the continuation of the enclosing object.
func terminatesValue(after string) bool {
	after = strings.TrimLeft(after, " \t")
	if after == "" {
		return true
	}
	switch after[0] {
	case ',', '}', '\n':
		return true
	}
	return false
}

// unescape undoes the two escape sequences the fallback path cares about.
func unescape(s string) string {
	s = strings.ReplaceAll(s, `\"`, `"`)
	return strings.ReplaceAll(s, `\\`, `\`)
}

// normalized collapses blank recovered values to the missing marker.
func normalized(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
