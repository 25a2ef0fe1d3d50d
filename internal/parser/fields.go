package parser

import (
	"encoding/json"
	"strings"

	"github.com/Molly166/LogParser/internal/model"
)

// extractFields builds a Record from a successfully decoded payload.
// Every field is independently optional; absent, null, and empty-after-trim
// all collapse to nil.
func extractFields(data map[string]any) *model.Record {
	return &model.Record{
		Query:         normString(data["messageUser"]),
		BillInfo:      extractBillInfo(data),
		Reply:         normString(data["reply"]),
		UserID:        normInt(data["userId"]),
		SessionID:     normString(data["sessionId"]),
		UserIntention: normString(data["userIntention"]),
		SuccessFlag:   normInt(data["successFlag"]),
	}
}

// extractBillInfo locates the billing list for a decoded payload.
// analysisResult.message_interpretation takes priority whenever it yields a
// result; promptParam.reference is consulted only when it does not. Both
// values are JSON strings nested inside the payload, so each is decoded a
// second time before the locator runs. Decode failures just mean that
// source contributes nothing.
func extractBillInfo(data map[string]any) *string {
	if bill := billFromNested(data["analysisResult"], "message_interpretation"); bill != nil {
		return bill
	}
	return billFromNested(data["promptParam"], "reference")
}

// billFromNested decodes a nested JSON-string value and runs the bill
// locator over the named text field inside it.
func billFromNested(raw any, field string) *string {
	s, ok := raw.(string)
	if !ok || s == "" {
		return nil
	}
	var nested map[string]any
	if err := json.Unmarshal([]byte(s), &nested); err != nil {
		return nil
	}
	text, ok := nested[field].(string)
	if !ok || text == "" {
		return nil
	}
	if span, found := FindBillList(text); found {
		return &span
	}
	return nil
}

// normString collapses absent, null, and blank values to nil.
func normString(v any) *string {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// normInt accepts the numeric shapes a decoded payload can carry.
func normInt(v any) *int64 {
	switch n := v.(type) {
	case float64:
		i := int64(n)
		return &i
	case int64:
		return &n
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return &i
		}
	}
	return nil
}
