package model

// ParseOutcome describes which extraction path produced a record.
type ParseOutcome string

const (
	// OutcomeDecoded means the payload parsed as strict JSON.
	OutcomeDecoded ParseOutcome = "decoded"
	// OutcomeRecovered means strict parsing failed and at least one field
	// was recovered by pattern matching.
	OutcomeRecovered ParseOutcome = "recovered"
	// OutcomeEmpty means a payload was found but no field could be
	// recovered by either path.
	OutcomeEmpty ParseOutcome = "empty"
)

// Record is the extraction result for a single log line. Nil pointer fields
// mean "missing": the key was absent, null, or empty after trimming. A
// Record is fully populated before it is emitted and never mutated after.
type Record struct {
	LineNumber    int     `json:"line_number"`
	Query         *string `json:"query"`
	BillInfo      *string `json:"bill_info"`
	Reply         *string `json:"reply"`
	UserID        *int64  `json:"user_id"`
	SessionID     *string `json:"session_id"`
	UserIntention *string `json:"user_intention"`
	SuccessFlag   *int64  `json:"success_flag"`

	Outcome ParseOutcome `json:"-"`
}

// Empty reports whether no field at all was recovered.
func (r *Record) Empty() bool {
	return r.Query == nil && r.BillInfo == nil && r.Reply == nil &&
		r.UserID == nil && r.SessionID == nil && r.UserIntention == nil &&
		r.SuccessFlag == nil
}

// Stats counts per-line outcomes over one parse pass.
type Stats struct {
	Processed int `json:"processed"` // records emitted
	Skipped   int `json:"skipped"`   // lines with no payload region
	Recovered int `json:"recovered"` // records produced by the fallback path
	Empty     int `json:"empty"`     // records with every field missing
}
