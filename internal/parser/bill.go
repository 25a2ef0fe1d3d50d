package parser

// FindBillList returns the last complete bracketed list literal in text,
// brackets included. Billing text is not valid JSON: entries quote keys and
// values with single quotes, double quotes, or full-width quote pairs, and
// free-text values may contain brackets and commas. The scan therefore
// tracks quote state rune by rune instead of delegating to a JSON decoder.
//
// A candidate starts at a [ seen at depth zero and completes at the ] that
// brings the joint [/{ depth back to zero. Later complete candidates
// supersede earlier ones. Quote state is only tracked inside a candidate:
// the surrounding prose routinely contains unpaired quote characters that
// would otherwise swallow the list. An unterminated candidate is discarded.
func FindBillList(text string) (string, bool) {
	var (
		depth     int
		start     = -1
		lastStart = -1
		lastEnd   = -1
		quote     rune // closing quote currently expected, 0 = none
		escaped   bool
	)

	for i, r := range text {
		if escaped {
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}

		if quote != 0 {
			if r == quote {
				quote = 0
			}
			continue
		}

		if depth > 0 {
			if cq, ok := closingQuote(r); ok {
				quote = cq
				continue
			}
		}

		switch r {
		case '[':
			if depth == 0 {
				start = i
			}
			depth++
		case '{':
			depth++
		case ']':
			if depth == 0 {
				continue // stray closer
			}
			depth--
			if depth == 0 {
				if start >= 0 {
					lastStart, lastEnd = start, i+1
				}
				start = -1
			}
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				// A list cannot close on a brace.
				start = -1
			}
		}
	}

	if lastStart < 0 {
		return "", false
	}
	return text[lastStart:lastEnd], true
}

// closingQuote maps an opening quote rune to the rune that closes it.
// ASCII quotes close on themselves; the full-width pairs do not.
func closingQuote(r rune) (rune, bool) {
	switch r {
	case '\'', '"':
		return r, true
	case '“': // “
		return '”', true // ”
	case '‘': // ‘
		return '’', true // ’
	}
	return 0, false
}
