package imap

import (
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
)

// Date layouts accepted by SINCE and BEFORE.
var dateLayouts = []string{"02-Jan-2006", "2006-01-02"}

var headerKeys = map[string]string{
	"FROM":    "From",
	"TO":      "To",
	"CC":      "Cc",
	"BCC":     "Bcc",
	"SUBJECT": "Subject",
}

var flagTerms = map[string]imap.Flag{
	"SEEN":     imap.FlagSeen,
	"ANSWERED": imap.FlagAnswered,
	"FLAGGED":  imap.FlagFlagged,
	"DRAFT":    imap.FlagDraft,
	"DELETED":  imap.FlagDeleted,
}

// ParseQuery translates the search syntax exposed to callers into IMAP
// search criteria. The syntax is a sequence of terms, implicitly ANDed:
//
//	FROM "alice@example.com" SUBJECT report SINCE 01-Jan-2025
//	OR FROM alice FROM bob
//	UNSEEN "quarterly figures"
//
// Header terms (FROM, TO, CC, BCC, SUBJECT) and BODY/TEXT take a value,
// quoted when it contains spaces. SINCE and BEFORE take a date in
// 02-Jan-2006 or 2006-01-02 form. Flag terms (SEEN, UNSEEN, ANSWERED,
// FLAGGED, DRAFT, DELETED) stand alone. OR combines the two following
// terms. Bare words search the full message text. Keywords are matched
// case-insensitively.
func ParseQuery(query string) (*imap.SearchCriteria, error) {
	tokens := tokenize(query)

	criteria := &imap.SearchCriteria{}
	i := 0
	for i < len(tokens) {
		next, err := parseTerm(tokens, i, criteria)
		if err != nil {
			return nil, err
		}
		i = next
	}
	return criteria, nil
}

// parseTerm consumes one term starting at tokens[i] into criteria and
// returns the index of the next unconsumed token.
func parseTerm(tokens []string, i int, criteria *imap.SearchCriteria) (int, error) {
	keyword := strings.ToUpper(tokens[i])

	if key, ok := headerKeys[keyword]; ok {
		value, next, err := takeValue(tokens, i)
		if err != nil {
			return 0, err
		}
		criteria.Header = append(criteria.Header, imap.SearchCriteriaHeaderField{
			Key:   key,
			Value: value,
		})
		return next, nil
	}

	if keyword == "UNSEEN" {
		criteria.NotFlag = append(criteria.NotFlag, imap.FlagSeen)
		return i + 1, nil
	}
	if flag, ok := flagTerms[keyword]; ok {
		criteria.Flag = append(criteria.Flag, flag)
		return i + 1, nil
	}

	switch keyword {
	case "BODY":
		value, next, err := takeValue(tokens, i)
		if err != nil {
			return 0, err
		}
		criteria.Body = append(criteria.Body, value)
		return next, nil

	case "TEXT":
		value, next, err := takeValue(tokens, i)
		if err != nil {
			return 0, err
		}
		criteria.Text = append(criteria.Text, value)
		return next, nil

	case "SINCE", "BEFORE":
		value, next, err := takeValue(tokens, i)
		if err != nil {
			return 0, err
		}
		date, err := parseDate(value)
		if err != nil {
			return 0, err
		}
		if keyword == "SINCE" {
			criteria.Since = date
		} else {
			criteria.Before = date
		}
		return next, nil

	case "OR":
		var left, right imap.SearchCriteria
		if i+1 >= len(tokens) {
			return 0, fmt.Errorf("OR requires two terms")
		}
		mid, err := parseTerm(tokens, i+1, &left)
		if err != nil {
			return 0, err
		}
		if mid >= len(tokens) {
			return 0, fmt.Errorf("OR requires two terms")
		}
		next, err := parseTerm(tokens, mid, &right)
		if err != nil {
			return 0, err
		}
		criteria.Or = append(criteria.Or, [2]imap.SearchCriteria{left, right})
		return next, nil

	default:
		// Bare words search the full text.
		criteria.Text = append(criteria.Text, unquote(tokens[i]))
		return i + 1, nil
	}
}

func takeValue(tokens []string, i int) (string, int, error) {
	if i+1 >= len(tokens) {
		return "", 0, fmt.Errorf("%s requires a value", strings.ToUpper(tokens[i]))
	}
	return unquote(tokens[i+1]), i + 2, nil
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if date, err := time.Parse(layout, value); err == nil {
			return date, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (want 02-Jan-2006 or 2006-01-02)", value)
}

func unquote(token string) string {
	return strings.Trim(token, `"`)
}

// tokenize splits a query on spaces while keeping quoted strings
// together, quotes included.
func tokenize(query string) []string {
	var tokens []string
	var current strings.Builder
	inQuotes := false

	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '"':
			inQuotes = !inQuotes
			current.WriteByte(c)
		case c == ' ' && !inQuotes:
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteByte(c)
		}
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}
