package mailpage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DateStatus classifies the outcome of date normalization.
type DateStatus int

const (
	// DateAbsent means the date field was not extracted.
	DateAbsent DateStatus = iota
	// DateParsed means Time and UDate are valid.
	DateParsed
	// DateMalformed means a value was present but could not be parsed.
	DateMalformed
)

func (s DateStatus) String() string {
	switch s {
	case DateAbsent:
		return "absent"
	case DateParsed:
		return "parsed"
	case DateMalformed:
		return "malformed"
	}
	return fmt.Sprintf("DateStatus(%d)", int(s))
}

var ErrUnparsableDate = errors.New("unparsable date")

// DateResult is the typed outcome of DateNormalizer.Normalize.
type DateResult struct {
	Status DateStatus
	Raw    string
	// Time is midnight of the parsed day, in the parsed zone.
	Time time.Time
	Err  error
}

// UDate returns the Unix timestamp of Time.
func (r DateResult) UDate() int64 { return r.Time.Unix() }

// fallbackLayouts are print renderings dateparse rejects: Gmail's
// "Mar 3, 2022 at 10:45 PM" and Outlook's comma after the year,
// "Mar 3, 2022, 10:45 AM". Everything else goes through dateparse.
var fallbackLayouts = []string{
	"January 2, 2006 at 3:04 PM",
	"January 2, 2006 at 3:04:05 PM",
	"Jan 2, 2006 at 3:04 PM",
	"Jan 2, 2006 at 3:04:05 PM",
	"January 2, 2006, 3:04 PM",
	"Jan 2, 2006, 3:04 PM",
}

var weekdays = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
	"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun",
}

// DateNormalizer turns free-form header dates into day-level timestamps.
type DateNormalizer struct {
	loc *time.Location
}

// NewDateNormalizer interprets zoneless dates in loc; nil means time.Local.
func NewDateNormalizer(loc *time.Location) *DateNormalizer {
	if loc == nil {
		loc = time.Local
	}
	return &DateNormalizer{loc: loc}
}

// Location returns the zone used for dates without an explicit offset.
func (n *DateNormalizer) Location() *time.Location { return n.loc }

// Normalize parses raw and anchors it to midnight of the same day. It never
// panics and never returns DateAbsent; callers check field presence first.
func (n *DateNormalizer) Normalize(raw string) DateResult {
	res := DateResult{Raw: raw}
	value := strings.Join(strings.Fields(raw), " ")
	if value == "" {
		res.Status = DateMalformed
		res.Err = fmt.Errorf("%w: empty value", ErrUnparsableDate)
		return res
	}

	t, err := n.parse(value)
	if err != nil {
		res.Status = DateMalformed
		res.Err = err
		return res
	}
	res.Status = DateParsed
	res.Time = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return res
}

func (n *DateNormalizer) parse(value string) (time.Time, error) {
	candidates := []string{value}
	if trimmed := stripWeekday(value); trimmed != value {
		candidates = append(candidates, trimmed)
	}

	var firstErr error
	for _, c := range candidates {
		t, err := parseFreeForm(c, n.loc)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	for _, c := range candidates {
		for _, layout := range fallbackLayouts {
			if t, err := time.ParseInLocation(layout, c, n.loc); err == nil {
				return t, nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("%w %q: %v", ErrUnparsableDate, value, firstErr)
}

// parseFreeForm wraps dateparse, which can panic on some garbled inputs.
func parseFreeForm(value string, loc *time.Location) (t time.Time, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dateparse: %v", r)
		}
	}()
	return dateparse.ParseIn(value, loc)
}

func stripWeekday(value string) string {
	for _, day := range weekdays {
		if rest, ok := strings.CutPrefix(value, day); ok {
			rest = strings.TrimLeft(rest, ", ")
			if rest != "" {
				return rest
			}
		}
	}
	return value
}
