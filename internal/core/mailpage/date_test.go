package mailpage

import (
	"errors"
	"testing"
	"time"
)

func TestDateNormalizer_Normalize(t *testing.T) {
	loc := time.FixedZone("UTC-7", -7*3600)
	n := NewDateNormalizer(loc)
	est := time.FixedZone("", -5*3600)

	testCases := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"outlook", "March 3, 2022 10:45 AM", time.Date(2022, 3, 3, 0, 0, 0, 0, loc)},
		{"weekday prefix", "Thursday, March 3, 2022 10:45 AM", time.Date(2022, 3, 3, 0, 0, 0, 0, loc)},
		{"gmail at", "Mar 3, 2022 at 10:45 PM", time.Date(2022, 3, 3, 0, 0, 0, 0, loc)},
		{"gmail at with weekday", "Thu, Mar 3, 2022 at 10:45 PM", time.Date(2022, 3, 3, 0, 0, 0, 0, loc)},
		{"comma after year", "Mar 3, 2022, 10:45 AM", time.Date(2022, 3, 3, 0, 0, 0, 0, loc)},
		{"rfc 5322", "Thu, 3 Mar 2022 10:45:00 -0500", time.Date(2022, 3, 3, 0, 0, 0, 0, est)},
		{"wrapped whitespace", "March  3, 2022\n 10:45 AM", time.Date(2022, 3, 3, 0, 0, 0, 0, loc)},
		{"iso date", "2022-03-03", time.Date(2022, 3, 3, 0, 0, 0, 0, loc)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := n.Normalize(tc.raw)
			if res.Status != DateParsed {
				t.Fatalf("Normalize(%q) status = %v, err = %v", tc.raw, res.Status, res.Err)
			}
			if res.UDate() != tc.want.Unix() {
				t.Errorf("Normalize(%q) = %v, want %v", tc.raw, res.Time, tc.want)
			}
			if h, m, s := res.Time.Clock(); h != 0 || m != 0 || s != 0 {
				t.Errorf("Normalize(%q) not at midnight: %v", tc.raw, res.Time)
			}
		})
	}
}

func TestDateNormalizer_Malformed(t *testing.T) {
	n := NewDateNormalizer(time.UTC)
	for _, raw := range []string{"sometime next week", "", "   "} {
		res := n.Normalize(raw)
		if res.Status != DateMalformed {
			t.Errorf("Normalize(%q) status = %v, want malformed", raw, res.Status)
		}
		if !errors.Is(res.Err, ErrUnparsableDate) {
			t.Errorf("Normalize(%q) err = %v, want ErrUnparsableDate", raw, res.Err)
		}
	}
}

func TestNewDateNormalizer_DefaultsToLocal(t *testing.T) {
	if NewDateNormalizer(nil).Location() != time.Local {
		t.Error("nil location should mean time.Local")
	}
}
