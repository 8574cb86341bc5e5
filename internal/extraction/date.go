package extraction

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateCandidate is the transaction-date field candidate.
type DateCandidate struct {
	Value    time.Time `json:"value"`
	Strength float64   `json:"strength"`
	// Layout names the pattern family that matched.
	Layout string `json:"layout,omitempty"`
}

var (
	isoDateRe     = regexp.MustCompile(`\b(\d{4})[-/](\d{1,2})[-/](\d{1,2})\b`)
	numericDateRe = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})\b`)
	// "March 15, 2024", "Mar 15 2024"
	monthNameDateRe = regexp.MustCompile(`(?i)\b([a-z]{3,10})\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`)
	// "15 de marzo de 2024", "15 marzo 2024"
	spanishDateRe = regexp.MustCompile(`(?i)\b(\d{1,2})\s+(?:de\s+)?([a-záéíóú]{3,10})\s+(?:de(?:l)?\s+)?(\d{4})\b`)
)

var monthNames = map[string]time.Month{
	"jan": time.January, "january": time.January, "ene": time.January, "enero": time.January,
	"feb": time.February, "february": time.February, "febrero": time.February,
	"mar": time.March, "march": time.March, "marzo": time.March,
	"apr": time.April, "april": time.April, "abr": time.April, "abril": time.April,
	"may": time.May, "mayo": time.May,
	"jun": time.June, "june": time.June, "junio": time.June,
	"jul": time.July, "july": time.July, "julio": time.July,
	"aug": time.August, "august": time.August, "ago": time.August, "agosto": time.August,
	"sep": time.September, "sept": time.September, "september": time.September, "septiembre": time.September,
	"oct": time.October, "october": time.October, "octubre": time.October,
	"nov": time.November, "november": time.November, "noviembre": time.November,
	"dec": time.December, "december": time.December, "dic": time.December, "diciembre": time.December,
}

// ExtractDate scans for the first parseable date in document order. ISO and
// month-name forms are unambiguous; a numeric d/m/y token is disambiguated
// by validity and by preferring a non-future reading. When both readings
// remain plausible the configured bias applies (month-first by default)
// with reduced strength, since the pick is a guess.
func ExtractDate(doc Document, cfg Config, now time.Time) *DateCandidate {
	for _, line := range doc.Lines() {
		if m := isoDateRe.FindStringSubmatch(line); m != nil {
			if d, ok := calendarDate(atoi(m[1]), atoi(m[2]), atoi(m[3])); ok {
				return &DateCandidate{Value: d, Strength: 0.95, Layout: "iso"}
			}
		}
		if c := parseMonthNameDate(line); c != nil {
			return c
		}
		if m := numericDateRe.FindStringSubmatch(line); m != nil {
			if c := disambiguateNumericDate(atoi(m[1]), atoi(m[2]), expandYear(m[3]), cfg, now); c != nil {
				return c
			}
		}
	}
	return nil
}

func parseMonthNameDate(line string) *DateCandidate {
	if m := monthNameDateRe.FindStringSubmatch(line); m != nil {
		if month, ok := monthNames[strings.ToLower(m[1])]; ok {
			if d, valid := calendarDate(atoi(m[3]), int(month), atoi(m[2])); valid {
				return &DateCandidate{Value: d, Strength: 0.9, Layout: "month name"}
			}
		}
	}
	if m := spanishDateRe.FindStringSubmatch(line); m != nil {
		if month, ok := monthNames[strings.ToLower(m[2])]; ok {
			if d, valid := calendarDate(atoi(m[3]), int(month), atoi(m[1])); valid {
				return &DateCandidate{Value: d, Strength: 0.9, Layout: "month name"}
			}
		}
	}
	return nil
}

// disambiguateNumericDate resolves a d/m/y vs m/d/y token. Preference
// order: the only valid reading, then the only non-future reading, then
// the configured bias at reduced strength.
func disambiguateNumericDate(first, second, year int, cfg Config, now time.Time) *DateCandidate {
	monthFirst, mfOK := calendarDate(year, first, second)
	dayFirst, dfOK := calendarDate(year, second, first)

	if !mfOK && !dfOK {
		return nil
	}
	if mfOK != dfOK {
		d := monthFirst
		if dfOK {
			d = dayFirst
		}
		return &DateCandidate{Value: d, Strength: 0.85, Layout: "numeric"}
	}
	if first == second {
		// 03/03/2024 reads the same either way.
		return &DateCandidate{Value: monthFirst, Strength: 0.85, Layout: "numeric"}
	}

	mfFuture := monthFirst.After(now)
	dfFuture := dayFirst.After(now)
	if mfFuture != dfFuture {
		d := monthFirst
		if mfFuture {
			d = dayFirst
		}
		return &DateCandidate{Value: d, Strength: 0.85, Layout: "numeric"}
	}

	d := monthFirst
	if !cfg.PreferMonthFirst {
		d = dayFirst
	}
	return &DateCandidate{Value: d, Strength: 0.6, Layout: "numeric ambiguous"}
}

// calendarDate builds a UTC midnight date and rejects impossible
// components (month 13, February 30th, and the like).
func calendarDate(year, month, day int) (time.Time, bool) {
	if year < 1900 || year > 2200 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || d.Month() != time.Month(month) || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

func expandYear(s string) int {
	y := atoi(s)
	if len(s) == 2 {
		y += 2000
	}
	return y
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
