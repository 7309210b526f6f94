package parse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/akostiuk/zoewatch/core/model"
)

var digitRun = regexp.MustCompile(`\d+`)

// ResolveDate extracts the calendar date from an announcement title. The
// token positions come from the classification rule for class. The day token
// may carry an ordinal or punctuation suffix; only its digit run is used.
// Titles publish no year: the result takes the year of now, rolled forward to
// the next year when a January date is resolved in December (announcements
// are never retroactive, so no backward roll exists).
//
// The second return is false when the tokens are missing or unparseable;
// callers treat that as "skip this cycle", not as an error.
func (p *Parser) ResolveDate(title string, class model.Class, now time.Time) (time.Time, bool) {
	rule, ok := p.ruleFor(class)
	if !ok {
		return time.Time{}, false
	}

	fields := strings.Fields(title)
	if rule.DayPos >= len(fields) || rule.MonthPos >= len(fields) {
		p.log.Debugf("title too short for %s date rule: %q", class, title)
		return time.Time{}, false
	}

	day, err := strconv.Atoi(digitRun.FindString(fields[rule.DayPos]))
	if err != nil {
		p.log.Debugf("no day digits in token %q", fields[rule.DayPos])
		return time.Time{}, false
	}

	name := strings.ToLower(strings.Trim(fields[rule.MonthPos], ".,;:!"))
	month, ok := months[name]
	if !ok {
		p.log.Debugf("unknown month name %q", name)
		return time.Time{}, false
	}

	year := now.Year()
	if month == time.January && now.Month() == time.December {
		year++
	}

	date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// reject overflowed days like "31 лютого"
	if date.Day() != day || date.Month() != month {
		p.log.Debugf("day %d out of range for %s", day, name)
		return time.Time{}, false
	}
	return date, true
}
