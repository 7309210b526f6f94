package parse

import (
	"time"

	"github.com/akostiuk/zoewatch/core/model"
)

// ClassRule binds a title marker phrase to its announcement class and to the
// positions of the day and month tokens in the space-split title. The two
// known phrasings place the date at different offsets; that coupling belongs
// to the source format, so it lives here as data.
type ClassRule struct {
	Marker   string
	Class    model.Class
	DayPos   int
	MonthPos int
}

// Markers holds every literal anchor the parser searches for. The source page
// is not valid markup, so extraction works by substring search over raw text;
// format drift only requires editing this table.
type Markers struct {
	// Section opens the part of the page holding all announcements.
	Section string
	// Article separates individual announcements inside the section. The
	// first segment after the split is the most recent post.
	Article string
	// Region is the phrase identifying the title line of an announcement.
	Region string
	// ValueDelim terminates a queue's window inside a schedule line.
	ValueDelim string
	// LabelSep separates a queue label from its window, e.g. "6.1: ".
	LabelSep string
	// Rules classify titles in order; the first matching marker wins.
	Rules []ClassRule
}

// DefaultMarkers returns the marker table for the zoe.com.ua outage page.
func DefaultMarkers() Markers {
	return Markers{
		Section:    `<main role="main">`,
		Article:    `<article id="`,
		Region:     "ПО ЗАПОРІЗЬКІЙ ОБЛАСТІ",
		ValueDelim: "<",
		LabelSep:   ": ",
		Rules: []ClassRule{
			{Marker: "ДІЯТИМУТЬ ГПВ", Class: model.ClassNew, DayPos: 0, MonthPos: 1},
			{Marker: "ОНОВЛЕНО ГПВ", Class: model.ClassUpdated, DayPos: 3, MonthPos: 4},
		},
	}
}

// months maps lowercase Ukrainian genitive month names, as they appear in
// announcement titles, to calendar months.
var months = map[string]time.Month{
	"січня":     time.January,
	"лютого":    time.February,
	"березня":   time.March,
	"квітня":    time.April,
	"травня":    time.May,
	"червня":    time.June,
	"липня":     time.July,
	"серпня":    time.August,
	"вересня":   time.September,
	"жовтня":    time.October,
	"листопада": time.November,
	"грудня":    time.December,
}
