package dispatch

import (
	"fmt"
	"time"

	"github.com/akostiuk/zoewatch/core/model"
)

const (
	headerPublished = "Графік погодинних відключень на %s, черга %s:"
	headerUpdated   = "Оновлено графік відключень на %s, черга %s:"
	noWindowText    = "дані по черзі відсутні"
)

// renderWindow builds the notification payload for one recipient. The window
// string is passed through verbatim; an empty window renders as an explicit
// "no data" line so recipients can tell silence from absence.
func renderWindow(date time.Time, g model.Group, window string, updated bool) string {
	header := headerPublished
	if updated {
		header = headerUpdated
	}
	if window == "" {
		window = noWindowText
	}
	return fmt.Sprintf(header, date.Format("02.01"), g) + "\n" + window
}
