package model

// Group identifies one outage rotation queue, e.g. "3.2".
type Group string

// Groups lists every recognized queue in publication order. The catalog is
// fixed: schedules always carry exactly these keys.
var Groups = []Group{
	"1.1", "1.2",
	"2.1", "2.2",
	"3.1", "3.2",
	"4.1", "4.2",
	"5.1", "5.2",
	"6.1", "6.2",
}

// ValidGroup reports whether s names a recognized queue.
func ValidGroup(s string) bool {
	for _, g := range Groups {
		if string(g) == s {
			return true
		}
	}
	return false
}
