package parse

import (
	"strings"

	"github.com/akostiuk/zoewatch/core/model"
)

// Extract pulls the per-queue windows out of an announcement body. For each
// catalog queue it takes the first line containing the queue identifier, cuts
// the line at the markup delimiter and strips the queue label. Queues are
// independent: a queue with no matching line keeps the empty window and never
// blocks the others.
//
// Known limitation, kept on purpose: matching is plain substring search, so a
// queue written with an alternate label, or an identifier that only occurs
// inside markup, is missed and yields an empty window. The source format is
// too loose for anything stricter to survive its drift.
func (p *Parser) Extract(block string) model.Schedule {
	lines := strings.Split(block, "\n")
	sched := model.NewSchedule()
	for _, g := range model.Groups {
		sched[g] = p.extractWindow(lines, g)
	}
	return sched
}

func (p *Parser) extractWindow(lines []string, g model.Group) string {
	for _, line := range lines {
		if !strings.Contains(line, string(g)) {
			continue
		}
		// value runs from the label to the next markup delimiter
		cut, _, found := strings.Cut(line, p.m.ValueDelim)
		if !found {
			return ""
		}
		idx := strings.Index(cut, string(g))
		if idx < 0 {
			return ""
		}
		rest := cut[idx+len(string(g)):]
		rest = strings.TrimPrefix(rest, strings.TrimRight(p.m.LabelSep, " "))
		return strings.TrimSpace(rest)
	}
	return ""
}
