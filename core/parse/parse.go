// Package parse extracts a structured outage schedule from the raw text of
// the operator's announcement page. The page is not well-formed HTML, so the
// package deliberately avoids DOM parsing and locates everything through
// anchor-substring search driven by the Markers table.
package parse

import (
	"strings"
	"time"

	"github.com/akostiuk/zoewatch/core/logger"
	"github.com/akostiuk/zoewatch/core/model"
)

// Block is the most recent announcement located inside a fetched page.
type Block struct {
	// Text is the raw announcement body, title line included.
	Text string
	// Title is the trimmed line carrying the region marker.
	Title string
	Class model.Class
}

// Parser locates, classifies and extracts announcements.
type Parser struct {
	m   Markers
	log logger.Logger
}

// New creates a Parser using the given marker table.
func New(m Markers, log logger.Logger) *Parser {
	return &Parser{m: m, log: log}
}

// Locate finds the most recent announcement in raw page text and classifies
// its title. It returns false when the section anchor, the announcement
// anchor or the region-marker line is missing; a malformed or empty document
// is indistinguishable from an absent one and both skip the cycle.
func (p *Parser) Locate(raw string) (Block, bool) {
	_, section, found := strings.Cut(raw, p.m.Section)
	if !found {
		p.log.Debugf("section anchor not found")
		return Block{}, false
	}

	articles := strings.Split(section, p.m.Article)
	if len(articles) < 2 {
		p.log.Debugf("no announcement anchor in section")
		return Block{}, false
	}
	latest := articles[1]

	var title string
	for _, line := range strings.Split(latest, "\n") {
		if strings.Contains(line, p.m.Region) {
			title = strings.TrimSpace(line)
			break
		}
	}
	if title == "" {
		p.log.Debugf("announcement lacks region marker line")
		return Block{}, false
	}

	class := model.ClassUnrecognized
	for _, r := range p.m.Rules {
		if strings.Contains(title, r.Marker) {
			class = r.Class
			break
		}
	}
	return Block{Text: latest, Title: title, Class: class}, true
}

// Parse runs locate, date resolution and extraction over raw page text. The
// second return is false when no announcement could be located. An
// unrecognized title yields an announcement carrying only the class; a title
// with an unparseable date yields a zero Date. Callers decide whether either
// condition ends the cycle.
func (p *Parser) Parse(raw string, now time.Time) (model.Announcement, bool) {
	block, ok := p.Locate(raw)
	if !ok {
		return model.Announcement{}, false
	}
	ann := model.Announcement{Class: block.Class}
	if block.Class == model.ClassUnrecognized {
		return ann, true
	}
	if date, ok := p.ResolveDate(block.Title, block.Class, now); ok {
		ann.Date = date
	}
	ann.Schedule = p.Extract(block.Text)
	return ann, true
}

// ruleFor returns the classification rule matching class.
func (p *Parser) ruleFor(class model.Class) (ClassRule, bool) {
	for _, r := range p.m.Rules {
		if r.Class == class {
			return r, true
		}
	}
	return ClassRule{}, false
}
