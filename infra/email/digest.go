package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	gomail "gopkg.in/mail.v2"

	"github.com/akostiuk/zoewatch/core/diff"
	"github.com/akostiuk/zoewatch/core/model"
	"github.com/akostiuk/zoewatch/infra/logger"
)

const dialTimeout = 10 * time.Second

// Digest mails a plain-text summary of every persisted schedule change to a
// single administrative address. It never contacts subscribers directly.
type Digest struct {
	cfg Config
	log logger.Logger
}

func NewDigest(cfg Config, log logger.Logger) *Digest {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Digest{cfg: cfg, log: log}
}

// Announce sends the digest for one schedule change. Disabled configurations
// are a no-op so the watcher can hold the announcer unconditionally.
func (d *Digest) Announce(_ context.Context, date time.Time, sched model.Schedule, res diff.Result) error {
	if !d.cfg.Enabled {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", d.cfg.FromEmail)
	m.SetHeader("To", d.cfg.ToEmail)
	m.SetHeader("Subject", subject(date, res))
	m.SetBody("text/plain", body(sched, res))

	dialer := gomail.NewDialer(d.cfg.SMTPServer, d.cfg.SMTPPort, d.cfg.SMTPUser, d.cfg.SMTPPass)
	dialer.Timeout = dialTimeout

	if err := dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send digest to %s: %w", d.cfg.ToEmail, err)
	}
	d.log.Infof("digest mailed to %s (%s)", d.cfg.ToEmail, res.Outcome)
	return nil
}

func subject(date time.Time, res diff.Result) string {
	return fmt.Sprintf("[zoewatch] %s schedule %s", date.Format("02.01.2006"), res.Outcome)
}

func body(sched model.Schedule, res diff.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Outcome: %s\n\n", res.Outcome)
	if res.Outcome == diff.PartialUpdate {
		b.WriteString("Changed queues:\n")
		for _, g := range res.Groups() {
			fmt.Fprintf(&b, "  %s: %s\n", g, valueOrDash(res.Changed[g]))
		}
		b.WriteString("\n")
	}
	b.WriteString("Full schedule:\n")
	for _, g := range model.Groups {
		fmt.Fprintf(&b, "  %s: %s\n", g, valueOrDash(sched[g]))
	}
	return b.String()
}

func valueOrDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
