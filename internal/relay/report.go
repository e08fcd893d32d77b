package relay

import (
	"context"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"

	"relaybot/pkg/logx"
	"relaybot/pkg/tghtml"
)

// Stats accumulates lifetime counters across cycles.
type Stats struct {
	Started      time.Time
	Cycles       int64
	Fetched      int64
	Sent         int64
	SendFailures int64
	Deleted      int64
}

func (r *Relay) record(res CycleResult) {
	r.mu.Lock()
	r.stats.Cycles++
	r.stats.Fetched += int64(res.Fetched)
	r.stats.Sent += int64(len(res.Sent))
	r.stats.SendFailures += int64(res.Fetched - len(res.Sent))
	r.stats.Deleted += res.Deleted
	r.mu.Unlock()
}

// Snapshot returns a copy of the lifetime counters.
func (r *Relay) Snapshot() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Reporter sends a periodic operator summary to the destination chat.
// It is optional; an empty cron spec means no reporter is started.
type Reporter struct {
	relay    *Relay
	notifier Notifier
	log      logx.Logger
	cron     *cron.Cron
}

func NewReporter(relay *Relay, notifier Notifier, log logx.Logger) *Reporter {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Reporter{relay: relay, notifier: notifier, log: log}
}

// Start schedules the summary on the given cron spec (standard 5-field form).
func (p *Reporter) Start(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, p.emit); err != nil {
		return err
	}
	c.Start()
	p.cron = c
	p.log.Info("summary report scheduled", logx.String("cron", spec))
	return nil
}

// Stop halts the schedule and waits for an in-flight report to finish.
func (p *Reporter) Stop() {
	if p.cron == nil {
		return
	}
	<-p.cron.Stop().Done()
}

func (p *Reporter) emit() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	text := formatReport(p.relay.Snapshot(), time.Now())
	if err := p.notifier.Send(ctx, text); err != nil {
		p.log.Warn("summary report send failed", logx.Err(err))
	}
}

func formatReport(st Stats, now time.Time) string {
	uptime := now.Sub(st.Started).Truncate(time.Second)
	return string(tghtml.JoinH("\n",
		tghtml.B("\U0001F4CA Relay Summary"),
		tghtml.Line("Cycles:", strconv.FormatInt(st.Cycles, 10)),
		tghtml.Line("Fetched:", strconv.FormatInt(st.Fetched, 10)),
		tghtml.Line("Sent:", strconv.FormatInt(st.Sent, 10)),
		tghtml.Line("Send failures:", strconv.FormatInt(st.SendFailures, 10)),
		tghtml.Line("Deleted:", strconv.FormatInt(st.Deleted, 10)),
		tghtml.Line("Uptime:", uptime.String()),
	))
}
