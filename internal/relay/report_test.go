package relay

import (
	"context"
	"strings"
	"testing"
	"time"

	"relaybot/pkg/logx"
)

func TestFormatReportContents(t *testing.T) {
	t.Parallel()
	started := time.Date(2026, 8, 26, 8, 0, 0, 0, time.UTC)
	st := Stats{
		Started:      started,
		Cycles:       12,
		Fetched:      40,
		Sent:         38,
		SendFailures: 2,
		Deleted:      38,
	}
	out := formatReport(st, started.Add(90*time.Minute))

	for _, want := range []string{"Relay Summary", "12", "40", "38", "1h30m0s"} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
}

func TestReporterRejectsBadSchedule(t *testing.T) {
	t.Parallel()
	r := New(&fakeSource{}, &fakeSink{}, &fakeNotifier{}, logx.Nop(), testOptions())
	rep := NewReporter(r, &fakeNotifier{}, logx.Nop())
	if err := rep.Start("not a cron spec"); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
}

func TestReporterEmitSendsSnapshot(t *testing.T) {
	t.Parallel()
	src := &fakeSource{records: pending(1)}
	r := New(src, &fakeSink{}, &fakeNotifier{}, logx.Nop(), testOptions())
	r.RunCycle(context.Background())

	out := &fakeNotifier{}
	rep := NewReporter(r, out, logx.Nop())
	rep.emit()

	if len(out.sent) != 1 {
		t.Fatalf("report sends = %d, want 1", len(out.sent))
	}
	if !strings.Contains(out.sent[0], "Relay Summary") {
		t.Fatalf("unexpected report body:\n%s", out.sent[0])
	}
}
