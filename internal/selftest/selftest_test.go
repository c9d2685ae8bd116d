package selftest

import (
	"testing"
	"time"
)

func TestRunPasses(t *testing.T) {
	report := Run(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	if report.Total == 0 {
		t.Fatalf("expected checks to run")
	}
	for _, res := range report.Results {
		if !res.OK {
			t.Fatalf("check %q failed: %s", res.Name, res.Detail)
		}
	}
	if !report.OK() {
		t.Fatalf("expected report ok: %d/%d", report.Passed, report.Total)
	}
}

func TestRunIncludesEveryCategory(t *testing.T) {
	report := Run(time.Now())
	names := map[string]bool{}
	for _, res := range report.Results {
		names[res.Name] = true
	}
	for _, want := range []string{
		"seed executed",
		"meeting link (empty id)",
		"category has experts: religion",
		".ics generated",
	} {
		if !names[want] {
			t.Fatalf("missing check %q", want)
		}
	}
}
