package scheduler

import (
	"testing"
	"time"

	"github.com/shaiso/Conductor/internal/domain"
)

// --- CalculateNextDue Tests ---

func TestCalculateNextDue_Cron(t *testing.T) {
	sched := &domain.Schedule{
		CronExpr: "0 9 * * *",
		Timezone: "UTC",
	}
	from := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)

	next, err := CalculateNextDue(sched, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("expected %s, got %s", want, next)
	}
}

func TestCalculateNextDue_CronRespectsTimezone(t *testing.T) {
	sched := &domain.Schedule{
		CronExpr: "0 9 * * *",
		Timezone: "Europe/Moscow", // UTC+3
	}
	from := time.Date(2025, 3, 10, 3, 0, 0, 0, time.UTC) // 06:00 в Москве

	next, err := CalculateNextDue(sched, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 09:00 по Москве = 06:00 UTC
	want := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("expected %s, got %s", want, next)
	}
	if next.Location() != time.UTC {
		t.Error("result should be in UTC")
	}
}

func TestCalculateNextDue_Interval(t *testing.T) {
	sched := &domain.Schedule{
		IntervalSec: 300,
		Timezone:    "UTC",
	}
	from := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	next, err := CalculateNextDue(sched, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := next.Sub(from); got != 5*time.Minute {
		t.Errorf("expected 5m offset, got %s", got)
	}
}

func TestCalculateNextDue_CronTakesPrecedence(t *testing.T) {
	sched := &domain.Schedule{
		CronExpr:    "*/15 * * * *",
		IntervalSec: 60,
		Timezone:    "UTC",
	}
	from := time.Date(2025, 3, 10, 12, 1, 0, 0, time.UTC)

	next, err := CalculateNextDue(sched, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2025, 3, 10, 12, 15, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("cron should win over interval: expected %s, got %s", want, next)
	}
}

func TestCalculateNextDue_InvalidTimezoneFallsBackToUTC(t *testing.T) {
	sched := &domain.Schedule{
		IntervalSec: 60,
		Timezone:    "Mars/Olympus",
	}
	from := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	next, err := CalculateNextDue(sched, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !next.Equal(from.Add(time.Minute)) {
		t.Errorf("unexpected next due: %s", next)
	}
}

func TestCalculateNextDue_NeitherCronNorInterval(t *testing.T) {
	sched := &domain.Schedule{Timezone: "UTC"}

	if _, err := CalculateNextDue(sched, time.Now()); err == nil {
		t.Error("schedule without cron or interval should be rejected")
	}
}

func TestCalculateNextDue_InvalidCronExpr(t *testing.T) {
	sched := &domain.Schedule{
		CronExpr: "not a cron",
		Timezone: "UTC",
	}

	if _, err := CalculateNextDue(sched, time.Now()); err == nil {
		t.Error("invalid cron expression should be rejected")
	}
}

// --- ValidateCronExpr Tests ---

func TestValidateCronExpr(t *testing.T) {
	valid := []string{"* * * * *", "0 9 * * *", "*/5 * * * 1-5", "30 2 1 * *"}
	for _, expr := range valid {
		if err := ValidateCronExpr(expr); err != nil {
			t.Errorf("%q should be valid: %v", expr, err)
		}
	}

	invalid := []string{"", "* * * *", "60 * * * *", "* * * * * *", "banana"}
	for _, expr := range invalid {
		if err := ValidateCronExpr(expr); err == nil {
			t.Errorf("%q should be invalid", expr)
		}
	}
}
