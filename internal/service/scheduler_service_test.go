package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
)

func TestBuildDailySpec(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "04:30", want: "0 30 4 * * *"},
		{in: "23:59", want: "0 59 23 * * *"},
		{in: " 0:0 ", want: "0 0 0 * * *"},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "1:2:3", wantErr: true},
	}
	for _, tt := range tests {
		got, err := buildDailySpec(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error, got %q", tt.in, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("%q: got %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestScheduleInterval(t *testing.T) {
	s := NewSchedulerService(time.UTC)
	if _, err := s.ScheduleInterval(0, func() {}); err == nil {
		t.Fatalf("expected error for zero interval")
	}

	id, err := s.ScheduleInterval(300*time.Millisecond, func() {})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	schedule, ok := s.cron.Entry(id).Schedule.(cron.ConstantDelaySchedule)
	if !ok || schedule.Delay != time.Second {
		t.Fatalf("expected a one second delay, got %#v", s.cron.Entry(id).Schedule)
	}

	if _, err := s.ScheduleDaily("03:00", func() {}); err != nil {
		t.Fatalf("schedule daily: %v", err)
	}
	if s.Jobs() != 2 {
		t.Fatalf("expected 2 jobs, got %d", s.Jobs())
	}
}

type countingReloader struct {
	calls    int
	deadline bool
	err      error
}

func (r *countingReloader) Reload(ctx context.Context) error {
	r.calls++
	_, r.deadline = ctx.Deadline()
	return r.err
}

func TestReloadJob(t *testing.T) {
	r := &countingReloader{}
	job := ReloadJob(context.Background(), r, time.Minute)
	job()
	if r.calls != 1 || !r.deadline {
		t.Fatalf("expected one reload with a deadline, got calls=%d deadline=%v", r.calls, r.deadline)
	}

	r.err = errors.New("manifest missing")
	job()
	if r.calls != 2 {
		t.Fatalf("failed reloads must not stop the job")
	}
}
