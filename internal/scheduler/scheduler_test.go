package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func noop(ctx context.Context) error { return nil }

func TestNew(t *testing.T) {
	s := New()
	if s.cron == nil {
		t.Error("cron is nil")
	}
	if s.jobs == nil {
		t.Error("jobs map is nil")
	}
}

func TestAddJob(t *testing.T) {
	s := New()

	if err := s.AddJob("refresh", "*/5 * * * *", noop); err != nil {
		t.Errorf("AddJob() with valid cron = %v, want nil", err)
	}
	if err := s.AddJob("autosave", Every(30*time.Second), noop); err != nil {
		t.Errorf("AddJob() with @every = %v, want nil", err)
	}
	if !s.IsScheduled("refresh") || !s.IsScheduled("autosave") {
		t.Error("jobs were not added")
	}
}

func TestAddJobInvalidCron(t *testing.T) {
	s := New()
	if err := s.AddJob("refresh", "invalid cron", noop); err == nil {
		t.Error("AddJob() with invalid cron = nil, want error")
	}
	if s.IsScheduled("refresh") {
		t.Error("invalid job was scheduled")
	}
}

func TestAddJobReplacesExisting(t *testing.T) {
	s := New()

	if err := s.AddJob("refresh", "0 2 * * *", noop); err != nil {
		t.Fatalf("AddJob() = %v", err)
	}
	s.mu.RLock()
	firstID := s.jobs["refresh"].entryID
	s.mu.RUnlock()

	if err := s.AddJob("refresh", "0 3 * * *", noop); err != nil {
		t.Fatalf("AddJob() replacement = %v", err)
	}
	s.mu.RLock()
	secondID := s.jobs["refresh"].entryID
	s.mu.RUnlock()

	if firstID == secondID {
		t.Error("entry ID was not updated after replacement")
	}
	if got := s.Status()[0].Schedule; got != "0 3 * * *" {
		t.Errorf("Schedule = %q, want replacement", got)
	}
}

func TestRemoveJob(t *testing.T) {
	s := New()
	if err := s.AddJob("refresh", "0 2 * * *", noop); err != nil {
		t.Fatalf("AddJob: %v", err)
	}
	s.RemoveJob("refresh")
	if s.IsScheduled("refresh") {
		t.Error("job still exists after RemoveJob()")
	}

	// Unknown names are ignored.
	s.RemoveJob("nonexistent")
}

func TestIsRunning(t *testing.T) {
	s := New()
	if s.IsRunning() {
		t.Error("IsRunning() = true before Start()")
	}

	s.Start()
	if !s.IsRunning() {
		t.Error("IsRunning() = false after Start()")
	}

	ctx := s.Stop()
	if s.IsRunning() {
		t.Error("IsRunning() = true after Stop()")
	}
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Error("Stop() did not complete in time")
	}
}

func TestStopCancelsRunningJob(t *testing.T) {
	started := make(chan struct{})
	s := New()
	err := s.AddJob("refresh", "0 0 1 1 *", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	if err != nil {
		t.Fatalf("AddJob: %v", err)
	}

	if err := s.TriggerJob("refresh"); err != nil {
		t.Fatalf("TriggerJob: %v", err)
	}
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("job did not start")
	}

	ctx := s.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() did not complete after cancelling job")
	}

	if st := s.Status(); len(st) != 1 || st[0].LastError == "" {
		t.Errorf("Status() = %+v, want recorded error", st)
	}
	if err := s.TriggerJob("refresh"); err == nil {
		t.Error("TriggerJob() after Stop = nil, want error")
	}
}

func TestTriggerJob(t *testing.T) {
	var called atomic.Int32
	release := make(chan struct{})
	s := New()
	err := s.AddJob("refresh", "0 0 1 1 *", func(ctx context.Context) error {
		called.Add(1)
		<-release
		return nil
	})
	if err != nil {
		t.Fatalf("AddJob: %v", err)
	}

	if err := s.TriggerJob("refresh"); err != nil {
		t.Fatalf("TriggerJob() = %v", err)
	}
	if err := s.TriggerJob("refresh"); err == nil {
		t.Error("TriggerJob() while running = nil, want error")
	}
	if err := s.TriggerJob("unknown"); err == nil {
		t.Error("TriggerJob() for unknown job = nil, want error")
	}

	close(release)
	ctx := s.Stop()
	<-ctx.Done()

	if called.Load() != 1 {
		t.Errorf("job ran %d times, want 1", called.Load())
	}
}

func TestStatusAfterRun(t *testing.T) {
	s := New()
	if err := s.AddJob("ok", "0 0 1 1 *", noop); err != nil {
		t.Fatalf("AddJob: %v", err)
	}
	if err := s.AddJob("bad", "0 0 1 1 *", func(ctx context.Context) error {
		return errors.New("refresh failed")
	}); err != nil {
		t.Fatalf("AddJob: %v", err)
	}
	s.Start()

	if err := s.TriggerJob("ok"); err != nil {
		t.Fatalf("TriggerJob(ok): %v", err)
	}
	if err := s.TriggerJob("bad"); err != nil {
		t.Fatalf("TriggerJob(bad): %v", err)
	}
	ctx := s.Stop()
	<-ctx.Done()

	statuses := s.Status()
	if len(statuses) != 2 {
		t.Fatalf("len(Status()) = %d, want 2", len(statuses))
	}
	// Sorted by name.
	bad, ok := statuses[0], statuses[1]
	if bad.Name != "bad" || ok.Name != "ok" {
		t.Fatalf("Status() order = %s, %s", bad.Name, ok.Name)
	}
	if bad.LastError != "refresh failed" || !bad.LastRun.IsZero() {
		t.Errorf("bad status = %+v", bad)
	}
	if ok.LastError != "" || ok.LastRun.IsZero() {
		t.Errorf("ok status = %+v", ok)
	}
	if ok.NextRun.IsZero() {
		t.Error("NextRun is zero")
	}
}

func TestValidateCronExpr(t *testing.T) {
	tests := []struct {
		expr    string
		wantErr bool
	}{
		{"0 2 * * *", false},
		{"*/15 * * * *", false},
		{"@hourly", false},
		{"@every 45s", false},
		{"", true},
		{"0 2 * *", true},
		{"not a cron", true},
	}
	for _, tt := range tests {
		err := ValidateCronExpr(tt.expr)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateCronExpr(%q) = %v, wantErr %v", tt.expr, err, tt.wantErr)
		}
	}
}

func TestEvery(t *testing.T) {
	if got := Every(30 * time.Second); got != "@every 30s" {
		t.Errorf("Every(30s) = %q", got)
	}
}
