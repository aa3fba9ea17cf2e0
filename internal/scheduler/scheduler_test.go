package scheduler

import (
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeReports struct {
	mu    sync.Mutex
	dirs  []string
	times []time.Time
	err   error
}

func (f *fakeReports) WriteSnapshot(dir string, now time.Time) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dirs = append(f.dirs, dir)
	f.times = append(f.times, now)
	if f.err != nil {
		return nil, f.err
	}
	return []string{dir + "/a.csv"}, nil
}

func TestNewRejectsBadSchedule(t *testing.T) {
	if _, err := New("every friday", "/tmp", nil, &fakeReports{}, nil); err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
}

func TestRunOnceUsesLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/Bogota")
	if err != nil {
		t.Skip("tz database not available")
	}
	rep := &fakeReports{}
	s, err := New("0 20 * * 5", "out", loc, rep, nil)
	if err != nil {
		t.Fatal(err)
	}
	s.RunOnce()
	if len(rep.dirs) != 1 || rep.dirs[0] != "out" {
		t.Fatalf("unexpected calls %v", rep.dirs)
	}
	if rep.times[0].Location() != loc {
		t.Fatalf("snapshot time not in %s", loc)
	}
}

func TestRunOnceLogsFailure(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s, err := New("@daily", "out", time.UTC, &fakeReports{err: errors.New("disk full")}, zap.New(core))
	if err != nil {
		t.Fatal(err)
	}
	s.RunOnce()
	if logs.FilterMessage("failed to write report snapshot").Len() != 1 {
		t.Fatal("failure not logged")
	}
}

func TestStartStop(t *testing.T) {
	rep := &fakeReports{}
	s, err := New("@every 10ms", "out", time.UTC, rep, nil)
	if err != nil {
		t.Fatal(err)
	}
	s.Start()
	deadline := time.Now().Add(3 * time.Second)
	for {
		rep.mu.Lock()
		n := len(rep.dirs)
		rep.mu.Unlock()
		if n > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("job never ran")
		}
		time.Sleep(5 * time.Millisecond)
	}
	s.Stop()
}
