package project

import (
	"context"
	"testing"
	"time"

	"github.com/pagecraft/backend/internal/models"
)

func TestTickWritesDirtySnapshot(t *testing.T) {
	m, _, _ := testManager()
	a := NewAutosaver(m, time.Minute)

	a.tick(func() (string, *models.Snapshot, bool) {
		return "p1", testSnapshot("a"), true
	})

	if m.LoadAutosave("p1") == nil {
		t.Error("dirty snapshot was not autosaved")
	}
}

func TestTickSkipsCleanOrAnonymous(t *testing.T) {
	m, _, backend := testManager()
	a := NewAutosaver(m, time.Minute)

	a.tick(func() (string, *models.Snapshot, bool) {
		return "p1", testSnapshot("a"), false
	})
	a.tick(func() (string, *models.Snapshot, bool) {
		return "", testSnapshot("a"), true
	})
	a.tick(func() (string, *models.Snapshot, bool) {
		return "p1", nil, true
	})

	if backend.Len() != 0 {
		t.Errorf("%d autosaves written, want none", backend.Len())
	}
}

func TestAutosaveLoop(t *testing.T) {
	m, _, _ := testManager()
	a := NewAutosaver(m, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a.Start(ctx, func() (string, *models.Snapshot, bool) {
		return "p1", testSnapshot("a"), true
	})
	defer a.Stop()

	deadline := time.After(2 * time.Second)
	for m.LoadAutosave("p1") == nil {
		select {
		case <-deadline:
			t.Fatal("autosave loop never fired")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestStopIsIdempotent(t *testing.T) {
	m, _, _ := testManager()
	a := NewAutosaver(m, time.Minute)

	a.Stop() // nothing running

	a.Start(context.Background(), func() (string, *models.Snapshot, bool) {
		return "", nil, false
	})
	a.Stop()
	a.Stop()
}

func TestStartReplacesPreviousLoop(t *testing.T) {
	m, _, _ := testManager()
	a := NewAutosaver(m, 10*time.Millisecond)
	defer a.Stop()

	ctx := context.Background()
	a.Start(ctx, func() (string, *models.Snapshot, bool) {
		return "old", testSnapshot("a"), true
	})
	a.Start(ctx, func() (string, *models.Snapshot, bool) {
		return "new", testSnapshot("a"), true
	})

	deadline := time.After(2 * time.Second)
	for m.LoadAutosave("new") == nil {
		select {
		case <-deadline:
			t.Fatal("replacement loop never fired")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestIntervalDefault(t *testing.T) {
	m, _, _ := testManager()
	a := NewAutosaver(m, 0)
	if a.interval != DefaultAutosaveInterval {
		t.Errorf("interval = %v", a.interval)
	}
}
