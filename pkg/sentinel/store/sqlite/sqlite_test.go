package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cognicore/sentinel/pkg/sentinel/discovery"
	"github.com/cognicore/sentinel/pkg/sentinel/store"
)

func openTestStore(t *testing.T) (context.Context, store.Store) {
	t.Helper()
	ctx := context.Background()
	s, err := Open(ctx, filepath.Join(t.TempDir(), "sentinel.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return ctx, s
}

func TestAppendAndEvents(t *testing.T) {
	ctx, s := openTestStore(t)

	first := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	e1 := discovery.Event{
		Topic:     "Pacing Issues",
		Key:       "pacing issues",
		Hits:      5,
		FirstSeen: first,
		Promoted:  first.Add(time.Hour),
		Samples:   []string{"way too slow", "dragged in the middle"},
		RecordIDs: []string{"r1", "r2", "r3", "r4", "r5"},
	}
	e2 := discovery.Event{
		Topic:     "Runtime Length",
		Key:       "runtime length",
		Hits:      3,
		FirstSeen: first.Add(2 * time.Hour),
		Promoted:  first.Add(3 * time.Hour),
	}

	if err := s.Append(ctx, e1); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append(ctx, e2); err != nil {
		t.Fatalf("Append: %v", err)
	}

	events, err := s.Events(ctx)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}

	got := events[0]
	if got.Topic != e1.Topic || got.Key != e1.Key || got.Hits != e1.Hits {
		t.Errorf("event = %+v", got)
	}
	if !got.FirstSeen.Equal(e1.FirstSeen) || !got.Promoted.Equal(e1.Promoted) {
		t.Errorf("timestamps = %v / %v", got.FirstSeen, got.Promoted)
	}
	if len(got.Samples) != 2 || got.Samples[0] != "way too slow" {
		t.Errorf("samples = %v", got.Samples)
	}
	if len(got.RecordIDs) != 5 {
		t.Errorf("record ids = %v", got.RecordIDs)
	}

	// Empty slices round-trip as empty, not broken JSON.
	if events[1].Samples == nil && len(events[1].RecordIDs) != 0 {
		t.Errorf("second event = %+v", events[1])
	}
}

func TestTopicsSeedOrder(t *testing.T) {
	ctx, s := openTestStore(t)

	for _, topic := range []string{"Pacing Issues", "Runtime Length", "Marketing Hype"} {
		e := discovery.Event{Topic: topic, Key: topic, Hits: 1, FirstSeen: time.Now(), Promoted: time.Now()}
		if err := s.Append(ctx, e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	topics, err := s.Topics(ctx)
	if err != nil {
		t.Fatalf("Topics: %v", err)
	}
	want := []string{"Pacing Issues", "Runtime Length", "Marketing Hype"}
	if len(topics) != len(want) {
		t.Fatalf("topics = %v", topics)
	}
	for i := range want {
		if topics[i] != want[i] {
			t.Errorf("topics = %v, want %v", topics, want)
		}
	}
}

func TestEmptyStore(t *testing.T) {
	ctx, s := openTestStore(t)

	events, err := s.Events(ctx)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("events = %v, want none", events)
	}

	topics, err := s.Topics(ctx)
	if err != nil {
		t.Fatalf("Topics: %v", err)
	}
	if len(topics) != 0 {
		t.Errorf("topics = %v, want none", topics)
	}
}

func TestReopenPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sentinel.db")

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	e := discovery.Event{Topic: "Pacing Issues", Key: "pacing issues", Hits: 5, FirstSeen: time.Now(), Promoted: time.Now()}
	if err := s.Append(ctx, e); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	topics, err := reopened.Topics(ctx)
	if err != nil {
		t.Fatalf("Topics: %v", err)
	}
	if len(topics) != 1 || topics[0] != "Pacing Issues" {
		t.Errorf("topics = %v", topics)
	}
}
