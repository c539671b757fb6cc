package sessionstore

import (
	"context"
	"testing"
	"time"

	"lusolingo/internal/models"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)
	defer store.Close()

	run := &models.LessonSession{
		Lesson:       &models.Lesson{ID: "bb-001"},
		CurrentIndex: 3,
		Correct:      2,
		Mistakes:     1,
	}
	if err := store.Save(ctx, "user:1", run); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Get(ctx, "user:1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Lesson.ID != "bb-001" || got.CurrentIndex != 3 {
		t.Errorf("got %+v, want the saved run", got)
	}

	if miss, err := store.Get(ctx, "user:2"); err != nil || miss != nil {
		t.Errorf("miss should read nil, nil; got %+v, %v", miss, err)
	}

	if err := store.Delete(ctx, "user:1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := store.Get(ctx, "user:1"); got != nil {
		t.Error("deleted run still readable")
	}
	if err := store.Delete(ctx, "user:1"); err != nil {
		t.Errorf("double delete should be fine: %v", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Millisecond)
	defer store.Close()

	if err := store.Save(ctx, "user:1", &models.LessonSession{}); err != nil {
		t.Fatalf("save: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if got, _ := store.Get(ctx, "user:1"); got != nil {
		t.Error("expired run still readable")
	}
	if purged := store.PurgeExpired(); purged != 1 {
		t.Errorf("purged %d entries, want 1", purged)
	}
	if purged := store.PurgeExpired(); purged != 0 {
		t.Errorf("second purge removed %d entries, want 0", purged)
	}
}

func TestNewPicksMemoryWithoutRedisURL(t *testing.T) {
	store, err := New("", time.Hour)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer store.Close()
	if _, ok := store.(*MemoryStore); !ok {
		t.Errorf("store type = %T, want *MemoryStore", store)
	}
}

func TestNewRejectsBadRedisURL(t *testing.T) {
	if _, err := New("not-a-url", time.Hour); err == nil {
		t.Error("expected an error for a malformed redis url")
	}
}
