package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/hupe1980/crewmesh/core"
)

func TestInMemoryContentStore_CreateGet(t *testing.T) {
	s := NewInMemoryContentStore()
	ctx := context.Background()

	c := core.NewContent("title", "acct-1")
	if err := s.Create(ctx, c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Create(ctx, c); err == nil {
		t.Fatal("expected duplicate create to fail")
	}

	got, err := s.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "title" || got.Status != core.ContentStatusDraft {
		t.Fatalf("unexpected content: %+v", got)
	}

	// Mutating the returned copy must not affect the stored entity.
	got.Title = "mutated"
	again, _ := s.Get(ctx, c.ID)
	if again.Title != "title" {
		t.Fatal("store returned a shared reference")
	}

	if _, err := s.Get(ctx, "missing"); err != core.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInMemoryContentStore_Update(t *testing.T) {
	s := NewInMemoryContentStore()
	ctx := context.Background()

	c := core.NewContent("t", "a")
	if err := s.Create(ctx, c); err != nil {
		t.Fatalf("create: %v", err)
	}

	body := "new body"
	updated, err := s.Update(ctx, c.ID, core.ContentUpdate{Body: &body})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Body != "new body" {
		t.Fatalf("body not applied: %q", updated.Body)
	}

	if _, err := s.Update(ctx, "missing", core.ContentUpdate{Body: &body}); err != core.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInMemoryContentStore_Transition(t *testing.T) {
	s := NewInMemoryContentStore()
	ctx := context.Background()

	c := core.NewContent("t", "a")
	if err := s.Create(ctx, c); err != nil {
		t.Fatalf("create: %v", err)
	}

	at := time.Now().Add(time.Hour)
	scheduled, err := s.Transition(ctx, c.ID, core.ContentTransition{Status: core.ContentStatusScheduled, ScheduledAt: &at})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if scheduled.Status != core.ContentStatusScheduled || scheduled.ScheduledAt == nil {
		t.Fatalf("unexpected state: %+v", scheduled)
	}

	published, err := s.Transition(ctx, c.ID, core.ContentTransition{Status: core.ContentStatusPublished})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if published.ScheduledAt != nil || published.PublishedAt == nil {
		t.Fatalf("unexpected state: %+v", published)
	}

	// Terminal: publishing again is rejected and state is unchanged.
	if _, err := s.Transition(ctx, c.ID, core.ContentTransition{Status: core.ContentStatusPublished}); err == nil {
		t.Fatal("expected invalid transition error")
	}
	got, _ := s.Get(ctx, c.ID)
	if got.Status != core.ContentStatusPublished {
		t.Fatalf("state mutated by rejected transition: %s", got.Status)
	}
}

func TestInMemoryContentStore_TransitionRequiresScheduledAt(t *testing.T) {
	s := NewInMemoryContentStore()
	ctx := context.Background()

	c := core.NewContent("t", "a")
	if err := s.Create(ctx, c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Transition(ctx, c.ID, core.ContentTransition{Status: core.ContentStatusScheduled}); err == nil {
		t.Fatal("expected error for scheduled transition without time")
	}
}

func TestInMemoryContentStore_ListByAccount(t *testing.T) {
	s := NewInMemoryContentStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		c := core.NewContent(fmt.Sprintf("t%d", i), "acct-1")
		c.CreatedAt = time.Now().Add(time.Duration(i) * time.Minute)
		if err := s.Create(ctx, c); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	other := core.NewContent("other", "acct-2")
	if err := s.Create(ctx, other); err != nil {
		t.Fatalf("create: %v", err)
	}

	out, err := s.ListByAccount(ctx, "acct-1", 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 results, got %d", len(out))
	}
	for i := 1; i < len(out); i++ {
		if out[i].CreatedAt.After(out[i-1].CreatedAt) {
			t.Fatal("results not ordered newest first")
		}
	}
}

func TestInMemoryContentStore_ConcurrentTransitions(t *testing.T) {
	s := NewInMemoryContentStore()
	ctx := context.Background()

	c := core.NewContent("t", "a")
	if err := s.Create(ctx, c); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Many concurrent publishes: exactly one may win.
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Transition(ctx, c.ID, core.ContentTransition{Status: core.ContentStatusPublished}); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("expected exactly one successful publish, got %d", wins)
	}
}

func TestInMemoryDocumentStore_Lifecycle(t *testing.T) {
	s := NewInMemoryDocumentStore()
	ctx := context.Background()

	d := core.NewProductDocument("mug", "u1")
	if err := s.Create(ctx, d); err != nil {
		t.Fatalf("create: %v", err)
	}

	completed, err := s.Transition(ctx, d.ID, core.ProductDocumentTransition{
		Status:          core.ProductDocumentStatusCompleted,
		DocumentContent: "# Doc",
		Metadata:        core.CompletionMetadata{Summary: "Doc"},
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != core.ProductDocumentStatusCompleted || completed.CompletedAt == nil {
		t.Fatalf("unexpected state: %+v", completed)
	}

	if _, err := s.Transition(ctx, d.ID, core.ProductDocumentTransition{Status: core.ProductDocumentStatusFailed, Reason: "late"}); err == nil {
		t.Fatal("expected terminal state to reject transition")
	}
}

func TestInMemoryDocumentStore_FailPath(t *testing.T) {
	s := NewInMemoryDocumentStore()
	ctx := context.Background()

	d := core.NewProductDocument("mug", "u1")
	if err := s.Create(ctx, d); err != nil {
		t.Fatalf("create: %v", err)
	}

	failed, err := s.Transition(ctx, d.ID, core.ProductDocumentTransition{Status: core.ProductDocumentStatusFailed, Reason: "step failed"})
	if err != nil {
		t.Fatalf("fail: %v", err)
	}
	if failed.FailureReason != "step failed" || failed.CompletedAt != nil {
		t.Fatalf("unexpected state: %+v", failed)
	}
}

func TestInMemoryDocumentStore_ListByUser(t *testing.T) {
	s := NewInMemoryDocumentStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d := core.NewProductDocument(fmt.Sprintf("p%d", i), "u1")
		d.CreatedAt = time.Now().Add(time.Duration(i) * time.Minute)
		if err := s.Create(ctx, d); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	out, err := s.ListByUser(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 results, got %d", len(out))
	}
	if out[0].ProductName != "p2" {
		t.Fatalf("results not ordered newest first: %s", out[0].ProductName)
	}
}
