package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/crewmesh/core"
)

// Compile-time checks.
var (
	_ core.ContentStore         = (*InMemoryContentStore)(nil)
	_ core.ProductDocumentStore = (*InMemoryDocumentStore)(nil)
)

// InMemoryContentStore is an in-process core.ContentStore. Entities are
// cloned on write and read to avoid accidental external mutation of internal
// state; a single mutex serializes all writes, which gives the required
// per-id total ordering.
//
// This implementation is intentionally minimal; it does not enforce retention
// limits or survive process restarts. For durability use store/sqlite.
type InMemoryContentStore struct {
	mu       sync.RWMutex
	contents map[string]*core.Content
}

// NewInMemoryContentStore returns an empty in-memory content store.
func NewInMemoryContentStore() *InMemoryContentStore {
	return &InMemoryContentStore{contents: make(map[string]*core.Content)}
}

// Create stores a new content artifact. The id must not already exist.
func (s *InMemoryContentStore) Create(_ context.Context, c *core.Content) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.contents[c.ID]; exists {
		return fmt.Errorf("content %s already exists", c.ID)
	}
	s.contents[c.ID] = c.Clone()
	return nil
}

// Get returns a copy of the stored content or core.ErrNotFound.
func (s *InMemoryContentStore) Get(_ context.Context, id string) (*core.Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contents[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return c.Clone(), nil
}

// Update applies a partial mutation atomically and returns the new state.
func (s *InMemoryContentStore) Update(_ context.Context, id string, u core.ContentUpdate) (*core.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contents[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	if err := c.ApplyUpdate(u); err != nil {
		return nil, err
	}
	return c.Clone(), nil
}

// Transition drives the content state machine atomically per id.
func (s *InMemoryContentStore) Transition(_ context.Context, id string, t core.ContentTransition) (*core.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contents[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	if err := ApplyContentTransition(c, t); err != nil {
		return nil, err
	}
	return c.Clone(), nil
}

// ListByAccount returns content for an account, newest first.
func (s *InMemoryContentStore) ListByAccount(_ context.Context, accountID string, limit int) ([]*core.Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*core.Content
	for _, c := range s.contents {
		if c.AccountID == accountID {
			out = append(out, c.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// InMemoryDocumentStore is an in-process core.ProductDocumentStore with the
// same cloning and serialization behavior as InMemoryContentStore.
type InMemoryDocumentStore struct {
	mu        sync.RWMutex
	documents map[string]*core.ProductDocument
}

// NewInMemoryDocumentStore returns an empty in-memory document store.
func NewInMemoryDocumentStore() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{documents: make(map[string]*core.ProductDocument)}
}

// Create stores a new product document. The id must not already exist.
func (s *InMemoryDocumentStore) Create(_ context.Context, d *core.ProductDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.documents[d.ID]; exists {
		return fmt.Errorf("product document %s already exists", d.ID)
	}
	s.documents[d.ID] = d.Clone()
	return nil
}

// Get returns a copy of the stored document or core.ErrNotFound.
func (s *InMemoryDocumentStore) Get(_ context.Context, id string) (*core.ProductDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.documents[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return d.Clone(), nil
}

// Update applies a partial mutation atomically and returns the new state.
func (s *InMemoryDocumentStore) Update(_ context.Context, id string, u core.ProductDocumentUpdate) (*core.ProductDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.documents[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	if err := d.ApplyUpdate(u); err != nil {
		return nil, err
	}
	return d.Clone(), nil
}

// Transition drives the document state machine atomically per id.
func (s *InMemoryDocumentStore) Transition(_ context.Context, id string, t core.ProductDocumentTransition) (*core.ProductDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.documents[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	if err := ApplyDocumentTransition(d, t); err != nil {
		return nil, err
	}
	return d.Clone(), nil
}

// ListByUser returns documents for a user, newest first.
func (s *InMemoryDocumentStore) ListByUser(_ context.Context, userID string, limit int) ([]*core.ProductDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*core.ProductDocument
	for _, d := range s.documents {
		if d.UserID == userID {
			out = append(out, d.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ApplyContentTransition maps a transition request onto the entity state
// machine. Unsupported targets (e.g. back to draft) fail as invalid. Shared
// by the in-memory and sqlite backends.
func ApplyContentTransition(c *core.Content, t core.ContentTransition) error {
	switch t.Status {
	case core.ContentStatusScheduled:
		if t.ScheduledAt == nil {
			return fmt.Errorf("transition to scheduled requires a scheduled time")
		}
		return c.Schedule(*t.ScheduledAt)
	case core.ContentStatusPublished:
		return c.Publish()
	default:
		return core.NewStateError("content", c.ID, string(c.Status), string(t.Status))
	}
}

// ApplyDocumentTransition maps a transition request onto the entity state machine.
func ApplyDocumentTransition(d *core.ProductDocument, t core.ProductDocumentTransition) error {
	switch t.Status {
	case core.ProductDocumentStatusCompleted:
		return d.Complete(t.DocumentContent, t.Metadata)
	case core.ProductDocumentStatusFailed:
		return d.Fail(t.Reason)
	default:
		return core.NewStateError("product_document", d.ID, string(d.Status), string(t.Status))
	}
}
