package core

import (
	"context"
	"time"
)

// ContentTransition describes a requested content status change plus the
// extra fields the target status requires.
type ContentTransition struct {
	Status ContentStatus
	// ScheduledAt is required when transitioning to scheduled.
	ScheduledAt *time.Time
}

// ContentStore persists Content artifacts. Implementations must be safe for
// concurrent use and must serialize writes per artifact id so that state
// transitions for a single artifact are totally ordered. Each method is
// atomic per id.
type ContentStore interface {
	Create(ctx context.Context, c *Content) error
	Get(ctx context.Context, id string) (*Content, error)
	Update(ctx context.Context, id string, u ContentUpdate) (*Content, error)
	Transition(ctx context.Context, id string, t ContentTransition) (*Content, error)
	ListByAccount(ctx context.Context, accountID string, limit int) ([]*Content, error)
}

// ProductDocumentTransition describes a requested document status change.
type ProductDocumentTransition struct {
	Status ProductDocumentStatus
	// DocumentContent and Metadata apply when transitioning to completed.
	DocumentContent string
	Metadata        CompletionMetadata
	// Reason applies when transitioning to failed.
	Reason string
}

// ProductDocumentStore persists ProductDocument artifacts with the same
// atomicity and per-id ordering guarantees as ContentStore.
type ProductDocumentStore interface {
	Create(ctx context.Context, d *ProductDocument) error
	Get(ctx context.Context, id string) (*ProductDocument, error)
	Update(ctx context.Context, id string, u ProductDocumentUpdate) (*ProductDocument, error)
	Transition(ctx context.Context, id string, t ProductDocumentTransition) (*ProductDocument, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*ProductDocument, error)
}
