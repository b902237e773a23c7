package core

import "time"

// ContentStatus enumerates the lifecycle states of a Content artifact.
type ContentStatus string

const (
	// ContentStatusDraft is the initial state of generated content.
	ContentStatusDraft ContentStatus = "draft"
	// ContentStatusScheduled marks content queued for a future publish time.
	ContentStatusScheduled ContentStatus = "scheduled"
	// ContentStatusPublished is the terminal state of content.
	ContentStatusPublished ContentStatus = "published"
)

// DefaultPlatform is used when a content goal does not name a target platform.
const DefaultPlatform = "xiaohongshu"

// Content is a publishable content artifact (e.g. a social-media post).
//
// Status transitions are monotonic: draft -> scheduled -> published, or
// draft -> published directly. There is no way back to draft once scheduled
// or published. ScheduledAt is set iff the status is scheduled; PublishedAt
// is set iff the status is published.
type Content struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Cover       string         `json:"cover,omitempty"`
	Description string         `json:"description,omitempty"`
	Body        string         `json:"body,omitempty"`
	Category    string         `json:"category,omitempty"`
	Platform    string         `json:"platform"`
	AccountID   string         `json:"account_id"`
	Tags        []string       `json:"tags,omitempty"`
	Stats       map[string]any `json:"stats,omitempty"`
	Status      ContentStatus  `json:"status"`
	ScheduledAt *time.Time     `json:"scheduled_at,omitempty"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// NewContent constructs a draft Content with a generated id. The platform
// defaults to DefaultPlatform when empty.
func NewContent(title, accountID string) *Content {
	now := time.Now().UTC()
	return &Content{
		ID:        NewID(),
		Title:     title,
		AccountID: accountID,
		Platform:  DefaultPlatform,
		Status:    ContentStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Schedule transitions draft content to scheduled at the given time.
func (c *Content) Schedule(at time.Time) error {
	if c.Status != ContentStatusDraft {
		return NewStateError("content", c.ID, string(c.Status), string(ContentStatusScheduled))
	}
	t := at.UTC()
	c.Status = ContentStatusScheduled
	c.ScheduledAt = &t
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// Publish transitions draft or scheduled content to published. A previously
// staged ScheduledAt is cleared so it remains set only while scheduled.
func (c *Content) Publish() error {
	if c.Status != ContentStatusDraft && c.Status != ContentStatusScheduled {
		return NewStateError("content", c.ID, string(c.Status), string(ContentStatusPublished))
	}
	now := time.Now().UTC()
	c.Status = ContentStatusPublished
	c.PublishedAt = &now
	c.ScheduledAt = nil
	c.UpdatedAt = now
	return nil
}

// ContentUpdate carries a partial mutation: only non-nil fields are applied.
// Updates never change the status.
type ContentUpdate struct {
	Title       *string
	Cover       *string
	Description *string
	Body        *string
	Category    *string
	Platform    *string
	Tags        []string
	Stats       map[string]any
}

// ApplyUpdate mutates the provided fields. Published content is immutable.
func (c *Content) ApplyUpdate(u ContentUpdate) error {
	if c.Status == ContentStatusPublished {
		return NewStateError("content", c.ID, string(c.Status), string(c.Status))
	}
	if u.Title != nil {
		c.Title = *u.Title
	}
	if u.Cover != nil {
		c.Cover = *u.Cover
	}
	if u.Description != nil {
		c.Description = *u.Description
	}
	if u.Body != nil {
		c.Body = *u.Body
	}
	if u.Category != nil {
		c.Category = *u.Category
	}
	if u.Platform != nil {
		c.Platform = *u.Platform
	}
	if u.Tags != nil {
		c.Tags = append([]string(nil), u.Tags...)
	}
	if u.Stats != nil {
		stats := make(map[string]any, len(u.Stats))
		for k, v := range u.Stats {
			stats[k] = v
		}
		c.Stats = stats
	}
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// Clone returns a deep copy safe for concurrent divergence.
func (c *Content) Clone() *Content {
	cp := *c
	if c.ScheduledAt != nil {
		t := *c.ScheduledAt
		cp.ScheduledAt = &t
	}
	if c.PublishedAt != nil {
		t := *c.PublishedAt
		cp.PublishedAt = &t
	}
	cp.Tags = append([]string(nil), c.Tags...)
	if c.Stats != nil {
		cp.Stats = make(map[string]any, len(c.Stats))
		for k, v := range c.Stats {
			cp.Stats[k] = v
		}
	}
	return &cp
}
