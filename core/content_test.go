package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContent_Defaults(t *testing.T) {
	c := NewContent("Cold Brew Guide", "acct-1")

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Cold Brew Guide", c.Title)
	assert.Equal(t, "acct-1", c.AccountID)
	assert.Equal(t, DefaultPlatform, c.Platform)
	assert.Equal(t, ContentStatusDraft, c.Status)
	assert.Nil(t, c.ScheduledAt)
	assert.Nil(t, c.PublishedAt)
	assert.False(t, c.CreatedAt.IsZero())
}

func TestContent_Schedule(t *testing.T) {
	c := NewContent("t", "a")
	at := time.Now().Add(time.Hour)

	require.NoError(t, c.Schedule(at))
	assert.Equal(t, ContentStatusScheduled, c.Status)
	require.NotNil(t, c.ScheduledAt)
	assert.Equal(t, at.UTC(), *c.ScheduledAt)

	// Scheduling twice is an invalid transition.
	err := c.Schedule(at.Add(time.Hour))
	var stateErr *StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, "content", stateErr.Entity)
	assert.Equal(t, string(ContentStatusScheduled), stateErr.From)
}

func TestContent_Publish_FromDraft(t *testing.T) {
	c := NewContent("t", "a")

	require.NoError(t, c.Publish())
	assert.Equal(t, ContentStatusPublished, c.Status)
	require.NotNil(t, c.PublishedAt)
	assert.Nil(t, c.ScheduledAt)
}

func TestContent_Publish_FromScheduled_ClearsScheduledAt(t *testing.T) {
	c := NewContent("t", "a")
	require.NoError(t, c.Schedule(time.Now().Add(time.Hour)))

	require.NoError(t, c.Publish())
	assert.Equal(t, ContentStatusPublished, c.Status)
	assert.Nil(t, c.ScheduledAt, "ScheduledAt must be set only while scheduled")
	assert.NotNil(t, c.PublishedAt)
}

func TestContent_Publish_Terminal(t *testing.T) {
	c := NewContent("t", "a")
	require.NoError(t, c.Publish())

	var stateErr *StateError
	assert.ErrorAs(t, c.Publish(), &stateErr)
	assert.ErrorAs(t, c.Schedule(time.Now()), &stateErr)
}

func TestContent_ApplyUpdate(t *testing.T) {
	c := NewContent("old title", "a")

	title := "new title"
	body := "body text"
	platform := "wechat"
	require.NoError(t, c.ApplyUpdate(ContentUpdate{
		Title:    &title,
		Body:     &body,
		Platform: &platform,
		Tags:     []string{"x", "y"},
		Stats:    map[string]any{"views": 10},
	}))

	assert.Equal(t, "new title", c.Title)
	assert.Equal(t, "body text", c.Body)
	assert.Equal(t, "wechat", c.Platform)
	assert.Equal(t, []string{"x", "y"}, c.Tags)
	assert.Equal(t, 10, c.Stats["views"])
	assert.Equal(t, ContentStatusDraft, c.Status, "updates never change the status")
}

func TestContent_ApplyUpdate_PublishedIsImmutable(t *testing.T) {
	c := NewContent("t", "a")
	require.NoError(t, c.Publish())

	title := "nope"
	var stateErr *StateError
	assert.ErrorAs(t, c.ApplyUpdate(ContentUpdate{Title: &title}), &stateErr)
	assert.Equal(t, "t", c.Title)
}

func TestContent_Clone_Independent(t *testing.T) {
	c := NewContent("t", "a")
	c.Tags = []string{"one"}
	c.Stats = map[string]any{"likes": 1}
	require.NoError(t, c.Schedule(time.Now().Add(time.Hour)))

	cp := c.Clone()
	cp.Tags[0] = "changed"
	cp.Stats["likes"] = 99
	*cp.ScheduledAt = cp.ScheduledAt.Add(time.Hour)

	assert.Equal(t, "one", c.Tags[0])
	assert.Equal(t, 1, c.Stats["likes"])
	assert.NotEqual(t, *c.ScheduledAt, *cp.ScheduledAt)
}
