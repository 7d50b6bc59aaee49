package events

import (
	"context"
	"time"
)

// Type names an entry lifecycle change.
type Type string

const (
	EntryCreated Type = "entry.created"
	EntryUpdated Type = "entry.updated"
	EntryIgnored Type = "entry.ignored"
	EntryDeleted Type = "entry.deleted"
)

// Event is published after a fuel entry changes.
type Event struct {
	Type    Type      `json:"type"`
	UserID  string    `json:"userId"`
	EntryID string    `json:"entryId"`
	At      time.Time `json:"at"`
}

// NewEvent stamps an event with the current time.
func NewEvent(t Type, userID, entryID string) Event {
	return Event{Type: t, UserID: userID, EntryID: entryID, At: time.Now().UTC()}
}

// Publisher delivers entry events to subscribers.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close()
}

// NoopPublisher discards every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
func (NoopPublisher) Close()                               {}
