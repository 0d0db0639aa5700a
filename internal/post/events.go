package post

import (
	"context"
	"strconv"
	"time"
)

type EventType string

const (
	EventCreated EventType = "post.created"
	EventUpdated EventType = "post.updated"
	EventDeleted EventType = "post.deleted"
)

type Event struct {
	Type   EventType `json:"type"`
	PostID int64     `json:"post_id"`
	GUID   string    `json:"guid,omitempty"`
	Title  string    `json:"title,omitempty"`
	Author string    `json:"author,omitempty"`
	At     time.Time `json:"at"`
}

// Key partitions events by post so consumers see them in order.
func (e Event) Key() string { return strconv.FormatInt(e.PostID, 10) }

type EventPublisher interface {
	Publish(ctx context.Context, ev Event) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) error { return nil }

// NopPublisher drops every event.
func NopPublisher() EventPublisher { return nopPublisher{} }
