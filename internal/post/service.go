package post

import (
	"context"
	"errors"
	"sync"
	"time"

	"blog-service/internal/metrics"

	"github.com/sirupsen/logrus"
)

const eventQueueSize = 1024

type Service interface {
	GetAll(ctx context.Context) ([]Post, error)
	GetByID(ctx context.Context, id int64) (Post, error)
	Create(ctx context.Context, p Post) (Post, error)
	Update(ctx context.Context, p Post) (Post, error)
	DeleteByID(ctx context.Context, id int64) error
	// Close stops taking events and waits for the queued ones until ctx ends.
	Close(ctx context.Context) error
}

type queuedEvent struct {
	ctx context.Context
	ev  Event
}

type service struct {
	repo   Repository
	events EventPublisher
	log    logrus.FieldLogger

	// writeMu orders store writes and their events the same way.
	writeMu sync.Mutex
	closed  bool
	queue   chan queuedEvent
	done    chan struct{}
}

// NewService starts one dispatcher goroutine that hands events to the
// publisher in the order the store applied the writes.
func NewService(r Repository, events EventPublisher, log logrus.FieldLogger) Service {
	if events == nil {
		events = NopPublisher()
	}
	s := &service{
		repo:   r,
		events: events,
		log:    log,
		queue:  make(chan queuedEvent, eventQueueSize),
		done:   make(chan struct{}),
	}
	go s.dispatch()
	return s
}

func (s *service) GetAll(ctx context.Context) ([]Post, error) {
	out, err := s.repo.ListAll(ctx)
	metrics.PostOp("list", outcome(err))
	return out, err
}

func (s *service) GetByID(ctx context.Context, id int64) (Post, error) {
	p, err := s.repo.FindByID(ctx, id)
	metrics.PostOp("get", outcome(err))
	return p, err
}

func (s *service) Create(ctx context.Context, p Post) (Post, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	created, err := s.repo.Create(ctx, p)
	metrics.PostOp("create", outcome(err))
	if err != nil {
		return Post{}, err
	}
	s.enqueue(ctx, Event{Type: EventCreated, PostID: created.ID, GUID: created.GUID, Title: created.Title, Author: created.Author})
	return created, nil
}

// Update replaces title and text of the post identified by p.ID.
func (s *service) Update(ctx context.Context, p Post) (Post, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	updated, err := s.repo.Update(ctx, p.ID, p.Title, p.Text)
	metrics.PostOp("update", outcome(err))
	if err != nil {
		return Post{}, err
	}
	s.enqueue(ctx, Event{Type: EventUpdated, PostID: updated.ID, GUID: updated.GUID, Title: updated.Title, Author: updated.Author})
	return updated, nil
}

func (s *service) DeleteByID(ctx context.Context, id int64) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := s.repo.DeleteByID(ctx, id)
	metrics.PostOp("delete", outcome(err))
	if err != nil {
		return err
	}
	s.enqueue(ctx, Event{Type: EventDeleted, PostID: id})
	return nil
}

// enqueue never blocks; a full queue drops the event. Caller holds writeMu.
func (s *service) enqueue(ctx context.Context, ev Event) {
	ev.At = time.Now().UTC()
	if s.closed {
		s.log.WithFields(logrus.Fields{"event": ev.Type, "post_id": ev.PostID}).Warn("service closed, post event dropped")
		return
	}
	select {
	case s.queue <- queuedEvent{ctx: context.WithoutCancel(ctx), ev: ev}:
	default:
		s.log.WithFields(logrus.Fields{"event": ev.Type, "post_id": ev.PostID}).Warn("event queue full, post event dropped")
	}
}

func (s *service) dispatch() {
	defer close(s.done)
	for q := range s.queue {
		if err := s.events.Publish(q.ctx, q.ev); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{"event": q.ev.Type, "post_id": q.ev.PostID}).Warn("publish post event")
		}
	}
}

func (s *service) Close(ctx context.Context) error {
	s.writeMu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.writeMu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
