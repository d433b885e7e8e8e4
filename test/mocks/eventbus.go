package mocks

import (
	"context"
	"sync"

	"github.com/richxcame/car-rental/pkg/eventbus"
)

// RecordingPublisher captures published events in memory
type RecordingPublisher struct {
	mu     sync.Mutex
	events []PublishedEvent
	Err    error
}

// PublishedEvent is one captured Publish call
type PublishedEvent struct {
	Subject string
	Event   *eventbus.Event
}

var _ eventbus.Publisher = (*RecordingPublisher)(nil)

// Publish records the event and returns Err
func (p *RecordingPublisher) Publish(ctx context.Context, subject string, event *eventbus.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, PublishedEvent{Subject: subject, Event: event})
	return p.Err
}

// Events returns a snapshot of everything published so far
func (p *RecordingPublisher) Events() []PublishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]PublishedEvent(nil), p.events...)
}

// Subjects returns the subjects published so far, in order
func (p *RecordingPublisher) Subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	subjects := make([]string, 0, len(p.events))
	for _, e := range p.events {
		subjects = append(subjects, e.Subject)
	}
	return subjects
}

// Count returns how many events were published on subject
func (p *RecordingPublisher) Count(subject string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Subject == subject {
			n++
		}
	}
	return n
}
