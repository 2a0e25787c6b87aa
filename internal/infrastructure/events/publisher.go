// Package events decouples audit writing from learning ingestion: terminal
// pipeline states are published to subscribers over buffered channels and
// never block the evaluation path.
package events

import (
	"sync"

	"github.com/doeshing/cmdgate/internal/domain"
	"github.com/doeshing/cmdgate/internal/ports"
)

const subscriberBuffer = 64

// Publisher implements ports.EventPublisher.
type Publisher struct {
	mu     sync.Mutex
	subs   []chan domain.EvaluationEvent
	closed bool
}

// NewPublisher builds an empty publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// Publish fans the event out. A subscriber that has fallen behind misses
// the event; the pipeline never waits.
func (p *Publisher) Publish(event domain.EvaluationEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	for _, sub := range p.subs {
		select {
		case sub <- event:
		default:
		}
	}
}

// Subscribe registers a consumer channel.
func (p *Publisher) Subscribe() <-chan domain.EvaluationEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	sub := make(chan domain.EvaluationEvent, subscriberBuffer)
	if p.closed {
		close(sub)
		return sub
	}
	p.subs = append(p.subs, sub)
	return sub
}

// Close closes all subscriber channels.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	for _, sub := range p.subs {
		close(sub)
	}
	p.subs = nil
}

var _ ports.EventPublisher = (*Publisher)(nil)
