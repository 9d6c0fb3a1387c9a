// Package watch turns a store's list query into a realtime snapshot feed by
// polling and emitting only when the collection changed.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/qcteam/teamcal/internal/domain"
)

// ListFunc returns the complete, ordered collection.
type ListFunc func(ctx context.Context) ([]*domain.Task, error)

// Poller implements the Subscribe half of domain.RemoteStore.
type Poller struct {
	list     ListFunc
	before   func(ctx context.Context) error
	trigger  chan struct{}
	interval time.Duration
}

// New creates a Poller that calls list every interval.
func New(list ListFunc, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = domain.DefaultPollInterval
	}
	return &Poller{
		list:     list,
		interval: interval,
		trigger:  make(chan struct{}, 1),
	}
}

// WithBefore sets a hook run before every poll (e.g. fetching from a remote).
// A hook error is treated like a list error.
func (p *Poller) WithBefore(fn func(ctx context.Context) error) *Poller {
	p.before = fn
	return p
}

// Trigger asks active subscriptions to poll now instead of waiting for the next tick.
func (p *Poller) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// Subscribe starts polling. The first snapshot is always delivered; later ones
// only when the collection changed. The first error ends the feed.
func (p *Poller) Subscribe(ctx context.Context, h domain.SnapshotHandler) (domain.Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	sub := &subscription{cancel: cancel, done: make(chan struct{})}
	go sub.run(ctx, p, h)
	return sub, nil
}

type subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func (s *subscription) Close() {
	s.once.Do(s.cancel)
	<-s.done
}

func (s *subscription) run(ctx context.Context, p *Poller, h domain.SnapshotHandler) {
	defer close(s.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var last uint64
	first := true
	for {
		tasks, err := p.poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			h.OnError(err)
			return
		}
		fp, err := Fingerprint(tasks)
		if err != nil {
			h.OnError(err)
			return
		}
		if first || fp != last {
			first = false
			last = fp
			h.OnSnapshot(tasks)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-p.trigger:
		}
	}
}

func (p *Poller) poll(ctx context.Context) ([]*domain.Task, error) {
	if p.before != nil {
		if err := p.before(ctx); err != nil {
			return nil, err
		}
	}
	return p.list(ctx)
}

// Fingerprint hashes a collection so unchanged polls can be skipped.
func Fingerprint(tasks []*domain.Task) (uint64, error) {
	data, err := json.Marshal(tasks)
	if err != nil {
		return 0, fmt.Errorf("fingerprint snapshot: %w", err)
	}
	h := fnv.New64a()
	_, _ = h.Write(data)
	return h.Sum64(), nil
}
