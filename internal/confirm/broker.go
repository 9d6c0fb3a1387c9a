// Package confirm implements the two-phase confirmation protocol: an operation
// registers a pending request with a continuation, and a later Resolve with the
// user's answer either runs the continuation or cancels it.
package confirm

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/qcteam/teamcal/internal/domain"
)

// Kind identifies what is being confirmed.
type Kind string

// Confirmation kinds.
const (
	KindCompleteOpenSubtasks Kind = "complete_open_subtasks"
	KindDelete               Kind = "delete"
)

// Request is an outstanding confirmation. RequireText, when set, must be typed
// exactly; otherwise a yes/no answer is expected.
type Request struct {
	Token        string `json:"token"`
	Kind         Kind   `json:"kind"`
	TaskID       string `json:"taskId"`
	Prompt       string `json:"prompt"`
	RequireText  string `json:"requireText,omitempty"`
	CancelNotice string `json:"-"`
}

// Answer is the user's response.
type Answer struct {
	Text string `json:"text,omitempty"`
	Yes  bool   `json:"yes"`
}

// Outcome reports how a resolved confirmation ended.
type Outcome struct {
	Kind      Kind   `json:"kind"`
	TaskID    string `json:"taskId"`
	Notice    string `json:"notice,omitempty"`
	Confirmed bool   `json:"confirmed"`
}

// Continuation completes the confirmed operation.
type Continuation func(ctx context.Context) error

type entry struct {
	cont Continuation
	req  Request
}

// Broker holds at most one pending confirmation.
type Broker struct {
	pending  *entry
	newToken func() string
	mu       sync.Mutex
}

// NewBroker creates an empty Broker.
func NewBroker() *Broker {
	return &Broker{newToken: uuid.NewString}
}

// Request registers req with its continuation and returns it with a fresh token.
// Only one confirmation may be outstanding.
func (b *Broker) Request(req Request, cont Continuation) (Request, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pending != nil {
		return Request{}, domain.ErrConfirmationPending
	}
	req.Token = b.newToken()
	b.pending = &entry{req: req, cont: cont}
	return req, nil
}

// Pending returns the outstanding request, if any.
func (b *Broker) Pending() (Request, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pending == nil {
		return Request{}, false
	}
	return b.pending.req, true
}

// Resolve consumes the request identified by token. An accepted answer runs
// the continuation and returns its error; anything else cancels with the
// request's notice.
func (b *Broker) Resolve(ctx context.Context, token string, ans Answer) (Outcome, error) {
	e, err := b.take(token)
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{Kind: e.req.Kind, TaskID: e.req.TaskID}
	if !accepted(e.req, ans) {
		out.Notice = e.req.CancelNotice
		return out, nil
	}
	out.Confirmed = true
	return out, e.cont(ctx)
}

// Cancel drops the request identified by token without running it.
func (b *Broker) Cancel(token string) (Outcome, error) {
	e, err := b.take(token)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Kind: e.req.Kind, TaskID: e.req.TaskID, Notice: e.req.CancelNotice}, nil
}

func (b *Broker) take(token string) (*entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pending == nil || b.pending.req.Token != token {
		return nil, domain.ErrConfirmationNotFound
	}
	e := b.pending
	b.pending = nil
	return e, nil
}

func accepted(req Request, ans Answer) bool {
	if req.RequireText != "" {
		return ans.Text == req.RequireText
	}
	return ans.Yes
}
