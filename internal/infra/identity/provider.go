// Package identity resolves an anonymous, time-bounded session identity.
package identity

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/qcteam/teamcal/internal/domain"
)

const logCategory = "identity"

// Ensure Provider implements domain.IdentityProvider.
var _ domain.IdentityProvider = (*Provider)(nil)

// Provider wraps a cached token source behind a bounded wait.
type Provider struct {
	src     oauth2.TokenSource
	log     domain.Logger
	timeout time.Duration

	mu      sync.Mutex
	current domain.Identity
}

// Options configures New.
type Options struct {
	Clock      domain.Clock
	Logger     domain.Logger
	HTTPClient *http.Client
}

// New creates a Provider. With an empty endpoint credentials are minted locally.
func New(cfg domain.IdentityConfig, opts Options) *Provider {
	clock := opts.Clock
	if clock == nil {
		clock = domain.RealClock{}
	}
	log := opts.Logger
	if log == nil {
		log = domain.NopLogger{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultIdentityTimeout
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = domain.DefaultIdentityTTL
	}

	var src oauth2.TokenSource
	if cfg.Endpoint == "" {
		src = newLocalSource(clock, ttl)
	} else {
		client := opts.HTTPClient
		if client == nil {
			client = &http.Client{Timeout: timeout}
		}
		src = &endpointSource{client: client, clock: clock, endpoint: cfg.Endpoint}
	}

	return &Provider{
		src:     oauth2.ReuseTokenSource(nil, src),
		log:     log,
		timeout: timeout,
	}
}

type tokenResult struct {
	tok *oauth2.Token
	err error
}

// EnsureIdentity returns the active identity, signing in when needed.
// After the configured timeout it gives up and returns a zero Identity.
func (p *Provider) EnsureIdentity(ctx context.Context) domain.Identity {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	ch := make(chan tokenResult, 1)
	go func() {
		tok, err := p.src.Token()
		ch <- tokenResult{tok: tok, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			p.log.Warn("", logCategory, fmt.Sprintf("anonymous sign-in failed: %v", r.err))
			return domain.Identity{}
		}
		uid, _ := r.tok.Extra(uidKey).(string)
		id := domain.Identity{UID: uid, Token: r.tok.AccessToken, Expiry: r.tok.Expiry}
		p.mu.Lock()
		p.current = id
		p.mu.Unlock()
		return id
	case <-ctx.Done():
		p.log.Warn("", logCategory, fmt.Sprintf("identity not resolved within %s, continuing anonymously", p.timeout))
		return domain.Identity{}
	}
}

// Current returns the last resolved identity without signing in.
func (p *Provider) Current() domain.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}
