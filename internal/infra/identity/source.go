package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/qcteam/teamcal/internal/domain"
)

// uidKey is the token extra that carries the anonymous user id.
const uidKey = "uid"

// signUpRequest is the body posted to an anonymous sign-up endpoint.
// RefreshToken and LocalID are sent after the first sign-up so the
// endpoint can keep the same identity.
type signUpRequest struct {
	RefreshToken      string `json:"refreshToken,omitempty"`
	LocalID           string `json:"localId,omitempty"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signUpResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
}

// endpointSource signs up anonymously against an HTTP endpoint.
type endpointSource struct {
	client   *http.Client
	clock    domain.Clock
	endpoint string

	mu      sync.Mutex
	refresh string
	uid     string
}

func (s *endpointSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	req := signUpRequest{RefreshToken: s.refresh, LocalID: s.uid, ReturnSecureToken: true}
	s.mu.Unlock()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(context.Background(), http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build sign-up request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("anonymous sign-up: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read sign-up response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("anonymous sign-up: status %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}

	var out signUpResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode sign-up response: %w", err)
	}
	if out.IDToken == "" || out.LocalID == "" {
		return nil, fmt.Errorf("anonymous sign-up: response missing idToken or localId")
	}
	secs, err := strconv.Atoi(out.ExpiresIn)
	if err != nil {
		return nil, fmt.Errorf("anonymous sign-up: invalid expiresIn %q", out.ExpiresIn)
	}

	s.mu.Lock()
	s.refresh = out.RefreshToken
	s.uid = out.LocalID
	s.mu.Unlock()

	tok := &oauth2.Token{
		AccessToken:  out.IDToken,
		TokenType:    "Bearer",
		RefreshToken: out.RefreshToken,
		Expiry:       s.clock.Now().Add(time.Duration(secs) * time.Second),
	}
	return tok.WithExtra(map[string]any{uidKey: out.LocalID}), nil
}

// localSource mints anonymous credentials without a server.
// The uid is stable for the life of the source; tokens rotate.
type localSource struct {
	clock domain.Clock
	uid   string
	ttl   time.Duration
}

func newLocalSource(clock domain.Clock, ttl time.Duration) *localSource {
	return &localSource{clock: clock, uid: uuid.NewString(), ttl: ttl}
}

func (s *localSource) Token() (*oauth2.Token, error) {
	tok := &oauth2.Token{
		AccessToken: uuid.NewString(),
		TokenType:   "Bearer",
		Expiry:      s.clock.Now().Add(s.ttl),
	}
	return tok.WithExtra(map[string]any{uidKey: s.uid}), nil
}
