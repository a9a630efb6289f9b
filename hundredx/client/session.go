package client

import (
	"sync"

	"github.com/hundredx/go100x/hundredx/types"
)

// LoginMessageText is the fixed statement signed on login.
const LoginMessageText = "I would like to login to 100x finance."

// SessionState is either anonymous or authenticated.
type SessionState int

const (
	SessionAnonymous SessionState = iota
	SessionAuthenticated
)

func (s SessionState) String() string {
	if s == SessionAuthenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Session holds the token of one login. It has no expiry tracking: a
// rejected token surfaces as a TransportError and the caller logs in again.
type Session struct {
	mu    sync.RWMutex
	state SessionState
	token string
}

// State returns the current session state.
func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Token returns the session token, empty while anonymous.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) authenticate(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.state = SessionAuthenticated
}

func (s *Session) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.state = SessionAnonymous
}

// AuthenticatedHeaders returns the cookie header carrying the session token.
// It fails while the session is anonymous.
func (s *Session) AuthenticatedHeaders() (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != SessionAuthenticated {
		return nil, types.WrapValidation(types.ErrNotLoggedIn, "session", "login required")
	}
	return map[string]string{"cookie": "connectedAddress=" + s.token}, nil
}
