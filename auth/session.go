package auth

import (
	"net/http"
	"sync"

	"go.uber.org/zap"
)

// Session owns the credential for one console session. The credential is
// created at login and destroyed at logout or when the audit backend rejects
// it. It is only ever held in memory.
type Session struct {
	mu     sync.RWMutex
	token  string
	logger *zap.Logger
}

// NewSession creates an empty session
func NewSession(logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{logger: logger}
}

// Token returns the held credential, or "" when none is held
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated reports whether a credential is held
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Set replaces the held credential
func (s *Session) Set(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	s.logger.Debug("credential stored")
}

// Clear drops the held credential. Safe to call when none is held.
func (s *Session) Clear() {
	s.mu.Lock()
	held := s.token != ""
	s.token = ""
	s.mu.Unlock()

	if held {
		s.logger.Info("credential cleared")
	}
}

// Attach adds the bearer credential to an outbound request if one is held.
// Requests without a credential are sent as is; the server decides.
func (s *Session) Attach(req *http.Request) *http.Request {
	if token := s.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// OnRejected clears the credential when status denotes unauthorized.
// It returns true when the status was a rejection.
func (s *Session) OnRejected(status int) bool {
	if status != http.StatusUnauthorized {
		return false
	}
	s.logger.Warn("audit backend rejected credential")
	s.Clear()
	return true
}

// Identity decodes the held credential
func (s *Session) Identity() (*Identity, error) {
	token := s.Token()
	if token == "" {
		return nil, ErrNoCredential
	}
	return ParseIdentity(token)
}

// IsPrivileged reports whether the held credential belongs to adminEmail.
// An empty adminEmail disables the privileged identity.
func (s *Session) IsPrivileged(adminEmail string) bool {
	identity, err := s.Identity()
	if err != nil {
		return false
	}
	return identity.Is(adminEmail)
}
