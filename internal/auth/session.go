// Package auth holds the client side of a VeritasAI session: the bearer
// token obtained from the OAuth flow and whatever identity can be read out
// of it locally. Token verification is the service's job; the client only
// decodes claims to pre-check expiry and label the session.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrNoToken reports that no bearer token was configured. Query submission
// is blocked until one is supplied.
var ErrNoToken = errors.New("no session token configured")

// Session is the in-memory authenticated session. It lives from construction
// to logout and is never written to disk.
type Session struct {
	ID     string
	Token  string
	UserID string
	Email  string
	Expiry time.Time
}

// NewSession builds a session from a bearer token. Claims are decoded
// without signature verification — the service re-verifies every request,
// the local decode only feeds the expiry pre-check and display.
func NewSession(token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	s := &Session{
		ID:    uuid.NewString(),
		Token: token,
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("malformed session token: %w", err)
	}

	if sub, ok := claims["user_id"].(string); ok {
		s.UserID = sub
	} else if sub, err := claims.GetSubject(); err == nil {
		s.UserID = sub
	}
	if email, ok := claims["email"].(string); ok {
		s.Email = email
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		s.Expiry = exp.Time
	}
	return s, nil
}

// Expired reports whether the token's exp claim has passed. Tokens without
// an exp claim are treated as live; the service has the final say either way.
func (s *Session) Expired() bool {
	if s.Expiry.IsZero() {
		return false
	}
	return time.Now().After(s.Expiry)
}
