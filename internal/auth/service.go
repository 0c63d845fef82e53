package auth

import (
	"context"
	"errors"
	"strings"
)

// ErrUnauthorized is the only verification failure surfaced to callers.
// Bad signature, expiry, revocation and missing credentials all collapse
// into it so responses do not leak which factor failed.
var ErrUnauthorized = errors.New("unauthorized")

// SessionBackend is the server-side session state the service needs.
// *SessionStore is the redis implementation.
type SessionBackend interface {
	Create(ctx context.Context, p *Principal) (string, error)
	Get(ctx context.Context, token string) (*Principal, error)
	Delete(ctx context.Context, token string) error
	IsRevoked(ctx context.Context, subject string) (bool, error)
}

// Service exchanges identity-provider ID tokens for session credentials and
// verifies inbound credentials on every request.
type Service struct {
	sessions SessionBackend
	secret   string
	issuer   string
}

func NewService(sessions SessionBackend, identitySecret, identityIssuer string) *Service {
	return &Service{
		sessions: sessions,
		secret:   identitySecret,
		issuer:   identityIssuer,
	}
}

// Login verifies a provider ID token and mints a session credential for it.
func (s *Service) Login(ctx context.Context, idToken string) (string, *Principal, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return "", nil, ErrUnauthorized
	}

	p, err := VerifyIDToken(s.secret, s.issuer, idToken)
	if err != nil {
		return "", nil, ErrUnauthorized
	}
	if revoked, err := s.sessions.IsRevoked(ctx, p.Subject); err != nil || revoked {
		return "", nil, ErrUnauthorized
	}

	token, err := s.sessions.Create(ctx, p)
	if err != nil {
		return "", nil, err
	}
	return token, p, nil
}

// Logout invalidates one session credential.
func (s *Service) Logout(ctx context.Context, sessionToken string) error {
	if strings.TrimSpace(sessionToken) == "" {
		return nil
	}
	return s.sessions.Delete(ctx, sessionToken)
}

// Verify authenticates a request. A session cookie takes precedence; a
// bearer ID token is the fallback for clients without cookies. Both paths
// include the revocation check.
func (s *Service) Verify(ctx context.Context, sessionCookie, bearerToken string) (*Principal, error) {
	sessionCookie = strings.TrimSpace(sessionCookie)
	bearerToken = strings.TrimSpace(bearerToken)

	switch {
	case sessionCookie != "":
		p, err := s.sessions.Get(ctx, sessionCookie)
		if err != nil || p == nil {
			return nil, ErrUnauthorized
		}
		if revoked, err := s.sessions.IsRevoked(ctx, p.Subject); err != nil || revoked {
			return nil, ErrUnauthorized
		}
		return p, nil
	case bearerToken != "":
		p, err := VerifyIDToken(s.secret, s.issuer, bearerToken)
		if err != nil {
			return nil, ErrUnauthorized
		}
		if revoked, err := s.sessions.IsRevoked(ctx, p.Subject); err != nil || revoked {
			return nil, ErrUnauthorized
		}
		return p, nil
	default:
		return nil, ErrUnauthorized
	}
}
