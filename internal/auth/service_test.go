package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret"
	testIssuer = "https://identity.test"
)

type fakeSessionBackend struct {
	sessions map[string]*Principal
	revoked  map[string]bool
	getErr   error
	next     int
}

func newFakeSessionBackend() *fakeSessionBackend {
	return &fakeSessionBackend{
		sessions: map[string]*Principal{},
		revoked:  map[string]bool{},
	}
}

func (b *fakeSessionBackend) Create(_ context.Context, p *Principal) (string, error) {
	b.next++
	token := "session-" + string(rune('a'+b.next))
	b.sessions[token] = p
	return token, nil
}

func (b *fakeSessionBackend) Get(_ context.Context, token string) (*Principal, error) {
	if b.getErr != nil {
		return nil, b.getErr
	}
	return b.sessions[token], nil
}

func (b *fakeSessionBackend) Delete(_ context.Context, token string) error {
	delete(b.sessions, token)
	return nil
}

func (b *fakeSessionBackend) IsRevoked(_ context.Context, subject string) (bool, error) {
	return b.revoked[subject], nil
}

func mintTestToken(t *testing.T, subject string) string {
	t.Helper()
	token, err := MintIDToken(testSecret, testIssuer, subject, "Test User", "test@example.com", time.Hour)
	require.NoError(t, err)
	return token
}

func TestLoginMintsSession(t *testing.T) {
	backend := newFakeSessionBackend()
	svc := NewService(backend, testSecret, testIssuer)

	token, p, err := svc.Login(context.Background(), mintTestToken(t, "user-1"))
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "user-1", p.Subject)
	assert.Equal(t, "Test User", p.Name)
	assert.Contains(t, backend.sessions, token)
}

func TestLoginRejectsBadToken(t *testing.T) {
	svc := NewService(newFakeSessionBackend(), testSecret, testIssuer)

	for _, bad := range []string{"", "   ", "not-a-jwt"} {
		_, _, err := svc.Login(context.Background(), bad)
		assert.ErrorIs(t, err, ErrUnauthorized)
	}
}

func TestLoginRejectsWrongSecret(t *testing.T) {
	token, err := MintIDToken("other-secret", testIssuer, "user-1", "", "", time.Hour)
	require.NoError(t, err)

	svc := NewService(newFakeSessionBackend(), testSecret, testIssuer)
	_, _, err = svc.Login(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLoginRejectsWrongIssuer(t *testing.T) {
	token, err := MintIDToken(testSecret, "https://evil.test", "user-1", "", "", time.Hour)
	require.NoError(t, err)

	svc := NewService(newFakeSessionBackend(), testSecret, testIssuer)
	_, _, err = svc.Login(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLoginRejectsExpiredToken(t *testing.T) {
	token, err := MintIDToken(testSecret, testIssuer, "user-1", "", "", -time.Minute)
	require.NoError(t, err)

	svc := NewService(newFakeSessionBackend(), testSecret, testIssuer)
	_, _, err = svc.Login(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLoginRejectsRevokedSubject(t *testing.T) {
	backend := newFakeSessionBackend()
	backend.revoked["user-1"] = true
	svc := NewService(backend, testSecret, testIssuer)

	_, _, err := svc.Login(context.Background(), mintTestToken(t, "user-1"))
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerifyCookieTakesPrecedence(t *testing.T) {
	backend := newFakeSessionBackend()
	svc := NewService(backend, testSecret, testIssuer)

	cookie, _, err := svc.Login(context.Background(), mintTestToken(t, "cookie-user"))
	require.NoError(t, err)

	p, err := svc.Verify(context.Background(), cookie, mintTestToken(t, "bearer-user"))
	require.NoError(t, err)
	assert.Equal(t, "cookie-user", p.Subject)
}

func TestVerifyInvalidCookieDoesNotFallBackToBearer(t *testing.T) {
	svc := NewService(newFakeSessionBackend(), testSecret, testIssuer)

	_, err := svc.Verify(context.Background(), "unknown-session", mintTestToken(t, "bearer-user"))
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerifyBearerFallback(t *testing.T) {
	svc := NewService(newFakeSessionBackend(), testSecret, testIssuer)

	p, err := svc.Verify(context.Background(), "", mintTestToken(t, "bearer-user"))
	require.NoError(t, err)
	assert.Equal(t, "bearer-user", p.Subject)
}

func TestVerifyRevokedSubjectRejectedOnBothPaths(t *testing.T) {
	backend := newFakeSessionBackend()
	svc := NewService(backend, testSecret, testIssuer)

	cookie, _, err := svc.Login(context.Background(), mintTestToken(t, "user-1"))
	require.NoError(t, err)

	backend.revoked["user-1"] = true

	_, err = svc.Verify(context.Background(), cookie, "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Verify(context.Background(), "", mintTestToken(t, "user-1"))
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerifyNoCredentials(t *testing.T) {
	svc := NewService(newFakeSessionBackend(), testSecret, testIssuer)

	_, err := svc.Verify(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerifyBackendFailureIsUnauthorized(t *testing.T) {
	backend := newFakeSessionBackend()
	backend.sessions["tok"] = &Principal{Subject: "user-1"}
	backend.getErr = errors.New("redis down")
	svc := NewService(backend, testSecret, testIssuer)

	_, err := svc.Verify(context.Background(), "tok", "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLogoutDeletesSession(t *testing.T) {
	backend := newFakeSessionBackend()
	svc := NewService(backend, testSecret, testIssuer)

	cookie, _, err := svc.Login(context.Background(), mintTestToken(t, "user-1"))
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), cookie))
	_, err = svc.Verify(context.Background(), cookie, "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerifyIDTokenRequiresSubject(t *testing.T) {
	token, err := MintIDToken(testSecret, testIssuer, "", "No Subject", "", time.Hour)
	require.NoError(t, err)

	_, err = VerifyIDToken(testSecret, testIssuer, token)
	assert.Error(t, err)
}

func TestVerifyIDTokenRoundTrip(t *testing.T) {
	token := mintTestToken(t, "user-42")

	p, err := VerifyIDToken(testSecret, testIssuer, token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", p.Subject)
	assert.Equal(t, "test@example.com", p.Email)
	assert.False(t, p.ExpiresAt.IsZero())
}
