package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	r := require.New(t)
	m := NewManager("test-secret", time.Hour, "chat-app")

	tok, err := m.Issue("user-1")
	r.NoError(err)
	r.NotEmpty(tok)

	userID, err := m.Verify(tok)
	r.NoError(err)
	r.Equal("user-1", userID)
}

func TestVerifyExpiredToken(t *testing.T) {
	r := require.New(t)
	m := NewManager("test-secret", -time.Minute, "chat-app")

	tok, err := m.Issue("user-1")
	r.NoError(err)

	_, err = m.Verify(tok)
	r.ErrorIs(err, ErrExpiredToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	r := require.New(t)
	issuer := NewManager("secret-a", time.Hour, "chat-app")
	verifier := NewManager("secret-b", time.Hour, "chat-app")

	tok, err := issuer.Issue("user-1")
	r.NoError(err)

	_, err = verifier.Verify(tok)
	r.ErrorIs(err, ErrInvalidToken)
}

func TestVerifyGarbage(t *testing.T) {
	r := require.New(t)
	m := NewManager("test-secret", time.Hour, "chat-app")

	_, err := m.Verify("not.a.token")
	r.ErrorIs(err, ErrInvalidToken)
}
