package auth_test

import (
	"testing"
	"time"

	auth "github.com/goliatone/go-credauth"
	"github.com/stretchr/testify/assert"
)

func TestUserEmailVerified(t *testing.T) {
	user := &auth.User{}
	assert.False(t, user.EmailVerified())

	at := time.Now()
	user.EmailVerifiedAt = &at
	assert.True(t, user.EmailVerified())
}

func TestUserSanitized(t *testing.T) {
	at := time.Now()
	user := &auth.User{
		Name:            "Sam Rivers",
		Email:           "sam@example.com",
		PasswordHash:    "hash:secret-pass",
		EmailVerifiedAt: &at,
	}

	clean := user.Sanitized()
	assert.Empty(t, clean.PasswordHash)
	assert.Equal(t, user.Email, clean.Email)
	assert.True(t, clean.EmailVerified())

	assert.Equal(t, "hash:secret-pass", user.PasswordHash, "the original is untouched")
}
