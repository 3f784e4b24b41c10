package auth_test

import (
	"errors"
	"fmt"
	"testing"

	auth "github.com/goliatone/go-credauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRejectionCode(t *testing.T) {
	cases := []struct {
		err  error
		code string
	}{
		{auth.ErrCredentialsInvalid, "CREDENTIALS_INVALID"},
		{auth.ErrConfirmEmail, "CONFIRM_EMAIL"},
		{auth.ErrTwoFactorRequired, "2FA_REQUIRED"},
		{auth.ErrTwoFactorInvalidCode, "2FA_INVALID_CODE"},
		{auth.ErrTwoFactorExpiredCode, "2FA_EXPIRED_CODE"},
		{auth.ErrEmailAlreadyExists, "EMAIL_ALREADY_EXISTS"},
		{auth.ErrInvalidToken, "INVALID_TOKEN"},
		{auth.ErrExpiredToken, "EXPIRED_TOKEN"},
		{auth.ErrInvalidUser, "INVALID_USER"},
		{auth.ErrUserNotFound, "USER_NOT_FOUND"},
	}

	for _, tc := range cases {
		code, ok := auth.RejectionCode(tc.err)
		require.True(t, ok, tc.code)
		assert.Equal(t, tc.code, code)
	}
}

func TestRejectionCodeSurvivesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("signin failed: %w", auth.ErrConfirmEmail)

	code, ok := auth.RejectionCode(wrapped)
	require.True(t, ok)
	assert.Equal(t, "CONFIRM_EMAIL", code)
}

func TestRejectionCodeOnPlainError(t *testing.T) {
	_, ok := auth.RejectionCode(errors.New("disk full"))
	assert.False(t, ok)
}
