package auth

import (
	goerrors "github.com/goliatone/go-errors"
)

// Text codes surfaced with every domain rejection so callers can render
// precise UX without string matching on messages.
const (
	TextCodeCredentialsInvalid = "CREDENTIALS_INVALID"
	TextCodeConfirmEmail       = "CONFIRM_EMAIL"
	TextCodeTwoFactorRequired  = "2FA_REQUIRED"
	TextCodeTwoFactorInvalid   = "2FA_INVALID_CODE"
	TextCodeTwoFactorExpired   = "2FA_EXPIRED_CODE"
	TextCodeEmailAlreadyExists = "EMAIL_ALREADY_EXISTS"
	TextCodeInvalidToken       = "INVALID_TOKEN"
	TextCodeExpiredToken       = "EXPIRED_TOKEN"
	TextCodeInvalidUser        = "INVALID_USER"
	TextCodeUserNotFound       = "USER_NOT_FOUND"
	TextCodeSessionExpired     = "SESSION_EXPIRED"
	TextCodeSessionInvalid     = "SESSION_INVALID"
)

// ErrCredentialsInvalid covers both an unknown email and a wrong password;
// the two are deliberately indistinguishable to callers.
var ErrCredentialsInvalid = goerrors.New("invalid credentials", goerrors.CategoryAuth).
	WithTextCode(TextCodeCredentialsInvalid).
	WithCode(goerrors.CodeUnauthorized)

// ErrConfirmEmail is returned when credentials check out but the email is
// still unverified. A fresh verification email has been dispatched.
var ErrConfirmEmail = goerrors.New("email address pending verification", goerrors.CategoryAuth).
	WithTextCode(TextCodeConfirmEmail).
	WithCode(goerrors.CodeUnauthorized)

// ErrTwoFactorRequired is returned when the account has two-factor enabled
// and no code was supplied. A fresh code has been emailed.
var ErrTwoFactorRequired = goerrors.New("two factor code required", goerrors.CategoryAuth).
	WithTextCode(TextCodeTwoFactorRequired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTwoFactorInvalidCode is returned for a missing or mismatched code.
var ErrTwoFactorInvalidCode = goerrors.New("two factor code does not match", goerrors.CategoryAuth).
	WithTextCode(TextCodeTwoFactorInvalid).
	WithCode(goerrors.CodeUnauthorized)

// ErrTwoFactorExpiredCode is returned for a correct but stale code.
var ErrTwoFactorExpiredCode = goerrors.New("two factor code has expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTwoFactorExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrEmailAlreadyExists is the signup collision error.
var ErrEmailAlreadyExists = goerrors.New("email is already registered", goerrors.CategoryConflict).
	WithTextCode(TextCodeEmailAlreadyExists).
	WithCode(goerrors.CodeConflict)

// ErrInvalidToken is returned when a confirmation or reset token is unknown
// or was already consumed.
var ErrInvalidToken = goerrors.New("unknown or already used token", goerrors.CategoryValidation).
	WithTextCode(TextCodeInvalidToken).
	WithCode(goerrors.CodeBadRequest)

// ErrExpiredToken is returned when a token exists but is past its expiry.
var ErrExpiredToken = goerrors.New("token has expired", goerrors.CategoryValidation).
	WithTextCode(TextCodeExpiredToken).
	WithCode(goerrors.CodeBadRequest)

// ErrInvalidUser is returned when a token does not resolve to a known user.
// Defensive: should not occur while the token invariants hold.
var ErrInvalidUser = goerrors.New("token does not resolve to a known user", goerrors.CategoryValidation).
	WithTextCode(TextCodeInvalidUser).
	WithCode(goerrors.CodeBadRequest)

// ErrUserNotFound is returned when a password reset is requested for an
// unknown email.
var ErrUserNotFound = goerrors.New("no account found for that email", goerrors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrSessionExpired is returned when a session token is past its expiry.
var ErrSessionExpired = goerrors.New("session token has expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeSessionExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrSessionInvalid is returned for malformed or improperly signed session tokens.
var ErrSessionInvalid = goerrors.New("session token is invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeSessionInvalid).
	WithCode(goerrors.CodeUnauthorized)

// ErrNoEmptyString rejects empty passwords before hashing.
var ErrNoEmptyString = goerrors.New("value must not be empty", goerrors.CategoryBadInput).
	WithCode(goerrors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the normalized bcrypt mismatch error.
var ErrMismatchedHashAndPassword = goerrors.New("password does not match", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// RejectionCode extracts the domain text code from an error, if any. Store
// and infrastructure failures carry no text code and report ok=false.
func RejectionCode(err error) (string, bool) {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) && rich.TextCode != "" {
		return rich.TextCode, true
	}
	return "", false
}
