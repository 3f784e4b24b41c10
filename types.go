package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Logger is the minimal logging surface the package depends on. Any
// printf-style structured logger can be adapted to it.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

type defLogger struct{}

func (l defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] "+newline(format), args...)
}

func (l defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] "+newline(format), args...)
}

func (l defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] "+newline(format), args...)
}

func (l defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] "+newline(format), args...)
}

func newline(s string) string {
	if s == "" || s[len(s)-1] != '\n' {
		return s + "\n"
	}
	return s
}

// Config carries the session token signing parameters.
type Config interface {
	GetSigningKey() string
	// GetTokenExpiration is the session lifetime in hours.
	GetTokenExpiration() int
	GetIssuer() string
	GetAudience() []string
}

// PasswordAuthenticator hashes passwords and verifies them against a hash.
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// Session is the decoded view of an issued session token.
type Session interface {
	GetUserID() string
	GetUserUUID() (string, error)
	GetName() string
	GetEmail() string
	GetIssuer() string
	GetIssuedAt() *jwt.NumericDate
	GetExpiration() *jwt.NumericDate
}

// Authenticator drives the full signin flow: credential verification
// followed by session token issuance.
type Authenticator interface {
	// Login verifies the credentials and, when the account has two-factor
	// enabled, the emailed code. On success it returns a signed session
	// token.
	Login(ctx context.Context, email, password, code string) (string, error)
	// SessionFromToken parses and validates a previously issued token.
	SessionFromToken(raw string) (Session, error)
}

// ClockFunc returns the current time. Tests inject fixed clocks through it.
type ClockFunc func() time.Time
