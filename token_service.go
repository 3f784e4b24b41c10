package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// SessionClaims are the JWT claims carried by a session token.
type SessionClaims struct {
	jwt.RegisteredClaims
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// TokenService signs and validates session tokens.
type TokenService interface {
	Sign(user *User) (string, error)
	Validate(raw string) (*SessionClaims, error)
}

var _ TokenService = (*TokenServiceImpl)(nil)

// TokenServiceImpl implements TokenService with HMAC-signed JWTs.
type TokenServiceImpl struct {
	signingKey      []byte
	tokenExpiration int
	issuer          string
	audience        jwt.ClaimStrings
	logger          Logger
}

// NewTokenService builds a service from the config's signing parameters.
func NewTokenService(cfg Config) *TokenServiceImpl {
	return &TokenServiceImpl{
		signingKey:      []byte(cfg.GetSigningKey()),
		tokenExpiration: cfg.GetTokenExpiration(),
		issuer:          cfg.GetIssuer(),
		audience:        cfg.GetAudience(),
		logger:          defLogger{},
	}
}

// WithLogger sets the logger and returns the service for chaining.
func (s *TokenServiceImpl) WithLogger(logger Logger) *TokenServiceImpl {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Sign issues a session token for the user.
func (s *TokenServiceImpl) Sign(user *User) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			Issuer:    s.issuer,
			Audience:  s.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.tokenExpiration) * time.Hour)),
		},
		Name:  user.Name,
		Email: user.Email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "could not sign session token")
	}
	return signed, nil
}

// Validate parses the token, verifies its signature and registered claims,
// and returns the decoded claims.
func (s *TokenServiceImpl) Validate(raw string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	if len(s.audience) > 0 {
		opts = append(opts, jwt.WithAudience(s.audience[0]))
	}

	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.signingKey, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		s.logger.Debug("session token rejected: %v", err)
		return nil, ErrSessionInvalid
	}
	return claims, nil
}
