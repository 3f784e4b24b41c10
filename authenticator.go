package auth

import (
	"context"
)

var _ Authenticator = (*Auther)(nil)

// Auther implements Authenticator by pairing a credential validator with a
// session token service.
type Auther struct {
	verifier     CredentialValidator
	tokenService TokenService
	logger       Logger
}

// NewAuthenticator builds the default Authenticator.
func NewAuthenticator(verifier CredentialValidator, cfg Config) *Auther {
	return &Auther{
		verifier:     verifier,
		tokenService: NewTokenService(cfg),
		logger:       defLogger{},
	}
}

// WithLogger sets the logger and returns the authenticator.
func (a *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		a.logger = logger
		if svc, ok := a.tokenService.(*TokenServiceImpl); ok {
			svc.WithLogger(logger)
		}
	}
	return a
}

// WithTokenService overrides the session token service.
func (a *Auther) WithTokenService(svc TokenService) *Auther {
	if svc != nil {
		a.tokenService = svc
	}
	return a
}

// TokenService exposes the session token service, e.g. for middleware.
func (a *Auther) TokenService() TokenService {
	return a.tokenService
}

// Login implements Authenticator.
func (a *Auther) Login(ctx context.Context, email, password, code string) (string, error) {
	user, err := a.verifier.ValidateCredentials(ctx, email, password, code)
	if err != nil {
		return "", err
	}

	token, err := a.tokenService.Sign(user)
	if err != nil {
		return "", err
	}

	a.logger.Info("session issued for %s", user.Email)

	return token, nil
}

// SessionFromToken implements Authenticator.
func (a *Auther) SessionFromToken(raw string) (Session, error) {
	claims, err := a.tokenService.Validate(raw)
	if err != nil {
		return nil, err
	}
	return sessionFromClaims(claims), nil
}
