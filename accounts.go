package auth

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
)

// FlowStatus is the success outcome of an account flow.
type FlowStatus string

const (
	// StatusCreated is reserved for account creation without a
	// verification step. The current flows never produce it: signup
	// always ends in StatusConfirmEmail.
	StatusCreated         FlowStatus = "CREATED"
	StatusConfirmEmail    FlowStatus = "CONFIRM_EMAIL"
	StatusEmailConfirmed  FlowStatus = "EMAIL_CONFIRMED"
	StatusEmailSent       FlowStatus = "EMAIL_SENT"
	StatusPasswordChanged FlowStatus = "PASSWORD_CHANGED"
)

// SignupPayload carries a registration request.
type SignupPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Picture  string `json:"profile_picture"`
}

// Validate implements validation for the payload.
func (p SignupPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required, validation.Length(8, 0)),
		validation.Field(&p.Picture, is.URL),
	)
}

// Accounts implements the account lifecycle flows: signup, email
// confirmation, and password reset.
type Accounts struct {
	repo     RepositoryManager
	tokens   *TokenManager
	notifier NotificationSink
	hasher   PasswordAuthenticator
	logger   Logger
	now      ClockFunc
}

// NewAccounts builds the account flows over the given stores.
func NewAccounts(repo RepositoryManager, tokens *TokenManager) *Accounts {
	return &Accounts{
		repo:     repo,
		tokens:   tokens,
		notifier: noopNotificationSink{},
		hasher:   bcryptHasher{},
		logger:   defLogger{},
		now:      time.Now,
	}
}

// WithNotifier sets the notification sink and returns the flows.
func (a *Accounts) WithNotifier(sink NotificationSink) *Accounts {
	a.notifier = normalizeNotificationSink(sink)
	return a
}

// WithLogger sets the logger and returns the flows.
func (a *Accounts) WithLogger(logger Logger) *Accounts {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// WithHasher overrides the password hasher and returns the flows.
func (a *Accounts) WithHasher(hasher PasswordAuthenticator) *Accounts {
	if hasher != nil {
		a.hasher = hasher
	}
	return a
}

// WithClock injects the time source and returns the flows.
func (a *Accounts) WithClock(clock ClockFunc) *Accounts {
	if clock != nil {
		a.now = clock
	}
	return a
}

// Signup registers a credentials account and emails a verification token.
// The account starts unverified and cannot sign in until confirmed.
func (a *Accounts) Signup(ctx context.Context, payload SignupPayload) (FlowStatus, error) {
	if err := payload.Validate(); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryValidation, "invalid signup payload").
			WithCode(goerrors.CodeBadRequest)
	}

	// Early duplicate check for a friendly error; the unique constraint on
	// users.email is the real backstop against a concurrent signup.
	if _, err := a.repo.Users().GetByEmail(ctx, payload.Email); err == nil {
		return "", ErrEmailAlreadyExists
	} else if !repository.IsRecordNotFound(err) {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "account lookup failed")
	}

	hash, err := a.hasher.HashPassword(payload.Password)
	if err != nil {
		return "", err
	}

	user := &User{
		Name:           payload.Name,
		Email:          payload.Email,
		PasswordHash:   hash,
		Provider:       ProviderCredentials,
		ProfilePicture: payload.Picture,
	}
	if _, err := a.repo.Users().Create(ctx, user); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "could not create account")
	}

	record, err := a.tokens.Issue(ctx, KindVerification, user.Email)
	if err != nil {
		return "", err
	}
	a.notify(ctx, NotificationVerification, user.Name, user.Email, record.Token)

	a.logger.Info("account created for %s, verification pending", user.Email)

	return StatusConfirmEmail, nil
}

// ConfirmEmail redeems a verification token and marks the account verified.
func (a *Accounts) ConfirmEmail(ctx context.Context, token string) (FlowStatus, error) {
	record, err := a.tokens.Validate(ctx, KindVerification, token)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return "", ErrInvalidToken
		}
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "token lookup failed")
	}

	if a.tokens.Expired(record) {
		return "", ErrExpiredToken
	}

	user, err := a.repo.Users().GetByEmail(ctx, record.Email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return "", ErrInvalidUser
		}
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "account lookup failed")
	}

	// Verify first, consume second: if the process dies in between, the
	// token is still live and the retry is a harmless re-verification.
	at := a.now()
	if _, err := a.repo.Users().MarkEmailVerified(ctx, user.ID, at); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "could not mark email verified")
	}

	if err := a.tokens.Consume(ctx, KindVerification, record.ID); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "could not consume verification token")
	}

	return StatusEmailConfirmed, nil
}

// RequestPasswordReset issues a reset token and emails it. Unknown emails
// are rejected and no token is created.
func (a *Accounts) RequestPasswordReset(ctx context.Context, email string) (FlowStatus, error) {
	user, err := a.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return "", ErrUserNotFound
		}
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "account lookup failed")
	}

	record, err := a.tokens.Issue(ctx, KindPasswordReset, user.Email)
	if err != nil {
		return "", err
	}
	a.notify(ctx, NotificationReset, user.Name, user.Email, record.Token)

	return StatusEmailSent, nil
}

// ChangePassword redeems a reset token and replaces the account password.
func (a *Accounts) ChangePassword(ctx context.Context, token, newPassword string) (FlowStatus, error) {
	record, err := a.tokens.Validate(ctx, KindPasswordReset, token)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return "", ErrInvalidToken
		}
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "token lookup failed")
	}

	if a.tokens.Expired(record) {
		return "", ErrExpiredToken
	}

	user, err := a.repo.Users().GetByEmail(ctx, record.Email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return "", ErrInvalidUser
		}
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "account lookup failed")
	}

	hash, err := a.hasher.HashPassword(newPassword)
	if err != nil {
		return "", err
	}

	if _, err := a.repo.Users().UpdatePassword(ctx, user.ID, hash); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "could not update password")
	}

	if err := a.tokens.Consume(ctx, KindPasswordReset, record.ID); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "could not consume reset token")
	}

	a.logger.Info("password changed for %s", user.Email)

	return StatusPasswordChanged, nil
}

func (a *Accounts) notify(ctx context.Context, kind NotificationKind, name, email, token string) {
	err := a.notifier.Send(ctx, kind, Recipient{Name: name, Email: email}, NotificationParams{Code: token})
	if err != nil {
		a.logger.Warn("could not deliver %s notification to %s: %v", kind, email, err)
	}
}
