package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
)

// CredentialValidator checks a set of credentials and returns the matching
// account. Implementations own the full signin gate ordering.
type CredentialValidator interface {
	ValidateCredentials(ctx context.Context, email, password, code string) (*User, error)
}

var _ CredentialValidator = (*CredentialVerifier)(nil)

// CredentialVerifier runs the signin gates in order: account lookup,
// password check, email verification, two-factor challenge.
type CredentialVerifier struct {
	repo     RepositoryManager
	tokens   *TokenManager
	notifier NotificationSink
	hasher   PasswordAuthenticator
	logger   Logger
}

// NewCredentialVerifier builds a verifier over the given stores.
func NewCredentialVerifier(repo RepositoryManager, tokens *TokenManager) *CredentialVerifier {
	return &CredentialVerifier{
		repo:     repo,
		tokens:   tokens,
		notifier: noopNotificationSink{},
		hasher:   bcryptHasher{},
		logger:   defLogger{},
	}
}

// WithNotifier sets the notification sink and returns the verifier.
func (v *CredentialVerifier) WithNotifier(sink NotificationSink) *CredentialVerifier {
	v.notifier = normalizeNotificationSink(sink)
	return v
}

// WithLogger sets the logger and returns the verifier.
func (v *CredentialVerifier) WithLogger(logger Logger) *CredentialVerifier {
	if logger != nil {
		v.logger = logger
	}
	return v
}

// WithHasher overrides the password hasher and returns the verifier.
func (v *CredentialVerifier) WithHasher(hasher PasswordAuthenticator) *CredentialVerifier {
	if hasher != nil {
		v.hasher = hasher
	}
	return v
}

// ValidateCredentials implements CredentialValidator. An unknown email and a
// wrong password both return ErrCredentialsInvalid. An unverified email
// stops the flow before the two-factor gate is ever consulted.
func (v *CredentialVerifier) ValidateCredentials(ctx context.Context, email, password, code string) (*User, error) {
	user, err := v.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrCredentialsInvalid
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "account lookup failed")
	}

	if err := v.hasher.ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, ErrCredentialsInvalid
	}

	if !user.EmailVerified() {
		record, err := v.tokens.Issue(ctx, KindVerification, user.Email)
		if err != nil {
			return nil, err
		}
		v.notify(ctx, NotificationVerification, user, record.Token)
		return nil, ErrConfirmEmail
	}

	if user.TwoFactorEnabled {
		if code == "" {
			record, err := v.tokens.Issue(ctx, KindTwoFactor, user.Email)
			if err != nil {
				return nil, err
			}
			v.notify(ctx, NotificationTwoFactor, user, record.Token)
			return nil, ErrTwoFactorRequired
		}

		record, err := v.repo.TwoFactorTokens().FindByEmail(ctx, user.Email)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return nil, ErrTwoFactorInvalidCode
			}
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "two factor lookup failed")
		}

		if record.Token != code {
			return nil, ErrTwoFactorInvalidCode
		}

		if v.tokens.Expired(record) {
			return nil, ErrTwoFactorExpiredCode
		}

		if err := v.tokens.Consume(ctx, KindTwoFactor, record.ID); err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not consume two factor code")
		}

		if prior, err := v.repo.TwoFactorConfirmations().FindByUserID(ctx, user.ID); err == nil {
			if err := v.repo.TwoFactorConfirmations().DeleteByID(ctx, prior.ID); err != nil {
				return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not replace two factor confirmation")
			}
		} else if !repository.IsRecordNotFound(err) {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "two factor confirmation lookup failed")
		}

		if _, err := v.repo.TwoFactorConfirmations().Create(ctx, user.ID); err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not record two factor confirmation")
		}
	}

	return user.Sanitized(), nil
}

// notify delivers best-effort: a failed email never fails the flow, the
// caller can always retry to trigger a fresh token.
func (v *CredentialVerifier) notify(ctx context.Context, kind NotificationKind, user *User, token string) {
	err := v.notifier.Send(ctx, kind, Recipient{Name: user.Name, Email: user.Email}, NotificationParams{Code: token})
	if err != nil {
		v.logger.Warn("could not deliver %s notification to %s: %v", kind, user.Email, err)
	}
}
