package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TokenStore persists single-use tokens for one token kind. At most one
// live token per email is expected; issuance replaces any prior row.
type TokenStore interface {
	FindByEmail(ctx context.Context, email string) (*TokenRecord, error)
	FindByToken(ctx context.Context, token string) (*TokenRecord, error)
	Create(ctx context.Context, email, token string, expires time.Time) (*TokenRecord, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

// TwoFactorConfirmations tracks completed two-factor challenges.
type TwoFactorConfirmations interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*TwoFactorConfirmation, error)
	Create(ctx context.Context, userID uuid.UUID) (*TwoFactorConfirmation, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

type bunTokenStore[T tokenRow] struct {
	db     bun.IDB
	newRow func() T
	table  string
}

var (
	_ TokenStore             = (*bunTokenStore[*VerificationToken])(nil)
	_ TwoFactorConfirmations = (*bunConfirmations)(nil)
)

// NewVerificationTokens returns the store backing email confirmation tokens.
func NewVerificationTokens(db *bun.DB) TokenStore {
	return &bunTokenStore[*VerificationToken]{
		db:     db,
		newRow: func() *VerificationToken { return &VerificationToken{} },
		table:  "verification_tokens",
	}
}

// NewTwoFactorTokens returns the store backing emailed signin codes.
func NewTwoFactorTokens(db *bun.DB) TokenStore {
	return &bunTokenStore[*TwoFactorToken]{
		db:     db,
		newRow: func() *TwoFactorToken { return &TwoFactorToken{} },
		table:  "two_factor_tokens",
	}
}

// NewPasswordResetTokens returns the store backing reset tokens.
func NewPasswordResetTokens(db *bun.DB) TokenStore {
	return &bunTokenStore[*PasswordResetToken]{
		db:     db,
		newRow: func() *PasswordResetToken { return &PasswordResetToken{} },
		table:  "password_reset_tokens",
	}
}

func (s *bunTokenStore[T]) FindByEmail(ctx context.Context, email string) (*TokenRecord, error) {
	row := s.newRow()
	err := s.db.NewSelect().
		Model(row).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.NewRecordNotFound().WithMetadata(map[string]any{
				"table": s.table,
				"email": email,
			})
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "token lookup by email failed")
	}
	return row.record(), nil
}

func (s *bunTokenStore[T]) FindByToken(ctx context.Context, token string) (*TokenRecord, error) {
	row := s.newRow()
	err := s.db.NewSelect().
		Model(row).
		Where("?TableAlias.token = ?", token).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.NewRecordNotFound().WithMetadata(map[string]any{
				"table": s.table,
			})
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "token lookup failed")
	}
	return row.record(), nil
}

func (s *bunTokenStore[T]) Create(ctx context.Context, email, token string, expires time.Time) (*TokenRecord, error) {
	row := s.newRow()
	row.applyRecord(TokenRecord{
		ID:      uuid.New(),
		Email:   email,
		Token:   token,
		Expires: expires,
	})
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "token insert failed")
	}
	return row.record(), nil
}

func (s *bunTokenStore[T]) DeleteByID(ctx context.Context, id uuid.UUID) error {
	row := s.newRow()
	res, err := s.db.NewDelete().
		Model(row).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "token delete failed")
	}
	// Deleting a row that is already gone means the token was consumed
	// concurrently; callers treat that as a failed consume.
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.NewRecordNotFound().WithMetadata(map[string]any{
			"table": s.table,
			"id":    id.String(),
		})
	}
	return nil
}

type bunConfirmations struct {
	db bun.IDB
}

// NewTwoFactorConfirmations returns the bun-backed confirmations store.
func NewTwoFactorConfirmations(db *bun.DB) TwoFactorConfirmations {
	return &bunConfirmations{db: db}
}

func (s *bunConfirmations) FindByUserID(ctx context.Context, userID uuid.UUID) (*TwoFactorConfirmation, error) {
	row := &TwoFactorConfirmation{}
	err := s.db.NewSelect().
		Model(row).
		Where("?TableAlias.user_id = ?", userID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.NewRecordNotFound().WithMetadata(map[string]any{
				"table":   "two_factor_confirmations",
				"user_id": userID.String(),
			})
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "confirmation lookup failed")
	}
	return row, nil
}

func (s *bunConfirmations) Create(ctx context.Context, userID uuid.UUID) (*TwoFactorConfirmation, error) {
	row := &TwoFactorConfirmation{
		ID:     uuid.New(),
		UserID: userID,
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "confirmation insert failed")
	}
	return row, nil
}

func (s *bunConfirmations) DeleteByID(ctx context.Context, id uuid.UUID) error {
	row := &TwoFactorConfirmation{}
	if _, err := s.db.NewDelete().
		Model(row).
		Where("?TableAlias.id = ?", id).
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "confirmation delete failed")
	}
	return nil
}
