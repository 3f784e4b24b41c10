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

var markEmailVerifiedSQL = `UPDATE "users" AS "usr"
SET "email_verified_at" = ?, "updated_at" = CURRENT_TIMESTAMP
WHERE "usr"."deleted_at" IS NULL AND ("usr"."id" = ?)
RETURNING *`

var updatePasswordSQL = `UPDATE "users" AS "usr"
SET "password_hash" = ?, "updated_at" = CURRENT_TIMESTAMP
WHERE "usr"."deleted_at" IS NULL AND ("usr"."id" = ?)
RETURNING *`

// Users is the account repository.
type Users interface {
	repository.Repository[*User]
	GetByEmail(ctx context.Context, email string) (*User, error)
	MarkEmailVerified(ctx context.Context, id uuid.UUID, at time.Time) (*User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) (*User, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

// NewUsersRepository returns the bun-backed Users repository.
func NewUsersRepository(db *bun.DB) Users {
	handlers := repository.ModelHandlers[*User]{
		NewRecord: func() *User {
			return &User{}
		},
		GetID: func(record *User) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *User, id uuid.UUID) {
			record.ID = id
		},
		GetIdentifier: func() string {
			return "email"
		},
	}
	return &users{
		Repository: repository.NewRepository[*User](db, handlers),
		db:         db,
	}
}

func (u *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	record := &User{}
	err := u.db.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.NewRecordNotFound().WithMetadata(map[string]any{
				"table": "users",
				"email": email,
			})
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "user lookup failed")
	}
	return record, nil
}

func (u *users) Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	prepareUserDefaults(record)
	return u.Repository.Create(ctx, record, criteria...)
}

func (u *users) CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	prepareUserDefaults(record)
	return u.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (u *users) MarkEmailVerified(ctx context.Context, id uuid.UUID, at time.Time) (*User, error) {
	records, err := u.Repository.RawTx(ctx, u.db, markEmailVerifiedSQL, at, id.String())
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "mark email verified failed")
	}
	if len(records) == 0 {
		return nil, repository.NewRecordNotFound().WithMetadata(map[string]any{
			"table": "users",
			"id":    id.String(),
		})
	}
	return records[0], nil
}

func (u *users) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) (*User, error) {
	records, err := u.Repository.RawTx(ctx, u.db, updatePasswordSQL, passwordHash, id.String())
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "password update failed")
	}
	if len(records) == 0 {
		return nil, repository.NewRecordNotFound().WithMetadata(map[string]any{
			"table": "users",
			"id":    id.String(),
		})
	}
	return records[0], nil
}

func prepareUserDefaults(record *User) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.Provider == "" {
		record.Provider = ProviderCredentials
	}
}
