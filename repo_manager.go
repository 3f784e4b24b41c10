package auth

import (
	"context"
	"database/sql"
	"fmt"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// RepositoryManager aggregates every store the flows need so services take
// a single dependency.
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Users() Users
	VerificationTokens() TokenStore
	TwoFactorTokens() TokenStore
	PasswordResetTokens() TokenStore
	TwoFactorConfirmations() TwoFactorConfirmations
}

type mngr struct {
	db                     *bun.DB
	users                  Users
	verificationTokens     TokenStore
	twoFactorTokens        TokenStore
	passwordResetTokens    TokenStore
	twoFactorConfirmations TwoFactorConfirmations
}

// NewRepositoryManager wires the bun-backed stores over one database handle.
func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:                     db,
		users:                  NewUsersRepository(db),
		verificationTokens:     NewVerificationTokens(db),
		twoFactorTokens:        NewTwoFactorTokens(db),
		passwordResetTokens:    NewPasswordResetTokens(db),
		twoFactorConfirmations: NewTwoFactorConfirmations(db),
	}
}

func (m *mngr) Validate() error {
	if m.db == nil {
		return fmt.Errorf("repository manager requires a database connection")
	}
	return nil
}

func (m *mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		panic(err)
	}
}

func (m *mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, tx bun.Tx) error) error {
	return m.db.RunInTx(ctx, opts, fn)
}

func (m *mngr) Users() Users {
	return m.users
}

func (m *mngr) VerificationTokens() TokenStore {
	return m.verificationTokens
}

func (m *mngr) TwoFactorTokens() TokenStore {
	return m.twoFactorTokens
}

func (m *mngr) PasswordResetTokens() TokenStore {
	return m.passwordResetTokens
}

func (m *mngr) TwoFactorConfirmations() TwoFactorConfirmations {
	return m.twoFactorConfirmations
}
