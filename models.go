package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ProviderCredentials is the account provider for email/password accounts.
// Reserved for forward compatibility with federated providers.
const ProviderCredentials = "CREDENTIALS"

// User is the account record.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID               uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id"`
	Name             string     `bun:"name" json:"name"`
	Email            string     `bun:"email,notnull,unique" json:"email"`
	PasswordHash     string     `bun:"password_hash" json:"-"`
	Provider         string     `bun:"account_provider" json:"account_provider"`
	ProfilePicture   string     `bun:"profile_picture" json:"profile_picture"`
	EmailVerifiedAt  *time.Time `bun:"email_verified_at,nullzero" json:"email_verified_at,omitempty"`
	TwoFactorEnabled bool       `bun:"is_two_factor_enabled" json:"is_two_factor_enabled"`
	CreatedAt        time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt        time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
	DeletedAt        time.Time  `bun:"deleted_at,soft_delete,nullzero" json:"-"`
}

// EmailVerified reports whether the account completed email verification.
func (u *User) EmailVerified() bool {
	return u.EmailVerifiedAt != nil
}

// Sanitized returns a copy safe to hand back to callers.
func (u *User) Sanitized() *User {
	out := *u
	out.PasswordHash = ""
	return &out
}

// TokenRecord is the store-agnostic view of a single-use token row.
type TokenRecord struct {
	ID      uuid.UUID
	Email   string
	Token   string
	Expires time.Time
}

// VerificationToken backs email address confirmation.
type VerificationToken struct {
	bun.BaseModel `bun:"table:verification_tokens,alias:vtk"`

	ID      uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id"`
	Email   string    `bun:"email,notnull" json:"email"`
	Token   string    `bun:"token,notnull,unique" json:"token"`
	Expires time.Time `bun:"expires,notnull" json:"expires"`
}

// TwoFactorToken backs the emailed signin codes.
type TwoFactorToken struct {
	bun.BaseModel `bun:"table:two_factor_tokens,alias:tft"`

	ID      uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id"`
	Email   string    `bun:"email,notnull" json:"email"`
	Token   string    `bun:"token,notnull,unique" json:"token"`
	Expires time.Time `bun:"expires,notnull" json:"expires"`
}

// PasswordResetToken backs the password reset flow.
type PasswordResetToken struct {
	bun.BaseModel `bun:"table:password_reset_tokens,alias:prt"`

	ID      uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id"`
	Email   string    `bun:"email,notnull" json:"email"`
	Token   string    `bun:"token,notnull,unique" json:"token"`
	Expires time.Time `bun:"expires,notnull" json:"expires"`
}

// TwoFactorConfirmation records a completed two-factor challenge for a user.
// At most one row per user exists at any time.
type TwoFactorConfirmation struct {
	bun.BaseModel `bun:"table:two_factor_confirmations,alias:tfc"`

	ID     uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id"`
	UserID uuid.UUID `bun:"user_id,notnull,unique,type:uuid" json:"user_id"`
}

// tokenRow lets one bun-backed store implementation serve all three token
// tables.
type tokenRow interface {
	record() *TokenRecord
	applyRecord(rec TokenRecord)
}

func (t *VerificationToken) record() *TokenRecord {
	return &TokenRecord{ID: t.ID, Email: t.Email, Token: t.Token, Expires: t.Expires}
}

func (t *VerificationToken) applyRecord(rec TokenRecord) {
	t.ID, t.Email, t.Token, t.Expires = rec.ID, rec.Email, rec.Token, rec.Expires
}

func (t *TwoFactorToken) record() *TokenRecord {
	return &TokenRecord{ID: t.ID, Email: t.Email, Token: t.Token, Expires: t.Expires}
}

func (t *TwoFactorToken) applyRecord(rec TokenRecord) {
	t.ID, t.Email, t.Token, t.Expires = rec.ID, rec.Email, rec.Token, rec.Expires
}

func (t *PasswordResetToken) record() *TokenRecord {
	return &TokenRecord{ID: t.ID, Email: t.Email, Token: t.Token, Expires: t.Expires}
}

func (t *PasswordResetToken) applyRecord(rec TokenRecord) {
	t.ID, t.Email, t.Token, t.Expires = rec.ID, rec.Email, rec.Token, rec.Expires
}
