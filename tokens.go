package auth

import (
	"context"
	"math/rand"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// TokenKind identifies one of the single-use token families.
type TokenKind string

const (
	KindVerification  TokenKind = "verification"
	KindTwoFactor     TokenKind = "two_factor"
	KindPasswordReset TokenKind = "password_reset"
)

// TokenPolicy controls how tokens of a kind are generated and how long
// they live. A zero Length (or empty Alphabet) produces UUID tokens.
type TokenPolicy struct {
	TTL      time.Duration
	Length   int
	Alphabet string
}

// DefaultTokenPolicies returns the built-in generation rules: UUID
// verification tokens and numeric two-factor codes valid for 15 minutes,
// and 8-character uppercase alphanumeric reset tokens valid for an hour.
func DefaultTokenPolicies() map[TokenKind]TokenPolicy {
	return map[TokenKind]TokenPolicy{
		KindVerification: {
			TTL: 15 * time.Minute,
		},
		KindTwoFactor: {
			TTL:      15 * time.Minute,
			Length:   6,
			Alphabet: "0123456789",
		},
		KindPasswordReset: {
			TTL:      time.Hour,
			Length:   8,
			Alphabet: "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789",
		},
	}
}

// TokenStores names the backing store for each token kind.
type TokenStores struct {
	Verification  TokenStore
	TwoFactor     TokenStore
	PasswordReset TokenStore
}

// TokenManager owns the lifecycle of single-use tokens: issuance with
// supersession, validation, consumption, and expiry checks.
type TokenManager struct {
	stores   map[TokenKind]TokenStore
	policies map[TokenKind]TokenPolicy
	now      ClockFunc
	randInt  func(n int) int
	logger   Logger
}

// TokenManagerOption configures a TokenManager during construction.
type TokenManagerOption func(*TokenManager)

// WithTokenPolicy overrides the generation policy for one token kind.
func WithTokenPolicy(kind TokenKind, policy TokenPolicy) TokenManagerOption {
	return func(m *TokenManager) {
		m.policies[kind] = policy
	}
}

// WithClock injects the time source used for expiry calculations.
func WithClock(clock ClockFunc) TokenManagerOption {
	return func(m *TokenManager) {
		if clock != nil {
			m.now = clock
		}
	}
}

// WithRandom injects the random source used for code generation.
func WithRandom(randInt func(n int) int) TokenManagerOption {
	return func(m *TokenManager) {
		if randInt != nil {
			m.randInt = randInt
		}
	}
}

// NewTokenManager builds a manager over the given stores with the default
// policies.
func NewTokenManager(stores TokenStores, opts ...TokenManagerOption) *TokenManager {
	m := &TokenManager{
		stores: map[TokenKind]TokenStore{
			KindVerification:  stores.Verification,
			KindTwoFactor:     stores.TwoFactor,
			KindPasswordReset: stores.PasswordReset,
		},
		policies: DefaultTokenPolicies(),
		now:      time.Now,
		randInt:  rand.Intn,
		logger:   defLogger{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithLogger sets the logger and returns the manager for chaining.
func (m *TokenManager) WithLogger(logger Logger) *TokenManager {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// Issue generates a fresh token for the email, replacing any live token of
// the same kind. The previous token is dead before the new one exists.
func (m *TokenManager) Issue(ctx context.Context, kind TokenKind, email string) (*TokenRecord, error) {
	store, err := m.store(kind)
	if err != nil {
		return nil, err
	}
	policy := m.policies[kind]
	value := m.generate(policy)
	expires := m.now().Add(policy.TTL)

	if prior, err := store.FindByEmail(ctx, email); err == nil {
		if err := store.DeleteByID(ctx, prior.ID); err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not supersede token")
		}
	} else if !repository.IsRecordNotFound(err) {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not check for prior token")
	}

	record, err := store.Create(ctx, email, value, expires)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not persist token")
	}

	m.logger.Debug("issued %s token for %s, expires %s", kind, email, expires.Format(time.RFC3339))

	return record, nil
}

// Validate resolves a token value to its record. Unknown values surface the
// store's not-found error.
func (m *TokenManager) Validate(ctx context.Context, kind TokenKind, value string) (*TokenRecord, error) {
	store, err := m.store(kind)
	if err != nil {
		return nil, err
	}
	return store.FindByToken(ctx, value)
}

// Consume deletes the token so it can never be redeemed again.
func (m *TokenManager) Consume(ctx context.Context, kind TokenKind, id uuid.UUID) error {
	store, err := m.store(kind)
	if err != nil {
		return err
	}
	return store.DeleteByID(ctx, id)
}

// Expired reports whether the record is past its expiry. The expiry instant
// itself counts as expired.
func (m *TokenManager) Expired(record *TokenRecord) bool {
	if record == nil {
		return true
	}
	return !m.now().Before(record.Expires)
}

func (m *TokenManager) store(kind TokenKind) (TokenStore, error) {
	store, ok := m.stores[kind]
	if !ok || store == nil {
		return nil, goerrors.New("no store configured for token kind", goerrors.CategoryOperation).
			WithMetadata(map[string]any{"kind": string(kind)})
	}
	return store, nil
}

func (m *TokenManager) generate(policy TokenPolicy) string {
	if policy.Length == 0 || policy.Alphabet == "" {
		return uuid.NewString()
	}
	var b strings.Builder
	b.Grow(policy.Length)
	for i := 0; i < policy.Length; i++ {
		b.WriteByte(policy.Alphabet[m.randInt(len(policy.Alphabet))])
	}
	return b.String()
}
