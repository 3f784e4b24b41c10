package auth_test

import (
	"context"
	"sync"
	"time"

	auth "github.com/goliatone/go-credauth"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// memUsers embeds the repository interface so only the methods the flows
// touch need an implementation.
type memUsers struct {
	repository.Repository[*auth.User]
	mu      sync.Mutex
	byEmail map[string]*auth.User
}

func newMemUsers(users ...*auth.User) *memUsers {
	m := &memUsers{byEmail: map[string]*auth.User{}}
	for _, u := range users {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		m.byEmail[u.Email] = u
	}
	return m
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byEmail[email]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, repository.NewRecordNotFound()
}

func (m *memUsers) Create(ctx context.Context, record *auth.User, criteria ...repository.InsertCriteria) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.Provider == "" {
		record.Provider = auth.ProviderCredentials
	}
	clone := *record
	m.byEmail[record.Email] = &clone
	return record, nil
}

func (m *memUsers) MarkEmailVerified(ctx context.Context, id uuid.UUID, at time.Time) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.ID == id {
			ts := at
			u.EmailVerifiedAt = &ts
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.NewRecordNotFound()
}

func (m *memUsers) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.ID == id {
			u.PasswordHash = passwordHash
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.NewRecordNotFound()
}

type memTokenStore struct {
	mu   sync.Mutex
	rows map[uuid.UUID]auth.TokenRecord
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{rows: map[uuid.UUID]auth.TokenRecord{}}
}

func (m *memTokenStore) FindByEmail(ctx context.Context, email string) (*auth.TokenRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.rows {
		if rec.Email == email {
			clone := rec
			return &clone, nil
		}
	}
	return nil, repository.NewRecordNotFound()
}

func (m *memTokenStore) FindByToken(ctx context.Context, token string) (*auth.TokenRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.rows {
		if rec.Token == token {
			clone := rec
			return &clone, nil
		}
	}
	return nil, repository.NewRecordNotFound()
}

func (m *memTokenStore) Create(ctx context.Context, email, token string, expires time.Time) (*auth.TokenRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := auth.TokenRecord{ID: uuid.New(), Email: email, Token: token, Expires: expires}
	m.rows[rec.ID] = rec
	clone := rec
	return &clone, nil
}

func (m *memTokenStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return repository.NewRecordNotFound()
	}
	delete(m.rows, id)
	return nil
}

func (m *memTokenStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func (m *memTokenStore) first() (auth.TokenRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.rows {
		return rec, true
	}
	return auth.TokenRecord{}, false
}

type memConfirmations struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*auth.TwoFactorConfirmation
}

func newMemConfirmations() *memConfirmations {
	return &memConfirmations{rows: map[uuid.UUID]*auth.TwoFactorConfirmation{}}
}

func (m *memConfirmations) FindByUserID(ctx context.Context, userID uuid.UUID) (*auth.TwoFactorConfirmation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.rows {
		if rec.UserID == userID {
			clone := *rec
			return &clone, nil
		}
	}
	return nil, repository.NewRecordNotFound()
}

func (m *memConfirmations) Create(ctx context.Context, userID uuid.UUID) (*auth.TwoFactorConfirmation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := &auth.TwoFactorConfirmation{ID: uuid.New(), UserID: userID}
	m.rows[rec.ID] = rec
	clone := *rec
	return &clone, nil
}

func (m *memConfirmations) DeleteByID(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *memConfirmations) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// memRepositoryManager wires the in-memory fakes behind the manager
// interface the flows consume.
type memRepositoryManager struct {
	auth.RepositoryManager
	users         *memUsers
	verification  *memTokenStore
	twoFactor     *memTokenStore
	passwordReset *memTokenStore
	confirmations *memConfirmations
}

func newMemRepositoryManager(users ...*auth.User) *memRepositoryManager {
	return &memRepositoryManager{
		users:         newMemUsers(users...),
		verification:  newMemTokenStore(),
		twoFactor:     newMemTokenStore(),
		passwordReset: newMemTokenStore(),
		confirmations: newMemConfirmations(),
	}
}

func (m *memRepositoryManager) Users() auth.Users { return m.users }

func (m *memRepositoryManager) VerificationTokens() auth.TokenStore { return m.verification }

func (m *memRepositoryManager) TwoFactorTokens() auth.TokenStore { return m.twoFactor }

func (m *memRepositoryManager) PasswordResetTokens() auth.TokenStore { return m.passwordReset }

func (m *memRepositoryManager) TwoFactorConfirmations() auth.TwoFactorConfirmations {
	return m.confirmations
}

func (m *memRepositoryManager) tokenManager(opts ...auth.TokenManagerOption) *auth.TokenManager {
	return auth.NewTokenManager(auth.TokenStores{
		Verification:  m.verification,
		TwoFactor:     m.twoFactor,
		PasswordReset: m.passwordReset,
	}, opts...)
}

type sentNotification struct {
	kind   auth.NotificationKind
	to     auth.Recipient
	params auth.NotificationParams
}

// recordingSink captures notifications for assertions.
type recordingSink struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

func (s *recordingSink) Send(ctx context.Context, kind auth.NotificationKind, to auth.Recipient, params auth.NotificationParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentNotification{kind: kind, to: to, params: params})
	return nil
}

func (s *recordingSink) all() []sentNotification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sentNotification, len(s.sent))
	copy(out, s.sent)
	return out
}

// plainHasher is a deterministic stand-in for bcrypt so flow tests stay fast.
type plainHasher struct{}

func (plainHasher) HashPassword(password string) (string, error) {
	if password == "" {
		return "", auth.ErrNoEmptyString
	}
	return "hash:" + password, nil
}

func (plainHasher) ComparePasswordAndHash(password, hash string) error {
	if "hash:"+password != hash {
		return auth.ErrMismatchedHashAndPassword
	}
	return nil
}

type silentLogger struct{}

func (silentLogger) Debug(string, ...any) {}
func (silentLogger) Info(string, ...any)  {}
func (silentLogger) Warn(string, ...any)  {}
func (silentLogger) Error(string, ...any) {}
