package auth

import (
	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

var _ Session = (*SessionObject)(nil)

// SessionObject is the concrete Session backed by decoded claims.
type SessionObject struct {
	UserID         string           `json:"user_id"`
	Name           string           `json:"name"`
	Email          string           `json:"email"`
	Issuer         string           `json:"issuer"`
	IssuedAt       *jwt.NumericDate `json:"issued_at"`
	ExpirationDate *jwt.NumericDate `json:"expiration_date"`
}

func sessionFromClaims(claims *SessionClaims) *SessionObject {
	return &SessionObject{
		UserID:         claims.Subject,
		Name:           claims.Name,
		Email:          claims.Email,
		Issuer:         claims.Issuer,
		IssuedAt:       claims.IssuedAt,
		ExpirationDate: claims.ExpiresAt,
	}
}

func (s *SessionObject) GetUserID() string {
	return s.UserID
}

// GetUserUUID validates that the subject is a well-formed UUID.
func (s *SessionObject) GetUserUUID() (string, error) {
	id, err := uuid.Parse(s.UserID)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryValidation, "session subject is not a valid uuid")
	}
	return id.String(), nil
}

func (s *SessionObject) GetName() string {
	return s.Name
}

func (s *SessionObject) GetEmail() string {
	return s.Email
}

func (s *SessionObject) GetIssuer() string {
	return s.Issuer
}

func (s *SessionObject) GetIssuedAt() *jwt.NumericDate {
	return s.IssuedAt
}

func (s *SessionObject) GetExpiration() *jwt.NumericDate {
	return s.ExpirationDate
}
