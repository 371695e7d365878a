package services

import (
	"golang.org/x/crypto/bcrypt"
)

// AuthService owns password hashing; token issuance stays in the auth
// handler next to the JWT claims type.
type AuthService interface {
	HashPassword(plain string) (string, error)
	ComparePassword(hash, plain string) error
}

type authService struct{}

func NewAuthService() AuthService {
	return &authService{}
}

func (s *authService) HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *authService) ComparePassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
