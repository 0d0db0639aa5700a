package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var ErrWrongCredentials = errors.New("wrong credentials")

// Authenticator checks a username/password pair against one configured account.
type Authenticator struct {
	username string
	hash     []byte
}

// NewAuthenticator uses passwordHash when given, otherwise hashes password.
func NewAuthenticator(username, password, passwordHash string) (*Authenticator, error) {
	if username == "" {
		return nil, errors.New("auth: empty username")
	}
	if passwordHash != "" {
		if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
			return nil, fmt.Errorf("auth: bad password hash: %w", err)
		}
		return &Authenticator{username: username, hash: []byte(passwordHash)}, nil
	}
	if password == "" {
		return nil, errors.New("auth: neither password nor hash configured")
	}
	h, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &Authenticator{username: username, hash: []byte(h)}, nil
}

func (a *Authenticator) Check(username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	// hash is compared for unknown usernames too
	passErr := bcrypt.CompareHashAndPassword(a.hash, []byte(password))
	if !userOK || passErr != nil {
		return ErrWrongCredentials
	}
	return nil
}

// Roles of an authenticated principal. The single account carries none.
func (a *Authenticator) Roles(string) []string { return []string{} }

func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}
