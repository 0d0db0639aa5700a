package jwt

import (
	"errors"
	"time"

	jw "github.com/golang-jwt/jwt/v5"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrWrongType    = errors.New("wrong token type")
)

// Manager signs and verifies HS256 tokens carrying the principal in "sub".
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewManager(secret []byte, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{secret: secret, accessTTL: accessTTL, refreshTTL: refreshTTL, now: time.Now}
}

func (m *Manager) AccessTTL() time.Duration { return m.accessTTL }

func (m *Manager) MakeAccess(sub string) (string, error) {
	return m.make(sub, TypeAccess, m.accessTTL)
}

func (m *Manager) MakeRefresh(sub string) (string, error) {
	return m.make(sub, TypeRefresh, m.refreshTTL)
}

func (m *Manager) make(sub, typ string, ttl time.Duration) (string, error) {
	now := m.now()
	claims := jw.MapClaims{
		"sub": sub,
		"typ": typ,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	return jw.NewWithClaims(jw.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *Manager) ParseAccess(tok string) (string, error)  { return m.parse(tok, TypeAccess) }
func (m *Manager) ParseRefresh(tok string) (string, error) { return m.parse(tok, TypeRefresh) }

func (m *Manager) parse(tok, want string) (string, error) {
	t, err := jw.Parse(tok, func(t *jw.Token) (any, error) {
		return m.secret, nil
	},
		jw.WithValidMethods([]string{jw.SigningMethodHS256.Alg()}),
		jw.WithExpirationRequired(),
		jw.WithTimeFunc(m.now),
	)
	if err != nil || !t.Valid {
		return "", ErrInvalidToken
	}
	mc, ok := t.Claims.(jw.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	if typ, _ := mc["typ"].(string); typ != want {
		return "", ErrWrongType
	}
	sub, _ := mc["sub"].(string)
	if sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
