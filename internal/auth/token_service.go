package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/omerg864/SecuRent-sub001/internal/models"
)

var (
	ErrUnknownRole      = errors.New("auth: unknown role")
	ErrInvalidToken     = errors.New("auth: invalid token")
	ErrUnknownPrincipal = errors.New("auth: no matching principal")
)

// Store answers whether a principal document with the given id exists for
// one role. The mongo repositories implement it; tests use in-memory fakes.
type Store interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Secrets holds the three independent signing secrets, one per role.
type Secrets struct {
	Customer string
	Business string
	Admin    string
}

// TokenService verifies bearer tokens. Each role has its own HMAC secret
// and its own backing store; a token is only valid if its signature checks
// out under the claimed role's secret AND its subject resolves to an
// existing principal document of that role.
type TokenService struct {
	secrets map[models.Role][]byte
	stores  map[models.Role]Store
}

func NewTokenService(secrets Secrets, customers, businesses, admins Store) *TokenService {
	return &TokenService{
		secrets: map[models.Role][]byte{
			models.RoleCustomer: []byte(secrets.Customer),
			models.RoleBusiness: []byte(secrets.Business),
			models.RoleAdmin:    []byte(secrets.Admin),
		},
		stores: map[models.Role]Store{
			models.RoleCustomer: customers,
			models.RoleBusiness: businesses,
			models.RoleAdmin:    admins,
		},
	}
}

// Authenticate validates tokenString against the secret for role and
// resolves the subject id. Fail-closed: expired signatures, wrong secrets,
// missing subjects and unknown principals all return an error.
func (s *TokenService) Authenticate(ctx context.Context, tokenString string, role models.Role) (string, error) {
	secret, ok := s.secrets[role]
	if !ok {
		return "", ErrUnknownRole
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	identity := subject(claims)
	if identity == "" {
		return "", ErrInvalidToken
	}

	exists, err := s.stores[role].Exists(ctx, identity)
	if err != nil {
		return "", fmt.Errorf("principal lookup: %w", err)
	}
	if !exists {
		return "", ErrUnknownPrincipal
	}
	return identity, nil
}

// AuthenticateAny tries every role's secret in sequence and returns the
// first match. This works for the fixed three-role model; it does not scale
// past a small number of roles.
func (s *TokenService) AuthenticateAny(ctx context.Context, tokenString string) (models.Role, string, error) {
	for _, role := range models.AllRoles() {
		identity, err := s.Authenticate(ctx, tokenString, role)
		if err == nil {
			return role, identity, nil
		}
	}
	return "", "", ErrInvalidToken
}

func subject(claims jwt.MapClaims) string {
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		return sub
	}
	// Older mobile builds carry the principal id in an "id" claim.
	if id, ok := claims["id"].(string); ok {
		return id
	}
	return ""
}

// Sign mints a token for a principal under the given secret. Used by the
// tokengen CLI and by tests; the production login flow lives in the REST
// backend, not here.
func Sign(role models.Role, identity, secret string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  identity,
		"role": role.String(),
		"exp":  time.Now().Add(ttl).Unix(),
	})
	return token.SignedString([]byte(secret))
}
