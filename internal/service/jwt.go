package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/somonity/accounts/config"
	"github.com/somonity/accounts/internal/model"
	redisclient "github.com/somonity/accounts/pkg/redis"
)

// Tokens are valid for exactly one hour from issuance
const tokenTTL = time.Hour

// Cached role claim lists expire well before role edits matter operationally
const roleClaimsCacheTTL = 10 * time.Minute

// RoleClaimSource provides the two reads token issuance performs per user
type RoleClaimSource interface {
	RolesForUser(ctx context.Context, userID uint) ([]model.Role, error)
	ClaimsForRole(ctx context.Context, roleID uint) ([]string, error)
}

// TokenClaims is the payload of an issued session token. Roles and
// Permissions are arrays: a user holds one role entry per role and one
// Permissions entry per claim row, including duplicates granted by
// different roles.
type TokenClaims struct {
	jwt.RegisteredClaims
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Phone       string   `json:"Phone"`
	UserStatus  string   `json:"UserStatus"`
	Roles       []string `json:"role,omitempty"`
	Permissions []string `json:"Permissions,omitempty"`
}

// JWTService issues and validates signed session tokens. The token is
// self-describing: validation needs only the signing key, no store access.
type JWTService struct {
	key      string
	issuer   string
	audience string
	source   RoleClaimSource
	cache    *redisclient.Client
}

func NewJWTService(cfg config.JWTConfig, source RoleClaimSource, cache *redisclient.Client) *JWTService {
	return &JWTService{
		key:      cfg.Key,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		source:   source,
		cache:    cache,
	}
}

// GenerateToken aggregates the user's identity, roles and permission claims
// into a signed token expiring one hour after issuance.
func (s *JWTService) GenerateToken(ctx context.Context, user *model.User) (string, error) {
	now := time.Now()

	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
		Email:      user.Email,
		Name:       user.Username,
		Phone:      user.Phone,
		UserStatus: user.Status,
	}

	roles, err := s.source.RolesForUser(ctx, user.ID)
	if err != nil {
		return "", err
	}

	for _, role := range roles {
		claims.Roles = append(claims.Roles, role.Name)

		perms, err := s.claimsForRole(ctx, role.ID)
		if err != nil {
			return "", err
		}
		claims.Permissions = append(claims.Permissions, perms...)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.key))
}

// claimsForRole reads a role's claim list through the cache
func (s *JWTService) claimsForRole(ctx context.Context, roleID uint) ([]string, error) {
	if claims, ok := s.cache.GetRoleClaims(ctx, roleID); ok {
		return claims, nil
	}

	claims, err := s.source.ClaimsForRole(ctx, roleID)
	if err != nil {
		return nil, err
	}

	s.cache.SetRoleClaims(ctx, roleID, claims, roleClaimsCacheTTL)
	return claims, nil
}

// ValidateToken verifies the signature and expiry and returns the claims
func (s *JWTService) ValidateToken(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.key), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// SubjectUserID extracts the numeric user id from a token's subject claim
func (c *TokenClaims) SubjectUserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
