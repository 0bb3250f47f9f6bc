package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vuducanh221104/server-ecommerce-shopp/internal/config"
	domainErrors "github.com/vuducanh221104/server-ecommerce-shopp/internal/domain/errors"
	"github.com/vuducanh221104/server-ecommerce-shopp/internal/domain/models"
)

// TokenType distinguishes the two JWT kinds this service signs.
type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// AccessTokenClaims carry the identity proven on each protected request.
type AccessTokenClaims struct {
	jwt.RegisteredClaims
	UserID    string          `json:"user_id"`
	Role      models.UserRole `json:"role"`
	TokenType string          `json:"token_type"`
}

// RefreshTokenClaims carry only the subject; everything else about the
// session lives in the database.
type RefreshTokenClaims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	TokenType string `json:"token_type"`
}

// TokenManager signs and verifies the service's JWTs. Access and refresh
// tokens use separate HMAC keys so one leaked key cannot forge the other
// kind.
type TokenManager struct {
	cfg           config.JWTConfig
	accessSecret  []byte
	refreshSecret []byte
}

// NewTokenManager creates a token manager from the JWT configuration.
func NewTokenManager(cfg config.JWTConfig) (*TokenManager, error) {
	if cfg.AccessTokenSecret == "" || cfg.RefreshTokenSecret == "" {
		return nil, errors.New("jwt secrets must be configured")
	}
	return &TokenManager{
		cfg:           cfg,
		accessSecret:  []byte(cfg.AccessTokenSecret),
		refreshSecret: []byte(cfg.RefreshTokenSecret),
	}, nil
}

// AccessTokenTTL returns the configured access token lifetime.
func (tm *TokenManager) AccessTokenTTL() time.Duration {
	return tm.cfg.AccessTokenTTL
}

// RefreshTokenTTL returns the configured refresh token lifetime.
func (tm *TokenManager) RefreshTokenTTL() time.Duration {
	return tm.cfg.RefreshTokenTTL
}

// GenerateAccessToken signs a short-lived access token carrying the user id
// and role.
func (tm *TokenManager) GenerateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &AccessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.cfg.AccessTokenTTL)),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tm.cfg.Issuer,
			ID:        uuid.NewString(),
		},
		UserID:    user.ID.String(),
		Role:      user.Role,
		TokenType: string(AccessToken),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.accessSecret)
}

// GenerateRefreshToken signs a refresh token embedding the user id and the
// configured seven-day expiry.
func (tm *TokenManager) GenerateRefreshToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := &RefreshTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.cfg.RefreshTokenTTL)),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tm.cfg.Issuer,
			ID:        uuid.NewString(),
		},
		UserID:    userID.String(),
		TokenType: string(RefreshToken),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.refreshSecret)
}

func (tm *TokenManager) keyFunc(secret []byte) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: unexpected signing method %v", domainErrors.ErrInvalidToken, token.Header["alg"])
		}
		return secret, nil
	}
}

// ParseAccessToken verifies an access token and returns its claims.
func (tm *TokenManager) ParseAccessToken(tokenString string) (*AccessTokenClaims, error) {
	claims := &AccessTokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, tm.keyFunc(tm.accessSecret))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domainErrors.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrInvalidToken, err)
	}
	if !token.Valid || claims.TokenType != string(AccessToken) {
		return nil, domainErrors.ErrInvalidToken
	}
	return claims, nil
}

// ParseRefreshToken verifies a refresh token and returns its claims.
func (tm *TokenManager) ParseRefreshToken(tokenString string) (*RefreshTokenClaims, error) {
	claims := &RefreshTokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, tm.keyFunc(tm.refreshSecret))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domainErrors.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrInvalidToken, err)
	}
	if !token.Valid || claims.TokenType != string(RefreshToken) {
		return nil, domainErrors.ErrInvalidToken
	}
	return claims, nil
}
