package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/greencampus/facility-reports/database/models"
	"github.com/greencampus/facility-reports/utils"
)

// ErrInvalidToken malformed, tampered or expired session token
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenClaims JWT 令牌声明
type TokenClaims struct {
	UserID    string
	Username  string
	Role      models.Role
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// JWTService signs and verifies HS256 session tokens
type JWTService struct {
	secret    []byte
	expiresIn time.Duration
	now       func() time.Time
}

// NewJWTService 创建新的 JWT 服务
func NewJWTService(secret string, expiresIn time.Duration) (*JWTService, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("JWT secret must be at least 32 characters long, got %d", len(secret))
	}
	if expiresIn <= 0 {
		return nil, fmt.Errorf("JWT lifetime must be positive, got %v", expiresIn)
	}
	return &JWTService{
		secret:    []byte(secret),
		expiresIn: expiresIn,
		now:       time.Now,
	}, nil
}

// ExpiresIn token lifetime
func (s *JWTService) ExpiresIn() time.Duration {
	return s.expiresIn
}

// GenerateToken issues a token carrying the user's id, username and role
func (s *JWTService) GenerateToken(user *models.User) (string, time.Time, error) {
	jti, err := utils.GenerateRandomToken(12)
	if err != nil {
		return "", time.Time{}, err
	}

	now := s.now()
	expiry := now.Add(s.expiresIn)
	claims := jwt.MapClaims{
		"userId":   user.ID,
		"username": user.Username,
		"role":     string(user.Role),
		"jti":      jti,
		"exp":      expiry.Unix(),
		"iat":      now.Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expiry, nil
}

// ParseToken 解析和验证 JWT 令牌
func (s *JWTService) ParseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ExtractClaims 从令牌中提取声明
func (s *JWTService) ExtractClaims(tokenString string) (*TokenClaims, error) {
	claims, err := s.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}

	userID, _ := claims["userId"].(string)
	if userID == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	username, _ := claims["username"].(string)
	role, _ := claims["role"].(string)
	expFloat, _ := claims["exp"].(float64)
	iatFloat, _ := claims["iat"].(float64)

	return &TokenClaims{
		UserID:    userID,
		Username:  username,
		Role:      models.Role(role),
		ExpiresAt: time.Unix(int64(expFloat), 0),
		IssuedAt:  time.Unix(int64(iatFloat), 0),
	}, nil
}
