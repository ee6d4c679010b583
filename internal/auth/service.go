package auth

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/greencampus/facility-reports/database/models"
	"github.com/greencampus/facility-reports/database/repo/accounts"
	"github.com/greencampus/facility-reports/internal/apperr"
	"github.com/greencampus/facility-reports/internal/worker"
	"github.com/greencampus/facility-reports/utils"
	cryptopackage "github.com/greencampus/facility-reports/utils/crypto"
	"github.com/greencampus/facility-reports/utils/validator"
)

// RegisterInput signup form
type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
	Role     models.Role
	Section  string
	Grade    string
	Phone    string
}

// LoginResult 登录结果
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// CacheInvalidator drops aggregates that count users
type CacheInvalidator interface {
	RefreshCache(ctx context.Context) error
}

// Service registers users, checks credentials and rotates passwords
type Service struct {
	users       *accounts.Repository
	tokens      *JWTService
	invalidator CacheInvalidator
}

// NewService 创建认证服务; invalidator may be nil
func NewService(users *accounts.Repository, tokens *JWTService, invalidator CacheInvalidator) *Service {
	return &Service{users: users, tokens: tokens, invalidator: invalidator}
}

// Register creates an account. Username and email must both be unused.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)

	if in.Username == "" || in.Email == "" || in.Password == "" || in.FullName == "" || in.Role == "" {
		return nil, apperr.Validation("Please fill in all required fields")
	}
	if !validator.IsEmail(in.Email) {
		return nil, apperr.Validation("Please enter a valid email address")
	}
	if !in.Role.Valid() {
		return nil, apperr.Validation("Please select a valid role")
	}

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	if exists {
		return nil, apperr.Duplicate("Username or email already exists")
	}

	hash, err := cryptopackage.GenerateFromPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hash,
		FullName: in.FullName,
		Role:     in.Role,
		Section:  strings.TrimSpace(in.Section),
		Grade:    strings.TrimSpace(in.Grade),
		Phone:    strings.TrimSpace(in.Phone),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, accounts.ErrDuplicateUser) {
			return nil, apperr.Duplicate("Username or email already exists")
		}
		return nil, apperr.Persistence(err)
	}

	log.Printf("[Auth] Registered user %s (%s)", utils.SanitizeLogUsername(user.Username), user.Role)
	s.invalidate()
	return user, nil
}

func (s *Service) invalidate() {
	if s.invalidator == nil {
		return
	}
	worker.Submit(func() {
		if err := s.invalidator.RefreshCache(context.Background()); err != nil {
			log.Printf("[Auth] Failed to refresh dashboard cache: %v", err)
		}
	})
}

// Login accepts a username or an email as identifier. Unknown users and
// wrong passwords fail identically.
func (s *Service) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, apperr.Authentication()
	}

	user, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, accounts.ErrUserNotFound) {
			return nil, apperr.Authentication()
		}
		return nil, apperr.Persistence(err)
	}

	match, needsRehash, err := cryptopackage.VerifyPassword(password, user.Password)
	if err != nil {
		log.Printf("[Auth] Unreadable password hash for user %s: %v", utils.SanitizeLogUsername(user.Username), err)
		return nil, apperr.Authentication()
	}
	if !match {
		return nil, apperr.Authentication()
	}

	if needsRehash {
		s.upgradeHash(ctx, user, password)
	}

	token, expiry, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: expiry, User: user}, nil
}

// upgradeHash replaces a legacy bcrypt hash; failure only delays the upgrade
func (s *Service) upgradeHash(ctx context.Context, user *models.User, password string) {
	hash, err := cryptopackage.GenerateFromPassword(password)
	if err != nil {
		log.Printf("[Auth] Failed to re-hash legacy password for %s: %v", utils.SanitizeLogUsername(user.Username), err)
		return
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		log.Printf("[Auth] Failed to store upgraded hash for %s: %v", utils.SanitizeLogUsername(user.Username), err)
		return
	}
	user.Password = hash
	log.Printf("[Auth] Upgraded legacy password hash for %s", utils.SanitizeLogUsername(user.Username))
}

// Verify resolves a bearer token to its claims
func (s *Service) Verify(token string) (*TokenClaims, error) {
	return s.tokens.ExtractClaims(token)
}

// ChangePassword requires the current password and applies the strength policy
func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	if current == "" || next == "" {
		return apperr.Validation("Current password and new password are required")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, accounts.ErrUserNotFound) {
			return apperr.NotFound("User not found")
		}
		return apperr.Persistence(err)
	}

	match, _, err := cryptopackage.VerifyPassword(current, user.Password)
	if err != nil || !match {
		return apperr.Validation("Current password is incorrect")
	}
	if err := validator.CheckPasswordStrength(next); err != nil {
		return apperr.Validation(err.Error())
	}
	if current == next {
		return apperr.Validation("New password must be different from current password")
	}

	hash, err := cryptopackage.GenerateFromPassword(next)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return apperr.Persistence(err)
	}

	log.Printf("[Auth] Password changed for user %s", utils.SanitizeLogUsername(user.Username))
	return nil
}
