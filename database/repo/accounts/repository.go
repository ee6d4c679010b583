package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/greencampus/facility-reports/database"
	"github.com/greencampus/facility-reports/database/models"
	"gorm.io/gorm"
)

var (
	// ErrUserNotFound 用户不存在错误
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUser username or email already taken
	ErrDuplicateUser = errors.New("username or email already exists")
)

// Repository credential store
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的账户仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ProfileUpdate fields a user may change; nil leaves a field untouched
type ProfileUpdate struct {
	FullName *string
	Email    *string
	Phone    *string
	Section  *string
	Grade    *string
}

// ExistsByUsernameOrEmail checks both unique keys in one query
func (r *Repository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", username, normalizeEmail(email)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return count > 0, nil
}

// Create inserts user. A unique-index race surfaces as ErrDuplicateUser.
func (r *Repository) Create(ctx context.Context, user *models.User) error {
	user.Email = normalizeEmail(user.Email)
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByIdentifier matches identifier against username or email
func (r *Repository) FindByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", identifier, normalizeEmail(identifier)).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// GetByID 通过ID获取用户
func (r *Repository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// UpdateProfile applies the non-nil fields and returns the fresh record
func (r *Repository) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*models.User, error) {
	fields := map[string]interface{}{"updated_at": time.Now()}
	if update.FullName != nil {
		fields["full_name"] = *update.FullName
	}
	if update.Email != nil {
		fields["email"] = normalizeEmail(*update.Email)
	}
	if update.Phone != nil {
		fields["phone"] = *update.Phone
	}
	if update.Section != nil {
		fields["section"] = *update.Section
	}
	if update.Grade != nil {
		fields["grade"] = *update.Grade
	}

	if err := r.updates(ctx, id, fields); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// UpdatePassword stores a new hash and bumps updated_at
func (r *Repository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.updates(ctx, id, map[string]interface{}{
		"password":   passwordHash,
		"updated_at": time.Now(),
	})
}

// UpdateProfilePicture stores the avatar reference
func (r *Repository) UpdateProfilePicture(ctx context.Context, id, pictureURL string) (*models.User, error) {
	err := r.updates(ctx, id, map[string]interface{}{
		"profile_picture": pictureURL,
		"updated_at":      time.Now(),
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Count total registered users
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// Exists reports whether a record with id is present
func (r *Repository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *Repository) updates(ctx context.Context, id string, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		if database.IsUniqueViolation(result.Error) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
