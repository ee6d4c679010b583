package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/greencampus/facility-reports/database/models"
	"github.com/greencampus/facility-reports/database/repo/accounts"
	"github.com/greencampus/facility-reports/internal/apperr"
	"github.com/greencampus/facility-reports/utils/validator"
)

// ProfileInput editable profile fields; nil leaves a field untouched
type ProfileInput struct {
	FullName *string `json:"fullName"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Section  *string `json:"section"`
	Grade    *string `json:"grade"`
}

// Profile loads the stored user record
func (s *Service) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, mapUserErr(err)
	}
	return user, nil
}

// UpdateProfile applies in to the caller's own record
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*models.User, error) {
	if in.FullName != nil {
		name := strings.TrimSpace(*in.FullName)
		if name == "" {
			return nil, apperr.Validation("Full name cannot be empty")
		}
		in.FullName = &name
	}
	if in.Email != nil && !validator.IsEmail(*in.Email) {
		return nil, apperr.Validation("Please enter a valid email address")
	}

	user, err := s.users.UpdateProfile(ctx, userID, accounts.ProfileUpdate{
		FullName: in.FullName,
		Email:    in.Email,
		Phone:    in.Phone,
		Section:  in.Section,
		Grade:    in.Grade,
	})
	if err != nil {
		if errors.Is(err, accounts.ErrDuplicateUser) {
			return nil, apperr.Duplicate("Email already in use")
		}
		return nil, mapUserErr(err)
	}
	return user, nil
}

// SetProfilePicture stores the avatar reference
func (s *Service) SetProfilePicture(ctx context.Context, userID, pictureURL string) (*models.User, error) {
	if strings.TrimSpace(pictureURL) == "" {
		return nil, apperr.Validation("No file uploaded")
	}
	user, err := s.users.UpdateProfilePicture(ctx, userID, pictureURL)
	if err != nil {
		return nil, mapUserErr(err)
	}
	return user, nil
}

func mapUserErr(err error) error {
	if errors.Is(err, accounts.ErrUserNotFound) {
		return apperr.NotFound("User not found")
	}
	return apperr.Persistence(err)
}
