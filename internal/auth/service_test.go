package auth

import (
	"context"
	"testing"

	"github.com/greencampus/facility-reports/database/dbtest"
	"github.com/greencampus/facility-reports/database/models"
	"github.com/greencampus/facility-reports/database/repo/accounts"
	"github.com/greencampus/facility-reports/internal/apperr"
	cryptopackage "github.com/greencampus/facility-reports/utils/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const strongPassword = "Str0ng!pass"

func newTestService(t *testing.T) (*Service, *accounts.Repository) {
	t.Helper()
	repo := accounts.NewRepository(dbtest.Open(t))
	return NewService(repo, newTestJWT(t), nil), repo
}

func validInput() RegisterInput {
	return RegisterInput{
		Username: "kamal",
		Email:    "kamal@school.lk",
		Password: strongPassword,
		FullName: "Kamal Perera",
		Role:     models.RoleClassTeacher,
		Section:  "Primary",
		Grade:    "Grade 4",
	}
}

func TestRegister_StoresHashedPassword(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, validInput())
	require.NoError(t, err)

	stored, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, strongPassword, stored.Password)
	assert.Contains(t, stored.Password, "$argon2id$")
	assert.Equal(t, "Primary", stored.Section)
}

func TestRegister_Duplicate(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, validInput())
	require.NoError(t, err)

	sameName := validInput()
	sameName.Email = "other@school.lk"
	_, err = svc.Register(ctx, sameName)
	assert.True(t, apperr.Is(err, apperr.KindDuplicate))
	assert.Equal(t, "Username or email already exists", apperr.PublicMessage(err))

	sameEmail := validInput()
	sameEmail.Username = "someone"
	_, err = svc.Register(ctx, sameEmail)
	assert.True(t, apperr.Is(err, apperr.KindDuplicate))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"missing username", func(in *RegisterInput) { in.Username = " " }},
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }},
		{"unknown role", func(in *RegisterInput) { in.Role = "Janitor" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := svc.Register(context.Background(), in)
			assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
		})
	}
}

func TestRegister_AcceptsAnyNonEmptyPassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	in := validInput()
	in.Password = "abc"
	_, err := svc.Register(ctx, in)
	require.NoError(t, err)

	res, err := svc.Login(ctx, "kamal", "abc")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) RefreshCache(context.Context) error {
	c.calls++
	return nil
}

func TestRegister_RefreshesDashboardCache(t *testing.T) {
	invalidator := &countingInvalidator{}
	svc := NewService(accounts.NewRepository(dbtest.Open(t)), newTestJWT(t), invalidator)

	_, err := svc.Register(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, 1, invalidator.calls)

	_, err = svc.Register(context.Background(), validInput())
	require.Error(t, err)
	assert.Equal(t, 1, invalidator.calls, "failed signups leave the cache alone")
}

func TestLogin_ByUsernameOrEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	registered, err := svc.Register(ctx, validInput())
	require.NoError(t, err)

	for _, identifier := range []string{"kamal", "kamal@school.lk"} {
		res, err := svc.Login(ctx, identifier, strongPassword)
		require.NoError(t, err, identifier)
		assert.Equal(t, registered.ID, res.User.ID)

		claims, err := svc.Verify(res.Token)
		require.NoError(t, err)
		assert.Equal(t, registered.ID, claims.UserID)
		assert.Equal(t, models.RoleClassTeacher, claims.Role)
	}
}

func TestLogin_GenericFailure(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, validInput())
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, "kamal", "Wrong!pass1")
	_, unknownUser := svc.Login(ctx, "nobody", strongPassword)

	for _, err := range []error{wrongPassword, unknownUser} {
		assert.True(t, apperr.Is(err, apperr.KindAuthentication))
		assert.Equal(t, "Invalid credentials", apperr.PublicMessage(err))
	}
}

func TestLogin_UpgradesLegacyHash(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	legacy, err := bcrypt.GenerateFromPassword([]byte("oldsecret"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		Username: "legacy",
		Email:    "legacy@school.lk",
		Password: string(legacy),
		FullName: "Legacy User",
		Role:     models.RoleWorker,
	}
	require.NoError(t, repo.Create(ctx, user))

	_, err = svc.Login(ctx, "legacy", "oldsecret")
	require.NoError(t, err)

	stored, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, cryptopackage.IsLegacyHash(stored.Password))

	_, err = svc.Login(ctx, "legacy", "oldsecret")
	assert.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	user, err := svc.Register(ctx, validInput())
	require.NoError(t, err)
	before, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user.ID, "Wrong!pass1", "N3w!secret")
	assert.Equal(t, "Current password is incorrect", apperr.PublicMessage(err))

	err = svc.ChangePassword(ctx, user.ID, strongPassword, "weak")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	require.NoError(t, svc.ChangePassword(ctx, user.ID, strongPassword, "N3w!secret"))

	after, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, after.UpdatedAt.Before(before.UpdatedAt))

	_, err = svc.Login(ctx, "kamal", strongPassword)
	assert.Error(t, err)
	_, err = svc.Login(ctx, "kamal", "N3w!secret")
	assert.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	user, err := svc.Register(ctx, validInput())
	require.NoError(t, err)

	other := validInput()
	other.Username = "nimal"
	other.Email = "nimal@school.lk"
	_, err = svc.Register(ctx, other)
	require.NoError(t, err)

	phone := "0771234567"
	updated, err := svc.UpdateProfile(ctx, user.ID, ProfileInput{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, phone, updated.Phone)
	assert.Equal(t, "Kamal Perera", updated.FullName)

	taken := "nimal@school.lk"
	_, err = svc.UpdateProfile(ctx, user.ID, ProfileInput{Email: &taken})
	assert.True(t, apperr.Is(err, apperr.KindDuplicate))

	blank := "  "
	_, err = svc.UpdateProfile(ctx, user.ID, ProfileInput{FullName: &blank})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Profile(ctx, "missing")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
