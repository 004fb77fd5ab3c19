package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/adithyakesavan/taskdeck/internal/models"
	"github.com/adithyakesavan/taskdeck/internal/repository"
)

func setupAuthService(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.PasswordReset{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return NewAuthService(repository.NewUserRepository(db)), db
}

func TestAuthService_Signup(t *testing.T) {
	service, _ := setupAuthService(t)

	user, err := service.Signup(SignupInput{
		Name:     "  Test User  ",
		Email:    "Test@Example.COM",
		Password: "supersecret",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "Test User", user.Name)
	assert.Equal(t, "test@example.com", user.Email, "emails are stored lowercased")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("supersecret")))
}

func TestAuthService_Signup_Validation(t *testing.T) {
	service, _ := setupAuthService(t)

	_, err := service.Signup(SignupInput{Name: " ", Email: "a@b.com", Password: "supersecret"})
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = service.Signup(SignupInput{Name: "x", Email: "", Password: "supersecret"})
	assert.ErrorIs(t, err, ErrEmailRequired)

	_, err = service.Signup(SignupInput{Name: "x", Email: "a@b.com", Password: "short"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestAuthService_Signup_DuplicateEmail(t *testing.T) {
	service, _ := setupAuthService(t)

	_, err := service.Signup(SignupInput{Name: "x", Email: "a@b.com", Password: "supersecret"})
	require.NoError(t, err)

	_, err = service.Signup(SignupInput{Name: "y", Email: "A@B.com", Password: "supersecret"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthService_Login(t *testing.T) {
	service, _ := setupAuthService(t)
	_, err := service.Signup(SignupInput{Name: "x", Email: "a@b.com", Password: "supersecret"})
	require.NoError(t, err)

	user, err := service.Login(LoginInput{Email: "A@b.COM", Password: "supersecret"})
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", user.Email)

	_, err = service.Login(LoginInput{Email: "a@b.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Login(LoginInput{Email: "nobody@b.com", Password: "supersecret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_GetUser(t *testing.T) {
	service, _ := setupAuthService(t)
	created, err := service.Signup(SignupInput{Name: "x", Email: "a@b.com", Password: "supersecret"})
	require.NoError(t, err)

	user, err := service.GetUser(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Email, user.Email)

	_, err = service.GetUser("missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	service, _ := setupAuthService(t)
	created, err := service.Signup(SignupInput{Name: "x", Email: "a@b.com", Password: "supersecret"})
	require.NoError(t, err)

	name := "Renamed"
	avatar := "https://example.com/p.png"
	user, err := service.UpdateProfile(created.ID, ProfilePatch{Name: &name, ProfilePictureURL: &avatar})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", user.Name)
	assert.Equal(t, avatar, user.ProfilePictureURL)

	empty := "  "
	_, err = service.UpdateProfile(created.ID, ProfilePatch{Name: &empty})
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestAuthService_RequestPasswordReset(t *testing.T) {
	service, db := setupAuthService(t)
	created, err := service.Signup(SignupInput{Name: "x", Email: "a@b.com", Password: "supersecret"})
	require.NoError(t, err)

	require.NoError(t, service.RequestPasswordReset("A@b.com"))

	var resets []models.PasswordReset
	require.NoError(t, db.Where("user_id = ?", created.ID).Find(&resets).Error)
	require.Len(t, resets, 1)
	assert.Len(t, resets[0].Token, 48)
	assert.False(t, resets[0].ExpiresAt.IsZero())
}

func TestAuthService_RequestPasswordReset_UnknownEmailIsSilent(t *testing.T) {
	service, db := setupAuthService(t)

	require.NoError(t, service.RequestPasswordReset("nobody@example.com"))

	var count int64
	db.Model(&models.PasswordReset{}).Count(&count)
	assert.Zero(t, count)
}
