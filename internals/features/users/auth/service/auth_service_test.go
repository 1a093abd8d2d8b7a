package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"lingoschool_backend/internals/constants"
	"lingoschool_backend/internals/databases/dbtest"
	"lingoschool_backend/internals/features/users/auth/dto"
	authRepo "lingoschool_backend/internals/features/users/auth/repository"
	userModel "lingoschool_backend/internals/features/users/user/model"
	"lingoschool_backend/internals/helpers/apperror"
	helperAuth "lingoschool_backend/internals/helpers/auth"
	"lingoschool_backend/internals/helpers/mailer"
	"lingoschool_backend/internals/helpers/storage"
)

type fakeGoogle struct {
	ident GoogleIdentity
	err   error
}

func (f fakeGoogle) Verify(string) (GoogleIdentity, error) { return f.ident, f.err }

type authEnv struct {
	db   *gorm.DB
	svc  *AuthService
	mail *mailer.Recorder
	now  time.Time
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()
	env := &authEnv{
		db:   dbtest.Open(t),
		mail: &mailer.Recorder{},
		now:  time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
	}
	tokens := NewTokenService("test-secret", time.Hour)
	tokens.Now = func() time.Time { return env.now }
	env.svc = &AuthService{
		DB:     env.db,
		Tokens: tokens,
		Mailer: env.mail,
		Store:  storage.NewMemoryStore("https://media.test"),
		Google: fakeGoogle{err: errors.New("not configured")},
		OTPTTL: 10 * time.Minute,
		Now:    func() time.Time { return env.now },
	}
	return env
}

func (e *authEnv) register(t *testing.T, username, email string) *userModel.UserModel {
	t.Helper()
	req := dto.RegisterRequest{Username: username, Password: "secret-pass"}
	if email != "" {
		req.Email = &email
	}
	resp, err := e.svc.Register(context.Background(), req)
	require.NoError(t, err)
	var u userModel.UserModel
	require.NoError(t, e.db.First(&u, "id = ?", resp.User.ID).Error)
	return &u
}

func (e *authEnv) reload(t *testing.T, id any) *userModel.UserModel {
	t.Helper()
	var u userModel.UserModel
	require.NoError(t, e.db.First(&u, "id = ?", id).Error)
	return &u
}

func statusOf(err error) int {
	if ae, ok := apperror.As(err); ok {
		return ae.Status
	}
	return 0
}

func TestRegisterAndLogin(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()

	u := env.register(t, "andi", "Andi@Example.com")
	assert.Equal(t, constants.RoleStudent, u.Role)
	assert.Nil(t, u.SchoolID)
	require.NotNil(t, u.Email)
	assert.Equal(t, "andi@example.com", *u.Email)

	t.Run("duplicate username is a conflict", func(t *testing.T) {
		_, err := env.svc.Register(ctx, dto.RegisterRequest{Username: "andi", Password: "secret-pass"})
		assert.Equal(t, http.StatusConflict, statusOf(err))
	})

	t.Run("login by username or email", func(t *testing.T) {
		for _, id := range []string{"andi", "andi@example.com"} {
			resp, err := env.svc.Login(ctx, dto.LoginRequest{Identifier: id, Password: "secret-pass"})
			require.NoError(t, err)
			assert.False(t, resp.RequiresOTP)
			assert.NotEmpty(t, resp.AccessToken)

			claims, err := env.svc.Tokens.Verify(resp.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, u.ID.String(), claims.ID)
			assert.Equal(t, "student", claims.Role)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := env.svc.Login(ctx, dto.LoginRequest{Identifier: "andi", Password: "nope"})
		assert.Equal(t, http.StatusUnauthorized, statusOf(err))
	})

	t.Run("disabled account", func(t *testing.T) {
		require.NoError(t, env.db.Model(&userModel.UserModel{}).Where("id = ?", u.ID).Update("is_disabled", true).Error)
		defer env.db.Model(&userModel.UserModel{}).Where("id = ?", u.ID).Update("is_disabled", false)

		_, err := env.svc.Login(ctx, dto.LoginRequest{Identifier: "andi", Password: "secret-pass"})
		assert.Equal(t, http.StatusForbidden, statusOf(err))
	})
}

func TestTwoFactorLogin(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()
	u := env.register(t, "budi", "budi@example.com")
	p := helperAuth.Principal{ID: u.ID, Role: u.Role, Username: u.Username}

	_, err := env.svc.SetTwoFactor(ctx, p, true)
	require.NoError(t, err)

	resp, err := env.svc.Login(ctx, dto.LoginRequest{Identifier: "budi", Password: "secret-pass"})
	require.NoError(t, err)
	assert.True(t, resp.RequiresOTP)
	assert.Empty(t, resp.AccessToken)

	msg, ok := env.mail.Last()
	require.True(t, ok)
	assert.Equal(t, "budi@example.com", msg.To)

	stored := env.reload(t, u.ID)
	require.NotNil(t, stored.OTPCode)
	assert.Len(t, *stored.OTPCode, 6)
	assert.Contains(t, msg.HTML, *stored.OTPCode)

	t.Run("wrong code", func(t *testing.T) {
		wrong := "000000"
		if *stored.OTPCode == wrong {
			wrong = "111111"
		}
		_, err := env.svc.VerifyLoginOTP(ctx, dto.VerifyOTPRequest{Identifier: "budi", Code: wrong})
		assert.Equal(t, http.StatusBadRequest, statusOf(err))
	})

	t.Run("reset code cannot be used for login", func(t *testing.T) {
		require.NoError(t, env.db.Model(&userModel.UserModel{}).Where("id = ?", u.ID).Update("otp_purpose", OTPPurposeReset).Error)
		defer env.db.Model(&userModel.UserModel{}).Where("id = ?", u.ID).Update("otp_purpose", OTPPurposeLogin)

		_, err := env.svc.VerifyLoginOTP(ctx, dto.VerifyOTPRequest{Identifier: "budi", Code: *stored.OTPCode})
		assert.Equal(t, http.StatusBadRequest, statusOf(err))
	})

	t.Run("valid code issues token and clears otp", func(t *testing.T) {
		resp, err := env.svc.VerifyLoginOTP(ctx, dto.VerifyOTPRequest{Identifier: "budi", Code: *stored.OTPCode})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.Nil(t, env.reload(t, u.ID).OTPCode)

		_, err = env.svc.VerifyLoginOTP(ctx, dto.VerifyOTPRequest{Identifier: "budi", Code: *stored.OTPCode})
		assert.Equal(t, http.StatusBadRequest, statusOf(err))
	})

	t.Run("expired code", func(t *testing.T) {
		_, err := env.svc.Login(ctx, dto.LoginRequest{Identifier: "budi", Password: "secret-pass"})
		require.NoError(t, err)
		code := *env.reload(t, u.ID).OTPCode

		env.now = env.now.Add(10 * time.Minute)
		defer func() { env.now = env.now.Add(-10 * time.Minute) }()

		_, err = env.svc.VerifyLoginOTP(ctx, dto.VerifyOTPRequest{Identifier: "budi", Code: code})
		assert.Equal(t, http.StatusBadRequest, statusOf(err))
	})
}

func TestTwoFactorRequiresEmail(t *testing.T) {
	env := newAuthEnv(t)
	u := env.register(t, "cici", "")
	_, err := env.svc.SetTwoFactor(context.Background(), helperAuth.Principal{ID: u.ID, Role: u.Role}, true)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestForgotAndResetPassword(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()
	u := env.register(t, "dodi", "dodi@example.com")

	t.Run("unknown email is silent", func(t *testing.T) {
		require.NoError(t, env.svc.ForgotPassword(ctx, "ghost@example.com"))
		assert.Empty(t, env.mail.Messages)
	})

	t.Run("mail failure is 502 and otp stays", func(t *testing.T) {
		env.mail.Err = errors.New("sendgrid down")
		defer func() { env.mail.Err = nil }()

		err := env.svc.ForgotPassword(ctx, "dodi@example.com")
		assert.Equal(t, http.StatusBadGateway, statusOf(err))
		assert.True(t, apperror.HasCode(err, apperror.CodeUpstream))
		assert.NotNil(t, env.reload(t, u.ID).OTPCode)
	})

	require.NoError(t, env.svc.ForgotPassword(ctx, "dodi@example.com"))
	code := *env.reload(t, u.ID).OTPCode

	err := env.svc.ResetPassword(ctx, dto.ResetPasswordRequest{Email: "dodi@example.com", Code: code, NewPassword: "brand-new-pass"})
	require.NoError(t, err)

	after := env.reload(t, u.ID)
	assert.Nil(t, after.OTPCode)
	assert.True(t, CheckPassword(after.PasswordHash, "brand-new-pass"))

	_, err = env.svc.Login(ctx, dto.LoginRequest{Identifier: "dodi", Password: "secret-pass"})
	assert.Equal(t, http.StatusUnauthorized, statusOf(err))
}

func TestChangePasswordAndLogout(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()
	u := env.register(t, "eka", "")
	p := helperAuth.Principal{ID: u.ID, Role: u.Role, Username: u.Username}

	err := env.svc.ChangePassword(ctx, p, dto.ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "another-pass"})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	require.NoError(t, env.svc.ChangePassword(ctx, p, dto.ChangePasswordRequest{CurrentPassword: "secret-pass", NewPassword: "another-pass"}))
	resp, err := env.svc.Login(ctx, dto.LoginRequest{Identifier: "eka", Password: "another-pass"})
	require.NoError(t, err)

	require.NoError(t, env.svc.Logout(ctx, p, resp.AccessToken))
	blacklisted, err := authRepo.IsTokenBlacklisted(env.db, resp.AccessToken)
	require.NoError(t, err)
	assert.True(t, blacklisted)

	// logout kedua tidak error
	require.NoError(t, env.svc.Logout(ctx, p, resp.AccessToken))
}

func TestLoginGoogle(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()

	t.Run("invalid token", func(t *testing.T) {
		_, err := env.svc.LoginGoogle(ctx, "bad")
		assert.Equal(t, http.StatusUnauthorized, statusOf(err))
	})

	env.svc.Google = fakeGoogle{ident: GoogleIdentity{Subject: "g-123", Email: "fina.putri@gmail.com", Name: "Fina Putri"}}

	first, err := env.svc.LoginGoogle(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "fina.putri", first.User.Username)
	assert.Equal(t, constants.RoleStudent, first.User.Role)

	second, err := env.svc.LoginGoogle(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)

	t.Run("existing email is linked", func(t *testing.T) {
		u := env.register(t, "gilang", "gilang@example.com")
		env.svc.Google = fakeGoogle{ident: GoogleIdentity{Subject: "g-456", Email: "gilang@example.com"}}

		resp, err := env.svc.LoginGoogle(ctx, "token")
		require.NoError(t, err)
		assert.Equal(t, u.ID, resp.User.ID)
		linked := env.reload(t, u.ID)
		require.NotNil(t, linked.GoogleID)
		assert.Equal(t, "g-456", *linked.GoogleID)
	})
}

func TestTokenServiceExpiry(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	ts := NewTokenService("k", time.Hour)
	ts.Now = func() time.Time { return now }

	token, exp, err := ts.Issue(&userModel.UserModel{Username: "x", Role: constants.RoleTeacher})
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), exp)

	_, err = ts.Verify(token)
	require.NoError(t, err)

	now = now.Add(time.Hour)
	_, err = ts.Verify(token)
	assert.Error(t, err)

	other := NewTokenService("other", time.Hour)
	other.Now = ts.Now
	_, err = other.Verify(token)
	assert.Error(t, err)
}

func TestClaimsRejectUnknownRole(t *testing.T) {
	c := Claims{ID: "6f1c2d1e-4b43-4c1f-9d6e-1c4ad1f0a111", Role: "owner"}
	_, err := c.Principal()
	assert.Error(t, err)

	c.Role = "teacher"
	p, err := c.Principal()
	require.NoError(t, err)
	assert.Equal(t, constants.RoleTeacher, p.Role)
}
