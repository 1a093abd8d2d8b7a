package service

import (
	"context"
	"log"
	"mime/multipart"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"lingoschool_backend/internals/configs"
	"lingoschool_backend/internals/constants"
	"lingoschool_backend/internals/features/users/auth/dto"
	authRepo "lingoschool_backend/internals/features/users/auth/repository"
	userDTO "lingoschool_backend/internals/features/users/user/dto"
	userModel "lingoschool_backend/internals/features/users/user/model"
	"lingoschool_backend/internals/helpers/apperror"
	helperAuth "lingoschool_backend/internals/helpers/auth"
	"lingoschool_backend/internals/helpers/mailer"
	"lingoschool_backend/internals/helpers/storage"
)

type AuthService struct {
	DB     *gorm.DB
	Tokens *TokenService
	Mailer mailer.Mailer
	Store  storage.BlobStore
	Google GoogleVerifier
	OTPTTL time.Duration
	Now    func() time.Time
}

func NewAuthService(db *gorm.DB, cfg *configs.Config, tokens *TokenService, m mailer.Mailer, store storage.BlobStore) *AuthService {
	return &AuthService{
		DB:     db,
		Tokens: tokens,
		Mailer: m,
		Store:  store,
		Google: NewGoogleVerifier(cfg.GoogleClientID),
		OTPTTL: cfg.OTPTTL,
		Now:    time.Now,
	}
}

func invalidCredentials() error { return apperror.Unauthorized("invalid username/email or password") }

func accountDisabled() error { return apperror.Forbidden("account is disabled, contact your school") }

/* ==========================
   REGISTER
========================== */

// Register: self-registration selalu menjadi student tanpa sekolah.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.LoginResponse, error) {
	db := s.DB.WithContext(ctx)
	if taken, err := authRepo.UsernameTaken(db, req.Username); err != nil {
		return nil, errors.Wrap(err, "check username")
	} else if taken {
		return nil, apperror.Conflict("username is already taken")
	}
	if req.Email != nil {
		if taken, err := authRepo.EmailTaken(db, *req.Email, nil); err != nil {
			return nil, errors.Wrap(err, "check email")
		} else if taken {
			return nil, apperror.Conflict("email is already registered")
		}
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	u := userModel.UserModel{
		Username:     req.Username,
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: hash,
		Role:         constants.RoleStudent,
	}
	if err := authRepo.CreateUser(db, &u); err != nil {
		return nil, errors.Wrap(err, "create user")
	}
	log.Printf("[AuthService] registered student %s (%s)", u.Username, u.ID)
	return s.tokenResponse(&u)
}

/* ==========================
   LOGIN (username/email + password)
========================== */

func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	u, err := authRepo.FindUserByIdentifier(s.DB.WithContext(ctx), req.Identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidCredentials()
		}
		return nil, errors.Wrap(err, "find user")
	}
	if !CheckPassword(u.PasswordHash, req.Password) {
		return nil, invalidCredentials()
	}
	if u.IsDisabled {
		return nil, accountDisabled()
	}

	if u.TwoFactorEnabled {
		if err := s.issueOTP(ctx, u, OTPPurposeLogin); err != nil {
			return nil, err
		}
		return &dto.LoginResponse{RequiresOTP: true}, nil
	}
	return s.tokenResponse(u)
}

// VerifyLoginOTP: langkah kedua login 2FA.
func (s *AuthService) VerifyLoginOTP(ctx context.Context, req dto.VerifyOTPRequest) (*dto.LoginResponse, error) {
	db := s.DB.WithContext(ctx)
	u, err := authRepo.FindUserByIdentifier(db, req.Identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidOTP()
		}
		return nil, errors.Wrap(err, "find user")
	}
	if u.IsDisabled {
		return nil, accountDisabled()
	}
	if err := s.checkOTP(u, OTPPurposeLogin, req.Code); err != nil {
		return nil, err
	}
	if err := authRepo.ClearOTP(db, u.ID, nil); err != nil {
		return nil, errors.Wrap(err, "clear otp")
	}
	u.ClearOTP()
	return s.tokenResponse(u)
}

/* ==========================
   LOGIN GOOGLE
========================== */

var usernameUnsafe = regexp.MustCompile(`[^a-z0-9._]+`)

// LoginGoogle: cari by google_id, lalu by email (ditautkan), terakhir buat student baru.
func (s *AuthService) LoginGoogle(ctx context.Context, idToken string) (*dto.LoginResponse, error) {
	ident, err := s.Google.Verify(idToken)
	if err != nil {
		log.Printf("[AuthService] google token rejected: %v", err)
		return nil, apperror.Unauthorized("invalid Google ID token")
	}

	db := s.DB.WithContext(ctx)
	u, err := authRepo.FindUserByGoogleID(db, ident.Subject)
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		u, err = s.linkOrCreateGoogleUser(ctx, ident)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.Wrap(err, "find google user")
	}

	if u.IsDisabled {
		return nil, accountDisabled()
	}
	return s.tokenResponse(u)
}

func (s *AuthService) linkOrCreateGoogleUser(ctx context.Context, ident GoogleIdentity) (*userModel.UserModel, error) {
	db := s.DB.WithContext(ctx)
	if ident.Email != "" {
		existing, err := authRepo.FindUserByEmail(db, ident.Email)
		if err == nil {
			if err := db.Model(existing).Update("google_id", ident.Subject).Error; err != nil {
				return nil, errors.Wrap(err, "link google id")
			}
			log.Printf("[AuthService] linked google account to user %s", existing.ID)
			return existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrap(err, "find user by email")
		}
	}

	username, err := s.availableUsername(ctx, ident)
	if err != nil {
		return nil, err
	}
	// password acak; akun google login lewat id token
	hash, err := HashPassword(uuid.NewString())
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	sub := ident.Subject
	u := userModel.UserModel{
		Username:     username,
		FullName:     ident.Name,
		PasswordHash: hash,
		Role:         constants.RoleStudent,
		GoogleID:     &sub,
	}
	if ident.Email != "" {
		email := ident.Email
		u.Email = &email
	}
	if err := authRepo.CreateUser(db, &u); err != nil {
		return nil, errors.Wrap(err, "create google user")
	}
	log.Printf("[AuthService] created google student %s (%s)", u.Username, u.ID)
	return &u, nil
}

func (s *AuthService) availableUsername(ctx context.Context, ident GoogleIdentity) (string, error) {
	base := strings.ToLower(ident.Email)
	if i := strings.Index(base, "@"); i > 0 {
		base = base[:i]
	}
	base = usernameUnsafe.ReplaceAllString(base, "")
	if len(base) < 3 {
		base = "student"
	}
	if len(base) > 40 {
		base = base[:40]
	}

	db := s.DB.WithContext(ctx)
	candidate := base
	for i := 0; i < 5; i++ {
		taken, err := authRepo.UsernameTaken(db, candidate)
		if err != nil {
			return "", errors.Wrap(err, "check username")
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "_" + uuid.NewString()[:6]
	}
	return "", apperror.Conflict("could not allocate a username, please register manually")
}

/* ==========================
   PASSWORD (forgot / reset / change)
========================== */

// ForgotPassword: email tidak terdaftar dijawab sama seperti sukses.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	u, err := authRepo.FindUserByEmail(s.DB.WithContext(ctx), email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[AuthService] forgot-password for unknown email")
			return nil
		}
		return errors.Wrap(err, "find user")
	}
	if u.IsDisabled {
		return nil
	}
	return s.issueOTP(ctx, u, OTPPurposeReset)
}

func (s *AuthService) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error {
	db := s.DB.WithContext(ctx)
	u, err := authRepo.FindUserByEmail(db, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalidOTP()
		}
		return errors.Wrap(err, "find user")
	}
	if err := s.checkOTP(u, OTPPurposeReset, req.Code); err != nil {
		return err
	}
	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}
	if err := authRepo.ClearOTP(db, u.ID, map[string]any{"password_hash": hash}); err != nil {
		return errors.Wrap(err, "reset password")
	}
	log.Printf("[AuthService] password reset for user %s", u.ID)
	return nil
}

func (s *AuthService) ChangePassword(ctx context.Context, p helperAuth.Principal, req dto.ChangePasswordRequest) error {
	db := s.DB.WithContext(ctx)
	u, err := authRepo.FindUserByID(db, p.ID)
	if err != nil {
		return errors.Wrap(err, "load user")
	}
	if !CheckPassword(u.PasswordHash, req.CurrentPassword) {
		return apperror.BadRequest("current password is incorrect")
	}
	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}
	if err := authRepo.UpdateUserPassword(db, u.ID, hash); err != nil {
		return errors.Wrap(err, "update password")
	}
	return nil
}

/* ==========================
   LOGOUT
========================== */

// Logout mem-blacklist token sampai exp-nya.
func (s *AuthService) Logout(ctx context.Context, p helperAuth.Principal, rawToken string) error {
	claims, err := s.Tokens.Verify(rawToken)
	if err != nil {
		return apperror.Unauthorized("invalid token")
	}
	if err := authRepo.BlacklistToken(s.DB.WithContext(ctx), rawToken, p.ID, claims.ExpiresAt.Time); err != nil {
		return errors.Wrap(err, "blacklist token")
	}
	log.Printf("[AuthService] user %s logged out", p.ID)
	return nil
}

/* ==========================
   ME
========================== */

func (s *AuthService) Me(ctx context.Context, p helperAuth.Principal) (*userModel.UserModel, error) {
	u, err := authRepo.FindUserByID(s.DB.WithContext(ctx), p.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user")
		}
		return nil, errors.Wrap(err, "load me")
	}
	return u, nil
}

// UpdateMe: nama, email, avatar (folder avatars). Avatar lama dihapus setelah update sukses.
func (s *AuthService) UpdateMe(ctx context.Context, p helperAuth.Principal, req dto.UpdateMeRequest, avatar *multipart.FileHeader) (*userModel.UserModel, error) {
	u, err := s.Me(ctx, p)
	if err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)

	patch := map[string]any{}
	if req.FullName != nil {
		patch["full_name"] = *req.FullName
	}
	if req.Email != nil {
		if *req.Email == "" {
			if u.TwoFactorEnabled {
				return nil, apperror.Validation("email is required while two-factor is enabled")
			}
			patch["email"] = nil
		} else {
			taken, err := authRepo.EmailTaken(db, *req.Email, &u.ID)
			if err != nil {
				return nil, errors.Wrap(err, "check email")
			}
			if taken {
				return nil, apperror.Conflict("email is already registered")
			}
			patch["email"] = *req.Email
		}
	}

	var stale *string
	if avatar != nil {
		url, err := s.Store.Upload(ctx, constants.FolderAvatars, avatar)
		if err != nil {
			return nil, apperror.Upstream("storage", err)
		}
		patch["avatar_url"] = url
		stale = u.AvatarURL
	}

	if len(patch) > 0 {
		if err := db.Model(u).Updates(patch).Error; err != nil {
			if url, ok := patch["avatar_url"].(string); ok {
				storage.Cleanup(ctx, s.Store, &url)
			}
			return nil, errors.Wrap(err, "update me")
		}
		storage.Cleanup(ctx, s.Store, stale)
	}
	return s.Me(ctx, p)
}

// SetTwoFactor: aktifkan 2FA butuh email untuk OTP.
func (s *AuthService) SetTwoFactor(ctx context.Context, p helperAuth.Principal, enabled bool) (*userModel.UserModel, error) {
	u, err := s.Me(ctx, p)
	if err != nil {
		return nil, err
	}
	if enabled && (u.Email == nil || *u.Email == "") {
		return nil, apperror.Validation("set an email address before enabling two-factor")
	}
	patch := map[string]any{"two_factor_enabled": enabled}
	if !enabled {
		patch = map[string]any{"two_factor_enabled": false, "otp_code": nil, "otp_purpose": nil, "otp_expires_at": nil}
	}
	if err := s.DB.WithContext(ctx).Model(u).Updates(patch).Error; err != nil {
		return nil, errors.Wrap(err, "update two-factor")
	}
	return s.Me(ctx, p)
}

/* ==========================
   TOKEN RESPONSE
========================== */

func (s *AuthService) tokenResponse(u *userModel.UserModel) (*dto.LoginResponse, error) {
	token, exp, err := s.Tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	resp := userDTO.ToUserResponse(u)
	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   &exp,
		User:        &resp,
	}, nil
}
