package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ravigill3969/textgen-quota/models"
	"github.com/ravigill3969/textgen-quota/repositories"
	"github.com/ravigill3969/textgen-quota/utils"
)

type AuthService struct {
	users  repositories.UserRepository
	quota  *QuotaService
	tokens *utils.TokenService

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(users repositories.UserRepository, quota *QuotaService, tokens *utils.TokenService) *AuthService {
	return &AuthService{users: users, quota: quota, tokens: tokens}
}

// Session is a freshly signed token plus the body sent alongside the cookie.
type Session struct {
	Token    string
	Response models.LoginRes
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeRegistration(form models.RegisterForm) (models.RegisterForm, error) {
	form.Username = strings.TrimSpace(form.Username)
	form.Email = normalizeEmail(form.Email)
	if err := validateForm(form); err != nil {
		return form, err
	}
	return form, nil
}

func (s *AuthService) Register(ctx context.Context, form models.RegisterForm) (*models.User, error) {
	form, err := normalizeRegistration(form)
	if err != nil {
		return nil, err
	}
	return s.createUser(ctx, form, false)
}

// CreateAdmin is only reachable from the command line; is_admin is never
// settable over HTTP.
func (s *AuthService) CreateAdmin(ctx context.Context, form models.RegisterForm) (*models.User, error) {
	form, err := normalizeRegistration(form)
	if err != nil {
		return nil, err
	}
	return s.createUser(ctx, form, true)
}

func (s *AuthService) createUser(ctx context.Context, form models.RegisterForm, admin bool) (*models.User, error) {
	hash, err := utils.HashPassword(form.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     form.Username,
		Email:        form.Email,
		PasswordHash: hash,
		IsAdmin:      admin,
	}
	if err := s.users.Create(ctx, user, s.quota.DefaultCalls()); err != nil {
		return nil, storeError(err)
	}

	slog.InfoContext(ctx, "user registered", "user_id", user.ID, "is_admin", admin)
	return user, nil
}

// checkDummy burns one bcrypt comparison so unknown emails take as long as
// wrong passwords.
func (s *AuthService) checkDummy(password string) {
	s.dummyOnce.Do(func() {
		hash, err := utils.HashPassword("not-a-real-password")
		if err != nil {
			slog.Error("failed to prepare dummy hash", "error", err)
			return
		}
		s.dummyHash = hash
	})
	utils.CheckPasswordHash(password, s.dummyHash)
}

func (s *AuthService) Login(ctx context.Context, form models.LoginForm) (*Session, error) {
	form.Email = normalizeEmail(form.Email)
	if err := validateForm(form); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, form.Email)
	if errors.Is(err, repositories.ErrNotFound) {
		s.checkDummy(form.Password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !utils.CheckPasswordHash(form.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.issue(ctx, user)
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*Session, error) {
	remaining, err := s.quota.Read(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.CreateToken(*user, remaining)
	if err != nil {
		return nil, err
	}

	return &Session{
		Token: token,
		Response: models.LoginRes{
			APICalls: remaining,
			IsAdmin:  user.IsAdmin,
			Username: user.Username,
		},
	}, nil
}

// UpdateUsername renames target. Callers may rename themselves; admins may
// rename anyone. A new session is returned only when callers renamed
// themselves, so an admin never picks up another user's identity.
func (s *AuthService) UpdateUsername(ctx context.Context, caller *utils.Claims, target uuid.UUID, username string) (*Session, error) {
	username = strings.TrimSpace(username)
	if err := validateForm(models.UpdateUser{Username: username}); err != nil {
		return nil, err
	}

	self := caller.UserUUID() == target
	if !self && !caller.IsAdmin {
		return nil, ErrForbidden
	}

	user, err := s.users.UpdateUsername(ctx, target, username)
	if err != nil {
		return nil, storeError(err)
	}

	if !self {
		return nil, nil
	}
	return s.issue(ctx, user)
}

// CheckUser reports the stored profile, not the token's copy, so renames
// show up before the session is refreshed.
func (s *AuthService) CheckUser(ctx context.Context, claims *utils.Claims) (*models.CheckUserRes, error) {
	user, err := s.users.GetByID(ctx, claims.UserUUID())
	if err != nil {
		return nil, storeError(err)
	}

	remaining, err := s.quota.Read(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &models.CheckUserRes{
		IsAdmin:  user.IsAdmin,
		APICalls: remaining,
		ID:       user.ID,
		Username: user.Username,
	}, nil
}

func (s *AuthService) APICalls(ctx context.Context, claims *utils.Claims) (int, error) {
	return s.quota.Read(ctx, claims.UserUUID())
}

func (s *AuthService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}
