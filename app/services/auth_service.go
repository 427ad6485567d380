package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/nutrieve/nutrieve/app/models"
	"github.com/nutrieve/nutrieve/app/repositories"
	"github.com/nutrieve/nutrieve/pkg/auth"
	"github.com/nutrieve/nutrieve/pkg/logger"
	"github.com/nutrieve/nutrieve/pkg/mail"
	"github.com/nutrieve/nutrieve/pkg/metrics"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrResetFailed is what callers of ResetPassword see. The specific
	// reasons below wrap it and only reach the logs.
	ErrResetFailed       = errors.New("invalid or expired reset code")
	ErrResetNotRequested = fmt.Errorf("%w: no reset requested", ErrResetFailed)
	ErrResetCodeMismatch = fmt.Errorf("%w: code mismatch", ErrResetFailed)
	ErrResetExpired      = fmt.Errorf("%w: code expired", ErrResetFailed)
	ErrResetLocked       = fmt.Errorf("%w: too many attempts", ErrResetFailed)
)

const (
	OTPTTL            = 10 * time.Minute
	OTPResendCooldown = 60 * time.Second
	MaxOTPAttempts    = 5
)

type SignupInput struct {
	Name     string `json:"name"     validate:"required,max=255"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,ascii,min=8,max=16"`
	Phone    string `json:"phone"    validate:"nullable,max=20"`
}

type LoginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordInput struct {
	Email       string `json:"email"        validate:"required,email"`
	OTP         string `json:"otp"          validate:"required,digits=6"`
	NewPassword string `json:"new_password" validate:"required,ascii,min=8,max=16"`
}

// AuthResult is returned by Signup and Login.
type AuthResult struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int64       `json:"expires_in"`
	User        models.User `json:"user"`
}

type AuthService struct {
	users  *repositories.UserRepository
	tokens *auth.TokenManager
	mailer *mail.Mailer
	now    func() time.Time
}

func NewAuthService(db *gorm.DB, tokens *auth.TokenManager, mailer *mail.Mailer) *AuthService {
	return &AuthService{
		users:  repositories.NewUserRepository(db),
		tokens: tokens,
		mailer: mailer,
		now:    time.Now,
	}
}

// Signup registers a customer and logs them in.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		metrics.RecordAuth("signup", "conflict")
		return AuthResult{}, ErrEmailTaken
	case !errors.Is(err, repositories.ErrNotFound):
		return AuthResult{}, fmt.Errorf("signup: lookup email: %w", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("signup: %w", err)
	}

	user := models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: hash,
		Phone:    strings.TrimSpace(in.Phone),
		Role:     models.RoleCustomer,
		IsActive: true,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			metrics.RecordAuth("signup", "conflict")
			return AuthResult{}, ErrEmailTaken
		}
		return AuthResult{}, fmt.Errorf("signup: create user: %w", err)
	}

	metrics.RecordAuth("signup", "success")
	logger.WithCtx(ctx).Info("user signed up", "user_id", user.ID)
	return s.issue(user)
}

// Login checks the credentials of an active user. Unknown email, wrong
// password and inactive accounts all fail with ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (AuthResult, error) {
	user, err := s.users.FindActiveByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			metrics.RecordAuth("login", "failure")
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("login: lookup email: %w", err)
	}

	if !auth.CheckPassword(user.Password, in.Password) {
		metrics.RecordAuth("login", "failure")
		return AuthResult{}, ErrInvalidCredentials
	}

	metrics.RecordAuth("login", "success")
	return s.issue(user)
}

func (s *AuthService) issue(user models.User) (AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}
	return AuthResult{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
		User:        user,
	}, nil
}

// Authenticate resolves a bearer token to an active user. It satisfies
// middleware.Authenticator.
func (s *AuthService) Authenticate(ctx context.Context, token string) (auth.Principal, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return auth.Principal{}, err
	}

	user, err := s.users.FindActiveByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return auth.Principal{}, auth.ErrUnknownSubject
		}
		return auth.Principal{}, fmt.Errorf("authenticate: %w", err)
	}
	if claims.UserID != 0 && claims.UserID != user.ID {
		return auth.Principal{}, auth.ErrUnknownSubject
	}

	return auth.Principal{UserID: user.ID, Email: user.Email, Role: user.Role}, nil
}

// Me returns the caller's account.
func (s *AuthService) Me(ctx context.Context, userID uint) (models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// ForgotPassword issues and emails a reset code. It returns nil for unknown
// emails and inside the resend cooldown so responses never reveal whether
// an account exists.
func (s *AuthService) ForgotPassword(ctx context.Context, in ForgotPasswordInput) error {
	log := logger.WithCtx(ctx)

	user, err := s.users.FindActiveByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			log.Info("password reset for unknown email")
			metrics.RecordAuth("forgot_password", "unknown")
			return nil
		}
		return fmt.Errorf("forgot password: lookup email: %w", err)
	}

	now := s.now().UTC()
	if user.LastOTPSentAt != nil && now.Sub(*user.LastOTPSentAt) < OTPResendCooldown {
		log.Info("password reset throttled", "user_id", user.ID)
		metrics.RecordAuth("forgot_password", "throttled")
		return nil
	}

	code, err := auth.GenerateOTP()
	if err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}
	expiry := now.Add(OTPTTL)

	user.ResetCode = &code
	user.ResetExpiry = &expiry
	user.OTPAttempts = 0
	user.LastOTPSentAt = &now
	if err := s.users.Save(ctx, &user); err != nil {
		return fmt.Errorf("forgot password: save code: %w", err)
	}

	if err := s.mailer.Send(ctx, passwordResetEmail(user, code, int(OTPTTL.Minutes()))); err != nil {
		log.Error("send password reset email", "user_id", user.ID, "error", err)
	}
	metrics.RecordAuth("forgot_password", "sent")
	return nil
}

// ResetPassword consumes a reset code. Every failure wraps ErrResetFailed.
func (s *AuthService) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	err := s.resetPassword(ctx, in)
	switch {
	case err == nil:
		metrics.RecordAuth("reset_password", "success")
	case errors.Is(err, ErrResetFailed):
		metrics.RecordAuth("reset_password", "failure")
		logger.WithCtx(ctx).Warn("password reset rejected", "reason", err)
	}
	return err
}

func (s *AuthService) resetPassword(ctx context.Context, in ResetPasswordInput) error {
	user, err := s.users.FindActiveByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrResetNotRequested
		}
		return fmt.Errorf("reset password: lookup email: %w", err)
	}

	if user.ResetCode == nil || user.ResetExpiry == nil {
		return ErrResetNotRequested
	}
	if user.OTPAttempts >= MaxOTPAttempts {
		return ErrResetLocked
	}
	if !s.now().UTC().Before(*user.ResetExpiry) {
		return ErrResetExpired
	}

	if subtle.ConstantTimeCompare([]byte(*user.ResetCode), []byte(strings.TrimSpace(in.OTP))) != 1 {
		user.OTPAttempts++
		if err := s.users.Save(ctx, &user); err != nil {
			return fmt.Errorf("reset password: count attempt: %w", err)
		}
		return ErrResetCodeMismatch
	}

	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	user.Password = hash
	user.ResetCode = nil
	user.ResetExpiry = nil
	user.OTPAttempts = 0
	if err := s.users.Save(ctx, &user); err != nil {
		return fmt.Errorf("reset password: save: %w", err)
	}
	return nil
}
