// Package service implements the application's business logic on top of the
// repositories. Read paths go through the query cache; mutations keep the
// cache synchronized by patching or invalidating the affected keys.
package service

import (
	"context"
	"fmt"
	"time"

	"sellerhood/internal/models"
	"sellerhood/internal/observability"
	"sellerhood/internal/repository"
	"sellerhood/internal/validation"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// PasswordResetTTL bounds how long a reset token stays claimable.
const PasswordResetTTL = time.Hour

// TokenTTL is the lifetime of an issued access token; revocation records
// never need to outlive it.
const TokenTTL = 7 * 24 * time.Hour

const (
	revokedTokenKeyPrefix = "revoked:"
	signOutCutoffPrefix   = "signout-cutoff:"
)

// SignUpInput carries everything collected by the signup form, including the
// onboarding survey answers.
type SignUpInput struct {
	Email            string   `json:"email"`
	Password         string   `json:"password"`
	Nickname         string   `json:"nickname"`
	SellerExperience string   `json:"seller_experience"`
	OnlinePlatforms  []string `json:"online_platforms"`
	Expectations     string   `json:"expectations"`
}

// AuthService handles account lifecycle: signup, credential checks, session
// teardown, and password resets. Issued-token revocation is tracked in Redis
// so sign-out takes effect before the JWT expires on its own.
type AuthService struct {
	users repository.UserRepository
	redis *redis.Client
}

// NewAuthService creates a new AuthService. rdb may be nil in tests; token
// revocation then degrades to expiry-only.
func NewAuthService(users repository.UserRepository, rdb *redis.Client) *AuthService {
	return &AuthService{users: users, redis: rdb}
}

// SignUp creates an account in two phases: the identity row first, then the
// profile row carrying the nickname and survey answers. When the second phase
// fails the identity is kept and the failure is reported distinctly, so the
// caller knows the account exists; the missing profile is healed on the next
// sign-in.
func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (*models.AuthUser, error) {
	if err := validation.ValidateEmail(input.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(input.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateNickname(input.Nickname); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	existing, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if existing != nil {
		return nil, models.NewConflictError("이미 가입된 이메일입니다.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{Email: input.Email, Password: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, models.NewInternalError(err)
	}

	profile := &models.Profile{
		UserID:           user.ID,
		Nickname:         input.Nickname,
		SellerExperience: input.SellerExperience,
		OnlinePlatforms:  input.OnlinePlatforms,
		Expectations:     input.Expectations,
	}
	if err := s.users.CreateProfile(ctx, profile); err != nil {
		observability.GlobalLogger.Error("profile setup failed after identity creation",
			"user_id", user.ID, "error", err.Error())
		return nil, models.NewProfileSetupError(err)
	}

	return models.MergeAuthUser(user, profile), nil
}

// SignIn verifies credentials and returns the merged session user. Unknown
// emails and wrong passwords are indistinguishable to the caller. An
// orphaned identity (signup phase two failed) is healed here with a minimal
// profile derived from the email.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*models.AuthUser, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("이메일 또는 비밀번호가 올바르지 않습니다.")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("이메일 또는 비밀번호가 올바르지 않습니다.")
	}

	profile, err := s.users.GetProfileByUserID(ctx, user.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if profile == nil {
		healed := models.MergeAuthUser(user, nil)
		profile = &models.Profile{UserID: user.ID, Nickname: healed.Nickname}
		if err := s.users.CreateProfile(ctx, profile); err != nil {
			// Sign-in still succeeds with the degraded view.
			observability.GlobalLogger.Warn("orphaned profile heal failed",
				"user_id", user.ID, "error", err.Error())
			return healed, nil
		}
		observability.GlobalLogger.Info("healed orphaned identity", "user_id", user.ID)
	}

	return models.MergeAuthUser(user, profile), nil
}

// CurrentUser loads the merged session user for an authenticated identity.
func (s *AuthService) CurrentUser(ctx context.Context, userID uint) (*models.AuthUser, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, models.NewUnauthorizedError("세션이 만료되었습니다. 다시 로그인해주세요.")
	}
	return models.MergeAuthUser(user, user.Profile), nil
}

// RevokeToken denylists a token ID until its natural expiry. Used by
// sign-out so the bearer token stops working immediately.
func (s *AuthService) RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.redis == nil {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.redis.Set(ctx, revokedTokenKeyPrefix+jti, "1", ttl).Err(); err != nil {
		observability.RedisErrors.WithLabelValues("revoke_token").Inc()
		return models.NewInternalError(err)
	}
	return nil
}

// IsTokenRevoked reports whether the token ID has been denylisted. Redis
// outages fail open: expiry remains the backstop.
func (s *AuthService) IsTokenRevoked(ctx context.Context, jti string) bool {
	if s.redis == nil || jti == "" {
		return false
	}
	n, err := s.redis.Exists(ctx, revokedTokenKeyPrefix+jti).Result()
	if err != nil {
		observability.RedisErrors.WithLabelValues("check_token").Inc()
		return false
	}
	return n > 0
}

// SignOutUser records a sign-out cutoff for the account: every token issued
// at or before this moment stops working on all devices. Tokens issued by a
// later sign-in are unaffected.
func (s *AuthService) SignOutUser(ctx context.Context, userID uint) error {
	if s.redis == nil {
		return nil
	}
	key := fmt.Sprintf("%s%d", signOutCutoffPrefix, userID)
	now := time.Now().Unix()
	if err := s.redis.Set(ctx, key, now, TokenTTL).Err(); err != nil {
		observability.RedisErrors.WithLabelValues("signout_cutoff").Inc()
		return models.NewInternalError(err)
	}
	return nil
}

// IsSessionRevoked reports whether the presented token should be rejected:
// either its ID was denylisted or it predates the account's sign-out cutoff.
// Redis outages fail open; expiry remains the backstop.
func (s *AuthService) IsSessionRevoked(ctx context.Context, userID uint, jti string, issuedAt time.Time) bool {
	if s.IsTokenRevoked(ctx, jti) {
		return true
	}
	if s.redis == nil || issuedAt.IsZero() {
		return false
	}
	cutoff, err := s.redis.Get(ctx, fmt.Sprintf("%s%d", signOutCutoffPrefix, userID)).Int64()
	if err != nil {
		if err != redis.Nil {
			observability.RedisErrors.WithLabelValues("check_cutoff").Inc()
		}
		return false
	}
	return issuedAt.Unix() <= cutoff
}

// RequestPasswordReset issues a single-use reset token for the account. A
// mail for an unknown email is silently dropped so the endpoint does not
// reveal which addresses have accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return "", models.NewValidationError(err.Error())
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	if user == nil {
		return "", nil
	}

	token := uuid.NewString()
	reset := &models.PasswordReset{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(PasswordResetTTL),
	}
	if err := s.users.CreatePasswordReset(ctx, reset); err != nil {
		return "", models.NewInternalError(err)
	}
	return token, nil
}

// ResetPassword claims a reset token and replaces the account password.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := validation.ValidatePassword(newPassword); err != nil {
		return models.NewValidationError(err.Error())
	}

	reset, err := s.users.ConsumePasswordReset(ctx, token)
	if err != nil {
		return models.NewUnauthorizedError("유효하지 않거나 만료된 링크입니다.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	if err := s.users.UpdatePassword(ctx, reset.UserID, string(hash)); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// FetchAuthUser adapts CurrentUser to the session store's fetch contract.
func (s *AuthService) FetchAuthUser(ctx context.Context, userID uint) (*models.AuthUser, error) {
	au, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch auth user %d: %w", userID, err)
	}
	return au, nil
}
