package server

import (
	"fmt"
	"strconv"
	"time"

	"sellerhood/internal/authstore"
	"sellerhood/internal/models"
	"sellerhood/internal/observability"
	"sellerhood/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Signup handles POST /api/auth/signup.
func (s *Server) Signup(c *fiber.Ctx) error {
	var req service.SignUpInput
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("잘못된 요청입니다."))
	}

	user, err := s.authService.SignUp(c.Context(), req)
	if err != nil {
		return respondError(c, err)
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	s.sessions.Dispatch(c.Context(), user.ID, authstore.Event{
		Kind:    authstore.EventSignedIn,
		Session: &authstore.Session{UserID: user.ID},
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Login handles POST /api/auth/login.
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("잘못된 요청입니다."))
	}

	user, err := s.authService.SignIn(c.Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	s.sessions.Dispatch(c.Context(), user.ID, authstore.Event{
		Kind:    authstore.EventSignedIn,
		Session: &authstore.Session{UserID: user.ID},
	})

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Logout handles POST /api/auth/logout. The presented token is denylisted,
// the account-wide sign-out cutoff is recorded through the session store,
// and the store clears synchronously. A failed backend call leaves the
// session state untouched.
func (s *Server) Logout(c *fiber.Ctx) error {
	userID := currentUserID(c)
	jti, _ := c.Locals("jti").(string)
	exp, _ := c.Locals("tokenExp").(time.Time)

	store := s.sessions.StoreFor(c.Context(), userID)
	if err := store.SignOut(c.Context()); err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	if err := s.authService.RevokeToken(c.Context(), jti, exp); err != nil {
		observability.GlobalLogger.Warn("token denylist write failed",
			"user_id", userID, "error", err.Error())
	}

	return c.JSON(fiber.Map{"message": "로그아웃되었습니다."})
}

// Refresh handles POST /api/auth/refresh: a fresh token for a still-valid
// session.
func (s *Server) Refresh(c *fiber.Ctx) error {
	userID := currentUserID(c)

	token, err := s.generateToken(userID)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	s.sessions.Dispatch(c.Context(), userID, authstore.Event{
		Kind:    authstore.EventTokenRefreshed,
		Session: &authstore.Session{UserID: userID},
	})

	return c.JSON(fiber.Map{"token": token})
}

// Me handles GET /api/auth/me.
func (s *Server) Me(c *fiber.Ctx) error {
	user, err := s.authService.CurrentUser(c.Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}

// SessionState handles GET /api/auth/session: the session store's current
// snapshot, including whether the initial resolution is still in flight.
func (s *Server) SessionState(c *fiber.Ctx) error {
	state := s.sessions.StoreFor(c.Context(), currentUserID(c)).Snapshot()
	return c.JSON(fiber.Map{
		"user":    state.User,
		"loading": state.Loading,
	})
}

// ForgotPassword handles POST /api/auth/forgot-password. The response is
// identical whether or not the email has an account.
func (s *Server) ForgotPassword(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("잘못된 요청입니다."))
	}

	token, err := s.authService.RequestPasswordReset(c.Context(), req.Email)
	if err != nil {
		return respondError(c, err)
	}
	if token != "" {
		// Mail delivery is handled out of process; the reset link lands in
		// the outbound queue via the log pipeline.
		observability.GlobalLogger.Info("password reset issued",
			"reset_url", fmt.Sprintf("%s/reset-password?token=%s", s.config.SiteBaseURL, token))
	}

	return c.JSON(fiber.Map{"message": "입력하신 이메일로 안내를 보냈습니다."})
}

// ResetPassword handles POST /api/auth/reset-password.
func (s *Server) ResetPassword(c *fiber.Ctx) error {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("잘못된 요청입니다."))
	}

	if err := s.authService.ResetPassword(c.Context(), req.Token, req.Password); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "비밀번호가 변경되었습니다."})
}

// generateToken creates a JWT for the given user ID.
func (s *Server) generateToken(userID uint) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": "sellerhood-api",
		"aud": "sellerhood-client",
		"exp": now.Add(service.TokenTTL).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}
