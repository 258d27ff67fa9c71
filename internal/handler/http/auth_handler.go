package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Petrenko-Anton/HW-13-REST/internal/handler/http/middleware"
	"github.com/Petrenko-Anton/HW-13-REST/internal/service"
	"github.com/Petrenko-Anton/HW-13-REST/internal/utils/metrics"
)

// AuthHandler exposes the authentication endpoints.
type AuthHandler struct {
	auth   *service.AuthService
	logger *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger.Named("auth_handler")}
}

type signupRequest struct {
	Username string `json:"username" binding:"required,min=2,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type userResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Avatar    string `json:"avatar,omitempty"`
	Confirmed bool   `json:"confirmed"`
}

// Signup registers a new account.
// POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, "invalid request payload", "bad_request")
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		metrics.RegistrationAttemptsTotal.WithLabelValues("failure").Inc()
		RespondWithDomainError(c, h.logger, err)
		return
	}

	metrics.RegistrationAttemptsTotal.WithLabelValues("success").Inc()
	c.JSON(http.StatusCreated, gin.H{
		"user": userResponse{
			ID:        user.ID.String(),
			Username:  user.Username,
			Email:     user.Email,
			Avatar:    user.Avatar,
			Confirmed: user.Confirmed,
		},
		"detail": "User successfully created. Check your email for confirmation.",
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login exchanges credentials for a token pair.
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, "invalid request payload", "bad_request")
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		RespondWithDomainError(c, h.logger, err)
		return
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, pair)
}

// RefreshToken rotates a refresh token, presented as a bearer credential,
// into a new pair.
// GET /api/auth/refresh_token
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	token, ok := middleware.BearerToken(c)
	if !ok {
		RespondWithError(c, http.StatusUnauthorized, "could not validate credentials", "credentials_invalid")
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), token)
	if err != nil {
		metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
		RespondWithDomainError(c, h.logger, err)
		return
	}

	metrics.TokenRefreshTotal.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, pair)
}

// ConfirmEmail consumes a verification token.
// GET /api/auth/confirmed_email/:token
func (h *AuthHandler) ConfirmEmail(c *gin.Context) {
	email, err := h.auth.ConfirmEmail(c.Request.Context(), c.Param("token"))
	if err != nil {
		RespondWithDomainError(c, h.logger, err)
		return
	}

	h.logger.Info("email confirmed", zap.String("email", email))
	RespondWithMessage(c, http.StatusOK, "Email confirmed")
}

type requestEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// RequestEmail re-sends the confirmation email. The response is identical
// whether or not the account exists.
// POST /api/auth/request_email
func (h *AuthHandler) RequestEmail(c *gin.Context) {
	var req requestEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, "invalid request payload", "bad_request")
		return
	}

	if err := h.auth.RequestVerification(c.Request.Context(), req.Email); err != nil {
		RespondWithDomainError(c, h.logger, err)
		return
	}

	RespondWithMessage(c, http.StatusOK, "Check your email for confirmation.")
}

// Logout revokes the caller's refresh token.
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		RespondWithError(c, http.StatusUnauthorized, "could not validate credentials", "credentials_invalid")
		return
	}

	if err := h.auth.Logout(c.Request.Context(), principal.Email); err != nil {
		RespondWithDomainError(c, h.logger, err)
		return
	}

	RespondWithMessage(c, http.StatusOK, "Logged out")
}

type changePasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// ChangePassword rehashes the caller's password and revokes the active
// session.
// PATCH /api/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		RespondWithError(c, http.StatusUnauthorized, "could not validate credentials", "credentials_invalid")
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, "invalid request payload", "bad_request")
		return
	}

	if err := h.auth.ChangeSecret(c.Request.Context(), principal.Email, req.NewPassword); err != nil {
		RespondWithDomainError(c, h.logger, err)
		return
	}

	RespondWithMessage(c, http.StatusOK, "Password updated, please log in again")
}
