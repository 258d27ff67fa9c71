package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Petrenko-Anton/HW-13-REST/internal/handler/http/middleware"
	"github.com/Petrenko-Anton/HW-13-REST/internal/service"
)

// UserHandler exposes account endpoints for the authenticated user.
type UserHandler struct {
	auth   *service.AuthService
	logger *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(auth *service.AuthService, logger *zap.Logger) *UserHandler {
	return &UserHandler{auth: auth, logger: logger.Named("user_handler")}
}

// Me returns the caller's account.
// GET /api/users/me
func (h *UserHandler) Me(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		RespondWithError(c, http.StatusUnauthorized, "could not validate credentials", "credentials_invalid")
		return
	}

	user, err := h.auth.Me(c.Request.Context(), principal)
	if err != nil {
		RespondWithDomainError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, userResponse{
		ID:        user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		Avatar:    user.Avatar,
		Confirmed: user.Confirmed,
	})
}
