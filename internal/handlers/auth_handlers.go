package handlers

import (
	"errors"
	"net/http"

	"medishift_backend/internal/middleware"
	"medishift_backend/internal/services"
	"medishift_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the auth service.
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as services.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

// LoginUser handles credential verification and token issuance.
func (h *AuthHandler) LoginUser(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	resp, err := h.authService.LoginUser(req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid username or password.", ""))
			return
		}
		utils.LogError(err, "LoginUser: Error from authService.LoginUser")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Login failed.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// LogoutUser acknowledges a logout. Tokens are stateless, so the client
// discards the token; nothing is revoked server-side.
func (h *AuthHandler) LogoutUser(c *gin.Context) {
	if _, ok := middleware.CurrentUserID(c); !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", ""))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully."})
}

// GetCurrentUser returns the profile of the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", ""))
		return
	}

	user, err := h.authService.GetUserProfile(userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "User not found.", err.Error()))
			return
		}
		utils.LogError(err, "GetCurrentUser: Error from authService.GetUserProfile")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch user profile.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, user)
}
