package handlers

import (
	"errors"
	"net/http"

	"github.com/suchockipawel/nottodo/internal/auth"
	"github.com/suchockipawel/nottodo/internal/dto"
	"github.com/suchockipawel/nottodo/internal/service"

	"github.com/gin-gonic/gin"
)

const sessionCookieName = "session_id"

// AuthHandler handles login, register, logout and email change.
type AuthHandler struct {
	sessions *auth.Store
	userSvc  *service.UserService
}

// NewAuthHandler returns a new AuthHandler.
func NewAuthHandler(sessions *auth.Store, userSvc *service.UserService) *AuthHandler {
	return &AuthHandler{sessions: sessions, userSvc: userSvc}
}

// Login godoc
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "Credentials"
// @Success      200   {object}  map[string]bool
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.userSvc.ValidateCredentials(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	sessionID, err := h.sessions.Create(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	c.SetCookie(sessionCookieName, sessionID, 24*60*60, "/", "", false, true) // 24h, httpOnly
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": dto.UserResponse{ID: user.ID, Username: user.Username, Email: user.Email}})
}

// Register godoc
// @Summary      Register
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterRequest  true  "Credentials"
// @Success      201   {object}  map[string]bool
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.userSvc.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusBadRequest, gin.H{"error": "username, email and password required"})
		case errors.Is(err, service.ErrUsernameTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "email address already in use"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		}
		return
	}
	sessionID, err := h.sessions.Create(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	c.SetCookie(sessionCookieName, sessionID, 24*60*60, "/", "", false, true) // 24h, httpOnly
	c.JSON(http.StatusCreated, gin.H{"ok": true, "user": dto.UserResponse{ID: user.ID, Username: user.Username, Email: user.Email}})
}

// Logout godoc
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID, err := c.Cookie(sessionCookieName)
	if err == nil && sessionID != "" {
		_ = h.sessions.Delete(c.Request.Context(), sessionID)
	}
	c.SetCookie(sessionCookieName, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}

// ChangeEmail godoc
// @Summary      Change the reminder email address
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body  dto.ChangeEmailRequest  true  "New email"
// @Success      200   {object}  dto.UserResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/email [patch]
func (h *AuthHandler) ChangeEmail(c *gin.Context) {
	var req dto.ChangeEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := auth.UserIDFromContext(c)
	user, err := h.userSvc.ChangeEmail(c.Request.Context(), userID, req.Email)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "email address already in use"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "email change failed"})
		return
	}
	c.JSON(http.StatusOK, dto.UserResponse{ID: user.ID, Username: user.Username, Email: user.Email})
}
