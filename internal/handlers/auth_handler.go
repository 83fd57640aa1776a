package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/BruksfildServices01/opsdesk/internal/config"
	"github.com/BruksfildServices01/opsdesk/internal/httperr"
	"github.com/BruksfildServices01/opsdesk/internal/middleware"
	"github.com/BruksfildServices01/opsdesk/internal/models"
	ucSession "github.com/BruksfildServices01/opsdesk/internal/usecase/session"
)

type AuthHandler struct {
	login  *ucSession.Login
	logout *ucSession.Logout
	config *config.Config
}

func NewAuthHandler(login *ucSession.Login, logout *ucSession.Logout, cfg *config.Config) *AuthHandler {
	return &AuthHandler{login: login, logout: logout, config: cfg}
}

// --------- Requests ---------

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// --------- Handlers ---------

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.login.Execute(c.Request.Context(), req.Username, req.Password)
	if !httperr.WarnPartial(c, err) {
		httperr.Respond(c, err)
		return
	}

	token, err := h.generateToken(user)
	if err != nil {
		httperr.Internal(c, "failed_to_generate_token", "failed to generate token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  userView(user),
		"token": token,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	err := h.logout.Execute(c.Request.Context(), actorFrom(c))
	if !httperr.WarnPartial(c, err) {
		httperr.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --------- JWT ---------

func (h *AuthHandler) generateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":                 user.ID,
		middleware.ClaimRole:  user.Role,
		middleware.ClaimEmail: user.Email,
		middleware.ClaimName:  user.FullName,
		"exp":                 now.Add(h.config.JWTTTL).Unix(),
		"iat":                 now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.config.JWTSecret))
}

func userView(u *models.User) gin.H {
	return gin.H{
		"id":        u.ID,
		"username":  u.Username,
		"email":     u.Email,
		"full_name": u.FullName,
		"role":      u.Role,
		"is_active": u.IsActive,
	}
}
