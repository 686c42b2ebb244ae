package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"newsroom/auth"
	"newsroom/domain"
	apperrors "newsroom/errors"
)

type registerResponse struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (h *Handler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	if err := auth.ValidateRegister(req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.log.Error("hash password", "error", err)
		writeError(c, err)
		return
	}

	user, err := h.users.Create(req.Email, req.Username, hash, domain.RoleUser)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, registerResponse{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
		Role:     string(user.Role),
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	user, err := h.users.GetByEmail(req.Email)
	if err != nil {
		// Same response for unknown email and wrong password.
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid or missing credentials"})
		return
	}

	match, err := auth.ComparePassword(req.Password, user.PasswordHash)
	if err != nil || !match || !user.Active {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid or missing credentials"})
		return
	}

	token, err := auth.GenerateToken(h.secret, user.ID, user.Role, h.tokenTTL)
	if err != nil {
		h.log.Error("generate token", "error", err)
		writeError(c, apperrors.ErrUnauthenticated)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
	})
}
