package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"newsroom/domain"
	"newsroom/repositories"
)

// Role management. Admin-only: approvers moderate content, they do not
// manage accounts.

type userResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}

func toUserResponse(user repositories.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		Role:      string(user.Role),
		Active:    user.Active,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

type updateRoleRequest struct {
	UserID  int64  `json:"user_id" binding:"required"`
	NewRole string `json:"new_role" binding:"required"`
}

func (h *Handler) UpdateUserRole(c *gin.Context) {
	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	newRole, err := domain.ParseRole(req.NewRole)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	actor, _ := currentActor(c)
	// An admin cannot remove their own admin role; the system could end up
	// with no administrator at all.
	if req.UserID == actor.ID && newRole != domain.RoleAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Cannot remove your own admin role"})
		return
	}

	target, err := h.users.GetByID(req.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	oldRole := target.Role
	if err := h.users.SetRole(target.ID, newRole); err != nil {
		writeError(c, err)
		return
	}
	target.Role = newRole

	h.log.Info("User role updated",
		"user_id", target.ID,
		"old_role", string(oldRole),
		"new_role", string(newRole),
		"actor_id", actor.ID)

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("User role updated from %s to %s", oldRole, newRole),
		"user":    toUserResponse(target),
	})
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.users.List()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, lo.Map(users, func(user repositories.User, _ int) userResponse {
		return toUserResponse(user)
	}))
}

func (h *Handler) GetUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found"})
		return
	}

	user, err := h.users.GetByID(userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}
