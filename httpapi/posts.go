package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"newsroom/domain"
	"newsroom/services"
)

type submitRequest struct {
	Title  string   `json:"title" binding:"required"`
	Body   string   `json:"body" binding:"required"`
	Images []string `json:"images"`
}

func (h *Handler) SubmitPost(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid or missing credentials"})
		return
	}

	post, err := h.content.Submit(c.Request.Context(), actor, services.SubmitPayload{
		Title:  req.Title,
		Body:   req.Body,
		Images: req.Images,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toPostResponse(post))
}

func (h *Handler) GetPost(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found"})
		return
	}

	post, err := h.content.View(c.Request.Context(), postID, optionalActor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPostResponse(post))
}

func (h *Handler) ListPosts(c *gin.Context) {
	limit := intQuery(c, "limit", 10)
	offset := intQuery(c, "offset", 0)

	posts, total, err := h.content.ListApproved(c.Request.Context(), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"posts": toPostResponses(posts),
		"total": total,
	})
}

func (h *Handler) SearchPosts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "Query parameter q is required"})
		return
	}
	limit := intQuery(c, "limit", 10)

	posts, err := h.content.SearchApproved(c.Request.Context(), query, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": toPostResponses(posts)})
}

type editRequest struct {
	Title  *string   `json:"title"`
	Body   *string   `json:"body"`
	Images *[]string `json:"images"`
}

func (h *Handler) EditPost(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found"})
		return
	}

	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	actor, _ := currentActor(c)
	post, err := h.content.Edit(c.Request.Context(), postID, actor, domain.PostPatch{
		Title:  req.Title,
		Body:   req.Body,
		Images: req.Images,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPostResponse(post))
}

func (h *Handler) DeletePost(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found"})
		return
	}

	actor, _ := currentActor(c)
	if err := h.content.Delete(c.Request.Context(), postID, actor); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ApprovePost(c *gin.Context) {
	h.moderate(c, h.content.Approve)
}

func (h *Handler) RejectPost(c *gin.Context) {
	h.moderate(c, h.content.Reject)
}

func (h *Handler) moderate(c *gin.Context,
	action func(ctx context.Context, postID int64, actor domain.Actor) (domain.Post, error)) {
	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found"})
		return
	}

	actor, _ := currentActor(c)
	post, err := action(c.Request.Context(), postID, actor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPostResponse(post))
}

func (h *Handler) ListComments(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found"})
		return
	}

	// Comments are only readable on posts the caller can see.
	if _, err := h.content.View(c.Request.Context(), postID, optionalActor(c)); err != nil {
		writeError(c, err)
		return
	}

	var cursor *string
	if raw := c.Query("cursor"); raw != "" {
		cursor = &raw
	}

	comments, next, err := h.comments.ListByPost(postID, cursor)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := gin.H{"comments": toCommentResponses(comments)}
	if next != nil {
		resp["next_cursor"] = *next
	}
	c.JSON(http.StatusOK, resp)
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
