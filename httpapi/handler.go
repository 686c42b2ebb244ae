// Package httpapi is the transport surface: JSON routes, the SSE
// notification feed, and the websocket chat channel. It maps domain
// errors to status codes and keeps all business rules in the layers
// below.
package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"newsroom/auth"
	"newsroom/chat"
	"newsroom/domain"
	apperrors "newsroom/errors"
	"newsroom/notify"
	"newsroom/repositories"
	"newsroom/services"
)

type Handler struct {
	log      *slog.Logger
	content  services.IContentService
	comments repositories.ICommentRepository
	users    repositories.IUserRepository
	features repositories.IFeatureRequestRepository
	notifier *notify.Notifier
	hub      *chat.Hub
	verifier *auth.Verifier
	secret   []byte
	tokenTTL time.Duration
}

func NewHandler(log *slog.Logger, content services.IContentService,
	comments repositories.ICommentRepository, users repositories.IUserRepository,
	features repositories.IFeatureRequestRepository,
	notifier *notify.Notifier, hub *chat.Hub, verifier *auth.Verifier,
	secret []byte, tokenTTL time.Duration) *Handler {
	return &Handler{
		log:      log,
		content:  content,
		comments: comments,
		users:    users,
		features: features,
		notifier: notifier,
		hub:      hub,
		verifier: verifier,
		secret:   secret,
		tokenTTL: tokenTTL,
	}
}

// writeError maps the domain error taxonomy onto HTTP responses.
// NotFound deliberately covers hidden-by-policy entities too.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"detail": "Access denied"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"detail": "Status already set"})
	case errors.Is(err, apperrors.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid or missing credentials"})
	case errors.Is(err, apperrors.ErrUserAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"detail": "User already exists"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal error"})
	}
}

type postResponse struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	Images    []string `json:"images,omitempty"`
	Status    string   `json:"status"`
	AuthorID  int64    `json:"author_id"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

func toPostResponse(post domain.Post) postResponse {
	return postResponse{
		ID:        post.ID,
		Title:     post.Title,
		Body:      post.Body,
		Images:    post.Images,
		Status:    string(post.Status),
		AuthorID:  post.AuthorID,
		CreatedAt: post.CreatedAt.Format(time.RFC3339),
		UpdatedAt: post.UpdatedAt.Format(time.RFC3339),
	}
}

func toPostResponses(posts []domain.Post) []postResponse {
	return lo.Map(posts, func(post domain.Post, _ int) postResponse {
		return toPostResponse(post)
	})
}

type commentResponse struct {
	ID        int64  `json:"id"`
	PostID    int64  `json:"post_id"`
	AuthorID  int64  `json:"author_id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

func toCommentResponses(comments []domain.Comment) []commentResponse {
	return lo.Map(comments, func(comment domain.Comment, _ int) commentResponse {
		return commentResponse{
			ID:        comment.ID,
			PostID:    comment.PostID,
			AuthorID:  comment.AuthorID,
			Content:   comment.Content,
			CreatedAt: comment.CreatedAt.Format(time.RFC3339),
		}
	})
}
