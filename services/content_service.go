//go:generate go run go.uber.org/mock/mockgen -source=content_service.go -destination=../mocks/mock_content_service.go -package=mocks
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"newsroom/domain"
	"newsroom/errors"
	"newsroom/notify"
	"newsroom/repositories"
	"newsroom/search"
)

// Publisher is the notification sink lifecycle events are emitted to.
type Publisher interface {
	Publish(e notify.Event)
}

type SubmitPayload struct {
	Title  string
	Body   string
	Images []string
}

type IContentService interface {
	Submit(ctx context.Context, actor domain.Actor, payload SubmitPayload) (domain.Post, error)
	View(ctx context.Context, postID int64, actor *domain.Actor) (domain.Post, error)
	ListApproved(ctx context.Context, limit, offset int) ([]domain.Post, int, error)
	SearchApproved(ctx context.Context, query string, limit int) ([]domain.Post, error)
	Edit(ctx context.Context, postID int64, actor domain.Actor, patch domain.PostPatch) (domain.Post, error)
	Delete(ctx context.Context, postID int64, actor domain.Actor) error
	Approve(ctx context.Context, postID int64, actor domain.Actor) (domain.Post, error)
	Reject(ctx context.Context, postID int64, actor domain.Actor) (domain.Post, error)
	VisiblePost(ctx context.Context, postID int64, actor *domain.Actor) (domain.Post, error)
}

// ContentService owns the post lifecycle. Every mutation goes through the
// access policy; every read goes through the repository's deleted-posts
// filter, so a deleted post is NotFound everywhere.
type ContentService struct {
	log       *slog.Logger
	posts     repositories.IPostRepository
	publisher Publisher
	index     search.IIndex
}

func NewContentService(log *slog.Logger, posts repositories.IPostRepository,
	publisher Publisher, index search.IIndex) *ContentService {
	return &ContentService{log: log, posts: posts, publisher: publisher, index: index}
}

// Submit creates a pending post and announces it to subscribed moderators.
// It succeeds for any authenticated actor.
func (s *ContentService) Submit(_ context.Context, actor domain.Actor, payload SubmitPayload) (domain.Post, error) {
	now := time.Now().UTC()
	post, err := s.posts.Create(domain.Post{
		Title:     payload.Title,
		Body:      payload.Body,
		Images:    payload.Images,
		Status:    domain.StatusPending,
		AuthorID:  actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return domain.Post{}, fmt.Errorf("create post: %w", err)
	}

	s.publisher.Publish(notify.NewPendingPost{
		PostID:   post.ID,
		Title:    post.Title,
		AuthorID: post.AuthorID,
	})
	s.log.Info("Post submitted", "post_id", post.ID, "author_id", actor.ID)
	return post, nil
}

// View returns the post iff the actor may see it. Missing, deleted, and
// hidden-by-policy all collapse into ErrNotFound.
func (s *ContentService) View(_ context.Context, postID int64, actor *domain.Actor) (domain.Post, error) {
	post, err := s.posts.Get(postID)
	if err != nil {
		return domain.Post{}, err
	}
	if !domain.CanView(post, actor) {
		return domain.Post{}, errors.ErrNotFound
	}
	return post, nil
}

// VisiblePost is View under the name the chat gate contract uses.
func (s *ContentService) VisiblePost(ctx context.Context, postID int64, actor *domain.Actor) (domain.Post, error) {
	return s.View(ctx, postID, actor)
}

func (s *ContentService) ListApproved(_ context.Context, limit, offset int) ([]domain.Post, int, error) {
	return s.posts.ListApproved(limit, offset)
}

// SearchApproved resolves index hits back through the repository; a hit
// whose post has meanwhile been deleted is dropped.
func (s *ContentService) SearchApproved(ctx context.Context, query string, limit int) ([]domain.Post, error) {
	ids, err := s.index.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	posts := make([]domain.Post, 0, len(ids))
	for _, id := range ids {
		post, err := s.posts.Get(id)
		if err != nil {
			continue
		}
		if post.Status == domain.StatusApproved {
			posts = append(posts, post)
		}
	}
	return posts, nil
}

// Edit applies a partial patch. Admins edit anything; the author may edit
// while the post is not approved, including after rejection. Editing a
// rejected post does NOT move it back to pending.
func (s *ContentService) Edit(_ context.Context, postID int64, actor domain.Actor, patch domain.PostPatch) (domain.Post, error) {
	post, err := s.posts.Get(postID)
	if err != nil {
		return domain.Post{}, err
	}
	if !domain.CanEdit(post, actor) {
		return domain.Post{}, errors.ErrForbidden
	}

	patch.Apply(&post)
	post.UpdatedAt = time.Now().UTC()
	if err := s.posts.Update(post); err != nil {
		return domain.Post{}, err
	}
	return post, nil
}

// Delete sets the deletion timestamp. A second delete finds nothing: the
// repository no longer returns the post.
func (s *ContentService) Delete(_ context.Context, postID int64, actor domain.Actor) error {
	post, err := s.posts.Get(postID)
	if err != nil {
		return err
	}
	if !domain.CanDelete(post, actor) {
		return errors.ErrForbidden
	}

	now := time.Now().UTC()
	post.DeletedAt = &now
	if err := s.posts.Update(post); err != nil {
		return err
	}
	if err := s.index.RemovePost(post.ID); err != nil {
		s.log.Warn("Failed to unindex deleted post", "post_id", post.ID, "error", err)
	}
	s.log.Info("Post deleted", "post_id", post.ID, "actor_id", actor.ID)
	return nil
}

func (s *ContentService) Approve(ctx context.Context, postID int64, actor domain.Actor) (domain.Post, error) {
	return s.transition(ctx, postID, actor, domain.StatusApproved)
}

func (s *ContentService) Reject(ctx context.Context, postID int64, actor domain.Actor) (domain.Post, error) {
	return s.transition(ctx, postID, actor, domain.StatusRejected)
}

// transition moves the post to the target status. Moving to the status
// the post already has is a conflict and mutates nothing.
func (s *ContentService) transition(_ context.Context, postID int64, actor domain.Actor, target domain.PostStatus) (domain.Post, error) {
	post, err := s.posts.Get(postID)
	if err != nil {
		return domain.Post{}, err
	}
	if !domain.CanModerate(actor) {
		return domain.Post{}, errors.ErrForbidden
	}
	if post.Status == target {
		return domain.Post{}, errors.ErrConflict
	}

	post.Status = target
	post.UpdatedAt = time.Now().UTC()
	if err := s.posts.Update(post); err != nil {
		return domain.Post{}, err
	}

	switch target {
	case domain.StatusApproved:
		if err := s.index.IndexPost(post.ID, post.Title, post.Body); err != nil {
			s.log.Warn("Failed to index approved post", "post_id", post.ID, "error", err)
		}
	case domain.StatusRejected:
		if err := s.index.RemovePost(post.ID); err != nil {
			s.log.Warn("Failed to unindex rejected post", "post_id", post.ID, "error", err)
		}
	}

	s.log.Info("Post status changed",
		"post_id", post.ID,
		"status", string(target),
		"actor_id", actor.ID)
	return post, nil
}
