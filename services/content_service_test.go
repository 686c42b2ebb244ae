package services

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"newsroom/domain"
	apperrors "newsroom/errors"
	"newsroom/notify"
	"newsroom/repositories"
)

// capturingPublisher records every published event.
type capturingPublisher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (p *capturingPublisher) Publish(e notify.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *capturingPublisher) published() []notify.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]notify.Event{}, p.events...)
}

// fakeIndex tracks which post ids are currently indexed.
type fakeIndex struct {
	mu      sync.Mutex
	indexed map[int64]bool
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{indexed: make(map[int64]bool)}
}

func (f *fakeIndex) IndexPost(id int64, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed[id] = true
	return nil
}

func (f *fakeIndex) RemovePost(id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.indexed, id)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, _ string, _ int) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]int64, 0, len(f.indexed))
	for id := range f.indexed {
		ids = append(ids, id)
	}
	return ids, nil
}

type fixture struct {
	service   *ContentService
	publisher *capturingPublisher
	index     *fakeIndex
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	posts, err := repositories.NewPostRepository(db, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = posts.Close() })

	publisher := &capturingPublisher{}
	index := newFakeIndex()
	service := NewContentService(slog.Default(), posts, publisher, index)
	return fixture{service: service, publisher: publisher, index: index}
}

var (
	author   = domain.Actor{ID: 1, Username: "alice", Role: domain.RoleUser}
	stranger = domain.Actor{ID: 2, Username: "bob", Role: domain.RoleUser}
	approver = domain.Actor{ID: 3, Username: "carol", Role: domain.RoleApprover}
	admin    = domain.Actor{ID: 4, Username: "dave", Role: domain.RoleAdmin}
)

func submit(t *testing.T, f fixture) domain.Post {
	t.Helper()
	post, err := f.service.Submit(context.Background(), author, SubmitPayload{
		Title: "a title", Body: "a body",
	})
	require.NoError(t, err)
	return post
}

func Test_Submit_Creates_Pending_And_Notifies(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	post := submit(t, f)
	req.Equal(domain.StatusPending, post.Status)
	req.Equal(author.ID, post.AuthorID)

	events := f.publisher.published()
	req.Len(events, 1)
	req.Equal(notify.NewPendingPost{
		PostID:   post.ID,
		Title:    "a title",
		AuthorID: author.ID,
	}, events[0])
}

func Test_View_Pending_Visible_To_Author_And_Moderators_Only(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	post := submit(t, f)
	ctx := context.Background()

	_, err := f.service.View(ctx, post.ID, nil)
	req.ErrorIs(err, apperrors.ErrNotFound)

	_, err = f.service.View(ctx, post.ID, &stranger)
	req.ErrorIs(err, apperrors.ErrNotFound)

	for _, actor := range []domain.Actor{author, approver, admin} {
		fetched, err := f.service.View(ctx, post.ID, &actor)
		req.NoError(err)
		req.Equal(post.ID, fetched.ID)
	}
}

func Test_Approve_Makes_The_Post_Public_And_Indexed(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	post := submit(t, f)
	ctx := context.Background()

	approved, err := f.service.Approve(ctx, post.ID, approver)
	req.NoError(err)
	req.Equal(domain.StatusApproved, approved.Status)
	req.True(f.index.indexed[post.ID])

	fetched, err := f.service.View(ctx, post.ID, nil)
	req.NoError(err)
	req.Equal(domain.StatusApproved, fetched.Status)
}

func Test_Regular_User_Cannot_Moderate(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	post := submit(t, f)

	_, err := f.service.Approve(context.Background(), post.ID, author)
	req.ErrorIs(err, apperrors.ErrForbidden)
}

func Test_Repeating_A_Transition_Is_A_Conflict(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	post := submit(t, f)
	ctx := context.Background()

	_, err := f.service.Approve(ctx, post.ID, approver)
	req.NoError(err)

	_, err = f.service.Approve(ctx, post.ID, approver)
	req.ErrorIs(err, apperrors.ErrConflict)
}

func Test_Approving_A_Rejected_Post_Is_Allowed(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	post := submit(t, f)
	ctx := context.Background()

	rejected, err := f.service.Reject(ctx, post.ID, approver)
	req.NoError(err)
	req.Equal(domain.StatusRejected, rejected.Status)
	req.False(f.index.indexed[post.ID])

	approved, err := f.service.Approve(ctx, post.ID, approver)
	req.NoError(err)
	req.Equal(domain.StatusApproved, approved.Status)
}

func Test_Author_Can_Edit_A_Rejected_Post(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	post := submit(t, f)
	ctx := context.Background()

	_, err := f.service.Reject(ctx, post.ID, approver)
	req.NoError(err)

	title := "revised title"
	edited, err := f.service.Edit(ctx, post.ID, author, domain.PostPatch{Title: &title})
	req.NoError(err)
	req.Equal("revised title", edited.Title)
	// Editing never resets the status.
	req.Equal(domain.StatusRejected, edited.Status)
}

func Test_Author_Cannot_Edit_After_Approval(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	post := submit(t, f)
	ctx := context.Background()

	_, err := f.service.Approve(ctx, post.ID, approver)
	req.NoError(err)

	title := "too late"
	_, err = f.service.Edit(ctx, post.ID, author, domain.PostPatch{Title: &title})
	req.ErrorIs(err, apperrors.ErrForbidden)

	// Admins retain edit rights on approved posts.
	edited, err := f.service.Edit(ctx, post.ID, admin, domain.PostPatch{Title: &title})
	req.NoError(err)
	req.Equal("too late", edited.Title)
}

func Test_Stranger_Cannot_Edit_Or_Delete(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	post := submit(t, f)
	ctx := context.Background()

	title := "hijacked"
	_, err := f.service.Edit(ctx, post.ID, stranger, domain.PostPatch{Title: &title})
	req.ErrorIs(err, apperrors.ErrForbidden)

	req.ErrorIs(f.service.Delete(ctx, post.ID, stranger), apperrors.ErrForbidden)
}

func Test_Delete_Hides_The_Post_Everywhere(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	post := submit(t, f)
	ctx := context.Background()

	_, err := f.service.Approve(ctx, post.ID, approver)
	req.NoError(err)
	req.NoError(f.service.Delete(ctx, post.ID, author))
	req.False(f.index.indexed[post.ID])

	_, err = f.service.View(ctx, post.ID, nil)
	req.ErrorIs(err, apperrors.ErrNotFound)
	_, err = f.service.View(ctx, post.ID, &admin)
	req.ErrorIs(err, apperrors.ErrNotFound)

	posts, total, err := f.service.ListApproved(ctx, 10, 0)
	req.NoError(err)
	req.Equal(0, total)
	req.Empty(posts)

	// Moderating a deleted post fails the same way.
	_, err = f.service.Approve(ctx, post.ID, approver)
	req.ErrorIs(err, apperrors.ErrNotFound)
}

func Test_ListApproved_Excludes_Pending_And_Rejected(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	visible := submit(t, f)
	_, err := f.service.Approve(ctx, visible.ID, approver)
	req.NoError(err)

	submit(t, f)
	rejected := submit(t, f)
	_, err = f.service.Reject(ctx, rejected.ID, approver)
	req.NoError(err)

	posts, total, err := f.service.ListApproved(ctx, 10, 0)
	req.NoError(err)
	req.Equal(1, total)
	req.Len(posts, 1)
	req.Equal(visible.ID, posts[0].ID)
}

func Test_SearchApproved_Only_Returns_Approved_Posts(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	visible := submit(t, f)
	_, err := f.service.Approve(ctx, visible.ID, approver)
	req.NoError(err)

	results, err := f.service.SearchApproved(ctx, "title", 10)
	req.NoError(err)
	req.Len(results, 1)
	req.Equal(visible.ID, results[0].ID)
}
