package service

import (
	"context"
	"sync"
	"time"

	"campusboard/internal/models"
	"campusboard/internal/repository"
)

// memPostRepo is an in-memory PostRepository honoring the same conditional
// update semantics as the real one, so state machine tests exercise the
// guards end to end.
type memPostRepo struct {
	mu     sync.Mutex
	nextID uint
	posts  map[uint]*models.Post
}

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{nextID: 1, posts: map[uint]*models.Post{}}
}

func (r *memPostRepo) add(post *models.Post) *models.Post {
	r.mu.Lock()
	defer r.mu.Unlock()
	if post.ID == 0 {
		post.ID = r.nextID
		r.nextID++
	}
	r.posts[post.ID] = post
	return post
}

func (r *memPostRepo) Create(_ context.Context, post *models.Post) error {
	post.Status = models.StatusPending
	r.add(post)
	return nil
}

func (r *memPostRepo) GetByID(_ context.Context, id uint) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, models.NewPostNotFoundError(id)
	}
	clone := *post
	return &clone, nil
}

func (r *memPostRepo) List(_ context.Context, _ repository.PostFilter, _, _ int) ([]*models.Post, error) {
	return nil, nil
}

func (r *memPostRepo) TransitionFromPending(_ context.Context, id uint, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok || post.Status != models.StatusPending || post.DeletedAt != nil {
		return models.NewConflictError("Post is no longer pending")
	}
	applyPostFields(post, fields)
	return nil
}

func (r *memPostRepo) OverrideFields(_ context.Context, id uint, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok || post.DeletedAt != nil {
		return models.NewInvalidStateError(models.CodeAlreadyDeleted, "Post has been deleted")
	}
	applyPostFields(post, fields)
	return nil
}

func (r *memPostRepo) ForceFields(_ context.Context, id uint, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return models.NewPostNotFoundError(id)
	}
	applyPostFields(post, fields)
	return nil
}

func (r *memPostRepo) IncrementView(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if post, ok := r.posts[id]; ok {
		post.ViewCount++
	}
	return nil
}

func (r *memPostRepo) Like(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if post, ok := r.posts[id]; ok {
		post.LikeCount++
	}
	return nil
}

func (r *memPostRepo) Unlike(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if post, ok := r.posts[id]; ok && post.LikeCount > 0 {
		post.LikeCount--
	}
	return nil
}

func applyPostFields(post *models.Post, fields map[string]interface{}) {
	for k, v := range fields {
		switch k {
		case "status":
			post.Status = v.(models.PostStatus)
		case "reviewed_by":
			if v == nil {
				post.ReviewedBy = nil
			} else {
				id := v.(uint)
				post.ReviewedBy = &id
			}
		case "reviewed_at":
			if v == nil {
				post.ReviewedAt = nil
			} else {
				t := v.(time.Time)
				post.ReviewedAt = &t
			}
		case "review_comment":
			if v == nil {
				post.ReviewComment = nil
			} else {
				s := v.(string)
				post.ReviewComment = &s
			}
		case "is_sensitive":
			post.IsSensitive = v.(bool)
		case "sensitive_reason":
			if v == nil {
				post.SensitiveReason = nil
			} else {
				s := v.(string)
				post.SensitiveReason = &s
			}
		case "deleted_at":
			if v == nil {
				post.DeletedAt = nil
			} else {
				t := v.(time.Time)
				post.DeletedAt = &t
			}
		case "updated_at":
			post.UpdatedAt = v.(time.Time)
		}
	}
}

// memReviewLogRepo captures appended school review log entries.
type memReviewLogRepo struct {
	mu      sync.Mutex
	entries []*models.ReviewLog
}

func (r *memReviewLogRepo) Append(_ context.Context, log *models.ReviewLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	log.ID = uint(len(r.entries) + 1)
	log.CreatedAt = time.Now()
	r.entries = append(r.entries, log)
	return nil
}

func (r *memReviewLogRepo) List(_ context.Context, filter repository.ReviewLogFilter, _, _ int) ([]*models.ReviewLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ReviewLog
	for _, e := range r.entries {
		if filter.PostID != nil && e.PostID != *filter.PostID {
			continue
		}
		if filter.Action != nil && e.Action != *filter.Action {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// memGlobalLogRepo enforces the one-vote-per-user invariant in memory.
type memGlobalLogRepo struct {
	mu      sync.Mutex
	entries []*models.GlobalReviewLog
}

func (r *memGlobalLogRepo) Append(_ context.Context, log *models.GlobalReviewLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if log.Action == models.GlobalActionVote {
		for _, e := range r.entries {
			if e.Action == models.GlobalActionVote && e.PostID == log.PostID &&
				e.UserID != nil && log.UserID != nil && *e.UserID == *log.UserID {
				return models.NewInvalidStateError(models.CodeAlreadyVoted, "You have already voted on this post")
			}
		}
	}
	log.ID = uint(len(r.entries) + 1)
	log.CreatedAt = time.Now()
	r.entries = append(r.entries, log)
	return nil
}

func (r *memGlobalLogRepo) Tally(_ context.Context, postID uint) (repository.VoteTally, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var tally repository.VoteTally
	for _, e := range r.entries {
		if e.PostID != postID || e.Action != models.GlobalActionVote {
			continue
		}
		tally.Total++
		if e.Vote != nil && *e.Vote {
			tally.Approves++
		}
	}
	return tally, nil
}

func (r *memGlobalLogRepo) ListByPost(_ context.Context, postID uint, _, _ int) ([]*models.GlobalReviewLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.GlobalReviewLog
	for _, e := range r.entries {
		if e.PostID == postID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memGlobalLogRepo) ListByUser(_ context.Context, userID uint, _, _ int) ([]*models.GlobalReviewLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.GlobalReviewLog
	for _, e := range r.entries {
		if e.UserID != nil && *e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

// notifRepoStub captures dispatched notifications.
type notifRepoStub struct {
	mu      sync.Mutex
	created []*models.Notification
}

func (s *notifRepoStub) Create(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, n)
	return nil
}

func (s *notifRepoStub) all() []*models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.Notification(nil), s.created...)
}

func (s *notifRepoStub) ListByUser(_ context.Context, _ uint, _ bool, _, _ int) ([]*models.Notification, error) {
	return nil, nil
}
func (s *notifRepoStub) MarkRead(_ context.Context, _, _ uint) error { return nil }
func (s *notifRepoStub) MarkAllRead(_ context.Context, _ uint) error { return nil }
func (s *notifRepoStub) CountUnread(_ context.Context, _ uint) (int64, error) {
	return 0, nil
}

// adminLogRepoStub captures privileged action records.
type adminLogRepoStub struct {
	mu      sync.Mutex
	entries []*models.AdminLog
}

func (s *adminLogRepoStub) Append(_ context.Context, log *models.AdminLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, log)
	return nil
}

func (s *adminLogRepoStub) ListRecent(_ context.Context, _, _ int) ([]*models.AdminLog, error) {
	return nil, nil
}

func (s *adminLogRepoStub) ListByTarget(_ context.Context, _ string, _ uint, _, _ int) ([]*models.AdminLog, error) {
	return nil, nil
}

// gateStub is a fixed-answer feature gate.
type gateStub struct {
	toggle *models.SchoolFeatureToggle
	err    error
}

func (g *gateStub) Enabled(_ context.Context, _ uint, f models.Feature) bool {
	if g.err != nil || g.toggle == nil {
		return false
	}
	return g.toggle.Enabled(f)
}

func (g *gateStub) Toggle(_ context.Context, _ uint) (*models.SchoolFeatureToggle, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.toggle, nil
}

// publisherStub reports publish calls over a channel so tests can wait for
// the asynchronous publish path.
type publisherStub struct {
	calls chan uint
	err   error
}

func newPublisherStub() *publisherStub {
	return &publisherStub{calls: make(chan uint, 8)}
}

func (p *publisherStub) Publish(_ context.Context, post *models.Post, _ *models.SchoolFeatureToggle) error {
	p.calls <- post.ID
	return p.err
}
