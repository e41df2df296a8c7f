package service

import (
	"context"
	"fmt"
	"time"

	"campusboard/internal/cache"
	"campusboard/internal/models"
	"campusboard/internal/notifications"
	"campusboard/internal/observability"
	"campusboard/internal/repository"
)

// ReviewService runs the school-level moderation state machine: first-tier
// review, administrative override, and developer force transitions. Every
// state change appends exactly one review log entry and is applied as a
// conditional update so concurrent reviewers cannot double-process a post.
type ReviewService struct {
	postRepo      repository.PostRepository
	reviewLogRepo repository.ReviewLogRepository
	adminLogRepo  repository.AdminLogRepository
	dispatcher    *notifications.Dispatcher
	audit         *observability.AuditLogger

	publishApproved func(*models.Post)
}

type ReviewPostInput struct {
	PostID uint
	Action models.ReviewAction // approve or reject
	Reason string
}

type OverridePostInput struct {
	PostID    uint
	Action    models.ReviewAction // approve, reject or delete
	Reason    string
	IPAddress string
}

type DevForceInput struct {
	PostID    uint
	Action    models.ReviewAction // approve, reject, delete or reset
	Reason    string
	IPAddress string
}

func NewReviewService(
	postRepo repository.PostRepository,
	reviewLogRepo repository.ReviewLogRepository,
	adminLogRepo repository.AdminLogRepository,
	dispatcher *notifications.Dispatcher,
) *ReviewService {
	return &ReviewService{
		postRepo:      postRepo,
		reviewLogRepo: reviewLogRepo,
		adminLogRepo:  adminLogRepo,
		dispatcher:    dispatcher,
		audit:         observability.NewAuditLogger(),
	}
}

// SetPublisher installs the hook invoked when a post reaches approved, so
// gated external channels pick it up. Nil is fine: nothing publishes.
func (s *ReviewService) SetPublisher(fn func(*models.Post)) {
	s.publishApproved = fn
}

// ReviewPost performs first-tier review of a pending post by a reviewer of
// the same school.
func (s *ReviewService) ReviewPost(ctx context.Context, principal models.Principal, in ReviewPostInput) (*models.Post, error) {
	if err := Authorize(principal, OpReviewSchool); err != nil {
		return nil, err
	}
	if in.Action != models.ActionApprove && in.Action != models.ActionReject {
		return nil, models.NewValidationError("Review action must be approve or reject")
	}
	if in.Reason == "" {
		return nil, models.NewValidationError("A review reason is required")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.SchoolID != principal.SchoolID {
		return nil, models.NewForbiddenError(models.CodeDifferentSchool,
			"You can only review posts from your own school")
	}
	if post.Deleted() {
		return nil, models.NewInvalidStateError(models.CodeAlreadyDeleted,
			"Post has been deleted")
	}
	if post.Status != models.StatusPending {
		return nil, models.NewInvalidStateError(models.CodeAlreadyReviewed,
			"Post has already been reviewed")
	}

	now := time.Now()
	fields := map[string]interface{}{
		"reviewed_by":    principal.ID,
		"reviewed_at":    now,
		"review_comment": in.Reason,
		"updated_at":     now,
	}
	if in.Action == models.ActionApprove {
		fields["status"] = models.StatusApproved
	} else {
		fields["status"] = models.StatusRejected
		fields["is_sensitive"] = true
		fields["sensitive_reason"] = in.Reason
	}

	if err := s.postRepo.TransitionFromPending(ctx, post.ID, fields); err != nil {
		observability.RecordTransition(string(in.Action), "conflict")
		return nil, err
	}

	if err := s.appendLog(ctx, post.ID, principal.ID, in.Action, nil, in.Reason); err != nil {
		return nil, err
	}

	observability.RecordTransition(string(in.Action), "ok")
	s.audit.LogTransition(ctx, post.ID, string(in.Action), principal.ID, map[string]interface{}{
		"reason": in.Reason,
	})
	cache.InvalidatePost(ctx, post.ID, post.SchoolID)

	s.notifyAuthor(ctx, post, notifications.StatusChange(
		authorOf(post), post.ID, fields["status"].(models.PostStatus), in.Reason))

	updated, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	if in.Action == models.ActionApprove && s.publishApproved != nil {
		s.publishApproved(updated)
	}
	return updated, nil
}

// OverridePost lets an admin change the outcome of any post that has not
// been deleted, regardless of whether it was already reviewed.
func (s *ReviewService) OverridePost(ctx context.Context, principal models.Principal, in OverridePostInput) (*models.Post, error) {
	if err := Authorize(principal, OpOverrideSchool); err != nil {
		return nil, err
	}
	switch in.Action {
	case models.ActionApprove, models.ActionReject, models.ActionDelete:
	default:
		return nil, models.NewValidationError("Override action must be approve, reject or delete")
	}
	if in.Reason == "" {
		return nil, models.NewValidationError("An override reason is required")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.Deleted() {
		return nil, models.NewInvalidStateError(models.CodeAlreadyDeleted,
			"Post has been deleted")
	}

	now := time.Now()
	fields := overrideFields(in.Action, principal.ID, in.Reason, now)

	if err := s.postRepo.OverrideFields(ctx, post.ID, fields); err != nil {
		observability.RecordTransition("override", "conflict")
		return nil, err
	}

	action := in.Action
	if err := s.appendLog(ctx, post.ID, principal.ID, models.ActionOverride, &action, in.Reason); err != nil {
		return nil, err
	}
	s.recordAdminAction(ctx, principal.ID, fmt.Sprintf("override_%s", in.Action), post.ID, in.Reason, in.IPAddress)

	observability.RecordTransition("override", "ok")
	s.audit.LogTransition(ctx, post.ID, "override", principal.ID, map[string]interface{}{
		"override_action": string(in.Action),
		"reason":          in.Reason,
	})
	cache.InvalidatePost(ctx, post.ID, post.SchoolID)

	s.notifyOverride(ctx, post, in.Action, in.Reason, principal.ID)

	updated, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	if in.Action == models.ActionApprove && s.publishApproved != nil {
		s.publishApproved(updated)
	}
	return updated, nil
}

// DevForce applies an unconditional transition, including a full reset back
// to the initial pending state.
func (s *ReviewService) DevForce(ctx context.Context, principal models.Principal, in DevForceInput) (*models.Post, error) {
	if err := Authorize(principal, OpDevForce); err != nil {
		return nil, err
	}
	switch in.Action {
	case models.ActionApprove, models.ActionReject, models.ActionDelete, models.ActionReset:
	default:
		return nil, models.NewValidationError("Force action must be approve, reject, delete or reset")
	}

	reason := in.Reason
	if reason == "" {
		reason = fmt.Sprintf("developer forced %s", in.Action)
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var fields map[string]interface{}
	if in.Action == models.ActionReset {
		fields = repository.ResetFields(now)
	} else {
		fields = overrideFields(in.Action, principal.ID, reason, now)
	}

	if err := s.postRepo.ForceFields(ctx, post.ID, fields); err != nil {
		return nil, err
	}

	action := in.Action
	if err := s.appendLog(ctx, post.ID, principal.ID, models.ActionDevOverride, &action, reason); err != nil {
		return nil, err
	}
	s.recordAdminAction(ctx, principal.ID, fmt.Sprintf("dev_force_%s", in.Action), post.ID, reason, in.IPAddress)

	observability.RecordTransition("dev_override", "ok")
	s.audit.LogTransition(ctx, post.ID, "dev_override", principal.ID, map[string]interface{}{
		"override_action": string(in.Action),
		"reason":          reason,
	})
	cache.InvalidatePost(ctx, post.ID, post.SchoolID)

	s.notifyOverride(ctx, post, in.Action, reason, principal.ID)

	updated, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	if in.Action == models.ActionApprove && s.publishApproved != nil {
		s.publishApproved(updated)
	}
	return updated, nil
}

// overrideFields builds the column set for an approve/reject/delete applied
// outside the normal pending-only path.
func overrideFields(action models.ReviewAction, actorID uint, reason string, now time.Time) map[string]interface{} {
	fields := map[string]interface{}{
		"reviewed_by":    actorID,
		"reviewed_at":    now,
		"review_comment": reason,
		"updated_at":     now,
	}
	switch action {
	case models.ActionApprove:
		fields["status"] = models.StatusApproved
		fields["is_sensitive"] = false
		fields["sensitive_reason"] = nil
	case models.ActionReject:
		fields["status"] = models.StatusRejected
		fields["is_sensitive"] = true
		fields["sensitive_reason"] = reason
	case models.ActionDelete:
		fields["status"] = models.StatusDeleted
		fields["deleted_at"] = now
	}
	return fields
}

func (s *ReviewService) appendLog(ctx context.Context, postID, actorID uint, action models.ReviewAction, overrideAction *models.ReviewAction, reason string) error {
	return s.reviewLogRepo.Append(ctx, &models.ReviewLog{
		PostID:         postID,
		ReviewerID:     &actorID,
		Action:         action,
		OverrideAction: overrideAction,
		Reason:         reason,
	})
}

func (s *ReviewService) recordAdminAction(ctx context.Context, adminID uint, action string, postID uint, reason, ip string) {
	if s.adminLogRepo == nil {
		return
	}
	entry := &models.AdminLog{
		AdminID:    &adminID,
		Action:     action,
		TargetType: "post",
		TargetID:   &postID,
		Details:    fmt.Sprintf(`{"reason":%q}`, reason),
		IPAddress:  ip,
	}
	if err := s.adminLogRepo.Append(ctx, entry); err != nil {
		observability.GlobalLogger.Warn("failed to record admin action",
			"admin_id", adminID, "action", action, "error", err)
	}
}

// notifyAuthor dispatches to the post author, skipping anonymous posts.
func (s *ReviewService) notifyAuthor(ctx context.Context, post *models.Post, n *models.Notification) {
	if post.AuthorID == nil || s.dispatcher == nil {
		return
	}
	s.dispatcher.Dispatch(ctx, n)
}

// notifyOverride informs the author and, when different, the reviewer whose
// decision was overridden.
func (s *ReviewService) notifyOverride(ctx context.Context, post *models.Post, action models.ReviewAction, reason string, actorID uint) {
	if s.dispatcher == nil {
		return
	}
	if post.AuthorID != nil {
		s.dispatcher.Dispatch(ctx, notifications.Override(*post.AuthorID, post.ID, action, reason))
	}
	if post.ReviewedBy != nil && *post.ReviewedBy != actorID &&
		(post.AuthorID == nil || *post.ReviewedBy != *post.AuthorID) {
		s.dispatcher.Dispatch(ctx, notifications.Override(*post.ReviewedBy, post.ID, action, reason))
	}
}

// Logs returns school review history, oldest first.
func (s *ReviewService) Logs(ctx context.Context, filter repository.ReviewLogFilter, limit, offset int) ([]*models.ReviewLog, error) {
	return s.reviewLogRepo.List(ctx, filter, limit, offset)
}

func authorOf(post *models.Post) uint {
	if post.AuthorID == nil {
		return 0
	}
	return *post.AuthorID
}
