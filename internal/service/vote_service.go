package service

import (
	"context"
	"errors"
	"time"

	"campusboard/internal/cache"
	"campusboard/internal/models"
	"campusboard/internal/notifications"
	"campusboard/internal/observability"
	"campusboard/internal/repository"
)

// autoApproveComment is the review comment written when cross-school voting
// approves a post.
const autoApproveComment = "cross-school vote passed"

// VotePolicy is the consensus threshold: a pending global post auto-approves
// once Quorum votes are in and the approve share reaches Ratio.
type VotePolicy struct {
	Quorum int
	Ratio  float64
}

// Met reports whether the tally crosses the auto-approval threshold.
func (p VotePolicy) Met(tally repository.VoteTally) bool {
	if tally.Total < int64(p.Quorum) {
		return false
	}
	return float64(tally.Approves)/float64(tally.Total) >= p.Ratio
}

// VoteService records cross-school reviewer votes and applies the consensus
// auto-approval when the policy threshold is crossed.
type VoteService struct {
	postRepo      repository.PostRepository
	globalLogRepo repository.GlobalReviewLogRepository
	reviewLogRepo repository.ReviewLogRepository
	dispatcher    *notifications.Dispatcher
	policy        VotePolicy
	audit         *observability.AuditLogger

	publishApproved func(*models.Post)
}

type VoteInput struct {
	PostID uint
	Vote   bool
	Reason string
}

// VoteResult reports the recorded vote and whether it triggered approval.
type VoteResult struct {
	Post         *models.Post         `json:"post"`
	Tally        repository.VoteTally `json:"-"`
	TotalVotes   int64                `json:"total_votes"`
	ApproveVotes int64                `json:"approve_votes"`
	AutoApproved bool                 `json:"auto_approved"`
}

func NewVoteService(
	postRepo repository.PostRepository,
	globalLogRepo repository.GlobalReviewLogRepository,
	reviewLogRepo repository.ReviewLogRepository,
	dispatcher *notifications.Dispatcher,
	policy VotePolicy,
) *VoteService {
	return &VoteService{
		postRepo:      postRepo,
		globalLogRepo: globalLogRepo,
		reviewLogRepo: reviewLogRepo,
		dispatcher:    dispatcher,
		policy:        policy,
		audit:         observability.NewAuditLogger(),
	}
}

// SetPublisher installs the hook invoked after a consensus auto-approval.
func (s *VoteService) SetPublisher(fn func(*models.Post)) {
	s.publishApproved = fn
}

// Vote records one reviewer's vote on a pending global post. Duplicate votes
// are rejected by the storage layer's unique vote constraint, so even two
// simultaneous requests from the same reviewer yield exactly one entry.
func (s *VoteService) Vote(ctx context.Context, principal models.Principal, in VoteInput) (*VoteResult, error) {
	if err := Authorize(principal, OpVoteGlobal); err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if !post.IsGlobal {
		return nil, models.NewValidationError("Post is not open for cross-school review")
	}
	if post.Deleted() {
		return nil, models.NewInvalidStateError(models.CodeAlreadyDeleted,
			"Post has been deleted")
	}
	if post.Status != models.StatusPending {
		return nil, models.NewInvalidStateError(models.CodeAlreadyReviewed,
			"Post has already been reviewed")
	}

	vote := in.Vote
	voterID := principal.ID
	err = s.globalLogRepo.Append(ctx, &models.GlobalReviewLog{
		PostID: post.ID,
		UserID: &voterID,
		Action: models.GlobalActionVote,
		Vote:   &vote,
		Reason: in.Reason,
	})
	if err != nil {
		return nil, err
	}

	observability.RecordTransition("vote", "ok")
	s.audit.LogTransition(ctx, post.ID, "vote", principal.ID, map[string]interface{}{
		"vote":   in.Vote,
		"reason": in.Reason,
	})

	tally, err := s.globalLogRepo.Tally(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	result := &VoteResult{
		Tally:        tally,
		TotalVotes:   tally.Total,
		ApproveVotes: tally.Approves,
	}

	if s.policy.Met(tally) {
		approved, err := s.autoApprove(ctx, post, principal.ID)
		if err != nil {
			return nil, err
		}
		result.AutoApproved = approved
	}

	result.Post, err = s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	if result.AutoApproved && s.publishApproved != nil {
		s.publishApproved(result.Post)
	}
	return result, nil
}

// autoApprove flips the post to approved, attributed to the voter whose vote
// crossed the threshold. When two voters cross it at once, the conditional
// update lets exactly one through; the loser treats it as already done.
func (s *VoteService) autoApprove(ctx context.Context, post *models.Post, voterID uint) (bool, error) {
	now := time.Now()
	err := s.postRepo.TransitionFromPending(ctx, post.ID, map[string]interface{}{
		"status":         models.StatusApproved,
		"reviewed_by":    voterID,
		"reviewed_at":    now,
		"review_comment": autoApproveComment,
		"updated_at":     now,
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeConflict {
			return false, nil
		}
		return false, err
	}

	if err := s.reviewLogRepo.Append(ctx, &models.ReviewLog{
		PostID:     post.ID,
		ReviewerID: &voterID,
		Action:     models.ActionApprove,
		Reason:     autoApproveComment,
	}); err != nil {
		return true, err
	}

	observability.ConsensusAutoApprovals.Inc()
	observability.RecordTransition("auto_approve", "ok")
	s.audit.LogTransition(ctx, post.ID, "auto_approve", voterID, nil)
	cache.InvalidatePost(ctx, post.ID, post.SchoolID)

	if post.AuthorID != nil && s.dispatcher != nil {
		s.dispatcher.Dispatch(ctx, notifications.Approved(*post.AuthorID, post.ID))
	}
	return true, nil
}

// Logs returns the cross-school review history of a post, oldest first.
func (s *VoteService) Logs(ctx context.Context, postID uint, limit, offset int) ([]*models.GlobalReviewLog, error) {
	return s.globalLogRepo.ListByPost(ctx, postID, limit, offset)
}

// UserLogs returns one reviewer's cross-school vote history, newest first.
func (s *VoteService) UserLogs(ctx context.Context, userID uint, limit, offset int) ([]*models.GlobalReviewLog, error) {
	return s.globalLogRepo.ListByUser(ctx, userID, limit, offset)
}

// Tally exposes the current consensus counts for a post.
func (s *VoteService) Tally(ctx context.Context, postID uint) (repository.VoteTally, error) {
	return s.globalLogRepo.Tally(ctx, postID)
}
