package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"campusboard/internal/cache"
	"campusboard/internal/featuregate"
	"campusboard/internal/models"
	"campusboard/internal/publish"
	"campusboard/internal/repository"
)

// PostService owns post creation and browsing. Moderation transitions live
// in ReviewService and VoteService.
type PostService struct {
	postRepo       repository.PostRepository
	gate           featuregate.Gate
	discord        publish.Publisher
	ig             publish.Publisher
	publishTimeout time.Duration
	logger         *slog.Logger
}

type CreatePostInput struct {
	Title       string
	Content     string
	IsAnonymous bool
	SchoolID    uint
	IsGlobal    bool
	AuthorID    *uint
}

type ListPostsInput struct {
	SchoolID *uint
	Status   *models.PostStatus
	Global   *bool
	Limit    int
	Offset   int
}

func NewPostService(
	postRepo repository.PostRepository,
	gate featuregate.Gate,
	discord publish.Publisher,
	ig publish.Publisher,
	publishTimeout time.Duration,
) *PostService {
	return &PostService{
		postRepo:       postRepo,
		gate:           gate,
		discord:        discord,
		ig:             ig,
		publishTimeout: publishTimeout,
		logger:         slog.Default(),
	}
}

// CreatePost validates and stores a new post in pending state, then kicks
// off gated external publishing without blocking the caller.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationErrorWithCode(
			models.CodeEmptyContent, "Post content cannot be empty")
	}
	if !in.IsAnonymous && in.AuthorID == nil {
		return nil, models.NewAuthRequiredError(
			"A logged-in account is required for non-anonymous posts")
	}

	post := &models.Post{
		Title:       strings.TrimSpace(in.Title),
		Content:     strings.TrimSpace(in.Content),
		IsAnonymous: in.IsAnonymous,
		SchoolID:    in.SchoolID,
		IsGlobal:    in.IsGlobal,
		Status:      models.StatusPending,
	}
	if !in.IsAnonymous {
		post.AuthorID = in.AuthorID
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	cache.Invalidate(ctx, cache.PendingListKey(post.SchoolID))
	s.PublishExternal(post)

	return post, nil
}

// PublishExternal fires the gated external publishers on a detached context.
// The post is already committed, so a slow or failing channel can only cost
// us a log line, never the creation. Moderation services call this again
// when a post reaches approved.
func (s *PostService) PublishExternal(post *models.Post) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("panic in external publish", "post_id", post.ID, "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), s.publishTimeout)
		defer cancel()

		toggle, err := s.gate.Toggle(ctx, post.SchoolID)
		if err != nil {
			// Fail closed: no toggle visible means nothing publishes.
			return
		}
		if toggle.Enabled(models.FeatureDiscord) {
			// Errors already logged and counted inside the publisher.
			_ = s.discord.Publish(ctx, post, toggle)
		}
		if toggle.Enabled(models.FeatureIG) {
			_ = s.ig.Publish(ctx, post, toggle)
		}
	}()
}

// GetPost loads one post, cache-aside, and bumps its view counter.
func (s *PostService) GetPost(ctx context.Context, postID uint) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(postID), &post, cache.PostTTL, func() error {
		fetched, err := s.postRepo.GetByID(ctx, postID)
		if err != nil {
			return err
		}
		post = *fetched
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.postRepo.IncrementView(ctx, postID); err != nil {
		s.logger.Warn("failed to increment view count", "post_id", postID, "error", err)
	}
	return &post, nil
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, error) {
	return s.postRepo.List(ctx, repository.PostFilter{
		SchoolID: in.SchoolID,
		Status:   in.Status,
		Global:   in.Global,
	}, in.Limit, in.Offset)
}

func (s *PostService) LikePost(ctx context.Context, postID uint) error {
	if err := s.postRepo.Like(ctx, postID); err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.PostKey(postID))
	return nil
}

func (s *PostService) UnlikePost(ctx context.Context, postID uint) error {
	if err := s.postRepo.Unlike(ctx, postID); err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.PostKey(postID))
	return nil
}
