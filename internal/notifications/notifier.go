// Package notifications delivers moderation notifications to users, both as
// persisted in-app rows and as real-time events over Redis channels.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"campusboard/internal/models"
	"campusboard/internal/observability"
	"campusboard/internal/repository"

	"github.com/redis/go-redis/v9"
)

// Notifier publishes notification payloads into Redis channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishUser sends a notification payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	if n.rdb == nil {
		return nil
	}
	channel := fmt.Sprintf("notifications:user:%d", userID)
	return n.rdb.Publish(ctx, channel, payload).Err()
}

// Dispatcher persists notifications and fan-outs real-time copies. Delivery
// is best effort: moderation outcomes are already committed when a
// notification is dispatched, so failures here are logged and counted but
// never propagated to the caller.
type Dispatcher struct {
	repo     repository.NotificationRepository
	notifier *Notifier
	logger   *slog.Logger
}

// NewDispatcher creates a notification dispatcher.
func NewDispatcher(repo repository.NotificationRepository, notifier *Notifier) *Dispatcher {
	return &Dispatcher{
		repo:     repo,
		notifier: notifier,
		logger:   slog.Default(),
	}
}

// Dispatch stores the notification and publishes it to the user's channel.
func (d *Dispatcher) Dispatch(ctx context.Context, notification *models.Notification) {
	if notification.UserID == 0 {
		return
	}

	if err := d.repo.Create(ctx, notification); err != nil {
		observability.NotifyFailures.Inc()
		d.logger.Error("failed to persist notification",
			"user_id", notification.UserID,
			"type", string(notification.Type),
			"error", err)
		return
	}

	payload, err := json.Marshal(notification)
	if err != nil {
		observability.NotifyFailures.Inc()
		d.logger.Error("failed to encode notification", "error", err)
		return
	}
	if err := d.notifier.PublishUser(ctx, notification.UserID, string(payload)); err != nil {
		observability.NotifyFailures.Inc()
		d.logger.Warn("failed to publish notification",
			"user_id", notification.UserID,
			"error", err)
	}
}

// StatusChange builds the notification sent to a post's author when a
// reviewer decides on their post.
func StatusChange(authorID, postID uint, status models.PostStatus, comment string) *models.Notification {
	content := fmt.Sprintf("Your post #%d is now %s", postID, status)
	if comment != "" {
		content = fmt.Sprintf("%s: %s", content, comment)
	}
	return &models.Notification{
		UserID:  authorID,
		Title:   "Post review result",
		Content: content,
		Type:    models.NotificationPostStatusChange,
	}
}

// Override builds the notification sent when a privileged override changes
// an already-reviewed post.
func Override(authorID, postID uint, action models.ReviewAction, reason string) *models.Notification {
	content := fmt.Sprintf("A moderator has overridden the review of your post #%d (%s)", postID, action)
	if reason != "" {
		content = fmt.Sprintf("%s: %s", content, reason)
	}
	return &models.Notification{
		UserID:  authorID,
		Title:   "Post review overridden",
		Content: content,
		Type:    models.NotificationReviewOverride,
	}
}

// Approved builds the notification sent when cross-school voting approves a
// post.
func Approved(authorID, postID uint) *models.Notification {
	return &models.Notification{
		UserID:  authorID,
		Title:   "Post approved",
		Content: fmt.Sprintf("Your post #%d was approved by cross-school review", postID),
		Type:    models.NotificationPostApproved,
	}
}
