// Package publish pushes approved posts to external channels. Every call is
// best effort with a short timeout: moderation state is already committed
// when publishing starts, so failures are logged and counted, never bubbled
// back into the review flow.
package publish

import (
	"context"
	"fmt"
	"time"

	"campusboard/internal/models"
	"campusboard/internal/observability"

	"resty.dev/v3"
)

const (
	channelDiscord = "discord"
	channelIG      = "ig"
)

// Publisher delivers an approved post to one external channel.
type Publisher interface {
	Publish(ctx context.Context, post *models.Post, toggle *models.SchoolFeatureToggle) error
}

func newClient(timeout time.Duration) *resty.Client {
	return resty.NewWithTransportSettings(&resty.TransportSettings{
		DialerTimeout:         timeout,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
	}).SetTimeout(timeout)
}

// DiscordPublisher posts approved content to a school's Discord webhook.
type DiscordPublisher struct {
	client *resty.Client
}

// NewDiscordPublisher creates a Discord webhook publisher.
func NewDiscordPublisher(timeout time.Duration) *DiscordPublisher {
	return &DiscordPublisher{client: newClient(timeout)}
}

type discordMessage struct {
	Content  string `json:"content"`
	Username string `json:"username,omitempty"`
}

func (p *DiscordPublisher) Publish(ctx context.Context, post *models.Post, toggle *models.SchoolFeatureToggle) error {
	if toggle.DiscordWebhookURL == nil || *toggle.DiscordWebhookURL == "" {
		return models.NewValidationError("Discord webhook is not configured")
	}

	username := ""
	if toggle.DiscordChannelName != nil {
		username = *toggle.DiscordChannelName
	}

	res, err := p.client.R().
		WithContext(ctx).
		SetBody(discordMessage{
			Content:  post.Content,
			Username: username,
		}).
		Post(*toggle.DiscordWebhookURL)
	if err != nil {
		return p.fail(ctx, post.ID, err)
	}
	if res.IsError() {
		return p.fail(ctx, post.ID, fmt.Errorf("discord webhook returned %s", res.Status()))
	}
	return nil
}

func (p *DiscordPublisher) fail(ctx context.Context, postID uint, err error) error {
	observability.PublishFailures.WithLabelValues(channelDiscord).Inc()
	observability.LogExternalFailure(ctx, "discord_publish", err, map[string]interface{}{
		"post_id": postID,
	})
	return models.NewExternalFailureError("Discord publish failed", err)
}

// IGPublisher submits approved content to the image composition API.
type IGPublisher struct {
	client *resty.Client
}

// NewIGPublisher creates a publisher that talks to the IG composition API
// at baseURL.
func NewIGPublisher(baseURL string, timeout time.Duration) *IGPublisher {
	return &IGPublisher{client: newClient(timeout).SetBaseURL(baseURL)}
}

type igPublishRequest struct {
	PostID     uint   `json:"post_id"`
	Content    string `json:"content"`
	TemplateID *uint  `json:"template_id,omitempty"`
	Auto       bool   `json:"auto"`
}

type igPublishResponse struct {
	JobID string `json:"job_id"`
}

func (p *IGPublisher) Publish(ctx context.Context, post *models.Post, toggle *models.SchoolFeatureToggle) error {
	res, err := p.client.R().
		WithContext(ctx).
		SetBody(igPublishRequest{
			PostID:     post.ID,
			Content:    post.Content,
			TemplateID: toggle.IGTemplateID,
			Auto:       toggle.IGPublishAuto,
		}).
		SetResult(&igPublishResponse{}).
		Post("/v1/publish")
	if err != nil {
		return p.fail(ctx, post.ID, err)
	}
	if res.IsError() {
		return p.fail(ctx, post.ID, fmt.Errorf("ig api returned %s", res.Status()))
	}
	return nil
}

func (p *IGPublisher) fail(ctx context.Context, postID uint, err error) error {
	observability.PublishFailures.WithLabelValues(channelIG).Inc()
	observability.LogExternalFailure(ctx, "ig_publish", err, map[string]interface{}{
		"post_id": postID,
	})
	return models.NewExternalFailureError("IG publish failed", err)
}
