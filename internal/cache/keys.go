package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	PostKeyPrefix     = "post:%d"
	ToggleKeyPrefix   = "toggle:school:%d"
	PendingListPrefix = "posts:pending:school:%d"
	GlobalPendingKey  = "posts:pending:global"
)

const (
	PostTTL    = 10 * time.Minute
	ToggleTTL  = 5 * time.Minute
	PendingTTL = time.Minute
)

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func ToggleKey(schoolID uint) string {
	return fmt.Sprintf(ToggleKeyPrefix, schoolID)
}

func PendingListKey(schoolID uint) string {
	return fmt.Sprintf(PendingListPrefix, schoolID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidatePost drops the post projection and the pending lists it may
// appear in. Called on every moderation transition; toggles are invalidated
// on admin updates.
func InvalidatePost(ctx context.Context, postID, schoolID uint) {
	Invalidate(ctx, PostKey(postID))
	Invalidate(ctx, PendingListKey(schoolID))
	Invalidate(ctx, GlobalPendingKey)
}

func InvalidateToggle(ctx context.Context, schoolID uint) {
	Invalidate(ctx, ToggleKey(schoolID))
}
