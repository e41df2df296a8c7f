package models

import (
	"time"
)

// Feature is a per-school switchable capability.
type Feature string

const (
	FeatureIG          Feature = "ig"
	FeatureDiscord     Feature = "discord"
	FeatureComments    Feature = "comments"
	FeatureCrossSchool Feature = "cross_school"
)

// SchoolFeatureToggle is the single per-school configuration row gating
// optional integrations. At most one row exists per school.
type SchoolFeatureToggle struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	SchoolID uint `gorm:"not null;uniqueIndex;constraint:OnDelete:CASCADE" json:"school_id"`

	EnableIG          bool `gorm:"not null;default:false" json:"enable_ig"`
	EnableDiscord     bool `gorm:"not null;default:false" json:"enable_discord"`
	EnableComments    bool `gorm:"not null;default:true" json:"enable_comments"`
	EnableCrossSchool bool `gorm:"not null;default:true" json:"enable_cross_school"`

	IGTemplateID  *uint `gorm:"constraint:OnDelete:SET NULL" json:"ig_template_id,omitempty"`
	IGPublishAuto bool  `gorm:"not null;default:false" json:"ig_publish_auto"`

	DiscordWebhookURL  *string `json:"discord_webhook_url,omitempty"`
	DiscordChannelName *string `json:"discord_channel_name,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Enabled reports whether the given feature is switched on. Unknown
// features are off.
func (t *SchoolFeatureToggle) Enabled(f Feature) bool {
	switch f {
	case FeatureIG:
		return t.EnableIG
	case FeatureDiscord:
		return t.EnableDiscord
	case FeatureComments:
		return t.EnableComments
	case FeatureCrossSchool:
		return t.EnableCrossSchool
	}
	return false
}

// DefaultToggle returns the configuration a school has before an admin
// creates a toggle row: external publishing off, on-platform features on.
func DefaultToggle(schoolID uint) *SchoolFeatureToggle {
	return &SchoolFeatureToggle{
		SchoolID:          schoolID,
		EnableIG:          false,
		EnableDiscord:     false,
		EnableComments:    true,
		EnableCrossSchool: true,
	}
}

// IGTemplate is a publishing template referenced by school toggles.
type IGTemplate struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Layout    string    `gorm:"type:text" json:"layout"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
