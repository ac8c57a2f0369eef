package models

import (
	"time"
)

// CampaignStatus represents the lifecycle state of a campaign
type CampaignStatus string

const (
	CampaignActive CampaignStatus = "active"
	CampaignPaused CampaignStatus = "paused"
)

// Campaign is a configured targeting profile owned by a user
type Campaign struct {
	ID                 string         `json:"id" db:"id"`
	UserID             string         `json:"user_id" db:"user_id"`
	BrandName          string         `json:"brand_name" db:"brand_name"`
	ProductDescription string         `json:"product_description" db:"product_description"`
	Keywords           []string       `json:"keywords" db:"keywords"`
	Subreddits         []string       `json:"subreddits" db:"subreddits"`
	Tone               string         `json:"tone" db:"tone"`
	MaxCommentsPerDay  int            `json:"max_comments_per_day" db:"max_comments_per_day"`
	AutoApprove        bool           `json:"auto_approve" db:"auto_approve"`
	Status             CampaignStatus `json:"status" db:"status"`
	CreatedAt          time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at" db:"updated_at"`
}

// CampaignCounts carries aggregate counts for campaign list views
type CampaignCounts struct {
	DiscoveredPosts int `json:"discovered_posts"`
	Comments        int `json:"comments"`
}

// CampaignWithCounts is the campaign list response shape
type CampaignWithCounts struct {
	Campaign
	Counts CampaignCounts `json:"_count"`
}

// CampaignInput is the create/update request payload
type CampaignInput struct {
	BrandName          string   `json:"brand_name"`
	ProductDescription string   `json:"product_description"`
	Keywords           []string `json:"keywords"`
	Subreddits         []string `json:"subreddits"`
	Tone               string   `json:"tone"`
	MaxCommentsPerDay  int      `json:"max_comments_per_day"`
	AutoApprove        bool     `json:"auto_approve"`
	Status             string   `json:"status"`
}
