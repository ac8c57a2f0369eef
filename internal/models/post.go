package models

import (
	"time"
)

// PostStatus represents the lifecycle state of a discovered post.
// new -> queued -> commented, with a reviewer-initiated exit to skipped.
type PostStatus string

const (
	PostStatusNew       PostStatus = "new"
	PostStatusQueued    PostStatus = "queued"
	PostStatusCommented PostStatus = "commented"
	PostStatusSkipped   PostStatus = "skipped"
)

// Platform tags for discovered posts
const (
	PlatformReddit  = "reddit"
	PlatformYouTube = "youtube"
)

// DiscoveredPost is one external post identified as a reply candidate.
// (campaign_id, platform_post_id) is unique, so re-running discovery over the
// same source never duplicates a row.
type DiscoveredPost struct {
	ID             string     `json:"id" db:"id"`
	CampaignID     string     `json:"campaign_id" db:"campaign_id"`
	Platform       string     `json:"platform" db:"platform"`
	PlatformPostID string     `json:"platform_post_id" db:"platform_post_id"`
	Title          string     `json:"title" db:"title"`
	Body           string     `json:"body" db:"body"`
	URL            string     `json:"url" db:"url"`
	Subreddit      string     `json:"subreddit,omitempty" db:"subreddit"`
	RelevanceScore float64    `json:"relevance_score" db:"relevance_score"`
	Status         PostStatus `json:"status" db:"status"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// DiscoveryFailure records one failed search target within a discovery run
type DiscoveryFailure struct {
	Target  string `json:"target"`
	Message string `json:"message"`
}

// DiscoveryReport aggregates the outcome of one discovery run. Failing targets
// never abort the run; their errors are collected here.
type DiscoveryReport struct {
	Inserted int                `json:"inserted"`
	Skipped  int                `json:"skipped"`
	Failures []DiscoveryFailure `json:"failures,omitempty"`
}
