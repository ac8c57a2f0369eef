package models

import (
	"time"
)

// CommentStatus represents the review/posting state machine for a draft.
// pending_review|approved|queued are "awaiting decision"; ready_to_post drafts
// are claimable by the extension; posting means claimed and in flight; posted
// is terminal success; failed is terminal but retryable; rejected is terminal
// and hidden from every active view.
type CommentStatus string

const (
	CommentPendingReview CommentStatus = "pending_review"
	CommentApproved      CommentStatus = "approved"
	CommentQueued        CommentStatus = "queued"
	CommentReadyToPost   CommentStatus = "ready_to_post"
	CommentPosting       CommentStatus = "posting"
	CommentPosted        CommentStatus = "posted"
	CommentFailed        CommentStatus = "failed"
	CommentRejected      CommentStatus = "rejected"
)

// AwaitingDecisionStatuses are the states a reviewer can still act on
var AwaitingDecisionStatuses = []CommentStatus{
	CommentPendingReview, CommentApproved, CommentQueued,
}

// Comment is one AI-authored (or hand-written) reply draft tied to exactly
// one discovered post
type Comment struct {
	ID            string        `json:"id" db:"id"`
	UserID        string        `json:"user_id" db:"user_id"`
	CampaignID    string        `json:"campaign_id" db:"campaign_id"`
	PostID        string        `json:"post_id" db:"post_id"`
	GeneratedText string        `json:"generated_text" db:"generated_text"`
	Status        CommentStatus `json:"status" db:"status"`
	PostedAt      *time.Time    `json:"posted_at,omitempty" db:"posted_at"`
	PlatformURL   string        `json:"platform_url,omitempty" db:"platform_url"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// ClaimedComment is the view handed to the extension poller. It carries the
// denormalized post target and strips server-side ids the poller has no use for.
type ClaimedComment struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	URL       string `json:"url"`
	Platform  string `json:"platform"`
	PostTitle string `json:"post_title"`
	Subreddit string `json:"subreddit,omitempty"`
}

// StatusGroup filters comment list queries
type StatusGroup string

const (
	GroupAwaiting StatusGroup = "awaiting"
	GroupInflight StatusGroup = "inflight"
	GroupFailed   StatusGroup = "failed"
	GroupAll      StatusGroup = "all"
)

// StatusesFor expands a status group into concrete statuses. Rejected drafts
// are excluded from every group; they are kept only for audit.
func StatusesFor(group StatusGroup) []CommentStatus {
	switch group {
	case GroupAwaiting:
		return AwaitingDecisionStatuses
	case GroupInflight:
		return []CommentStatus{CommentReadyToPost, CommentPosting, CommentPosted}
	case GroupFailed:
		return []CommentStatus{CommentFailed}
	default:
		return []CommentStatus{
			CommentPendingReview, CommentApproved, CommentQueued,
			CommentReadyToPost, CommentPosting, CommentPosted, CommentFailed,
		}
	}
}
