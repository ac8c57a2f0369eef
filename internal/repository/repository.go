package repository

import (
	"context"
	"time"

	"github.com/commentflow-api/internal/database"
	"github.com/commentflow-api/internal/models"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByExtensionToken(ctx context.Context, token string) (*models.User, error)
	GetByBillingCustomer(ctx context.Context, customerID string) (*models.User, error)
	GetByBillingSubscription(ctx context.Context, subscriptionID string) (*models.User, error)
	UpdateExtensionToken(ctx context.Context, userID, token string) error
	UpdateSubscription(ctx context.Context, userID string, status models.SubscriptionStatus, plan string) error
	SetBillingIDs(ctx context.Context, userID, customerID, subscriptionID string) error
}

// CampaignRepository defines the interface for campaign data operations
type CampaignRepository interface {
	Create(ctx context.Context, campaign *models.Campaign) error
	GetByID(ctx context.Context, id string) (*models.Campaign, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Campaign, error)
	Update(ctx context.Context, campaign *models.Campaign) error
	Delete(ctx context.Context, id string) error
	CountByUser(ctx context.Context, userID string) (int, error)
	Counts(ctx context.Context, campaignID string) (models.CampaignCounts, error)
}

// PostRepository defines the interface for discovered post operations.
// The Mark* methods are conditional updates: they succeed only when the row is
// still in the expected prior state, and report whether a row was changed.
type PostRepository interface {
	InsertIgnore(ctx context.Context, post *models.DiscoveredPost) (bool, error)
	GetByID(ctx context.Context, id string) (*models.DiscoveredPost, error)
	ListByCampaign(ctx context.Context, campaignID string, status models.PostStatus) ([]*models.DiscoveredPost, error)
	MarkQueued(ctx context.Context, id string) (bool, error)
	Requeue(ctx context.Context, id string) (bool, error)
	MarkCommented(ctx context.Context, id string) (bool, error)
	Skip(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
}

// CommentRepository defines the interface for draft comment operations.
// ClaimReady is the select-and-mark step of the extension claim protocol and
// must be atomic: two overlapping calls never return overlapping drafts.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	GetActiveByPost(ctx context.Context, postID string) (*models.Comment, error)
	ListByUser(ctx context.Context, userID string, statuses []models.CommentStatus) ([]*models.Comment, error)
	UpdateText(ctx context.Context, id, text string, from []models.CommentStatus) (bool, error)
	Transition(ctx context.Context, id string, from []models.CommentStatus, to models.CommentStatus) (bool, error)
	ClaimReady(ctx context.Context, userID string, limit int) ([]*models.ClaimedComment, error)
	SettlePosted(ctx context.Context, userID, id, platformURL string) (bool, error)
	SettleFailed(ctx context.Context, userID, id string) (bool, error)
	ReclaimStale(ctx context.Context, olderThan time.Duration) (int64, error)
	CountByUserSince(ctx context.Context, userID string, since time.Time) (int, error)
	CountByCampaignSince(ctx context.Context, campaignID string, since time.Time) (int, error)
	Count(ctx context.Context) (int, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	User     UserRepository
	Campaign CampaignRepository
	Post     PostRepository
	Comment  CommentRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		User:     NewUserRepo(db),
		Campaign: NewCampaignRepo(db),
		Post:     NewPostRepo(db),
		Comment:  NewCommentRepo(db),
	}
}
