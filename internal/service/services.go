package service

import (
	"context"

	"github.com/commentflow-api/internal/config"
	"github.com/commentflow-api/internal/models"
	"github.com/commentflow-api/internal/repository"
	"github.com/rs/zerolog"
)

// Candidate is one item returned by the search collaborator. Results are not
// assumed ordered or deduplicated.
type Candidate struct {
	NativeID    string
	Title       string
	Body        string
	URL         string
	SubLabel    string
	PublishedAt string
}

// SearchTarget describes one independently failable search call
type SearchTarget struct {
	Platform  string // reddit | youtube
	Query     string // keyword query
	Subreddit string // reddit only
}

// Searcher is the external search collaborator
type Searcher interface {
	Search(ctx context.Context, target SearchTarget) ([]Candidate, error)
}

// GenerationContext carries the campaign voice and post content for one
// generation call
type GenerationContext struct {
	PostTitle          string
	PostBody           string
	Platform           string
	Subreddit          string
	BrandName          string
	ProductDescription string
	Tone               string
}

// Generator is the external text-generation collaborator. An empty result is a
// first-class outcome, not an error.
type Generator interface {
	GenerateComment(ctx context.Context, gc GenerationContext) (string, error)
}

// AuthService manages accounts, sessions, and the extension credential
type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	RotateExtensionToken(ctx context.Context, userID string) (string, error)
}

// SubscriptionService is the entitlement gate plus billing-state writes
type SubscriptionService interface {
	Resolve(ctx context.Context, userID string) (models.SubscriptionInfo, error)
	LimitsFor(plan string) config.PlanLimits
	ApplyBillingEvent(ctx context.Context, event *BillingEvent) error
}

// DiscoveryService ingests search candidates into a campaign's new pool
type DiscoveryService interface {
	Run(ctx context.Context, campaignID, callerID string) (*models.DiscoveryReport, error)
}

// GenerationService drives the per-post generation state machine
type GenerationService interface {
	Generate(ctx context.Context, postID, callerID string) (*models.Comment, error)
	Regenerate(ctx context.Context, commentID, callerID string) (*models.Comment, error)
}

// ReviewService holds drafts in reviewable states and advances posts/drafts
// on reviewer actions
type ReviewService interface {
	List(ctx context.Context, callerID string, group models.StatusGroup) ([]*models.Comment, error)
	Edit(ctx context.Context, commentID, callerID, text string) (*models.Comment, error)
	Approve(ctx context.Context, commentID, callerID string) error
	Reject(ctx context.Context, commentID, callerID string) error
	Retry(ctx context.Context, commentID, callerID string) error
	WriteDraft(ctx context.Context, postID, callerID, text string) (*models.Comment, error)
	QueuePost(ctx context.Context, postID, callerID string) error
	SkipPost(ctx context.Context, postID, callerID string) error
}

// QueueService is the claim/settle boundary polled by the extension
type QueueService interface {
	Claim(ctx context.Context, token string) ([]*models.ClaimedComment, error)
	SettlePosted(ctx context.Context, token, commentID, platformURL string) error
	SettleFailed(ctx context.Context, token, commentID string) error
}

// CampaignService manages campaign CRUD under plan admission control
type CampaignService interface {
	Create(ctx context.Context, callerID string, input *models.CampaignInput) (*models.Campaign, error)
	Get(ctx context.Context, campaignID, callerID string) (*models.Campaign, error)
	List(ctx context.Context, callerID string) ([]*models.CampaignWithCounts, error)
	Update(ctx context.Context, campaignID, callerID string, input *models.CampaignInput) (*models.Campaign, error)
	Delete(ctx context.Context, campaignID, callerID string) error
	ListPosts(ctx context.Context, campaignID, callerID string, status models.PostStatus) ([]*models.DiscoveredPost, error)
}

// Services holds all service interfaces
type Services struct {
	Auth         AuthService
	Subscription SubscriptionService
	Campaign     CampaignService
	Discovery    DiscoveryService
	Generation   GenerationService
	Review       ReviewService
	Queue        QueueService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, searcher Searcher, generator Generator, cfg *config.Config, log zerolog.Logger) *Services {
	subSvc := newSubscriptionService(repos.User, cfg.Plans, log)

	return &Services{
		Auth:         newAuthService(repos.User, cfg.Auth, log),
		Subscription: subSvc,
		Campaign:     newCampaignService(repos, subSvc, log),
		Discovery:    newDiscoveryService(repos, searcher, cfg.Search.Workers, log),
		Generation:   newGenerationService(repos, subSvc, generator, log),
		Review:       newReviewService(repos, subSvc, log),
		Queue:        newQueueService(repos, subSvc, cfg.Queue, log),
	}
}
