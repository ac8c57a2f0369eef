package service

import (
	"context"
	"fmt"
	"time"

	"github.com/commentflow-api/internal/models"
	"github.com/commentflow-api/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// campaignService is the concrete implementation of CampaignService
type campaignService struct {
	repos *repository.Repositories
	subs  SubscriptionService
	log   zerolog.Logger
}

// newCampaignService creates a new CampaignService
func newCampaignService(repos *repository.Repositories, subs SubscriptionService, log zerolog.Logger) *campaignService {
	return &campaignService{
		repos: repos,
		subs:  subs,
		log:   log.With().Str("service", "campaign").Logger(),
	}
}

// Create creates a campaign for the caller, enforcing the plan's campaign cap
func (s *campaignService) Create(ctx context.Context, callerID string, input *models.CampaignInput) (*models.Campaign, error) {
	sub, err := s.subs.Resolve(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !sub.Active {
		return nil, &AdmissionError{Message: "Active subscription required. Please subscribe to create campaigns."}
	}

	limits := s.subs.LimitsFor(sub.Plan)
	if limits.MaxCampaigns >= 0 {
		existing, err := s.repos.Campaign.CountByUser(ctx, callerID)
		if err != nil {
			return nil, err
		}
		if existing >= limits.MaxCampaigns {
			return nil, &AdmissionError{Message: fmt.Sprintf(
				"Your %s plan allows up to %d campaigns. Upgrade for more.", sub.Plan, limits.MaxCampaigns)}
		}
	}

	now := time.Now()
	campaign := &models.Campaign{
		ID:                 uuid.New().String(),
		UserID:             callerID,
		BrandName:          input.BrandName,
		ProductDescription: input.ProductDescription,
		Keywords:           input.Keywords,
		Subreddits:         input.Subreddits,
		Tone:               input.Tone,
		MaxCommentsPerDay:  input.MaxCommentsPerDay,
		AutoApprove:        input.AutoApprove,
		Status:             models.CampaignActive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if campaign.Subreddits == nil {
		campaign.Subreddits = []string{}
	}

	if err := s.repos.Campaign.Create(ctx, campaign); err != nil {
		return nil, err
	}

	s.log.Info().Str("campaign_id", campaign.ID).Str("user_id", callerID).Msg("Campaign created")
	return campaign, nil
}

// Get retrieves a campaign owned by the caller
func (s *campaignService) Get(ctx context.Context, campaignID, callerID string) (*models.Campaign, error) {
	return s.owned(ctx, campaignID, callerID)
}

// List retrieves the caller's campaigns with post/comment counts
func (s *campaignService) List(ctx context.Context, callerID string) ([]*models.CampaignWithCounts, error) {
	campaigns, err := s.repos.Campaign.ListByUser(ctx, callerID)
	if err != nil {
		return nil, err
	}

	result := make([]*models.CampaignWithCounts, 0, len(campaigns))
	for _, c := range campaigns {
		counts, err := s.repos.Campaign.Counts(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, &models.CampaignWithCounts{Campaign: *c, Counts: counts})
	}

	return result, nil
}

// Update saves campaign settings for the caller
func (s *campaignService) Update(ctx context.Context, campaignID, callerID string, input *models.CampaignInput) (*models.Campaign, error) {
	campaign, err := s.owned(ctx, campaignID, callerID)
	if err != nil {
		return nil, err
	}

	campaign.BrandName = input.BrandName
	campaign.ProductDescription = input.ProductDescription
	campaign.Keywords = input.Keywords
	campaign.Subreddits = input.Subreddits
	campaign.Tone = input.Tone
	campaign.MaxCommentsPerDay = input.MaxCommentsPerDay
	campaign.AutoApprove = input.AutoApprove
	if input.Status != "" {
		campaign.Status = models.CampaignStatus(input.Status)
	}
	if campaign.Subreddits == nil {
		campaign.Subreddits = []string{}
	}

	if err := s.repos.Campaign.Update(ctx, campaign); err != nil {
		return nil, err
	}

	return campaign, nil
}

// Delete removes the caller's campaign; discovered posts and comments cascade
func (s *campaignService) Delete(ctx context.Context, campaignID, callerID string) error {
	if _, err := s.owned(ctx, campaignID, callerID); err != nil {
		return err
	}
	return s.repos.Campaign.Delete(ctx, campaignID)
}

// ListPosts retrieves a campaign's discovered posts, optionally by status
func (s *campaignService) ListPosts(ctx context.Context, campaignID, callerID string, status models.PostStatus) ([]*models.DiscoveredPost, error) {
	if _, err := s.owned(ctx, campaignID, callerID); err != nil {
		return nil, err
	}
	return s.repos.Post.ListByCampaign(ctx, campaignID, status)
}

// owned loads a campaign and verifies the caller owns it. Ownership failures
// are logged as security events and fail closed.
func (s *campaignService) owned(ctx context.Context, campaignID, callerID string) (*models.Campaign, error) {
	campaign, err := s.repos.Campaign.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, ErrNotFound
	}
	if campaign.UserID != callerID {
		s.log.Warn().
			Str("campaign_id", campaignID).
			Str("caller_id", callerID).
			Str("owner_id", campaign.UserID).
			Msg("Cross-tenant campaign access denied")
		return nil, ErrForbidden
	}
	return campaign, nil
}
