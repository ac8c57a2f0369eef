package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/commentflow-api/internal/models"
	"github.com/commentflow-api/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// generationService is the concrete implementation of GenerationService
type generationService struct {
	repos     *repository.Repositories
	subs      SubscriptionService
	generator Generator
	log       zerolog.Logger
}

// newGenerationService creates a new GenerationService
func newGenerationService(repos *repository.Repositories, subs SubscriptionService, generator Generator, log zerolog.Logger) *generationService {
	return &generationService{
		repos:     repos,
		subs:      subs,
		generator: generator,
		log:       log.With().Str("service", "generation").Logger(),
	}
}

// Generate drafts an AI-authored reply for one discovered post:
// ownership and entitlement checks, mark the post queued, call the generator,
// create the draft, mark the post commented. A failed or empty generation
// leaves the post queued so it is never re-picked as fresh inventory; the
// caller recovers via an explicit regenerate.
func (s *generationService) Generate(ctx context.Context, postID, callerID string) (*models.Comment, error) {
	post, campaign, err := s.ownedPost(ctx, postID, callerID)
	if err != nil {
		return nil, err
	}

	sub, err := s.subs.Resolve(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !sub.Active {
		return nil, &AdmissionError{Message: "Active subscription required to generate comments."}
	}

	if err := s.checkCaps(ctx, callerID, campaign, sub.Plan); err != nil {
		return nil, err
	}

	// Conditional mark: only a new or already-queued post may enter
	// generation. A post another caller just commented or skipped stays put.
	marked, err := s.repos.Post.MarkQueued(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	if !marked {
		return nil, ErrConflict
	}

	return s.produceDraft(ctx, post, campaign, callerID)
}

// Regenerate rejects the existing draft, resets its post to queued, and runs
// generation again. The rejected draft is kept for audit; history is never
// edited in place.
func (s *generationService) Regenerate(ctx context.Context, commentID, callerID string) (*models.Comment, error) {
	comment, err := s.repos.Comment.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, ErrNotFound
	}
	if comment.UserID != callerID {
		s.log.Warn().Str("comment_id", commentID).Str("caller_id", callerID).
			Msg("Cross-tenant regenerate denied")
		return nil, ErrForbidden
	}

	post, campaign, err := s.ownedPost(ctx, comment.PostID, callerID)
	if err != nil {
		return nil, err
	}

	sub, err := s.subs.Resolve(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !sub.Active {
		return nil, &AdmissionError{Message: "Active subscription required to generate comments."}
	}
	if err := s.checkCaps(ctx, callerID, campaign, sub.Plan); err != nil {
		return nil, err
	}

	// Only a draft still awaiting decision (or failed after posting) can be
	// superseded; a posted or in-flight draft cannot.
	rejectable := append([]models.CommentStatus{}, models.AwaitingDecisionStatuses...)
	rejectable = append(rejectable, models.CommentFailed)
	rejected, err := s.repos.Comment.Transition(ctx, comment.ID, rejectable, models.CommentRejected)
	if err != nil {
		return nil, err
	}
	if !rejected {
		return nil, ErrConflict
	}

	if post.Status == models.PostStatusCommented {
		if _, err := s.repos.Post.Requeue(ctx, post.ID); err != nil {
			return nil, err
		}
	} else if _, err := s.repos.Post.MarkQueued(ctx, post.ID); err != nil {
		return nil, err
	}

	return s.produceDraft(ctx, post, campaign, callerID)
}

// produceDraft calls the generator and persists the result. No lock is held
// across the collaborator call; the queued mark on the post is the only
// coordination state.
func (s *generationService) produceDraft(ctx context.Context, post *models.DiscoveredPost, campaign *models.Campaign, callerID string) (*models.Comment, error) {
	text, err := s.generator.GenerateComment(ctx, GenerationContext{
		PostTitle:          post.Title,
		PostBody:           post.Body,
		Platform:           post.Platform,
		Subreddit:          post.Subreddit,
		BrandName:          campaign.BrandName,
		ProductDescription: campaign.ProductDescription,
		Tone:               campaign.Tone,
	})
	if err != nil {
		s.log.Error().Err(err).Str("post_id", post.ID).Msg("Generation call failed")
		return nil, &CollaboratorError{Op: "generate comment", Err: err}
	}
	if text == "" {
		return nil, &CollaboratorError{Op: "generate comment", Err: errors.New("AI returned empty comment")}
	}

	status := models.CommentPendingReview
	if campaign.AutoApprove {
		status = models.CommentReadyToPost
	}

	now := time.Now()
	comment := &models.Comment{
		ID:            uuid.New().String(),
		UserID:        callerID,
		CampaignID:    campaign.ID,
		PostID:        post.ID,
		GeneratedText: text,
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repos.Comment.Create(ctx, comment); err != nil {
		return nil, err
	}

	if _, err := s.repos.Post.MarkCommented(ctx, post.ID); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("post_id", post.ID).
		Str("comment_id", comment.ID).
		Str("status", string(status)).
		Msg("Draft generated")

	return comment, nil
}

// checkCaps enforces the plan's monthly generation limit and the campaign's
// daily limit
func (s *generationService) checkCaps(ctx context.Context, callerID string, campaign *models.Campaign, plan string) error {
	limits := s.subs.LimitsFor(plan)

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthly, err := s.repos.Comment.CountByUserSince(ctx, callerID, monthStart)
	if err != nil {
		return err
	}
	if monthly >= limits.MaxCommentsPerMonth {
		return &AdmissionError{Message: fmt.Sprintf(
			"Your plan allows up to %d generated comments per month.", limits.MaxCommentsPerMonth)}
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	daily, err := s.repos.Comment.CountByCampaignSince(ctx, campaign.ID, dayStart)
	if err != nil {
		return err
	}
	if daily >= campaign.MaxCommentsPerDay {
		return &AdmissionError{Message: fmt.Sprintf(
			"Campaign limit of %d comments per day reached.", campaign.MaxCommentsPerDay)}
	}

	return nil
}

// ownedPost loads a post and its campaign, verifying the campaign belongs to
// the caller
func (s *generationService) ownedPost(ctx context.Context, postID, callerID string) (*models.DiscoveredPost, *models.Campaign, error) {
	post, err := s.repos.Post.GetByID(ctx, postID)
	if err != nil {
		return nil, nil, err
	}
	if post == nil {
		return nil, nil, ErrNotFound
	}

	campaign, err := s.repos.Campaign.GetByID(ctx, post.CampaignID)
	if err != nil {
		return nil, nil, err
	}
	if campaign == nil || campaign.UserID != callerID {
		s.log.Warn().Str("post_id", postID).Str("caller_id", callerID).
			Msg("Cross-tenant post access denied")
		return nil, nil, ErrForbidden
	}

	return post, campaign, nil
}
