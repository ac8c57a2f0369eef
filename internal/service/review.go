package service

import (
	"context"
	"time"

	"github.com/commentflow-api/internal/models"
	"github.com/commentflow-api/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// editableStatuses are the states in which draft text may still change. Once a
// draft is claimed the extension must never be served stale text, so posting
// and beyond are excluded.
var editableStatuses = []models.CommentStatus{
	models.CommentPendingReview, models.CommentApproved, models.CommentQueued,
	models.CommentFailed,
}

// reviewService is the concrete implementation of ReviewService
type reviewService struct {
	repos *repository.Repositories
	subs  SubscriptionService
	log   zerolog.Logger
}

// newReviewService creates a new ReviewService
func newReviewService(repos *repository.Repositories, subs SubscriptionService, log zerolog.Logger) *reviewService {
	return &reviewService{
		repos: repos,
		subs:  subs,
		log:   log.With().Str("service", "review").Logger(),
	}
}

// List retrieves the caller's drafts in a status group. Rejected drafts never
// appear in any group.
func (s *reviewService) List(ctx context.Context, callerID string, group models.StatusGroup) ([]*models.Comment, error) {
	return s.repos.Comment.ListByUser(ctx, callerID, models.StatusesFor(group))
}

// Edit replaces the draft text. Permitted only while the draft is awaiting
// decision or failed; a claim in flight makes the edit a conflict.
func (s *reviewService) Edit(ctx context.Context, commentID, callerID, text string) (*models.Comment, error) {
	comment, err := s.owned(ctx, commentID, callerID)
	if err != nil {
		return nil, err
	}

	updated, err := s.repos.Comment.UpdateText(ctx, comment.ID, text, editableStatuses)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrConflict
	}

	comment.GeneratedText = text
	return comment, nil
}

// Approve moves an awaiting-decision draft to ready_to_post
func (s *reviewService) Approve(ctx context.Context, commentID, callerID string) error {
	return s.transition(ctx, commentID, callerID, models.AwaitingDecisionStatuses, models.CommentReadyToPost)
}

// Reject hides an awaiting-decision draft from all active views. Terminal;
// the row is kept for audit.
func (s *reviewService) Reject(ctx context.Context, commentID, callerID string) error {
	return s.transition(ctx, commentID, callerID, models.AwaitingDecisionStatuses, models.CommentRejected)
}

// Retry re-queues a failed draft for posting. Reviewer-initiated; failures are
// never retried automatically.
func (s *reviewService) Retry(ctx context.Context, commentID, callerID string) error {
	return s.transition(ctx, commentID, callerID,
		[]models.CommentStatus{models.CommentFailed}, models.CommentReadyToPost)
}

// WriteDraft creates the first draft for a post by hand. There is no synthetic
// placeholder row to reconcile: a post without a draft simply has none until
// the reviewer writes one. Requires an active subscription but consumes no
// AI-generation quota.
func (s *reviewService) WriteDraft(ctx context.Context, postID, callerID, text string) (*models.Comment, error) {
	post, err := s.repos.Post.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}

	campaign, err := s.repos.Campaign.GetByID(ctx, post.CampaignID)
	if err != nil {
		return nil, err
	}
	if campaign == nil || campaign.UserID != callerID {
		s.log.Warn().Str("post_id", postID).Str("caller_id", callerID).
			Msg("Cross-tenant draft write denied")
		return nil, ErrForbidden
	}

	sub, err := s.subs.Resolve(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !sub.Active {
		return nil, &AdmissionError{Message: "Active subscription required."}
	}

	existing, err := s.repos.Comment.GetActiveByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrConflict
	}

	now := time.Now()
	comment := &models.Comment{
		ID:            uuid.New().String(),
		UserID:        callerID,
		CampaignID:    campaign.ID,
		PostID:        post.ID,
		GeneratedText: text,
		Status:        models.CommentPendingReview,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repos.Comment.Create(ctx, comment); err != nil {
		return nil, err
	}

	if _, err := s.repos.Post.MarkQueued(ctx, post.ID); err != nil {
		return nil, err
	}
	if _, err := s.repos.Post.MarkCommented(ctx, post.ID); err != nil {
		return nil, err
	}

	return comment, nil
}

// QueuePost marks a post as queued on reviewer request
func (s *reviewService) QueuePost(ctx context.Context, postID, callerID string) error {
	return s.postTransition(ctx, postID, callerID, s.repos.Post.MarkQueued)
}

// SkipPost skips a post. Terminal.
func (s *reviewService) SkipPost(ctx context.Context, postID, callerID string) error {
	return s.postTransition(ctx, postID, callerID, s.repos.Post.Skip)
}

func (s *reviewService) postTransition(ctx context.Context, postID, callerID string, apply func(context.Context, string) (bool, error)) error {
	post, err := s.repos.Post.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrNotFound
	}

	campaign, err := s.repos.Campaign.GetByID(ctx, post.CampaignID)
	if err != nil {
		return err
	}
	if campaign == nil || campaign.UserID != callerID {
		s.log.Warn().Str("post_id", postID).Str("caller_id", callerID).
			Msg("Cross-tenant post transition denied")
		return ErrForbidden
	}

	ok, err := apply(ctx, postID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	return nil
}

func (s *reviewService) transition(ctx context.Context, commentID, callerID string, from []models.CommentStatus, to models.CommentStatus) error {
	comment, err := s.owned(ctx, commentID, callerID)
	if err != nil {
		return err
	}

	ok, err := s.repos.Comment.Transition(ctx, comment.ID, from, to)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	return nil
}

// owned loads a comment and verifies the caller owns it
func (s *reviewService) owned(ctx context.Context, commentID, callerID string) (*models.Comment, error) {
	comment, err := s.repos.Comment.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, ErrNotFound
	}
	if comment.UserID != callerID {
		s.log.Warn().
			Str("comment_id", commentID).
			Str("caller_id", callerID).
			Msg("Cross-tenant comment access denied")
		return nil, ErrForbidden
	}
	return comment, nil
}
