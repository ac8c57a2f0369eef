package service

import (
	"context"

	"github.com/commentflow-api/internal/config"
	"github.com/commentflow-api/internal/models"
	"github.com/commentflow-api/internal/repository"
	"github.com/rs/zerolog"
)

// queueService is the concrete implementation of QueueService. It is the
// boundary between trusted server logic and the untrusted, independently
// scheduled extension poller.
type queueService struct {
	repos *repository.Repositories
	subs  SubscriptionService
	cfg   config.QueueConfig
	log   zerolog.Logger
}

// newQueueService creates a new QueueService
func newQueueService(repos *repository.Repositories, subs SubscriptionService, cfg config.QueueConfig, log zerolog.Logger) *queueService {
	return &queueService{
		repos: repos,
		subs:  subs,
		cfg:   cfg,
		log:   log.With().Str("service", "queue").Logger(),
	}
}

// Claim resolves the extension credential, checks entitlement, and atomically
// marks up to a batch of the user's oldest ready drafts as posting. Two
// overlapping claims never receive the same draft.
func (s *queueService) Claim(ctx context.Context, token string) ([]*models.ClaimedComment, error) {
	user, err := s.resolveToken(ctx, token)
	if err != nil {
		return nil, err
	}

	sub, err := s.subs.Resolve(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if !sub.Active {
		return nil, ErrForbidden
	}

	// Recover drafts stranded in posting by a crashed extension before
	// selecting; the revert is conditional, so it cannot race the claim.
	if s.cfg.PostingTimeout > 0 {
		reclaimed, err := s.repos.Comment.ReclaimStale(ctx, s.cfg.PostingTimeout)
		if err != nil {
			s.log.Error().Err(err).Msg("Stale posting reclaim failed")
		} else if reclaimed > 0 {
			s.log.Info().Int64("count", reclaimed).Msg("Reclaimed stale posting drafts")
		}
	}

	claimed, err := s.repos.Comment.ClaimReady(ctx, user.ID, s.cfg.BatchSize)
	if err != nil {
		return nil, err
	}

	if len(claimed) > 0 {
		s.log.Info().Str("user_id", user.ID).Int("count", len(claimed)).Msg("Drafts claimed")
	}

	return claimed, nil
}

// SettlePosted reports a successful post for a claimed draft. Duplicate or
// out-of-state settles are conflicts, never corruption.
func (s *queueService) SettlePosted(ctx context.Context, token, commentID, platformURL string) error {
	user, err := s.resolveToken(ctx, token)
	if err != nil {
		return err
	}

	settled, err := s.repos.Comment.SettlePosted(ctx, user.ID, commentID, platformURL)
	if err != nil {
		return err
	}
	if !settled {
		// Poller retries can settle twice; an already-posted draft is a no-op.
		return s.settleNoop(ctx, user.ID, commentID, models.CommentPosted)
	}

	s.log.Info().Str("comment_id", commentID).Str("url", platformURL).Msg("Draft posted")
	return nil
}

// SettleFailed reports a failed post. The draft lands in failed, which a
// reviewer may retry; it is never auto-retried.
func (s *queueService) SettleFailed(ctx context.Context, token, commentID string) error {
	user, err := s.resolveToken(ctx, token)
	if err != nil {
		return err
	}

	settled, err := s.repos.Comment.SettleFailed(ctx, user.ID, commentID)
	if err != nil {
		return err
	}
	if !settled {
		return s.settleNoop(ctx, user.ID, commentID, models.CommentFailed)
	}

	s.log.Warn().Str("comment_id", commentID).Msg("Draft failed to post")
	return nil
}

// settleNoop resolves a settle that changed nothing: a duplicate settle into
// the same terminal state succeeds silently, anything else is a conflict.
func (s *queueService) settleNoop(ctx context.Context, userID, commentID string, want models.CommentStatus) error {
	comment, err := s.repos.Comment.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment == nil || comment.UserID != userID {
		return ErrNotFound
	}
	if comment.Status == want {
		return nil
	}
	return ErrConflict
}

func (s *queueService) resolveToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	user, err := s.repos.User.GetByExtensionToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthorized
	}
	return user, nil
}
