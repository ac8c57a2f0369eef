package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/commentflow-api/internal/models"
	"github.com/commentflow-api/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// cueWords mark question/comparison/recommendation posts worth replying to
var cueWords = []string{
	"?", "best", "top", "review", "vs", "how to", "which", "recommend", "looking for",
}

// discoveryService is the concrete implementation of DiscoveryService
type discoveryService struct {
	repos    *repository.Repositories
	searcher Searcher
	workers  int
	log      zerolog.Logger
}

// newDiscoveryService creates a new DiscoveryService
func newDiscoveryService(repos *repository.Repositories, searcher Searcher, workers int, log zerolog.Logger) *discoveryService {
	if workers < 1 {
		workers = 1
	}
	return &discoveryService{
		repos:    repos,
		searcher: searcher,
		workers:  workers,
		log:      log.With().Str("service", "discovery").Logger(),
	}
}

// Run fans out one search call per target and ingests scored candidates into
// the campaign's new pool. A failing target never aborts the run; its error is
// collected into the report.
func (s *discoveryService) Run(ctx context.Context, campaignID, callerID string) (*models.DiscoveryReport, error) {
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
			Msg("Cross-tenant discovery denied")
		return nil, ErrForbidden
	}
	if campaign.Status != models.CampaignActive {
		return nil, ErrConflict
	}

	targets := buildTargets(campaign)

	report := &models.DiscoveryReport{}
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.workers)

	for _, target := range targets {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return report, ctx.Err()
		}

		wg.Add(1)
		go func(t SearchTarget) {
			defer wg.Done()
			defer func() { <-sem }()

			candidates, err := s.searcher.Search(ctx, t)
			if err != nil {
				s.log.Warn().Err(err).Str("platform", t.Platform).Str("subreddit", t.Subreddit).
					Msg("Search target failed")
				mu.Lock()
				report.Failures = append(report.Failures, models.DiscoveryFailure{
					Target:  targetName(t),
					Message: err.Error(),
				})
				mu.Unlock()
				return
			}

			for _, cand := range candidates {
				post := &models.DiscoveredPost{
					ID:             uuid.New().String(),
					CampaignID:     campaign.ID,
					Platform:       t.Platform,
					PlatformPostID: cand.NativeID,
					Title:          cand.Title,
					Body:           cand.Body,
					URL:            cand.URL,
					Subreddit:      cand.SubLabel,
					RelevanceScore: Relevance(cand.Title, cand.Body, campaign.Keywords),
					Status:         models.PostStatusNew,
					CreatedAt:      time.Now(),
					UpdatedAt:      time.Now(),
				}

				inserted, err := s.repos.Post.InsertIgnore(ctx, post)
				if err != nil {
					mu.Lock()
					report.Failures = append(report.Failures, models.DiscoveryFailure{
						Target:  targetName(t),
						Message: err.Error(),
					})
					mu.Unlock()
					continue
				}

				mu.Lock()
				if inserted {
					report.Inserted++
				} else {
					report.Skipped++
				}
				mu.Unlock()
			}
		}(target)
	}

	wg.Wait()

	s.log.Info().
		Str("campaign_id", campaign.ID).
		Int("inserted", report.Inserted).
		Int("skipped", report.Skipped).
		Int("failures", len(report.Failures)).
		Msg("Discovery run completed")

	return report, nil
}

// buildTargets produces one search call per subreddit plus one YouTube keyword
// search per campaign
func buildTargets(campaign *models.Campaign) []SearchTarget {
	query := strings.Join(campaign.Keywords, " ")

	targets := make([]SearchTarget, 0, len(campaign.Subreddits)+1)
	for _, sub := range campaign.Subreddits {
		targets = append(targets, SearchTarget{
			Platform:  models.PlatformReddit,
			Query:     query,
			Subreddit: sub,
		})
	}
	targets = append(targets, SearchTarget{
		Platform: models.PlatformYouTube,
		Query:    query,
	})

	return targets
}

func targetName(t SearchTarget) string {
	if t.Platform == models.PlatformReddit {
		return "reddit/r/" + t.Subreddit
	}
	return t.Platform
}

// Relevance scores a candidate against the campaign keywords. Title matches
// weigh 3, body matches 1, and question/comparison cues add a flat 2. The sum
// is normalized by the theoretical maximum (4 per keyword plus the cue bonus)
// into [0,1].
func Relevance(title, body string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}

	titleLower := strings.ToLower(title)
	bodyLower := strings.ToLower(body)
	combined := titleLower + " " + bodyLower

	score := 0.0
	for _, keyword := range keywords {
		kw := strings.ToLower(keyword)
		if kw == "" {
			continue
		}
		if strings.Contains(titleLower, kw) {
			score += 3
		}
		if strings.Contains(bodyLower, kw) {
			score += 1
		}
	}

	for _, cue := range cueWords {
		if strings.Contains(combined, cue) {
			score += 2
			break
		}
	}

	maxPossible := float64(len(keywords)*4 + 2)
	normalized := score / maxPossible
	if normalized > 1 {
		return 1
	}
	return normalized
}
