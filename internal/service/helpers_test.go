package service_test

import (
	"context"
	"time"

	"github.com/commentflow-api/internal/config"
	"github.com/commentflow-api/internal/mocks"
	"github.com/commentflow-api/internal/models"
	"github.com/commentflow-api/internal/repository"
	"github.com/commentflow-api/internal/service"
	"github.com/rs/zerolog"
)

// testEnv bundles the mocked wiring most service tests need
type testEnv struct {
	services  *service.Services
	repos     *repository.Repositories
	searcher  *mocks.MockSearcher
	generator *mocks.MockGenerator
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret: "test-secret",
			TokenTTL:  time.Hour,
		},
		Plans: config.PlansConfig{
			Limits: map[string]config.PlanLimits{
				"extension": {MaxCampaigns: 3, MaxCommentsPerMonth: 150},
				"dfy":       {MaxCampaigns: -1, MaxCommentsPerMonth: 1000},
			},
		},
		Queue: config.QueueConfig{
			BatchSize:      5,
			RateLimit:      30,
			RateWindow:     time.Minute,
			PostingTimeout: 15 * time.Minute,
		},
		Search: config.SearchConfig{Workers: 4},
	}
}

func newTestEnv() *testEnv {
	return newTestEnvWithConfig(testConfig())
}

func newTestEnvWithConfig(cfg *config.Config) *testEnv {
	repos := mocks.NewRepositories()
	searcher := &mocks.MockSearcher{}
	generator := &mocks.MockGenerator{}
	services := service.NewServices(repos, searcher, generator, cfg, zerolog.Nop())
	return &testEnv{services: services, repos: repos, searcher: searcher, generator: generator}
}

func seedUser(repos *repository.Repositories, id, plan string, status models.SubscriptionStatus) *models.User {
	user := &models.User{
		ID:                 id,
		Email:              id + "@test.com",
		Name:               "Test " + id,
		ExtensionToken:     "tok-" + id,
		SubscriptionStatus: status,
		SubscriptionPlan:   plan,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}
	repos.User.Create(context.Background(), user)
	return user
}

func seedCampaign(repos *repository.Repositories, id, userID string) *models.Campaign {
	campaign := &models.Campaign{
		ID:                 id,
		UserID:             userID,
		BrandName:          "Acme",
		ProductDescription: "A project tracker for small teams",
		Keywords:           []string{"acme", "project tracker"},
		Subreddits:         []string{"golang"},
		Tone:               "helpful",
		MaxCommentsPerDay:  5,
		Status:             models.CampaignActive,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}
	repos.Campaign.Create(context.Background(), campaign)
	return campaign
}

func seedPost(repos *repository.Repositories, id, campaignID string, status models.PostStatus) *models.DiscoveredPost {
	post := &models.DiscoveredPost{
		ID:             id,
		CampaignID:     campaignID,
		Platform:       models.PlatformReddit,
		PlatformPostID: "native-" + id,
		Title:          "Looking for a project tracker",
		Body:           "Something lightweight for a team of five",
		URL:            "https://reddit.com/r/golang/" + id,
		Subreddit:      "golang",
		Status:         status,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	repos.Post.InsertIgnore(context.Background(), post)
	return post
}

func seedComment(repos *repository.Repositories, id, userID, campaignID, postID string, status models.CommentStatus, createdAt time.Time) *models.Comment {
	comment := &models.Comment{
		ID:            id,
		UserID:        userID,
		CampaignID:    campaignID,
		PostID:        postID,
		GeneratedText: "Draft text for " + id,
		Status:        status,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
	repos.Comment.Create(context.Background(), comment)
	return comment
}
