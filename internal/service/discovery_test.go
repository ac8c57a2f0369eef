package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/commentflow-api/internal/models"
	"github.com/commentflow-api/internal/service"
)

func TestRelevance_TitleOutweighsBody(t *testing.T) {
	keywords := []string{"acme"}

	titleHit := service.Relevance("acme thoughts", "nothing here", keywords)
	bodyHit := service.Relevance("nothing here", "acme thoughts", keywords)

	if titleHit <= bodyHit {
		t.Errorf("Title match should outscore body match: title=%f body=%f", titleHit, bodyHit)
	}
}

func TestRelevance_Range(t *testing.T) {
	keywords := []string{"acme", "tracker"}

	cases := []struct {
		name  string
		title string
		body  string
	}{
		{"no match", "unrelated", "unrelated"},
		{"full match with cue", "best acme tracker?", "acme tracker in the body too"},
		{"cue only", "which one should I pick", ""},
	}
	for _, tc := range cases {
		score := service.Relevance(tc.title, tc.body, keywords)
		if score < 0 || score > 1 {
			t.Errorf("%s: score %f out of [0,1]", tc.name, score)
		}
	}
}

func TestRelevance_NoKeywords(t *testing.T) {
	if score := service.Relevance("best acme?", "acme", nil); score != 0 {
		t.Errorf("Expected 0 for empty keywords, got %f", score)
	}
}

func TestRelevance_CueBonusAppliedOnce(t *testing.T) {
	keywords := []string{"acme"}

	oneCue := service.Relevance("which acme", "", keywords)
	manyCues := service.Relevance("which acme is the best? recommend vs review", "", keywords)

	if oneCue != manyCues {
		t.Errorf("Cue bonus should be flat: one=%f many=%f", oneCue, manyCues)
	}
}

func TestDiscovery_Run(t *testing.T) {
	env := newTestEnv()
	user := seedUser(env.repos, "user-1", "extension", models.SubscriptionActive)
	campaign := seedCampaign(env.repos, "camp-1", user.ID)

	env.searcher.SearchFunc = func(ctx context.Context, target service.SearchTarget) ([]service.Candidate, error) {
		return []service.Candidate{
			{NativeID: target.Platform + "-a", Title: "Best acme?", URL: "https://example.com/a"},
			{NativeID: target.Platform + "-b", Title: "unrelated", URL: "https://example.com/b"},
		}, nil
	}

	report, err := env.services.Discovery.Run(context.Background(), campaign.ID, user.ID)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// One reddit target per subreddit plus one youtube target, two candidates each
	if report.Inserted != 4 {
		t.Errorf("Expected 4 inserted, got %d", report.Inserted)
	}
	if report.Skipped != 0 {
		t.Errorf("Expected 0 skipped, got %d", report.Skipped)
	}
	if len(report.Failures) != 0 {
		t.Errorf("Expected no failures, got %v", report.Failures)
	}

	posts, _ := env.repos.Post.ListByCampaign(context.Background(), campaign.ID, "")
	for _, p := range posts {
		if p.Status != models.PostStatusNew {
			t.Errorf("Ingested post should be new, got %s", p.Status)
		}
	}
}

func TestDiscovery_RerunIsIdempotent(t *testing.T) {
	env := newTestEnv()
	user := seedUser(env.repos, "user-1", "extension", models.SubscriptionActive)
	campaign := seedCampaign(env.repos, "camp-1", user.ID)

	env.searcher.SearchFunc = func(ctx context.Context, target service.SearchTarget) ([]service.Candidate, error) {
		return []service.Candidate{{NativeID: target.Platform + "-a", Title: "Best acme?"}}, nil
	}

	first, err := env.services.Discovery.Run(context.Background(), campaign.ID, user.ID)
	if err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	second, err := env.services.Discovery.Run(context.Background(), campaign.ID, user.ID)
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}

	if first.Inserted != 2 {
		t.Errorf("Expected 2 inserted on first run, got %d", first.Inserted)
	}
	if second.Inserted != 0 || second.Skipped != 2 {
		t.Errorf("Second run should skip everything: inserted=%d skipped=%d", second.Inserted, second.Skipped)
	}

	count, _ := env.repos.Post.Count(context.Background())
	if count != 2 {
		t.Errorf("Expected 2 posts after rerun, got %d", count)
	}
}

func TestDiscovery_PartialFailure(t *testing.T) {
	env := newTestEnv()
	user := seedUser(env.repos, "user-1", "extension", models.SubscriptionActive)
	campaign := seedCampaign(env.repos, "camp-1", user.ID)

	env.searcher.SearchFunc = func(ctx context.Context, target service.SearchTarget) ([]service.Candidate, error) {
		if target.Platform == models.PlatformYouTube {
			return nil, errors.New("quota exceeded")
		}
		return []service.Candidate{{NativeID: "r-a", Title: "Best acme?"}}, nil
	}

	report, err := env.services.Discovery.Run(context.Background(), campaign.ID, user.ID)
	if err != nil {
		t.Fatalf("Run should survive a failing target: %v", err)
	}

	if report.Inserted != 1 {
		t.Errorf("Expected 1 inserted from the surviving target, got %d", report.Inserted)
	}
	if len(report.Failures) != 1 {
		t.Fatalf("Expected 1 failure, got %d", len(report.Failures))
	}
	if report.Failures[0].Target != models.PlatformYouTube {
		t.Errorf("Expected youtube failure, got %s", report.Failures[0].Target)
	}
}

func TestDiscovery_Denied(t *testing.T) {
	env := newTestEnv()
	owner := seedUser(env.repos, "owner", "extension", models.SubscriptionActive)
	other := seedUser(env.repos, "other", "extension", models.SubscriptionActive)
	campaign := seedCampaign(env.repos, "camp-1", owner.ID)

	if _, err := env.services.Discovery.Run(context.Background(), campaign.ID, other.ID); !errors.Is(err, service.ErrForbidden) {
		t.Errorf("Expected ErrForbidden for cross-tenant run, got %v", err)
	}

	if _, err := env.services.Discovery.Run(context.Background(), "missing", owner.ID); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown campaign, got %v", err)
	}
}

func TestDiscovery_PausedCampaign(t *testing.T) {
	env := newTestEnv()
	user := seedUser(env.repos, "user-1", "extension", models.SubscriptionActive)
	campaign := seedCampaign(env.repos, "camp-1", user.ID)
	campaign.Status = models.CampaignPaused
	env.repos.Campaign.Update(context.Background(), campaign)

	if _, err := env.services.Discovery.Run(context.Background(), campaign.ID, user.ID); !errors.Is(err, service.ErrConflict) {
		t.Errorf("Expected ErrConflict for paused campaign, got %v", err)
	}
}
