package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/commentflow-api/internal/config"
	"github.com/commentflow-api/internal/models"
	"github.com/commentflow-api/internal/service"
)

func TestGeneration_Generate(t *testing.T) {
	env := newTestEnv()
	user := seedUser(env.repos, "user-1", "extension", models.SubscriptionActive)
	campaign := seedCampaign(env.repos, "camp-1", user.ID)
	post := seedPost(env.repos, "post-1", campaign.ID, models.PostStatusNew)

	comment, err := env.services.Generation.Generate(context.Background(), post.ID, user.ID)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if comment.Status != models.CommentPendingReview {
		t.Errorf("Expected pending_review, got %s", comment.Status)
	}
	if comment.PostID != post.ID || comment.CampaignID != campaign.ID || comment.UserID != user.ID {
		t.Error("Draft should be tied to the post, campaign, and caller")
	}
	if comment.GeneratedText == "" {
		t.Error("Draft text should not be empty")
	}

	updated, _ := env.repos.Post.GetByID(context.Background(), post.ID)
	if updated.Status != models.PostStatusCommented {
		t.Errorf("Post should be commented after generation, got %s", updated.Status)
	}
}

func TestGeneration_AutoApprove(t *testing.T) {
	env := newTestEnv()
	user := seedUser(env.repos, "user-1", "extension", models.SubscriptionActive)
	campaign := seedCampaign(env.repos, "camp-1", user.ID)
	campaign.AutoApprove = true
	env.repos.Campaign.Update(context.Background(), campaign)
	post := seedPost(env.repos, "post-1", campaign.ID, models.PostStatusNew)

	comment, err := env.services.Generation.Generate(context.Background(), post.ID, user.ID)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if comment.Status != models.CommentReadyToPost {
		t.Errorf("Auto-approve campaign should produce ready_to_post, got %s", comment.Status)
	}
}

func TestGeneration_InactiveSubscription(t *testing.T) {
	env := newTestEnv()
	user := seedUser(env.repos, "user-1", "extension", models.SubscriptionCanceled)
	campaign := seedCampaign(env.repos, "camp-1", user.ID)
	post := seedPost(env.repos, "post-1", campaign.ID, models.PostStatusNew)

	_, err := env.services.Generation.Generate(context.Background(), post.ID, user.ID)
	if !service.IsAdmission(err) {
		t.Fatalf("Expected admission error, got %v", err)
	}

	// The post is untouched; no quota was consumed.
	p, _ := env.repos.Post.GetByID(context.Background(), post.ID)
	if p.Status != models.PostStatusNew {
		t.Errorf("Post should stay new, got %s", p.Status)
	}
}

func TestGeneration_MonthlyCap(t *testing.T) {
	cfg := testConfig()
	cfg.Plans.Limits["extension"] = config.PlanLimits{MaxCampaigns: 3, MaxCommentsPerMonth: 2}
	env := newTestEnvWithConfig(cfg)

	user := seedUser(env.repos, "user-1", "extension", models.SubscriptionActive)
	campaign := seedCampaign(env.repos, "camp-1", user.ID)

	// Two drafts already created this month, one of them rejected: rejected
	// drafts still count against the cap.
	seedComment(env.repos, "c-1", user.ID, campaign.ID, "p-old-1", models.CommentPosted, time.Now())
	seedComment(env.repos, "c-2", user.ID, campaign.ID, "p-old-2", models.CommentRejected, time.Now())

	post := seedPost(env.repos, "post-1", campaign.ID, models.PostStatusNew)
	_, err := env.services.Generation.Generate(context.Background(), post.ID, user.ID)
	if !service.IsAdmission(err) {
		t.Fatalf("Expected admission error at monthly cap, got %v", err)
	}
}

func TestGeneration_DailyCampaignCap(t *testing.T) {
	env := newTestEnv()
	user := seedUser(env.repos, "user-1", "extension", models.SubscriptionActive)
	campaign := seedCampaign(env.repos, "camp-1", user.ID)
	campaign.MaxCommentsPerDay = 1
	env.repos.Campaign.Update(context.Background(), campaign)

	seedComment(env.repos, "c-1", user.ID, campaign.ID, "p-old", models.CommentPendingReview, time.Now())

	post := seedPost(env.repos, "post-1", campaign.ID, models.PostStatusNew)
	_, err := env.services.Generation.Generate(context.Background(), post.ID, user.ID)
	if !service.IsAdmission(err) {
		t.Fatalf("Expected admission error at daily cap, got %v", err)
	}
}

func TestGeneration_EmptyOutputLeavesPostQueued(t *testing.T) {
	env := newTestEnv()
	user := seedUser(env.repos, "user-1", "extension", models.SubscriptionActive)
	campaign := seedCampaign(env.repos, "camp-1", user.ID)
	post := seedPost(env.repos, "post-1", campaign.ID, models.PostStatusNew)

	env.generator.GenerateFunc = func(ctx context.Context, gc service.GenerationContext) (string, error) {
		return "", nil
	}

	_, err := env.services.Generation.Generate(context.Background(), post.ID, user.ID)
	if !service.IsCollaborator(err) {
		t.Fatalf("Expected collaborator error for empty output, got %v", err)
	}

	p, _ := env.repos.Post.GetByID(context.Background(), post.ID)
	if p.Status != models.PostStatusQueued {
		t.Errorf("Post should stay queued after empty output, got %s", p.Status)
	}
	count, _ := env.repos.Comment.Count(context.Background())
	if count != 0 {
		t.Errorf("No draft should exist after empty output, got %d", count)
	}

	// Recovery: a later call against the still-queued post succeeds.
	env.generator.GenerateFunc = nil
	comment, err := env.services.Generation.Generate(context.Background(), post.ID, user.ID)
	if err != nil {
		t.Fatalf("Retry generate failed: %v", err)
	}
	if comment.Status != models.CommentPendingReview {
		t.Errorf("Expected pending_review, got %s", comment.Status)
	}
}

func TestGeneration_SkippedPostConflict(t *testing.T) {
	env := newTestEnv()
	user := seedUser(env.repos, "user-1", "extension", models.SubscriptionActive)
	campaign := seedCampaign(env.repos, "camp-1", user.ID)
	post := seedPost(env.repos, "post-1", campaign.ID, models.PostStatusSkipped)

	if _, err := env.services.Generation.Generate(context.Background(), post.ID, user.ID); !errors.Is(err, service.ErrConflict) {
		t.Errorf("Expected ErrConflict for skipped post, got %v", err)
	}
}

func TestGeneration_CrossTenantDenied(t *testing.T) {
	env := newTestEnv()
	owner := seedUser(env.repos, "owner", "extension", models.SubscriptionActive)
	other := seedUser(env.repos, "other", "extension", models.SubscriptionActive)
	campaign := seedCampaign(env.repos, "camp-1", owner.ID)
	post := seedPost(env.repos, "post-1", campaign.ID, models.PostStatusNew)

	if _, err := env.services.Generation.Generate(context.Background(), post.ID, other.ID); !errors.Is(err, service.ErrForbidden) {
		t.Errorf("Expected ErrForbidden, got %v", err)
	}
}

func TestGeneration_Regenerate(t *testing.T) {
	env := newTestEnv()
	user := seedUser(env.repos, "user-1", "extension", models.SubscriptionActive)
	campaign := seedCampaign(env.repos, "camp-1", user.ID)
	post := seedPost(env.repos, "post-1", campaign.ID, models.PostStatusCommented)
	old := seedComment(env.repos, "c-1", user.ID, campaign.ID, post.ID, models.CommentPendingReview, time.Now())

	fresh, err := env.services.Generation.Regenerate(context.Background(), old.ID, user.ID)
	if err != nil {
		t.Fatalf("Regenerate failed: %v", err)
	}

	if fresh.ID == old.ID {
		t.Error("Regenerate should create a new draft, not reuse the old row")
	}
	rejected, _ := env.repos.Comment.GetByID(context.Background(), old.ID)
	if rejected.Status != models.CommentRejected {
		t.Errorf("Old draft should be rejected, got %s", rejected.Status)
	}

	p, _ := env.repos.Post.GetByID(context.Background(), post.ID)
	if p.Status != models.PostStatusCommented {
		t.Errorf("Post should end commented again, got %s", p.Status)
	}
}

func TestGeneration_RegeneratePostedDraftConflict(t *testing.T) {
	env := newTestEnv()
	user := seedUser(env.repos, "user-1", "extension", models.SubscriptionActive)
	campaign := seedCampaign(env.repos, "camp-1", user.ID)
	post := seedPost(env.repos, "post-1", campaign.ID, models.PostStatusCommented)
	posted := seedComment(env.repos, "c-1", user.ID, campaign.ID, post.ID, models.CommentPosted, time.Now())

	if _, err := env.services.Generation.Regenerate(context.Background(), posted.ID, user.ID); !errors.Is(err, service.ErrConflict) {
		t.Errorf("Expected ErrConflict for posted draft, got %v", err)
	}
}
