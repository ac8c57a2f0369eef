package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/commentflow-api/internal/api"
	"github.com/commentflow-api/internal/config"
	"github.com/commentflow-api/internal/mocks"
	"github.com/commentflow-api/internal/models"
	"github.com/commentflow-api/internal/repository"
	"github.com/commentflow-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type testServer struct {
	router *gin.Engine
	repos  *repository.Repositories
}

func setupTestRouter(cfg *config.Config) *testServer {
	gin.SetMode(gin.TestMode)

	repos := mocks.NewRepositories()
	services := service.NewServices(repos, &mocks.MockSearcher{}, &mocks.MockGenerator{}, cfg, zerolog.Nop())
	router := api.NewRouter(services, repos, cfg, zerolog.Nop())

	return &testServer{router: router, repos: repos}
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour},
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
		Search:  config.SearchConfig{Workers: 2},
		Billing: config.BillingConfig{WebhookSecret: "hook-secret"},
	}
}

func (ts *testServer) do(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

// registerAndLogin creates an account over HTTP and returns its session token
// and the created user
func (ts *testServer) registerAndLogin(t *testing.T, email string) (string, *models.User) {
	t.Helper()

	w := ts.do("POST", "/v1/auth/register", gin.H{
		"email": email, "password": "password123", "name": "Tester",
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("Register returned %d: %s", w.Code, w.Body.String())
	}

	w = ts.do("POST", "/v1/auth/login", gin.H{"email": email, "password": "password123"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Login returned %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Token string       `json:"token"`
		User  *models.User `json:"user"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)

	user, _ := ts.repos.User.GetByEmail(context.Background(), email)
	return resp.Token, user
}

func (ts *testServer) activate(userID, plan string) {
	ts.repos.User.UpdateSubscription(context.Background(), userID, models.SubscriptionActive, plan)
}

func TestHealthEndpoint(t *testing.T) {
	ts := setupTestRouter(testConfig())

	w := ts.do("GET", "/health", nil, nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}

	var resp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["status"] != "healthy" {
		t.Errorf("Expected healthy status, got %v", resp["status"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := setupTestRouter(testConfig())

	w := ts.do("GET", "/metrics", nil, nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
}

func TestSecuredEndpointsRequireSession(t *testing.T) {
	ts := setupTestRouter(testConfig())

	paths := []struct{ method, path string }{
		{"GET", "/v1/campaigns"},
		{"POST", "/v1/campaigns"},
		{"GET", "/v1/user/subscription"},
		{"GET", "/v1/comments"},
	}
	for _, p := range paths {
		w := ts.do(p.method, p.path, nil, nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token: expected 401, got %d", p.method, p.path, w.Code)
		}
	}

	// A garbage bearer token is rejected the same way
	w := ts.do("GET", "/v1/campaigns", nil, map[string]string{"Authorization": "Bearer nonsense"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for bad token, got %d", w.Code)
	}
}

func TestCampaignLifecycle(t *testing.T) {
	ts := setupTestRouter(testConfig())
	token, user := ts.registerAndLogin(t, "alice@test.com")
	auth := map[string]string{"Authorization": "Bearer " + token}

	input := gin.H{
		"brand_name":          "Acme",
		"product_description": "A project tracker",
		"keywords":            []string{"acme"},
		"subreddits":          []string{"golang"},
	}

	// No subscription yet: admission rejection with the limit message
	w := ts.do("POST", "/v1/campaigns", input, auth)
	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403 without subscription, got %d: %s", w.Code, w.Body.String())
	}

	ts.activate(user.ID, "extension")

	w = ts.do("POST", "/v1/campaigns", input, auth)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var campaign models.Campaign
	json.Unmarshal(w.Body.Bytes(), &campaign)
	if campaign.ID == "" || campaign.Tone != "helpful" {
		t.Errorf("Campaign defaults not applied: %+v", campaign)
	}

	w = ts.do("GET", "/v1/campaigns", nil, auth)
	if w.Code != http.StatusOK {
		t.Fatalf("List returned %d", w.Code)
	}

	w = ts.do("DELETE", "/v1/campaigns/"+campaign.ID, nil, auth)
	if w.Code != http.StatusNoContent {
		t.Errorf("Delete returned %d", w.Code)
	}
	w = ts.do("GET", "/v1/campaigns/"+campaign.ID, nil, auth)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", w.Code)
	}
}

func TestCampaignValidation(t *testing.T) {
	ts := setupTestRouter(testConfig())
	token, user := ts.registerAndLogin(t, "alice@test.com")
	ts.activate(user.ID, "extension")
	auth := map[string]string{"Authorization": "Bearer " + token}

	w := ts.do("POST", "/v1/campaigns", gin.H{"brand_name": "Acme"}, auth)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for missing fields, got %d", w.Code)
	}
	var resp struct {
		Errors []struct {
			Field string `json:"field"`
		} `json:"errors"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Errors) == 0 {
		t.Error("Expected field errors in the response")
	}
}

func TestExtensionQueueRequiresToken(t *testing.T) {
	ts := setupTestRouter(testConfig())

	w := ts.do("GET", "/v1/extension/queue", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without header, got %d", w.Code)
	}

	w = ts.do("GET", "/v1/extension/queue", nil, map[string]string{"X-Extension-Token": "bogus"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for unknown token, got %d", w.Code)
	}
}

func TestExtensionClaimSettleRoundTrip(t *testing.T) {
	ts := setupTestRouter(testConfig())
	_, user := ts.registerAndLogin(t, "alice@test.com")
	ts.activate(user.ID, "extension")
	ext := map[string]string{"X-Extension-Token": user.ExtensionToken}

	ctx := context.Background()
	campaign := &models.Campaign{ID: "camp-1", UserID: user.ID, Status: models.CampaignActive}
	ts.repos.Campaign.Create(ctx, campaign)
	post := &models.DiscoveredPost{
		ID: "post-1", CampaignID: campaign.ID, Platform: models.PlatformReddit,
		PlatformPostID: "n1", Title: "Help me pick", URL: "https://reddit.com/r/golang/x",
		Subreddit: "golang", Status: models.PostStatusCommented,
	}
	ts.repos.Post.InsertIgnore(ctx, post)
	ts.repos.Comment.Create(ctx, &models.Comment{
		ID: "c-1", UserID: user.ID, CampaignID: campaign.ID, PostID: post.ID,
		GeneratedText: "try acme", Status: models.CommentReadyToPost, CreatedAt: time.Now(),
	})

	w := ts.do("GET", "/v1/extension/queue", nil, ext)
	if w.Code != http.StatusOK {
		t.Fatalf("Claim returned %d: %s", w.Code, w.Body.String())
	}
	var claim struct {
		Comments []models.ClaimedComment `json:"comments"`
		Count    int                     `json:"count"`
	}
	json.Unmarshal(w.Body.Bytes(), &claim)
	if claim.Count != 1 || claim.Comments[0].ID != "c-1" {
		t.Fatalf("Unexpected claim payload: %s", w.Body.String())
	}
	if claim.Comments[0].URL != post.URL || claim.Comments[0].Platform != models.PlatformReddit {
		t.Error("Claimed item missing post target fields")
	}

	// A second poll finds the queue empty; the draft is already claimed
	w = ts.do("GET", "/v1/extension/queue", nil, ext)
	json.Unmarshal(w.Body.Bytes(), &claim)
	if claim.Count != 0 {
		t.Errorf("Expected empty second claim, got %d", claim.Count)
	}

	w = ts.do("POST", "/v1/extension/queue/c-1", gin.H{
		"status": "posted", "platform_url": "https://reddit.com/r/golang/x/c",
	}, ext)
	if w.Code != http.StatusOK {
		t.Fatalf("Settle returned %d: %s", w.Code, w.Body.String())
	}

	// Duplicate settles are no-ops, conflicting ones are 409
	w = ts.do("POST", "/v1/extension/queue/c-1", gin.H{"status": "posted", "platform_url": "https://x"}, ext)
	if w.Code != http.StatusOK {
		t.Errorf("Duplicate settle should be 200, got %d", w.Code)
	}
	w = ts.do("POST", "/v1/extension/queue/c-1", gin.H{"status": "failed"}, ext)
	if w.Code != http.StatusConflict {
		t.Errorf("Conflicting settle should be 409, got %d", w.Code)
	}

	w = ts.do("POST", "/v1/extension/queue/c-1", gin.H{"status": "maybe"}, ext)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Unknown outcome should be 400, got %d", w.Code)
	}
}

func TestExtensionClaimRateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.Queue.RateLimit = 2
	ts := setupTestRouter(cfg)

	_, user := ts.registerAndLogin(t, "alice@test.com")
	ts.activate(user.ID, "extension")
	ext := map[string]string{"X-Extension-Token": user.ExtensionToken}

	for i := 0; i < 2; i++ {
		if w := ts.do("GET", "/v1/extension/queue", nil, ext); w.Code != http.StatusOK {
			t.Fatalf("Claim %d returned %d", i, w.Code)
		}
	}

	w := ts.do("GET", "/v1/extension/queue", nil, ext)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429 over the limit, got %d", w.Code)
	}

	// Another credential has its own window
	_, other := ts.registerAndLogin(t, "bob@test.com")
	ts.activate(other.ID, "extension")
	w = ts.do("GET", "/v1/extension/queue", nil, map[string]string{"X-Extension-Token": other.ExtensionToken})
	if w.Code != http.StatusOK {
		t.Errorf("Second credential should not share the window, got %d", w.Code)
	}
}

func TestInactiveSubscriptionClaimForbidden(t *testing.T) {
	ts := setupTestRouter(testConfig())
	_, user := ts.registerAndLogin(t, "alice@test.com")

	w := ts.do("GET", "/v1/extension/queue", nil, map[string]string{"X-Extension-Token": user.ExtensionToken})
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for inactive subscription, got %d", w.Code)
	}
}

func TestBillingWebhook(t *testing.T) {
	ts := setupTestRouter(testConfig())
	_, user := ts.registerAndLogin(t, "alice@test.com")
	ts.repos.User.SetBillingIDs(context.Background(), user.ID, "cus_1", "")

	event := gin.H{"type": "checkout.completed", "customer_id": "cus_1", "subscription_id": "sub_1", "plan": "extension"}

	w := ts.do("POST", "/v1/billing/webhook", event, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without secret, got %d", w.Code)
	}
	w = ts.do("POST", "/v1/billing/webhook", event, map[string]string{"X-Billing-Secret": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 with wrong secret, got %d", w.Code)
	}

	w = ts.do("POST", "/v1/billing/webhook", event, map[string]string{"X-Billing-Secret": "hook-secret"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	updated, _ := ts.repos.User.GetByID(context.Background(), user.ID)
	if updated.SubscriptionStatus != models.SubscriptionActive || updated.SubscriptionPlan != "extension" {
		t.Errorf("Webhook not applied: %s/%s", updated.SubscriptionStatus, updated.SubscriptionPlan)
	}
}

func TestCrossTenantIsolationOverHTTP(t *testing.T) {
	ts := setupTestRouter(testConfig())
	_, owner := ts.registerAndLogin(t, "owner@test.com")
	ts.activate(owner.ID, "extension")
	otherToken, other := ts.registerAndLogin(t, "other@test.com")
	ts.activate(other.ID, "extension")

	campaign := &models.Campaign{ID: "camp-1", UserID: owner.ID, Status: models.CampaignActive}
	ts.repos.Campaign.Create(context.Background(), campaign)

	w := ts.do("GET", "/v1/campaigns/camp-1", nil, map[string]string{"Authorization": "Bearer " + otherToken})
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for foreign campaign, got %d", w.Code)
	}
}

func TestCommentReviewFlowOverHTTP(t *testing.T) {
	ts := setupTestRouter(testConfig())
	token, user := ts.registerAndLogin(t, "alice@test.com")
	ts.activate(user.ID, "extension")
	auth := map[string]string{"Authorization": "Bearer " + token}

	ctx := context.Background()
	campaign := &models.Campaign{ID: "camp-1", UserID: user.ID, Status: models.CampaignActive}
	ts.repos.Campaign.Create(ctx, campaign)
	for i := 0; i < 2; i++ {
		post := &models.DiscoveredPost{
			ID: fmt.Sprintf("post-%d", i), CampaignID: campaign.ID,
			Platform: models.PlatformReddit, PlatformPostID: fmt.Sprintf("n%d", i),
			Status: models.PostStatusCommented,
		}
		ts.repos.Post.InsertIgnore(ctx, post)
		ts.repos.Comment.Create(ctx, &models.Comment{
			ID: fmt.Sprintf("c-%d", i), UserID: user.ID, CampaignID: campaign.ID,
			PostID: post.ID, GeneratedText: "draft", Status: models.CommentPendingReview,
			CreatedAt: time.Now(),
		})
	}

	w := ts.do("GET", "/v1/comments?group=awaiting", nil, auth)
	if w.Code != http.StatusOK {
		t.Fatalf("List returned %d", w.Code)
	}
	var list struct {
		Count int `json:"count"`
	}
	json.Unmarshal(w.Body.Bytes(), &list)
	if list.Count != 2 {
		t.Errorf("Expected 2 awaiting drafts, got %d", list.Count)
	}

	if w := ts.do("PUT", "/v1/comments/c-0", gin.H{"text": "edited"}, auth); w.Code != http.StatusOK {
		t.Errorf("Edit returned %d", w.Code)
	}
	if w := ts.do("POST", "/v1/comments/c-0/approve", nil, auth); w.Code != http.StatusOK {
		t.Errorf("Approve returned %d", w.Code)
	}
	if w := ts.do("POST", "/v1/comments/c-1/reject", nil, auth); w.Code != http.StatusOK {
		t.Errorf("Reject returned %d", w.Code)
	}

	// Approving again conflicts; rejected drafts vanish from the list
	if w := ts.do("POST", "/v1/comments/c-0/approve", nil, auth); w.Code != http.StatusConflict {
		t.Errorf("Re-approve should be 409, got %d", w.Code)
	}
	w = ts.do("GET", "/v1/comments?group=all", nil, auth)
	json.Unmarshal(w.Body.Bytes(), &list)
	if list.Count != 1 {
		t.Errorf("Expected 1 visible draft after reject, got %d", list.Count)
	}
}

func TestGenerateOverHTTP(t *testing.T) {
	ts := setupTestRouter(testConfig())
	token, user := ts.registerAndLogin(t, "alice@test.com")
	ts.activate(user.ID, "extension")
	auth := map[string]string{"Authorization": "Bearer " + token}

	ctx := context.Background()
	campaign := &models.Campaign{
		ID: "camp-1", UserID: user.ID, BrandName: "Acme",
		ProductDescription: "tracker", Keywords: []string{"acme"},
		Tone: "helpful", MaxCommentsPerDay: 5, Status: models.CampaignActive,
	}
	ts.repos.Campaign.Create(ctx, campaign)
	post := &models.DiscoveredPost{
		ID: "post-1", CampaignID: campaign.ID, Platform: models.PlatformReddit,
		PlatformPostID: "n1", Title: "Which tracker?", Status: models.PostStatusNew,
	}
	ts.repos.Post.InsertIgnore(ctx, post)

	w := ts.do("POST", "/v1/posts/post-1/generate", nil, auth)
	if w.Code != http.StatusCreated {
		t.Fatalf("Generate returned %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Comment models.Comment `json:"comment"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Comment.Status != models.CommentPendingReview {
		t.Errorf("Expected pending_review, got %s", resp.Comment.Status)
	}

	// The post moved to commented, so skipping it now conflicts
	if w := ts.do("POST", "/v1/posts/post-1/skip", nil, auth); w.Code != http.StatusConflict {
		t.Errorf("Skip after comment should be 409, got %d", w.Code)
	}
}
