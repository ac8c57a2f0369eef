package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/commentflow-api/internal/models"
	"github.com/commentflow-api/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mu          sync.Mutex
	Users       map[string]*models.User
	CreateError error
	GetError    error
}

// Verify interface compliance
var _ repository.UserRepository = (*MockUserRepository)(nil)

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users: make(map[string]*models.User),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Users[id], nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.Email == email })
}

func (m *MockUserRepository) GetByExtensionToken(ctx context.Context, token string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.ExtensionToken == token })
}

func (m *MockUserRepository) GetByBillingCustomer(ctx context.Context, customerID string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.BillingCustomerID == customerID })
}

func (m *MockUserRepository) GetByBillingSubscription(ctx context.Context, subscriptionID string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.BillingSubscriptionID == subscriptionID })
}

func (m *MockUserRepository) find(match func(*models.User) bool) (*models.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Users {
		if match(u) {
			return u, nil
		}
	}
	return nil, nil
}

func (m *MockUserRepository) UpdateExtensionToken(ctx context.Context, userID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.Users[userID]; ok {
		u.ExtensionToken = token
	}
	return nil
}

func (m *MockUserRepository) UpdateSubscription(ctx context.Context, userID string, status models.SubscriptionStatus, plan string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.Users[userID]; ok {
		u.SubscriptionStatus = status
		u.SubscriptionPlan = plan
	}
	return nil
}

func (m *MockUserRepository) SetBillingIDs(ctx context.Context, userID, customerID, subscriptionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.Users[userID]; ok {
		u.BillingCustomerID = customerID
		u.BillingSubscriptionID = subscriptionID
	}
	return nil
}

// MockCampaignRepository is a mock implementation of CampaignRepository
type MockCampaignRepository struct {
	mu          sync.Mutex
	Campaigns   map[string]*models.Campaign
	CountsByID  map[string]models.CampaignCounts
	CreateError error
}

// Verify interface compliance
var _ repository.CampaignRepository = (*MockCampaignRepository)(nil)

func NewMockCampaignRepository() *MockCampaignRepository {
	return &MockCampaignRepository{
		Campaigns:  make(map[string]*models.Campaign),
		CountsByID: make(map[string]models.CampaignCounts),
	}
}

func (m *MockCampaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Campaigns[campaign.ID] = campaign
	return nil
}

func (m *MockCampaignRepository) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Campaigns[id], nil
}

func (m *MockCampaignRepository) ListByUser(ctx context.Context, userID string) ([]*models.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Campaign
	for _, c := range m.Campaigns {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockCampaignRepository) Update(ctx context.Context, campaign *models.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Campaigns[campaign.ID] = campaign
	return nil
}

func (m *MockCampaignRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Campaigns, id)
	return nil
}

func (m *MockCampaignRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, c := range m.Campaigns {
		if c.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (m *MockCampaignRepository) Counts(ctx context.Context, campaignID string) (models.CampaignCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CountsByID[campaignID], nil
}

// MockPostRepository is a mock implementation of PostRepository. All methods
// are safe for concurrent use so discovery fan-out tests behave like the real
// database.
type MockPostRepository struct {
	mu          sync.Mutex
	Posts       map[string]*models.DiscoveredPost
	InsertError error
}

// Verify interface compliance
var _ repository.PostRepository = (*MockPostRepository)(nil)

func NewMockPostRepository() *MockPostRepository {
	return &MockPostRepository{
		Posts: make(map[string]*models.DiscoveredPost),
	}
}

func (m *MockPostRepository) InsertIgnore(ctx context.Context, post *models.DiscoveredPost) (bool, error) {
	if m.InsertError != nil {
		return false, m.InsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.Posts {
		if p.CampaignID == post.CampaignID && p.PlatformPostID == post.PlatformPostID {
			return false, nil
		}
	}
	m.Posts[post.ID] = post
	return true, nil
}

func (m *MockPostRepository) GetByID(ctx context.Context, id string) (*models.DiscoveredPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Posts[id], nil
}

func (m *MockPostRepository) ListByCampaign(ctx context.Context, campaignID string, status models.PostStatus) ([]*models.DiscoveredPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.DiscoveredPost
	for _, p := range m.Posts {
		if p.CampaignID != campaignID {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RelevanceScore > out[j].RelevanceScore })
	return out, nil
}

func (m *MockPostRepository) MarkQueued(ctx context.Context, id string) (bool, error) {
	return m.transition(id, models.PostStatusQueued, models.PostStatusNew, models.PostStatusQueued)
}

func (m *MockPostRepository) Requeue(ctx context.Context, id string) (bool, error) {
	return m.transition(id, models.PostStatusQueued, models.PostStatusCommented)
}

func (m *MockPostRepository) MarkCommented(ctx context.Context, id string) (bool, error) {
	return m.transition(id, models.PostStatusCommented, models.PostStatusQueued)
}

func (m *MockPostRepository) Skip(ctx context.Context, id string) (bool, error) {
	return m.transition(id, models.PostStatusSkipped, models.PostStatusNew, models.PostStatusQueued)
}

func (m *MockPostRepository) transition(id string, to models.PostStatus, from ...models.PostStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Posts[id]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if p.Status == f {
			p.Status = to
			p.UpdatedAt = time.Now()
			return true, nil
		}
	}
	return false, nil
}

func (m *MockPostRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Posts), nil
}

// MockCommentRepository is a mock implementation of CommentRepository.
// ClaimReady holds the lock across select-and-mark, which is the atomicity the
// real implementation gets from FOR UPDATE SKIP LOCKED.
type MockCommentRepository struct {
	mu          sync.Mutex
	Comments    map[string]*models.Comment
	PostRepo    *MockPostRepository
	CreateError error
	ClaimError  error
}

// Verify interface compliance
var _ repository.CommentRepository = (*MockCommentRepository)(nil)

func NewMockCommentRepository(posts *MockPostRepository) *MockCommentRepository {
	return &MockCommentRepository{
		Comments: make(map[string]*models.Comment),
		PostRepo: posts,
	}
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	m.Comments[comment.ID] = comment
	return nil
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Comments[id], nil
}

func (m *MockCommentRepository) GetActiveByPost(ctx context.Context, postID string) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *models.Comment
	for _, c := range m.Comments {
		if c.PostID != postID || c.Status == models.CommentRejected {
			continue
		}
		if latest == nil || c.CreatedAt.After(latest.CreatedAt) {
			latest = c
		}
	}
	return latest, nil
}

func (m *MockCommentRepository) ListByUser(ctx context.Context, userID string, statuses []models.CommentStatus) ([]*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Comment
	for _, c := range m.Comments {
		if c.UserID != userID {
			continue
		}
		for _, s := range statuses {
			if c.Status == s {
				out = append(out, c)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockCommentRepository) UpdateText(ctx context.Context, id, text string, from []models.CommentStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Comments[id]
	if !ok || !statusIn(c.Status, from) {
		return false, nil
	}
	c.GeneratedText = text
	c.UpdatedAt = time.Now()
	return true, nil
}

func (m *MockCommentRepository) Transition(ctx context.Context, id string, from []models.CommentStatus, to models.CommentStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Comments[id]
	if !ok || !statusIn(c.Status, from) {
		return false, nil
	}
	c.Status = to
	c.UpdatedAt = time.Now()
	return true, nil
}

func (m *MockCommentRepository) ClaimReady(ctx context.Context, userID string, limit int) ([]*models.ClaimedComment, error) {
	if m.ClaimError != nil {
		return nil, m.ClaimError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var ready []*models.Comment
	for _, c := range m.Comments {
		if c.UserID == userID && c.Status == models.CommentReadyToPost {
			ready = append(ready, c)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i].CreatedAt.Before(ready[j].CreatedAt) })
	if len(ready) > limit {
		ready = ready[:limit]
	}

	claimed := make([]*models.ClaimedComment, 0, len(ready))
	for _, c := range ready {
		c.Status = models.CommentPosting
		c.UpdatedAt = time.Now()
		cc := &models.ClaimedComment{ID: c.ID, Text: c.GeneratedText}
		if m.PostRepo != nil {
			if p := m.PostRepo.Posts[c.PostID]; p != nil {
				cc.URL = p.URL
				cc.Platform = p.Platform
				cc.PostTitle = p.Title
				cc.Subreddit = p.Subreddit
			}
		}
		claimed = append(claimed, cc)
	}
	return claimed, nil
}

func (m *MockCommentRepository) SettlePosted(ctx context.Context, userID, id, platformURL string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Comments[id]
	if !ok || c.UserID != userID || c.Status != models.CommentPosting {
		return false, nil
	}
	now := time.Now()
	c.Status = models.CommentPosted
	c.PostedAt = &now
	c.PlatformURL = platformURL
	c.UpdatedAt = now
	return true, nil
}

func (m *MockCommentRepository) SettleFailed(ctx context.Context, userID, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Comments[id]
	if !ok || c.UserID != userID || c.Status != models.CommentPosting {
		return false, nil
	}
	c.Status = models.CommentFailed
	c.UpdatedAt = time.Now()
	return true, nil
}

func (m *MockCommentRepository) ReclaimStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-olderThan)
	var n int64
	for _, c := range m.Comments {
		if c.Status == models.CommentPosting && c.UpdatedAt.Before(cutoff) {
			c.Status = models.CommentReadyToPost
			c.UpdatedAt = time.Now()
			n++
		}
	}
	return n, nil
}

func (m *MockCommentRepository) CountByUserSince(ctx context.Context, userID string, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, c := range m.Comments {
		if c.UserID == userID && !c.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (m *MockCommentRepository) CountByCampaignSince(ctx context.Context, campaignID string, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, c := range m.Comments {
		if c.CampaignID == campaignID && !c.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (m *MockCommentRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Comments), nil
}

func statusIn(status models.CommentStatus, set []models.CommentStatus) bool {
	for _, s := range set {
		if status == s {
			return true
		}
	}
	return false
}

// NewRepositories wires mock repositories into the container shape services
// expect
func NewRepositories() *repository.Repositories {
	posts := NewMockPostRepository()
	return &repository.Repositories{
		User:     NewMockUserRepository(),
		Campaign: NewMockCampaignRepository(),
		Post:     posts,
		Comment:  NewMockCommentRepository(posts),
	}
}
