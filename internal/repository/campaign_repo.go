package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/commentflow-api/internal/database"
	"github.com/commentflow-api/internal/models"
)

// campaignRepo is the concrete implementation of CampaignRepository
type campaignRepo struct {
	db *database.DB
}

// NewCampaignRepo creates a new campaign repository
func NewCampaignRepo(db *database.DB) CampaignRepository {
	return &campaignRepo{db: db}
}

const campaignColumns = `id, user_id, brand_name, product_description, keywords, subreddits,
	tone, max_comments_per_day, auto_approve, status, created_at, updated_at`

// Create inserts a new campaign
func (r *campaignRepo) Create(ctx context.Context, campaign *models.Campaign) error {
	keywords, err := json.Marshal(campaign.Keywords)
	if err != nil {
		return err
	}
	subreddits, err := json.Marshal(campaign.Subreddits)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO campaigns (id, user_id, brand_name, product_description, keywords, subreddits,
			tone, max_comments_per_day, auto_approve, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = r.db.ExecContext(ctx, query,
		campaign.ID, campaign.UserID, campaign.BrandName, campaign.ProductDescription,
		keywords, subreddits, campaign.Tone, campaign.MaxCommentsPerDay,
		campaign.AutoApprove, campaign.Status, campaign.CreatedAt, campaign.UpdatedAt,
	)
	return err
}

// GetByID retrieves a campaign by ID
func (r *campaignRepo) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)
	c, err := scanCampaign(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

// ListByUser retrieves all campaigns owned by a user
func (r *campaignRepo) ListByUser(ctx context.Context, userID string) ([]*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campaigns []*models.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}

	return campaigns, rows.Err()
}

// Update saves campaign settings
func (r *campaignRepo) Update(ctx context.Context, campaign *models.Campaign) error {
	keywords, err := json.Marshal(campaign.Keywords)
	if err != nil {
		return err
	}
	subreddits, err := json.Marshal(campaign.Subreddits)
	if err != nil {
		return err
	}

	query := `
		UPDATE campaigns SET
			brand_name = $1, product_description = $2, keywords = $3, subreddits = $4,
			tone = $5, max_comments_per_day = $6, auto_approve = $7, status = $8, updated_at = $9
		WHERE id = $10
	`
	_, err = r.db.ExecContext(ctx, query,
		campaign.BrandName, campaign.ProductDescription, keywords, subreddits,
		campaign.Tone, campaign.MaxCommentsPerDay, campaign.AutoApprove,
		campaign.Status, time.Now(), campaign.ID,
	)
	return err
}

// Delete removes a campaign; posts and comments cascade
func (r *campaignRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	return err
}

// CountByUser counts campaigns owned by a user
func (r *campaignRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM campaigns WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

// Counts returns aggregate post/comment counts for a campaign
func (r *campaignRepo) Counts(ctx context.Context, campaignID string) (models.CampaignCounts, error) {
	var counts models.CampaignCounts
	query := `
		SELECT
			(SELECT COUNT(*) FROM discovered_posts WHERE campaign_id = $1),
			(SELECT COUNT(*) FROM comments WHERE campaign_id = $1)
	`
	err := r.db.QueryRowContext(ctx, query, campaignID).Scan(&counts.DiscoveredPosts, &counts.Comments)
	return counts, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCampaign(row rowScanner) (*models.Campaign, error) {
	var c models.Campaign
	var keywords, subreddits []byte

	err := row.Scan(
		&c.ID, &c.UserID, &c.BrandName, &c.ProductDescription, &keywords, &subreddits,
		&c.Tone, &c.MaxCommentsPerDay, &c.AutoApprove, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(keywords, &c.Keywords); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(subreddits, &c.Subreddits); err != nil {
		return nil, err
	}

	return &c, nil
}
