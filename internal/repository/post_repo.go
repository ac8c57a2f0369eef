package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/commentflow-api/internal/database"
	"github.com/commentflow-api/internal/models"
)

// postRepo is the concrete implementation of PostRepository
type postRepo struct {
	db *database.DB
}

// NewPostRepo creates a new discovered post repository
func NewPostRepo(db *database.DB) PostRepository {
	return &postRepo{db: db}
}

const postColumns = `id, campaign_id, platform, platform_post_id, title, body, url,
	subreddit, relevance_score, status, created_at, updated_at`

// InsertIgnore inserts a discovered post unless the campaign already has a row
// for the same platform post. Returns whether a row was inserted, making
// repeated discovery runs idempotent.
func (r *postRepo) InsertIgnore(ctx context.Context, post *models.DiscoveredPost) (bool, error) {
	query := `
		INSERT INTO discovered_posts (id, campaign_id, platform, platform_post_id, title, body,
			url, subreddit, relevance_score, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (campaign_id, platform_post_id) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query,
		post.ID, post.CampaignID, post.Platform, post.PlatformPostID, post.Title,
		post.Body, post.URL, nullString(post.Subreddit), post.RelevanceScore,
		post.Status, post.CreatedAt, post.UpdatedAt,
	)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// GetByID retrieves a discovered post by ID
func (r *postRepo) GetByID(ctx context.Context, id string) (*models.DiscoveredPost, error) {
	query := `SELECT ` + postColumns + ` FROM discovered_posts WHERE id = $1`

	var p models.DiscoveredPost
	var subreddit sql.NullString

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.CampaignID, &p.Platform, &p.PlatformPostID, &p.Title, &p.Body,
		&p.URL, &subreddit, &p.RelevanceScore, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	p.Subreddit = subreddit.String
	return &p, nil
}

// ListByCampaign retrieves posts for a campaign, optionally filtered by status,
// most relevant first
func (r *postRepo) ListByCampaign(ctx context.Context, campaignID string, status models.PostStatus) ([]*models.DiscoveredPost, error) {
	query := `SELECT ` + postColumns + ` FROM discovered_posts WHERE campaign_id = $1`
	args := []interface{}{campaignID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY relevance_score DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*models.DiscoveredPost
	for rows.Next() {
		var p models.DiscoveredPost
		var subreddit sql.NullString
		err := rows.Scan(
			&p.ID, &p.CampaignID, &p.Platform, &p.PlatformPostID, &p.Title, &p.Body,
			&p.URL, &subreddit, &p.RelevanceScore, &p.Status, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		p.Subreddit = subreddit.String
		posts = append(posts, &p)
	}

	return posts, rows.Err()
}

// MarkQueued marks a post as queued for generation. The update only applies
// while the post is new or already queued, so a concurrent generation cannot
// resurrect a commented or skipped post.
func (r *postRepo) MarkQueued(ctx context.Context, id string) (bool, error) {
	return r.conditionalUpdate(ctx, id, models.PostStatusQueued, "status IN ('new', 'queued')")
}

// Requeue resets a commented post back to queued for regeneration
func (r *postRepo) Requeue(ctx context.Context, id string) (bool, error) {
	return r.conditionalUpdate(ctx, id, models.PostStatusQueued, "status = 'commented'")
}

// MarkCommented marks a queued post as commented once a draft exists for it
func (r *postRepo) MarkCommented(ctx context.Context, id string) (bool, error) {
	return r.conditionalUpdate(ctx, id, models.PostStatusCommented, "status = 'queued'")
}

// Skip marks a post as skipped; terminal, reviewer-initiated
func (r *postRepo) Skip(ctx context.Context, id string) (bool, error) {
	return r.conditionalUpdate(ctx, id, models.PostStatusSkipped, "status IN ('new', 'queued')")
}

func (r *postRepo) conditionalUpdate(ctx context.Context, id string, to models.PostStatus, guard string) (bool, error) {
	query := `UPDATE discovered_posts SET status = $1, updated_at = $2 WHERE id = $3 AND ` + guard
	result, err := r.db.ExecContext(ctx, query, to, time.Now(), id)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// Count returns the total number of discovered posts
func (r *postRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM discovered_posts`).Scan(&count)
	return count, err
}
