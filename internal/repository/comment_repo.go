package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/commentflow-api/internal/database"
	"github.com/commentflow-api/internal/models"
	"github.com/lib/pq"
)

// commentRepo is the concrete implementation of CommentRepository
type commentRepo struct {
	db *database.DB
}

// NewCommentRepo creates a new comment repository
func NewCommentRepo(db *database.DB) CommentRepository {
	return &commentRepo{db: db}
}

const commentColumns = `id, user_id, campaign_id, post_id, generated_text, status,
	posted_at, platform_url, created_at, updated_at`

// Create inserts a new draft comment
func (r *commentRepo) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (id, user_id, campaign_id, post_id, generated_text, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		comment.ID, comment.UserID, comment.CampaignID, comment.PostID,
		comment.GeneratedText, comment.Status, comment.CreatedAt, comment.UpdatedAt,
	)
	return err
}

// GetByID retrieves a comment by ID
func (r *commentRepo) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)
	c, err := scanComment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

// GetActiveByPost retrieves the non-rejected comment for a post, if any.
// Rejected drafts are history; at most one active draft exists per post.
func (r *commentRepo) GetActiveByPost(ctx context.Context, postID string) (*models.Comment, error) {
	query := `
		SELECT ` + commentColumns + ` FROM comments
		WHERE post_id = $1 AND status <> 'rejected'
		ORDER BY created_at DESC
		LIMIT 1
	`
	row := r.db.QueryRowContext(ctx, query, postID)
	c, err := scanComment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

// ListByUser retrieves a user's comments in the given statuses, newest first
func (r *commentRepo) ListByUser(ctx context.Context, userID string, statuses []models.CommentStatus) ([]*models.Comment, error) {
	query := `
		SELECT ` + commentColumns + ` FROM comments
		WHERE user_id = $1 AND status = ANY($2)
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID, pq.Array(statusStrings(statuses)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}

	return comments, rows.Err()
}

// UpdateText replaces the draft text while the comment is still in one of the
// allowed source states. Editing a claimed draft must fail so the extension is
// never handed stale text.
func (r *commentRepo) UpdateText(ctx context.Context, id, text string, from []models.CommentStatus) (bool, error) {
	query := `
		UPDATE comments SET generated_text = $1, updated_at = $2
		WHERE id = $3 AND status = ANY($4)
	`
	result, err := r.db.ExecContext(ctx, query, text, time.Now(), id, pq.Array(statusStrings(from)))
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// Transition moves a comment between states only if it is still in one of the
// expected source states
func (r *commentRepo) Transition(ctx context.Context, id string, from []models.CommentStatus, to models.CommentStatus) (bool, error) {
	query := `
		UPDATE comments SET status = $1, updated_at = $2
		WHERE id = $3 AND status = ANY($4)
	`
	result, err := r.db.ExecContext(ctx, query, to, time.Now(), id, pq.Array(statusStrings(from)))
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// ClaimReady atomically selects up to limit ready drafts for a user, oldest
// first, marks them posting, and returns them joined with their post target.
// The locked subselect makes overlapping claims disjoint: rows picked by one
// call are skipped, not blocked on, by the next.
func (r *commentRepo) ClaimReady(ctx context.Context, userID string, limit int) ([]*models.ClaimedComment, error) {
	query := `
		WITH claimed AS (
			UPDATE comments SET status = 'posting', updated_at = now()
			WHERE id IN (
				SELECT id FROM comments
				WHERE user_id = $1 AND status = 'ready_to_post'
				ORDER BY created_at
				LIMIT $2
				FOR UPDATE SKIP LOCKED
			)
			RETURNING id, post_id, generated_text, created_at
		)
		SELECT c.id, c.generated_text, p.url, p.platform, p.title, COALESCE(p.subreddit, '')
		FROM claimed c
		JOIN discovered_posts p ON p.id = c.post_id
		ORDER BY c.created_at
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var claimed []*models.ClaimedComment
	for rows.Next() {
		var c models.ClaimedComment
		err := rows.Scan(&c.ID, &c.Text, &c.URL, &c.Platform, &c.PostTitle, &c.Subreddit)
		if err != nil {
			return nil, err
		}
		claimed = append(claimed, &c)
	}

	return claimed, rows.Err()
}

// SettlePosted finalizes a claimed draft as posted, stamping the timestamp and
// external URL. Only legal from posting, so duplicate settles are no-ops.
func (r *commentRepo) SettlePosted(ctx context.Context, userID, id, platformURL string) (bool, error) {
	query := `
		UPDATE comments SET status = 'posted', posted_at = $1, platform_url = $2, updated_at = $1
		WHERE id = $3 AND user_id = $4 AND status = 'posting'
	`
	result, err := r.db.ExecContext(ctx, query, time.Now(), nullString(platformURL), id, userID)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// SettleFailed marks a claimed draft as failed. Failed is retryable by the
// reviewer, unlike rejected.
func (r *commentRepo) SettleFailed(ctx context.Context, userID, id string) (bool, error) {
	query := `
		UPDATE comments SET status = 'failed', updated_at = $1
		WHERE id = $2 AND user_id = $3 AND status = 'posting'
	`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id, userID)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// ReclaimStale reverts drafts stuck in posting longer than olderThan back to
// ready_to_post, recovering work lost to a crashed extension
func (r *commentRepo) ReclaimStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	query := `
		UPDATE comments SET status = 'ready_to_post', updated_at = now()
		WHERE status = 'posting' AND updated_at < $1
	`
	result, err := r.db.ExecContext(ctx, query, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// CountByUserSince counts drafts a user created at or after the given time
func (r *commentRepo) CountByUserSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM comments WHERE user_id = $1 AND created_at >= $2`
	err := r.db.QueryRowContext(ctx, query, userID, since).Scan(&count)
	return count, err
}

// CountByCampaignSince counts drafts created for a campaign at or after the
// given time
func (r *commentRepo) CountByCampaignSince(ctx context.Context, campaignID string, since time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM comments WHERE campaign_id = $1 AND created_at >= $2`
	err := r.db.QueryRowContext(ctx, query, campaignID, since).Scan(&count)
	return count, err
}

// Count returns the total number of comments
func (r *commentRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments`).Scan(&count)
	return count, err
}

func scanComment(row rowScanner) (*models.Comment, error) {
	var c models.Comment
	var postedAt sql.NullTime
	var platformURL sql.NullString

	err := row.Scan(
		&c.ID, &c.UserID, &c.CampaignID, &c.PostID, &c.GeneratedText, &c.Status,
		&postedAt, &platformURL, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if postedAt.Valid {
		c.PostedAt = &postedAt.Time
	}
	c.PlatformURL = platformURL.String

	return &c, nil
}

func statusStrings(statuses []models.CommentStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
