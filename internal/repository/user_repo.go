package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/commentflow-api/internal/database"
	"github.com/commentflow-api/internal/models"
)

// userRepo is the concrete implementation of UserRepository
type userRepo struct {
	db *database.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *database.DB) UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, email, password, name, extension_token, billing_customer_id,
	billing_subscription_id, subscription_status, subscription_plan, created_at, updated_at`

// Create inserts a new user
func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, password, name, extension_token, subscription_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.Password, nullString(user.Name),
		nullString(user.ExtensionToken), user.SubscriptionStatus,
		user.CreatedAt, user.UpdatedAt,
	)
	return err
}

// GetByID retrieves a user by ID
func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, "id = $1", id)
}

// GetByEmail retrieves a user by email
func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "email = $1", email)
}

// GetByExtensionToken resolves an opaque extension credential to its user
func (r *userRepo) GetByExtensionToken(ctx context.Context, token string) (*models.User, error) {
	return r.getOne(ctx, "extension_token = $1", token)
}

// GetByBillingCustomer retrieves a user by billing customer id
func (r *userRepo) GetByBillingCustomer(ctx context.Context, customerID string) (*models.User, error) {
	return r.getOne(ctx, "billing_customer_id = $1", customerID)
}

// GetByBillingSubscription retrieves a user by billing subscription id
func (r *userRepo) GetByBillingSubscription(ctx context.Context, subscriptionID string) (*models.User, error) {
	return r.getOne(ctx, "billing_subscription_id = $1", subscriptionID)
}

func (r *userRepo) getOne(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where

	var user models.User
	var name, extToken, custID, subID, plan sql.NullString

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.Password, &name, &extToken, &custID,
		&subID, &user.SubscriptionStatus, &plan, &user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	user.Name = name.String
	user.ExtensionToken = extToken.String
	user.BillingCustomerID = custID.String
	user.BillingSubscriptionID = subID.String
	user.SubscriptionPlan = plan.String

	return &user, nil
}

// UpdateExtensionToken rotates the user's extension credential
func (r *userRepo) UpdateExtensionToken(ctx context.Context, userID, token string) error {
	query := `UPDATE users SET extension_token = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, token, time.Now(), userID)
	return err
}

// UpdateSubscription sets the user's subscription snapshot. An empty plan
// clears the column (used when a subscription is deleted).
func (r *userRepo) UpdateSubscription(ctx context.Context, userID string, status models.SubscriptionStatus, plan string) error {
	query := `UPDATE users SET subscription_status = $1, subscription_plan = $2, updated_at = $3 WHERE id = $4`
	_, err := r.db.ExecContext(ctx, query, status, nullString(plan), time.Now(), userID)
	return err
}

// SetBillingIDs links the user to the billing collaborator's identifiers
func (r *userRepo) SetBillingIDs(ctx context.Context, userID, customerID, subscriptionID string) error {
	query := `
		UPDATE users SET billing_customer_id = $1, billing_subscription_id = $2, updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, nullString(customerID), nullString(subscriptionID), time.Now(), userID)
	return err
}

// helper to convert empty string to NULL
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
