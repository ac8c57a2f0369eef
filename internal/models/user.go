package models

import (
	"time"
)

// SubscriptionStatus represents a user's billing state. Updates arrive
// asynchronously via the billing webhook, so reads must tolerate lag.
type SubscriptionStatus string

const (
	SubscriptionInactive SubscriptionStatus = "inactive"
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionCanceled SubscriptionStatus = "canceled"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
)

// ValidPlans defines the known subscription plans
var ValidPlans = map[string]bool{
	"extension": true,
	"dfy":       true,
}

// User represents an account owning campaigns and an extension credential
type User struct {
	ID                    string             `json:"id" db:"id"`
	Email                 string             `json:"email" db:"email"`
	Password              string             `json:"-" db:"password"`
	Name                  string             `json:"name" db:"name"`
	ExtensionToken        string             `json:"-" db:"extension_token"`
	BillingCustomerID     string             `json:"-" db:"billing_customer_id"`
	BillingSubscriptionID string             `json:"-" db:"billing_subscription_id"`
	SubscriptionStatus    SubscriptionStatus `json:"subscription_status" db:"subscription_status"`
	SubscriptionPlan      string             `json:"subscription_plan" db:"subscription_plan"`
	CreatedAt             time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time          `json:"updated_at" db:"updated_at"`
}

// SubscriptionInfo is the entitlement gate's view of a user
type SubscriptionInfo struct {
	Active bool   `json:"active"`
	Plan   string `json:"plan"`
	Status string `json:"status"`
}
