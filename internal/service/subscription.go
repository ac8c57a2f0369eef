package service

import (
	"context"
	"fmt"

	"github.com/commentflow-api/internal/config"
	"github.com/commentflow-api/internal/models"
	"github.com/commentflow-api/internal/repository"
	"github.com/rs/zerolog"
)

// BillingEvent is the subscription-state contract consumed from the billing
// collaborator's webhook. Billing state changes asynchronously, so entitlement
// reads never cache across requests.
type BillingEvent struct {
	Type           string `json:"type"` // checkout.completed | subscription.updated | subscription.deleted | payment.failed
	CustomerID     string `json:"customer_id"`
	SubscriptionID string `json:"subscription_id"`
	Status         string `json:"status"`
	Plan           string `json:"plan"`
}

// subscriptionService is the concrete implementation of SubscriptionService
type subscriptionService struct {
	userRepo repository.UserRepository
	plans    config.PlansConfig
	log      zerolog.Logger
}

// newSubscriptionService creates the entitlement gate
func newSubscriptionService(userRepo repository.UserRepository, plans config.PlansConfig, log zerolog.Logger) *subscriptionService {
	return &subscriptionService{
		userRepo: userRepo,
		plans:    plans,
		log:      log.With().Str("service", "subscription").Logger(),
	}
}

// Resolve reads the user's current subscription snapshot. Always a fresh read;
// the webhook may have changed it since the last request.
func (s *subscriptionService) Resolve(ctx context.Context, userID string) (models.SubscriptionInfo, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return models.SubscriptionInfo{}, err
	}
	if user == nil {
		return models.SubscriptionInfo{Active: false, Status: string(models.SubscriptionInactive)}, nil
	}

	return models.SubscriptionInfo{
		Active: user.SubscriptionStatus == models.SubscriptionActive,
		Plan:   user.SubscriptionPlan,
		Status: string(user.SubscriptionStatus),
	}, nil
}

// LimitsFor returns the configured limits for a plan
func (s *subscriptionService) LimitsFor(plan string) config.PlanLimits {
	return s.plans.LimitsFor(plan)
}

// ApplyBillingEvent updates a user's subscription snapshot from a webhook
// event. Events for unknown customers/subscriptions are dropped with a warning
// rather than failing the webhook, since billing retries them.
func (s *subscriptionService) ApplyBillingEvent(ctx context.Context, event *BillingEvent) error {
	switch event.Type {
	case "checkout.completed":
		user, err := s.userRepo.GetByBillingCustomer(ctx, event.CustomerID)
		if err != nil {
			return err
		}
		if user == nil {
			s.log.Warn().Str("customer_id", event.CustomerID).Msg("Checkout for unknown customer")
			return nil
		}
		if err := s.userRepo.SetBillingIDs(ctx, user.ID, event.CustomerID, event.SubscriptionID); err != nil {
			return err
		}
		return s.userRepo.UpdateSubscription(ctx, user.ID, models.SubscriptionActive, event.Plan)

	case "subscription.updated":
		user, err := s.userRepo.GetByBillingSubscription(ctx, event.SubscriptionID)
		if err != nil {
			return err
		}
		if user == nil {
			s.log.Warn().Str("subscription_id", event.SubscriptionID).Msg("Update for unknown subscription")
			return nil
		}
		return s.userRepo.UpdateSubscription(ctx, user.ID, MapBillingStatus(event.Status), event.Plan)

	case "subscription.deleted":
		user, err := s.userRepo.GetByBillingSubscription(ctx, event.SubscriptionID)
		if err != nil {
			return err
		}
		if user == nil {
			return nil
		}
		return s.userRepo.UpdateSubscription(ctx, user.ID, models.SubscriptionCanceled, "")

	case "payment.failed":
		user, err := s.userRepo.GetByBillingSubscription(ctx, event.SubscriptionID)
		if err != nil {
			return err
		}
		if user == nil {
			return nil
		}
		return s.userRepo.UpdateSubscription(ctx, user.ID, models.SubscriptionPastDue, user.SubscriptionPlan)

	default:
		return fmt.Errorf("unknown billing event type %q", event.Type)
	}
}

// MapBillingStatus maps the billing collaborator's subscription statuses onto
// the local snapshot values
func MapBillingStatus(status string) models.SubscriptionStatus {
	switch status {
	case "active", "trialing":
		return models.SubscriptionActive
	case "past_due":
		return models.SubscriptionPastDue
	case "canceled", "unpaid":
		return models.SubscriptionCanceled
	default:
		return models.SubscriptionInactive
	}
}
