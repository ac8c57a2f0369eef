package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/commentflow-api/internal/models"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Campaign bounds
const (
	MinCommentsPerDay = 1
	MaxCommentsPerDay = 50
	MinPasswordLength = 8
)

// ValidTones restricts the campaign voice label
var ValidTones = map[string]bool{
	"helpful":      true,
	"casual":       true,
	"professional": true,
	"enthusiastic": true,
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// ValidateCampaign validates a campaign create/update payload. Defaults are
// applied in place (tone, max comments per day) before checking.
func ValidateCampaign(input *models.CampaignInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.BrandName) == "" {
		errors = append(errors, ValidationError{Field: "brand_name", Message: "brand_name is required"})
	}
	if strings.TrimSpace(input.ProductDescription) == "" {
		errors = append(errors, ValidationError{Field: "product_description", Message: "product_description is required"})
	}

	if len(input.Keywords) == 0 {
		errors = append(errors, ValidationError{Field: "keywords", Message: "at least one keyword is required"})
	}
	for _, kw := range input.Keywords {
		if strings.TrimSpace(kw) == "" {
			errors = append(errors, ValidationError{Field: "keywords", Message: "keywords must not be blank"})
			break
		}
	}

	if input.Tone == "" {
		input.Tone = "helpful"
	}
	if !ValidTones[input.Tone] {
		errors = append(errors, ValidationError{Field: "tone", Message: "unknown tone", Value: input.Tone})
	}

	if input.MaxCommentsPerDay == 0 {
		input.MaxCommentsPerDay = 5
	}
	if input.MaxCommentsPerDay < MinCommentsPerDay || input.MaxCommentsPerDay > MaxCommentsPerDay {
		errors = append(errors, ValidationError{
			Field:   "max_comments_per_day",
			Message: fmt.Sprintf("must be between %d and %d", MinCommentsPerDay, MaxCommentsPerDay),
			Value:   input.MaxCommentsPerDay,
		})
	}

	if input.Status != "" && input.Status != string(models.CampaignActive) && input.Status != string(models.CampaignPaused) {
		errors = append(errors, ValidationError{Field: "status", Message: "status must be active or paused", Value: input.Status})
	}

	return errors
}

// ValidateRegistration validates a signup payload
func ValidateRegistration(email, password string) []ValidationError {
	var errors []ValidationError

	if email == "" {
		errors = append(errors, ValidationError{Field: "email", Message: "email is required"})
	} else if !emailRegex.MatchString(email) {
		errors = append(errors, ValidationError{Field: "email", Message: "invalid email format", Value: email})
	}

	if len(password) < MinPasswordLength {
		errors = append(errors, ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("password must be at least %d characters", MinPasswordLength),
		})
	}

	return errors
}

// ValidateDraftText validates reviewer-authored or edited draft text
func ValidateDraftText(text string) []ValidationError {
	if strings.TrimSpace(text) == "" {
		return []ValidationError{{Field: "text", Message: "text is required"}}
	}
	return nil
}
