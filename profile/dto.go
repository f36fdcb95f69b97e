package profile

import (
	"time"

	"github.com/pkg/errors"
)

// DTO is the wire representation of a profile row. Field names follow the
// backend's snake_case columns; all date fields travel as ISO-8601 strings.
type DTO struct {
	ID                    string  `json:"id"`
	Username              *string `json:"username,omitempty"`
	FullName              *string `json:"full_name,omitempty"`
	AvatarURL             *string `json:"avatar_url,omitempty"`
	Level                 int     `json:"level"`
	TotalXP               int     `json:"total_xp"`
	CurrentStreak         int     `json:"current_streak"`
	LongestStreak         int     `json:"longest_streak"`
	LastActivityDate      *string `json:"last_activity_date,omitempty"`
	RevenueCatCustomerID  *string `json:"revenuecat_customer_id,omitempty"`
	SubscriptionStatus    *string `json:"subscription_status,omitempty"`
	SubscriptionProductID *string `json:"subscription_product_id,omitempty"`
	SubscriptionExpiresAt *string `json:"subscription_expires_at,omitempty"`
	SubscriptionStartedAt *string `json:"subscription_started_at,omitempty"`
	IsLifetimePremium     bool    `json:"is_lifetime_premium"`
	CreatedAt             string  `json:"created_at"`
	UpdatedAt             string  `json:"updated_at"`
}

// ToProfile maps the wire representation to the domain model. A malformed
// timestamp fails the whole decode rather than being masked with a
// placeholder value.
func (d DTO) ToProfile() (Profile, error) {
	createdAt, err := parseTimestamp("created_at", d.CreatedAt)
	if err != nil {
		return Profile{}, err
	}
	updatedAt, err := parseTimestamp("updated_at", d.UpdatedAt)
	if err != nil {
		return Profile{}, err
	}
	lastActivity, err := parseOptionalTimestamp("last_activity_date", d.LastActivityDate)
	if err != nil {
		return Profile{}, err
	}
	subExpires, err := parseOptionalTimestamp("subscription_expires_at", d.SubscriptionExpiresAt)
	if err != nil {
		return Profile{}, err
	}
	subStarted, err := parseOptionalTimestamp("subscription_started_at", d.SubscriptionStartedAt)
	if err != nil {
		return Profile{}, err
	}

	return Profile{
		ID:                    d.ID,
		Username:              d.Username,
		FullName:              d.FullName,
		AvatarURL:             d.AvatarURL,
		Level:                 d.Level,
		TotalXP:               d.TotalXP,
		CurrentStreak:         d.CurrentStreak,
		LongestStreak:         d.LongestStreak,
		LastActivityDate:      lastActivity,
		RevenueCatCustomerID:  d.RevenueCatCustomerID,
		SubscriptionStatus:    d.SubscriptionStatus,
		SubscriptionProductID: d.SubscriptionProductID,
		SubscriptionExpiresAt: subExpires,
		SubscriptionStartedAt: subStarted,
		IsLifetimePremium:     d.IsLifetimePremium,
		CreatedAt:             createdAt,
		UpdatedAt:             updatedAt,
	}, nil
}

// FromProfile maps the domain model back to the wire representation.
func FromProfile(p Profile) DTO {
	return DTO{
		ID:                    p.ID,
		Username:              p.Username,
		FullName:              p.FullName,
		AvatarURL:             p.AvatarURL,
		Level:                 p.Level,
		TotalXP:               p.TotalXP,
		CurrentStreak:         p.CurrentStreak,
		LongestStreak:         p.LongestStreak,
		LastActivityDate:      formatOptionalTimestamp(p.LastActivityDate),
		RevenueCatCustomerID:  p.RevenueCatCustomerID,
		SubscriptionStatus:    p.SubscriptionStatus,
		SubscriptionProductID: p.SubscriptionProductID,
		SubscriptionExpiresAt: formatOptionalTimestamp(p.SubscriptionExpiresAt),
		SubscriptionStartedAt: formatOptionalTimestamp(p.SubscriptionStartedAt),
		IsLifetimePremium:     p.IsLifetimePremium,
		CreatedAt:             p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:             p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func parseTimestamp(field, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "[DTO.ToProfile] malformed %s %q", field, value)
	}
	return t, nil
}

func parseOptionalTimestamp(field string, value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := parseTimestamp(field, *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatOptionalTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
