package profile

import "time"

// Profile holds the gamification and subscription data for one principal.
// Profile.ID matches the UserID of the session it was fetched for.
type Profile struct {
	ID                    string
	Username              *string
	FullName              *string
	AvatarURL             *string
	Level                 int // >= 1
	TotalXP               int
	CurrentStreak         int // days
	LongestStreak         int // days, the backend keeps LongestStreak >= CurrentStreak
	LastActivityDate      *time.Time
	RevenueCatCustomerID  *string
	SubscriptionStatus    *string
	SubscriptionProductID *string
	SubscriptionExpiresAt *time.Time
	SubscriptionStartedAt *time.Time
	IsLifetimePremium     bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// New returns a Profile with the field defaults the backend applies on
// row creation.
func New(id string) Profile {
	now := time.Now().UTC()
	return Profile{
		ID:        id,
		Level:     1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Equal reports whether two profiles carry the same values field by field.
func (p Profile) Equal(other Profile) bool {
	return p.ID == other.ID &&
		equalStringPtr(p.Username, other.Username) &&
		equalStringPtr(p.FullName, other.FullName) &&
		equalStringPtr(p.AvatarURL, other.AvatarURL) &&
		p.Level == other.Level &&
		p.TotalXP == other.TotalXP &&
		p.CurrentStreak == other.CurrentStreak &&
		p.LongestStreak == other.LongestStreak &&
		equalTimePtr(p.LastActivityDate, other.LastActivityDate) &&
		equalStringPtr(p.RevenueCatCustomerID, other.RevenueCatCustomerID) &&
		equalStringPtr(p.SubscriptionStatus, other.SubscriptionStatus) &&
		equalStringPtr(p.SubscriptionProductID, other.SubscriptionProductID) &&
		equalTimePtr(p.SubscriptionExpiresAt, other.SubscriptionExpiresAt) &&
		equalTimePtr(p.SubscriptionStartedAt, other.SubscriptionStartedAt) &&
		p.IsLifetimePremium == other.IsLifetimePremium &&
		p.CreatedAt.Equal(other.CreatedAt) &&
		p.UpdatedAt.Equal(other.UpdatedAt)
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
