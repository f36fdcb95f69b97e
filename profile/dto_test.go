package profile_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadmapapp/go-auth-client/internal/utils"
	"github.com/roadmapapp/go-auth-client/profile"
)

func fullProfile(t *testing.T) profile.Profile {
	t.Helper()

	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	lastActivity := time.Date(2025, 6, 7, 8, 9, 10, 0, time.UTC)

	return profile.Profile{
		ID:                    "0b9fda21-7ab8-4a44-8e5c-123456789abc",
		Username:              utils.Ptr("ada"),
		FullName:              utils.Ptr("Ada Lovelace"),
		AvatarURL:             utils.Ptr("https://cdn.example.com/ada.png"),
		Level:                 12,
		TotalXP:               34500,
		CurrentStreak:         21,
		LongestStreak:         60,
		LastActivityDate:      &lastActivity,
		RevenueCatCustomerID:  utils.Ptr("rc_ada"),
		SubscriptionStatus:    utils.Ptr("active"),
		SubscriptionProductID: utils.Ptr("premium_yearly"),
		SubscriptionExpiresAt: utils.Ptr(created.AddDate(1, 0, 0)),
		SubscriptionStartedAt: &created,
		IsLifetimePremium:     false,
		CreatedAt:             created,
		UpdatedAt:             created.Add(48 * time.Hour),
	}
}

func TestDTORoundTrip(t *testing.T) {
	original := fullProfile(t)

	payload, err := json.Marshal(profile.FromProfile(original))
	require.NoError(t, err)

	var dto profile.DTO
	require.NoError(t, json.Unmarshal(payload, &dto))

	decoded, err := dto.ToProfile()
	require.NoError(t, err)
	assert.True(t, decoded.Equal(original))
}

func TestDTORoundTripWithAbsentOptionals(t *testing.T) {
	original := profile.New("user-1")

	payload, err := json.Marshal(profile.FromProfile(original))
	require.NoError(t, err)

	var dto profile.DTO
	require.NoError(t, json.Unmarshal(payload, &dto))

	decoded, err := dto.ToProfile()
	require.NoError(t, err)
	assert.True(t, decoded.Equal(original))
	assert.Nil(t, decoded.Username)
	assert.Nil(t, decoded.LastActivityDate)
}

func TestWireFieldNames(t *testing.T) {
	payload, err := json.Marshal(profile.FromProfile(fullProfile(t)))
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(payload, &fields))

	for _, name := range []string{
		"id", "username", "full_name", "avatar_url", "level", "total_xp",
		"current_streak", "longest_streak", "last_activity_date",
		"revenuecat_customer_id", "subscription_status",
		"subscription_product_id", "subscription_expires_at",
		"subscription_started_at", "is_lifetime_premium",
		"created_at", "updated_at",
	} {
		assert.Contains(t, fields, name)
	}
}

func TestMalformedRequiredTimestampFailsDecode(t *testing.T) {
	dto := profile.DTO{
		ID:        "user-1",
		Level:     1,
		CreatedAt: "not-a-timestamp",
		UpdatedAt: "2025-01-02T03:04:05Z",
	}

	_, err := dto.ToProfile()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "created_at")
}

func TestMalformedOptionalTimestampFailsDecode(t *testing.T) {
	dto := profile.DTO{
		ID:               "user-1",
		Level:            1,
		LastActivityDate: utils.Ptr("yesterday-ish"),
		CreatedAt:        "2025-01-02T03:04:05Z",
		UpdatedAt:        "2025-01-02T03:04:05Z",
	}

	_, err := dto.ToProfile()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "last_activity_date")
}
