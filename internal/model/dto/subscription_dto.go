package dto

// SubscriptionInfo backs the profile subscription card.
type SubscriptionInfo struct {
	Tier                 string  `json:"tier"`
	DisplayName          string  `json:"display_name"`
	Rank                 int     `json:"rank"`
	WeeklyQuota          int     `json:"weekly_quota"`
	ManualPastEventQuota int     `json:"manual_past_event_quota"`
	ExpiresAt            *string `json:"expires_at"`
	DaysRemaining        *int    `json:"days_remaining"`
	Expired              bool    `json:"expired"`
	AutoDowngradeEnabled bool    `json:"auto_downgrade_enabled"`
}
