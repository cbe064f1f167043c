package dto

type UserListQuery struct {
	Page     int    `form:"page,default=1" binding:"min=1"`
	PageSize int    `form:"page_size,default=20" binding:"min=1,max=100"`
	Search   string `form:"search"`
	Tier     string `form:"tier"`
}

type SetTierRequest struct {
	Tier         string `json:"tier" binding:"required"`
	DurationDays int    `json:"duration_days" binding:"min=0,max=3650"`
}

type SetRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=user admin"`
}

type SetAutoDowngradeRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

type DashboardStats struct {
	TotalUsers      int64            `json:"total_users"`
	UsersByTier     map[string]int64 `json:"users_by_tier"`
	PendingPayments int64            `json:"pending_payments"`
	PublishedEvents int64            `json:"published_events"`
	DraftEvents     int64            `json:"draft_events"`
}
