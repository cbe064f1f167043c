package dto

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	FullName string `json:"full_name" binding:"omitempty,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type RegisterResponse struct {
	UserID        int64 `json:"user_id"`
	EmailVerified bool  `json:"email_verified"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string    `json:"token"`
	User  *UserInfo `json:"user"`
}

type VerifyEmailRequest struct {
	Code string `json:"code" binding:"required"`
}

// UserInfo is the profile as returned to clients.
type UserInfo struct {
	ID                    int64    `json:"id"`
	Username              string   `json:"username"`
	FullName              string   `json:"full_name"`
	Email                 string   `json:"email,omitempty"`
	Role                  string   `json:"role"`
	AvatarURL             string   `json:"avatar_url"`
	Bio                   string   `json:"bio"`
	Skills                []string `json:"skills"`
	SubscriptionTier      string   `json:"subscription_tier"`
	SubscriptionExpiresAt string   `json:"subscription_expires_at,omitempty"`
	AutoDowngradeEnabled  bool     `json:"auto_downgrade_enabled"`
	EmailVerified         bool     `json:"email_verified"`
	CreatedAt             string   `json:"created_at,omitempty"`
}

type UpdateProfileRequest struct {
	Username  *string   `json:"username,omitempty" binding:"omitempty,min=3,max=50"`
	FullName  *string   `json:"full_name,omitempty" binding:"omitempty,max=100"`
	Bio       *string   `json:"bio,omitempty" binding:"omitempty,max=500"`
	AvatarURL *string   `json:"avatar_url,omitempty" binding:"omitempty,url,max=500"`
	Skills    *[]string `json:"skills,omitempty" binding:"omitempty,max=30,dive,min=1,max=50"`
}
