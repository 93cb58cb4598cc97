package model

import "time"

// User is a blacklink profile owner. This is a pure domain model with no
// database-specific dependencies or tags; it is shared across the HTTP,
// service and repository layers.
//
// Username is the public handle and is stored lowercase. Plan and PlanStatus
// follow the plan catalog; the *At fields are nil for users that never paid.
type User struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
	Email       string `json:"email"`
	AvatarURL   string `json:"avatar_url"`

	MainCTAURL      string `json:"main_cta_url"`
	MainCTALabel    string `json:"main_cta_label"`
	MainCTASubtitle string `json:"main_cta_subtitle"`

	InstagramURL    string `json:"instagram_url"`
	TikTokURL       string `json:"tiktok_url"`
	YouTubeURL      string `json:"youtube_url"`
	TelegramURL     string `json:"telegram_url"`
	LinkedInURL     string `json:"linkedin_url"`
	GitHubURL       string `json:"github_url"`
	FacebookURL     string `json:"facebook_url"`
	KwaiURL         string `json:"kwai_url"`
	MercadoLivreURL string `json:"mercadolivre_url"`

	Plan          string     `json:"plan"`
	PlanStatus    string     `json:"plan_status"`
	PlanStartedAt *time.Time `json:"plan_started_at"`
	PlanExpiresAt *time.Time `json:"plan_expires_at"`

	// LastPaid* preserve what the user had before an expiry downgrade so the
	// panel can offer a renewal of the old plan.
	LastPaidPlan      string     `json:"last_paid_plan"`
	LastPaidExpiresAt *time.Time `json:"last_paid_expires_at"`

	MPCustomerID     string `json:"mp_customer_id"`
	MPSubscriptionID string `json:"mp_subscription_id"`

	CreatedAt time.Time `json:"created_at"`
}

// UserUpdate carries a partial update. Nil fields are left untouched, so a
// timestamp can be set but not cleared through a partial update.
type UserUpdate struct {
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
	Email       *string `json:"email"`
	AvatarURL   *string `json:"avatar_url"`

	MainCTAURL      *string `json:"main_cta_url"`
	MainCTALabel    *string `json:"main_cta_label"`
	MainCTASubtitle *string `json:"main_cta_subtitle"`

	InstagramURL    *string `json:"instagram_url"`
	TikTokURL       *string `json:"tiktok_url"`
	YouTubeURL      *string `json:"youtube_url"`
	TelegramURL     *string `json:"telegram_url"`
	LinkedInURL     *string `json:"linkedin_url"`
	GitHubURL       *string `json:"github_url"`
	FacebookURL     *string `json:"facebook_url"`
	KwaiURL         *string `json:"kwai_url"`
	MercadoLivreURL *string `json:"mercadolivre_url"`

	Plan              *string    `json:"plan"`
	PlanStatus        *string    `json:"plan_status"`
	PlanStartedAt     *time.Time `json:"plan_started_at"`
	PlanExpiresAt     *time.Time `json:"plan_expires_at"`
	LastPaidPlan      *string    `json:"last_paid_plan"`
	LastPaidExpiresAt *time.Time `json:"last_paid_expires_at"`
}

// Apply copies the non-nil fields onto u.
func (up UserUpdate) Apply(u *User) {
	if up.DisplayName != nil {
		u.DisplayName = *up.DisplayName
	}
	if up.Bio != nil {
		u.Bio = *up.Bio
	}
	if up.Email != nil {
		u.Email = *up.Email
	}
	if up.AvatarURL != nil {
		u.AvatarURL = *up.AvatarURL
	}
	if up.MainCTAURL != nil {
		u.MainCTAURL = *up.MainCTAURL
	}
	if up.MainCTALabel != nil {
		u.MainCTALabel = *up.MainCTALabel
	}
	if up.MainCTASubtitle != nil {
		u.MainCTASubtitle = *up.MainCTASubtitle
	}
	if up.InstagramURL != nil {
		u.InstagramURL = *up.InstagramURL
	}
	if up.TikTokURL != nil {
		u.TikTokURL = *up.TikTokURL
	}
	if up.YouTubeURL != nil {
		u.YouTubeURL = *up.YouTubeURL
	}
	if up.TelegramURL != nil {
		u.TelegramURL = *up.TelegramURL
	}
	if up.LinkedInURL != nil {
		u.LinkedInURL = *up.LinkedInURL
	}
	if up.GitHubURL != nil {
		u.GitHubURL = *up.GitHubURL
	}
	if up.FacebookURL != nil {
		u.FacebookURL = *up.FacebookURL
	}
	if up.KwaiURL != nil {
		u.KwaiURL = *up.KwaiURL
	}
	if up.MercadoLivreURL != nil {
		u.MercadoLivreURL = *up.MercadoLivreURL
	}
	if up.Plan != nil {
		u.Plan = *up.Plan
	}
	if up.PlanStatus != nil {
		u.PlanStatus = *up.PlanStatus
	}
	if up.PlanStartedAt != nil {
		u.PlanStartedAt = up.PlanStartedAt
	}
	if up.PlanExpiresAt != nil {
		u.PlanExpiresAt = up.PlanExpiresAt
	}
	if up.LastPaidPlan != nil {
		u.LastPaidPlan = *up.LastPaidPlan
	}
	if up.LastPaidExpiresAt != nil {
		u.LastPaidExpiresAt = up.LastPaidExpiresAt
	}
}
