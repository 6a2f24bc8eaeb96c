package profile

import "time"

// Profile mirrors the auth provider's identity: the id is the auth user id,
// created at registration / first login.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateProfileRequest payload of registration sync.
// swagger:model CreateProfileRequest
type CreateProfileRequest struct {
	Email     string `json:"email"      example:"ana@example.com"`
	Username  string `json:"username"   example:"ana_paints"`
	AvatarURL string `json:"avatar_url" example:"avatars/ana.png"`
	Bio       string `json:"bio"        example:"Oil painter based in Leeds"`
}
