package accounts

import "time"

// Account represents a registered user identity with credentials and
// activation state.
type Account struct {
	ID              int64
	FullName        string
	Email           string
	PasswordHash    string
	ProfileImageURL string
	ActivationToken *string
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Profile is the credential-free representation returned to callers.
type Profile struct {
	ID              int64     `json:"id"`
	FullName        string    `json:"fullName"`
	Email           string    `json:"email"`
	ProfileImageURL string    `json:"profileImageUrl,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// PublicProfile strips credential state from an account.
func (a Account) PublicProfile() Profile {
	return Profile{
		ID:              a.ID,
		FullName:        a.FullName,
		Email:           a.Email,
		ProfileImageURL: a.ProfileImageURL,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	FullName        string
	Email           string
	Password        string
	ProfileImageURL string
}
