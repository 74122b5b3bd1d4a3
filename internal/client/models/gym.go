package models

// Gym is the public gym profile used for counterparty display.
type Gym struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
	OwnerID  int64  `json:"ownerId"`
}

// UserProfile is the public user profile used for counterparty display.
type UserProfile struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"profileImageUrl"`
}
