package models

// Notification is a server-pushed event kept in the local inbox.
type Notification struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	CreatedAt Timestamp `json:"createdAt"`
	Read      bool      `json:"read"`
}
