package models

import (
	"encoding/json"
	"strings"
)

// SenderType tags which branch of the actor produced a chat message.
type SenderType string

const (
	SenderUser SenderType = "USER"
	SenderGym  SenderType = "GYM"
)

// ChatRoom is a room as returned by the /ws/chatRooms endpoints.
type ChatRoom struct {
	ID              int64     `json:"chatRoomId"`
	UserID          int64     `json:"userId"`
	GymID           int64     `json:"gymId"`
	LastMessage     string    `json:"lastMessage"`
	LastMessageTime Timestamp `json:"lastMessageTime"`
	UnreadCount     int       `json:"unreadCount"`
	CreatedAt       Timestamp `json:"createdAt"`
	UpdatedAt       Timestamp `json:"updatedAt"`
}

// ChatRoomSummary is a directory row: a room plus counterparty display data.
type ChatRoomSummary struct {
	ChatRoomID         int64
	CounterpartyID     int64
	CounterpartyRole   SenderType
	CounterpartyName   string
	CounterpartyAvatar string
	LastMessage        string
	LastMessageTime    Timestamp
	UnreadCount        int
	UpdatedAt          Timestamp
	CreatedAt          Timestamp
}

// SortKey is the display-ordering timestamp in epoch milliseconds:
// updatedAt, else lastMessageTime, else createdAt, else 0.
func (s ChatRoomSummary) SortKey() int64 {
	for _, ts := range []Timestamp{s.UpdatedAt, s.LastMessageTime, s.CreatedAt} {
		if !ts.IsZero() {
			return ts.UnixMilli()
		}
	}
	return 0
}

// ChatMessage is one message of a room, from history or from the live channel.
type ChatMessage struct {
	SenderID   int64      `json:"senderId"`
	SenderType SenderType `json:"senderType"`
	Content    string     `json:"message"`
	ReceiverID int64      `json:"receiverId,omitempty"`
	CreatedAt  Timestamp  `json:"createdAt"`
}

// UnmarshalJSON accepts the text under either "message" (live frames) or
// "content" (history).
func (m *ChatMessage) UnmarshalJSON(data []byte) error {
	type plain ChatMessage
	var raw struct {
		plain
		Content string `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = ChatMessage(raw.plain)
	if m.Content == "" {
		m.Content = raw.Content
	}
	m.SenderType = SenderType(strings.ToUpper(string(m.SenderType)))
	return nil
}
