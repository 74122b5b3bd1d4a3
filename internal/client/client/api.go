package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gymhub/gymclient/internal/client/models"
	"github.com/gymhub/gymclient/internal/client/tokens"
	"github.com/gymhub/gymclient/internal/netx"
)

const (
	loginPath     = "/login"
	mePath        = "/users/me"
	chatRoomsPath = "/ws/chatRooms"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login posts credentials over the bare transport and stores the returned
// pair. A failed login leaves the store untouched.
func (c *HTTPClient) Login(ctx context.Context, email, password string) error {
	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, netx.JoinURL(c.baseURL, loginPath), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.bare.Do(req)
	if err != nil {
		if netx.IsNoResponse(ctx, err) {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return readAPIError(resp)
	}
	defer resp.Body.Close()

	var out tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode login response: %w", err)
	}
	if tokens.Normalize(out.AccessToken) == "" {
		return &APIError{Status: resp.StatusCode, Message: "login response carried no access token"}
	}
	return c.tokens.Set(ctx, out.AccessToken, out.RefreshToken)
}

func (c *HTTPClient) Me(ctx context.Context) (*models.Session, error) {
	var s models.Session
	if err := c.do(ctx, http.MethodGet, mePath, nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) User(ctx context.Context, id int64) (*models.UserProfile, error) {
	var u models.UserProfile
	if err := c.do(ctx, http.MethodGet, "/users/"+strconv.FormatInt(id, 10), nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) Gym(ctx context.Context, id int64) (*models.Gym, error) {
	var g models.Gym
	if err := c.do(ctx, http.MethodGet, "/gyms/"+strconv.FormatInt(id, 10), nil, nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// OwnedGyms lists the gyms owned by the current session.
func (c *HTTPClient) OwnedGyms(ctx context.Context) ([]models.Gym, error) {
	var gyms []models.Gym
	if err := c.do(ctx, http.MethodGet, "/gyms/my", nil, nil, &gyms); err != nil {
		return nil, err
	}
	return gyms, nil
}

// ChatRooms lists rooms for one side of a conversation: a user id with
// SenderUser or a gym id with SenderGym.
func (c *HTTPClient) ChatRooms(ctx context.Context, id int64, kind models.SenderType) ([]models.ChatRoom, error) {
	q := url.Values{}
	q.Set("userId", strconv.FormatInt(id, 10))
	q.Set("userType", string(kind))

	var rooms []models.ChatRoom
	if err := c.do(ctx, http.MethodGet, chatRoomsPath, q, nil, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// CreateChatRoom creates the room between a user and a gym, or returns the
// existing one.
func (c *HTTPClient) CreateChatRoom(ctx context.Context, userID, gymID int64) (*models.ChatRoom, error) {
	q := url.Values{}
	q.Set("userId", strconv.FormatInt(userID, 10))
	q.Set("gymId", strconv.FormatInt(gymID, 10))

	var room models.ChatRoom
	if err := c.do(ctx, http.MethodPost, chatRoomsPath, q, nil, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (c *HTTPClient) ChatRoom(ctx context.Context, roomID int64) (*models.ChatRoom, error) {
	var room models.ChatRoom
	if err := c.do(ctx, http.MethodGet, chatRoomsPath+"/"+strconv.FormatInt(roomID, 10), nil, nil, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// ChatMessages returns the room history, oldest first as sent by the server.
func (c *HTTPClient) ChatMessages(ctx context.Context, roomID int64) ([]models.ChatMessage, error) {
	var msgs []models.ChatMessage
	if err := c.do(ctx, http.MethodGet, chatRoomsPath+"/"+strconv.FormatInt(roomID, 10)+"/messages", nil, nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}
