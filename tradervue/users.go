package tradervue

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// User is an account in the organization. These endpoints require the
// organization manager role.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Plan     string `json:"plan,omitempty"`
}

// GetUsers lists the organization's users.
func (c *Client) GetUsers(ctx context.Context) ([]User, error) {
	resp, err := c.get(ctx, "/users", nil)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}

	var envelope struct {
		Users []User `json:"users"`
	}
	if err := json.Unmarshal(resp.body, &envelope); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	if envelope.Users == nil {
		return nil, fmt.Errorf("no 'users' field in users response")
	}
	return envelope.Users, nil
}

// GetUser fetches one user.
func (c *Client) GetUser(ctx context.Context, id int64) (*User, error) {
	resp, err := c.get(ctx, "/users/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return nil, fmt.Errorf("query user %d: %w", id, err)
	}

	var u User
	if err := json.Unmarshal(resp.body, &u); err != nil {
		return nil, fmt.Errorf("decode user %d: %w", id, err)
	}
	return &u, nil
}

// NewUser is the payload for creating an organization user. Plan is one of
// Free, Silver or Gold.
type NewUser struct {
	Username string
	Email    string
	Plan     string
	Password string
	TrialEnd time.Time
}

// CreateUser creates a new organization user and returns its id.
func (c *Client) CreateUser(ctx context.Context, nu NewUser) (int64, error) {
	payload := map[string]any{
		"username": nu.Username,
		"email":    nu.Email,
		"plan":     nu.Plan,
		"password": nu.Password,
	}
	if !nu.TrialEnd.IsZero() {
		payload["trial_end"] = nu.TrialEnd.Format("2006-01-02")
	}

	resp, err := c.post(ctx, "/users", payload)
	if err != nil {
		return 0, fmt.Errorf("create user %s: %w", nu.Username, err)
	}
	if resp.status != http.StatusCreated {
		return 0, fmt.Errorf("create user %s: unexpected status %d", nu.Username, resp.status)
	}

	var created struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(resp.body, &created); err != nil {
		return 0, fmt.Errorf("decode created user: %w", err)
	}
	return created.ID, nil
}

// UserUpdate holds the modifiable fields of a user. Empty strings leave
// the field untouched.
type UserUpdate struct {
	Username string
	Email    string
	Plan     string
}

// UpdateUser modifies the given fields of a user. An update with no fields
// set is rejected without a request.
func (c *Client) UpdateUser(ctx context.Context, id int64, u UserUpdate) error {
	payload := map[string]any{}
	if u.Username != "" {
		payload["username"] = u.Username
	}
	if u.Email != "" {
		payload["email"] = u.Email
	}
	if u.Plan != "" {
		payload["plan"] = u.Plan
	}
	if len(payload) == 0 {
		return fmt.Errorf("no updates specified for user %d", id)
	}

	if _, err := c.put(ctx, "/users/"+strconv.FormatInt(id, 10), payload); err != nil {
		return fmt.Errorf("update user %d: %w", id, err)
	}
	return nil
}
