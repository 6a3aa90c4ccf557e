package tradervue

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUsers(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/users", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"users": []User{{ID: 1, Username: "jane"}, {ID: 2, Username: "john"}},
		})
	})

	users, err := client.GetUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "jane", users[0].Username)
}

func TestGetUser(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/users/2", r.URL.Path)
		json.NewEncoder(w).Encode(User{ID: 2, Username: "john", Plan: "Gold"})
	})

	u, err := client.GetUser(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Gold", u.Plan)
}

func TestCreateUser(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "2026-12-31", payload["trial_end"])
		assert.Equal(t, "Silver", payload["plan"])

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]int64{"id": 9})
	})

	id, err := client.CreateUser(context.Background(), NewUser{
		Username: "sam",
		Email:    "sam@example.com",
		Plan:     "Silver",
		Password: "secret",
		TrialEnd: time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)
}

func TestUpdateUser(t *testing.T) {
	t.Run("empty update rejected locally", func(t *testing.T) {
		requests := 0
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			requests++
		})

		err := client.UpdateUser(context.Background(), 2, UserUpdate{})
		require.Error(t, err)
		assert.Equal(t, 0, requests)
	})

	t.Run("sends set fields", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPut, r.Method)
			require.Equal(t, "/api/v1/users/2", r.URL.Path)

			var payload map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, map[string]any{"plan": "Gold"}, payload)
			w.Write([]byte(`{}`))
		})

		require.NoError(t, client.UpdateUser(context.Background(), 2, UserUpdate{Plan: "Gold"}))
	})
}
