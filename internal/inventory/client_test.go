package inventory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAvailability(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v1/rooms/42", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"item": RoomStatus{RoomID: 42, Available: true, PriceCents: 15_000},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	status, err := c.CheckAvailability(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), status.RoomID)
	assert.True(t, status.Available)
	assert.Equal(t, int64(15_000), status.PriceCents)
}

func TestCheckAvailabilityNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such room", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.CheckAvailability(context.Background(), 999)
	require.ErrorIs(t, err, ErrRoomNotFound)
}

func TestCheckAvailabilityServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.CheckAvailability(context.Background(), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRoomNotFound)
}

func TestCheckAvailabilityTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 20*time.Millisecond)
	_, err := c.CheckAvailability(context.Background(), 1)
	require.Error(t, err)
}

func TestSetAvailability(t *testing.T) {
	var gotBody map[string]bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/v1/rooms/7/availability", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second) // trailing slash is trimmed
	require.NoError(t, c.SetAvailability(context.Background(), 7, false))
	assert.Equal(t, map[string]bool{"available": false}, gotBody)
}

func TestSetAvailabilityNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such room", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	err := c.SetAvailability(context.Background(), 7, true)
	require.ErrorIs(t, err, ErrRoomNotFound)
}
