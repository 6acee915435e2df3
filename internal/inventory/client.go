// Package inventory wraps the remote room-availability API consumed by
// the booking flow.  Calls are advisory: the client bounds every
// request with a timeout and reports failures as plain errors, and the
// caller is expected to log and continue rather than abort.  Keeping
// room state perfectly in sync is explicitly not attempted.
package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrRoomNotFound is returned when the inventory service reports that
// the requested room does not exist.
var ErrRoomNotFound = errors.New("room not found")

// RoomStatus is the availability snapshot returned by the inventory
// service for a single room.
type RoomStatus struct {
	RoomID     uint64 `json:"id"`
	Available  bool   `json:"available"`
	PriceCents int64  `json:"price_cents"`
}

// Client talks to the room inventory HTTP API.  The base URL points at
// the room service, which may be this very process or a separate
// deployment.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a Client for the inventory API at baseURL.  Timeout
// bounds each request; zero selects a 3 second default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// CheckAvailability fetches the availability snapshot for the room.  A
// transport failure, timeout or non-2xx response yields an error; the
// caller decides whether that blocks anything (in the booking flow it
// never does).
func (c *Client) CheckAvailability(ctx context.Context, roomID uint64) (RoomStatus, error) {
	url := fmt.Sprintf("%s/v1/rooms/%d", c.baseURL, roomID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return RoomStatus{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return RoomStatus{}, fmt.Errorf("inventory check: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return RoomStatus{}, ErrRoomNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return RoomStatus{}, fmt.Errorf("inventory check: unexpected status %d", resp.StatusCode)
	}
	var body struct {
		Item RoomStatus `json:"item"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return RoomStatus{}, fmt.Errorf("inventory check: decode: %w", err)
	}
	return body.Item, nil
}

// SetAvailability pushes an availability flag to the inventory service.
// Failures are reported but carry no compensation obligation for the
// caller.
func (c *Client) SetAvailability(ctx context.Context, roomID uint64, available bool) error {
	url := fmt.Sprintf("%s/v1/rooms/%d/availability", c.baseURL, roomID)
	payload, err := json.Marshal(map[string]bool{"available": available})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("inventory update: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return ErrRoomNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inventory update: unexpected status %d", resp.StatusCode)
	}
	return nil
}
