package meet

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// JitsiClient provisions rooms on a Jitsi Meet deployment.
type JitsiClient struct {
	domain string
	apiKey string
	client *http.Client
}

// NewJitsiClient creates a provisioner for the given Jitsi domain
// (e.g. "meet.jus.br").
func NewJitsiClient(domain, apiKey string) *JitsiClient {
	return &JitsiClient{
		domain: domain,
		apiKey: apiKey,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

type jitsiRoomRequest struct {
	RoomName        string `json:"room_name"`
	Subject         string `json:"subject"`
	StartTime       string `json:"start_time"`
	DurationMinutes int    `json:"duration"`
	MaxParticipants int    `json:"max_participants"`
}

// CreateRoom registers a room on the meetings API and returns its URL.
// The room name is unique per call: atendimento-{user}-{random hex}.
func (c *JitsiClient) CreateRoom(ctx context.Context, userID, subject string) (*Room, error) {
	roomName := fmt.Sprintf("atendimento-%s-%s", userID, randomHex(4))

	body, err := json.Marshal(jitsiRoomRequest{
		RoomName:        roomName,
		Subject:         subject,
		StartTime:       time.Now().Format(time.RFC3339),
		DurationMinutes: 30,
		MaxParticipants: 2, // user and operator
	})
	if err != nil {
		return nil, &ProvisioningError{Err: err}
	}

	url := fmt.Sprintf("https://%s/api/v1/meetings", c.domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &ProvisioningError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &ProvisioningError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ProvisioningError{Err: fmt.Errorf("meetings API status %d", resp.StatusCode)}
	}

	return &Room{
		URL:  fmt.Sprintf("https://%s/%s", c.domain, roomName),
		Name: roomName,
	}, nil
}

func randomHex(n int) string {
	b := make([]byte, n)
	rand.Read(b)
	return hex.EncodeToString(b)
}
