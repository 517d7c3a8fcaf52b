// quest-portal-system/services/identity_client.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

// IdentityClient talks to the identity service with the shared service token.
type IdentityClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

// ProfileChange is one changed profile as the identity service reports it.
type ProfileChange struct {
	ExternalID string    `json:"external_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type profileChangesResponse struct {
	Profiles []ProfileChange `json:"profiles"`
}

func NewIdentityClient(baseURL, token string) *IdentityClient {
	return &IdentityClient{
		BaseURL: baseURL,
		Token:   token,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FetchProfileChanges calls the identity service's changed-profiles endpoint,
// returning every profile updated after the given time.
func (c *IdentityClient) FetchProfileChanges(ctx context.Context, endpointPath string, since time.Time) ([]ProfileChange, error) {
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid identity service URL '%s': %w", c.BaseURL, err)
	}
	endpointURL := base.JoinPath(endpointPath)
	q := endpointURL.Query()
	q.Set("since", since.UTC().Format(time.RFC3339))
	endpointURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", endpointURL.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request to identity service failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Printf("IdentityService %s returned %d: %s", endpointPath, resp.StatusCode, string(body))
		return nil, fmt.Errorf("identity service non-200 response: %d", resp.StatusCode)
	}

	var out profileChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode identity service response: %w", err)
	}
	return out.Profiles, nil
}
