package thunderstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"bepinstall/internal/domain"
)

const (
	defaultBaseURL = "https://thunderstore.io"
	userAgent      = "bepinstall"
)

// Client wraps the Thunderstore package API
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a Thunderstore API client. An empty baseURL uses thunderstore.io.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// GetPackage fetches a package and its latest version
func (c *Client) GetPackage(ctx context.Context, namespace, name string) (*Package, error) {
	endpoint := fmt.Sprintf("%s/api/experimental/package/%s/%s/",
		c.baseURL, url.PathEscape(namespace), url.PathEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting package: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s-%s", domain.ErrModNotFound, namespace, name)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("thunderstore returned status %d", resp.StatusCode)
	}

	var pkg Package
	if err := json.NewDecoder(resp.Body).Decode(&pkg); err != nil {
		return nil, fmt.Errorf("decoding package: %w", err)
	}
	return &pkg, nil
}
