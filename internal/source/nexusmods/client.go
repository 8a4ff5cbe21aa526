package nexusmods

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"bepinstall/internal/domain"

	"github.com/hasura/go-graphql-client"
)

const (
	graphqlEndpoint = "https://api.nexusmods.com/v2/graphql"
	restEndpoint    = "https://api.nexusmods.com"
)

// Client wraps the Nexus Mods GraphQL and REST APIs
type Client struct {
	httpClient *http.Client
	apiKey     string
	graphqlURL string
	baseURL    string
}

// NewClient creates a new Nexus Mods API client
func NewClient(httpClient *http.Client, apiKey string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	// Every request carries the API key header
	authed := &http.Client{
		Transport: &apiKeyTransport{base: httpClient.Transport, apiKey: apiKey},
		Timeout:   httpClient.Timeout,
	}

	return &Client{
		httpClient: authed,
		apiKey:     apiKey,
		graphqlURL: graphqlEndpoint,
		baseURL:    restEndpoint,
	}
}

type apiKeyTransport struct {
	base   http.RoundTripper
	apiKey string
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.apiKey != "" {
		req = req.Clone(req.Context())
		req.Header.Set("apikey", t.apiKey)
	}
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

// IsAuthenticated reports whether an API key is configured
func (c *Client) IsAuthenticated() bool {
	return c.apiKey != ""
}

// GetMod fetches mod metadata over GraphQL
func (c *Client) GetMod(ctx context.Context, gameDomain string, modID int) (*ModData, error) {
	var query struct {
		Mod ModData `graphql:"mod(gameId: $gameId, modId: $modId)"`
	}

	variables := map[string]interface{}{
		"gameId": graphql.String(gameDomain),
		"modId":  graphql.Int(modID),
	}

	gql := graphql.NewClient(c.graphqlURL, c.httpClient)
	if err := gql.Query(ctx, &query, variables); err != nil {
		return nil, fmt.Errorf("querying mod: %w", err)
	}
	if query.Mod.ModID == 0 {
		return nil, fmt.Errorf("%w: nexusmods %s/%d", domain.ErrModNotFound, gameDomain, modID)
	}

	return &query.Mod, nil
}

// GetModFiles lists the files of a mod
func (c *Client) GetModFiles(ctx context.Context, gameDomain string, modID int) (*ModFileList, error) {
	var list ModFileList
	path := fmt.Sprintf("/v1/games/%s/mods/%d/files.json", gameDomain, modID)
	if err := c.getJSON(ctx, path, &list); err != nil {
		return nil, fmt.Errorf("getting mod files: %w", err)
	}
	return &list, nil
}

// GetDownloadLinks returns CDN links for a file. Requires a premium account key.
func (c *Client) GetDownloadLinks(ctx context.Context, gameDomain string, modID, fileID int) ([]DownloadLink, error) {
	var links []DownloadLink
	path := fmt.Sprintf("/v1/games/%s/mods/%d/files/%d/download_link.json", gameDomain, modID, fileID)
	if err := c.getJSON(ctx, path, &links); err != nil {
		return nil, fmt.Errorf("getting download links: %w", err)
	}
	return links, nil
}

// ValidateAPIKey checks the configured key and returns its account
func (c *Client) ValidateAPIKey(ctx context.Context) (*User, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("no API key configured")
	}
	var user User
	if err := c.getJSON(ctx, "/v1/users/validate.json", &user); err != nil {
		return nil, fmt.Errorf("validating API key: %w", err)
	}
	return &user, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return domain.ErrModNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("nexusmods rejected the API key (status %d)", resp.StatusCode)
	default:
		return fmt.Errorf("nexusmods returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
