// Package manifest fetches install manifests and normalizes every supported
// schema into a domain.InstallManifest.
package manifest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"bepinstall/internal/domain"
	"bepinstall/internal/source"
	"bepinstall/internal/storage/config"
)

// maxManifestSize caps how much of a manifest response is read
const maxManifestSize = 10 << 20

// SourceID marks entries that came straight from a manifest URL
const SourceID = "manifest"

// Result is a parsed manifest plus the per-mod problems that were skipped
type Result struct {
	Manifest domain.InstallManifest
	Format   string
	Warnings []string
}

// Fetcher loads manifests from a URL or a local file
type Fetcher struct {
	httpClient *http.Client
	resolvers  *source.Registry
	logger     *slog.Logger
}

// NewFetcher creates a manifest fetcher. resolvers may be nil when hint
// manifests are not used.
func NewFetcher(httpClient *http.Client, resolvers *source.Registry, logger *slog.Logger) *Fetcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{httpClient: httpClient, resolvers: resolvers, logger: logger}
}

// Fetch reads the manifest at location and parses it in the given format
func (f *Fetcher) Fetch(ctx context.Context, location, format string) (*Result, error) {
	data, err := f.read(ctx, location)
	if err != nil {
		return nil, err
	}
	return f.Parse(ctx, data, format)
}

func (f *Fetcher) read(ctx context.Context, location string) ([]byte, error) {
	if !config.IsRemote(location) {
		path, err := config.ParseManifestPath(location)
		if err != nil {
			return nil, fmt.Errorf("reading manifest: %w", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading manifest: %w", err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	f.logger.Debug("fetching manifest", "url", location)
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching manifest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching manifest: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxManifestSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading manifest body: %w", err)
	}
	if len(data) > maxManifestSize {
		return nil, fmt.Errorf("%w: larger than %d bytes", domain.ErrInvalidManifest, maxManifestSize)
	}
	return data, nil
}

// Parse decodes manifest data. FormatAuto (or "") detects the schema.
func (f *Fetcher) Parse(ctx context.Context, data []byte, format string) (*Result, error) {
	if format == "" || format == config.FormatAuto {
		detected, err := DetectFormat(data)
		if err != nil {
			return nil, err
		}
		format = detected
	}

	result := &Result{Format: format}
	var err error
	switch format {
	case config.FormatLegacy:
		result.Manifest, err = parseLegacy(data)
	case config.FormatSettings:
		result.Manifest, err = parseSettings(data)
	case config.FormatHints:
		result.Manifest, result.Warnings, err = f.resolveHints(ctx, data)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", domain.ErrInvalidManifest, format)
	}
	if err != nil {
		return nil, err
	}

	for _, w := range result.Warnings {
		f.logger.Warn("manifest entry skipped", "reason", w)
	}
	return result, nil
}

// DetectFormat guesses the schema from the JSON shape: an object with
// "bepinex" is a settings file, an array of objects with "url" is the legacy
// list and an array with "namespace", "name" or "id" is a hint list.
func DetectFormat(data []byte) (string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return "", fmt.Errorf("%w: empty document", domain.ErrInvalidManifest)
	}

	switch trimmed[0] {
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrInvalidManifest, err)
		}
		if _, ok := obj["bepinex"]; ok {
			return config.FormatSettings, nil
		}
		return "", fmt.Errorf("%w: object without \"bepinex\"", domain.ErrInvalidManifest)
	case '[':
		var items []map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrInvalidManifest, err)
		}
		if len(items) == 0 {
			return config.FormatLegacy, nil
		}
		for _, item := range items {
			if _, ok := item["url"]; ok {
				return config.FormatLegacy, nil
			}
		}
		for _, item := range items {
			for _, key := range []string{"namespace", "name", "id"} {
				if _, ok := item[key]; ok {
					return config.FormatHints, nil
				}
			}
		}
		return "", fmt.Errorf("%w: unrecognized entries", domain.ErrInvalidManifest)
	default:
		return "", errors.New("manifest is not a JSON object or array")
	}
}
