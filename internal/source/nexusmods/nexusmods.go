package nexusmods

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"bepinstall/internal/domain"
	"bepinstall/internal/source"
)

// SourceID is the hint "source" value for Nexus Mods
const SourceID = "nexusmods"

// NexusMods resolves {"source": "nexusmods", "id", "file_id"} hints
type NexusMods struct {
	client     *Client
	gameDomain string
}

// New creates a Nexus Mods resolver for one game domain, e.g. "valheim"
func New(httpClient *http.Client, apiKey, gameDomain string) *NexusMods {
	return &NexusMods{
		client:     NewClient(httpClient, apiKey),
		gameDomain: gameDomain,
	}
}

// ID returns the source identifier
func (n *NexusMods) ID() string {
	return SourceID
}

// Name returns the display name
func (n *NexusMods) Name() string {
	return "Nexus Mods"
}

// Resolve fetches the mod's metadata and a download link for the hinted file,
// or for the newest main file when no file ID is given.
func (n *NexusMods) Resolve(ctx context.Context, hint domain.ModHint) (*domain.ModEntry, error) {
	if !n.client.IsAuthenticated() {
		return nil, errors.New("nexusmods requires an API key")
	}

	modID, err := strconv.Atoi(hint.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid mod ID %q: %w", hint.ID, err)
	}

	mod, err := n.client.GetMod(ctx, n.gameDomain, modID)
	if err != nil {
		return nil, err
	}

	var fileID int
	version := mod.Version
	if hint.FileID != "" {
		fileID, err = strconv.Atoi(hint.FileID)
		if err != nil {
			return nil, fmt.Errorf("invalid file ID %q: %w", hint.FileID, err)
		}
	} else {
		files, err := n.client.GetModFiles(ctx, n.gameDomain, modID)
		if err != nil {
			return nil, err
		}
		file := pickFile(files.Files)
		if file == nil {
			return nil, fmt.Errorf("%w: nexusmods mod %d has no files", domain.ErrModNotFound, modID)
		}
		fileID = file.FileID
		if file.Version != "" {
			version = file.Version
		}
	}

	links, err := n.client.GetDownloadLinks(ctx, n.gameDomain, modID, fileID)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, fmt.Errorf("no download links for nexusmods file %d", fileID)
	}

	name := mod.Name
	if name == "" {
		name = hint.Name
	}

	return &domain.ModEntry{
		ID:          strconv.Itoa(modID),
		SourceID:    SourceID,
		Name:        name,
		Version:     version,
		Description: mod.Summary,
		DownloadURL: links[0].URI,
		Mappings:    []domain.Mapping{source.HintMapping(hint, name)},
		Loader:      hint.Loader,
	}, nil
}

// pickFile prefers the primary file, then the newest main file, then the newest file
func pickFile(files []FileData) *FileData {
	var newestMain, newest *FileData
	for i := range files {
		f := &files[i]
		if f.IsPrimary {
			return f
		}
		if newest == nil || f.UploadedTime.After(newest.UploadedTime) {
			newest = f
		}
		if f.CategoryID == mainFileCategory && (newestMain == nil || f.UploadedTime.After(newestMain.UploadedTime)) {
			newestMain = f
		}
	}
	if newestMain != nil {
		return newestMain
	}
	return newest
}
