package nexusmods

import "time"

// ModData is the subset of the GraphQL v2 mod object bepinstall reads
type ModData struct {
	ModID    int    `graphql:"modId"`
	Name     string `graphql:"name"`
	Summary  string `graphql:"summary"`
	Version  string `graphql:"version"`
	Uploader struct {
		Name string `graphql:"name"`
	} `graphql:"uploader"`
}

// FileData represents a mod file from the REST API v1
type FileData struct {
	FileID       int       `json:"file_id"`
	Name         string    `json:"name"`
	FileName     string    `json:"file_name"`
	Version      string    `json:"version"`
	CategoryID   int       `json:"category_id"`
	CategoryName string    `json:"category_name"`
	IsPrimary    bool      `json:"is_primary"`
	SizeInBytes  *int64    `json:"size_in_bytes"`
	UploadedTime time.Time `json:"uploaded_time"`
}

// ModFileList is the response of the mod files endpoint
type ModFileList struct {
	Files []FileData `json:"files"`
}

// DownloadLink is one CDN mirror for a file
type DownloadLink struct {
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	URI       string `json:"URI"`
}

// mainFileCategory is the category ID Nexus assigns to "Main files"
const mainFileCategory = 1

// User is the account behind an API key
type User struct {
	UserID    int    `json:"user_id"`
	Name      string `json:"name"`
	IsPremium bool   `json:"is_premium"`
}
