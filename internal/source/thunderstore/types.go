package thunderstore

// Package is the response of the experimental package endpoint
type Package struct {
	Namespace    string  `json:"namespace"`
	Name         string  `json:"name"`
	FullName     string  `json:"full_name"`
	Owner        string  `json:"owner"`
	PackageURL   string  `json:"package_url"`
	IsDeprecated bool    `json:"is_deprecated"`
	Latest       Version `json:"latest"`
}

// Version is one published version of a package
type Version struct {
	Namespace     string   `json:"namespace"`
	Name          string   `json:"name"`
	VersionNumber string   `json:"version_number"`
	FullName      string   `json:"full_name"`
	Description   string   `json:"description"`
	Dependencies  []string `json:"dependencies"`
	DownloadURL   string   `json:"download_url"`
	Downloads     int64    `json:"downloads"`
	WebsiteURL    string   `json:"website_url"`
	IsActive      bool     `json:"is_active"`
}
