package domain

import "errors"

var (
	ErrGameNotFound        = errors.New("game not found")
	ErrUnknownGame         = errors.New("unknown game")
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrInvalidManifest     = errors.New("invalid manifest")
	ErrModNotFound         = errors.New("mod not found")
	ErrUnknownSource       = errors.New("unknown mod source")
	ErrDownloadFailed      = errors.New("download failed")
	ErrArchiveTooLarge     = errors.New("archive exceeds size limit")
	ErrMappingSource       = errors.New("mapping source not found in archive")
	ErrPathOutsideRoot     = errors.New("path escapes install root")
	ErrRunInProgress       = errors.New("another run is in progress")
	ErrLoaderInstallFailed = errors.New("loader installation failed")
)
