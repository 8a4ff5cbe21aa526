package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"

	"bepinstall/internal/domain"
)

// MaxArchiveSize is the largest archive the downloader accepts, in bytes
const MaxArchiveSize int64 = 100_000_000

// ProgressFunc receives the bytes written so far and the announced size (0 if unknown)
type ProgressFunc func(received, total int64)

// DownloadResult is a fetched archive on disk
type DownloadResult struct {
	Path     string // Temp file holding the archive; the caller removes it
	Size     int64
	Checksum string // SHA-256 of the body, hex encoded
}

// Downloader fetches archives over HTTP into uniquely named temp files
type Downloader struct {
	httpClient *http.Client
	maxSize    int64
}

// NewDownloader returns a downloader capped at MaxArchiveSize. A nil client means http.DefaultClient.
func NewDownloader(client *http.Client) *Downloader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Downloader{httpClient: client, maxSize: MaxArchiveSize}
}

// Download fetches url into a new temp file in dir ("" uses the system temp dir).
// The body is read until EOF, so a missing Content-Length is fine. Reading past
// the size cap fails with domain.ErrArchiveTooLarge. On error no file is left behind.
func (d *Downloader) Download(ctx context.Context, url, dir string, onProgress ProgressFunc) (*DownloadResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	req.Header.Set("Accept", "application/zip, application/octet-stream, */*")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDownloadFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP %s", domain.ErrDownloadFailed, resp.Status)
	}

	// Fail early when the server announces an oversized body
	if resp.ContentLength > d.maxSize {
		return nil, fmt.Errorf("%w: %d bytes announced, limit %d", domain.ErrArchiveTooLarge, resp.ContentLength, d.maxSize)
	}

	file, err := os.CreateTemp(dir, "bepinstall-*.zip")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := file.Name()
	ok := false
	defer func() {
		if !ok {
			file.Close()
			os.Remove(tempPath)
		}
	}()

	hasher := sha256.New()
	sink := &meter{w: io.MultiWriter(file, hasher), total: max(resp.ContentLength, 0), onProgress: onProgress}
	written, err := io.Copy(sink, io.LimitReader(resp.Body, d.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDownloadFailed, err)
	}
	if written > d.maxSize {
		return nil, fmt.Errorf("%w: limit %d bytes", domain.ErrArchiveTooLarge, d.maxSize)
	}

	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("flushing %s: %w", tempPath, err)
	}

	ok = true
	return &DownloadResult{Path: tempPath, Size: written, Checksum: hex.EncodeToString(hasher.Sum(nil))}, nil
}

// meter counts bytes on their way to disk
type meter struct {
	w          io.Writer
	n, total   int64
	onProgress ProgressFunc
}

func (m *meter) Write(p []byte) (int, error) {
	n, err := m.w.Write(p)
	m.n += int64(n)
	if n > 0 && m.onProgress != nil {
		m.onProgress(m.n, m.total)
	}
	return n, err
}
