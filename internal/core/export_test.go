package core

// SetMaxSize lowers the download cap so tests need not serve 100 MB bodies
func (d *Downloader) SetMaxSize(n int64) {
	d.maxSize = n
}
