package table

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"sync"
)

// CSVContentType is the MIME type of exported CSV files.
const CSVContentType = "text/csv; charset=utf-8"

// Downloader hands a named payload to the host so it is saved by the user.
type Downloader interface {
	Download(ctx context.Context, filename, contentType string, body io.Reader) error
}

var bufferPool = sync.Pool{New: func() any { return new(bytes.Buffer) }}

// DownloadCSV saves csvText as filename through d. The transfer buffer is
// returned to the pool whether or not the download succeeds.
func DownloadCSV(ctx context.Context, d Downloader, filename, csvText string) error {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		bufferPool.Put(buf)
	}()
	buf.WriteString(csvText)
	if err := d.Download(ctx, filename, CSVContentType, buf); err != nil {
		return fmt.Errorf("table: download %s: %w", filename, err)
	}
	return nil
}

// HTTPDownloader answers the current request with an attachment.
type HTTPDownloader struct {
	W http.ResponseWriter
}

// Download implements Downloader.
func (d HTTPDownloader) Download(_ context.Context, filename, contentType string, body io.Reader) error {
	if d.W == nil {
		return fmt.Errorf("table: no response writer")
	}
	header := d.W.Header()
	header.Set("Content-Type", contentType)
	header.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	header.Set("Cache-Control", "no-store")
	d.W.WriteHeader(http.StatusOK)
	_, err := io.Copy(d.W, body)
	return err
}
