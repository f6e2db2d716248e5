package table

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryDownloader struct {
	name        string
	contentType string
	body        string
	err         error
}

func (m *memoryDownloader) Download(_ context.Context, filename, contentType string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.name, m.contentType, m.body = filename, contentType, string(data)
	return m.err
}

func TestDownloadCSV(t *testing.T) {
	d := &memoryDownloader{}
	require.NoError(t, DownloadCSV(context.Background(), d, "medicines.csv", "Name\nA"))
	assert.Equal(t, "medicines.csv", d.name)
	assert.Equal(t, "text/csv; charset=utf-8", d.contentType)
	assert.Equal(t, "Name\nA", d.body)
}

func TestDownloadCSVPropagatesFailure(t *testing.T) {
	boom := errors.New("disk full")
	d := &memoryDownloader{err: boom}
	err := DownloadCSV(context.Background(), d, "x.csv", "a")
	assert.ErrorIs(t, err, boom)

	// The pooled buffer came back empty and is reusable.
	ok := &memoryDownloader{}
	require.NoError(t, DownloadCSV(context.Background(), ok, "y.csv", "b"))
	assert.Equal(t, "b", ok.body)
}

type panickingDownloader struct{}

func (panickingDownloader) Download(context.Context, string, string, io.Reader) error {
	panic("host crashed")
}

func TestDownloadCSVReleasesOnPanic(t *testing.T) {
	assert.Panics(t, func() {
		_ = DownloadCSV(context.Background(), panickingDownloader{}, "x.csv", "stale")
	})
	d := &memoryDownloader{}
	require.NoError(t, DownloadCSV(context.Background(), d, "y.csv", "fresh"))
	assert.Equal(t, "fresh", d.body)
}

func TestHTTPDownloader(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, DownloadCSV(context.Background(), HTTPDownloader{W: rec}, "stock report.csv", "a,b"))
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="stock report.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "a,b", rec.Body.String())
}
