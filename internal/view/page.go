package view

import (
	"log/slog"
	"net/http"

	"github.com/hawi-pms/console/internal/backend"
	"github.com/hawi-pms/console/internal/table"
)

// LoadError is the banner shown when a page could not fetch its data.
type LoadError struct {
	Message  string
	RetryURL string
}

// NewLoadError builds the banner for err. Retry reloads the current URL.
func NewLoadError(r *http.Request, err error) *LoadError {
	return &LoadError{
		Message:  backend.Message(err, "Failed to load data."),
		RetryURL: r.URL.RequestURI(),
	}
}

// ExportObserver counts CSV exports.
type ExportObserver interface {
	ObserveExport(file string)
}

// CSV sends csvText as an attachment named filename.
func (rs *Responder) CSV(w http.ResponseWriter, r *http.Request, filename, csvText string) {
	if err := table.DownloadCSV(r.Context(), table.HTTPDownloader{W: w}, filename, csvText); err != nil {
		rs.Logger.Warn("csv export", slog.String("file", filename), slog.Any("error", err))
		return
	}
	if rs.Exports != nil {
		rs.Exports.ObserveExport(filename)
	}
}

// Fail logs a backend failure and redirects back with its message.
func (rs *Responder) Fail(w http.ResponseWriter, r *http.Request, location, action string, err error) {
	level := slog.LevelWarn
	if backend.IsUnreachable(err) {
		level = slog.LevelError
	}
	rs.Logger.Log(r.Context(), level, action+" failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	rs.RedirectWithFlash(w, r, location, "error", backend.Message(err, backend.FallbackMessage))
}

// Success redirects with a success flash.
func (rs *Responder) Success(w http.ResponseWriter, r *http.Request, location, message string) {
	rs.RedirectWithFlash(w, r, location, "success", message)
}


// ReturnTo reads the local return_to form value, or fallback.
func ReturnTo(r *http.Request, fallback string) string {
	return LocalPath(r.PostFormValue("return_to"), fallback)
}

// LocalPath returns target when it is a path on this site, else fallback.
func LocalPath(target, fallback string) string {
	if target == "/" {
		return target
	}
	if len(target) > 1 && target[0] == '/' && target[1] != '/' && target[1] != '\\' {
		return target
	}
	return fallback
}
