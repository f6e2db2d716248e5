package receipt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/hawi-pms/console/internal/backend"
)

// ErrSurfaceBlocked reports that the host refused to open a new surface for
// the receipt.
var ErrSurfaceBlocked = errors.New("receipt: presentation surface blocked")

const (
	// BlockedMessage is shown when the receipt surface could not be opened.
	BlockedMessage = "Popup blocked. Allow popups to print receipt."
	// FailedMessage is shown for any other presentation failure.
	FailedMessage = "Unable to print receipt."
)

// Presenter shows a rendered receipt to the user.
type Presenter interface {
	Present(ctx context.Context, doc Document) error
}

// Result is the outcome of a print request.
type Result struct {
	OK      bool
	Message string
}

// OpenSaleReceiptPrint renders the receipt of sale with the print trigger
// and hands it to p. Failures are returned as a Result, never as a panic or
// error.
func OpenSaleReceiptPrint(ctx context.Context, p Presenter, sale backend.Sale, medicineByID map[int64]string, opts Options) (result Result) {
	defer func() {
		if recover() != nil {
			result = Result{Message: FailedMessage}
		}
	}()
	if p == nil {
		return Result{Message: BlockedMessage}
	}
	opts.AutoPrint = true
	doc, err := Build(sale, medicineByID, opts)
	if err != nil {
		return Result{Message: FailedMessage}
	}
	if err := p.Present(ctx, doc); err != nil {
		if errors.Is(err, ErrSurfaceBlocked) {
			return Result{Message: BlockedMessage}
		}
		return Result{Message: FailedMessage}
	}
	return Result{OK: true}
}

// embeddedDestinations are fetch destinations that cannot host a
// standalone print surface.
var embeddedDestinations = map[string]bool{
	"iframe": true,
	"frame":  true,
	"embed":  true,
	"object": true,
}

// WindowPresenter answers the request with the receipt page, which the
// browser opens in a new tab.
type WindowPresenter struct {
	W http.ResponseWriter
	R *http.Request
}

// Present implements Presenter.
func (p WindowPresenter) Present(_ context.Context, doc Document) error {
	if p.W == nil {
		return ErrSurfaceBlocked
	}
	if p.R != nil && embeddedDestinations[strings.ToLower(p.R.Header.Get("Sec-Fetch-Dest"))] {
		return ErrSurfaceBlocked
	}
	header := p.W.Header()
	header.Set("Content-Type", "text/html; charset=utf-8")
	header.Set("Content-Security-Policy", ContentSecurityPolicy())
	header.Set("Cache-Control", "no-store")
	p.W.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(p.W, doc.HTML); err != nil {
		return fmt.Errorf("receipt: write page: %w", err)
	}
	return nil
}

// PDFRenderer converts HTML into a PDF document.
type PDFRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// PDFPresenter streams the receipt as a PDF rendered by Renderer. It is
// blocked when no renderer is configured.
type PDFPresenter struct {
	Renderer PDFRenderer
	W        http.ResponseWriter
	Filename string
}

// Present implements Presenter.
func (p PDFPresenter) Present(ctx context.Context, doc Document) error {
	if p.Renderer == nil || p.W == nil {
		return ErrSurfaceBlocked
	}
	static, err := doc.WithoutAutoPrint()
	if err != nil {
		return err
	}
	pdf, err := p.Renderer.RenderHTML(ctx, static.HTML)
	if err != nil {
		return fmt.Errorf("receipt: render pdf: %w", err)
	}
	filename := p.Filename
	if filename == "" {
		filename = "receipt.pdf"
	}
	header := p.W.Header()
	header.Set("Content-Type", "application/pdf")
	header.Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": filename}))
	header.Set("Cache-Control", "no-store")
	p.W.WriteHeader(http.StatusOK)
	if _, err := p.W.Write(pdf); err != nil {
		return fmt.Errorf("receipt: write pdf: %w", err)
	}
	return nil
}
