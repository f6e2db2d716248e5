package receipt

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hawi-pms/console/internal/backend"
)

func strPtr(s string) *string { return &s }

func sampleSale() backend.Sale {
	return backend.Sale{
		ID:          41,
		SoldAt:      "2024-05-01T10:20:30",
		TotalAmount: 1234.6,
		Items: []backend.SaleItem{
			{MedicineID: 1, Quantity: 2, UnitPrice: 500, LineTotal: 1000},
			{MedicineID: 9, Quantity: 1, UnitPrice: 234.6, LineTotal: 234.6},
		},
	}
}

type fakePresenter struct {
	docs []Document
	err  error
}

func (f *fakePresenter) Present(_ context.Context, doc Document) error {
	f.docs = append(f.docs, doc)
	return f.err
}

func TestBuildEscapesUserInput(t *testing.T) {
	sale := sampleSale()
	sale.CustomerName = strPtr("<script>alert(1)</script>")
	sale.SellerName = strPtr(`O'Brien & "Co"`)

	doc, err := Build(sale, map[int64]string{1: "<b>Amoxicillin</b>"}, Options{})
	require.NoError(t, err)

	assert.Contains(t, doc.HTML, "&lt;script&gt;alert(1)&lt;/script&gt;")
	assert.NotContains(t, doc.HTML, "<script>alert(1)</script>")
	assert.Contains(t, doc.HTML, "&lt;b&gt;Amoxicillin&lt;/b&gt;")
	assert.Contains(t, doc.HTML, "O&#39;Brien &amp; &#34;Co&#34;")
	assert.NotContains(t, doc.HTML, "<script>")
}

func TestBuildFallbacks(t *testing.T) {
	doc, err := Build(sampleSale(), map[int64]string{1: "Amoxicillin"}, Options{Location: time.UTC})
	require.NoError(t, err)

	assert.Equal(t, "Receipt #41", doc.Title)
	assert.Contains(t, doc.HTML, "<strong>Receipt:</strong> #41")
	assert.Contains(t, doc.HTML, "<strong>Seller:</strong> Unknown")
	assert.Contains(t, doc.HTML, "<strong>Customer:</strong> Walk-in customer")
	assert.Contains(t, doc.HTML, "<td>Medicine #9</td>")
	assert.Contains(t, doc.HTML, "<td>Amoxicillin</td>")
	assert.Contains(t, doc.HTML, "01 May 2024 10:20")
	assert.Contains(t, doc.HTML, "1,000 ETB")
	assert.Contains(t, doc.HTML, "Total: 1,235 ETB")
}

func TestBuildKeepsUnparseableDate(t *testing.T) {
	sale := sampleSale()
	sale.SoldAt = "sometime"
	sale.SaleCode = strPtr("S-00041")
	sale.SellerUsername = strPtr("cashier")

	doc, err := Build(sale, nil, Options{})
	require.NoError(t, err)
	assert.Contains(t, doc.HTML, "<strong>Date:</strong> sometime")
	assert.Contains(t, doc.HTML, "<strong>Receipt:</strong> S-00041")
	assert.Contains(t, doc.HTML, "<strong>Seller:</strong> cashier")
}

func TestAutoPrintScript(t *testing.T) {
	doc, err := Build(sampleSale(), nil, Options{AutoPrint: true})
	require.NoError(t, err)
	assert.Contains(t, doc.HTML, "<script>"+printScript+"</script>")

	static, err := doc.WithoutAutoPrint()
	require.NoError(t, err)
	assert.NotContains(t, static.HTML, "<script>")
	assert.False(t, static.AutoPrint())
}

func TestOpenSaleReceiptPrint(t *testing.T) {
	ctx := context.Background()

	ok := &fakePresenter{}
	result := OpenSaleReceiptPrint(ctx, ok, sampleSale(), nil, Options{})
	assert.Equal(t, Result{OK: true}, result)
	require.Len(t, ok.docs, 1)
	assert.True(t, ok.docs[0].AutoPrint())

	blocked := &fakePresenter{err: ErrSurfaceBlocked}
	result = OpenSaleReceiptPrint(ctx, blocked, sampleSale(), nil, Options{})
	assert.Equal(t, Result{Message: "Popup blocked. Allow popups to print receipt."}, result)

	broken := &fakePresenter{err: errors.New("disk")}
	result = OpenSaleReceiptPrint(ctx, broken, sampleSale(), nil, Options{})
	assert.Equal(t, Result{Message: "Unable to print receipt."}, result)

	result = OpenSaleReceiptPrint(ctx, nil, sampleSale(), nil, Options{})
	assert.False(t, result.OK)
}

type panickingPresenter struct{}

func (panickingPresenter) Present(context.Context, Document) error { panic("surface gone") }

func TestOpenSaleReceiptPrintRecoversPresenterPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		result := OpenSaleReceiptPrint(context.Background(), panickingPresenter{}, sampleSale(), nil, Options{})
		assert.Equal(t, FailedMessage, result.Message)
	})
}

func TestWindowPresenter(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/sales/41/receipt", nil)
	req.Header.Set("Sec-Fetch-Dest", "document")

	result := OpenSaleReceiptPrint(context.Background(), WindowPresenter{W: rec, R: req}, sampleSale(), nil, Options{})
	require.True(t, result.OK)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	csp := rec.Header().Get("Content-Security-Policy")
	assert.True(t, strings.Contains(csp, "script-src 'sha256-"), csp)
	assert.Contains(t, rec.Body.String(), "window.print()")
}

func TestWindowPresenterBlockedInFrame(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/sales/41/receipt", nil)
	req.Header.Set("Sec-Fetch-Dest", "iframe")

	result := OpenSaleReceiptPrint(context.Background(), WindowPresenter{W: rec, R: req}, sampleSale(), nil, Options{})
	assert.Equal(t, BlockedMessage, result.Message)
	assert.Zero(t, rec.Body.Len())
}

type fakeRenderer struct {
	html string
	err  error
}

func (f *fakeRenderer) RenderHTML(_ context.Context, html string) ([]byte, error) {
	f.html = html
	return []byte("%PDF-1.7"), f.err
}

func TestPDFPresenter(t *testing.T) {
	rec := httptest.NewRecorder()
	renderer := &fakeRenderer{}
	p := PDFPresenter{Renderer: renderer, W: rec, Filename: "receipt-41.pdf"}

	result := OpenSaleReceiptPrint(context.Background(), p, sampleSale(), nil, Options{})
	require.True(t, result.OK)
	assert.NotContains(t, renderer.html, "<script>")
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `inline; filename=receipt-41.pdf`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.7", rec.Body.String())
}

func TestPDFPresenterWithoutRenderer(t *testing.T) {
	result := OpenSaleReceiptPrint(context.Background(), PDFPresenter{W: httptest.NewRecorder()}, sampleSale(), nil, Options{})
	assert.Equal(t, BlockedMessage, result.Message)

	failing := PDFPresenter{Renderer: &fakeRenderer{err: errors.New("gotenberg down")}, W: httptest.NewRecorder()}
	result = OpenSaleReceiptPrint(context.Background(), failing, sampleSale(), nil, Options{})
	assert.Equal(t, FailedMessage, result.Message)
}
