package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hawi-pms/console/internal/shared"
)

// Login authenticates credentials and returns the account.
func (c *Client) Login(ctx context.Context, creds Credentials) (*shared.User, error) {
	var user shared.User
	if err := c.do(ctx, http.MethodPost, "/auth/login", "/auth/login", creds, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword updates the signed-in user's password.
func (c *Client) ChangePassword(ctx context.Context, change PasswordChange) error {
	return c.do(ctx, http.MethodPost, "/auth/change-password", "/auth/change-password", change, nil)
}

// Stats loads the dashboard counters.
func (c *Client) Stats(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats
	err := c.do(ctx, http.MethodGet, "/dashboard/stats", "/dashboard/stats", nil, &stats)
	return stats, err
}

// ListMedicines returns every medicine.
func (c *Client) ListMedicines(ctx context.Context) ([]Medicine, error) {
	var out []Medicine
	err := c.do(ctx, http.MethodGet, "/medicines", "/medicines", nil, &out)
	return out, err
}

// GetMedicine returns one medicine.
func (c *Client) GetMedicine(ctx context.Context, id int64) (Medicine, error) {
	var out Medicine
	err := c.do(ctx, http.MethodGet, "/medicines/{id}", idPath("/medicines", id), nil, &out)
	return out, err
}

// CreateMedicine adds a medicine.
func (c *Client) CreateMedicine(ctx context.Context, in MedicineInput) (Medicine, error) {
	var out Medicine
	err := c.do(ctx, http.MethodPost, "/medicines", "/medicines", in, &out)
	return out, err
}

// UpdateMedicine replaces a medicine.
func (c *Client) UpdateMedicine(ctx context.Context, id int64, in MedicineInput) (Medicine, error) {
	var out Medicine
	err := c.do(ctx, http.MethodPut, "/medicines/{id}", idPath("/medicines", id), in, &out)
	return out, err
}

// DeleteMedicine removes a medicine.
func (c *Client) DeleteMedicine(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/medicines/{id}", idPath("/medicines", id), nil, nil)
}

// AdjustMedicineStock moves stock by delta units, which may be negative.
func (c *Client) AdjustMedicineStock(ctx context.Context, id int64, delta int) (Medicine, error) {
	var out Medicine
	path := idPath("/medicines", id) + "/stock?" + url.Values{"delta": {strconv.Itoa(delta)}}.Encode()
	err := c.do(ctx, http.MethodPatch, "/medicines/{id}/stock", path, nil, &out)
	return out, err
}

// ListSuppliers returns every supplier.
func (c *Client) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	var out []Supplier
	err := c.do(ctx, http.MethodGet, "/suppliers", "/suppliers", nil, &out)
	return out, err
}

// GetSupplier returns one supplier.
func (c *Client) GetSupplier(ctx context.Context, id int64) (Supplier, error) {
	var out Supplier
	err := c.do(ctx, http.MethodGet, "/suppliers/{id}", idPath("/suppliers", id), nil, &out)
	return out, err
}

// CreateSupplier adds a supplier.
func (c *Client) CreateSupplier(ctx context.Context, in SupplierInput) (Supplier, error) {
	var out Supplier
	err := c.do(ctx, http.MethodPost, "/suppliers", "/suppliers", in, &out)
	return out, err
}

// UpdateSupplier replaces a supplier.
func (c *Client) UpdateSupplier(ctx context.Context, id int64, in SupplierInput) (Supplier, error) {
	var out Supplier
	err := c.do(ctx, http.MethodPut, "/suppliers/{id}", idPath("/suppliers", id), in, &out)
	return out, err
}

// DeleteSupplier removes a supplier.
func (c *Client) DeleteSupplier(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/suppliers/{id}", idPath("/suppliers", id), nil, nil)
}

// ListSales returns every sale, newest first.
func (c *Client) ListSales(ctx context.Context) ([]Sale, error) {
	var out []Sale
	err := c.do(ctx, http.MethodGet, "/sales", "/sales", nil, &out)
	return out, err
}

// GetSale returns one sale.
func (c *Client) GetSale(ctx context.Context, id int64) (Sale, error) {
	var out Sale
	err := c.do(ctx, http.MethodGet, "/sales/{id}", idPath("/sales", id), nil, &out)
	return out, err
}

// CreateSale records a sale and decrements stock.
func (c *Client) CreateSale(ctx context.Context, in SaleInput) (Sale, error) {
	var out Sale
	err := c.do(ctx, http.MethodPost, "/sales", "/sales", in, &out)
	return out, err
}

// UpdateSale edits the sale header.
func (c *Client) UpdateSale(ctx context.Context, id int64, in SaleUpdate) (Sale, error) {
	var out Sale
	err := c.do(ctx, http.MethodPatch, "/sales/{id}", idPath("/sales", id), in, &out)
	return out, err
}

// DeleteSale removes a sale and restores stock.
func (c *Client) DeleteSale(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/sales/{id}", idPath("/sales", id), nil, nil)
}

// ListPurchases returns every purchase.
func (c *Client) ListPurchases(ctx context.Context) ([]Purchase, error) {
	var out []Purchase
	err := c.do(ctx, http.MethodGet, "/purchases", "/purchases", nil, &out)
	return out, err
}

// GetPurchase returns one purchase.
func (c *Client) GetPurchase(ctx context.Context, id int64) (Purchase, error) {
	var out Purchase
	err := c.do(ctx, http.MethodGet, "/purchases/{id}", idPath("/purchases", id), nil, &out)
	return out, err
}

// CreatePurchase records a purchase and increments stock.
func (c *Client) CreatePurchase(ctx context.Context, in PurchaseInput) (Purchase, error) {
	var out Purchase
	err := c.do(ctx, http.MethodPost, "/purchases", "/purchases", in, &out)
	return out, err
}

// UpdatePurchase edits the purchase header.
func (c *Client) UpdatePurchase(ctx context.Context, id int64, in PurchaseUpdate) (Purchase, error) {
	var out Purchase
	err := c.do(ctx, http.MethodPatch, "/purchases/{id}", idPath("/purchases", id), in, &out)
	return out, err
}

// DeletePurchase removes a purchase and reverts its stock.
func (c *Client) DeletePurchase(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/purchases/{id}", idPath("/purchases", id), nil, nil)
}

// ListUsers returns every account.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var out []User
	err := c.do(ctx, http.MethodGet, "/users", "/users", nil, &out)
	return out, err
}

// CreateUser adds an account.
func (c *Client) CreateUser(ctx context.Context, in UserInput) (User, error) {
	var out User
	err := c.do(ctx, http.MethodPost, "/users", "/users", in, &out)
	return out, err
}

// UpdateUser edits an account.
func (c *Client) UpdateUser(ctx context.Context, id int64, in UserUpdate) (User, error) {
	var out User
	err := c.do(ctx, http.MethodPut, "/users/{id}", idPath("/users", id), in, &out)
	return out, err
}

// SetUserStatus activates or deactivates an account.
func (c *Client) SetUserStatus(ctx context.Context, id int64, active bool) (User, error) {
	var out User
	body := struct {
		Active bool `json:"active"`
	}{Active: active}
	err := c.do(ctx, http.MethodPatch, "/users/{id}/status", idPath("/users", id)+"/status", body, &out)
	return out, err
}

// ResetUserPassword sets a new password. An empty password asks the backend
// to apply its default.
func (c *Client) ResetUserPassword(ctx context.Context, id int64, newPassword string) error {
	body := struct {
		NewPassword *string `json:"new_password"`
	}{}
	if newPassword != "" {
		body.NewPassword = &newPassword
	}
	return c.do(ctx, http.MethodPost, "/users/{id}/reset-password", idPath("/users", id)+"/reset-password", body, nil)
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/users/{id}", idPath("/users", id), nil, nil)
}

func idPath(base string, id int64) string {
	return fmt.Sprintf("%s/%d", base, id)
}
